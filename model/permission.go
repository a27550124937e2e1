package model

import "time"

// Permission maps a (space, user) pair to a permission flag string such as
// "rwd". The guard checks required flags by substring containment.
type Permission struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	SpaceID   uint64 `gorm:"uniqueIndex:idx_space_user;not null"`
	UserID    string `gorm:"uniqueIndex:idx_space_user;size:30;not null"`
	Perms     string `gorm:"size:5;not null"`
	CreatedAt time.Time
}

func (Permission) TableName() string {
	return "permissions"
}
