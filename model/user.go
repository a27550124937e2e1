package model

import "time"

// User stores account credentials. The username doubles as the primary key,
// matching the identity string recorded on audit events.
type User struct {
	UserID       string `gorm:"primaryKey;size:30"`
	PasswordHash string `gorm:"size:255;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string {
	return "users"
}
