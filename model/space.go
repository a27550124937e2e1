package model

import (
	"time"

	"gorm.io/gorm"
)

// Space is a shared content area. URI is backfilled after creation once the
// row id is known.
type Space struct {
	ID        uint64 `gorm:"primaryKey"`
	Name      string `gorm:"size:255;not null"`
	Owner     string `gorm:"size:255;not null"`
	URI       string `gorm:"size:512"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *Space) BeforeCreate(tx *gorm.DB) error {
	if s.ID == 0 {
		s.ID = GenerateID()
	}
	return nil
}

func (Space) TableName() string {
	return "spaces"
}
