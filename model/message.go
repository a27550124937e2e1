package model

import (
	"time"

	"gorm.io/gorm"
)

type Message struct {
	ID        uint64 `gorm:"primaryKey"`
	SpaceID   uint64 `gorm:"index;not null"`
	Author    string `gorm:"size:30;not null"`
	Body      string `gorm:"size:255;not null"`
	CreatedAt time.Time
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == 0 {
		m.ID = GenerateID()
	}
	return nil
}

func (Message) TableName() string {
	return "messages"
}
