package db

import (
	"time"

	"gorm.io/datatypes"
)

type Event struct {
	ID        uint           `gorm:"primaryKey"`
	RoomID    string         `gorm:"size:64;index;not null"`
	Round     int            `gorm:"not null"`
	Phase     string         `gorm:"size:32;not null"`
	Type      string         `gorm:"size:64;not null"`
	Private   bool           `gorm:"not null;default:false"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
}

func (Event) TableName() string {
	return "game_events"
}
