package db

import (
	"time"

	"gorm.io/datatypes"
)

// GameSession stores the full session snapshot of a room's current game.
type GameSession struct {
	RoomID    string         `gorm:"primaryKey;size:64"`
	GameType  string         `gorm:"size:32;not null"`
	Phase     string         `gorm:"size:32;not null"`
	Round     int            `gorm:"not null"`
	Settled   bool           `gorm:"not null;default:false;index"`
	Snapshot  datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null;index"`
}
