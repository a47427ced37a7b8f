package db

import (
	"time"

	"gorm.io/datatypes"
)

type Room struct {
	ID        string         `gorm:"primaryKey;size:64"`
	GameType  string         `gorm:"size:32;not null"`
	HostID    string         `gorm:"size:64;not null"`
	Status    string         `gorm:"size:32;not null;index"`
	Config    datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
	Seats     []RoomSeat
}

type RoomSeat struct {
	ID          uint      `gorm:"primaryKey"`
	RoomID      string    `gorm:"size:64;not null;uniqueIndex:idx_room_seats_room_number;uniqueIndex:idx_room_seats_room_player"`
	SeatNumber  int       `gorm:"not null;uniqueIndex:idx_room_seats_room_number"`
	PlayerID    string    `gorm:"size:64;not null;uniqueIndex:idx_room_seats_room_player"`
	DisplayName string    `gorm:"size:64;not null"`
	IsAI        bool      `gorm:"not null;default:false"`
	IsHost      bool      `gorm:"not null;default:false"`
	JoinedAt    time.Time `gorm:"not null"`
}
