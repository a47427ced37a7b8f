package db

import "time"

// PlayerStat is one scoreboard row. GameType is a game type or "total".
type PlayerStat struct {
	ID          uint      `gorm:"primaryKey"`
	PlayerID    string    `gorm:"size:64;not null;uniqueIndex:idx_player_stats_player_type"`
	GameType    string    `gorm:"size:32;not null;uniqueIndex:idx_player_stats_player_type"`
	GamesPlayed int       `gorm:"not null;default:0"`
	Wins        int       `gorm:"not null;default:0"`
	Score       int       `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}
