package db

import "time"

type WordPair struct {
	ID         uint      `gorm:"primaryKey"`
	Category   string    `gorm:"size:64;not null;default:''"`
	Civilian   string    `gorm:"size:64;not null;uniqueIndex:idx_word_pairs_words"`
	Undercover string    `gorm:"size:64;not null;uniqueIndex:idx_word_pairs_words"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}
