package server

import (
	"context"
	"sort"
	"sync"
	"time"

	"party-deduction/internal/db"
	"party-deduction/internal/game"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	winScore  = 15
	lossScore = 5
	// totalStats is the pseudo game type holding a player's totals.
	totalStats = "total"
)

// Settlement is the outcome handed to the stats recorder once per game.
type Settlement struct {
	RoomID     string
	GameType   game.GameType
	Winner     game.Faction
	Players    []SettledPlayer
	FinishedAt time.Time
}

type SettledPlayer struct {
	PlayerID string
	IsAI     bool
	Won      bool
}

type PlayerStats struct {
	PlayerID    string `json:"player_id"`
	GameType    string `json:"game_type"`
	GamesPlayed int    `json:"games_played"`
	Wins        int    `json:"wins"`
	Score       int    `json:"score"`
}

type StatsRecorder interface {
	Record(ctx context.Context, settlement Settlement) error
	Stats(ctx context.Context, playerID string) ([]PlayerStats, error)
}

func settlementOf(s *game.Session, now time.Time) Settlement {
	winners := make(map[string]bool, len(s.WinnerIDs))
	for _, id := range s.WinnerIDs {
		winners[id] = true
	}
	out := Settlement{
		RoomID:     s.RoomID,
		GameType:   s.Type,
		Winner:     s.Winner,
		FinishedAt: now,
	}
	for _, p := range s.Players {
		out.Players = append(out.Players, SettledPlayer{PlayerID: p.PlayerID, IsAI: p.IsAI, Won: winners[p.PlayerID]})
	}
	return out
}

func scoreFor(won bool) (wins, score int) {
	if won {
		return 1, winScore
	}
	return 0, lossScore
}

type MemoryStats struct {
	mu   sync.Mutex
	rows map[string]*PlayerStats
}

func NewMemoryStats() *MemoryStats {
	return &MemoryStats{rows: make(map[string]*PlayerStats)}
}

func (m *MemoryStats) Record(_ context.Context, settlement Settlement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range settlement.Players {
		if p.IsAI {
			continue
		}
		wins, score := scoreFor(p.Won)
		for _, gameType := range []string{string(settlement.GameType), totalStats} {
			key := p.PlayerID + "|" + gameType
			row := m.rows[key]
			if row == nil {
				row = &PlayerStats{PlayerID: p.PlayerID, GameType: gameType}
				m.rows[key] = row
			}
			row.GamesPlayed++
			row.Wins += wins
			row.Score += score
		}
	}
	return nil
}

func (m *MemoryStats) Stats(_ context.Context, playerID string) ([]PlayerStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []PlayerStats
	for _, row := range m.rows {
		if row.PlayerID == playerID {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GameType < out[j].GameType })
	return out, nil
}

// GormStats upserts player_stats rows inside one transaction per game.
type GormStats struct {
	db *gorm.DB
}

func NewGormStats(conn *gorm.DB) *GormStats {
	return &GormStats{db: conn}
}

func (g *GormStats) Record(ctx context.Context, settlement Settlement) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		for _, p := range settlement.Players {
			if p.IsAI {
				continue
			}
			wins, score := scoreFor(p.Won)
			for _, gameType := range []string{string(settlement.GameType), totalStats} {
				row := db.PlayerStat{
					PlayerID:    p.PlayerID,
					GameType:    gameType,
					GamesPlayed: 1,
					Wins:        wins,
					Score:       score,
					CreatedAt:   now,
					UpdatedAt:   now,
				}
				err := tx.Clauses(clause.OnConflict{
					Columns: []clause.Column{{Name: "player_id"}, {Name: "game_type"}},
					DoUpdates: clause.Assignments(map[string]any{
						"games_played": gorm.Expr("player_stats.games_played + 1"),
						"wins":         gorm.Expr("player_stats.wins + ?", wins),
						"score":        gorm.Expr("player_stats.score + ?", score),
						"updated_at":   now,
					}),
				}).Create(&row).Error
				if err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (g *GormStats) Stats(ctx context.Context, playerID string) ([]PlayerStats, error) {
	var rows []db.PlayerStat
	if err := g.db.WithContext(ctx).Where("player_id = ?", playerID).Order("game_type").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]PlayerStats, 0, len(rows))
	for _, row := range rows {
		out = append(out, PlayerStats{
			PlayerID:    row.PlayerID,
			GameType:    row.GameType,
			GamesPlayed: row.GamesPlayed,
			Wins:        row.Wins,
			Score:       row.Score,
		})
	}
	return out, nil
}
