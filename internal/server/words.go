package server

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"party-deduction/internal/db"
	"party-deduction/internal/game"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// WordProvider picks the word pair for a new Undercover game.
type WordProvider interface {
	Pick(ctx context.Context) (game.WordPair, error)
}

var defaultWordPairs = []game.WordPair{
	{Civilian: "coffee", Undercover: "tea"},
	{Civilian: "cat", Undercover: "tiger"},
	{Civilian: "piano", Undercover: "guitar"},
	{Civilian: "beach", Undercover: "desert"},
	{Civilian: "dumpling", Undercover: "wonton"},
	{Civilian: "bicycle", Undercover: "motorbike"},
	{Civilian: "library", Undercover: "bookstore"},
	{Civilian: "moon", Undercover: "sun"},
	{Civilian: "lipstick", Undercover: "lip balm"},
	{Civilian: "football", Undercover: "rugby"},
}

// StaticWords picks uniformly from a fixed list.
type StaticWords struct {
	mu    sync.Mutex
	pairs []game.WordPair
	rng   *rand.Rand
}

func NewStaticWords(pairs []game.WordPair) *StaticWords {
	if len(pairs) == 0 {
		pairs = defaultWordPairs
	}
	return &StaticWords{
		pairs: pairs,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *StaticWords) Pick(_ context.Context) (game.WordPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pairs[s.rng.Intn(len(s.pairs))], nil
}

// GormWords draws a random row from word_pairs and falls back to the
// static list when the table is empty or unreachable.
type GormWords struct {
	db       *gorm.DB
	fallback WordProvider
	logger   *zap.Logger
}

func NewGormWords(conn *gorm.DB, fallback WordProvider, logger *zap.Logger) *GormWords {
	return &GormWords{db: conn, fallback: fallback, logger: logger}
}

func (g *GormWords) Pick(ctx context.Context) (game.WordPair, error) {
	var rows []db.WordPair
	err := g.db.WithContext(ctx).Order("RANDOM()").Limit(1).Find(&rows).Error
	if err != nil {
		g.logger.Warn("word pair lookup failed", zap.Error(err))
	}
	if err != nil || len(rows) == 0 {
		return g.fallback.Pick(ctx)
	}
	return game.WordPair{Civilian: rows[0].Civilian, Undercover: rows[0].Undercover}, nil
}
