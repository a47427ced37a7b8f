package server

import (
	"time"

	"party-deduction/internal/config"
	"party-deduction/internal/game"
)

func newEngine(gen game.Generator, cfg config.Config) *game.Engine {
	return game.NewEngine(gen, nil, game.EngineOptions{
		SpeechTimeout:   time.Duration(cfg.AITimeoutMillis) * time.Millisecond,
		DisconnectGrace: time.Duration(cfg.DisconnectGraceSeconds) * time.Second,
	})
}

// settingsFromConfig turns the server-wide phase durations into the
// defaults every room config is layered on.
func settingsFromConfig(cfg config.Config) game.Settings {
	s := game.DefaultSettings()
	if cfg.DescriptionSeconds > 0 {
		s.DescriptionSeconds = cfg.DescriptionSeconds
	}
	if cfg.DaySpeechSeconds > 0 {
		s.DaySpeechSeconds = cfg.DaySpeechSeconds
	}
	if cfg.VoteSeconds > 0 {
		s.VoteSeconds = cfg.VoteSeconds
	}
	if cfg.NightSeconds > 0 {
		s.NightSeconds = cfg.NightSeconds
	}
	return s
}
