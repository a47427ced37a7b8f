package game

import (
	"strconv"
	"strings"
	"time"
)

// Settings is the snapshot of room tunables copied into a session at start.
// Later room edits never reach a running game.
type Settings struct {
	DescriptionSeconds int  `json:"description_seconds"`
	DaySpeechSeconds   int  `json:"day_speech_seconds"`
	VoteSeconds        int  `json:"vote_seconds"`
	NightSeconds       int  `json:"night_seconds"`
	ManualSpyCount     int  `json:"manual_spy_count"`
	HasBlank           bool `json:"has_blank"`
	AllowSelfVote      bool `json:"allow_self_vote"`
}

// DefaultSettings mirrors the server defaults used when a room omits a key.
func DefaultSettings() Settings {
	return Settings{
		DescriptionSeconds: 60,
		DaySpeechSeconds:   90,
		VoteSeconds:        30,
		NightSeconds:       30,
	}
}

// ParseSettings overlays a room config map onto base. Values may arrive as
// JSON numbers, strings or booleans; unparseable values keep the base.
func ParseSettings(base Settings, raw map[string]any) Settings {
	out := base
	if raw == nil {
		return out
	}
	if v, ok := intValue(raw["speakTime"]); ok && v > 0 {
		out.DescriptionSeconds = v
	}
	if v, ok := intValue(raw["speechTime"]); ok && v > 0 {
		out.DaySpeechSeconds = v
	}
	if v, ok := intValue(raw["voteTime"]); ok && v > 0 {
		out.VoteSeconds = v
	}
	if v, ok := intValue(raw["nightTime"]); ok && v > 0 {
		out.NightSeconds = v
	}
	if mode, _ := raw["spyMode"].(string); mode == "manual" {
		if v, ok := intValue(raw["spyCount"]); ok {
			out.ManualSpyCount = max(1, v)
		}
	}
	if v, ok := boolValue(raw["hasBlank"]); ok {
		out.HasBlank = v
	}
	if v, ok := boolValue(raw["allowSelfVote"]); ok {
		out.AllowSelfVote = v
	}
	return out
}

func (s Settings) description() time.Duration {
	return time.Duration(s.DescriptionSeconds) * time.Second
}

func (s Settings) daySpeech() time.Duration {
	return time.Duration(s.DaySpeechSeconds) * time.Second
}

func (s Settings) vote() time.Duration {
	return time.Duration(s.VoteSeconds) * time.Second
}

func (s Settings) night() time.Duration {
	return time.Duration(s.NightSeconds) * time.Second
}

// spyCount resolves how many undercover seats a roster of n gets.
func (s Settings) spyCount(n int) int {
	count := s.ManualSpyCount
	if count <= 0 {
		count = 1
		if n > 6 {
			count = 2
		}
	}
	// at least one civilian must remain
	if count >= n {
		count = n - 1
	}
	return count
}

func intValue(v any) (int, bool) {
	switch value := v.(type) {
	case int:
		return value, true
	case int64:
		return int(value), true
	case float64:
		return int(value), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func boolValue(v any) (bool, bool) {
	switch value := v.(type) {
	case bool:
		return value, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return false, false
		}
		return b, true
	default:
		return false, false
	}
}
