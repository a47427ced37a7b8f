package game

import (
	"context"
	"fmt"
	"time"
)

type undercoverRules struct{}

func (undercoverRules) Type() GameType         { return TypeUndercover }
func (undercoverRules) MinPlayers() int        { return 4 }
func (undercoverRules) DiscussionPhase() Phase { return PhaseDescription }
func (undercoverRules) VotingPhase() Phase     { return PhaseVoting }

func (undercoverRules) SpeechWindow(s Settings) time.Duration {
	return s.description()
}

// Assign deals the first spyCount shuffled seats the undercover word and
// the rest the civilian word. With HasBlank the last shuffled seat gets no
// word at all.
func (r undercoverRules) Assign(setup Setup, rng Randomizer) *Session {
	players := newPlayers(setup.Seats, setup.Now)
	spies := setup.Settings.spyCount(len(players))
	order := shuffledIndexes(len(players), rng)

	for i, idx := range order {
		p := &players[idx]
		switch {
		case i < spies:
			p.Role = RoleUndercover
			p.Word = setup.Words.Undercover
		default:
			p.Role = RoleCivilian
			p.Word = setup.Words.Civilian
		}
	}
	// the blank seat never replaces the only civilian
	if setup.Settings.HasBlank && len(players)-spies >= 2 {
		p := &players[order[len(order)-1]]
		p.Role = RoleBlank
		p.Word = ""
	}

	s := &Session{
		RoomID:   setup.RoomID,
		Type:     TypeUndercover,
		Round:    1,
		Players:  players,
		Votes:    map[string]string{},
		Settings: setup.Settings,
		Undercover: &UndercoverData{
			CivilianWord:   setup.Words.Civilian,
			UndercoverWord: setup.Words.Undercover,
			HasBlank:       setup.Settings.HasBlank,
		},
		StartedAt: setup.Now,
		UpdatedAt: setup.Now,
	}
	startDiscussion(s, r, setup.Now)
	s.addLog(logSystem, fmt.Sprintf("Game started with %d players. Round 1: describe your word.", len(players)), setup.Now)
	return s
}

func (undercoverRules) Speech(ctx context.Context, gen Generator, _ *Session, p *PlayerState) (string, error) {
	return gen.Describe(ctx, p.Word)
}

func (undercoverRules) CheckWinner(s *Session) (Faction, bool) {
	spies, others := countAlive(s, func(p *PlayerState) bool { return p.Role == RoleUndercover })
	switch {
	case spies == 0:
		return FactionCivilian, true
	case spies >= others:
		return FactionUndercover, true
	default:
		return "", false
	}
}

// AfterVote opens a new description round.
func (r undercoverRules) AfterVote(s *Session, now time.Time) []Event {
	s.Round++
	ev := startDiscussion(s, r, now)
	s.addLog(logSystem, fmt.Sprintf("Round %d: describe your word.", s.Round), now)
	return []Event{ev}
}
