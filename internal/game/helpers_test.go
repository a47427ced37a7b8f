package game

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"
)

var t0 = time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	return NewEngine(TemplateGenerator{}, rand.New(rand.NewSource(7)), EngineOptions{})
}

// testSeats builds n human seats p1..pn; the listed seat numbers are AI.
func testSeats(n int, ai ...int) []Seat {
	aiSeats := map[int]bool{}
	for _, seat := range ai {
		aiSeats[seat] = true
	}
	seats := make([]Seat, 0, n)
	for i := 1; i <= n; i++ {
		seats = append(seats, Seat{
			PlayerID:    fmt.Sprintf("p%d", i),
			DisplayName: fmt.Sprintf("Player %d", i),
			SeatNumber:  i,
			IsAI:        aiSeats[i],
			IsHost:      i == 1,
		})
	}
	return seats
}

// undercoverSession builds a DESCRIPTION round 1 session with fixed roles,
// seat i+1 getting roles[i].
func undercoverSession(t *testing.T, seats []Seat, roles ...Role) *Session {
	t.Helper()
	if len(seats) != len(roles) {
		t.Fatalf("expected %d roles, got %d", len(seats), len(roles))
	}
	players := newPlayers(seats, t0)
	for i := range players {
		players[i].Role = roles[i]
		switch roles[i] {
		case RoleUndercover:
			players[i].Word = "tea"
		case RoleCivilian:
			players[i].Word = "coffee"
		}
	}
	s := &Session{
		RoomID:     "room-1",
		Type:       TypeUndercover,
		Round:      1,
		Players:    players,
		Votes:      map[string]string{},
		Settings:   DefaultSettings(),
		Undercover: &UndercoverData{CivilianWord: "coffee", UndercoverWord: "tea"},
		StartedAt:  t0,
		UpdatedAt:  t0,
	}
	startDiscussion(s, undercoverRules{}, t0)
	return s
}

// werewolfSession builds a NIGHT round 1 session with fixed roles.
func werewolfSession(t *testing.T, seats []Seat, roles ...Role) *Session {
	t.Helper()
	if len(seats) != len(roles) {
		t.Fatalf("expected %d roles, got %d", len(seats), len(roles))
	}
	players := newPlayers(seats, t0)
	for i := range players {
		players[i].Role = roles[i]
	}
	s := &Session{
		RoomID:    "room-1",
		Type:      TypeWerewolf,
		Players:   players,
		Votes:     map[string]string{},
		Settings:  DefaultSettings(),
		Werewolf:  &WerewolfData{},
		StartedAt: t0,
		UpdatedAt: t0,
	}
	startNight(s, t0)
	return s
}

func standardWerewolfRoles() []Role {
	return []Role{RoleWerewolf, RoleWerewolf, RoleSeer, RoleWitch, RoleHunter, RoleVillager, RoleVillager, RoleVillager}
}

func countLogs(s *Session, substr string) int {
	count := 0
	for _, entry := range s.Logs {
		if strings.Contains(entry.Message, substr) {
			count++
		}
	}
	return count
}

func mustSpeak(t *testing.T, e *Engine, s *Session, now time.Time, playerID string) {
	t.Helper()
	if _, err := e.Speak(context.Background(), s, now, playerID, "something round"); err != nil {
		t.Fatalf("speak %s: %v", playerID, err)
	}
}

func mustVote(t *testing.T, e *Engine, s *Session, now time.Time, playerID string, ballot Ballot) {
	t.Helper()
	if _, err := e.Vote(context.Background(), s, now, playerID, ballot); err != nil {
		t.Fatalf("vote %s: %v", playerID, err)
	}
}

func mustNight(t *testing.T, e *Engine, s *Session, now time.Time, playerID string, req NightRequest) {
	t.Helper()
	if _, err := e.NightAction(context.Background(), s, now, playerID, req); err != nil {
		t.Fatalf("night action %s %s: %v", playerID, req.Action, err)
	}
}

func hasEvent(events []Event, kind EventKind) bool {
	for _, ev := range events {
		if ev.Kind == kind {
			return true
		}
	}
	return false
}
