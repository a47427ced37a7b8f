package game

import (
	"errors"
	"testing"
)

func TestCheckInvariants(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Session)
	}{
		{"dead current speaker", func(s *Session) { s.Players[0].Alive = false }},
		{"current speaker already spoke", func(s *Session) { s.Speakers = []string{"p1"} }},
		{"too many ballots", func(s *Session) {
			s.Votes = map[string]string{"p1": Abstain, "p2": Abstain, "p3": Abstain, "p4": Abstain, "p5": Abstain}
		}},
		{"winner outside settlement", func(s *Session) { s.Winner = FactionCivilian }},
		{"wrong data bag", func(s *Session) { s.Werewolf = &WerewolfData{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := undercoverSession(t, testSeats(4), RoleUndercover, RoleCivilian, RoleCivilian, RoleCivilian)
			if err := CheckInvariants(s); err != nil {
				t.Fatalf("expected a fresh session to be valid, got %v", err)
			}
			tt.mutate(s)
			if err := CheckInvariants(s); !errors.Is(err, ErrInvariant) {
				t.Fatalf("expected ErrInvariant, got %v", err)
			}
		})
	}
}

func TestCheckTransition(t *testing.T) {
	before := undercoverSession(t, testSeats(4), RoleUndercover, RoleCivilian, RoleCivilian, RoleCivilian)
	before.Players[3].Alive = false

	after := undercoverSession(t, testSeats(4), RoleUndercover, RoleCivilian, RoleCivilian, RoleCivilian)
	if err := CheckTransition(before, after); !errors.Is(err, ErrInvariant) {
		t.Fatalf("expected a resurrection to be caught, got %v", err)
	}

	after.Players[3].Alive = false
	after.Players[1].Word = "tea"
	if err := CheckTransition(before, after); !errors.Is(err, ErrInvariant) {
		t.Fatalf("expected a word change to be caught, got %v", err)
	}

	after.Players[1].Word = "coffee"
	if err := CheckTransition(before, after); err != nil {
		t.Fatalf("expected a valid transition, got %v", err)
	}
}
