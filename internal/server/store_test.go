package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"party-deduction/internal/game"
)

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	sess := &game.Session{
		RoomID:  "room-1",
		Type:    game.TypeUndercover,
		Phase:   game.PhaseDescription,
		Round:   1,
		Players: []game.PlayerState{{PlayerID: "p1", Seat: 1, Alive: true}},
		Votes:   map[string]string{},
	}
	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := store.Load(ctx, "room-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	loaded.Players[0].Alive = false
	loaded.Round = 9

	again, err := store.Load(ctx, "room-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !again.Players[0].Alive || again.Round != 1 {
		t.Fatalf("expected unsaved edits to stay private, got %+v", again)
	}

	if _, err := store.Load(ctx, "missing"); !errors.Is(err, errNoSession) {
		t.Fatalf("expected errNoSession, got %v", err)
	}
}

func TestMemoryStoreActiveAndArchive(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_ = store.Save(ctx, &game.Session{RoomID: "live", Phase: game.PhaseVoting, UpdatedAt: old})
	_ = store.Save(ctx, &game.Session{RoomID: "done-old", Phase: game.PhaseSettlement, UpdatedAt: old})
	_ = store.Save(ctx, &game.Session{RoomID: "done-new", Phase: game.PhaseSettlement, UpdatedAt: old.Add(48 * time.Hour)})

	active, err := store.ActiveRooms(ctx)
	if err != nil {
		t.Fatalf("active rooms: %v", err)
	}
	if len(active) != 1 || active[0] != "live" {
		t.Fatalf("expected only the live room, got %v", active)
	}

	removed, err := store.ArchiveSettled(ctx, old.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 archived session, got %d", removed)
	}
	if _, err := store.Load(ctx, "done-old"); !errors.Is(err, errNoSession) {
		t.Fatalf("expected the old session to be gone, got %v", err)
	}
	if _, err := store.Load(ctx, "done-new"); err != nil {
		t.Fatalf("expected the recent session to stay, got %v", err)
	}
}
