package server

import (
	"context"
	"testing"

	"party-deduction/internal/game"
)

func TestMemoryStatsScoring(t *testing.T) {
	ctx := context.Background()
	stats := NewMemoryStats()
	settlement := Settlement{
		RoomID:   "room",
		GameType: game.TypeUndercover,
		Winner:   game.FactionCivilian,
		Players: []SettledPlayer{
			{PlayerID: "winner", Won: true},
			{PlayerID: "loser"},
			{PlayerID: "bot", IsAI: true, Won: true},
		},
	}
	if err := stats.Record(ctx, settlement); err != nil {
		t.Fatalf("record: %v", err)
	}
	settlement.GameType = game.TypeWerewolf
	if err := stats.Record(ctx, settlement); err != nil {
		t.Fatalf("record: %v", err)
	}

	rows, _ := stats.Stats(ctx, "winner")
	if len(rows) != 3 {
		t.Fatalf("expected per-type and total rows, got %+v", rows)
	}
	for _, row := range rows {
		switch row.GameType {
		case totalStats:
			if row.GamesPlayed != 2 || row.Wins != 2 || row.Score != 2*winScore {
				t.Fatalf("unexpected total row %+v", row)
			}
		default:
			if row.GamesPlayed != 1 || row.Wins != 1 || row.Score != winScore {
				t.Fatalf("unexpected per-type row %+v", row)
			}
		}
	}

	rows, _ = stats.Stats(ctx, "loser")
	for _, row := range rows {
		if row.GameType == totalStats && (row.Wins != 0 || row.Score != 2*lossScore) {
			t.Fatalf("unexpected loser total %+v", row)
		}
	}

	if rows, _ := stats.Stats(ctx, "bot"); len(rows) != 0 {
		t.Fatalf("expected AI seats to be skipped, got %+v", rows)
	}
}

func TestSettlementOf(t *testing.T) {
	sess := &game.Session{
		RoomID:    "room",
		Type:      game.TypeWerewolf,
		Phase:     game.PhaseSettlement,
		Winner:    game.FactionVillager,
		WinnerIDs: []string{"p2"},
		Players: []game.PlayerState{
			{PlayerID: "p1", Role: game.RoleWerewolf},
			{PlayerID: "p2", Role: game.RoleSeer},
		},
	}
	out := settlementOf(sess, newTestClock().Now())
	if len(out.Players) != 2 || out.Players[0].Won || !out.Players[1].Won {
		t.Fatalf("unexpected settlement %+v", out)
	}
}
