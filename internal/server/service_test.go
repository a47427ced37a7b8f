package server

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"party-deduction/internal/game"
)

func TestStateBeforeStartIsWaiting(t *testing.T) {
	ts := newTestService(t)
	room := ts.seededRoom(t, game.TypeUndercover, 2)

	view, err := ts.State(context.Background(), room.ID, "host")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if view.Phase != game.PhaseWaiting || view.MySeat != 1 || len(view.Players) != 3 {
		t.Fatalf("unexpected waiting view %+v", view)
	}
}

func TestStartRequiresHost(t *testing.T) {
	ts := newTestService(t)
	room := ts.seededRoom(t, game.TypeUndercover, 3)

	if _, err := ts.Start(context.Background(), room.ID, "someone-else"); !errors.Is(err, game.ErrNotHost) {
		t.Fatalf("expected ErrNotHost, got %v", err)
	}
	if _, err := ts.Start(context.Background(), "missing", "host"); !errors.Is(err, game.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestStartRejectsSmallRoster(t *testing.T) {
	ts := newTestService(t)
	room := ts.seededRoom(t, game.TypeWerewolf, 3)

	_, err := ts.Start(context.Background(), room.ID, "host")
	if !errors.Is(err, game.ErrInsufficientPlayers) {
		t.Fatalf("expected ErrInsufficientPlayers, got %v", err)
	}
	fresh, _ := ts.rooms.Get(context.Background(), room.ID)
	if fresh.Status != RoomWaiting {
		t.Fatalf("expected the room to stay WAITING, got %s", fresh.Status)
	}
}

func TestActionsWithoutGame(t *testing.T) {
	ts := newTestService(t)
	room := ts.seededRoom(t, game.TypeUndercover, 3)

	if _, err := ts.Vote(context.Background(), room.ID, "host", game.Ballot{Abstain: true}); !errors.Is(err, game.ErrNoActiveGame) {
		t.Fatalf("expected ErrNoActiveGame, got %v", err)
	}
}

func TestServiceSpeakThenVote(t *testing.T) {
	ctx := context.Background()
	ts := newTestService(t)
	room := ts.seededRoom(t, game.TypeUndercover, 3)

	view, err := ts.Start(ctx, room.ID, "host")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if view.Phase != game.PhaseDescription || view.CurrentSeat != 1 {
		t.Fatalf("expected the host to open the description round, got phase %s seat %d", view.Phase, view.CurrentSeat)
	}
	if view.PendingAction == nil || view.PendingAction.Kind != game.PendingSpeak {
		t.Fatalf("expected a SPEAK pending action, got %+v", view.PendingAction)
	}
	if view.MyWord == nil {
		t.Fatalf("expected the host to see their word")
	}
	fresh, _ := ts.rooms.Get(ctx, room.ID)
	if fresh.Status != RoomPlaying {
		t.Fatalf("expected the room to be PLAYING, got %s", fresh.Status)
	}
	if ts.events.count(game.EventRoleAssigned) != 1 {
		t.Fatalf("expected one private role event for the only human")
	}

	if _, err := ts.Speak(ctx, room.ID, "host", "   "); !errors.Is(err, game.ErrEmptySpeech) {
		t.Fatalf("expected ErrEmptySpeech, got %v", err)
	}

	ts.clock.Advance(5 * time.Second)
	view, err = ts.Speak(ctx, room.ID, "host", "Something you drink")
	if err != nil {
		t.Fatalf("speak: %v", err)
	}
	if view.Phase != game.PhaseVoting {
		t.Fatalf("expected the AI seats to finish speaking and open the vote, got %s", view.Phase)
	}
	if len(view.Votes) != 3 {
		t.Fatalf("expected the three AI ballots, got %v", view.Votes)
	}
	if view.PendingAction == nil || view.PendingAction.Kind != game.PendingVote {
		t.Fatalf("expected a VOTE pending action, got %+v", view.PendingAction)
	}

	if _, err := ts.Vote(ctx, room.ID, "host", game.Ballot{Target: "host"}); !errors.Is(err, game.ErrSelfVote) {
		t.Fatalf("expected ErrSelfVote, got %v", err)
	}
	view, err = ts.Vote(ctx, room.ID, "host", game.Ballot{Abstain: true})
	if err != nil {
		t.Fatalf("vote: %v", err)
	}
	if view.Phase == game.PhaseVoting {
		t.Fatalf("expected the vote to resolve once every ballot was in")
	}
}

func TestSpeakOutOfTurn(t *testing.T) {
	ctx := context.Background()
	ts := newTestService(t)
	room := ts.seededRoom(t, game.TypeUndercover, 2)
	if _, _, err := ts.JoinRoom(ctx, room.ID, "p2", "Ada"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := ts.Start(ctx, room.ID, "host"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := ts.Speak(ctx, room.ID, "p2", "hello"); !errors.Is(err, game.ErrNotYourTurn) {
		t.Fatalf("expected ErrNotYourTurn, got %v", err)
	}
	if _, err := ts.Speak(ctx, room.ID, "stranger", "hello"); !errors.Is(err, game.ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
}

func TestJoinAfterStartIsRejected(t *testing.T) {
	ctx := context.Background()
	ts := newTestService(t)
	room := ts.seededRoom(t, game.TypeUndercover, 3)
	if _, err := ts.Start(ctx, room.ID, "host"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, _, err := ts.JoinRoom(ctx, room.ID, "late", "Late"); !errors.Is(err, ErrRoomPlaying) {
		t.Fatalf("expected ErrRoomPlaying, got %v", err)
	}
}

func TestDisconnectedPlayerIsTakenOver(t *testing.T) {
	ctx := context.Background()
	ts := newTestService(t)
	room := ts.seededRoom(t, game.TypeUndercover, 2)
	if _, _, err := ts.JoinRoom(ctx, room.ID, "p2", "Ada"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := ts.Start(ctx, room.ID, "host"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := ts.Speak(ctx, room.ID, "host", "warm in the morning"); err != nil {
		t.Fatalf("speak: %v", err)
	}

	// Ada never polls again and the speech window runs out.
	ts.clock.Advance(61 * time.Second)
	view, err := ts.State(ctx, room.ID, "host")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	var ada game.PlayerView
	for _, p := range view.Players {
		if p.PlayerID == "p2" {
			ada = p
		}
	}
	if ada.Connection != game.ConnAITakeover {
		t.Fatalf("expected Ada to be taken over, got %s", ada.Connection)
	}
	if !hasLog(view, "Ada (auto):") {
		t.Fatalf("expected an automatic speech for Ada, logs %+v", view.Logs)
	}
	if view.Phase != game.PhaseVoting || view.Votes["p2"] != game.Abstain {
		t.Fatalf("expected Ada to abstain automatically, got phase %s votes %v", view.Phase, view.Votes)
	}

	ts.clock.Advance(time.Second)
	view, err = ts.State(ctx, room.ID, "p2")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	for _, p := range view.Players {
		if p.PlayerID == "p2" && p.Connection != game.ConnOnline {
			t.Fatalf("expected Ada to reconnect, got %s", p.Connection)
		}
	}
	if !hasLog(view, "Ada is back.") {
		t.Fatalf("expected a reconnect log")
	}
}

func TestSettlementRecordedOnce(t *testing.T) {
	ctx := context.Background()
	ts := newTestService(t)
	room := ts.seededRoom(t, game.TypeUndercover, 3)
	if _, err := ts.Start(ctx, room.ID, "host"); err != nil {
		t.Fatalf("start: %v", err)
	}

	var view game.View
	var err error
	for i := 0; i < 200 && view.Phase != game.PhaseSettlement; i++ {
		ts.clock.Advance(2 * time.Minute)
		view, err = ts.State(ctx, room.ID, "host")
		if err != nil {
			t.Fatalf("state: %v", err)
		}
	}
	if view.Phase != game.PhaseSettlement || view.Winner == "" {
		t.Fatalf("expected the game to settle, got phase %s", view.Phase)
	}

	for i := 0; i < 3; i++ {
		ts.clock.Advance(time.Minute)
		if _, err := ts.State(ctx, room.ID, "host"); err != nil {
			t.Fatalf("state: %v", err)
		}
	}
	rows, _ := ts.stats.Stats(ctx, "host")
	for _, row := range rows {
		if row.GamesPlayed != 1 {
			t.Fatalf("expected exactly one recorded game, got %+v", row)
		}
	}
	if len(rows) != 2 {
		t.Fatalf("expected per-type and total rows, got %+v", rows)
	}
	if ts.events.count(game.EventSettlement) != 1 {
		t.Fatalf("expected one settlement event, got %d", ts.events.count(game.EventSettlement))
	}
	fresh, _ := ts.rooms.Get(ctx, room.ID)
	if fresh.Status != RoomWaiting {
		t.Fatalf("expected the room to reopen, got %s", fresh.Status)
	}

	if _, err := ts.Speak(ctx, room.ID, "host", "too late"); !errors.Is(err, game.ErrGameOver) {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}
}

func TestRestartDiscardsPreviousSession(t *testing.T) {
	ctx := context.Background()
	ts := newTestService(t)
	room := ts.seededRoom(t, game.TypeUndercover, 3)
	if _, err := ts.Start(ctx, room.ID, "host"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := ts.Speak(ctx, room.ID, "host", "first game"); err != nil {
		t.Fatalf("speak: %v", err)
	}
	view, err := ts.Start(ctx, room.ID, "host")
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if view.Phase != game.PhaseDescription || view.Round != 1 || hasLog(view, "first game") {
		t.Fatalf("expected a fresh session, got phase %s round %d", view.Phase, view.Round)
	}
}

func TestSweepTicksActiveRooms(t *testing.T) {
	ctx := context.Background()
	ts := newTestService(t)
	room := ts.seededRoom(t, game.TypeUndercover, 3)
	if _, err := ts.Start(ctx, room.ID, "host"); err != nil {
		t.Fatalf("start: %v", err)
	}
	ts.clock.Advance(61 * time.Second)
	if n := ts.Sweep(ctx); n != 1 {
		t.Fatalf("expected one active room, got %d", n)
	}
	view, err := ts.State(ctx, room.ID, "")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if !hasLog(view, "Host (auto):") {
		t.Fatalf("expected the sweep to play the silent host's turn, logs %+v", view.Logs)
	}
}

func hasLog(view game.View, fragment string) bool {
	for _, entry := range view.Logs {
		if strings.Contains(entry.Message, fragment) {
			return true
		}
	}
	return false
}
