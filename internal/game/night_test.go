package game

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWitchHealPreventsDeath(t *testing.T) {
	e := newTestEngine()
	s := werewolfSession(t, testSeats(8), standardWerewolfRoles()...)

	mustNight(t, e, s, t0, "p1", NightRequest{Action: ActionWolfKill, Target: "p6"})
	mustNight(t, e, s, t0, "p3", NightRequest{Action: ActionSeerCheck, Target: "p2"})
	if s.Phase != PhaseNight {
		t.Fatalf("expected the night to wait for the witch, got %s", s.Phase)
	}
	mustNight(t, e, s, t0, "p4", NightRequest{Action: ActionWitchSave, UseAbility: true})

	if s.AliveCount() != 8 {
		t.Fatalf("expected nobody to die, alive %d", s.AliveCount())
	}
	if countLogs(s, "died during the night") != 0 {
		t.Fatalf("expected no death to be logged, got %v", s.Logs)
	}
	if countLogs(s, "peaceful night") != 1 {
		t.Fatalf("expected a peaceful night log")
	}
	if s.Phase != PhaseDayDiscuss || s.CurrentSeat != 1 {
		t.Fatalf("expected day discussion from seat 1, got %s seat %d", s.Phase, s.CurrentSeat)
	}
	if !s.Werewolf.AntidoteUsed {
		t.Fatalf("expected the antidote to be spent")
	}
	if len(s.Werewolf.SeerResults) != 1 || !s.Werewolf.SeerResults[0].IsWolf {
		t.Fatalf("expected the seer to learn p2 is a wolf, got %v", s.Werewolf.SeerResults)
	}
}

func TestKillAndPoisonBothDie(t *testing.T) {
	e := newTestEngine()
	s := werewolfSession(t, testSeats(8), standardWerewolfRoles()...)

	mustNight(t, e, s, t0, "p2", NightRequest{Action: ActionWolfKill, Target: "p6"})
	mustNight(t, e, s, t0, "p3", NightRequest{Action: ActionSeerCheck, Target: "p5"})
	mustNight(t, e, s, t0, "p4", NightRequest{Action: ActionWitchPoison, Target: "p7"})

	if s.Player("p6").Alive || s.Player("p7").Alive {
		t.Fatalf("expected p6 and p7 to die")
	}
	if countLogs(s, "died during the night") != 2 {
		t.Fatalf("expected two death logs, got %v", s.Logs)
	}
	deaths := s.Werewolf.LastNightDeaths
	if len(deaths) != 2 || deaths[0] != "Player 6" || deaths[1] != "Player 7" {
		t.Fatalf("expected last night deaths [Player 6 Player 7], got %v", deaths)
	}
	if s.Phase != PhaseDayDiscuss {
		t.Fatalf("expected day discussion, got %s", s.Phase)
	}
}

func TestNightRejectsInvalidActions(t *testing.T) {
	e := newTestEngine()
	s := werewolfSession(t, testSeats(8), standardWerewolfRoles()...)

	tests := []struct {
		name  string
		actor string
		req   NightRequest
		want  error
	}{
		{"villager kill", "p6", NightRequest{Action: ActionWolfKill, Target: "p5"}, ErrRoleMismatch},
		{"wolf check", "p1", NightRequest{Action: ActionSeerCheck, Target: "p5"}, ErrRoleMismatch},
		{"dead target", "p1", NightRequest{Action: ActionWolfKill, Target: "ghost"}, ErrInvalidTarget},
		{"save without victim", "p4", NightRequest{Action: ActionWitchSave, UseAbility: true}, ErrNoVictim},
		{"unknown action", "p4", NightRequest{Action: "DANCE"}, ErrUnknownAction},
		{"unknown player", "nobody", NightRequest{Action: ActionWolfKill, Target: "p5"}, ErrPlayerNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.NightAction(context.Background(), s, t0, tt.actor, tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	mustNight(t, e, s, t0, "p1", NightRequest{Action: ActionWolfKill, Target: "p5"})
	if _, err := e.NightAction(context.Background(), s, t0, "p2", NightRequest{Action: ActionWolfKill, Target: "p6"}); !errors.Is(err, ErrAbilityUsed) {
		t.Fatalf("expected the second wolf pick to be rejected, got %v", err)
	}
	if s.Werewolf.WolfTarget != "p5" {
		t.Fatalf("expected the first wolf pick to stand, got %s", s.Werewolf.WolfTarget)
	}
}

func TestNightActionOutsideNight(t *testing.T) {
	e := newTestEngine()
	s := undercoverSession(t, testSeats(4), RoleUndercover, RoleCivilian, RoleCivilian, RoleCivilian)
	if _, err := e.NightAction(context.Background(), s, t0, "p1", NightRequest{Action: ActionWolfKill, Target: "p2"}); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("expected ErrWrongPhase, got %v", err)
	}
}

func TestAntidoteOnlyOnce(t *testing.T) {
	e := newTestEngine()
	s := werewolfSession(t, testSeats(8), standardWerewolfRoles()...)

	mustNight(t, e, s, t0, "p1", NightRequest{Action: ActionWolfKill, Target: "p6"})
	mustNight(t, e, s, t0, "p3", NightRequest{Action: ActionSeerCheck, Target: "p6"})
	mustNight(t, e, s, t0, "p4", NightRequest{Action: ActionWitchSave, UseAbility: true})

	// no elimination during the day keeps everyone alive for night 2
	now := t0.Add(time.Minute)
	toVoting(t, e, s, now)
	for _, p := range s.alivePlayers() {
		mustVote(t, e, s, now, p.PlayerID, Ballot{Abstain: true})
	}
	if s.Phase != PhaseNight || s.Round != 2 {
		t.Fatalf("expected night 2, got %s round %d", s.Phase, s.Round)
	}
	if s.Werewolf.WitchActed || s.Werewolf.WolfTarget != "" {
		t.Fatalf("expected night targets to reset")
	}

	mustNight(t, e, s, now, "p1", NightRequest{Action: ActionWolfKill, Target: "p7"})
	_, err := e.NightAction(context.Background(), s, now, "p4", NightRequest{Action: ActionWitchSave, UseAbility: true})
	if !errors.Is(err, ErrAbilityUsed) {
		t.Fatalf("expected the spent antidote to be rejected, got %v", err)
	}
}

func TestNightResolvesAtDeadlineWithPendingHumans(t *testing.T) {
	e := newTestEngine()
	s := werewolfSession(t, testSeats(8), standardWerewolfRoles()...)
	mustNight(t, e, s, t0, "p1", NightRequest{Action: ActionWolfKill, Target: "p8"})

	e.Advance(context.Background(), s, t0.Add(10*time.Second))
	if s.Phase != PhaseNight {
		t.Fatalf("expected the night to wait for the seer and witch")
	}
	e.Advance(context.Background(), s, t0.Add(31*time.Second))
	if s.Player("p8").Alive {
		t.Fatalf("expected the wolf victim to die at the deadline")
	}
	if s.Phase != PhaseDayDiscuss {
		t.Fatalf("expected day discussion, got %s", s.Phase)
	}
	if len(s.Werewolf.SeerResults) != 0 {
		t.Fatalf("expected the lapsed seer check to record nothing")
	}
}

func TestAIRolesFillTheNight(t *testing.T) {
	e := newTestEngine()
	// wolves, seer and witch are AI; everyone else is human
	s := werewolfSession(t, testSeats(8, 1, 2, 3, 4), standardWerewolfRoles()...)

	e.Advance(context.Background(), s, t0)
	if s.Phase == PhaseNight {
		t.Fatalf("expected an all-AI night to resolve immediately")
	}
	if len(s.Werewolf.SeerResults) != 1 || s.Werewolf.SeerResults[0].TargetID == "p3" {
		t.Fatalf("expected the AI seer to check someone else, got %v", s.Werewolf.SeerResults)
	}
	for _, p := range s.Players {
		if !p.Alive && p.Role == RoleWerewolf && s.Werewolf.WitchPoisonTarget != p.PlayerID {
			t.Fatalf("wolves must not bite their own pack")
		}
	}
}

func TestWerewolfWinConditions(t *testing.T) {
	rules := werewolfRules{}

	s := werewolfSession(t, testSeats(6), RoleWerewolf, RoleWerewolf, RoleSeer, RoleWitch, RoleHunter, RoleVillager)
	if _, done := rules.CheckWinner(s); done {
		t.Fatalf("expected the game to continue at 2 wolves vs 4")
	}
	s.Player("p3").Alive = false
	s.Player("p4").Alive = false
	if winner, done := rules.CheckWinner(s); !done || winner != FactionWerewolf {
		t.Fatalf("expected wolves to win at parity, got %s %v", winner, done)
	}

	s = werewolfSession(t, testSeats(6), RoleWerewolf, RoleWerewolf, RoleSeer, RoleWitch, RoleHunter, RoleVillager)
	s.Player("p1").Alive = false
	s.Player("p2").Alive = false
	if winner, done := rules.CheckWinner(s); !done || winner != FactionVillager {
		t.Fatalf("expected the village to win, got %s %v", winner, done)
	}
}

func TestWerewolfVoteOutLastWolfSettles(t *testing.T) {
	e := newTestEngine()
	s := werewolfSession(t, testSeats(6), RoleWerewolf, RoleSeer, RoleWitch, RoleHunter, RoleVillager, RoleVillager)

	mustNight(t, e, s, t0, "p1", NightRequest{Action: ActionWolfKill, Target: "p6"})
	mustNight(t, e, s, t0, "p2", NightRequest{Action: ActionSeerCheck, Target: "p1"})
	mustNight(t, e, s, t0, "p3", NightRequest{Action: ActionWitchSave, UseAbility: false})
	if s.Player("p6").Alive {
		t.Fatalf("expected p6 to die after the witch passed")
	}

	now := t0.Add(time.Minute)
	toVoting(t, e, s, now)
	for _, id := range []string{"p2", "p3", "p4", "p5"} {
		mustVote(t, e, s, now, id, Ballot{Target: "p1"})
	}
	mustVote(t, e, s, now, "p1", Ballot{Target: "p2"})

	if s.Phase != PhaseSettlement || s.Winner != FactionVillager {
		t.Fatalf("expected the village to win, got %s %s", s.Phase, s.Winner)
	}
	if len(s.WinnerIDs) != 5 {
		t.Fatalf("expected every non-wolf to win, got %v", s.WinnerIDs)
	}
}
