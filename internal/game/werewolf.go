package game

import (
	"context"
	"fmt"
	"time"
)

type werewolfRules struct{}

func (werewolfRules) Type() GameType         { return TypeWerewolf }
func (werewolfRules) MinPlayers() int        { return 6 }
func (werewolfRules) DiscussionPhase() Phase { return PhaseDayDiscuss }
func (werewolfRules) VotingPhase() Phase     { return PhaseDayVote }

func (werewolfRules) SpeechWindow(s Settings) time.Duration {
	return s.daySpeech()
}

// werewolfRoles builds the role deck for n players.
func werewolfRoles(n int) []Role {
	wolves := 2
	switch {
	case n > 9:
		wolves = 4
	case n > 6:
		wolves = 3
	}
	roles := make([]Role, 0, n)
	for i := 0; i < wolves; i++ {
		roles = append(roles, RoleWerewolf)
	}
	roles = append(roles, RoleSeer, RoleWitch, RoleHunter)
	for len(roles) < n {
		roles = append(roles, RoleVillager)
	}
	return roles[:n]
}

func (r werewolfRules) Assign(setup Setup, rng Randomizer) *Session {
	players := newPlayers(setup.Seats, setup.Now)
	deck := werewolfRoles(len(players))
	order := shuffledIndexes(len(players), rng)
	for i, idx := range order {
		players[idx].Role = deck[i]
	}

	s := &Session{
		RoomID:    setup.RoomID,
		Type:      TypeWerewolf,
		Players:   players,
		Votes:     map[string]string{},
		Settings:  setup.Settings,
		Werewolf:  &WerewolfData{},
		StartedAt: setup.Now,
		UpdatedAt: setup.Now,
	}
	s.addLog(logSystem, fmt.Sprintf("Game started with %d players.", len(players)), setup.Now)
	startNight(s, setup.Now)
	return s
}

func (werewolfRules) Speech(ctx context.Context, gen Generator, s *Session, p *PlayerState) (string, error) {
	candidates := make([]int, 0, len(s.Players))
	for _, seat := range aliveSeats(s) {
		if seat != p.Seat {
			candidates = append(candidates, seat)
		}
	}
	seat := p.Seat
	if len(candidates) > 0 {
		// suspect the next living seat, wrapping around
		seat = candidates[0]
		for _, c := range candidates {
			if c > p.Seat {
				seat = c
				break
			}
		}
	}
	return gen.Suspect(ctx, seat)
}

func (werewolfRules) CheckWinner(s *Session) (Faction, bool) {
	wolves, others := countAlive(s, func(p *PlayerState) bool { return p.Role == RoleWerewolf })
	switch {
	case wolves == 0:
		return FactionVillager, true
	case wolves >= others:
		return FactionWerewolf, true
	default:
		return "", false
	}
}

func (werewolfRules) AfterVote(s *Session, now time.Time) []Event {
	return []Event{startNight(s, now)}
}

func startNight(s *Session, now time.Time) Event {
	s.Round++
	s.Phase = PhaseNight
	s.CurrentSeat = 0
	s.Speakers = nil
	s.Votes = map[string]string{}
	s.Werewolf.resetNight()
	s.setDeadline(now, s.Settings.night())
	s.addLog(logSystem, fmt.Sprintf("Night %d falls. Everyone close your eyes.", s.Round), now)
	return phaseEvent(s, EventPhaseChange)
}

func (werewolfRules) holder(s *Session, role Role) *PlayerState {
	for i := range s.Players {
		if s.Players[i].Alive && s.Players[i].Role == role {
			return &s.Players[i]
		}
	}
	return nil
}

// wolvesPending reports whether a human wolf still has to pick tonight's victim.
func (r werewolfRules) wolvesPending(s *Session) bool {
	if s.Werewolf.WolfTarget != "" {
		return false
	}
	for _, p := range s.alivePlayers() {
		if p.Role == RoleWerewolf && !p.IsAI {
			return true
		}
	}
	return false
}

func (r werewolfRules) NightPending(s *Session) bool {
	d := s.Werewolf
	if r.wolvesPending(s) {
		return true
	}
	if seer := r.holder(s, RoleSeer); seer != nil && !seer.IsAI && d.SeerTarget == "" {
		return true
	}
	if witch := r.holder(s, RoleWitch); witch != nil && !witch.IsAI && witchCanAct(d) {
		return true
	}
	return false
}

func witchCanAct(d *WerewolfData) bool {
	return !d.WitchActed && (!d.AntidoteUsed || !d.PoisonUsed)
}

// FillNight decides the abilities of AI role holders that have not acted.
// Humans are never filled; their ability lapses at the deadline.
func (r werewolfRules) FillNight(s *Session, rng Randomizer, now time.Time) []Event {
	d := s.Werewolf
	var events []Event

	if d.WolfTarget == "" && !r.wolvesPending(s) {
		var wolf *PlayerState
		var targets []*PlayerState
		for _, p := range s.alivePlayers() {
			if p.Role == RoleWerewolf {
				if wolf == nil {
					wolf = p
				}
				continue
			}
			targets = append(targets, p)
		}
		if wolf != nil && len(targets) > 0 {
			d.WolfTarget = targets[rng.Intn(len(targets))].PlayerID
			s.addLog(logNight, "The wolves have chosen their prey.", now)
			events = append(events, Event{Kind: EventNight, Phase: s.Phase, Round: s.Round})
		}
	}

	if seer := r.holder(s, RoleSeer); seer != nil && seer.IsAI && d.SeerTarget == "" {
		if target := randomOther(s, seer, rng); target != nil {
			d.SeerTarget = target.PlayerID
			d.SeerResults = append(d.SeerResults, SeerResult{
				Round:    s.Round,
				SeerID:   seer.PlayerID,
				TargetID: target.PlayerID,
				IsWolf:   target.Role == RoleWerewolf,
			})
			events = append(events, Event{Kind: EventNight, Phase: s.Phase, Round: s.Round})
		}
	}

	witch := r.holder(s, RoleWitch)
	if witch != nil && witch.IsAI && !d.WitchActed && (d.WolfTarget != "" || !r.wolvesPending(s) || s.deadlinePassed(now)) {
		if !d.AntidoteUsed && d.WolfTarget != "" && rng.Intn(2) == 0 {
			d.WitchSaveTarget = d.WolfTarget
			d.AntidoteUsed = true
		}
		if !d.PoisonUsed && rng.Intn(100) < 30 {
			if target := randomOther(s, witch, rng); target != nil {
				d.WitchPoisonTarget = target.PlayerID
				d.PoisonUsed = true
			}
		}
		d.WitchActed = true
		events = append(events, Event{Kind: EventNight, Phase: s.Phase, Round: s.Round})
	}
	return events
}

func randomOther(s *Session, self *PlayerState, rng Randomizer) *PlayerState {
	var targets []*PlayerState
	for _, p := range s.alivePlayers() {
		if p.PlayerID != self.PlayerID {
			targets = append(targets, p)
		}
	}
	if len(targets) == 0 {
		return nil
	}
	return targets[rng.Intn(len(targets))]
}

// ResolveNight computes tonight's deaths: the wolf victim unless healed,
// plus the poison target.
func (werewolfRules) ResolveNight(s *Session) []string {
	d := s.Werewolf
	var deaths []string
	if d.WolfTarget != "" && d.WitchSaveTarget != d.WolfTarget {
		deaths = append(deaths, d.WolfTarget)
	}
	if d.WitchPoisonTarget != "" && !containsID(deaths, d.WitchPoisonTarget) {
		deaths = append(deaths, d.WitchPoisonTarget)
	}
	return deaths
}

func (r werewolfRules) ApplyNightAction(s *Session, actor *PlayerState, req NightRequest, now time.Time) error {
	d := s.Werewolf
	switch req.Action {
	case ActionWolfKill:
		if actor.Role != RoleWerewolf {
			return ErrRoleMismatch
		}
		if d.WolfTarget != "" {
			return ErrAbilityUsed
		}
		target := s.Player(req.Target)
		if target == nil || !target.Alive {
			return ErrInvalidTarget
		}
		d.WolfTarget = target.PlayerID
		s.addLog(logNight, "The wolves have chosen their prey.", now)
	case ActionSeerCheck:
		if actor.Role != RoleSeer {
			return ErrRoleMismatch
		}
		if d.SeerTarget != "" {
			return ErrAbilityUsed
		}
		target := s.Player(req.Target)
		if target == nil || !target.Alive {
			return ErrInvalidTarget
		}
		d.SeerTarget = target.PlayerID
		d.SeerResults = append(d.SeerResults, SeerResult{
			Round:    s.Round,
			SeerID:   actor.PlayerID,
			TargetID: target.PlayerID,
			IsWolf:   target.Role == RoleWerewolf,
		})
	case ActionWitchSave:
		if actor.Role != RoleWitch {
			return ErrRoleMismatch
		}
		if !req.UseAbility {
			d.WitchActed = true
			return nil
		}
		if d.AntidoteUsed {
			return ErrAbilityUsed
		}
		if d.WolfTarget == "" {
			return ErrNoVictim
		}
		d.WitchSaveTarget = d.WolfTarget
		d.AntidoteUsed = true
		d.WitchActed = true
	case ActionWitchPoison:
		if actor.Role != RoleWitch {
			return ErrRoleMismatch
		}
		if d.PoisonUsed {
			return ErrAbilityUsed
		}
		target := s.Player(req.Target)
		if target == nil || !target.Alive {
			return ErrInvalidTarget
		}
		d.WitchPoisonTarget = target.PlayerID
		d.PoisonUsed = true
		d.WitchActed = true
	default:
		return ErrUnknownAction
	}
	return nil
}
