package game

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

const (
	defaultSpeechTimeout   = 3 * time.Second
	defaultDisconnectGrace = 20 * time.Second
)

type EngineOptions struct {
	// SpeechTimeout bounds a single generator call.
	SpeechTimeout time.Duration
	// DisconnectGrace is how long a player may be silent before being
	// marked DISCONNECTED.
	DisconnectGrace time.Duration
}

// Engine drives sessions through their phases. It holds no per-room state;
// every method works on the session it is handed and the caller is
// responsible for serialising access to it.
type Engine struct {
	rules map[GameType]Rules
	gen   Generator
	rng   *lockedRand
	opts  EngineOptions
}

func NewEngine(gen Generator, rng *rand.Rand, opts EngineOptions) *Engine {
	if gen == nil {
		gen = TemplateGenerator{}
	}
	if opts.SpeechTimeout <= 0 {
		opts.SpeechTimeout = defaultSpeechTimeout
	}
	if opts.DisconnectGrace <= 0 {
		opts.DisconnectGrace = defaultDisconnectGrace
	}
	e := &Engine{
		rules: map[GameType]Rules{},
		gen:   gen,
		rng:   newLockedRand(rng),
		opts:  opts,
	}
	e.Register(undercoverRules{})
	e.Register(werewolfRules{})
	return e
}

// Register installs or replaces the rule set for its game type.
func (e *Engine) Register(r Rules) {
	e.rules[r.Type()] = r
}

func (e *Engine) Rules(t GameType) (Rules, error) {
	r, ok := e.rules[t]
	if !ok {
		return nil, ErrUnknownGame
	}
	return r, nil
}

// Start validates the roster, deals roles and runs the engine once so AI
// seats that act first have already done so in the returned session.
func (e *Engine) Start(ctx context.Context, setup Setup) (*Session, []Event, error) {
	rules, err := e.Rules(setup.Type)
	if err != nil {
		return nil, nil, err
	}
	if err := validateRoster(setup.Seats, rules.MinPlayers()); err != nil {
		return nil, nil, err
	}

	s := rules.Assign(setup, e.rng)
	events := []Event{phaseEvent(s, EventPhaseChange)}
	for _, p := range s.Players {
		if p.IsAI {
			continue
		}
		events = append(events, Event{
			Kind:       EventRoleAssigned,
			Phase:      s.Phase,
			Round:      s.Round,
			Payload:    RoleAssignedPayload{Role: p.Role, Word: p.Word, Seat: p.Seat},
			Recipients: []string{p.PlayerID},
		})
	}
	events = append(events, e.Advance(ctx, s, setup.Now)...)
	return s, events, nil
}

// Advance fast-forwards every transition that is due at now. It returns the
// events produced; an empty result means the session was not modified.
func (e *Engine) Advance(ctx context.Context, s *Session, now time.Time) []Event {
	rules, err := e.Rules(s.Type)
	if err != nil {
		return nil
	}
	var events []Event
	// every productive step either records an action or changes phase, so
	// the bound only trips on a broken rule set
	limit := 8*len(s.Players) + 16
	for i := 0; i < limit && !s.Settled(); i++ {
		step := e.step(ctx, s, rules, now)
		if len(step) == 0 {
			break
		}
		events = append(events, step...)
	}
	if len(events) > 0 {
		s.UpdatedAt = now
	}
	return events
}

func (e *Engine) step(ctx context.Context, s *Session, rules Rules, now time.Time) []Event {
	switch s.Phase {
	case rules.DiscussionPhase():
		return e.stepSpeaker(ctx, s, rules, now)
	case rules.VotingPhase():
		return e.stepVoting(s, rules, now)
	case PhaseNight:
		night, ok := rules.(NightRules)
		if !ok {
			return nil
		}
		return e.stepNight(s, rules, night, now)
	default:
		return nil
	}
}

func (e *Engine) stepSpeaker(ctx context.Context, s *Session, rules Rules, now time.Time) []Event {
	speaker := s.CurrentSpeaker()
	if speaker == nil || s.hasSpoken(speaker.PlayerID) {
		return e.moveToNextSpeaker(s, rules, now)
	}

	var events []Event
	switch {
	case speaker.IsAI:
		text := e.speech(ctx, rules, s, speaker)
		s.addLog(logSpeak, fmt.Sprintf("%s (AI): %s", speaker.DisplayName, text), now)
		events = append(events, speakEvent(s, speaker, text))
	case !s.deadlinePassed(now):
		return nil
	case speaker.isDisconnected():
		events = append(events, takeover(s, speaker, now)...)
		text := e.speech(ctx, rules, s, speaker)
		s.addLog(logSpeak, fmt.Sprintf("%s (auto): %s", speaker.DisplayName, text), now)
		events = append(events, speakEvent(s, speaker, text))
	default:
		s.addLog(logSystem, fmt.Sprintf("%s ran out of time and was skipped.", speaker.DisplayName), now)
	}
	s.addSpeaker(speaker.PlayerID)
	return append(events, e.moveToNextSpeaker(s, rules, now)...)
}

// moveToNextSpeaker hands the turn to the next alive seat that has not
// spoken, or opens the vote when everyone has.
func (e *Engine) moveToNextSpeaker(s *Session, rules Rules, now time.Time) []Event {
	next := nextSpeakerSeat(s)
	if next == 0 {
		return []Event{startVoting(s, rules, now)}
	}
	if next == s.CurrentSeat {
		return nil
	}
	s.CurrentSeat = next
	s.setDeadline(now, rules.SpeechWindow(s.Settings))
	return []Event{phaseEvent(s, EventStateSync)}
}

// speech asks the generator for a line and falls back to the local template
// when it errors, times out or returns nothing usable.
func (e *Engine) speech(ctx context.Context, rules Rules, s *Session, p *PlayerState) string {
	ctx, cancel := context.WithTimeout(ctx, e.opts.SpeechTimeout)
	defer cancel()

	text, err := rules.Speech(ctx, e.gen, s, p)
	text = strings.TrimSpace(text)
	if err == nil && text != "" {
		return text
	}
	text, _ = rules.Speech(ctx, TemplateGenerator{}, s, p)
	return text
}

func speakEvent(s *Session, p *PlayerState, text string) Event {
	return Event{Kind: EventSpeak, Phase: s.Phase, Round: s.Round, Seat: p.Seat, Payload: map[string]string{
		"player_id": p.PlayerID,
		"content":   text,
	}}
}

// finish moves the session into SETTLEMENT. The winner is written once.
func finish(s *Session, winner Faction, now time.Time) []Event {
	if s.Winner != "" {
		return nil
	}
	s.Phase = PhaseSettlement
	s.Winner = winner
	s.WinnerIDs = nil
	for _, p := range s.Players {
		if FactionOf(p.Role) == winner {
			s.WinnerIDs = append(s.WinnerIDs, p.PlayerID)
		}
	}
	s.CurrentSeat = 0
	s.PhaseDeadline = nil
	s.addLog(logSystem, fmt.Sprintf("Game over. %s wins.", winnerLabel(winner)), now)
	return []Event{{
		Kind:    EventSettlement,
		Phase:   s.Phase,
		Round:   s.Round,
		Payload: SettlementPayload{Winner: winner, WinnerIDs: s.WinnerIDs},
	}}
}

func winnerLabel(f Faction) string {
	switch f {
	case FactionUndercover:
		return "The undercover"
	case FactionCivilian:
		return "The civilians"
	case FactionWerewolf:
		return "The werewolves"
	default:
		return "The village"
	}
}

func eliminate(s *Session, p *PlayerState, cause string, now time.Time) Event {
	p.Alive = false
	switch cause {
	case "vote":
		s.addLog(logVote, fmt.Sprintf("%s was voted out. Their role was %s.", p.DisplayName, p.Role), now)
	default:
		s.addLog(logNight, fmt.Sprintf("%s died during the night. Their role was %s.", p.DisplayName, p.Role), now)
	}
	return Event{Kind: EventElimination, Phase: s.Phase, Round: s.Round, Seat: p.Seat, Payload: EliminationPayload{
		PlayerID: p.PlayerID,
		Role:     p.Role,
		Cause:    cause,
	}}
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
