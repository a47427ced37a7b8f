package game

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxSpeechRunes caps a single human speech.
const MaxSpeechRunes = 280

// Speak records the current speaker's turn and lets the engine react.
// Validation failures leave the session untouched.
func (e *Engine) Speak(ctx context.Context, s *Session, now time.Time, actorID, content string) ([]Event, error) {
	rules, err := e.Rules(s.Type)
	if err != nil {
		return nil, err
	}
	if s.Settled() {
		return nil, ErrGameOver
	}
	if s.Phase != rules.DiscussionPhase() {
		return nil, ErrWrongPhase
	}
	actor := s.Player(actorID)
	if actor == nil {
		return nil, ErrPlayerNotFound
	}
	if !actor.Alive {
		return nil, ErrPlayerEliminated
	}
	if current := s.CurrentSpeaker(); current == nil || current.PlayerID != actorID {
		return nil, ErrNotYourTurn
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptySpeech
	}
	if utf8.RuneCountInString(content) > MaxSpeechRunes {
		return nil, ErrSpeechTooLong
	}

	events := e.MarkActive(s, actorID, now)
	s.addLog(logSpeak, fmt.Sprintf("%s: %s", actor.DisplayName, content), now)
	s.addSpeaker(actorID)
	events = append(events, speakEvent(s, actor, content))
	events = append(events, e.moveToNextSpeaker(s, rules, now)...)
	events = append(events, e.Advance(ctx, s, now)...)
	s.UpdatedAt = now
	return events, nil
}

// Vote casts the actor's ballot. The first ballot per player stands.
func (e *Engine) Vote(ctx context.Context, s *Session, now time.Time, actorID string, ballot Ballot) ([]Event, error) {
	rules, err := e.Rules(s.Type)
	if err != nil {
		return nil, err
	}
	if s.Settled() {
		return nil, ErrGameOver
	}
	if s.Phase != rules.VotingPhase() {
		return nil, ErrWrongPhase
	}
	actor := s.Player(actorID)
	if actor == nil {
		return nil, ErrPlayerNotFound
	}
	if !actor.Alive {
		return nil, ErrPlayerEliminated
	}
	if _, voted := s.Votes[actorID]; voted {
		return nil, ErrAlreadyVoted
	}
	value := Abstain
	if !ballot.Abstain {
		target := s.Player(ballot.Target)
		if target == nil || !target.Alive {
			return nil, ErrInvalidTarget
		}
		if target.PlayerID == actorID && !s.Settings.AllowSelfVote {
			return nil, ErrSelfVote
		}
		value = target.PlayerID
	}

	events := e.MarkActive(s, actorID, now)
	s.Votes[actorID] = value
	if value == Abstain {
		s.addLog(logVote, fmt.Sprintf("%s abstained.", actor.DisplayName), now)
	} else {
		s.addLog(logVote, fmt.Sprintf("%s has voted.", actor.DisplayName), now)
	}
	events = append(events, voteEvent(s, actor))
	events = append(events, e.Advance(ctx, s, now)...)
	s.UpdatedAt = now
	return events, nil
}

// NightAction applies a role ability. Games without a night reject it as a
// wrong-phase action.
func (e *Engine) NightAction(ctx context.Context, s *Session, now time.Time, actorID string, req NightRequest) ([]Event, error) {
	rules, err := e.Rules(s.Type)
	if err != nil {
		return nil, err
	}
	if s.Settled() {
		return nil, ErrGameOver
	}
	night, ok := rules.(NightRules)
	if !ok || s.Phase != PhaseNight {
		return nil, ErrWrongPhase
	}
	actor := s.Player(actorID)
	if actor == nil {
		return nil, ErrPlayerNotFound
	}
	if !actor.Alive {
		return nil, ErrPlayerEliminated
	}
	if err := night.ApplyNightAction(s, actor, req, now); err != nil {
		return nil, err
	}

	events := e.MarkActive(s, actorID, now)
	events = append(events, Event{Kind: EventNight, Phase: s.Phase, Round: s.Round})
	events = append(events, e.Advance(ctx, s, now)...)
	s.UpdatedAt = now
	return events, nil
}
