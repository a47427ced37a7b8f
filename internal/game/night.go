package game

import (
	"fmt"
	"strings"
	"time"
)

type NightActionKind string

const (
	ActionWolfKill    NightActionKind = "WOLF_KILL"
	ActionSeerCheck   NightActionKind = "SEER_CHECK"
	ActionWitchSave   NightActionKind = "WITCH_SAVE"
	ActionWitchPoison NightActionKind = "WITCH_POISON"
)

// NightRequest is a role ability submitted during NIGHT. UseAbility only
// matters for WITCH_SAVE, where false means the witch passes.
type NightRequest struct {
	Action     NightActionKind `json:"action"`
	Target     string          `json:"target"`
	UseAbility bool            `json:"use_ability"`
}

func (e *Engine) stepNight(s *Session, rules Rules, night NightRules, now time.Time) []Event {
	events := night.FillNight(s, e.rng, now)
	if night.NightPending(s) && !s.deadlinePassed(now) {
		return events
	}
	return append(events, resolveNight(s, rules, night, now)...)
}

func resolveNight(s *Session, rules Rules, night NightRules, now time.Time) []Event {
	deaths := night.ResolveNight(s)
	var events []Event
	var names []string
	for _, id := range deaths {
		p := s.Player(id)
		if p == nil || !p.Alive {
			continue
		}
		events = append(events, eliminate(s, p, "night", now))
		names = append(names, p.DisplayName)
	}
	if s.Werewolf != nil {
		s.Werewolf.LastNightDeaths = names
	}
	if len(names) == 0 {
		s.addLog(logNight, "It was a peaceful night. Nobody died.", now)
	}

	if winner, done := rules.CheckWinner(s); done {
		return append(events, finish(s, winner, now)...)
	}
	events = append(events, startDiscussion(s, rules, now))
	msg := "Day breaks."
	if len(names) > 0 {
		msg = fmt.Sprintf("Day breaks. Last night %s died.", strings.Join(names, ", "))
	}
	s.addLog(logSystem, msg, now)
	return events
}
