package game

import (
	"fmt"
	"sort"
	"time"
)

// Ballot is one vote submission. Abstain wins over Target.
type Ballot struct {
	Target  string `json:"target"`
	Abstain bool   `json:"abstain"`
}

// TallyResult is the outcome of counting non-abstain ballots.
type TallyResult struct {
	Counts   map[string]int
	Target   string
	Top      int
	IsTie    bool
	Abstains int
}

// Tally counts ballots. A target is only elected with a strict plurality;
// no ballots or a shared top count elects nobody.
func Tally(votes map[string]string) TallyResult {
	res := TallyResult{Counts: map[string]int{}}
	for _, target := range votes {
		if target == Abstain || target == "" {
			res.Abstains++
			continue
		}
		res.Counts[target]++
	}

	targets := make([]string, 0, len(res.Counts))
	for target := range res.Counts {
		targets = append(targets, target)
	}
	sort.Strings(targets)

	for _, target := range targets {
		count := res.Counts[target]
		switch {
		case count > res.Top:
			res.Top = count
			res.Target = target
			res.IsTie = false
		case count == res.Top:
			res.IsTie = true
		}
	}
	if res.IsTie {
		res.Target = ""
	}
	return res
}

func (e *Engine) stepVoting(s *Session, rules Rules, now time.Time) []Event {
	var events []Event
	events = append(events, fillDisconnectedVotes(s, now)...)
	events = append(events, e.fillAIVotes(s, now)...)
	if len(s.Votes) >= s.AliveCount() || s.deadlinePassed(now) {
		events = append(events, resolveVotes(s, rules, now)...)
	}
	return events
}

// fillDisconnectedVotes casts an abstain ballot for every absent human.
func fillDisconnectedVotes(s *Session, now time.Time) []Event {
	var events []Event
	for _, p := range s.alivePlayers() {
		if p.IsAI || !p.isDisconnected() {
			continue
		}
		if _, voted := s.Votes[p.PlayerID]; voted {
			continue
		}
		events = append(events, takeover(s, p, now)...)
		s.Votes[p.PlayerID] = Abstain
		events = append(events, voteEvent(s, p))
	}
	return events
}

// fillAIVotes gives every AI seat a uniformly random living target other
// than itself.
func (e *Engine) fillAIVotes(s *Session, now time.Time) []Event {
	var events []Event
	for _, p := range s.alivePlayers() {
		if !p.IsAI {
			continue
		}
		if _, voted := s.Votes[p.PlayerID]; voted {
			continue
		}
		target := randomOther(s, p, e.rng)
		if target == nil {
			s.Votes[p.PlayerID] = Abstain
		} else {
			s.Votes[p.PlayerID] = target.PlayerID
		}
		s.addLog(logVote, fmt.Sprintf("%s (AI) has voted.", p.DisplayName), now)
		events = append(events, voteEvent(s, p))
	}
	return events
}

func resolveVotes(s *Session, rules Rules, now time.Time) []Event {
	res := Tally(s.Votes)
	if res.Target == "" {
		s.addLog(logVote, "No one received a clear majority. Nobody is eliminated.", now)
		return rules.AfterVote(s, now)
	}

	p := s.Player(res.Target)
	if p == nil || !p.Alive {
		s.addLog(logVote, "The vote named no living player. Nobody is eliminated.", now)
		return rules.AfterVote(s, now)
	}
	events := []Event{eliminate(s, p, "vote", now)}
	if winner, done := rules.CheckWinner(s); done {
		return append(events, finish(s, winner, now)...)
	}
	return append(events, rules.AfterVote(s, now)...)
}

func voteEvent(s *Session, p *PlayerState) Event {
	return Event{Kind: EventVote, Phase: s.Phase, Round: s.Round, Seat: p.Seat}
}
