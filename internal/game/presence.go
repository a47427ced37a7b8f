package game

import (
	"fmt"
	"time"
)

// SyncPresence folds presence reports into the session. online maps human
// player ids to whether the tracker saw them recently; missing ids count as
// offline. A player goes DISCONNECTED once silent for longer than the grace
// window and back to ONLINE as soon as they are seen again. touched reports
// whether anything was written, including activity timestamps.
func (e *Engine) SyncPresence(s *Session, now time.Time, online map[string]bool) (events []Event, touched bool) {
	if s.Settled() {
		return nil, false
	}
	for i := range s.Players {
		p := &s.Players[i]
		if p.IsAI {
			continue
		}
		if online[p.PlayerID] {
			if ev, ok := reconnect(s, p, now); ok {
				events = append(events, ev)
			}
			if !p.LastActiveAt.Equal(now) {
				p.LastActiveAt = now
				touched = true
			}
			continue
		}
		if p.Connection != ConnOnline || now.Sub(p.LastActiveAt) <= e.opts.DisconnectGrace {
			continue
		}
		p.Connection = ConnDisconnected
		at := now
		p.DisconnectedAt = &at
		s.addLog(logSystem, fmt.Sprintf("%s lost connection.", p.DisplayName), now)
		events = append(events, presenceEvent(s, p))
	}
	return events, touched || len(events) > 0
}

// MarkActive records an explicit action by playerID. Acting is proof of
// presence, so a disconnected player is brought back.
func (e *Engine) MarkActive(s *Session, playerID string, now time.Time) []Event {
	p := s.Player(playerID)
	if p == nil || p.IsAI {
		return nil
	}
	p.LastActiveAt = now
	if ev, ok := reconnect(s, p, now); ok {
		return []Event{ev}
	}
	return nil
}

func reconnect(s *Session, p *PlayerState, now time.Time) (Event, bool) {
	if p.Connection == ConnOnline {
		return Event{}, false
	}
	p.Connection = ConnOnline
	p.DisconnectedAt = nil
	s.addLog(logSystem, fmt.Sprintf("%s is back.", p.DisplayName), now)
	return presenceEvent(s, p), true
}

// takeover escalates a disconnected player whose turn came up. It only
// logs on the first escalation.
func takeover(s *Session, p *PlayerState, now time.Time) []Event {
	if p.Connection == ConnAITakeover {
		return nil
	}
	p.Connection = ConnAITakeover
	if p.DisconnectedAt == nil {
		at := now
		p.DisconnectedAt = &at
	}
	s.addLog(logSystem, fmt.Sprintf("%s is offline. Their turn is played automatically.", p.DisplayName), now)
	return []Event{presenceEvent(s, p)}
}

func presenceEvent(s *Session, p *PlayerState) Event {
	return Event{Kind: EventPresence, Phase: s.Phase, Round: s.Round, Seat: p.Seat, Payload: PresencePayload{
		PlayerID:   p.PlayerID,
		Connection: p.Connection,
	}}
}
