package game

import "fmt"

// CheckInvariants verifies the structural rules every stored session must
// satisfy. A failure means the engine itself is broken.
func CheckInvariants(s *Session) error {
	if s == nil {
		return fmt.Errorf("%w: nil session", ErrInvariant)
	}
	switch s.Type {
	case TypeUndercover:
		if s.Undercover == nil || s.Werewolf != nil {
			return fmt.Errorf("%w: undercover session carries the wrong data", ErrInvariant)
		}
	case TypeWerewolf:
		if s.Werewolf == nil || s.Undercover != nil {
			return fmt.Errorf("%w: werewolf session carries the wrong data", ErrInvariant)
		}
	default:
		return fmt.Errorf("%w: unknown game type %q", ErrInvariant, s.Type)
	}

	seats := map[int]bool{}
	for _, p := range s.Players {
		if seats[p.Seat] {
			return fmt.Errorf("%w: seat %d occupied twice", ErrInvariant, p.Seat)
		}
		seats[p.Seat] = true
		if p.Role == "" {
			return fmt.Errorf("%w: player %s has no role", ErrInvariant, p.PlayerID)
		}
	}

	if s.CurrentSeat != 0 {
		p := s.CurrentSpeaker()
		if p == nil {
			return fmt.Errorf("%w: current seat %d is not an alive player", ErrInvariant, s.CurrentSeat)
		}
		if s.hasSpoken(p.PlayerID) {
			return fmt.Errorf("%w: current seat %d already spoke", ErrInvariant, s.CurrentSeat)
		}
	}

	if len(s.Votes) > s.AliveCount() && !s.Settled() {
		return fmt.Errorf("%w: %d ballots for %d alive players", ErrInvariant, len(s.Votes), s.AliveCount())
	}
	for voter := range s.Votes {
		if s.Player(voter) == nil {
			return fmt.Errorf("%w: ballot from unknown player %s", ErrInvariant, voter)
		}
	}

	if s.Settled() != (s.Winner != "") {
		return fmt.Errorf("%w: winner %q does not match phase %s", ErrInvariant, s.Winner, s.Phase)
	}
	if s.Settled() && s.PhaseDeadline != nil {
		return fmt.Errorf("%w: settled session still has a deadline", ErrInvariant)
	}
	return nil
}

// CheckTransition verifies the rules that relate a session to its previous
// stored state: fixed roles and words, monotonic deaths and a winner that
// never changes.
func CheckTransition(before, after *Session) error {
	if before == nil {
		return CheckInvariants(after)
	}
	if err := CheckInvariants(after); err != nil {
		return err
	}
	if before.Winner != "" && after.Winner != before.Winner {
		return fmt.Errorf("%w: winner changed from %s to %s", ErrInvariant, before.Winner, after.Winner)
	}
	for _, old := range before.Players {
		p := after.Player(old.PlayerID)
		if p == nil {
			return fmt.Errorf("%w: player %s disappeared", ErrInvariant, old.PlayerID)
		}
		if p.Role != old.Role || p.Word != old.Word {
			return fmt.Errorf("%w: player %s changed role or word", ErrInvariant, old.PlayerID)
		}
		if p.Alive && !old.Alive {
			return fmt.Errorf("%w: player %s came back to life", ErrInvariant, old.PlayerID)
		}
	}
	return nil
}
