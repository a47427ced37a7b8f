package game

import (
	"context"
	"sort"
	"time"
)

// Randomizer is the source of randomness used for shuffles and AI choices.
type Randomizer interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// Setup is everything the assigner needs to build a fresh session.
type Setup struct {
	RoomID   string
	Type     GameType
	Seats    []Seat
	Settings Settings
	Words    WordPair
	Now      time.Time
}

// Rules is the per-game capability set. The shared engine drives the
// discussion and voting loop; everything game-specific goes through here.
type Rules interface {
	Type() GameType
	MinPlayers() int
	// Assign builds the initial session from a validated roster.
	Assign(setup Setup, rng Randomizer) *Session
	DiscussionPhase() Phase
	VotingPhase() Phase
	SpeechWindow(s Settings) time.Duration
	// Speech asks the generator for a synthesized turn for p.
	Speech(ctx context.Context, gen Generator, s *Session, p *PlayerState) (string, error)
	CheckWinner(s *Session) (Faction, bool)
	// AfterVote starts the next cycle once a vote resolved without a winner.
	AfterVote(s *Session, now time.Time) []Event
}

// NightRules is implemented by games with a simultaneous night phase.
type NightRules interface {
	FillNight(s *Session, rng Randomizer, now time.Time) []Event
	NightPending(s *Session) bool
	ResolveNight(s *Session) []string
	ApplyNightAction(s *Session, actor *PlayerState, req NightRequest, now time.Time) error
}

// FactionOf maps a role onto its win-condition grouping.
func FactionOf(role Role) Faction {
	switch role {
	case RoleUndercover:
		return FactionUndercover
	case RoleCivilian, RoleBlank:
		return FactionCivilian
	case RoleWerewolf:
		return FactionWerewolf
	default:
		return FactionVillager
	}
}

func aliveSeats(s *Session) []int {
	seats := make([]int, 0, len(s.Players))
	for _, p := range s.Players {
		if p.Alive {
			seats = append(seats, p.Seat)
		}
	}
	sort.Ints(seats)
	return seats
}

// nextSpeakerSeat returns the lowest alive seat that has not spoken yet.
func nextSpeakerSeat(s *Session) int {
	for _, seat := range aliveSeats(s) {
		p := s.playerAtSeat(seat)
		if p != nil && !s.hasSpoken(p.PlayerID) {
			return seat
		}
	}
	return 0
}

func startDiscussion(s *Session, rules Rules, now time.Time) Event {
	s.Phase = rules.DiscussionPhase()
	s.Speakers = nil
	s.Votes = map[string]string{}
	s.CurrentSeat = nextSpeakerSeat(s)
	s.setDeadline(now, rules.SpeechWindow(s.Settings))
	return phaseEvent(s, EventPhaseChange)
}

func startVoting(s *Session, rules Rules, now time.Time) Event {
	s.Phase = rules.VotingPhase()
	s.CurrentSeat = 0
	s.Votes = map[string]string{}
	s.setDeadline(now, s.Settings.vote())
	s.addLog(logSystem, "Voting begins", now)
	return phaseEvent(s, EventPhaseChange)
}

func countAlive(s *Session, match func(p *PlayerState) bool) (matched, others int) {
	for i := range s.Players {
		p := &s.Players[i]
		if !p.Alive {
			continue
		}
		if match(p) {
			matched++
		} else {
			others++
		}
	}
	return matched, others
}

func newPlayers(seats []Seat, now time.Time) []PlayerState {
	players := make([]PlayerState, 0, len(seats))
	for _, seat := range seats {
		players = append(players, PlayerState{
			PlayerID:     seat.PlayerID,
			DisplayName:  seat.DisplayName,
			Seat:         seat.SeatNumber,
			IsAI:         seat.IsAI,
			Alive:        true,
			Connection:   ConnOnline,
			LastActiveAt: now,
		})
	}
	sort.Slice(players, func(i, j int) bool { return players[i].Seat < players[j].Seat })
	return players
}

func shuffledIndexes(n int, rng Randomizer) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
	return order
}

func validateRoster(seats []Seat, minPlayers int) error {
	if len(seats) < minPlayers {
		return ErrInsufficientPlayers
	}
	ids := make(map[string]struct{}, len(seats))
	numbers := make(map[int]struct{}, len(seats))
	for _, seat := range seats {
		if seat.PlayerID == "" || seat.SeatNumber <= 0 {
			return ErrInvalidRoster
		}
		if _, dup := ids[seat.PlayerID]; dup {
			return ErrInvalidRoster
		}
		if _, dup := numbers[seat.SeatNumber]; dup {
			return ErrInvalidRoster
		}
		ids[seat.PlayerID] = struct{}{}
		numbers[seat.SeatNumber] = struct{}{}
	}
	return nil
}
