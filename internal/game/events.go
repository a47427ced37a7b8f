package game

// EventKind identifies notifications handed to the event publisher.
type EventKind string

const (
	EventPhaseChange  EventKind = "PHASE_CHANGE"
	EventStateSync    EventKind = "STATE_SYNC"
	EventSpeak        EventKind = "SPEAK"
	EventVote         EventKind = "VOTE"
	EventNight        EventKind = "NIGHT_ACTION"
	EventElimination  EventKind = "ELIMINATION"
	EventPresence     EventKind = "PRESENCE"
	EventRoleAssigned EventKind = "ROLE_ASSIGNED"
	EventSettlement   EventKind = "SETTLEMENT"
)

// Event is a state-change notification. Recipients empty means the whole room.
type Event struct {
	Kind       EventKind `json:"kind"`
	Phase      Phase     `json:"phase"`
	Round      int       `json:"round"`
	Seat       int       `json:"seat,omitempty"`
	Payload    any       `json:"payload,omitempty"`
	Recipients []string  `json:"-"`
}

type RoleAssignedPayload struct {
	Role Role   `json:"role"`
	Word string `json:"word"`
	Seat int    `json:"seat"`
}

type EliminationPayload struct {
	PlayerID string `json:"player_id"`
	Role     Role   `json:"role"`
	Cause    string `json:"cause"`
}

type PresencePayload struct {
	PlayerID   string           `json:"player_id"`
	Connection ConnectionStatus `json:"connection"`
}

type SettlementPayload struct {
	Winner    Faction  `json:"winner"`
	WinnerIDs []string `json:"winner_ids"`
}

func phaseEvent(s *Session, kind EventKind) Event {
	return Event{Kind: kind, Phase: s.Phase, Round: s.Round, Seat: s.CurrentSeat}
}
