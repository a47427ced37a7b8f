package game

import "time"

// GameType identifies the rule set a session runs under.
type GameType string

const (
	TypeUndercover GameType = "UNDERCOVER"
	TypeWerewolf   GameType = "WEREWOLF"
)

// ParseGameType accepts the lower-case room identifiers used by the lobby.
func ParseGameType(raw string) (GameType, bool) {
	switch raw {
	case "undercover", "UNDERCOVER":
		return TypeUndercover, true
	case "werewolf", "WEREWOLF":
		return TypeWerewolf, true
	default:
		return "", false
	}
}

// Phase is a stage of the per-room state machine.
type Phase string

const (
	PhaseWaiting     Phase = "WAITING"
	PhaseDescription Phase = "DESCRIPTION"
	PhaseVoting      Phase = "VOTING"
	PhaseNight       Phase = "NIGHT"
	PhaseDayDiscuss  Phase = "DAY_DISCUSS"
	PhaseDayVote     Phase = "DAY_VOTE"
	PhaseSettlement  Phase = "SETTLEMENT"
)

type Role string

const (
	RoleCivilian   Role = "CIVILIAN"
	RoleUndercover Role = "UNDERCOVER"
	RoleBlank      Role = "BLANK"
	RoleWerewolf   Role = "WEREWOLF"
	RoleSeer       Role = "SEER"
	RoleWitch      Role = "WITCH"
	RoleHunter     Role = "HUNTER"
	RoleVillager   Role = "VILLAGER"
)

// Faction is the win-condition grouping of a role.
type Faction string

const (
	FactionUndercover Faction = "UNDERCOVER"
	FactionCivilian   Faction = "CIVILIAN"
	FactionWerewolf   Faction = "WEREWOLF"
	FactionVillager   Faction = "VILLAGER"
)

type ConnectionStatus string

const (
	ConnOnline       ConnectionStatus = "ONLINE"
	ConnDisconnected ConnectionStatus = "DISCONNECTED"
	ConnAITakeover   ConnectionStatus = "AI_TAKEOVER"
)

// Abstain is the ballot value for a vote cast without a target.
const Abstain = "abstain"

const (
	logSystem = "system"
	logSpeak  = "speak"
	logVote   = "vote"
	logNight  = "night"
)

// Seat is one roster entry handed over by the room directory.
type Seat struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	SeatNumber  int    `json:"seat_number"`
	IsAI        bool   `json:"is_ai"`
	IsHost      bool   `json:"is_host"`
}

// WordPair is the content used by one Undercover game.
type WordPair struct {
	Civilian   string `json:"civilian"`
	Undercover string `json:"undercover"`
}

type PlayerState struct {
	PlayerID       string           `json:"player_id"`
	DisplayName    string           `json:"display_name"`
	Seat           int              `json:"seat"`
	IsAI           bool             `json:"is_ai"`
	Role           Role             `json:"role"`
	Word           string           `json:"word"`
	Alive          bool             `json:"alive"`
	Connection     ConnectionStatus `json:"connection"`
	LastActiveAt   time.Time        `json:"last_active_at"`
	DisconnectedAt *time.Time       `json:"disconnected_at,omitempty"`
}

func (p *PlayerState) isDisconnected() bool {
	return p.Connection == ConnDisconnected || p.Connection == ConnAITakeover
}

type LogEntry struct {
	Type    string    `json:"type"`
	Message string    `json:"message"`
	Round   int       `json:"round"`
	At      time.Time `json:"at"`
}

// UndercoverData holds the secrets of an Undercover session.
type UndercoverData struct {
	CivilianWord   string `json:"civilian_word"`
	UndercoverWord string `json:"undercover_word"`
	HasBlank       bool   `json:"has_blank"`
}

type SeerResult struct {
	Round    int    `json:"round"`
	SeerID   string `json:"seer_id"`
	TargetID string `json:"target_id"`
	IsWolf   bool   `json:"is_wolf"`
}

// WerewolfData holds the night state of a Werewolf session. Targets are
// cleared at the start of every night; the potion flags persist.
type WerewolfData struct {
	WolfTarget        string       `json:"wolf_target,omitempty"`
	SeerTarget        string       `json:"seer_target,omitempty"`
	WitchSaveTarget   string       `json:"witch_save_target,omitempty"`
	WitchPoisonTarget string       `json:"witch_poison_target,omitempty"`
	WitchActed        bool         `json:"witch_acted"`
	AntidoteUsed      bool         `json:"antidote_used"`
	PoisonUsed        bool         `json:"poison_used"`
	SeerResults       []SeerResult `json:"seer_results"`
	LastNightDeaths   []string     `json:"last_night_deaths"`
}

func (d *WerewolfData) resetNight() {
	d.WolfTarget = ""
	d.SeerTarget = ""
	d.WitchSaveTarget = ""
	d.WitchPoisonTarget = ""
	d.WitchActed = false
}

// Session is the mutable record of one room's game. Exactly one of
// Undercover and Werewolf is set, matching Type.
type Session struct {
	RoomID        string            `json:"room_id"`
	Type          GameType          `json:"type"`
	Phase         Phase             `json:"phase"`
	Round         int               `json:"round"`
	CurrentSeat   int               `json:"current_seat"`
	Players       []PlayerState     `json:"players"`
	PhaseDeadline *time.Time        `json:"phase_deadline,omitempty"`
	Speakers      []string          `json:"speakers"`
	Votes         map[string]string `json:"votes"`
	Undercover    *UndercoverData   `json:"undercover,omitempty"`
	Werewolf      *WerewolfData     `json:"werewolf,omitempty"`
	Winner        Faction           `json:"winner,omitempty"`
	WinnerIDs     []string          `json:"winner_ids,omitempty"`
	StatsRecorded bool              `json:"stats_recorded"`
	Logs          []LogEntry        `json:"logs"`
	Settings      Settings          `json:"settings"`
	StartedAt     time.Time         `json:"started_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// Settled reports whether the session reached its terminal phase.
func (s *Session) Settled() bool {
	return s.Phase == PhaseSettlement
}

func (s *Session) Player(playerID string) *PlayerState {
	if playerID == "" {
		return nil
	}
	for i := range s.Players {
		if s.Players[i].PlayerID == playerID {
			return &s.Players[i]
		}
	}
	return nil
}

func (s *Session) playerAtSeat(seat int) *PlayerState {
	if seat <= 0 {
		return nil
	}
	for i := range s.Players {
		if s.Players[i].Seat == seat {
			return &s.Players[i]
		}
	}
	return nil
}

// CurrentSpeaker returns the alive player holding the current seat.
func (s *Session) CurrentSpeaker() *PlayerState {
	p := s.playerAtSeat(s.CurrentSeat)
	if p == nil || !p.Alive {
		return nil
	}
	return p
}

func (s *Session) alivePlayers() []*PlayerState {
	out := make([]*PlayerState, 0, len(s.Players))
	for i := range s.Players {
		if s.Players[i].Alive {
			out = append(out, &s.Players[i])
		}
	}
	return out
}

// AliveCount is the number of players still in the game.
func (s *Session) AliveCount() int {
	count := 0
	for _, p := range s.Players {
		if p.Alive {
			count++
		}
	}
	return count
}

func (s *Session) hasSpoken(playerID string) bool {
	for _, id := range s.Speakers {
		if id == playerID {
			return true
		}
	}
	return false
}

func (s *Session) addSpeaker(playerID string) {
	if !s.hasSpoken(playerID) {
		s.Speakers = append(s.Speakers, playerID)
	}
}

func (s *Session) addLog(kind, message string, at time.Time) {
	s.Logs = append(s.Logs, LogEntry{Type: kind, Message: message, Round: s.Round, At: at})
}

func (s *Session) setDeadline(at time.Time, d time.Duration) {
	deadline := at.Add(d)
	s.PhaseDeadline = &deadline
}

func (s *Session) deadlinePassed(now time.Time) bool {
	return s.PhaseDeadline != nil && now.After(*s.PhaseDeadline)
}
