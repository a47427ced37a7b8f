package game

import (
	"fmt"
	"math"
	"time"
)

type PendingKind string

const (
	PendingSpeak     PendingKind = "SPEAK"
	PendingVote      PendingKind = "VOTE"
	PendingWolfKill  PendingKind = "WOLF_KILL"
	PendingSeerCheck PendingKind = "SEER_CHECK"
	PendingWitch     PendingKind = "WITCH"
)

// PendingAction tells a client what the viewer is expected to do next.
type PendingAction struct {
	Kind        PendingKind `json:"kind"`
	Prompt      string      `json:"prompt"`
	SecondsLeft int         `json:"seconds_left"`
	// Victim is tonight's wolf target, shown to a witch who still holds
	// the antidote.
	Victim string `json:"victim,omitempty"`
	// CanSave and CanPoison describe the witch's remaining potions.
	CanSave   bool `json:"can_save,omitempty"`
	CanPoison bool `json:"can_poison,omitempty"`
}

type PlayerView struct {
	PlayerID    string           `json:"player_id"`
	DisplayName string           `json:"display_name"`
	Seat        int              `json:"seat"`
	IsAI        bool             `json:"is_ai"`
	Alive       bool             `json:"alive"`
	Connection  ConnectionStatus `json:"connection"`
	Role        Role             `json:"role,omitempty"`
	Word        *string          `json:"word,omitempty"`
}

// ViewExtras carries per-game details that are safe for this viewer.
type ViewExtras struct {
	CivilianWord    string       `json:"civilian_word,omitempty"`
	UndercoverWord  string       `json:"undercover_word,omitempty"`
	SeerResults     []SeerResult `json:"seer_results,omitempty"`
	LastNightDeaths []string     `json:"last_night_deaths,omitempty"`
}

// View is the role-redacted snapshot returned to a single caller.
type View struct {
	RoomID             string            `json:"room_id"`
	GameType           GameType          `json:"game_type,omitempty"`
	Phase              Phase             `json:"phase"`
	Round              int               `json:"round"`
	CurrentSeat        int               `json:"current_seat,omitempty"`
	CurrentSpeakerName string            `json:"current_speaker_name,omitempty"`
	Winner             Faction           `json:"winner,omitempty"`
	MySeat             int               `json:"my_seat,omitempty"`
	MyRole             Role              `json:"my_role,omitempty"`
	MyWord             *string           `json:"my_word,omitempty"`
	PhaseDeadline      *time.Time        `json:"phase_deadline,omitempty"`
	Players            []PlayerView      `json:"players"`
	Logs               []LogEntry        `json:"logs"`
	Votes              map[string]string `json:"votes"`
	Extras             ViewExtras        `json:"extras"`
	PendingAction      *PendingAction    `json:"pending_action,omitempty"`
}

// Project renders s for viewerID. An empty viewerID yields a spectator view
// without any secrets until settlement. recent limits the number of log
// entries; zero or less returns all of them.
func Project(s *Session, viewerID string, now time.Time, recent int) View {
	settled := s.Settled()
	v := View{
		RoomID:        s.RoomID,
		GameType:      s.Type,
		Phase:         s.Phase,
		Round:         s.Round,
		CurrentSeat:   s.CurrentSeat,
		Winner:        s.Winner,
		PhaseDeadline: s.PhaseDeadline,
		Votes:         make(map[string]string, len(s.Votes)),
	}
	if speaker := s.CurrentSpeaker(); speaker != nil {
		v.CurrentSpeakerName = speaker.DisplayName
	}
	for voter, target := range s.Votes {
		v.Votes[voter] = target
	}

	for _, p := range s.Players {
		pv := PlayerView{
			PlayerID:    p.PlayerID,
			DisplayName: p.DisplayName,
			Seat:        p.Seat,
			IsAI:        p.IsAI,
			Alive:       p.Alive,
			Connection:  p.Connection,
		}
		if settled || (viewerID != "" && p.PlayerID == viewerID) {
			word := p.Word
			pv.Role = p.Role
			pv.Word = &word
		}
		v.Players = append(v.Players, pv)
	}

	logs := s.Logs
	if recent > 0 && len(logs) > recent {
		logs = logs[len(logs)-recent:]
	}
	v.Logs = append([]LogEntry(nil), logs...)

	viewer := s.Player(viewerID)
	if viewer != nil {
		word := viewer.Word
		v.MySeat = viewer.Seat
		v.MyRole = viewer.Role
		v.MyWord = &word
	}

	if s.Undercover != nil && settled {
		v.Extras.CivilianWord = s.Undercover.CivilianWord
		v.Extras.UndercoverWord = s.Undercover.UndercoverWord
	}
	if s.Werewolf != nil {
		v.Extras.LastNightDeaths = append([]string(nil), s.Werewolf.LastNightDeaths...)
		if viewer != nil && viewer.Role == RoleSeer {
			for _, r := range s.Werewolf.SeerResults {
				if r.SeerID == viewer.PlayerID {
					v.Extras.SeerResults = append(v.Extras.SeerResults, r)
				}
			}
		}
	}

	if viewer != nil && !settled {
		v.PendingAction = pendingAction(s, viewer, now)
	}
	return v
}

// WaitingView is returned for a room that has no session yet.
func WaitingView(roomID string, t GameType, seats []Seat, viewerID string) View {
	v := View{
		RoomID:   roomID,
		GameType: t,
		Phase:    PhaseWaiting,
		Votes:    map[string]string{},
		Logs:     []LogEntry{},
	}
	for _, seat := range seats {
		v.Players = append(v.Players, PlayerView{
			PlayerID:    seat.PlayerID,
			DisplayName: seat.DisplayName,
			Seat:        seat.SeatNumber,
			IsAI:        seat.IsAI,
			Alive:       true,
			Connection:  ConnOnline,
		})
		if seat.PlayerID == viewerID {
			v.MySeat = seat.SeatNumber
		}
	}
	return v
}

func pendingAction(s *Session, viewer *PlayerState, now time.Time) *PendingAction {
	if !viewer.Alive {
		return nil
	}
	left := secondsLeft(s.PhaseDeadline, now)

	switch s.Phase {
	case PhaseDescription, PhaseDayDiscuss:
		if s.CurrentSeat != viewer.Seat {
			return nil
		}
		prompt := "Describe your word without giving it away."
		if s.Phase == PhaseDayDiscuss {
			prompt = "Share your thoughts with the village."
		}
		return &PendingAction{Kind: PendingSpeak, Prompt: prompt, SecondsLeft: left}
	case PhaseVoting, PhaseDayVote:
		if _, voted := s.Votes[viewer.PlayerID]; voted {
			return nil
		}
		return &PendingAction{Kind: PendingVote, Prompt: "Vote for the player you suspect, or abstain.", SecondsLeft: left}
	case PhaseNight:
		return nightPending(s, viewer, left)
	}
	return nil
}

func nightPending(s *Session, viewer *PlayerState, left int) *PendingAction {
	d := s.Werewolf
	if d == nil {
		return nil
	}
	switch viewer.Role {
	case RoleWerewolf:
		if d.WolfTarget != "" {
			return nil
		}
		return &PendingAction{Kind: PendingWolfKill, Prompt: "Choose tonight's victim.", SecondsLeft: left}
	case RoleSeer:
		if d.SeerTarget != "" {
			return nil
		}
		return &PendingAction{Kind: PendingSeerCheck, Prompt: "Choose a player to inspect.", SecondsLeft: left}
	case RoleWitch:
		if !witchCanAct(d) {
			return nil
		}
		pa := &PendingAction{
			Kind:        PendingWitch,
			SecondsLeft: left,
			CanSave:     !d.AntidoteUsed && d.WolfTarget != "",
			CanPoison:   !d.PoisonUsed,
		}
		if pa.CanSave {
			pa.Victim = d.WolfTarget
			name := d.WolfTarget
			if victim := s.Player(d.WolfTarget); victim != nil {
				name = victim.DisplayName
			}
			pa.Prompt = fmt.Sprintf("%s was attacked tonight. Use the antidote, the poison, or pass.", name)
		} else if pa.CanPoison {
			pa.Prompt = "Use the poison or pass."
		} else {
			pa.Prompt = "Waiting for the wolves to choose."
		}
		return pa
	}
	return nil
}

func secondsLeft(deadline *time.Time, now time.Time) int {
	if deadline == nil {
		return 0
	}
	left := deadline.Sub(now).Seconds()
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left))
}
