package server

import (
	"context"
	"sort"
	"sync"
	"time"

	"party-deduction/internal/game"

	"github.com/google/uuid"
)

const maxRoomSeats = 12

type RoomStatus string

const (
	RoomWaiting RoomStatus = "WAITING"
	RoomPlaying RoomStatus = "PLAYING"
)

var (
	ErrRoomFull     = &game.Error{Kind: game.KindValidation, Code: "room_full", Message: "the room is full"}
	ErrRoomPlaying  = &game.Error{Kind: game.KindValidation, Code: "room_playing", Message: "a game is already running in this room"}
	ErrSeatConflict = &game.Error{Kind: game.KindValidation, Code: "seat_conflict", Message: "could not reserve a seat, try again"}
)

// Room is the lobby record that owns the roster and the config a game
// starts from.
type Room struct {
	ID        string         `json:"id"`
	GameType  game.GameType  `json:"game_type"`
	HostID    string         `json:"host_id"`
	Status    RoomStatus     `json:"status"`
	Config    map[string]any `json:"config"`
	Seats     []game.Seat    `json:"seats"`
	CreatedAt time.Time      `json:"created_at"`
}

func (r Room) seat(playerID string) (game.Seat, bool) {
	for _, seat := range r.Seats {
		if seat.PlayerID == playerID {
			return seat, true
		}
	}
	return game.Seat{}, false
}

// RoomDirectory owns room membership.
type RoomDirectory interface {
	Create(ctx context.Context, gameType game.GameType, hostID, hostName string, config map[string]any) (Room, error)
	Get(ctx context.Context, roomID string) (Room, error)
	// Join seats a player at the lowest free seat number. Joining twice
	// returns the existing seat.
	Join(ctx context.Context, roomID, playerID, name string, isAI bool) (Room, game.Seat, error)
	SetStatus(ctx context.Context, roomID string, status RoomStatus) error
}

func newRoomID() string {
	return uuid.NewString()
}

func lowestFreeSeat(seats []game.Seat) int {
	taken := make(map[int]bool, len(seats))
	for _, seat := range seats {
		taken[seat.SeatNumber] = true
	}
	for n := 1; ; n++ {
		if !taken[n] {
			return n
		}
	}
}

// MemoryRooms is the in-process room directory.
type MemoryRooms struct {
	mu    sync.Mutex
	rooms map[string]*Room
	now   func() time.Time
}

func NewMemoryRooms() *MemoryRooms {
	return &MemoryRooms{
		rooms: make(map[string]*Room),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryRooms) Create(_ context.Context, gameType game.GameType, hostID, hostName string, config map[string]any) (Room, error) {
	room := &Room{
		ID:        newRoomID(),
		GameType:  gameType,
		HostID:    hostID,
		Status:    RoomWaiting,
		Config:    copyConfig(config),
		CreatedAt: m.now(),
		Seats: []game.Seat{{
			PlayerID:    hostID,
			DisplayName: hostName,
			SeatNumber:  1,
			IsHost:      true,
		}},
	}
	m.mu.Lock()
	m.rooms[room.ID] = room
	m.mu.Unlock()
	return copyRoom(room), nil
}

func (m *MemoryRooms) Get(_ context.Context, roomID string) (Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[roomID]
	if !ok {
		return Room{}, game.ErrRoomNotFound
	}
	return copyRoom(room), nil
}

func (m *MemoryRooms) Join(_ context.Context, roomID, playerID, name string, isAI bool) (Room, game.Seat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[roomID]
	if !ok {
		return Room{}, game.Seat{}, game.ErrRoomNotFound
	}
	if seat, ok := room.seat(playerID); ok {
		return copyRoom(room), seat, nil
	}
	if room.Status != RoomWaiting {
		return Room{}, game.Seat{}, ErrRoomPlaying
	}
	if len(room.Seats) >= maxRoomSeats {
		return Room{}, game.Seat{}, ErrRoomFull
	}
	seat := game.Seat{
		PlayerID:    playerID,
		DisplayName: name,
		SeatNumber:  lowestFreeSeat(room.Seats),
		IsAI:        isAI,
	}
	room.Seats = append(room.Seats, seat)
	sort.Slice(room.Seats, func(i, j int) bool { return room.Seats[i].SeatNumber < room.Seats[j].SeatNumber })
	return copyRoom(room), seat, nil
}

func (m *MemoryRooms) SetStatus(_ context.Context, roomID string, status RoomStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[roomID]
	if !ok {
		return game.ErrRoomNotFound
	}
	room.Status = status
	return nil
}

func copyRoom(room *Room) Room {
	out := *room
	out.Seats = append([]game.Seat(nil), room.Seats...)
	out.Config = copyConfig(room.Config)
	return out
}

func copyConfig(config map[string]any) map[string]any {
	out := make(map[string]any, len(config))
	for k, v := range config {
		out[k] = v
	}
	return out
}
