package server

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"party-deduction/internal/db"
	"party-deduction/internal/game"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const seatRetries = 3

// GormRooms stores rooms and seats in Postgres. The unique index on
// (room_id, seat_number) arbitrates concurrent joins.
type GormRooms struct {
	db *gorm.DB
}

func NewGormRooms(conn *gorm.DB) *GormRooms {
	return &GormRooms{db: conn}
}

func (g *GormRooms) Create(ctx context.Context, gameType game.GameType, hostID, hostName string, config map[string]any) (Room, error) {
	raw, err := json.Marshal(copyConfig(config))
	if err != nil {
		return Room{}, err
	}
	now := time.Now().UTC()
	record := db.Room{
		ID:        newRoomID(),
		GameType:  string(gameType),
		HostID:    hostID,
		Status:    string(RoomWaiting),
		Config:    datatypes.JSON(raw),
		CreatedAt: now,
		UpdatedAt: now,
		Seats: []db.RoomSeat{{
			SeatNumber:  1,
			PlayerID:    hostID,
			DisplayName: hostName,
			IsHost:      true,
			JoinedAt:    now,
		}},
	}
	if err := g.db.WithContext(ctx).Create(&record).Error; err != nil {
		return Room{}, err
	}
	return roomFromRecord(record)
}

func (g *GormRooms) Get(ctx context.Context, roomID string) (Room, error) {
	record, err := g.load(ctx, g.db, roomID)
	if err != nil {
		return Room{}, err
	}
	return roomFromRecord(record)
}

func (g *GormRooms) load(ctx context.Context, tx *gorm.DB, roomID string) (db.Room, error) {
	var record db.Room
	err := tx.WithContext(ctx).
		Preload("Seats", func(q *gorm.DB) *gorm.DB { return q.Order("seat_number") }).
		Where("id = ?", roomID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Room{}, game.ErrRoomNotFound
	}
	return record, err
}

func (g *GormRooms) Join(ctx context.Context, roomID, playerID, name string, isAI bool) (Room, game.Seat, error) {
	for attempt := 0; attempt < seatRetries; attempt++ {
		record, err := g.load(ctx, g.db, roomID)
		if err != nil {
			return Room{}, game.Seat{}, err
		}
		room, err := roomFromRecord(record)
		if err != nil {
			return Room{}, game.Seat{}, err
		}
		if seat, ok := room.seat(playerID); ok {
			return room, seat, nil
		}
		if room.Status != RoomWaiting {
			return Room{}, game.Seat{}, ErrRoomPlaying
		}
		if len(room.Seats) >= maxRoomSeats {
			return Room{}, game.Seat{}, ErrRoomFull
		}
		seat := db.RoomSeat{
			RoomID:      roomID,
			SeatNumber:  lowestFreeSeat(room.Seats),
			PlayerID:    playerID,
			DisplayName: name,
			IsAI:        isAI,
			JoinedAt:    time.Now().UTC(),
		}
		if err := g.db.WithContext(ctx).Create(&seat).Error; err != nil {
			if isUniqueViolation(err) {
				// lost the race for this seat number, or the same player
				// joined concurrently; reload and try again
				continue
			}
			return Room{}, game.Seat{}, err
		}
		joined := seatFromRecord(seat)
		room.Seats = append(room.Seats, joined)
		return room, joined, nil
	}
	return Room{}, game.Seat{}, ErrSeatConflict
}

func (g *GormRooms) SetStatus(ctx context.Context, roomID string, status RoomStatus) error {
	result := g.db.WithContext(ctx).Model(&db.Room{}).
		Where("id = ?", roomID).
		Updates(map[string]any{"status": string(status), "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return game.ErrRoomNotFound
	}
	return nil
}

func roomFromRecord(record db.Room) (Room, error) {
	config := map[string]any{}
	if len(record.Config) > 0 {
		if err := json.Unmarshal(record.Config, &config); err != nil {
			return Room{}, err
		}
	}
	room := Room{
		ID:        record.ID,
		GameType:  game.GameType(record.GameType),
		HostID:    record.HostID,
		Status:    RoomStatus(record.Status),
		Config:    config,
		CreatedAt: record.CreatedAt,
		Seats:     make([]game.Seat, 0, len(record.Seats)),
	}
	for _, seat := range record.Seats {
		room.Seats = append(room.Seats, seatFromRecord(seat))
	}
	return room, nil
}

func seatFromRecord(seat db.RoomSeat) game.Seat {
	return game.Seat{
		PlayerID:    seat.PlayerID,
		DisplayName: seat.DisplayName,
		SeatNumber:  seat.SeatNumber,
		IsAI:        seat.IsAI,
		IsHost:      seat.IsHost,
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
