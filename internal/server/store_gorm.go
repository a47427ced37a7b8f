package server

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"party-deduction/internal/db"
	"party-deduction/internal/game"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps one snapshot row per room in game_sessions.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(conn *gorm.DB) *GormStore {
	return &GormStore{db: conn}
}

func (g *GormStore) Load(ctx context.Context, roomID string) (*game.Session, error) {
	var record db.GameSession
	err := g.db.WithContext(ctx).Where("room_id = ?", roomID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errNoSession
	}
	if err != nil {
		return nil, err
	}
	return decodeSession(record.Snapshot)
}

func (g *GormStore) Save(ctx context.Context, s *game.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	updatedAt := s.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	record := db.GameSession{
		RoomID:    s.RoomID,
		GameType:  string(s.Type),
		Phase:     string(s.Phase),
		Round:     s.Round,
		Settled:   s.Settled(),
		Snapshot:  datatypes.JSON(data),
		CreatedAt: s.StartedAt,
		UpdatedAt: updatedAt,
	}
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"game_type", "phase", "round", "settled", "snapshot", "created_at", "updated_at"}),
	}).Create(&record).Error
}

func (g *GormStore) ActiveRooms(ctx context.Context) ([]string, error) {
	var ids []string
	err := g.db.WithContext(ctx).Model(&db.GameSession{}).
		Where("settled = ?", false).
		Order("room_id").
		Pluck("room_id", &ids).Error
	return ids, err
}

func (g *GormStore) ArchiveSettled(ctx context.Context, cutoff time.Time) (int, error) {
	result := g.db.WithContext(ctx).
		Where("settled = ? AND updated_at < ?", true, cutoff).
		Delete(&db.GameSession{})
	return int(result.RowsAffected), result.Error
}
