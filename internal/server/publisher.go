package server

import (
	"context"
	"encoding/json"
	"time"

	"party-deduction/internal/db"
	"party-deduction/internal/game"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Publisher fans out engine events after the room lock is released.
// Delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, roomID string, events []game.Event)
}

type multiPublisher []Publisher

func (m multiPublisher) Publish(ctx context.Context, roomID string, events []game.Event) {
	for _, p := range m {
		p.Publish(ctx, roomID, events)
	}
}

// eventLog appends every event to game_events.
type eventLog struct {
	db     *gorm.DB
	logger *zap.Logger
}

func newEventLog(conn *gorm.DB, logger *zap.Logger) *eventLog {
	return &eventLog{db: conn, logger: logger}
}

func (l *eventLog) Publish(ctx context.Context, roomID string, events []game.Event) {
	if len(events) == 0 {
		return
	}
	now := time.Now().UTC()
	rows := make([]db.Event, 0, len(events))
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			l.logger.Warn("event encode failed", zap.String("room_id", roomID), zap.String("type", string(event.Kind)), zap.Error(err))
			continue
		}
		rows = append(rows, db.Event{
			RoomID:    roomID,
			Round:     event.Round,
			Phase:     string(event.Phase),
			Type:      string(event.Kind),
			Private:   len(event.Recipients) > 0,
			Payload:   datatypes.JSON(payload),
			CreatedAt: now,
		})
	}
	if len(rows) == 0 {
		return
	}
	if err := l.db.WithContext(ctx).Create(&rows).Error; err != nil {
		l.logger.Warn("event log write failed", zap.String("room_id", roomID), zap.Error(err))
	}
}
