package server

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StartSweeper schedules the proactive tick over active rooms and the
// hourly archive of settled sessions. The returned cron must be stopped
// on shutdown.
func StartSweeper(svc *Service, tickSeconds, archiveAfterHours int, logger *zap.Logger) (*cron.Cron, error) {
	c := cron.New()
	if tickSeconds > 0 {
		_, err := c.AddFunc(fmt.Sprintf("@every %ds", tickSeconds), func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(tickSeconds)*time.Second)
			defer cancel()
			svc.Sweep(ctx)
		})
		if err != nil {
			return nil, err
		}
	}
	if archiveAfterHours > 0 {
		_, err := c.AddFunc("@hourly", func() {
			cutoff := time.Now().UTC().Add(-time.Duration(archiveAfterHours) * time.Hour)
			removed, err := svc.Archive(context.Background(), cutoff)
			if err != nil {
				logger.Error("session archive failed", zap.Error(err))
				return
			}
			logger.Info("settled sessions archived", zap.Int("sessions_removed", removed))
		})
		if err != nil {
			return nil, err
		}
	}
	c.Start()
	return c, nil
}
