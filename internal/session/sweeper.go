package session

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper periodically removes abandoned sessions.
type Sweeper struct {
	cron *cron.Cron
}

// StartSweeper schedules SweepStale on the given cron spec (e.g.
// "@every 5m") with the given idle TTL.
func StartSweeper(store *Store, spec string, ttl time.Duration, logger *zap.Logger) (*Sweeper, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		store.SweepStale(ttl)
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	logger.Info("Session sweeper started", zap.String("spec", spec), zap.Duration("ttl", ttl))
	return &Sweeper{cron: c}, nil
}

func (s *Sweeper) Stop() {
	s.cron.Stop()
}
