package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/iGoriLLapshin/telegram-bot-test/internal/storage"
)

// Janitor periodically drops sessions that stopped receiving events.
// A user who starts a quiz without a deadline configured and walks away
// would otherwise pin their session in memory forever.
type Janitor struct {
	store  *storage.SessionStore
	ttl    time.Duration
	logger *zap.Logger
}

// NewJanitor creates a janitor sweeping sessions idle longer than ttl.
func NewJanitor(store *storage.SessionStore, ttl time.Duration, logger *zap.Logger) *Janitor {
	return &Janitor{
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

// Start runs the sweep loop until the context is cancelled.
func (j *Janitor) Start(ctx context.Context) {
	if j.ttl <= 0 {
		j.logger.Info("session janitor disabled")
		return
	}

	j.logger.Info("session janitor started", zap.Duration("ttl", j.ttl))

	c := cron.New()

	_, err := c.AddFunc("* * * * *", func() {
		j.sweep()
	})
	if err != nil {
		j.logger.Error("failed to add janitor cron job", zap.Error(err))
		return
	}

	c.Start()

	<-ctx.Done()

	c.Stop()
	j.logger.Info("session janitor stopped")
}

func (j *Janitor) sweep() {
	removed := 0

	j.store.ForEach(func(userID int64, entry *storage.Entry) {
		if entry.IdleFor() < j.ttl {
			return
		}
		// Re-check and delete under the entry lock; an event that is about
		// to touch the session is either already holding the lock (the
		// re-check sees the fresh timestamp) or will find the entry gone
		// and report no_session, never a half-swept session.
		entry.Lock()
		if entry.IdleFor() >= j.ttl && j.store.DeleteIf(userID, entry) {
			removed++
		}
		entry.Unlock()
	})

	if removed > 0 {
		j.logger.Info("stale sessions removed", zap.Int("count", removed))
	}
}
