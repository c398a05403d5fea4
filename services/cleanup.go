package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"questboard/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CleanupService periodically closes open quests whose deadline has passed
type CleanupService struct {
	db       *gorm.DB
	log      *zap.Logger
	interval time.Duration
	now      func() time.Time

	started atomic.Bool
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

func NewCleanupService(db *gorm.DB, log *zap.Logger, interval time.Duration) *CleanupService {
	return &CleanupService{
		db:       db,
		log:      log,
		interval: interval,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the worker until ctx is cancelled or Stop is called.
// It blocks; run it in its own goroutine.
func (s *CleanupService) Start(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("Quest cleanup worker started", zap.Duration("interval", s.interval))
	for {
		if _, err := s.CloseExpiredQuests(ctx); err != nil && ctx.Err() == nil {
			s.log.Error("Closing expired quests failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
		}
	}
}

// Stop signals the worker and waits for it to exit. Safe to call more than
// once, and before Start.
func (s *CleanupService) Stop() {
	s.once.Do(func() { close(s.stop) })
	if s.started.Load() {
		<-s.done
	}
}

// CloseExpiredQuests moves open quests past their deadline to closed and
// returns how many were changed
func (s *CleanupService) CloseExpiredQuests(ctx context.Context) (int64, error) {
	now := s.now().UTC()
	res := s.db.WithContext(ctx).Model(&models.Quest{}).
		Where("status = ? AND deadline IS NOT NULL AND deadline < ?", models.QuestStatusOpen, now).
		Updates(map[string]interface{}{
			"status":     models.QuestStatusClosed,
			"updated_at": now,
		})
	if res.Error != nil {
		return 0, res.Error
	}

	if res.RowsAffected > 0 {
		s.log.Info("Closed expired quests", zap.Int64("count", res.RowsAffected))
	}
	return res.RowsAffected, nil
}
