package service

import (
	"context"
	"log/slog"
	"time"
)

// Purger deletes expired emulator state. Each method reports how many
// records it removed.
type Purger interface {
	DeleteExpiredCodes(ctx context.Context) (int, error)
	DeleteExpiredRefreshTokens(ctx context.Context) (int, error)
}

// HousekeepingService periodically drops expired one-time codes and refresh
// tokens so a long-running emulator does not grow without bound.
type HousekeepingService struct {
	Store    Purger
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(store Purger, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop shuts down the worker and waits for an in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup runs each purge independently; one failing does not skip the rest.
func (s *HousekeepingService) cleanup() {
	ctx := context.Background()

	codes, err := s.Store.DeleteExpiredCodes(ctx)
	if err != nil {
		s.Logger.Error("failed to delete expired codes", "error", err)
	}

	tokens, err := s.Store.DeleteExpiredRefreshTokens(ctx)
	if err != nil {
		s.Logger.Error("failed to delete expired refresh tokens", "error", err)
	}

	s.Logger.Debug("housekeeping cleanup completed", "codes", codes, "refresh_tokens", tokens)
}
