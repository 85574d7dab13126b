package sweeper

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/signageops/signage-service/internal/store"
)

// Sweeper periodically prunes display tracking state (heartbeats and
// reload acknowledgments) for displays not seen within the retention
// window. The maps otherwise grow with every distinct display id ever
// seen. Pruning never changes what any single poll observes.
type Sweeper struct {
	store    *store.Store
	retain   time.Duration
	interval time.Duration
	logger   *slog.Logger
}

func New(st *store.Store, retain time.Duration) *Sweeper {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	return &Sweeper{
		store:    st,
		retain:   retain,
		interval: time.Hour,
		logger:   logger,
	}
}

func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Display sweeper started",
		"interval", s.interval.String(),
		"retain", s.retain.String())

	// Run once immediately on startup
	s.sweep()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Display sweeper shutting down")
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Sweeper) sweep() {
	startTime := time.Now()

	removed := s.store.PruneDisplays(time.Now().Add(-s.retain))
	if removed == 0 {
		return
	}

	s.logger.Info("Pruned stale display entries",
		"entries_removed", removed,
		"duration_ms", time.Since(startTime).Milliseconds())
}
