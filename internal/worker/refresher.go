package worker

import (
	"context"
	"time"

	"github.com/jwalitptl/patient-portal/pkg/logger"
)

// Refreshable reloads its backing data in place.
type Refreshable interface {
	Refresh(ctx context.Context) error
}

// Refresher reloads the data source on a fixed interval so readers never pay
// for a cold load.
type Refresher struct {
	source   Refreshable
	interval time.Duration
	logger   *logger.Logger
}

func NewRefresher(source Refreshable, interval time.Duration, l *logger.Logger) *Refresher {
	return &Refresher{
		source:   source,
		interval: interval,
		logger:   l.WithFields(map[string]interface{}{"worker": "refresher"}),
	}
}

// Start blocks until ctx is cancelled.
func (w *Refresher) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("refresher started", "interval", w.interval.String())

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("refresher stopped")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *Refresher) refresh(ctx context.Context) {
	start := time.Now()
	if err := w.source.Refresh(ctx); err != nil {
		// Keep serving the last good snapshot.
		w.logger.Warn("data refresh failed", "error", err.Error())
		return
	}
	w.logger.Debug("data refreshed", "duration", time.Since(start).String())
}
