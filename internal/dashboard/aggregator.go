// Package dashboard aggregates the five independent data slices behind the
// console's main view: headline stats, recent-activity timeline, top
// threats, feed health, and geographic distribution, plus the best-effort
// notifications feed. Each slice is fetched concurrently, owns its state,
// and fails independently: only the primary stats slice surfaces an error.
package dashboard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lvonguyen/sentinel-console/internal/api"
	"github.com/lvonguyen/sentinel-console/internal/metrics"
)

// Result is one slice's state. On a failed refresh Data keeps its previous
// value so a visible dashboard never flashes to empty; Err records the
// failure for callers that want it.
type Result[T any] struct {
	Data      T
	Err       error
	Loaded    bool
	UpdatedAt time.Time
}

func (r *Result[T]) apply(data T, err error, now time.Time) {
	r.Err = err
	if err != nil {
		return
	}
	r.Data = data
	r.Loaded = true
	r.UpdatedAt = now
}

// Snapshot is a point-in-time copy of all dashboard state.
type Snapshot struct {
	Stats         Result[api.DashboardStats]
	Timeline      Result[[]api.TimelineEntry]
	TopThreats    Result[[]api.TopThreat]
	FeedHealth    Result[[]api.FeedHealth]
	Geo           Result[[]api.GeoPoint]
	Notifications Result[[]api.Notification]

	// Error is set only when the primary stats fetch fails.
	Error       string
	Refreshing  bool
	LastRefresh time.Time
}

// Fetcher is the slice of the API client the aggregator uses.
type Fetcher interface {
	DashboardStats(ctx context.Context) (api.DashboardStats, error)
	DashboardTimeline(ctx context.Context, limit int) ([]api.TimelineEntry, error)
	TopThreats(ctx context.Context, limit int) ([]api.TopThreat, error)
	FeedHealth(ctx context.Context) ([]api.FeedHealth, error)
	GeoDistribution(ctx context.Context) ([]api.GeoPoint, error)
	Notifications(ctx context.Context, limit int) ([]api.Notification, error)
}

// Config controls aggregation behavior.
type Config struct {
	PollInterval  time.Duration
	TimelineLimit int
	TopThreats    int
}

// DefaultConfig returns the standard dashboard settings.
func DefaultConfig() Config {
	return Config{
		PollInterval:  60 * time.Second,
		TimelineLimit: 50,
		TopThreats:    20,
	}
}

// Aggregator owns the dashboard state and its refresh schedule.
type Aggregator struct {
	mu    sync.RWMutex
	state Snapshot

	fetcher Fetcher
	config  Config
	logger  *zap.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewAggregator creates an aggregator. Call Start to begin polling, or
// Refresh directly for one-shot use.
func NewAggregator(fetcher Fetcher, config Config, logger *zap.Logger) *Aggregator {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultConfig().PollInterval
	}
	if config.TimelineLimit <= 0 {
		config.TimelineLimit = DefaultConfig().TimelineLimit
	}
	if config.TopThreats <= 0 {
		config.TopThreats = DefaultConfig().TopThreats
	}
	return &Aggregator{
		fetcher: fetcher,
		config:  config,
		logger:  logger,
	}
}

// Start refreshes immediately, then on every poll interval until Stop or
// ctx cancellation. Safe to combine with manual Refresh calls: slices
// converge last-write-wins.
func (a *Aggregator) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})

	go func() {
		defer close(a.done)

		a.Refresh(ctx, "interval")

		ticker := time.NewTicker(a.config.PollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				a.Refresh(ctx, "interval")
			}
		}
	}()
}

// Stop cancels the poll loop and waits for it to exit. In-flight fetches
// observe the cancelled context and stop writing state.
func (a *Aggregator) Stop() {
	if a.cancel == nil {
		return
	}
	a.cancel()
	<-a.done
}

// Refresh fetches all slices concurrently and blocks until they settle.
// Re-entrant: concurrent refreshes are safe because each slice update is
// atomic and idempotent reads make freshest-wins acceptable.
func (a *Aggregator) Refresh(ctx context.Context, trigger string) {
	metrics.PollCycles.WithLabelValues(trigger).Inc()

	a.mu.Lock()
	a.state.Refreshing = true
	a.mu.Unlock()

	var wg sync.WaitGroup
	run := func(fetch func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fetch(); err != nil && ctx.Err() == nil {
				a.logger.Debug("dashboard slice fetch failed", zap.Error(err))
			}
		}()
	}

	run(func() error {
		stats, err := a.fetcher.DashboardStats(ctx)
		a.update(ctx, func(s *Snapshot) {
			s.Stats.apply(stats, err, time.Now())
			if err != nil {
				s.Error = err.Error()
			} else {
				s.Error = ""
			}
		})
		return err
	})
	run(func() error {
		timeline, err := a.fetcher.DashboardTimeline(ctx, a.config.TimelineLimit)
		a.update(ctx, func(s *Snapshot) { s.Timeline.apply(timeline, err, time.Now()) })
		return err
	})
	run(func() error {
		threats, err := a.fetcher.TopThreats(ctx, a.config.TopThreats)
		a.update(ctx, func(s *Snapshot) { s.TopThreats.apply(threats, err, time.Now()) })
		return err
	})
	run(func() error {
		health, err := a.fetcher.FeedHealth(ctx)
		a.update(ctx, func(s *Snapshot) { s.FeedHealth.apply(health, err, time.Now()) })
		return err
	})
	run(func() error {
		geo, err := a.fetcher.GeoDistribution(ctx)
		a.update(ctx, func(s *Snapshot) { s.Geo.apply(geo, err, time.Now()) })
		return err
	})
	run(func() error {
		notes, err := a.fetcher.Notifications(ctx, 20)
		a.update(ctx, func(s *Snapshot) { s.Notifications.apply(notes, err, time.Now()) })
		return err
	})

	wg.Wait()

	a.mu.Lock()
	a.state.Refreshing = false
	a.state.LastRefresh = time.Now()
	a.mu.Unlock()
}

// update applies a state mutation unless the refresh context was cancelled,
// so a torn-down aggregator never absorbs late writes.
func (a *Aggregator) update(ctx context.Context, fn func(*Snapshot)) {
	if ctx.Err() != nil {
		return
	}
	a.mu.Lock()
	fn(&a.state)
	a.mu.Unlock()
}

// Snapshot returns a copy of the current dashboard state.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}
