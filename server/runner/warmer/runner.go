// Package warmer periodically precomputes insights for recently active users.
package warmer

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// UserLister lists users with records since cutoff.
type UserLister interface {
	ListActiveUserIDs(ctx context.Context, cutoff time.Time) ([]int32, error)
}

// Warmer precomputes the cached analyses of one user.
type Warmer interface {
	Warm(ctx context.Context, userID int32) error
}

// Config configures the runner.
type Config struct {
	Interval       time.Duration
	Lookback       time.Duration
	Concurrency    int
	UsersPerSecond float64 // zero means unlimited
}

// DefaultConfig returns the default runner configuration.
func DefaultConfig() Config {
	return Config{
		Interval:       20 * time.Minute,
		Lookback:       30 * 24 * time.Hour,
		Concurrency:    4,
		UsersPerSecond: 20,
	}
}

// Runner warms the insight cache on an interval.
type Runner struct {
	users   UserLister
	warmer  Warmer
	config  Config
	limiter *rate.Limiter
	now     func() time.Time
}

// NewRunner creates a cache warming runner.
func NewRunner(users UserLister, warmer Warmer, cfg Config) *Runner {
	defaults := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = defaults.Interval
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = defaults.Lookback
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaults.Concurrency
	}

	limit := rate.Inf
	burst := 1
	if cfg.UsersPerSecond > 0 {
		limit = rate.Limit(cfg.UsersPerSecond)
		burst = cfg.Concurrency
	}
	return &Runner{
		users:   users,
		warmer:  warmer,
		config:  cfg,
		limiter: rate.NewLimiter(limit, burst),
		now:     time.Now,
	}
}

// Run starts the background task and blocks until ctx is done.
func (r *Runner) Run(ctx context.Context) {
	// Warm once on startup
	r.warmAll(ctx)

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.warmAll(ctx)
		case <-ctx.Done():
			slog.Info("cache warmer stopped")
			return
		}
	}
}

// RunOnce warms a single user immediately.
// Useful for testing or manual triggers.
func (r *Runner) RunOnce(ctx context.Context, userID int32) error {
	return r.warmer.Warm(ctx, userID)
}

// Result reports one warming pass.
type Result struct {
	Users    int
	Warmed   int
	Failed   int
	Duration time.Duration
}

func (r *Runner) warmAll(ctx context.Context) Result {
	startTime := time.Now()
	cutoff := r.now().Add(-r.config.Lookback)

	userIDs, err := r.users.ListActiveUserIDs(ctx, cutoff)
	if err != nil {
		slog.Error("failed to list active users", "error", err)
		return Result{}
	}
	if len(userIDs) == 0 {
		return Result{}
	}

	var warmed, failed atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.Concurrency)
	for _, userID := range userIDs {
		if err := r.limiter.Wait(gctx); err != nil {
			slog.Warn("cache warming interrupted", "warmed", warmed.Load(), "total", len(userIDs))
			break
		}
		g.Go(func() error {
			if err := r.warmer.Warm(gctx, userID); err != nil {
				// One user's bad data must not stop the pass.
				slog.Error("failed to warm insights", "user_id", userID, "error", err)
				failed.Add(1)
				return nil
			}
			warmed.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	result := Result{
		Users:    len(userIDs),
		Warmed:   int(warmed.Load()),
		Failed:   int(failed.Load()),
		Duration: time.Since(startTime),
	}
	slog.Info("cache warming completed",
		"users", result.Users,
		"warmed", result.Warmed,
		"errors", result.Failed,
		"duration_ms", result.Duration.Milliseconds())
	return result
}
