package jobs

import (
	"context"
	"log/slog"
	"time"
)

// ExpiredDeleter removes rows that expired before the given instant.
type ExpiredDeleter interface {
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// Sweep is one table the cleanup job garbage-collects. Rows are deleted once
// they are older than Retention relative to now (zero means already expired).
type Sweep struct {
	Name      string
	Store     ExpiredDeleter
	Retention time.Duration
}

type Cleanup struct {
	interval time.Duration
	sweeps   []Sweep
	now      func() time.Time
}

func NewCleanup(interval time.Duration, sweeps ...Sweep) *Cleanup {
	return &Cleanup{interval: interval, sweeps: sweeps, now: time.Now}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (c *Cleanup) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.RunOnce(ctx)
	for {
		select {
		case <-ticker.C:
			c.RunOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// RunOnce executes every sweep. A failing sweep is logged and does not stop
// the others.
func (c *Cleanup) RunOnce(ctx context.Context) map[string]int64 {
	deleted := make(map[string]int64, len(c.sweeps))
	now := c.now()

	for _, s := range c.sweeps {
		n, err := s.Store.DeleteExpired(ctx, now.Add(-s.Retention))
		if err != nil {
			slog.Error("cleanup failed", "table", s.Name, "action", "cleanup", "error", err)
			continue
		}
		deleted[s.Name] = n
		if n > 0 {
			slog.Info("cleanup completed", "table", s.Name, "deleted", n)
		}
	}
	return deleted
}
