package storage

import (
	"context"
	"time"

	"github.com/cristianxmm/tv-signage-system/internal/log"
)

// Cleaner removes uploads older than the retention window, to keep the SD
// card of a small deployment from filling up. A sweep runs after every
// publish and on a periodic ticker.
type Cleaner struct {
	storage   Storage
	retention time.Duration
	interval  time.Duration

	trigger chan struct{}
	stop    chan struct{}
	done    chan struct{}
}

// NewCleaner creates a cleaner with the given retention window in days.
func NewCleaner(store Storage, retentionDays int, interval time.Duration) *Cleaner {
	return &Cleaner{
		storage:   store,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		interval:  interval,
		trigger:   make(chan struct{}, 1),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the background sweep loop.
func (c *Cleaner) Start() {
	go c.run()
}

// Stop terminates the sweep loop and waits for it to exit.
func (c *Cleaner) Stop() {
	close(c.stop)
	<-c.done
}

// Trigger requests an asynchronous sweep. A sweep already pending is
// enough; extra triggers are dropped.
func (c *Cleaner) Trigger() {
	select {
	case c.trigger <- struct{}{}:
	default:
	}
}

func (c *Cleaner) run() {
	defer close(c.done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-c.trigger:
			c.sweep()
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *Cleaner) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := c.Sweep(ctx)
	l := log.L()
	if err != nil {
		l.Warn().Err(err).Msg("retention sweep failed")
		return
	}
	if removed > 0 {
		l.Info().Int("removed", removed).Msg("retention sweep removed stale uploads")
	}
}

// Sweep deletes every upload older than the retention window and returns
// how many were removed. Per-file delete failures are logged and skipped:
// a file that survives one sweep is caught by the next.
func (c *Cleaner) Sweep(ctx context.Context) (int, error) {
	files, err := c.storage.List(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-c.retention)
	removed := 0
	for _, f := range files {
		if f.LastModified.After(cutoff) {
			continue
		}
		if err := c.storage.Delete(ctx, f.Key); err != nil {
			l := log.L()
			l.Warn().Err(err).Str("key", f.Key).Msg("failed to delete stale upload")
			continue
		}
		removed++
	}
	return removed, nil
}
