package pipeline

import (
	"sync"
	"time"

	"github.com/couchcryptid/threat-level-monitor/internal/domain"
)

// Snapshot is a point-in-time copy of the scheduler's state.
type Snapshot struct {
	Reading     domain.ThreatReading
	HasReading  bool
	LastError   string    // cause of the most recent failed cycle, empty after a success
	LastAttempt time.Time // when the most recent cycle finished
}

// Stale reports whether the latest cycle failed while an older reading is still shown.
func (s Snapshot) Stale() bool {
	return s.HasReading && s.LastError != ""
}

// readingCell holds the last known good reading. One writer (the scheduler
// loop) and many readers (HTTP handlers, readiness checks).
type readingCell struct {
	mu   sync.RWMutex
	snap Snapshot
}

func (c *readingCell) storeReading(r domain.ThreatReading, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = Snapshot{Reading: r, HasReading: true, LastAttempt: at}
}

// storeFailure records err without touching the last good reading.
func (c *readingCell) storeFailure(err error, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.LastError = err.Error()
	c.snap.LastAttempt = at
}

func (c *readingCell) load() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}
