package guard

import (
	"sync"
	"time"
)

// SweepGuard serializes sweeps and enforces a minimum spacing between them.
// One instance is constructed per process and shared by every sweep caller.
type SweepGuard struct {
	mu      sync.Mutex
	running bool
	lastRun time.Time
}

func New() *SweepGuard {
	return &SweepGuard{}
}

// TryBegin claims the guard. It fails when a sweep is already running or the
// previous sweep started less than minInterval ago.
func (g *SweepGuard) TryBegin(now time.Time, minInterval time.Duration) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running {
		return false
	}
	if !g.lastRun.IsZero() && now.Sub(g.lastRun) < minInterval {
		return false
	}
	g.running = true
	g.lastRun = now
	return true
}

func (g *SweepGuard) End() {
	g.mu.Lock()
	g.running = false
	g.mu.Unlock()
}

func (g *SweepGuard) LastRun() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastRun
}
