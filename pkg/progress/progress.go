// Package progress tracks completion of a harvest whose total size is only
// discovered as the traversal descends. Work units are added when a branch
// is enumerated and ticked off as matches land, so the fraction stays
// honest even while the denominator is still growing.
package progress

import (
	"sync"
	"time"
)

// Snapshot is a point-in-time view of the tracker.
type Snapshot struct {
	Done     int
	Total    int
	Fraction float64
	Elapsed  time.Duration
	ETA      time.Duration
	HasETA   bool
}

// Tracker accumulates work units from concurrent workers.
type Tracker struct {
	mu       sync.Mutex
	done     int
	total    int
	start    time.Time
	onUpdate func(Snapshot)
}

// NewTracker starts tracking from now.
func NewTracker() *Tracker {
	return &Tracker{
		start: time.Now(),
	}
}

// OnUpdate registers a callback invoked after every Tick with a fresh
// snapshot. The callback runs outside the tracker's lock.
func (t *Tracker) OnUpdate(fn func(Snapshot)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onUpdate = fn
}

// AddWork grows the expected total by n units.
func (t *Tracker) AddWork(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total += n
}

// Tick marks n units complete.
func (t *Tracker) Tick(n int) {
	t.mu.Lock()
	t.done += n
	fn := t.onUpdate
	snap := t.snapshotLocked()
	t.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
}

// Fraction reports completion in [0, 1]. Before any work is registered
// it reports 0.
func (t *Tracker) Fraction() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fractionLocked()
}

func (t *Tracker) fractionLocked() float64 {
	if t.total <= 0 {
		return 0
	}
	f := float64(t.done) / float64(t.total)
	if f > 1 {
		// The total can lag behind when branches finish before their
		// siblings are enumerated.
		return 1
	}
	return f
}

// ETA estimates the remaining time from the observed rate. The second
// return is false until enough work has completed to extrapolate.
func (t *Tracker) ETA() (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.etaLocked()
}

func (t *Tracker) etaLocked() (time.Duration, bool) {
	f := t.fractionLocked()
	if f <= 0 {
		return 0, false
	}
	if f >= 1 {
		return 0, true
	}
	elapsed := time.Since(t.start)
	remaining := time.Duration(float64(elapsed) * (1 - f) / f)
	return remaining, true
}

// Done reports completed units.
func (t *Tracker) Done() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// Total reports known units.
func (t *Tracker) Total() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// Elapsed reports time since tracking started.
func (t *Tracker) Elapsed() time.Duration {
	return time.Since(t.start)
}

// Snapshot returns a consistent view of all counters.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() Snapshot {
	eta, hasETA := t.etaLocked()
	return Snapshot{
		Done:     t.done,
		Total:    t.total,
		Fraction: t.fractionLocked(),
		Elapsed:  time.Since(t.start),
		ETA:      eta,
		HasETA:   hasETA,
	}
}
