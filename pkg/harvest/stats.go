package harvest

import "sync"

// Stats tallies one traversal: how many branches contributed, how many
// matches survived the validity filter, what was discarded and what was
// lost to failed branches.
type Stats struct {
	Events         int            `json:"events"`
	Divisions      int            `json:"divisions"`
	Matches        int            `json:"matches"`
	Skipped        map[string]int `json:"skipped,omitempty"`
	BranchesFailed map[string]int `json:"branches_failed,omitempty"`
}

// Merge returns the element-wise sum of two tallies.
func (s Stats) Merge(o Stats) Stats {
	return Stats{
		Events:         s.Events + o.Events,
		Divisions:      s.Divisions + o.Divisions,
		Matches:        s.Matches + o.Matches,
		Skipped:        mergeCounts(s.Skipped, o.Skipped),
		BranchesFailed: mergeCounts(s.BranchesFailed, o.BranchesFailed),
	}
}

// SkippedTotal is the number of matches the validity filter discarded.
func (s Stats) SkippedTotal() int {
	n := 0
	for _, v := range s.Skipped {
		n += v
	}
	return n
}

// FailedTotal is the number of branches abandoned across all levels.
func (s Stats) FailedTotal() int {
	n := 0
	for _, v := range s.BranchesFailed {
		n += v
	}
	return n
}

func mergeCounts(a, b map[string]int) map[string]int {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[string]int, len(a)+len(b))
	for k, v := range a {
		out[k] += v
	}
	for k, v := range b {
		out[k] += v
	}
	return out
}

// tally is the mutex-guarded accumulator behind a traversal's Stats.
// Workers at both fan-out levels update it concurrently.
type tally struct {
	mu    sync.Mutex
	stats Stats
}

func newTally() *tally {
	return &tally{stats: Stats{
		Skipped:        make(map[string]int),
		BranchesFailed: make(map[string]int),
	}}
}

func (t *tally) event() {
	t.mu.Lock()
	t.stats.Events++
	t.mu.Unlock()
}

func (t *tally) division() {
	t.mu.Lock()
	t.stats.Divisions++
	t.mu.Unlock()
}

func (t *tally) matches(n int) {
	t.mu.Lock()
	t.stats.Matches += n
	t.mu.Unlock()

	harvestMatchesTotal.Add(float64(n))
}

func (t *tally) skip(reason string) {
	t.mu.Lock()
	t.stats.Skipped[reason]++
	t.mu.Unlock()

	harvestMatchesSkipped.WithLabelValues(reason).Inc()
}

func (t *tally) branchFailed(level string) {
	t.mu.Lock()
	t.stats.BranchesFailed[level]++
	t.mu.Unlock()

	harvestBranchesFailed.WithLabelValues(level).Inc()
}

// snapshot copies the current counters out from under the mutex.
func (t *tally) snapshot() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.stats
	s.Skipped = mergeCounts(t.stats.Skipped, nil)
	s.BranchesFailed = mergeCounts(t.stats.BranchesFailed, nil)
	return s
}
