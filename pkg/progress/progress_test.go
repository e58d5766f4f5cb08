package progress

import (
	"sync"
	"testing"
	"time"
)

func TestFractionBeforeWork(t *testing.T) {
	tracker := NewTracker()

	if got := tracker.Fraction(); got != 0 {
		t.Errorf("Expected fraction 0 with no work, got %f", got)
	}
	if _, ok := tracker.ETA(); ok {
		t.Error("ETA should not be available before any work completes")
	}
}

func TestFractionProgression(t *testing.T) {
	tracker := NewTracker()
	tracker.AddWork(4)

	tracker.Tick(1)
	if got := tracker.Fraction(); got != 0.25 {
		t.Errorf("Expected fraction 0.25, got %f", got)
	}

	tracker.Tick(3)
	if got := tracker.Fraction(); got != 1.0 {
		t.Errorf("Expected fraction 1.0, got %f", got)
	}
}

func TestFractionClamped(t *testing.T) {
	tracker := NewTracker()
	tracker.AddWork(2)
	tracker.Tick(3) // done can outrun total while siblings are enumerated

	if got := tracker.Fraction(); got != 1.0 {
		t.Errorf("Expected fraction clamped to 1.0, got %f", got)
	}
}

func TestETAAfterProgress(t *testing.T) {
	tracker := NewTracker()
	tracker.AddWork(2)

	time.Sleep(20 * time.Millisecond)
	tracker.Tick(1)

	eta, ok := tracker.ETA()
	if !ok {
		t.Fatal("Expected ETA to be available at 50% completion")
	}
	if eta <= 0 {
		t.Errorf("Expected positive ETA, got %v", eta)
	}
	if eta > time.Second {
		t.Errorf("ETA wildly off for a 20ms half: %v", eta)
	}

	tracker.Tick(1)
	eta, ok = tracker.ETA()
	if !ok || eta != 0 {
		t.Errorf("Expected ETA 0 at completion, got %v ok=%v", eta, ok)
	}
}

func TestOnUpdateCallback(t *testing.T) {
	tracker := NewTracker()
	tracker.AddWork(3)

	var mu sync.Mutex
	var snapshots []Snapshot
	tracker.OnUpdate(func(s Snapshot) {
		mu.Lock()
		snapshots = append(snapshots, s)
		mu.Unlock()
	})

	tracker.Tick(1)
	tracker.Tick(1)

	mu.Lock()
	defer mu.Unlock()
	if len(snapshots) != 2 {
		t.Fatalf("Expected 2 callback invocations, got %d", len(snapshots))
	}
	if snapshots[0].Done != 1 || snapshots[1].Done != 2 {
		t.Errorf("Snapshots out of order: %+v", snapshots)
	}
	if snapshots[1].Total != 3 {
		t.Errorf("Expected total 3 in snapshot, got %d", snapshots[1].Total)
	}
}

func TestConcurrentTicks(t *testing.T) {
	tracker := NewTracker()
	tracker.AddWork(100)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				tracker.Tick(1)
			}
		}()
	}
	wg.Wait()

	if got := tracker.Done(); got != 100 {
		t.Errorf("Expected 100 done after concurrent ticks, got %d", got)
	}
	if got := tracker.Fraction(); got != 1.0 {
		t.Errorf("Expected fraction 1.0, got %f", got)
	}
}
