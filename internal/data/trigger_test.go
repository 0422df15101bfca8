package data

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

var t0 = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

const window = 120 * time.Second

func TestTriggerRepo_ValidityWindow(t *testing.T) {
	r := NewTriggerRepo()
	r.Record("U1", t0)

	if !r.IsValid("U1", t0.Add(10*time.Second), window) {
		t.Error("Expected trigger valid inside the window")
	}
	if !r.IsValid("U1", t0.Add(window), window) {
		t.Error("Expected trigger valid at the window boundary")
	}
	if r.IsValid("U1", t0.Add(window+time.Nanosecond), window) {
		t.Error("Expected trigger invalid one unit past the window")
	}
	if r.IsValid("U2", t0, window) {
		t.Error("Expected unknown user to be invalid")
	}
}

func TestTriggerRepo_LastWriteWins(t *testing.T) {
	r := NewTriggerRepo()
	t1 := t0
	t2 := t0.Add(100 * time.Second)
	r.Record("U1", t1)
	r.Record("U1", t2)

	// Past t1's window but inside t2's
	if !r.IsValid("U1", t1.Add(window+time.Second), window) {
		t.Error("Expected second record to govern validity")
	}
	if r.IsValid("U1", t2.Add(window+time.Second), window) {
		t.Error("Expected trigger invalid after the second record's window")
	}
	if r.Len() != 1 {
		t.Errorf("Expected a single entry per user, got %d", r.Len())
	}
}

func TestTriggerRepo_PerUserIsolation(t *testing.T) {
	r := NewTriggerRepo()
	r.Record("A", t0)

	if r.IsValid("B", t0, window) {
		t.Error("Expected trigger for A not to apply to B")
	}
	r.Record("B", t0.Add(-time.Hour))
	if !r.IsValid("A", t0, window) {
		t.Error("Expected A's trigger unaffected by B")
	}
}

func TestTriggerRepo_Sweep(t *testing.T) {
	r := NewTriggerRepo()
	r.Record("old", t0)
	r.Record("edge", t0.Add(10*time.Second))
	r.Record("fresh", t0.Add(100*time.Second))

	now := t0.Add(window + 10*time.Second) // "edge" is exactly window old
	removed := r.Sweep(now, window)
	if removed != 1 {
		t.Errorf("Expected 1 entry removed, got %d", removed)
	}
	if r.Len() != 2 {
		t.Errorf("Expected 2 entries left, got %d", r.Len())
	}
	if !r.IsValid("edge", now, window) || !r.IsValid("fresh", now, window) {
		t.Error("Expected sweep to keep valid entries")
	}
}

func TestTriggerRepo_Concurrent(t *testing.T) {
	r := NewTriggerRepo()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := fmt.Sprintf("U%d", i%10)
			for j := 0; j < 100; j++ {
				r.Record(user, t0.Add(time.Duration(j)*time.Second))
				_ = r.IsValid(user, t0, window)
			}
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 100; j++ {
			r.Sweep(t0, window)
		}
	}()
	wg.Wait()

	if r.Len() > 10 {
		t.Errorf("Expected at most one entry per user, got %d", r.Len())
	}
	for i := 0; i < 10; i++ {
		user := fmt.Sprintf("U%d", i)
		if !r.IsValid(user, t0.Add(99*time.Second), window) {
			t.Errorf("Expected %s to hold a valid trigger", user)
		}
	}
}
