package wall

import (
	"testing"
	"time"
)

// TestSchedulerRunsInTimeOrder verifies effects fire in due order regardless
// of insertion order.
func TestSchedulerRunsInTimeOrder(t *testing.T) {
	s := NewScheduler()
	t0 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	var order []int
	s.At("w", t0.Add(3*time.Second), func(time.Time) { order = append(order, 3) })
	s.At("w", t0.Add(1*time.Second), func(time.Time) { order = append(order, 1) })
	s.At("w", t0.Add(2*time.Second), func(time.Time) { order = append(order, 2) })

	s.Tick(t0)
	if len(order) != 0 {
		t.Fatalf("nothing should be due yet, ran %v", order)
	}

	s.Tick(t0.Add(5 * time.Second))
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("run order = %v, want [1 2 3]", order)
	}
}

// TestSchedulerCancelDropsKey verifies cancellation invalidates every pending
// effect for the key while leaving other keys untouched.
func TestSchedulerCancelDropsKey(t *testing.T) {
	s := NewScheduler()
	t0 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	ranA, ranB := 0, 0
	s.At("a", t0.Add(time.Second), func(time.Time) { ranA++ })
	s.At("a", t0.Add(2*time.Second), func(time.Time) { ranA++ })
	s.At("b", t0.Add(time.Second), func(time.Time) { ranB++ })

	s.Cancel("a")
	s.Tick(t0.Add(5 * time.Second))

	if ranA != 0 {
		t.Errorf("cancelled key ran %d effects", ranA)
	}
	if ranB != 1 {
		t.Errorf("unrelated key ran %d effects, want 1", ranB)
	}
}

// TestSchedulerRescheduleAfterCancel verifies effects scheduled after a
// cancel run under the new generation.
func TestSchedulerRescheduleAfterCancel(t *testing.T) {
	s := NewScheduler()
	t0 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	ran := 0
	s.At("w", t0.Add(time.Second), func(time.Time) { ran++ })
	s.Cancel("w")
	s.At("w", t0.Add(time.Second), func(time.Time) { ran++ })

	s.Tick(t0.Add(2 * time.Second))
	if ran != 1 {
		t.Fatalf("ran = %d, want 1 (old cancelled, new live)", ran)
	}
}

// TestSchedulerEffectMaySchedule verifies an effect can plan a follow-up (the
// hint loop pattern) and that the follow-up waits for its own due time.
func TestSchedulerEffectMaySchedule(t *testing.T) {
	s := NewScheduler()
	t0 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	ran := 0
	var loop func(now time.Time)
	loop = func(now time.Time) {
		ran++
		s.At("w", now.Add(time.Second), loop)
	}
	s.At("w", t0.Add(time.Second), loop)

	s.Tick(t0.Add(time.Second))
	if ran != 1 {
		t.Fatalf("ran = %d, want 1", ran)
	}
	s.Tick(t0.Add(2 * time.Second))
	if ran != 2 {
		t.Fatalf("ran = %d, want 2", ran)
	}
}
