package wall

import (
	"testing"
	"time"

	"github.com/Vapoor/Resonance/feedback"
	"github.com/Vapoor/Resonance/keyspace"
)

// testRoster builds n Any-mode walls sharing one scheduler and clock, each
// expecting its own symbol from the A/B/C layout.
func testRoster(t *testing.T, n int) ([]*Wall, *fakeClock, *Scheduler) {
	t.Helper()
	symbols := []string{"A", "B", "C"}
	if n > len(symbols) {
		t.Fatalf("testRoster supports up to %d walls", len(symbols))
	}
	clock := newFakeClock()
	sched := NewScheduler()
	layout := keyspace.NewLayout(symbols)

	walls := make([]*Wall, 0, n)
	for i := 0; i < n; i++ {
		w, err := New(Config{
			ID:       "wall-" + symbols[i],
			Position: float64(i),
			Mode:     ModeAny,
			Expected: []string{symbols[i]},
			Curve:    feedback.DefaultCurve(2),
		}, Deps{
			Layout:    layout,
			Scheduler: sched,
			Clock:     clock.now,
		})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		walls = append(walls, w)
	}
	return walls, clock, sched
}

// TestManagerSingleActiveWall verifies activation moves the single active
// flag between walls.
func TestManagerSingleActiveWall(t *testing.T) {
	walls, clock, sched := testRoster(t, 3)
	m := NewManager(walls, ManagerConfig{}, sched, clock.now, nil)

	m.ActivateWall(0)
	m.ActivateWall(2)

	active := 0
	for _, w := range walls {
		if w.IsActive() {
			active++
		}
	}
	if active != 1 {
		t.Fatalf("active walls = %d, want 1", active)
	}
	if m.CurrentIndex() != 2 {
		t.Errorf("current index = %d, want 2", m.CurrentIndex())
	}
}

// TestManagerOutOfRangeIsNoOp verifies a bad index neither panics nor
// changes the current wall.
func TestManagerOutOfRangeIsNoOp(t *testing.T) {
	walls, clock, sched := testRoster(t, 2)
	m := NewManager(walls, ManagerConfig{}, sched, clock.now, nil)
	m.ActivateWall(0)

	m.ActivateWall(-1)
	m.ActivateWall(7)
	if m.CurrentIndex() != 0 {
		t.Errorf("current index = %d, want 0 after out-of-range activations", m.CurrentIndex())
	}
	if !walls[0].IsActive() {
		t.Error("wall 0 lost activation on an out-of-range request")
	}
}

// TestManagerAdvancesAfterUnlock verifies the progression policy: solving the
// active wall activates the next one after the advance delay, not before.
func TestManagerAdvancesAfterUnlock(t *testing.T) {
	walls, clock, sched := testRoster(t, 2)
	m := NewManager(walls, ManagerConfig{AdvanceDelay: time.Second}, sched, clock.now, nil)
	m.ActivateWall(0)

	m.HandleKey("A")
	if !walls[0].IsUnlocked() {
		t.Fatal("setup: wall 0 should unlock")
	}
	if walls[1].IsActive() {
		t.Fatal("wall 1 activated before the advance delay")
	}

	clock.advance(time.Second, sched)
	if !walls[1].IsActive() {
		t.Fatal("wall 1 not activated after the advance delay")
	}
	if m.CurrentIndex() != 1 {
		t.Errorf("current index = %d, want 1", m.CurrentIndex())
	}
}

// TestManagerInputRouting verifies input only ever reaches the active wall.
func TestManagerInputRouting(t *testing.T) {
	walls, clock, sched := testRoster(t, 2)
	m := NewManager(walls, ManagerConfig{}, sched, clock.now, nil)

	m.HandleKey("A") // no active wall yet
	if walls[0].IsUnlocked() {
		t.Fatal("input reached a wall while none was active")
	}

	m.ActivateWall(1)
	m.HandleKey("A") // wall 1 expects B; wall 0 must not see this
	if walls[0].IsUnlocked() {
		t.Fatal("input leaked to an inactive wall")
	}
	if walls[1].LastDistance() != 1 {
		t.Errorf("active wall distance = %d, want 1", walls[1].LastDistance())
	}
}

// TestManagerAllCompletedOnce verifies advancing past the last wall emits the
// completion notification exactly once and stays in range.
func TestManagerAllCompletedOnce(t *testing.T) {
	walls, clock, sched := testRoster(t, 2)
	m := NewManager(walls, ManagerConfig{AdvanceDelay: time.Second}, sched, clock.now, nil)

	completed := 0
	m.OnAllCompleted(func() { completed++ })
	m.ActivateWall(0)

	m.HandleKey("A")
	clock.advance(time.Second, sched)
	m.HandleKey("B")
	clock.advance(time.Second, sched)

	if completed != 1 {
		t.Fatalf("completion notifications = %d, want 1", completed)
	}
	if !m.Completed() {
		t.Error("manager not marked completed")
	}

	m.ActivateNext() // past the end again
	m.ActivateNext()
	if completed != 1 {
		t.Errorf("completion notified again: %d", completed)
	}
	if m.CurrentIndex() != 1 {
		t.Errorf("current index = %d, want clamped at 1", m.CurrentIndex())
	}
}

// TestManagerActivatePreviousClamped verifies retreat stops at the first wall.
func TestManagerActivatePreviousClamped(t *testing.T) {
	walls, clock, sched := testRoster(t, 3)
	m := NewManager(walls, ManagerConfig{}, sched, clock.now, nil)

	m.ActivateWall(1)
	m.ActivatePrevious()
	if m.CurrentIndex() != 0 {
		t.Fatalf("current index = %d, want 0", m.CurrentIndex())
	}
	m.ActivatePrevious() // already at first
	if m.CurrentIndex() != 0 || !walls[0].IsActive() {
		t.Error("retreat below the first wall changed state")
	}
}

// TestManagerResetAll verifies a full reset: every wall fresh, first wall
// active, completion re-armed, pending advances cancelled.
func TestManagerResetAll(t *testing.T) {
	walls, clock, sched := testRoster(t, 2)
	m := NewManager(walls, ManagerConfig{AdvanceDelay: time.Second}, sched, clock.now, nil)
	m.ActivateWall(0)

	m.HandleKey("A") // unlock wall 0, advance pending
	m.ResetAll()
	clock.advance(5*time.Second, sched)

	if m.CurrentIndex() != 0 {
		t.Errorf("current index = %d, want 0 (pending advance must be cancelled)", m.CurrentIndex())
	}
	for i, w := range walls {
		if w.IsUnlocked() {
			t.Errorf("wall %d still unlocked after ResetAll", i)
		}
	}
	if !walls[0].IsActive() {
		t.Error("first wall not reactivated")
	}

	// Completion fires again on the next play-through.
	completed := 0
	m.OnAllCompleted(func() { completed++ })
	m.HandleKey("A")
	clock.advance(time.Second, sched)
	m.HandleKey("B")
	clock.advance(time.Second, sched)
	if completed != 1 {
		t.Errorf("completion after reset = %d, want 1", completed)
	}
}

// TestManagerDropsDuplicateWalls verifies a duplicate roster entry cannot
// double-subscribe and double-advance.
func TestManagerDropsDuplicateWalls(t *testing.T) {
	walls, clock, sched := testRoster(t, 2)
	roster := []*Wall{walls[0], walls[0], walls[1]}
	m := NewManager(roster, ManagerConfig{}, sched, clock.now, nil)

	if len(m.Walls()) != 2 {
		t.Fatalf("roster size = %d, want 2", len(m.Walls()))
	}
}

// TestManagerDropsDuplicateWallIDs verifies two distinct walls sharing an id
// cannot both join the roster: timers and unlock routing are keyed by id, so
// the second wall would cancel the first's choreography.
func TestManagerDropsDuplicateWallIDs(t *testing.T) {
	walls, clock, sched := testRoster(t, 2)
	twin, err := New(Config{
		ID:       walls[0].ID(),
		Mode:     ModeAny,
		Expected: []string{"B"},
		Curve:    feedback.DefaultCurve(2),
	}, Deps{
		Layout:    keyspace.NewLayout([]string{"A", "B", "C"}),
		Scheduler: sched,
		Clock:     clock.now,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	m := NewManager([]*Wall{walls[0], twin, walls[1]}, ManagerConfig{}, sched, clock.now, nil)
	if len(m.Walls()) != 2 {
		t.Fatalf("roster size = %d, want 2", len(m.Walls()))
	}
	for _, w := range m.Walls() {
		if w == twin {
			t.Fatal("wall with duplicate id must be dropped")
		}
	}
}
