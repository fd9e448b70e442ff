package wall

import (
	"log/slog"
	"time"
)

// managerKey namespaces the manager's own scheduler entries away from wall ids.
const managerKey = "\x00manager"

// DefaultAdvanceDelay is the pause between a wall unlocking and the next one
// activating. It is deliberately longer than the default unlock choreography
// so the staged visuals finish before the wall is deactivated.
const DefaultAdvanceDelay = 1500 * time.Millisecond

// ManagerConfig tunes roster progression.
type ManagerConfig struct {
	AdvanceDelay time.Duration // zero means DefaultAdvanceDelay
}

// Manager owns the ordered roster of walls for a level and enforces the
// single-active-wall progression policy: it subscribes to every wall's unlock
// notification and, after a fixed delay, advances to the next wall.
type Manager struct {
	NopObserver

	walls   []*Wall
	current int
	sched   *Scheduler
	clock   func() time.Time
	log     *slog.Logger

	advanceDelay time.Duration
	completed    bool
	onCompleted  []func()
}

// NewManager builds a manager over an ordered roster. Duplicate wall
// references are dropped with a warning so a sloppy roster cannot
// double-subscribe. The scheduler must be the same one the walls use so a
// single tick drives everything.
func NewManager(walls []*Wall, cfg ManagerConfig, sched *Scheduler, clock func() time.Time, log *slog.Logger) *Manager {
	if sched == nil {
		sched = NewScheduler()
	}
	if clock == nil {
		clock = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	m := &Manager{
		current:      -1,
		sched:        sched,
		clock:        clock,
		log:          log,
		advanceDelay: cfg.AdvanceDelay,
	}
	if m.advanceDelay == 0 {
		m.advanceDelay = DefaultAdvanceDelay
	}

	seen := make(map[*Wall]bool, len(walls))
	seenIDs := make(map[string]bool, len(walls))
	for _, w := range walls {
		if w == nil {
			continue
		}
		if seen[w] {
			log.Warn("manager: duplicate wall in roster dropped", "wall", w.ID())
			continue
		}
		// Scheduler cancellation and unlock routing are keyed by wall id;
		// two walls sharing an id would cancel each other's timers.
		if seenIDs[w.ID()] {
			log.Warn("manager: duplicate wall id in roster dropped", "wall", w.ID())
			continue
		}
		seen[w] = true
		seenIDs[w.ID()] = true
		w.AddObserver(m)
		m.walls = append(m.walls, w)
	}
	return m
}

// Walls returns the roster in order.
func (m *Manager) Walls() []*Wall { return m.walls }

// CurrentIndex returns the active wall's index, or -1.
func (m *Manager) CurrentIndex() int { return m.current }

// Current returns the active wall, or nil.
func (m *Manager) Current() *Wall {
	if m.current < 0 || m.current >= len(m.walls) {
		return nil
	}
	return m.walls[m.current]
}

// Completed reports whether the roster has been played through.
func (m *Manager) Completed() bool { return m.completed }

// OnAllCompleted registers a callback for the all-walls-completed
// notification. It fires exactly once per play-through.
func (m *Manager) OnAllCompleted(fn func()) {
	m.onCompleted = append(m.onCompleted, fn)
}

// ActivateWall deactivates the current wall and activates the one at index.
// Out-of-range indices are a logged no-op.
func (m *Manager) ActivateWall(index int) {
	if index < 0 || index >= len(m.walls) {
		m.log.Warn("manager: activate index out of range", "index", index, "walls", len(m.walls))
		return
	}
	if cur := m.Current(); cur != nil {
		cur.Deactivate()
	}
	m.current = index
	m.walls[index].Activate()
	m.log.Info("manager: wall active", "index", index, "wall", m.walls[index].ID())
}

// ActivateNext advances to the next wall. Advancing past the last wall emits
// the all-completed notification (once) instead of activating anything.
func (m *Manager) ActivateNext() {
	next := m.current + 1
	if next >= len(m.walls) {
		if !m.completed {
			m.completed = true
			m.log.Info("manager: all walls completed")
			for _, fn := range m.onCompleted {
				fn()
			}
		}
		return
	}
	m.ActivateWall(next)
}

// ActivatePrevious retreats to the previous wall, clamped at the first.
func (m *Manager) ActivatePrevious() {
	if m.current <= 0 {
		m.log.Debug("manager: already at first wall")
		return
	}
	m.ActivateWall(m.current - 1)
}

// ResetAll cancels any pending advance, resets every wall, and reactivates
// the first.
func (m *Manager) ResetAll() {
	m.sched.Cancel(managerKey)
	m.completed = false
	m.current = -1
	for _, w := range m.walls {
		w.ResetWall()
	}
	if len(m.walls) > 0 {
		m.ActivateWall(0)
	}
}

// HandleKey forwards a key press to the currently active wall, if any.
// Inactive and unlocked walls never see input.
func (m *Manager) HandleKey(symbol string) {
	if w := m.Current(); w != nil {
		w.OnKeyPressed(symbol)
	}
}

// HandleNote forwards a MIDI note-on to the currently active wall, if any.
func (m *Manager) HandleNote(note int, velocity float64) {
	if w := m.Current(); w != nil {
		w.OnNotePressed(note, velocity)
	}
}

// WallUnlocked is the progression policy: schedule the advance instead of
// activating synchronously, so the unlocking wall finishes its choreography
// and no observer re-enters match evaluation.
func (m *Manager) WallUnlocked(id string) {
	cur := m.Current()
	if cur == nil || cur.ID() != id {
		return // stale notification from a reset or manual activation
	}
	m.sched.After(managerKey, m.clock(), m.advanceDelay, func(time.Time) {
		m.ActivateNext()
	})
}
