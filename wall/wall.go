// Package wall implements the resonance wall matching-and-feedback engine:
// per-wall match evaluation, distance-driven distortion feedback, cancellable
// timed choreography, and the manager that sequences walls through a level.
package wall

import (
	"log/slog"
	"time"

	"github.com/Vapoor/Resonance/feedback"
	"github.com/Vapoor/Resonance/keyspace"
)

// Deps are a wall's collaborators, handed in at construction. Nil fields fall
// back to safe defaults (no-op sinks, shared layout, real clock).
type Deps struct {
	Layout    *keyspace.Layout
	Visual    feedback.VisualSink
	Audio     feedback.AudioSink
	Scheduler *Scheduler
	Held      HeldQuery
	Clock     func() time.Time
	Logger    *slog.Logger
}

// Wall is a single puzzle gate: Inactive until activated, listening while
// active, terminal once unlocked. All input enters through OnKeyPressed /
// OnNotePressed; all output leaves through the feedback sinks and observers.
type Wall struct {
	cfg    Config
	mapper *feedback.Mapper
	layout *keyspace.Layout
	visual feedback.VisualSink
	audio  feedback.AudioSink
	sched  *Scheduler
	held   HeldQuery
	clock  func() time.Time
	log    *slog.Logger

	observers []Observer

	active       bool
	unlocked     bool
	evaluating   bool
	pressed      []string // accumulated symbols for ModeAll / ModeSequence
	lastDistance int
	intensity    float64
	lastAccepted time.Time
	hasAccepted  bool
}

// New validates the config and builds a wall. A cutoff below 1 or an empty
// answer set is a construction error; expected symbols missing from the
// layout are kept but warned about, they simply measure as maximum distance.
func New(cfg Config, deps Deps) (*Wall, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mapper, err := feedback.NewMapper(cfg.Curve)
	if err != nil {
		return nil, err
	}

	w := &Wall{
		cfg:    cfg.withDefaults(),
		mapper: mapper,
		layout: deps.Layout,
		visual: deps.Visual,
		audio:  deps.Audio,
		sched:  deps.Scheduler,
		held:   deps.Held,
		clock:  deps.Clock,
		log:    deps.Logger,
	}
	if w.layout == nil {
		w.layout = keyspace.DefaultLayout()
	}
	if w.visual == nil {
		w.visual = feedback.NopVisual{}
	}
	if w.audio == nil {
		w.audio = feedback.NopAudio{}
	}
	if w.sched == nil {
		w.sched = NewScheduler()
	}
	if w.clock == nil {
		w.clock = time.Now
	}
	if w.log == nil {
		w.log = slog.Default()
	}

	if cfg.Input == InputKeyboard {
		for _, s := range cfg.Expected {
			if !w.layout.Contains(s) {
				w.log.Warn("wall: expected symbol not in layout", "wall", cfg.ID, "symbol", s)
			}
		}
	}
	return w, nil
}

// ID returns the wall's identity.
func (w *Wall) ID() string { return w.cfg.ID }

// Position returns the wall's spatial sort key.
func (w *Wall) Position() float64 { return w.cfg.Position }

// Config returns a copy of the wall's effective configuration.
func (w *Wall) Config() Config { return w.cfg }

// IsActive reports whether the wall is listening for input.
func (w *Wall) IsActive() bool { return w.active }

// IsUnlocked reports whether the wall has been solved.
func (w *Wall) IsUnlocked() bool { return w.unlocked }

// LastDistance returns the distance of the last evaluated attempt.
func (w *Wall) LastDistance() int { return w.lastDistance }

// CurrentIntensity returns the feedback intensity of the last evaluated attempt.
func (w *Wall) CurrentIntensity() float64 { return w.intensity }

// ExpectedAnswer returns a copy of the expected symbol set.
func (w *Wall) ExpectedAnswer() []string {
	out := make([]string, len(w.cfg.Expected))
	copy(out, w.cfg.Expected)
	return out
}

// ExpectedNote returns the expected MIDI note for InputMIDI walls.
func (w *Wall) ExpectedNote() int { return w.cfg.Note }

// AddObserver registers an observer. The same observer is only registered
// once to keep re-activation from double-notifying.
func (w *Wall) AddObserver(o Observer) {
	for _, existing := range w.observers {
		if existing == o {
			return
		}
	}
	w.observers = append(w.observers, o)
}

// Activate puts the wall into the listening state. No-op if already active.
func (w *Wall) Activate() {
	if w.active {
		return
	}
	w.active = true
	w.log.Debug("wall: activated", "wall", w.cfg.ID, "mode", w.cfg.Mode.String())

	if !w.unlocked {
		w.visual.SetFeedbackColor(feedback.ColorListening)
		if w.cfg.HintInterval > 0 {
			w.scheduleHint(w.clock())
		}
	}
	for _, o := range w.observers {
		o.WallActivated(w.cfg.ID)
	}
}

// Deactivate stops the wall listening and cancels every pending timed effect
// it owns: hint loop, wrong-flash revert, in-flight unlock choreography.
// No-op if already inactive.
func (w *Wall) Deactivate() {
	if !w.active {
		return
	}
	w.active = false
	w.sched.Cancel(w.cfg.ID)

	if w.unlocked {
		if !w.cfg.KeepDistortionOnDeactivate {
			w.visual.SetSecondaryVisualActive(false)
		}
	} else {
		w.visual.SetFeedbackColor(feedback.ColorInactive)
	}
	w.log.Debug("wall: deactivated", "wall", w.cfg.ID)
	for _, o := range w.observers {
		o.WallDeactivated(w.cfg.ID)
	}
}

// ResetWall restores the wall to its freshly-loaded state: locked, inactive,
// no progression, no pending timers, inactive visuals. Idempotent.
func (w *Wall) ResetWall() {
	w.sched.Cancel(w.cfg.ID)
	w.active = false
	w.unlocked = false
	w.evaluating = false
	w.pressed = nil
	w.lastDistance = 0
	w.intensity = 0
	w.hasAccepted = false

	w.visual.SetFeedbackColor(feedback.ColorInactive)
	w.visual.SetSecondaryVisualActive(false)
	w.visual.SetDistortionIntensity(0)
	w.log.Debug("wall: reset", "wall", w.cfg.ID)
}

// OnKeyPressed feeds one key-down edge into the wall. Ignored while
// inactive or unlocked; rapid repeats inside the cooldown window are dropped
// with no side effects at all.
func (w *Wall) OnKeyPressed(symbol string) {
	w.handleAttempt(Answer{Symbol: symbol, Velocity: 1})
}

// OnNotePressed feeds one MIDI note-on into the wall. Velocity is 0..1.
func (w *Wall) OnNotePressed(note int, velocity float64) {
	w.handleAttempt(Answer{Note: note, Velocity: velocity, FromMIDI: true})
}

func (w *Wall) handleAttempt(a Answer) {
	if !w.active || w.unlocked {
		return
	}
	if w.evaluating {
		// An observer called back into us mid-evaluation; one press, one verdict.
		w.log.Warn("wall: re-entrant attempt dropped", "wall", w.cfg.ID, "answer", a.String())
		return
	}

	now := w.clock()
	if w.hasAccepted && now.Sub(w.lastAccepted) < w.cfg.Cooldown {
		w.log.Debug("wall: attempt inside cooldown, dropped", "wall", w.cfg.ID, "answer", a.String())
		return
	}

	w.evaluating = true
	defer func() { w.evaluating = false }()
	w.lastAccepted = now
	w.hasAccepted = true

	switch w.evaluate(a) {
	case verdictCorrect:
		w.applyCorrect(now, a)
	case verdictPartial:
		w.applyPartial(a)
	default:
		w.applyWrong(now, a)
	}
}

type verdict int

const (
	verdictWrong verdict = iota
	// verdictPartial is a correct symbol that does not yet complete the
	// answer (All-mode progress or duplicate, a Sequence step in order). It
	// reports distance 0 without unlocking.
	verdictPartial
	verdictCorrect
)

// evaluate reduces the attempt to a verdict and advances mode-local
// progression state.
func (w *Wall) evaluate(a Answer) verdict {
	if w.cfg.Input == InputMIDI {
		if a.FromMIDI && a.Note == w.cfg.Note {
			return verdictCorrect
		}
		return verdictWrong
	}
	if a.FromMIDI {
		return verdictWrong // note played at a keyboard wall
	}

	switch w.cfg.Mode {
	case ModeAny:
		if w.isExpected(a.Symbol) {
			return verdictCorrect
		}
		return verdictWrong

	case ModeAll:
		if !w.isExpected(a.Symbol) {
			return verdictWrong
		}
		if !contains(w.pressed, a.Symbol) {
			w.pressed = append(w.pressed, a.Symbol)
		}
		if len(w.pressed) == w.distinctExpected() {
			return verdictCorrect
		}
		return verdictPartial

	case ModeSequence:
		next := w.cfg.Expected[len(w.pressed)]
		if a.Symbol != next {
			// Any mismatch restarts the progression, even if the symbol
			// belongs elsewhere in the sequence.
			w.pressed = nil
			return verdictWrong
		}
		w.pressed = append(w.pressed, a.Symbol)
		if len(w.pressed) == len(w.cfg.Expected) {
			return verdictCorrect
		}
		return verdictPartial

	case ModeSimultaneous:
		if w.held == nil {
			w.log.Warn("wall: simultaneous mode without held-state query", "wall", w.cfg.ID)
			return verdictWrong
		}
		for _, s := range w.cfg.Expected {
			if !w.held.IsHeld(s) {
				return verdictWrong
			}
		}
		return verdictCorrect
	}
	return verdictWrong
}

func (w *Wall) isExpected(symbol string) bool {
	return contains(w.cfg.Expected, symbol)
}

func (w *Wall) applyCorrect(now time.Time, a Answer) {
	w.lastDistance = 0
	w.intensity = w.mapper.Max()
	w.unlocked = true

	// Drop the hint loop and any pending wrong-flash revert before starting
	// the unlock choreography under a fresh generation.
	w.sched.Cancel(w.cfg.ID)

	w.visual.SetFeedbackColor(feedback.ColorSuccess)
	w.log.Info("wall: unlocked", "wall", w.cfg.ID, "answer", a.String())

	w.sched.After(w.cfg.ID, now, w.cfg.SecondaryDelay, func(time.Time) {
		w.visual.SetSecondaryVisualActive(true)
	})
	w.sched.After(w.cfg.ID, now, w.cfg.SecondaryDelay+w.cfg.LockDelay, func(time.Time) {
		w.visual.SetDistortionIntensity(w.mapper.Max())
	})

	for _, o := range w.observers {
		o.CorrectAnswer(w.cfg.ID, a)
	}
	for _, o := range w.observers {
		o.DistanceCalculated(w.cfg.ID, 0)
	}
	for _, o := range w.observers {
		o.WallUnlocked(w.cfg.ID)
	}
}

// applyPartial handles a correct-but-incomplete press. It is progress, not a
// mistake: distance 0, full feedback, no wrong flash, no wrong notification.
func (w *Wall) applyPartial(a Answer) {
	w.lastDistance = 0
	w.intensity = w.mapper.Intensity(0)
	w.visual.SetSecondaryVisualActive(true)
	w.visual.SetDistortionIntensity(w.intensity)

	w.log.Debug("wall: partial answer",
		"wall", w.cfg.ID,
		"answer", a.String(),
		"intensity", w.intensity,
	)

	for _, o := range w.observers {
		o.PartialAnswer(w.cfg.ID, a)
	}
	for _, o := range w.observers {
		o.DistanceCalculated(w.cfg.ID, 0)
	}
}

func (w *Wall) applyWrong(now time.Time, a Answer) {
	d := w.distance(a)
	w.lastDistance = d

	if d >= w.mapper.Cutoff() {
		w.intensity = w.mapper.Min()
		w.visual.SetSecondaryVisualActive(false)
		w.visual.SetDistortionIntensity(w.intensity)
	} else {
		w.intensity = w.mapper.Intensity(d)
		if w.cfg.VelocitySensitive && a.FromMIDI {
			w.intensity *= clamp01(a.Velocity)
		}
		w.visual.SetSecondaryVisualActive(true)
		w.visual.SetDistortionIntensity(w.intensity)
	}

	// A miss can still measure distance 0 (an expected member out of order);
	// keep the calm color for those and only flash on real misses.
	if d > 0 {
		w.visual.SetFeedbackColor(feedback.ColorWrong)
		w.sched.After(w.cfg.ID, now, w.cfg.WrongFlash, func(time.Time) {
			if w.active && !w.unlocked {
				w.visual.SetFeedbackColor(feedback.ColorListening)
			}
		})
	}

	w.log.Debug("wall: wrong attempt",
		"wall", w.cfg.ID,
		"answer", a.String(),
		"distance", d,
		"intensity", w.intensity,
	)

	for _, o := range w.observers {
		o.WrongAnswer(w.cfg.ID, a, d)
	}
	for _, o := range w.observers {
		o.DistanceCalculated(w.cfg.ID, d)
	}
}

// distance measures a wrong attempt against the expected answer per the
// wall's distance policy. Unknown symbols fail soft to maximum distance.
func (w *Wall) distance(a Answer) int {
	if w.cfg.Input == InputMIDI {
		if !a.FromMIDI {
			return keyspace.MaxDistance
		}
		return keyspace.NoteDistance(a.Note, w.cfg.Note)
	}

	if !w.layout.Contains(a.Symbol) {
		w.log.Warn("wall: unknown symbol", "wall", w.cfg.ID, "symbol", a.Symbol)
		return keyspace.MaxDistance
	}

	if w.cfg.Policy == DistanceNextExpected && w.cfg.Mode == ModeSequence {
		// Progression was reset before we got here, so the next expected
		// symbol is the sequence start.
		return w.layout.Distance(a.Symbol, w.cfg.Expected[len(w.pressed)])
	}
	d, _ := w.layout.DistanceToClosest(a.Symbol, w.cfg.Expected)
	return d
}

// scheduleHint keeps the periodic hint tone alive while the wall is active
// and still locked. The loop dies on its own once either stops being true,
// and is cancelled outright by Deactivate and ResetWall.
func (w *Wall) scheduleHint(now time.Time) {
	w.sched.After(w.cfg.ID, now, w.cfg.HintInterval, func(at time.Time) {
		if !w.active || w.unlocked {
			return
		}
		w.audio.PlayHintTone(w.pitchRatio())
		w.scheduleHint(at)
	})
}

// pitchRatio places the expected answer in its space as 0..1, used to pitch
// the hint tone.
func (w *Wall) pitchRatio() float64 {
	if w.cfg.Input == InputMIDI {
		return float64(w.cfg.Note) / 127
	}
	if w.layout.Len() < 2 {
		return 0
	}
	idx := w.layout.IndexOf(w.cfg.Expected[0])
	if idx < 0 {
		return 0
	}
	return float64(idx) / float64(w.layout.Len()-1)
}

func (w *Wall) distinctExpected() int {
	seen := make(map[string]bool, len(w.cfg.Expected))
	for _, s := range w.cfg.Expected {
		seen[s] = true
	}
	return len(seen)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
