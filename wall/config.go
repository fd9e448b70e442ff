package wall

import (
	"fmt"
	"time"

	"github.com/Vapoor/Resonance/feedback"
)

// MatchMode is the policy that reduces a stream of presses to a verdict.
type MatchMode int

const (
	// ModeAny unlocks on any member of the expected set.
	ModeAny MatchMode = iota
	// ModeAll unlocks once every expected symbol has been pressed, in any order.
	ModeAll
	// ModeSequence unlocks on the expected symbols pressed in exact order;
	// any mismatch resets the progression.
	ModeSequence
	// ModeSimultaneous unlocks when a press lands while every expected symbol
	// is held down. Needs a held-state query from the input side.
	ModeSimultaneous
)

func (m MatchMode) String() string {
	switch m {
	case ModeAny:
		return "any"
	case ModeAll:
		return "all"
	case ModeSequence:
		return "sequence"
	case ModeSimultaneous:
		return "simultaneous"
	}
	return "unknown"
}

// InputMode selects which answer space a wall listens in.
type InputMode int

const (
	// InputKeyboard matches key symbols against the layout.
	InputKeyboard InputMode = iota
	// InputMIDI matches a single expected note by exact number.
	InputMIDI
)

// DistancePolicy selects which expected member a wrong answer is measured
// against.
type DistancePolicy int

const (
	// DistanceClosest measures against the nearest member of the expected set.
	DistanceClosest DistancePolicy = iota
	// DistanceNextExpected measures against the symbol the progression
	// currently wants. Only meaningful for ModeSequence; other modes fall
	// back to closest.
	DistanceNextExpected
)

// HeldQuery answers whether a symbol is currently held down. Required for
// ModeSimultaneous.
type HeldQuery interface {
	IsHeld(symbol string) bool
}

// Config is a wall's construction-time configuration. Immutable once the
// wall is built.
type Config struct {
	ID       string
	Position float64

	Input    InputMode
	Mode     MatchMode
	Expected []string // keyboard answer set (ModeSequence: in order)
	Note     int      // MIDI expected note

	Cooldown time.Duration
	Curve    feedback.Curve
	Policy   DistancePolicy

	// Timed choreography.
	WrongFlash     time.Duration // wrong-color auto-revert
	SecondaryDelay time.Duration // unlock → secondary visual
	LockDelay      time.Duration // secondary visual → intensity lock-in
	HintInterval   time.Duration // 0 disables the audio hint loop

	VelocitySensitive          bool // scale wrong-answer intensity by MIDI velocity
	KeepDistortionOnDeactivate bool // unlocked walls keep their distortion when deactivated
	CrossfadeOnUnlock          bool // front ends may crossfade music on this wall's unlock
}

// Defaults used when a duration field is left zero.
const (
	DefaultWrongFlash     = 300 * time.Millisecond
	DefaultSecondaryDelay = 400 * time.Millisecond
	DefaultLockDelay      = 600 * time.Millisecond
)

// Validate checks the parts of a config that must be rejected up front rather
// than degraded at evaluation time.
func (c *Config) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("wall config needs an id")
	}
	if c.Curve.Cutoff < 1 {
		return fmt.Errorf("wall %s: cutoff must be >= 1, got %d", c.ID, c.Curve.Cutoff)
	}
	if c.Input == InputKeyboard && len(c.Expected) == 0 {
		return fmt.Errorf("wall %s: empty expected answer set", c.ID)
	}
	if c.Input == InputMIDI && (c.Note < 0 || c.Note > 127) {
		return fmt.Errorf("wall %s: expected note %d out of MIDI range", c.ID, c.Note)
	}
	if c.Cooldown < 0 {
		return fmt.Errorf("wall %s: negative cooldown", c.ID)
	}
	return nil
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.WrongFlash == 0 {
		out.WrongFlash = DefaultWrongFlash
	}
	if out.SecondaryDelay == 0 {
		out.SecondaryDelay = DefaultSecondaryDelay
	}
	if out.LockDelay == 0 {
		out.LockDelay = DefaultLockDelay
	}
	return out
}
