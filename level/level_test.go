package level

import (
	"errors"
	"testing"
	"time"

	"github.com/Vapoor/Resonance/wall"
)

const sampleLevel = `
name = "island"
advance_delay = "2s"

[[wall]]
id = "cliff-door"
position = 24.5
mode = "midi"
note = 62
cutoff = 12

[[wall]]
id = "shore-gate"
position = 10.0
mode = "sequence"
expected = ["D", "F", "G"]
cooldown = "250ms"
cutoff = 5

[wall.curve]
max = 1.0
min = 0.0
points = [[2, 0.55]]
`

// TestParseSampleLevel verifies decoding, validation, and the spatial sort.
func TestParseSampleLevel(t *testing.T) {
	lvl, err := Parse([]byte(sampleLevel), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if lvl.Name != "island" {
		t.Errorf("name = %q, want island", lvl.Name)
	}
	if lvl.AdvanceDelay != 2*time.Second {
		t.Errorf("advance delay = %v, want 2s", lvl.AdvanceDelay)
	}
	if len(lvl.Walls) != 2 {
		t.Fatalf("walls = %d, want 2", len(lvl.Walls))
	}

	// Sorted by position: shore-gate (10.0) before cliff-door (24.5).
	first := lvl.Walls[0]
	if first.ID != "shore-gate" {
		t.Fatalf("first wall = %q, want shore-gate", first.ID)
	}
	if first.Mode != wall.ModeSequence {
		t.Errorf("mode = %v, want sequence", first.Mode)
	}
	if first.Cooldown != 250*time.Millisecond {
		t.Errorf("cooldown = %v, want 250ms", first.Cooldown)
	}
	if first.Curve.Cutoff != 5 || len(first.Curve.Points) != 1 {
		t.Errorf("curve = %+v, want cutoff 5 with one point", first.Curve)
	}

	second := lvl.Walls[1]
	if second.Input != wall.InputMIDI || second.Note != 62 {
		t.Errorf("second wall = %+v, want midi note 62", second)
	}
}

// TestParseDropsMalformedWalls verifies a bad wall is skipped while the rest
// of the level survives.
func TestParseDropsMalformedWalls(t *testing.T) {
	data := `
[[wall]]
id = "good"
mode = "any"
expected = ["A"]
cutoff = 3

[[wall]]
id = "bad-cutoff"
mode = "any"
expected = ["B"]
cutoff = 0

[[wall]]
id = "bad-mode"
mode = "resonate"
expected = ["C"]
cutoff = 3
`
	lvl, err := Parse([]byte(data), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(lvl.Walls) != 1 || lvl.Walls[0].ID != "good" {
		t.Fatalf("walls = %+v, want only the good one", lvl.Walls)
	}
}

// TestParseAllWallsBad verifies ErrNoWalls when nothing survives.
func TestParseAllWallsBad(t *testing.T) {
	data := `
[[wall]]
id = "broken"
mode = "any"
cutoff = 0
`
	_, err := Parse([]byte(data), nil)
	if !errors.Is(err, ErrNoWalls) {
		t.Fatalf("err = %v, want ErrNoWalls", err)
	}
}

// TestParseRejectsDuplicateIDs verifies duplicate wall ids fail the level,
// since ids key notifications and scheduler cancellation.
func TestParseRejectsDuplicateIDs(t *testing.T) {
	data := `
[[wall]]
id = "twin"
mode = "any"
expected = ["A"]
cutoff = 3

[[wall]]
id = "twin"
mode = "any"
expected = ["B"]
cutoff = 3
`
	if _, err := Parse([]byte(data), nil); err == nil {
		t.Fatal("expected duplicate id error, got nil")
	}
}

// TestParseDefaultCurve verifies a wall without a curve block gets the
// standard tuning.
func TestParseDefaultCurve(t *testing.T) {
	data := `
[[wall]]
id = "plain"
mode = "any"
expected = ["A"]
cutoff = 4
`
	lvl, err := Parse([]byte(data), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	c := lvl.Walls[0].Curve
	if c.MaxIntensity != 1.0 || c.MinIntensity != 0.0 || c.Cutoff != 4 {
		t.Errorf("default curve = %+v", c)
	}
}
