// Package level loads wall rosters from TOML level files. A malformed wall
// is dropped with a warning rather than failing the level: one bad wall must
// never block progression through the rest.
package level

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/Vapoor/Resonance/feedback"
	"github.com/Vapoor/Resonance/wall"
)

// ErrNoWalls is returned when a level file yields no usable wall at all.
var ErrNoWalls = errors.New("level: no valid walls")

// Level is a loaded, validated level: wall configs sorted by position.
type Level struct {
	Name         string
	AdvanceDelay time.Duration
	Walls        []wall.Config
}

type fileDef struct {
	Name         string    `toml:"name"`
	AdvanceDelay duration  `toml:"advance_delay"`
	Wall         []wallDef `toml:"wall"`
}

type wallDef struct {
	ID       string   `toml:"id"`
	Position float64  `toml:"position"`
	Mode     string   `toml:"mode"`
	Expected []string `toml:"expected"`
	Note     int      `toml:"note"`

	Cooldown duration `toml:"cooldown"`
	Cutoff   int      `toml:"cutoff"`
	Curve    curveDef `toml:"curve"`

	WrongFlash     duration `toml:"wrong_flash"`
	SecondaryDelay duration `toml:"secondary_delay"`
	LockDelay      duration `toml:"lock_delay"`
	HintInterval   duration `toml:"hint_interval"`

	DistancePolicy    string `toml:"distance_policy"`
	VelocitySensitive bool   `toml:"velocity_sensitive"`
	KeepDistortion    bool   `toml:"keep_distortion"`
	Crossfade         bool   `toml:"crossfade_on_unlock"`
}

type curveDef struct {
	Max    float64     `toml:"max"`
	Min    float64     `toml:"min"`
	Points [][]float64 `toml:"points"` // pairs of [distance, intensity]
}

// duration decodes TOML strings like "250ms".
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(v)
	return nil
}

// Load reads and parses a level file.
func Load(path string, log *slog.Logger) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("level: read %s: %w", path, err)
	}
	return Parse(data, log)
}

// Parse decodes level TOML. Individual walls that fail to validate are
// dropped with a warning; the level errors out only when nothing survives.
func Parse(data []byte, log *slog.Logger) (*Level, error) {
	if log == nil {
		log = slog.Default()
	}

	var def fileDef
	if err := toml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("level: parse: %w", err)
	}

	lvl := &Level{
		Name:         def.Name,
		AdvanceDelay: time.Duration(def.AdvanceDelay),
	}
	for i, wd := range def.Wall {
		cfg, err := wd.toConfig()
		if err != nil {
			log.Warn("level: wall dropped", "index", i, "wall", wd.ID, "err", err)
			continue
		}
		lvl.Walls = append(lvl.Walls, cfg)
	}
	if len(lvl.Walls) == 0 {
		return nil, ErrNoWalls
	}

	// Roster order is the spatial sort, id as tie-breaker.
	sort.SliceStable(lvl.Walls, func(i, j int) bool {
		if lvl.Walls[i].Position != lvl.Walls[j].Position {
			return lvl.Walls[i].Position < lvl.Walls[j].Position
		}
		return lvl.Walls[i].ID < lvl.Walls[j].ID
	})

	for i, a := range lvl.Walls {
		for _, b := range lvl.Walls[i+1:] {
			if a.ID == b.ID {
				return nil, fmt.Errorf("level: duplicate wall id %q", a.ID)
			}
		}
	}
	return lvl, nil
}

func (wd wallDef) toConfig() (wall.Config, error) {
	cfg := wall.Config{
		ID:       wd.ID,
		Position: wd.Position,
		Expected: wd.Expected,
		Note:     wd.Note,

		Cooldown:       time.Duration(wd.Cooldown),
		WrongFlash:     time.Duration(wd.WrongFlash),
		SecondaryDelay: time.Duration(wd.SecondaryDelay),
		LockDelay:      time.Duration(wd.LockDelay),
		HintInterval:   time.Duration(wd.HintInterval),

		VelocitySensitive:          wd.VelocitySensitive,
		KeepDistortionOnDeactivate: wd.KeepDistortion,
		CrossfadeOnUnlock:          wd.Crossfade,
	}

	switch wd.Mode {
	case "any", "":
		cfg.Mode = wall.ModeAny
	case "all":
		cfg.Mode = wall.ModeAll
	case "sequence":
		cfg.Mode = wall.ModeSequence
	case "simultaneous":
		cfg.Mode = wall.ModeSimultaneous
	case "midi":
		cfg.Input = wall.InputMIDI
	default:
		return wall.Config{}, fmt.Errorf("unknown mode %q", wd.Mode)
	}

	switch wd.DistancePolicy {
	case "closest", "":
		cfg.Policy = wall.DistanceClosest
	case "next_expected":
		cfg.Policy = wall.DistanceNextExpected
	default:
		return wall.Config{}, fmt.Errorf("unknown distance policy %q", wd.DistancePolicy)
	}

	curve := feedback.Curve{
		Cutoff:       wd.Cutoff,
		MaxIntensity: wd.Curve.Max,
		MinIntensity: wd.Curve.Min,
	}
	if curve.MaxIntensity == 0 && curve.MinIntensity == 0 && len(wd.Curve.Points) == 0 {
		curve = feedback.DefaultCurve(wd.Cutoff)
	}
	for _, p := range wd.Curve.Points {
		if len(p) != 2 {
			return wall.Config{}, fmt.Errorf("curve point %v: want [distance, intensity]", p)
		}
		curve.Points = append(curve.Points, feedback.ControlPoint{
			Distance:  int(p[0]),
			Intensity: p[1],
		})
	}
	cfg.Curve = curve

	if err := cfg.Validate(); err != nil {
		return wall.Config{}, err
	}
	if _, err := feedback.NewMapper(cfg.Curve); err != nil {
		return wall.Config{}, err
	}
	return cfg, nil
}
