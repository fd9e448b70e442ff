// Package feedback maps answer distance to a continuous effect intensity and
// declares the visual/audio sink contracts the wall engine drives.
package feedback

import (
	"fmt"
	"sort"
)

// ControlPoint anchors the intensity curve at one distance.
type ControlPoint struct {
	Distance  int
	Intensity float64
}

// Curve configures a distance→intensity mapping. Cutoff must be >= 1.
// MaxIntensity is the value at distance 0 and MinIntensity the value at and
// beyond the cutoff; the source material disagrees on polarity, so inverted
// walls simply swap the two endpoints.
type Curve struct {
	Cutoff       int
	MaxIntensity float64
	MinIntensity float64
	Points       []ControlPoint
}

// Mapper is a stateless piecewise-linear distance→intensity function.
// Identical inputs always produce identical output.
type Mapper struct {
	cutoff int
	points []ControlPoint // sorted by distance, endpoints pinned
}

// NewMapper validates the curve and builds a mapper. Interior control points
// outside (0, cutoff) are discarded; the endpoints are always pinned to
// (0, MaxIntensity) and (cutoff, MinIntensity). The resulting curve must be
// monotone in the max→min direction: a closer answer never gives weaker
// feedback than a farther one.
func NewMapper(c Curve) (*Mapper, error) {
	if c.Cutoff < 1 {
		return nil, fmt.Errorf("curve cutoff must be >= 1, got %d", c.Cutoff)
	}

	pts := []ControlPoint{{Distance: 0, Intensity: c.MaxIntensity}}
	interior := make([]ControlPoint, 0, len(c.Points))
	for _, p := range c.Points {
		if p.Distance <= 0 || p.Distance >= c.Cutoff {
			continue
		}
		interior = append(interior, p)
	}
	sort.Slice(interior, func(i, j int) bool { return interior[i].Distance < interior[j].Distance })
	pts = append(pts, interior...)
	pts = append(pts, ControlPoint{Distance: c.Cutoff, Intensity: c.MinIntensity})

	descending := c.MaxIntensity >= c.MinIntensity
	for i := 1; i < len(pts); i++ {
		if pts[i].Distance == pts[i-1].Distance {
			return nil, fmt.Errorf("duplicate control point at distance %d", pts[i].Distance)
		}
		if descending && pts[i].Intensity > pts[i-1].Intensity {
			return nil, fmt.Errorf("control point at distance %d breaks monotonicity", pts[i].Distance)
		}
		if !descending && pts[i].Intensity < pts[i-1].Intensity {
			return nil, fmt.Errorf("control point at distance %d breaks monotonicity", pts[i].Distance)
		}
	}

	return &Mapper{cutoff: c.Cutoff, points: pts}, nil
}

// Cutoff returns the distance at and beyond which intensity floors out.
func (m *Mapper) Cutoff() int { return m.cutoff }

// Max returns the intensity at distance 0.
func (m *Mapper) Max() float64 { return m.points[0].Intensity }

// Min returns the intensity at and beyond the cutoff.
func (m *Mapper) Min() float64 { return m.points[len(m.points)-1].Intensity }

// Intensity evaluates the curve at the given distance.
func (m *Mapper) Intensity(distance int) float64 {
	if distance <= 0 {
		return m.Max()
	}
	if distance >= m.cutoff {
		return m.Min()
	}
	for i := 1; i < len(m.points); i++ {
		lo, hi := m.points[i-1], m.points[i]
		if distance > hi.Distance {
			continue
		}
		if distance == hi.Distance {
			return hi.Intensity
		}
		span := float64(hi.Distance - lo.Distance)
		frac := float64(distance-lo.Distance) / span
		return lo.Intensity + (hi.Intensity-lo.Intensity)*frac
	}
	return m.Min()
}

// DefaultCurve is the tuning most walls shipped with: full distortion on a
// direct hit, half at half the cutoff, silence beyond.
func DefaultCurve(cutoff int) Curve {
	return Curve{
		Cutoff:       cutoff,
		MaxIntensity: 1.0,
		MinIntensity: 0.0,
		Points:       []ControlPoint{{Distance: cutoff / 2, Intensity: 0.5}},
	}
}
