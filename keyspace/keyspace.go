// Package keyspace defines the ordered answer spaces the wall engine measures
// distance in: a fixed keyboard layout for symbol answers and the MIDI
// semitone line for note answers.
package keyspace

// MaxDistance is the fail-soft distance reported for symbols that are not
// part of a layout. It is large enough to exceed any sane cutoff.
const MaxDistance = 1 << 20

// Layout is an ordered, duplicate-free sequence of key symbols. The index gap
// between two symbols is their topological distance.
type Layout struct {
	symbols []string
	index   map[string]int
}

// DefaultSymbols is the island game's key row, low to high.
var DefaultSymbols = []string{
	"A", "S", "D", "F", "G", "H", "J", "K", "L",
	"Z", "X", "C", "V", "B",
}

// NewLayout builds a layout from an ordered symbol list. Duplicate or empty
// symbols are skipped so a sloppy list still yields a usable layout.
func NewLayout(symbols []string) *Layout {
	l := &Layout{index: make(map[string]int, len(symbols))}
	for _, s := range symbols {
		if s == "" {
			continue
		}
		if _, dup := l.index[s]; dup {
			continue
		}
		l.index[s] = len(l.symbols)
		l.symbols = append(l.symbols, s)
	}
	return l
}

// DefaultLayout returns the process-wide 14-key layout.
func DefaultLayout() *Layout { return NewLayout(DefaultSymbols) }

// Len returns the number of symbols in the layout.
func (l *Layout) Len() int { return len(l.symbols) }

// Contains reports whether the symbol belongs to the layout.
func (l *Layout) Contains(symbol string) bool {
	_, ok := l.index[symbol]
	return ok
}

// IndexOf returns the symbol's position, or -1 if unknown.
func (l *Layout) IndexOf(symbol string) int {
	i, ok := l.index[symbol]
	if !ok {
		return -1
	}
	return i
}

// Distance returns the topological distance between two symbols. Either
// symbol being unknown yields MaxDistance; the caller decides whether that is
// worth logging.
func (l *Layout) Distance(a, b string) int {
	ia, ok := l.index[a]
	if !ok {
		return MaxDistance
	}
	ib, ok := l.index[b]
	if !ok {
		return MaxDistance
	}
	d := ia - ib
	if d < 0 {
		d = -d
	}
	return d
}

// DistanceToClosest returns the smallest distance from symbol to any member
// of expected, and the member that produced it. An unknown symbol or an
// all-unknown expected set yields (MaxDistance, "").
func (l *Layout) DistanceToClosest(symbol string, expected []string) (int, string) {
	best := MaxDistance
	member := ""
	for _, e := range expected {
		if d := l.Distance(symbol, e); d < best {
			best = d
			member = e
		}
	}
	return best, member
}

// NoteDistance is the semitone distance between two MIDI note numbers.
func NoteDistance(played, expected int) int {
	d := played - expected
	if d < 0 {
		d = -d
	}
	return d
}
