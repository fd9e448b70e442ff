package keyspace

import "testing"

// TestDefaultLayout verifies the island layout is intact: 14 distinct symbols.
func TestDefaultLayout(t *testing.T) {
	l := DefaultLayout()
	if l.Len() != 14 {
		t.Fatalf("expected 14 symbols, got %d", l.Len())
	}
	for i, s := range DefaultSymbols {
		if got := l.IndexOf(s); got != i {
			t.Errorf("IndexOf(%q) = %d, want %d", s, got, i)
		}
	}
}

// TestNewLayoutSkipsDuplicates verifies duplicates and empties are dropped
// rather than corrupting the index.
func TestNewLayoutSkipsDuplicates(t *testing.T) {
	l := NewLayout([]string{"A", "B", "", "A", "C"})
	if l.Len() != 3 {
		t.Fatalf("expected 3 symbols, got %d", l.Len())
	}
	if d := l.Distance("A", "C"); d != 2 {
		t.Errorf("Distance(A, C) = %d, want 2", d)
	}
}

// TestDistance checks topological distance and symmetry.
func TestDistance(t *testing.T) {
	l := NewLayout([]string{"A", "B", "C"})

	cases := []struct {
		a, b string
		want int
	}{
		{"A", "A", 0},
		{"A", "B", 1},
		{"B", "A", 1},
		{"A", "C", 2},
	}
	for _, c := range cases {
		if got := l.Distance(c.a, c.b); got != c.want {
			t.Errorf("Distance(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

// TestDistanceUnknownSymbol verifies unknown symbols fail soft to MaxDistance
// on either side.
func TestDistanceUnknownSymbol(t *testing.T) {
	l := NewLayout([]string{"A", "B", "C"})
	if d := l.Distance("Q", "A"); d != MaxDistance {
		t.Errorf("unknown pressed symbol: got %d, want MaxDistance", d)
	}
	if d := l.Distance("A", "Q"); d != MaxDistance {
		t.Errorf("unknown expected symbol: got %d, want MaxDistance", d)
	}
}

// TestDistanceToClosest verifies the closest-member search and its member
// reporting.
func TestDistanceToClosest(t *testing.T) {
	l := DefaultLayout()

	d, member := l.DistanceToClosest("F", []string{"A", "G"})
	if d != 1 || member != "G" {
		t.Errorf("got (%d, %q), want (1, \"G\")", d, member)
	}

	d, member = l.DistanceToClosest("F", nil)
	if d != MaxDistance || member != "" {
		t.Errorf("empty expected set: got (%d, %q), want (MaxDistance, \"\")", d, member)
	}

	// An expected set of only unknown symbols must not panic and must report max.
	d, _ = l.DistanceToClosest("F", []string{"??"})
	if d != MaxDistance {
		t.Errorf("unknown expected members: got %d, want MaxDistance", d)
	}
}

// TestNoteDistance checks the semitone metric.
func TestNoteDistance(t *testing.T) {
	if d := NoteDistance(60, 64); d != 4 {
		t.Errorf("NoteDistance(60, 64) = %d, want 4", d)
	}
	if d := NoteDistance(64, 60); d != 4 {
		t.Errorf("NoteDistance(64, 60) = %d, want 4", d)
	}
	if d := NoteDistance(62, 62); d != 0 {
		t.Errorf("NoteDistance(62, 62) = %d, want 0", d)
	}
}
