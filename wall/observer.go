package wall

import "fmt"

// Answer is one attempted input, either a key symbol or a MIDI note.
type Answer struct {
	Symbol   string
	Note     int
	Velocity float64
	FromMIDI bool
}

func (a Answer) String() string {
	if a.FromMIDI {
		return noteName(a.Note)
	}
	return a.Symbol
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func noteName(note int) string {
	if note < 0 {
		return fmt.Sprintf("?%d", note)
	}
	return fmt.Sprintf("%s%d", noteNames[note%12], (note/12)-1)
}

// Observer receives wall notifications keyed by wall id. Implementations
// embed NopObserver and override what they care about.
type Observer interface {
	WallActivated(id string)
	WallDeactivated(id string)
	WallUnlocked(id string)
	CorrectAnswer(id string, answer Answer)
	// PartialAnswer fires for a correct symbol that does not yet complete
	// the answer: an in-order Sequence step, or All-mode progress.
	PartialAnswer(id string, answer Answer)
	WrongAnswer(id string, answer Answer, distance int)
	DistanceCalculated(id string, distance int)
}

// NopObserver implements Observer with no-ops.
type NopObserver struct{}

func (NopObserver) WallActivated(string)            {}
func (NopObserver) WallDeactivated(string)          {}
func (NopObserver) WallUnlocked(string)             {}
func (NopObserver) CorrectAnswer(string, Answer)    {}
func (NopObserver) PartialAnswer(string, Answer)    {}
func (NopObserver) WrongAnswer(string, Answer, int) {}
func (NopObserver) DistanceCalculated(string, int)  {}
