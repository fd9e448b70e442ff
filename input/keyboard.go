// Package input adapts physical input devices into answer attempts for the
// wall engine: a keyboard source fed key edges by the front end, and a
// hot-plug MIDI source built on gomidi.
package input

import (
	"log/slog"
	"sort"
)

// Target receives answer attempts. The wall manager implements it and
// forwards to the currently active wall only.
type Target interface {
	HandleKey(symbol string)
	HandleNote(note int, velocity float64)
}

// Keyboard turns key-down/key-up edges into attempts and tracks the held set
// so Simultaneous-mode walls can ask what is currently down. The front end
// owns the mapping from physical keys to layout symbols; this source only
// sees symbols.
type Keyboard struct {
	target Target
	held   map[string]bool
	log    *slog.Logger
}

// NewKeyboard builds a keyboard source delivering to target.
func NewKeyboard(target Target, log *slog.Logger) *Keyboard {
	if log == nil {
		log = slog.Default()
	}
	return &Keyboard{
		target: target,
		held:   make(map[string]bool),
		log:    log,
	}
}

// KeyDown registers a key-down edge. Auto-repeat while held is swallowed;
// only the first edge becomes an attempt.
func (k *Keyboard) KeyDown(symbol string) {
	if symbol == "" {
		return
	}
	if k.held[symbol] {
		return // auto-repeat
	}
	k.held[symbol] = true
	k.log.Debug("input: key down", "symbol", symbol)
	k.target.HandleKey(symbol)
}

// KeyUp registers a key-up edge. It produces no attempt; it only maintains
// the held set.
func (k *Keyboard) KeyUp(symbol string) {
	delete(k.held, symbol)
}

// IsHeld reports whether the symbol is currently down. This is the
// synchronous held-state query Simultaneous-mode walls need.
func (k *Keyboard) IsHeld(symbol string) bool { return k.held[symbol] }

// Held returns the currently held symbols, sorted for stable logging.
func (k *Keyboard) Held() []string {
	out := make([]string, 0, len(k.held))
	for s := range k.held {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// ReleaseAll clears the held set, for focus loss or shutdown.
func (k *Keyboard) ReleaseAll() {
	k.held = make(map[string]bool)
}
