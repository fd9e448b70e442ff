package input

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// PreferredPatterns: devices matching any of these are picked first.
var PreferredPatterns = []string{"Launchkey", "Novation", "Akai", "MPK"}

// ExcludedPatterns: virtual/system ports that are never auto-connected.
var ExcludedPatterns = []string{"Midi Through", "Through Port", "Dummy"}

const midiRescanInterval = 1000 * time.Millisecond

// MIDISource monitors available MIDI inputs and maintains a connection to the
// preferred device, handling hot-plug and hot-unplug transparently. Note-on
// events become answer attempts with velocity normalised to 0..1; note-offs
// are not matched against walls, they only feed the disconnect bookkeeping.
//
// The rtmidi listener runs on its own goroutine, but wall state is
// single-threaded: incoming note-ons are queued under the mutex and only
// reach the target from Tick, on the main loop. onDisconnect, if set, is
// called the same way; front ends use it to clear any held state.
type MIDISource struct {
	mu           sync.Mutex
	drv          *rtmididrv.Driver
	inPort       drivers.In
	stopFn       func()
	connected    bool
	selectedName string
	lastRescanAt time.Time
	pending      []noteEvent
	lostDevice   bool

	target       Target
	onDisconnect func()
	log          *slog.Logger
}

// noteEvent is a queued note-on awaiting delivery on the main loop.
type noteEvent struct {
	key      int
	velocity float64
}

// NewMIDISource creates a source and initialises the underlying rtmidi
// driver. Call Close when done.
func NewMIDISource(target Target, onDisconnect func(), log *slog.Logger) (*MIDISource, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("rtmididrv: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &MIDISource{
		drv:          drv,
		target:       target,
		onDisconnect: onDisconnect,
		log:          log,
	}, nil
}

// Close shuts down the active MIDI connection and the rtmidi driver.
func (m *MIDISource) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeConn()
	m.drv.Close()
}

// Connected reports whether a device is currently attached.
func (m *MIDISource) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// Tick should be called on a regular interval from the main loop. It first
// delivers queued note-ons to the target, then scans for devices,
// auto-connects to a preferred one, and detects disappearances. Everything
// that can touch wall state runs on the caller's goroutine.
func (m *MIDISource) Tick() {
	notes, lost := m.takePending()
	for _, n := range notes {
		m.target.HandleNote(n.key, n.velocity)
	}
	if m.rescan() {
		lost = true
	}
	if lost && m.onDisconnect != nil {
		m.onDisconnect()
	}
}

// enqueueNote buffers a note-on from the listener goroutine.
func (m *MIDISource) enqueueNote(key int, velocity float64) {
	m.mu.Lock()
	m.pending = append(m.pending, noteEvent{key: key, velocity: velocity})
	m.mu.Unlock()
}

func (m *MIDISource) takePending() (notes []noteEvent, lost bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	notes = m.pending
	m.pending = nil
	lost = m.lostDevice
	m.lostDevice = false
	return notes, lost
}

// rescan reports whether the active device disappeared this tick.
func (m *MIDISource) rescan() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.drv == nil {
		return false
	}

	now := time.Now()
	if !m.lastRescanAt.IsZero() && now.Sub(m.lastRescanAt) < midiRescanInterval {
		return false
	}
	m.lastRescanAt = now

	inputs := m.listInputs()

	if m.connected {
		// Verify the selected device is still present.
		for _, n := range inputs {
			if n == m.selectedName {
				return false // still there, nothing to do
			}
		}
		// Device disappeared.
		m.log.Warn("midi: device disappeared", "device", m.selectedName)
		m.closeConn()
		m.lastRescanAt = time.Time{} // rescan immediately next tick
		return true
	}

	if len(inputs) == 0 {
		return false
	}
	cand, ok := m.pickPreferred(inputs)
	if !ok {
		return false
	}
	if err := m.openByName(cand); err != nil {
		m.log.Error("midi: connect failed", "device", cand, "err", err)
	}
	return false
}

func (m *MIDISource) listInputs() []string {
	ins, err := m.drv.Ins()
	if err != nil {
		m.log.Error("midi: list inputs failed", "err", err)
		return nil
	}
	var names []string
	for _, in := range ins {
		name := in.String()
		excluded := false
		for _, pat := range ExcludedPatterns {
			if containsCI(name, pat) {
				excluded = true
				break
			}
		}
		if excluded {
			m.log.Debug("midi: input excluded", "device", name)
		} else {
			names = append(names, name)
		}
	}
	m.log.Debug("midi: inputs found", "count", len(names), "devices", strings.Join(names, ", "))
	return names
}

func (m *MIDISource) pickPreferred(inputs []string) (string, bool) {
	for _, pat := range PreferredPatterns {
		for _, name := range inputs {
			if containsCI(name, pat) {
				return name, true
			}
		}
	}
	if len(inputs) == 1 {
		return inputs[0], true
	}
	return "", false
}

func (m *MIDISource) closeConn() {
	if m.stopFn != nil {
		m.stopFn()
		m.stopFn = nil
	}
	if m.inPort != nil {
		_ = m.inPort.Close()
		m.inPort = nil
	}
	m.connected = false
	m.selectedName = ""
}

func (m *MIDISource) openByName(name string) error {
	ins, err := m.drv.Ins()
	if err != nil {
		return err
	}
	var found drivers.In
	for _, in := range ins {
		if in.String() == name {
			found = in
			break
		}
	}
	if found == nil {
		return fmt.Errorf("input %q not found", name)
	}
	if err := found.Open(); err != nil {
		return fmt.Errorf("open %q: %w", name, err)
	}

	stop, err := midi.ListenTo(found, func(msg midi.Message, _ int32) {
		var ch, key, vel uint8
		if msg.GetNoteStart(&ch, &key, &vel) {
			m.log.Debug("midi: note on", "ch", ch, "key", key, "vel", vel)
			m.enqueueNote(int(key), float64(vel)/127)
		} else if msg.GetNoteEnd(&ch, &key) {
			m.log.Debug("midi: note off", "ch", ch, "key", key)
		} else {
			m.log.Debug("midi: unhandled message", "msg", msg.String())
		}
	}, midi.HandleError(func(listenErr error) {
		m.log.Warn("midi: listener error", "device", name, "err", listenErr)
		// Must not call closeConn from within the listener goroutine, so
		// we dispatch to a new goroutine and re-acquire the mutex. The
		// onDisconnect callback itself waits for the next Tick.
		go func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if m.connected && m.selectedName == name {
				m.closeConn()
				m.lastRescanAt = time.Time{} // trigger immediate rescan
				m.lostDevice = true
			}
		}()
	}))
	if err != nil {
		_ = found.Close()
		return fmt.Errorf("listen %q: %w", name, err)
	}

	m.inPort = found
	m.stopFn = stop
	m.connected = true
	m.selectedName = name
	m.log.Info("midi: connected", "device", name)
	return nil
}

func containsCI(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
