// Command resonance is a playable terminal rendition of the island's
// resonance walls: type at the active wall (or play a MIDI keyboard) and
// watch the distortion feedback track how close you are.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep/generators"

	"github.com/Vapoor/Resonance/audio"
	"github.com/Vapoor/Resonance/feedback"
	"github.com/Vapoor/Resonance/input"
	"github.com/Vapoor/Resonance/level"
	"github.com/Vapoor/Resonance/rig"
	"github.com/Vapoor/Resonance/wall"
)

// logger is the process-wide structured logger. Safe to use before
// initLogger is called; defaults to slog.Default().
var logger = slog.Default()

// initLogger configures the shared slog logger and calls slog.SetDefault so
// the stdlib log package also routes through the same handler.
func initLogger(debug bool, logPath string) {
	lvl := slog.LevelInfo
	if debug {
		lvl = slog.LevelDebug
	}
	out := os.Stderr
	if logPath != "" {
		// The terminal UI owns stderr's tty; debug logs go to a file.
		if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			out = f
		}
	}
	h := slog.NewTextHandler(out, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: debug,
	})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

// keyHoldWindow is how long a terminal key counts as held. Terminals report
// no release events, so the held set used by simultaneous walls decays on a
// timer instead.
const keyHoldWindow = 400 * time.Millisecond

func main() {
	levelPath := flag.String("level", "levels/island.toml", "level definition file")
	debug := flag.Bool("debug", false, "enable debug logging (adds source location)")
	logPath := flag.String("log", "resonance.log", "log file (terminal UI owns the tty)")
	serialDev := flag.String("serial", "", "distortion rig serial port (empty = no rig)")
	baud := flag.Int("baud", 500000, "rig serial baud rate")
	useMIDI := flag.Bool("midi", false, "listen for a MIDI device")
	useAudio := flag.Bool("audio", true, "enable hint tones and music")
	flag.Parse()

	initLogger(*debug, *logPath)
	logger.Info("resonance starting",
		"level", *levelPath,
		"serial", *serialDev,
		"midi", *useMIDI,
		"audio", *useAudio,
	)

	lvl, err := level.Load(*levelPath, logger)
	if err != nil {
		logger.Warn("level load failed, using built-in level", "err", err)
		lvl = builtinLevel()
	}

	if err := run(lvl, *serialDev, *baud, *useMIDI, *useAudio); err != nil {
		logger.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(lvl *level.Level, serialDev string, baud int, useMIDI, useAudio bool) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("screen init: %w", err)
	}
	defer screen.Fini()

	names := make([]string, len(lvl.Walls))
	for i, cfg := range lvl.Walls {
		names[i] = cfg.ID
	}
	view := newView(screen, names)

	var board *rig.Board
	if serialDev != "" {
		port, err := rig.OpenPort(serialDev, baud, logger)
		if err != nil {
			logger.Warn("rig unavailable, continuing without it", "err", err)
		} else {
			defer port.Close()
			board = rig.NewBoard(port, logger)
			defer board.Clear()
		}
	}

	var audioSink feedback.AudioSink = feedback.NopAudio{}
	var sink *audio.Sink
	if useAudio {
		sink, err = audio.NewSink(audio.DefaultSampleRate, logger)
		if err != nil {
			logger.Warn("audio unavailable, continuing silent", "err", err)
		} else {
			audioSink = sink
			defer sink.Close()
		}
	}

	sched := wall.NewScheduler()

	walls := make([]*wall.Wall, 0, len(lvl.Walls))
	var kb *input.Keyboard // created below; walls need its held query
	heldProxy := heldQueryProxy{}
	for i, cfg := range lvl.Walls {
		visual := feedback.MultiVisual(view.Channel(i), boardChannel(board, i))
		w, err := wall.New(cfg, wall.Deps{
			Visual:    visual,
			Audio:     audioSink,
			Scheduler: sched,
			Held:      &heldProxy,
			Logger:    logger,
		})
		if err != nil {
			logger.Warn("wall dropped", "wall", cfg.ID, "err", err)
			continue
		}
		walls = append(walls, w)
	}
	if len(walls) == 0 {
		return fmt.Errorf("no usable walls in level %q", lvl.Name)
	}

	manager := wall.NewManager(walls, wall.ManagerConfig{AdvanceDelay: lvl.AdvanceDelay}, sched, nil, logger)
	kb = input.NewKeyboard(manager, logger)
	heldProxy.kb = kb

	status := &statusObserver{view: view, manager: manager, sink: sink}
	for _, w := range walls {
		w.AddObserver(status)
	}
	manager.OnAllCompleted(func() {
		view.setStatus("all walls resonate — the island is open (r to replay, esc to quit)")
	})

	var midiSrc *input.MIDISource
	if useMIDI {
		onDisconnect := func() {
			kb.ReleaseAll()
			if board != nil {
				board.Clear()
			}
		}
		midiSrc, err = input.NewMIDISource(manager, onDisconnect, logger)
		if err != nil {
			logger.Warn("midi unavailable", "err", err)
		} else {
			defer midiSrc.Close()
		}
	}

	manager.ActivateWall(0)
	view.setStatus("press the keys the island hums about (esc quits, r resets)")

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch tev := ev.(type) {
			case *tcell.EventKey:
				if tev.Key() == tcell.KeyEscape || tev.Key() == tcell.KeyCtrlC {
					return nil
				}
				if tev.Rune() == 'r' || tev.Rune() == 'R' {
					manager.ResetAll()
					view.setStatus("level reset")
					continue
				}
				if sym := symbolFor(tev); sym != "" {
					kb.KeyDown(sym)
					// Synthetic release: terminals never send key-up.
					sched.After("input:"+sym, time.Now(), keyHoldWindow, func(time.Time) {
						kb.KeyUp(sym)
					})
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		case now := <-ticker.C:
			sched.Tick(now)
			if midiSrc != nil {
				midiSrc.Tick()
			}
			view.draw()
		}
	}
}

// symbolFor maps a terminal key event to a layout symbol.
func symbolFor(ev *tcell.EventKey) string {
	r := ev.Rune()
	if r == 0 {
		return ""
	}
	return strings.ToUpper(string(r))
}

// boardChannel is nil-safe: without a rig every wall gets a no-op channel.
func boardChannel(b *rig.Board, idx int) feedback.VisualSink {
	if b == nil {
		return feedback.NopVisual{}
	}
	return b.Channel(idx)
}

// heldQueryProxy lets walls be built before the keyboard that answers their
// held-state queries exists.
type heldQueryProxy struct {
	kb *input.Keyboard
}

func (h *heldQueryProxy) IsHeld(symbol string) bool {
	if h.kb == nil {
		return false
	}
	return h.kb.IsHeld(symbol)
}

// statusObserver narrates wall events on the view's status line and handles
// unlock music crossfades.
type statusObserver struct {
	wall.NopObserver
	view    *View
	manager *wall.Manager
	sink    *audio.Sink
}

func (s *statusObserver) WrongAnswer(id string, a wall.Answer, distance int) {
	s.view.setStatus(fmt.Sprintf("%s: %s is off by %d", id, a.String(), distance))
}

func (s *statusObserver) PartialAnswer(id string, a wall.Answer) {
	s.view.setStatus(fmt.Sprintf("%s: %s rings true, keep going", id, a.String()))
}

func (s *statusObserver) CorrectAnswer(id string, a wall.Answer) {
	s.view.setStatus(fmt.Sprintf("%s: %s resonates", id, a.String()))
}

func (s *statusObserver) WallUnlocked(id string) {
	if s.sink == nil {
		return
	}
	for _, w := range s.manager.Walls() {
		if w.ID() != id || !w.Config().CrossfadeOnUnlock {
			continue
		}
		drone, err := generators.SineTone(audio.DefaultSampleRate, 110)
		if err != nil {
			logger.Warn("drone unavailable", "err", err)
			return
		}
		s.sink.CrossfadeMusic(drone, 2*time.Second)
		return
	}
}

// builtinLevel is the fallback roster when no level file is present.
func builtinLevel() *level.Level {
	data := `
name = "island"
advance_delay = "1500ms"

[[wall]]
id = "shore-gate"
position = 10.0
mode = "any"
expected = ["G"]
cutoff = 4
hint_interval = "4s"

[[wall]]
id = "tide-organ"
position = 18.0
mode = "sequence"
expected = ["D", "F", "G"]
cooldown = "200ms"
cutoff = 5

[[wall]]
id = "cliff-chord"
position = 26.0
mode = "simultaneous"
expected = ["A", "S", "D"]
cutoff = 6

[[wall]]
id = "summit-door"
position = 40.0
mode = "all"
expected = ["H", "J", "K"]
cutoff = 5
crossfade_on_unlock = true
`
	lvl, err := level.Parse([]byte(data), logger)
	if err != nil {
		// The built-in level is compiled in; failing to parse it is a bug.
		panic(err)
	}
	return lvl
}
