package rig

import (
	"log/slog"

	"github.com/Vapoor/Resonance/feedback"
)

// FrameWriter is where assembled frames go. *Port satisfies it; tests use a
// capture.
type FrameWriter interface {
	SendFrame(f Frame)
}

// Board assembles per-wall feedback into rig frames and flushes a full
// snapshot on every change, the rig protocol being stateless by frame.
type Board struct {
	out   FrameWriter
	frame Frame
	seq   byte
	log   *slog.Logger
}

// NewBoard builds a board writing to out.
func NewBoard(out FrameWriter, log *slog.Logger) *Board {
	if log == nil {
		log = slog.Default()
	}
	return &Board{out: out, log: log}
}

// Channel returns the visual sink for one wall channel. Channels outside the
// rig's range get a no-op sink with a warning; a long level simply is not
// fully mirrored on hardware.
func (b *Board) Channel(idx int) feedback.VisualSink {
	if idx < 0 || idx >= NumChannels {
		b.log.Warn("rig: channel out of range, feedback dropped", "channel", idx)
		return feedback.NopVisual{}
	}
	return &channelSink{board: b, idx: idx}
}

// Clear sends an all-dark frame, for shutdown or device panic.
func (b *Board) Clear() {
	b.frame = EmptyFrame(b.seq)
	b.flush()
}

func (b *Board) flush() {
	b.frame.Seq = b.seq
	b.out.SendFrame(b.frame)
	b.seq++
}

// channelSink maps one wall's VisualSink calls onto its rig channel.
type channelSink struct {
	board *Board
	idx   int
}

func (c *channelSink) SetFeedbackColor(kind feedback.ColorKind) {
	b := c.board
	b.frame.Color[c.idx] = byte(kind)
	switch kind {
	case feedback.ColorListening:
		b.frame.ActiveMask |= 1 << c.idx
	case feedback.ColorInactive:
		b.frame.ActiveMask &^= 1 << c.idx
	}
	b.flush()
}

func (c *channelSink) SetSecondaryVisualActive(active bool) {
	b := c.board
	if active {
		b.frame.UnlockMask |= 1 << c.idx
	} else {
		b.frame.UnlockMask &^= 1 << c.idx
	}
	b.flush()
}

func (c *channelSink) SetDistortionIntensity(intensity float64) {
	if intensity < 0 {
		intensity = 0
	} else if intensity > 1 {
		intensity = 1
	}
	b := c.board
	b.frame.Level[c.idx] = byte(intensity * 255)
	b.flush()
}
