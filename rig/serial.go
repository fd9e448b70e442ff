package rig

import (
	"fmt"
	"log/slog"

	"go.bug.st/serial"
)

// Port wraps a go.bug.st/serial port with a frame-send helper.
type Port struct {
	port serial.Port
	log  *slog.Logger
}

// OpenPort opens the named serial device at the given baud rate.
func OpenPort(name string, baud int, log *slog.Logger) (*Port, error) {
	if log == nil {
		log = slog.Default()
	}
	mode := &serial.Mode{BaudRate: baud}
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("rig: open %s: %w", name, err)
	}
	log.Info("rig: port opened", "device", name, "baud", baud)
	return &Port{port: p, log: log}, nil
}

// SendFrame encodes and writes a Frame to the serial port. Write errors are
// logged, not returned; a flaky rig must never stall the game loop.
func (p *Port) SendFrame(f Frame) {
	data := f.Encode()
	n, err := p.port.Write(data)
	if err != nil {
		p.log.Error("rig: write error", "err", err)
		return
	}
	p.log.Debug("rig: frame sent", "bytes", n, "seq", f.Seq, "unlock_mask", f.UnlockMask)
}

// Close closes the underlying serial port.
func (p *Port) Close() {
	p.log.Info("rig: closing port")
	_ = p.port.Close()
}
