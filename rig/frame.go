// Package rig drives an external distortion rig over a serial line: a small
// controller that renders each wall's distortion level on physical hardware
// (LED bars, a haptic panel). The engine sees it as just another visual sink.
package rig

// NumChannels is the number of wall channels a rig frame carries.
const NumChannels = 8

const (
	CmdApplyFrame = 0x20
	SOF0          = 0xAA
	SOF1          = 0x55
)

// Frame is a full-state snapshot of all rig channels sent in one bulk
// transfer. Every field is serialised into the payload.
type Frame struct {
	Level      [NumChannels]byte // distortion intensity, 0-255
	Color      [NumChannels]byte // feedback.ColorKind ordinal
	UnlockMask byte              // bit N set = channel N unlocked
	ActiveMask byte              // bit N set = channel N listening
	Seq        byte
}

// Encode builds the on-wire representation:
//
//	[SOF0][SOF1][LEN][CMD][level0..7][color0..7][UnlockMask][ActiveMask][Seq][CKS]
func (f *Frame) Encode() []byte {
	payload := make([]byte, 0, 2*NumChannels+3)
	payload = append(payload, f.Level[:]...)
	payload = append(payload, f.Color[:]...)
	payload = append(payload, f.UnlockMask, f.ActiveMask, f.Seq)

	length := byte(len(payload) + 1) // +1 for CMD byte
	cks := length ^ CmdApplyFrame
	for _, b := range payload {
		cks ^= b
	}

	out := []byte{SOF0, SOF1, length, CmdApplyFrame}
	out = append(out, payload...)
	out = append(out, cks)
	return out
}

// EmptyFrame returns an all-dark, all-locked frame (used for panic clear).
func EmptyFrame(seq byte) Frame {
	return Frame{Seq: seq}
}
