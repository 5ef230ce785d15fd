// Package bridge maps controller state onto VIIPER virtual devices.
package bridge

import (
	"bufio"
	"encoding"
	"slices"

	"github.com/Alia5/psxpad/psx"
)

// Pad is the read side of a psx.Controller used by the mappings.
type Pad interface {
	Button(b psx.Button) bool
	AnalogButton(b psx.Button) (uint8, bool)
	AnalogLeft() (psx.Stick, bool)
	AnalogRight() (psx.Stick, bool)
}

// Released is a pad with nothing held and no analog data. Its State is the
// report to send when the real pad is gone.
var Released Pad = releasedPad{}

type releasedPad struct{}

func (releasedPad) Button(psx.Button) bool                { return false }
func (releasedPad) AnalogButton(psx.Button) (uint8, bool) { return 0, false }
func (releasedPad) AnalogLeft() (psx.Stick, bool)         { return psx.Stick{}, false }
func (releasedPad) AnalogRight() (psx.Stick, bool)        { return psx.Stick{}, false }

// Target is a virtual device type the pad can be forwarded as.
type Target struct {
	DeviceType string
	// State builds the input report for the pad's current state.
	State func(p Pad) encoding.BinaryMarshaler
	// ReadFeedback reads exactly one feedback message from the stream.
	ReadFeedback func(r *bufio.Reader) (encoding.BinaryUnmarshaler, error)
	// Rumble returns the motor intensities in [0, 1] carried by msg. ok is
	// false for messages of another type.
	Rumble func(msg encoding.BinaryUnmarshaler) (small, large float64, ok bool)
}

var targets = map[string]Target{
	dualShock4.DeviceType: dualShock4,
	xbox360Pad.DeviceType: xbox360Pad,
}

// Lookup returns the target registered under a VIIPER device type.
func Lookup(deviceType string) (Target, bool) {
	t, ok := targets[deviceType]
	return t, ok
}

// DeviceTypes lists the supported device types in sorted order.
func DeviceTypes() []string {
	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// smallMotor maps a feedback level onto the DualShock 2 small motor, which
// only knows on and off.
func smallMotor(v uint8) float64 {
	if v > 0 {
		return 1
	}
	return 0
}

func trigger(p Pad, b psx.Button) uint8 {
	if v, ok := p.AnalogButton(b); ok {
		return v
	}
	if p.Button(b) {
		return 0xFF
	}
	return 0
}

// dropOpposing clears both bits of pair when both are set. Worn pads can
// report both directions of one axis.
func dropOpposing[T uint8 | uint32](mask, pair T) T {
	if mask&pair == pair {
		return mask &^ pair
	}
	return mask
}
