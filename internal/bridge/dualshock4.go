package bridge

import (
	"bufio"
	"encoding"

	"github.com/Alia5/psxpad/device/dualshock4"
	"github.com/Alia5/psxpad/psx"
)

var dualShock4 = Target{
	DeviceType: dualshock4.DeviceType,
	State: func(p Pad) encoding.BinaryMarshaler {
		s := DualShock4State(p)
		return &s
	},
	ReadFeedback: func(r *bufio.Reader) (encoding.BinaryUnmarshaler, error) {
		return dualshock4.ReadOutputState(r)
	},
	Rumble: func(msg encoding.BinaryUnmarshaler) (float64, float64, bool) {
		out, ok := msg.(*dualshock4.OutputState)
		if !ok {
			return 0, 0, false
		}
		return smallMotor(out.RumbleSmall), float64(out.RumbleLarge) / 255, true
	},
}

var ds4Buttons = []struct {
	from psx.Button
	to   uint16
}{
	{psx.ButtonSquare, dualshock4.ButtonSquare},
	{psx.ButtonCross, dualshock4.ButtonCross},
	{psx.ButtonCircle, dualshock4.ButtonCircle},
	{psx.ButtonTriangle, dualshock4.ButtonTriangle},
	{psx.ButtonL1, dualshock4.ButtonL1},
	{psx.ButtonR1, dualshock4.ButtonR1},
	{psx.ButtonL2, dualshock4.ButtonL2},
	{psx.ButtonR2, dualshock4.ButtonR2},
	{psx.ButtonSelect, dualshock4.ButtonShare},
	{psx.ButtonStart, dualshock4.ButtonOptions},
	{psx.ButtonL3, dualshock4.ButtonL3},
	{psx.ButtonR3, dualshock4.ButtonR3},
}

var ds4DPad = []struct {
	from psx.Button
	to   uint8
}{
	{psx.ButtonUp, dualshock4.DPadUp},
	{psx.ButtonDown, dualshock4.DPadDown},
	{psx.ButtonLeft, dualshock4.DPadLeft},
	{psx.ButtonRight, dualshock4.DPadRight},
}

// DualShock4State builds the DualShock 4 report for the pad's current state.
// Without analog sticks the sticks rest centred; without pressure data the
// triggers jump between 0 and 255.
func DualShock4State(p Pad) dualshock4.InputState {
	s := dualshock4.Neutral()
	for _, m := range ds4Buttons {
		if p.Button(m.from) {
			s.Buttons |= m.to
		}
	}
	for _, m := range ds4DPad {
		if p.Button(m.from) {
			s.DPad |= m.to
		}
	}
	s.DPad = dropOpposing(s.DPad, dualshock4.DPadUp|dualshock4.DPadDown)
	s.DPad = dropOpposing(s.DPad, dualshock4.DPadLeft|dualshock4.DPadRight)

	s.L2 = trigger(p, psx.ButtonL2)
	s.R2 = trigger(p, psx.ButtonR2)

	if st, ok := p.AnalogLeft(); ok {
		s.LX, s.LY = axis(st.X), axis(st.Y)
	}
	if st, ok := p.AnalogRight(); ok {
		s.RX, s.RY = axis(st.X), axis(st.Y)
	}
	return s
}

// axis moves an unsigned stick reading centred on 0x80 to a signed one
// centred on 0.
func axis(v uint8) int8 {
	return int8(v ^ 0x80)
}
