package bridge

import (
	"bufio"
	"encoding"

	"github.com/Alia5/psxpad/device/xbox360"
	"github.com/Alia5/psxpad/psx"
)

var xbox360Pad = Target{
	DeviceType: xbox360.DeviceType,
	State: func(p Pad) encoding.BinaryMarshaler {
		s := Xbox360State(p)
		return &s
	},
	ReadFeedback: func(r *bufio.Reader) (encoding.BinaryUnmarshaler, error) {
		return xbox360.ReadRumbleState(r)
	},
	Rumble: func(msg encoding.BinaryUnmarshaler) (float64, float64, bool) {
		r, ok := msg.(*xbox360.RumbleState)
		if !ok {
			return 0, 0, false
		}
		return smallMotor(r.RightMotor), float64(r.LeftMotor) / 255, true
	},
}

var xboxButtons = []struct {
	from psx.Button
	to   uint32
}{
	{psx.ButtonCross, xbox360.ButtonA},
	{psx.ButtonCircle, xbox360.ButtonB},
	{psx.ButtonSquare, xbox360.ButtonX},
	{psx.ButtonTriangle, xbox360.ButtonY},
	{psx.ButtonL1, xbox360.ButtonLShoulder},
	{psx.ButtonR1, xbox360.ButtonRShoulder},
	{psx.ButtonSelect, xbox360.ButtonBack},
	{psx.ButtonStart, xbox360.ButtonStart},
	{psx.ButtonL3, xbox360.ButtonLThumb},
	{psx.ButtonR3, xbox360.ButtonRThumb},
	{psx.ButtonUp, xbox360.ButtonDPadUp},
	{psx.ButtonDown, xbox360.ButtonDPadDown},
	{psx.ButtonLeft, xbox360.ButtonDPadLeft},
	{psx.ButtonRight, xbox360.ButtonDPadRight},
}

// Xbox360State builds the XInput report for the pad's current state. L2
// and R2 become the triggers; the Y axes are flipped to XInput's up
// positive convention.
func Xbox360State(p Pad) xbox360.InputState {
	var s xbox360.InputState
	for _, m := range xboxButtons {
		if p.Button(m.from) {
			s.Buttons |= m.to
		}
	}
	s.Buttons = dropOpposing(s.Buttons, xbox360.ButtonDPadUp|xbox360.ButtonDPadDown)
	s.Buttons = dropOpposing(s.Buttons, xbox360.ButtonDPadLeft|xbox360.ButtonDPadRight)

	s.LT = trigger(p, psx.ButtonL2)
	s.RT = trigger(p, psx.ButtonR2)

	if st, ok := p.AnalogLeft(); ok {
		s.LX, s.LY = axis16(st.X, false), axis16(st.Y, true)
	}
	if st, ok := p.AnalogRight(); ok {
		s.RX, s.RY = axis16(st.X, false), axis16(st.Y, true)
	}
	return s
}

// axis16 scales a stick reading centred on 0x80 to the full int16 range.
func axis16(v uint8, invert bool) int16 {
	c := int(v) - 0x80
	if invert {
		c = min(-c, 127)
	}
	if c >= 0 {
		return int16(c * 32767 / 127)
	}
	return int16(c * 256)
}
