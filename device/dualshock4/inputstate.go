package dualshock4

import (
	"encoding/binary"
	"io"
)

// InputState is one client to server report. Sticks are signed with 0 at
// rest; the server converts them to the USB report's unsigned range.
type InputState struct {
	LX, LY  int8
	RX, RY  int8
	Buttons uint16
	DPad    uint8
	L2, R2  uint8

	Touch1X, Touch1Y uint16
	Touch1Active     bool
	Touch2X, Touch2Y uint16
	Touch2Active     bool

	GyroX, GyroY, GyroZ    int16
	AccelX, AccelY, AccelZ int16
}

// Neutral returns a report with nothing pressed and the pad lying flat.
func Neutral() InputState {
	return InputState{AccelZ: DefaultAccelZRaw}
}

func (s *InputState) MarshalBinary() ([]byte, error) {
	le := binary.LittleEndian
	b := make([]byte, 0, InputStateSize)
	b = append(b, byte(s.LX), byte(s.LY), byte(s.RX), byte(s.RY))
	b = le.AppendUint16(b, s.Buttons)
	b = append(b, s.DPad, s.L2, s.R2)
	b = le.AppendUint16(b, s.Touch1X)
	b = le.AppendUint16(b, s.Touch1Y)
	b = append(b, boolByte(s.Touch1Active))
	b = le.AppendUint16(b, s.Touch2X)
	b = le.AppendUint16(b, s.Touch2Y)
	b = append(b, boolByte(s.Touch2Active))
	for _, v := range []int16{s.GyroX, s.GyroY, s.GyroZ, s.AccelX, s.AccelY, s.AccelZ} {
		b = le.AppendUint16(b, uint16(v))
	}
	return b, nil
}

func (s *InputState) UnmarshalBinary(data []byte) error {
	if len(data) < InputStateSize {
		return io.ErrUnexpectedEOF
	}
	le := binary.LittleEndian
	s.LX, s.LY, s.RX, s.RY = int8(data[0]), int8(data[1]), int8(data[2]), int8(data[3])
	s.Buttons = le.Uint16(data[4:])
	s.DPad, s.L2, s.R2 = data[6], data[7], data[8]
	s.Touch1X, s.Touch1Y = le.Uint16(data[9:]), le.Uint16(data[11:])
	s.Touch1Active = data[13] != 0
	s.Touch2X, s.Touch2Y = le.Uint16(data[14:]), le.Uint16(data[16:])
	s.Touch2Active = data[18] != 0
	motion := []*int16{&s.GyroX, &s.GyroY, &s.GyroZ, &s.AccelX, &s.AccelY, &s.AccelZ}
	for i, p := range motion {
		*p = int16(le.Uint16(data[19+2*i:]))
	}
	return nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// OutputState is the feedback the server sends whenever the host changes
// rumble or lightbar.
type OutputState struct {
	RumbleSmall uint8
	RumbleLarge uint8
	LedRed      uint8
	LedGreen    uint8
	LedBlue     uint8
	FlashOn     uint8 // units of 2.5ms
	FlashOff    uint8 // units of 2.5ms
}

func (f *OutputState) MarshalBinary() ([]byte, error) {
	return []byte{f.RumbleSmall, f.RumbleLarge, f.LedRed, f.LedGreen, f.LedBlue, f.FlashOn, f.FlashOff}, nil
}

func (f *OutputState) UnmarshalBinary(data []byte) error {
	if len(data) < OutputStateSize {
		return io.ErrUnexpectedEOF
	}
	f.RumbleSmall, f.RumbleLarge = data[0], data[1]
	f.LedRed, f.LedGreen, f.LedBlue = data[2], data[3], data[4]
	f.FlashOn, f.FlashOff = data[5], data[6]
	return nil
}

// ReadOutputState reads exactly one feedback message from r.
func ReadOutputState(r io.Reader) (*OutputState, error) {
	var buf [OutputStateSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	out := new(OutputState)
	if err := out.UnmarshalBinary(buf[:]); err != nil {
		return nil, err
	}
	return out, nil
}
