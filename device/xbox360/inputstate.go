package xbox360

import (
	"encoding/binary"
	"io"
)

// InputState is one client to server report. Sticks follow XInput: signed,
// 0 at rest, up is positive on the Y axes.
type InputState struct {
	Buttons uint32
	LT, RT  uint8
	LX, LY  int16
	RX, RY  int16
}

func (x *InputState) MarshalBinary() ([]byte, error) {
	le := binary.LittleEndian
	b := make([]byte, 0, InputStateSize)
	b = le.AppendUint32(b, x.Buttons)
	b = append(b, x.LT, x.RT)
	for _, v := range []int16{x.LX, x.LY, x.RX, x.RY} {
		b = le.AppendUint16(b, uint16(v))
	}
	return b, nil
}

func (x *InputState) UnmarshalBinary(data []byte) error {
	if len(data) < InputStateSize {
		return io.ErrUnexpectedEOF
	}
	le := binary.LittleEndian
	x.Buttons = le.Uint32(data)
	x.LT, x.RT = data[4], data[5]
	x.LX = int16(le.Uint16(data[6:]))
	x.LY = int16(le.Uint16(data[8:]))
	x.RX = int16(le.Uint16(data[10:]))
	x.RY = int16(le.Uint16(data[12:]))
	return nil
}

// RumbleState is the motor feedback sent by the server. The left motor is
// the heavy low frequency one.
type RumbleState struct {
	LeftMotor  uint8
	RightMotor uint8
}

func (r *RumbleState) MarshalBinary() ([]byte, error) {
	return []byte{r.LeftMotor, r.RightMotor}, nil
}

func (r *RumbleState) UnmarshalBinary(data []byte) error {
	if len(data) < RumbleStateSize {
		return io.ErrUnexpectedEOF
	}
	r.LeftMotor, r.RightMotor = data[0], data[1]
	return nil
}

// ReadRumbleState reads exactly one feedback message from r.
func ReadRumbleState(r io.Reader) (*RumbleState, error) {
	var buf [RumbleStateSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	return &RumbleState{LeftMotor: buf[0], RightMotor: buf[1]}, nil
}
