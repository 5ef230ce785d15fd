package psx

import "fmt"

// Header byte values.
const (
	headerTrailer = 0x5A
	noDevice      = 0xFF
	filler        = 0x5A
)

// Frame offsets.
const (
	offButtonsLo = 3
	offButtonsHi = 4
	offRightX    = 5
	offRightY    = 6
	offLeftX     = 7
	offLeftY     = 8
	offPressure  = 9

	headerSize   = 3
	stickFrame   = 9
	pressureSize = 12
	fullFrame    = offPressure + pressureSize
)

// Mode is the reporting mode a pad announces in byte 1 of every reply.
type Mode uint8

const (
	ModeUnknown Mode = iota
	ModeDigital
	ModeAnalog
	ModeAnalogPressure
	ModeConfigEscape
)

func (m Mode) String() string {
	switch m {
	case ModeDigital:
		return "digital"
	case ModeAnalog:
		return "analog"
	case ModeAnalogPressure:
		return "analog+pressure"
	case ModeConfigEscape:
		return "config"
	default:
		return "unknown"
	}
}

// Frame is the exact byte sequence received during one transaction.
type Frame []byte

// Valid reports whether the pad answered at all and the bus is in sync.
// A 0xFF mode byte always means no device, whatever follows it.
func (f Frame) Valid() bool {
	if len(f) < headerSize {
		return false
	}
	return f[1] != noDevice && (f[2] == headerTrailer || f[2] == 0x00)
}

// IsConfig reports whether the pad is in its configuration escape mode.
// 0xFF shares the high nibble but means no device.
func (f Frame) IsConfig() bool {
	return len(f) >= headerSize && f[1] != noDevice && f[1]&0xF0 == 0xF0
}

// IsAnalog reports whether the mode byte belongs to the analog family (0x7_).
func (f Frame) IsAnalog() bool {
	return len(f) >= headerSize && f[1]&0xF0 == 0x70
}

// ID returns the raw mode byte, or 0xFF for a truncated frame.
func (f Frame) ID() byte {
	if len(f) < 2 {
		return noDevice
	}
	return f[1]
}

// ReplyLength is the payload size in bytes the pad declared in its header.
func (f Frame) ReplyLength() int {
	return int(f.ID()&0x0F) * 2
}

// Mode decodes the reporting mode from the mode byte.
func (f Frame) Mode() Mode {
	if !f.Valid() {
		return ModeUnknown
	}
	switch f[1] & 0xF0 {
	case 0x40:
		return ModeDigital
	case 0x70:
		if f.ReplyLength() == fullFrame-headerSize {
			return ModeAnalogPressure
		}
		return ModeAnalog
	case 0xF0:
		return ModeConfigEscape
	}
	return ModeUnknown
}

// Buttons returns the active-low button mask from bytes 3 and 4.
// ok is false when the frame is too short to carry them.
func (f Frame) Buttons() (mask uint16, ok bool) {
	if len(f) <= offButtonsHi {
		return 0, false
	}
	return uint16(f[offButtonsHi])<<8 | uint16(f[offButtonsLo]), true
}

func (f Frame) String() string {
	return fmt.Sprintf("% x", []byte(f))
}

// knownID reports whether id is a mode byte a working pad answers a poll
// with before it has been configured.
func knownID(id byte) bool {
	switch id {
	case 0x41, 0x42, 0x73, 0x79:
		return true
	}
	return false
}
