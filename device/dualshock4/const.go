// Package dualshock4 is the stream wire format of the VIIPER "dualshock4"
// virtual device.
package dualshock4

// DeviceType is the name the server registers the device under.
const DeviceType = "dualshock4"

const (
	InputStateSize  = 31
	OutputStateSize = 7
)

// Buttons bits.
const (
	ButtonPS            uint16 = 0x0001
	ButtonTouchpadClick uint16 = 0x0002
	ButtonSquare        uint16 = 0x0010
	ButtonCross         uint16 = 0x0020
	ButtonCircle        uint16 = 0x0040
	ButtonTriangle      uint16 = 0x0080
	ButtonL1            uint16 = 0x0100
	ButtonR1            uint16 = 0x0200
	ButtonL2            uint16 = 0x0400
	ButtonR2            uint16 = 0x0800
	ButtonShare         uint16 = 0x1000
	ButtonOptions       uint16 = 0x2000
	ButtonL3            uint16 = 0x4000
	ButtonR3            uint16 = 0x8000
)

// DPad bits; opposite directions may not be combined.
const (
	DPadUp    uint8 = 0x01
	DPadDown  uint8 = 0x02
	DPadLeft  uint8 = 0x04
	DPadRight uint8 = 0x08
)

// DefaultAccelZRaw is gravity on a pad lying flat, in the wire's fixed
// point unit of 1/512 m/s².
const DefaultAccelZRaw int16 = -5023
