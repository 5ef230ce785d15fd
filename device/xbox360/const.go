// Package xbox360 is the stream wire format of the VIIPER "xbox360" virtual
// device.
package xbox360

// DeviceType is the name the server registers the device under.
const DeviceType = "xbox360"

const (
	InputStateSize  = 14
	RumbleStateSize = 2
)

// Button bitmasks, XInput compatible.
const (
	ButtonDPadUp    uint32 = 0x0001
	ButtonDPadDown  uint32 = 0x0002
	ButtonDPadLeft  uint32 = 0x0004
	ButtonDPadRight uint32 = 0x0008
	ButtonStart     uint32 = 0x0010
	ButtonBack      uint32 = 0x0020
	ButtonLThumb    uint32 = 0x0040 // Left stick button
	ButtonRThumb    uint32 = 0x0080 // Right stick button
	ButtonLShoulder uint32 = 0x0100
	ButtonRShoulder uint32 = 0x0200
	ButtonGuide     uint32 = 0x0400
	ButtonA         uint32 = 0x1000
	ButtonB         uint32 = 0x2000
	ButtonX         uint32 = 0x4000
	ButtonY         uint32 = 0x8000
)
