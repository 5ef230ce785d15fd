package psx

// Command bytes fixed by the controller protocol.
const (
	cmdStart    = 0x01
	cmdPoll     = 0x42
	cmdConfig   = 0x43
	cmdSetMode  = 0x44
	cmdReadType = 0x45
	cmdRumble   = 0x4D
	cmdPressure = 0x4F
	modeAnalog  = 0x01
	modeDigital = 0x00
	modeLocked  = 0x03
	rumbleSmall = 0x00
	rumbleLarge = 0x01
)

var (
	enterConfigCmd = []byte{cmdStart, cmdConfig, 0x00, 0x01, filler}
	exitConfigCmd  = []byte{cmdStart, cmdConfig, 0x00, 0x00, filler}
	readTypeCmd    = []byte{cmdStart, cmdReadType, 0x00}
	pressureCmd    = []byte{cmdStart, cmdPressure, 0x00, 0xFF, 0xFF, 0x03, 0x00, 0x00, 0x00}
	pollCmd        = []byte{cmdStart, cmdPoll, 0x00}
)

func setModeCmd(analog bool) []byte {
	mode := byte(modeDigital)
	if analog {
		mode = modeAnalog
	}
	return []byte{cmdStart, cmdSetMode, 0x00, mode, modeLocked, 0x00, 0x00, 0x00, 0x00}
}

// enableRumbleCmd maps the small motor to poll byte 3 and the large motor to
// poll byte 4.
func enableRumbleCmd() []byte {
	return []byte{cmdStart, cmdRumble, 0x00, rumbleSmall, rumbleLarge}
}

func pollRumbleCmd(small, large byte) []byte {
	return []byte{cmdStart, cmdPoll, 0x00, small, large}
}
