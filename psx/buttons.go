package psx

import "math/bits"

// Button is the bit position of a button in the 16-bit mask.
type Button uint8

const (
	ButtonSelect Button = iota
	ButtonL3
	ButtonR3
	ButtonStart
	ButtonUp
	ButtonRight
	ButtonDown
	ButtonLeft
	ButtonL2
	ButtonR2
	ButtonL1
	ButtonR1
	ButtonTriangle
	ButtonCircle
	ButtonCross
	ButtonSquare

	buttonCount = 16
)

// AllReleased is the mask of a pad with no button held.
const AllReleased uint16 = 0xFFFF

var buttonNames = [buttonCount]string{
	"SELECT", "L3", "R3", "START", "UP", "RIGHT", "DOWN", "LEFT",
	"L2", "R2", "L1", "R1", "TRIANGLE", "CIRCLE", "CROSS", "SQUARE",
}

// pressureOffsets maps each button to its pressure byte in a 21 byte frame.
// -1 marks buttons without a pressure sensor.
var pressureOffsets = [buttonCount]int{
	ButtonSelect:   -1,
	ButtonL3:       -1,
	ButtonR3:       -1,
	ButtonStart:    -1,
	ButtonUp:       11,
	ButtonRight:    9,
	ButtonDown:     12,
	ButtonLeft:     10,
	ButtonL2:       19,
	ButtonR2:       20,
	ButtonL1:       17,
	ButtonR1:       18,
	ButtonTriangle: 13,
	ButtonCircle:   14,
	ButtonCross:    15,
	ButtonSquare:   16,
}

func (b Button) String() string {
	if b >= buttonCount {
		return "UNKNOWN"
	}
	return buttonNames[b]
}

// HasPressure reports whether the button has an analog pressure sensor.
func (b Button) HasPressure() bool {
	return b < buttonCount && pressureOffsets[b] >= 0
}

// ButtonEvent is a single press or release seen between two polls.
type ButtonEvent struct {
	ID       Button
	Pressed  bool
	Released bool
	Name     string
}

// Diff returns one event per bit that differs between two active-low masks,
// lowest bit first. The result is empty, never nil, when nothing changed.
func Diff(old, cur uint16) []ButtonEvent {
	changed := old ^ cur
	events := make([]ButtonEvent, 0, bits.OnesCount16(changed))
	for i := Button(0); i < buttonCount; i++ {
		if changed&(1<<i) == 0 {
			continue
		}
		pressed := cur&(1<<i) == 0
		events = append(events, ButtonEvent{
			ID:       i,
			Pressed:  pressed,
			Released: !pressed,
			Name:     i.String(),
		})
	}
	return events
}
