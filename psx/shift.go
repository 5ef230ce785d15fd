package psx

// Shifter clocks single bytes over the bus, LSB first. The pad shifts its
// reply out on the same clock, so every transfer is full duplex.
type Shifter struct {
	pins   Pins
	clock  Clock
	timing *Timing
}

// NewShifter returns a Shifter using the given lines. timing is read on
// every transfer so later changes take effect immediately.
func NewShifter(pins Pins, clock Clock, timing *Timing) *Shifter {
	return &Shifter{pins: pins, clock: clock, timing: timing}
}

// Transfer sends out and returns the byte the pad sent back. It cannot fail;
// violating the bus timing only shows up as wrong data.
func (s *Shifter) Transfer(out byte) byte {
	var in byte
	for i := 0; i < 8; i++ {
		if out&(1<<i) != 0 {
			s.pins.Command.High()
		} else {
			s.pins.Command.Low()
		}
		s.pins.Clock.Low()
		s.clock.Sleep(s.timing.ClockDelay)
		if s.pins.Data.Get() {
			in |= 1 << i
		}
		s.pins.Clock.High()
		s.clock.Sleep(s.timing.ClockDelay)
	}
	s.pins.Command.High()
	return in
}
