package psx

import "time"

// Pin is a single digital line of the controller bus.
//
// Output lines are driven with High and Low. Get samples an input line; the
// data line must be configured with a pull-up by the backend.
type Pin interface {
	High()
	Low()
	Get() bool
}

// Pins groups the four lines owned by one Controller.
type Pins struct {
	Clock     Pin
	Command   Pin
	Attention Pin
	Data      Pin
}

// Clock supplies wall time and delays to the driver. All sleeps of the
// protocol engine go through it.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// Tracer receives a copy of every frame exchanged with the pad.
// in is true for bytes sent to the pad and false for bytes received.
type Tracer interface {
	Log(in bool, data []byte)
}

// spinThreshold is the longest delay SystemClock busy-waits for instead of
// calling time.Sleep, whose granularity is far coarser than the bus timing.
const spinThreshold = 200 * time.Microsecond

// SystemClock is the Clock backed by the runtime.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Sleep waits at least d. Short delays spin on the monotonic clock.
func (SystemClock) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	if d > spinThreshold {
		time.Sleep(d)
		return
	}
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
	}
}

type nopTracer struct{}

func (nopTracer) Log(bool, []byte) {}
