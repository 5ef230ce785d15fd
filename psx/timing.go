package psx

import (
	"errors"
	"fmt"
	"time"
)

// Timing holds every delay and time budget used by the driver.
//
// ClockDelay and ByteDelay bound the minimum bus cycle time. Pads misread
// bits when they are shortened, so treat them as a hard limit rather than a
// tuning knob.
type Timing struct {
	// ClockDelay is held after each clock edge (half a bit period).
	ClockDelay time.Duration
	// ByteDelay is held after each byte and after asserting attention.
	ByteDelay time.Duration
	// ReadDelay is the initial pause after releasing attention. The
	// configurator raises it when a pad is slow to answer.
	ReadDelay time.Duration
	// ReadDelayStep is added to ReadDelay after each failed config attempt.
	ReadDelayStep time.Duration
	// MaxReadDelay caps the adaptive ReadDelay.
	MaxReadDelay time.Duration
	// CommandTimeout bounds each retry loop of the configurator.
	CommandTimeout time.Duration
	// ModeSettle is waited after a mode switch was accepted.
	ModeSettle time.Duration
}

// DefaultTiming returns delays known to work with Sony DualShock and
// DualShock 2 pads.
func DefaultTiming() Timing {
	return Timing{
		ClockDelay:     5 * time.Microsecond,
		ByteDelay:      4 * time.Microsecond,
		ReadDelay:      1 * time.Millisecond,
		ReadDelayStep:  1 * time.Millisecond,
		MaxReadDelay:   10 * time.Millisecond,
		CommandTimeout: 250 * time.Millisecond,
		ModeSettle:     5 * time.Millisecond,
	}
}

// Validate reports timing values the driver cannot work with.
func (t Timing) Validate() error {
	if t.ClockDelay <= 0 {
		return errors.New("clock delay must be > 0")
	}
	if t.ByteDelay < 0 || t.ReadDelay < 0 || t.ReadDelayStep < 0 || t.ModeSettle < 0 {
		return errors.New("delays must not be negative")
	}
	if t.MaxReadDelay < t.ReadDelay {
		return fmt.Errorf("max read delay %s is below read delay %s", t.MaxReadDelay, t.ReadDelay)
	}
	if t.CommandTimeout <= 0 {
		return errors.New("command timeout must be > 0")
	}
	return nil
}

// orDefault fills every zero field from DefaultTiming.
func (t Timing) orDefault() Timing {
	d := DefaultTiming()
	fill := func(v *time.Duration, def time.Duration) {
		if *v == 0 {
			*v = def
		}
	}
	fill(&t.ClockDelay, d.ClockDelay)
	fill(&t.ByteDelay, d.ByteDelay)
	fill(&t.ReadDelay, d.ReadDelay)
	fill(&t.ReadDelayStep, d.ReadDelayStep)
	fill(&t.MaxReadDelay, max(d.MaxReadDelay, t.ReadDelay))
	fill(&t.CommandTimeout, d.CommandTimeout)
	fill(&t.ModeSettle, d.ModeSettle)
	return t
}
