package cmd

import (
	"context"
	"encoding"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Alia5/psxpad/internal/rt"
	"github.com/Alia5/psxpad/psx"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testPad polls fast and leaves the scheduling of the test binary alone.
func testPad() Pad {
	return Pad{
		Interval:       time.Millisecond,
		ReconnectDelay: time.Millisecond,
		RT:             rt.Options{CPU: -1},
	}
}

// fakeController scripts Update and Reinitialize. update receives the
// 1-based call number and may change the held buttons.
type fakeController struct {
	mu      sync.Mutex
	update  func(n int, f *fakeController) ([]psx.ButtonEvent, error)
	reinit  []psx.ConnectionResult
	updates int
	reinits int

	held  map[psx.Button]bool
	left  psx.Stick
	frame psx.Frame

	rumble [2]float64
}

func (f *fakeController) Update() ([]psx.ButtonEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if f.update == nil {
		return nil, nil
	}
	return f.update(f.updates, f)
}

func (f *fakeController) Reinitialize() psx.ConnectionResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reinits++
	if len(f.reinit) == 0 {
		return psx.ConnectionResult{Status: psx.StatusNoDevice}
	}
	res := f.reinit[0]
	f.reinit = f.reinit[1:]
	return res
}

func (f *fakeController) Button(b psx.Button) bool { return f.held[b] }

func (f *fakeController) AnalogButton(psx.Button) (uint8, bool) { return 0, false }

func (f *fakeController) AnalogLeft() (psx.Stick, bool) { return f.left, true }

func (f *fakeController) AnalogRight() (psx.Stick, bool) { return psx.Stick{X: 0x80, Y: 0x80}, true }

func (f *fakeController) Frame() psx.Frame { return f.frame }

func (f *fakeController) SetRumble(m psx.Motor, intensity float64) error {
	f.rumble[m] = intensity
	return nil
}

type recordingSink struct {
	writes [][]byte
}

func (s *recordingSink) WriteBinary(v encoding.BinaryMarshaler) error {
	b, err := v.MarshalBinary()
	if err != nil {
		return err
	}
	s.writes = append(s.writes, b)
	return nil
}

// stopAfter returns an update script that cancels ctx from call n on and
// leaves the state untouched.
func stopAfter(n int, cancel context.CancelFunc, script func(n int, f *fakeController)) func(int, *fakeController) ([]psx.ButtonEvent, error) {
	return func(call int, f *fakeController) ([]psx.ButtonEvent, error) {
		if call >= n {
			cancel()
			return nil, nil
		}
		if script != nil {
			script(call, f)
		}
		return nil, nil
	}
}
