package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/Alia5/psxpad/gpio"
	"github.com/Alia5/psxpad/internal/rt"
	"github.com/Alia5/psxpad/psx"
)

// Timing exposes every psx.Timing field as a flag.
type Timing struct {
	ClockDelay     time.Duration `help:"Delay after each clock edge" default:"5us" env:"PSXPAD_TIMING_CLOCK_DELAY"`
	ByteDelay      time.Duration `help:"Delay after each byte" default:"4us" env:"PSXPAD_TIMING_BYTE_DELAY"`
	ReadDelay      time.Duration `help:"Initial pause after releasing attention" default:"1ms" env:"PSXPAD_TIMING_READ_DELAY"`
	ReadDelayStep  time.Duration `help:"Read delay increase after a failed config attempt" default:"1ms" env:"PSXPAD_TIMING_READ_DELAY_STEP"`
	MaxReadDelay   time.Duration `help:"Upper bound of the adaptive read delay" default:"10ms" env:"PSXPAD_TIMING_MAX_READ_DELAY"`
	CommandTimeout time.Duration `help:"Time budget of each configuration step" default:"250ms" env:"PSXPAD_TIMING_COMMAND_TIMEOUT"`
	ModeSettle     time.Duration `help:"Wait after a mode switch" default:"5ms" env:"PSXPAD_TIMING_MODE_SETTLE"`
}

func (t Timing) psx() psx.Timing {
	return psx.Timing{
		ClockDelay:     t.ClockDelay,
		ByteDelay:      t.ByteDelay,
		ReadDelay:      t.ReadDelay,
		ReadDelayStep:  t.ReadDelayStep,
		MaxReadDelay:   t.MaxReadDelay,
		CommandTimeout: t.CommandTimeout,
		ModeSettle:     t.ModeSettle,
	}
}

// Pad holds the flags shared by every command that talks to a controller.
type Pad struct {
	GPIO   gpio.Config `embed:"" prefix:"gpio."`
	Timing Timing      `embed:"" prefix:"timing."`
	RT     rt.Options  `embed:"" prefix:"rt."`

	Sticks         bool          `help:"Switch the pad to analog mode" default:"true" negatable:"" env:"PSXPAD_STICKS"`
	Rumble         bool          `help:"Enable the rumble motors" env:"PSXPAD_RUMBLE"`
	Pressure       bool          `help:"Read analog button pressure (implies --sticks)" env:"PSXPAD_PRESSURE"`
	PollRetries    int           `help:"Poll attempts before the pad counts as disconnected" default:"5" env:"PSXPAD_POLL_RETRIES"`
	Interval       time.Duration `help:"Polling interval" default:"16ms" env:"PSXPAD_INTERVAL"`
	ReconnectDelay time.Duration `help:"Wait between reconnection attempts" default:"1s" env:"PSXPAD_RECONNECT_DELAY"`
}

func (p *Pad) options(logger *slog.Logger, trace psx.Tracer) (psx.Options, error) {
	t := p.Timing.psx()
	if err := t.Validate(); err != nil {
		return psx.Options{}, fmt.Errorf("invalid timing: %w", err)
	}
	if p.Interval <= 0 {
		return psx.Options{}, errors.New("polling interval must be > 0")
	}
	return psx.Options{
		EnableSticks:   p.Sticks,
		EnableRumble:   p.Rumble,
		EnablePressure: p.Pressure,
		Timing:         t,
		PollRetries:    p.PollRetries,
		Logger:         logger,
		Trace:          trace,
	}, nil
}

// padController is the part of *psx.Controller the polling loop drives.
type padController interface {
	Update() ([]psx.ButtonEvent, error)
	Reinitialize() psx.ConnectionResult
}

// open requests the GPIO lines and initialises the pad on them. The
// returned lines must be closed by the caller.
func (p *Pad) open(logger *slog.Logger, trace psx.Tracer) (*psx.Controller, psx.ConnectionResult, *gpio.Lines, error) {
	opts, err := p.options(logger, trace)
	if err != nil {
		return nil, psx.ConnectionResult{}, nil, err
	}
	lines, err := gpio.Open(p.GPIO, logger)
	if err != nil {
		return nil, psx.ConnectionResult{}, nil, err
	}
	c, res := psx.Initialize(lines.Pins(), opts)
	logResult(logger, res)
	return c, res, lines, nil
}

func logResult(logger *slog.Logger, res psx.ConnectionResult) {
	if !res.Connected() {
		logger.Warn("No controller found, waiting for one to be plugged in")
		return
	}
	logger.Info("Controller connected", "status", res.Status, "mode", res.Mode, "type", res.Type)
}

// pollFunc runs after every successful poll with the button changes.
type pollFunc func(events []psx.ButtonEvent) error

// poll drives c until ctx ends or fn fails. connected is the state Initialize
// left the pad in. lost, when set, runs once each time the pad stops
// answering; a lost pad is probed again every ReconnectDelay. The loop runs
// on a locked OS thread with the rt hints applied, so the goroutine calling
// poll is dedicated to the bus.
func (p *Pad) poll(ctx context.Context, c padController, connected bool, logger *slog.Logger, fn pollFunc, lost func() error) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	if p.RT.Enabled() {
		rt.Prepare(p.RT, logger)
	}

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if ctx.Err() != nil {
				return nil
			}
		}

		if !connected {
			res := c.Reinitialize()
			if !res.Connected() {
				if !sleepCtx(ctx, p.ReconnectDelay) {
					return nil
				}
				continue
			}
			logResult(logger, res)
			connected = true
		}

		events, err := c.Update()
		if err != nil {
			if !errors.Is(err, psx.ErrDisconnected) {
				return err
			}
			logger.Warn("Controller disconnected", "error", err)
			connected = false
			if lost != nil {
				if err := lost(); err != nil {
					return err
				}
			}
			continue
		}
		if err := fn(events); err != nil {
			return err
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
