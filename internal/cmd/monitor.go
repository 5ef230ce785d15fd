package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Alia5/psxpad/internal/log"
	"github.com/Alia5/psxpad/psx"
)

// Monitor logs everything the pad reports.
type Monitor struct {
	Pad  Pad  `embed:""`
	Dump bool `help:"Log the raw reply frame of every poll" env:"PSXPAD_MONITOR_DUMP"`
}

// monitoredPad is what the monitor reads after each poll.
type monitoredPad interface {
	padController
	AnalogLeft() (psx.Stick, bool)
	AnalogRight() (psx.Stick, bool)
	AnalogButton(b psx.Button) (uint8, bool)
	Frame() psx.Frame
}

// Run is called by Kong when the monitor command is executed.
func (m *Monitor) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, res, lines, err := m.Pad.open(logger, rawLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := lines.Close(); err != nil {
			logger.Warn("Failed to release GPIO lines", "error", err)
		}
	}()
	return m.monitor(ctx, c, res.Connected(), logger)
}

func (m *Monitor) monitor(ctx context.Context, c monitoredPad, connected bool, logger *slog.Logger) error {
	var left, right psx.Stick
	return m.Pad.poll(ctx, c, connected, logger, func(events []psx.ButtonEvent) error {
		for _, ev := range events {
			if ev.Pressed {
				attrs := []any{"button", ev.Name}
				if p, ok := c.AnalogButton(ev.ID); ok {
					attrs = append(attrs, "pressure", p)
				}
				logger.Info("Pressed", attrs...)
			} else {
				logger.Info("Released", "button", ev.Name)
			}
		}
		if s, ok := c.AnalogLeft(); ok && s != left {
			left = s
			logger.Info("Left stick", "x", s.X, "y", s.Y)
		}
		if s, ok := c.AnalogRight(); ok && s != right {
			right = s
			logger.Info("Right stick", "x", s.X, "y", s.Y)
		}
		if m.Dump {
			logger.Info("Frame", "data", c.Frame().String())
		}
		return nil
	}, nil)
}
