package cmd

import (
	"context"
	"encoding"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Alia5/psxpad/apiclient"
	"github.com/Alia5/psxpad/internal/bridge"
	"github.com/Alia5/psxpad/internal/log"
	"github.com/Alia5/psxpad/psx"
)

// APIConfig addresses the VIIPER server.
type APIConfig struct {
	Addr     string        `help:"VIIPER API server address" default:"localhost:3242" env:"PSXPAD_API_ADDR"`
	Password string        `help:"VIIPER API password, empty for unauthenticated servers" env:"PSXPAD_API_PASSWORD"`
	Timeout  time.Duration `help:"Dial, read and write timeout of API requests" default:"5s" env:"PSXPAD_API_TIMEOUT"`
}

// Bridge forwards the pad to a VIIPER server as a virtual device.
type Bridge struct {
	Pad    Pad       `embed:""`
	API    APIConfig `embed:"" prefix:"api."`
	Bus    uint32    `help:"Bus to add the device to, 0 creates a new bus" env:"PSXPAD_BRIDGE_BUS"`
	Device string    `help:"Virtual device type: dualshock4 or xbox360" default:"dualshock4" enum:"dualshock4,xbox360" env:"PSXPAD_BRIDGE_DEVICE"`
}

// bridgedPad is what the bridge reads from and writes rumble to.
type bridgedPad interface {
	padController
	bridge.Pad
	SetRumble(m psx.Motor, intensity float64) error
}

type inputSink interface {
	WriteBinary(v encoding.BinaryMarshaler) error
}

// Run is called by Kong when the bridge command is executed.
func (b *Bridge) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	target, ok := bridge.Lookup(b.Device)
	if !ok {
		return fmt.Errorf("unsupported device type %q, expected one of %v", b.Device, bridge.DeviceTypes())
	}

	c, res, lines, err := b.Pad.open(logger, rawLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := lines.Close(); err != nil {
			logger.Warn("Failed to release GPIO lines", "error", err)
		}
	}()

	client := apiclient.NewWithConfig(b.API.Addr, &apiclient.Config{
		DialTimeout:  b.API.Timeout,
		ReadTimeout:  b.API.Timeout,
		WriteTimeout: b.API.Timeout,
		Password:     b.API.Password,
	})
	stream, cleanup, err := b.attach(ctx, client, target.DeviceType, logger)
	defer cleanup()
	if err != nil {
		return err
	}
	defer stream.Close()

	feedback, readErr := stream.StartReading(ctx, 4, target.ReadFeedback)
	go func() {
		if err, ok := <-readErr; ok && ctx.Err() == nil {
			logger.Warn("Feedback stream ended", "error", err)
		}
	}()

	logger.Info("Forwarding controller", "addr", b.API.Addr, "type", target.DeviceType, "bus", stream.BusID, "device", stream.DevID)
	return b.forward(ctx, c, res.Connected(), target, stream, feedback, logger)
}

// attach adds the virtual device, creating a bus first when none is
// configured. cleanup removes whatever attach created and is safe to call
// on error.
func (b *Bridge) attach(ctx context.Context, client *apiclient.Client, devType string, logger *slog.Logger) (*apiclient.DeviceStream, func(), error) {
	var undo []func(context.Context) error
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), b.API.Timeout)
		defer cancel()
		for i := len(undo) - 1; i >= 0; i-- {
			if err := undo[i](ctx); err != nil {
				logger.Warn("Cleanup failed", "error", err)
			}
		}
	}

	busID := b.Bus
	if busID == 0 {
		bus, err := client.BusCreate(ctx, 0)
		if err != nil {
			return nil, cleanup, fmt.Errorf("create bus: %w", err)
		}
		busID = bus.BusID
		logger.Info("Created bus", "bus", busID)
		undo = append(undo, func(ctx context.Context) error {
			_, err := client.BusRemove(ctx, busID)
			return err
		})
	}

	stream, dev, err := client.AddDeviceAndConnect(ctx, busID, devType, nil)
	if dev != nil {
		undo = append(undo, func(ctx context.Context) error {
			_, err := client.DeviceRemove(ctx, busID, dev.DevId)
			return err
		})
	}
	if err != nil {
		return nil, cleanup, fmt.Errorf("add %s device: %w", devType, err)
	}
	return stream, cleanup, nil
}

// forward polls c and sends its state whenever it changed. Rumble feedback
// is applied after each poll and reaches the motors with the next one. A
// lost pad is reported as released so no input stays latched on the
// virtual device.
func (b *Bridge) forward(ctx context.Context, c bridgedPad, connected bool, target bridge.Target, out inputSink, feedback <-chan encoding.BinaryUnmarshaler, logger *slog.Logger) error {
	var last []byte
	send := func(p bridge.Pad) error {
		state := target.State(p)
		data, err := state.MarshalBinary()
		if err != nil {
			return err
		}
		if string(data) == string(last) {
			return nil
		}
		if err := out.WriteBinary(state); err != nil {
			return fmt.Errorf("send input: %w", err)
		}
		last = data
		return nil
	}

	warned := false
	onPoll := func([]psx.ButtonEvent) error {
		var rumbled bool
		feedback, rumbled = applyFeedback(c, target, feedback, logger)
		if rumbled && !b.Pad.Rumble && !warned {
			logger.Warn("Ignoring rumble feedback, enable it with --rumble")
			warned = true
		}
		return send(c)
	}
	lost := func() error { return send(bridge.Released) }
	return b.Pad.poll(ctx, c, connected, logger, onPoll, lost)
}

// applyFeedback drains pending feedback and applies the newest rumble
// levels. rest is nil once the channel is closed; rumbled reports whether
// any rumble message arrived.
func applyFeedback(c bridgedPad, target bridge.Target, feedback <-chan encoding.BinaryUnmarshaler, logger *slog.Logger) (rest <-chan encoding.BinaryUnmarshaler, rumbled bool) {
	for feedback != nil {
		select {
		case msg, ok := <-feedback:
			if !ok {
				return nil, rumbled
			}
			small, large, ok := target.Rumble(msg)
			if !ok {
				continue
			}
			_ = c.SetRumble(psx.MotorSmall, small)
			_ = c.SetRumble(psx.MotorLarge, large)
			rumbled = true
			logger.Debug("Rumble", "small", small, "large", large)
		default:
			return feedback, rumbled
		}
	}
	return nil, rumbled
}
