package psx

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
)

// DefaultPollRetries is the number of poll attempts Update makes before it
// reports ErrDisconnected.
const DefaultPollRetries = 5

// Options configure a Controller. The zero value polls a digital pad with
// default timing.
type Options struct {
	EnableSticks bool
	EnableRumble bool
	// EnablePressure also enables the sticks; pads only report pressure in
	// analog mode.
	EnablePressure bool

	// Zero Timing fields take their DefaultTiming value. A timing that is
	// still invalid is replaced by DefaultTiming as a whole.
	Timing Timing
	// PollRetries defaults to DefaultPollRetries.
	PollRetries int

	Clock  Clock
	Logger *slog.Logger
	Trace  Tracer
}

// Status summarises the outcome of Initialize.
type Status int

const (
	// StatusNoDevice means nothing answered the probe.
	StatusNoDevice Status = iota
	// StatusDefaultMode means a pad answered but refused the configuration;
	// it is polled in whatever mode it defaults to.
	StatusDefaultMode
	// StatusConnected means the pad accepted all requested modes.
	StatusConnected
)

func (s Status) String() string {
	switch s {
	case StatusNoDevice:
		return "no device"
	case StatusDefaultMode:
		return "default mode"
	case StatusConnected:
		return "connected"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// ConnectionResult is returned by Initialize and Reinitialize.
type ConnectionResult struct {
	Status Status
	Mode   Mode
	Type   PadType
	// Err is ErrNoDevice or ErrConfigTimeout, wrapped with details.
	Err error
}

// Connected reports whether a pad answered, configured or not.
func (r ConnectionResult) Connected() bool { return r.Status != StatusNoDevice }

// Motor selects one of the two rumble motors.
type Motor int

const (
	MotorSmall Motor = iota
	MotorLarge
)

// Stick is the position of one analog stick, 0x80 being centred.
type Stick struct {
	X, Y uint8
}

// Controller is the driver for one pad. It owns its pins exclusively and is
// not safe for concurrent use.
type Controller struct {
	opts    Options
	timing  Timing
	retries int
	logger  *slog.Logger

	link *link
	cfg  *Configurator

	present    bool
	wantAnalog bool

	frame   Frame
	buttons uint16
	prev    uint16
	rumble  [2]byte
}

// Initialize creates a Controller for the pad on pins, probes it and
// switches it into the requested modes. The Controller is usable whatever
// the result; without a device Update reports ErrDisconnected until
// Reinitialize finds one.
func Initialize(pins Pins, opts Options) (*Controller, ConnectionResult) {
	c := New(pins, opts)
	return c, c.Reinitialize()
}

// New creates a Controller without touching the pad beyond driving the
// lines to their idle level. Call Reinitialize before Update.
func New(pins Pins, opts Options) *Controller {
	pins.Attention.High()
	pins.Clock.High()
	pins.Command.High()

	opts = withDefaults(opts)
	c := &Controller{opts: opts, timing: opts.Timing}
	shifter := NewShifter(pins, opts.Clock, &c.timing)
	c.init(shifter, pins.Attention)
	return c
}

func withDefaults(opts Options) Options {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	opts.Timing = opts.Timing.orDefault()
	if err := opts.Timing.Validate(); err != nil {
		opts.Logger.Warn("psx: invalid timing, using defaults", "error", err)
		opts.Timing = DefaultTiming()
	}
	if opts.PollRetries <= 0 {
		opts.PollRetries = DefaultPollRetries
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.EnablePressure {
		opts.EnableSticks = true
	}
	return opts
}

func (c *Controller) init(xfer Transferer, attention Pin) {
	c.retries = c.opts.PollRetries
	c.logger = c.opts.Logger
	tx := NewTransceiver(xfer, c.opts.Clock, &c.timing, c.opts.Trace)
	c.link = newLink(attention, tx, c.opts.Clock, &c.timing)
	c.cfg = newConfigurator(c.link, Features{
		Sticks:   c.opts.EnableSticks,
		Rumble:   c.opts.EnableRumble,
		Pressure: c.opts.EnablePressure,
	}, c.logger)
	c.buttons = AllReleased
	c.prev = AllReleased
}

// Reinitialize probes and configures the pad again, discarding any state
// from earlier polls.
func (c *Controller) Reinitialize() ConnectionResult {
	c.link.readDelay = c.timing.ReadDelay
	c.frame = nil
	c.buttons = AllReleased
	c.prev = AllReleased

	err := c.cfg.Run()
	res := ConnectionResult{Type: c.cfg.Type(), Err: err}
	switch {
	case errors.Is(err, ErrNoDevice):
		c.present = false
		res.Status = StatusNoDevice
		c.logger.Warn("psx: no controller found", "error", err)
		return res
	case err != nil:
		c.wantAnalog = false
		res.Status = StatusDefaultMode
		c.logger.Warn("psx: controller refused configuration, using its default mode", "error", err)
	default:
		c.wantAnalog = c.opts.EnableSticks
		res.Status = StatusConnected
	}
	c.present = true

	// The first poll only seeds the button masks.
	if _, err := c.Update(); err != nil {
		c.logger.Warn("psx: initial poll failed", "error", err)
	}
	res.Mode = c.Mode()
	c.logger.Info("psx: controller ready", "status", res.Status, "mode", res.Mode, "type", res.Type)
	return res
}

// Update polls the pad once and returns the buttons that changed since the
// previous successful poll. The slice is empty when nothing changed.
//
// Invalid replies are retried, each retry preceded by a reconfiguration
// pass. When the retry budget runs out Update returns ErrDisconnected and
// keeps the previous state.
func (c *Controller) Update() ([]ButtonEvent, error) {
	if !c.present {
		return nil, ErrDisconnected
	}
	f, err := c.read()
	if err != nil {
		return nil, err
	}
	mask, _ := f.Buttons()
	c.frame = f
	c.prev, c.buttons = c.buttons, mask
	return Diff(c.prev, c.buttons), nil
}

func (c *Controller) read() (Frame, error) {
	var fallback, last Frame
	for attempt := 1; attempt <= c.retries; attempt++ {
		f := c.link.exchange(c.pollCommand())
		last = f
		switch {
		case !f.Valid(), len(f) <= offButtonsHi:
		case f.IsConfig():
			c.logger.Debug("psx: controller still in config mode, sending exit")
			c.link.exchange(exitConfigCmd)
			continue
		case c.wantAnalog && !f.IsAnalog():
			fallback = f
		default:
			return f, nil
		}
		if attempt < c.retries {
			c.logger.Debug("psx: unexpected reply, reconfiguring", "attempt", attempt, "reply", f)
			c.cfg.resync()
		}
	}
	if fallback != nil {
		c.logger.Debug("psx: controller not in analog mode", "reply", fallback)
		return fallback, nil
	}
	return nil, fmt.Errorf("%w: %w (last reply %s)", ErrDisconnected, ErrInvalidReply, last)
}

func (c *Controller) pollCommand() []byte {
	if c.opts.EnableRumble {
		return pollRumbleCmd(c.rumble[MotorSmall], c.rumble[MotorLarge])
	}
	return pollCmd
}

// Buttons returns the active-low mask of the last successful poll.
func (c *Controller) Buttons() uint16 { return c.buttons }

// Button reports whether b is held.
func (c *Controller) Button(b Button) bool {
	return b < buttonCount && c.buttons&(1<<b) == 0
}

// AnalogButton returns how hard b is pressed (0 released, 255 fully
// pressed). ok is false when b has no sensor or the pad is not reporting
// pressure.
func (c *Controller) AnalogButton(b Button) (pressure uint8, ok bool) {
	if !b.HasPressure() || len(c.frame) < fullFrame || c.frame.Mode() != ModeAnalogPressure {
		return 0, false
	}
	return c.frame[pressureOffsets[b]], true
}

// AnalogLeft returns the left stick. ok is false in digital mode.
func (c *Controller) AnalogLeft() (Stick, bool) { return c.stick(offLeftX, offLeftY) }

// AnalogRight returns the right stick. ok is false in digital mode.
func (c *Controller) AnalogRight() (Stick, bool) { return c.stick(offRightX, offRightY) }

func (c *Controller) stick(x, y int) (Stick, bool) {
	if len(c.frame) < stickFrame {
		return Stick{}, false
	}
	return Stick{X: c.frame[x], Y: c.frame[y]}, true
}

// SetRumble sets a motor's intensity in [0, 1]. It takes effect with the
// next Update, since the motor levels travel inside the poll command.
func (c *Controller) SetRumble(m Motor, intensity float64) error {
	if m != MotorSmall && m != MotorLarge {
		return fmt.Errorf("psx: invalid motor %d", m)
	}
	if math.IsNaN(intensity) {
		intensity = 0
	}
	intensity = min(max(intensity, 0), 1)
	c.rumble[m] = byte(math.Round(intensity * 255))
	return nil
}

// Mode returns the reporting mode of the last successful poll.
func (c *Controller) Mode() Mode { return c.frame.Mode() }

// Type returns the controller type read during configuration.
func (c *Controller) Type() PadType { return c.cfg.Type() }

// Frame returns a copy of the last accepted frame.
func (c *Controller) Frame() Frame { return append(Frame(nil), c.frame...) }
