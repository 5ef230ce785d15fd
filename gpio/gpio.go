// Package gpio opens the four controller bus lines on real hardware.
//
// Two backends are available: "gpiocdev" talks to the Linux GPIO character
// device and addresses lines by chip and offset, "periph" goes through the
// periph.io host drivers and addresses pins by name (for example "GPIO11").
package gpio

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Alia5/psxpad/psx"
)

const consumer = "psxpad"

// Config selects the backend and names the lines.
type Config struct {
	Backend   string `help:"GPIO backend: gpiocdev or periph" default:"gpiocdev" enum:"gpiocdev,periph" env:"PSXPAD_GPIO_BACKEND"`
	Chip      string `help:"GPIO chip used by the gpiocdev backend" default:"gpiochip0" env:"PSXPAD_GPIO_CHIP"`
	Clock     string `help:"Clock line (offset for gpiocdev, pin name for periph)" default:"11" env:"PSXPAD_GPIO_CLOCK"`
	Command   string `help:"Command line" default:"10" env:"PSXPAD_GPIO_COMMAND"`
	Attention string `help:"Attention line" default:"8" env:"PSXPAD_GPIO_ATTENTION"`
	Data      string `help:"Data line, must have a pull-up" default:"9" env:"PSXPAD_GPIO_DATA"`
}

// line is one requested GPIO line of a backend.
type line interface {
	set(high bool) error
	get() (bool, error)
	close() error
}

// backend requests lines. Outputs start high, inputs get a pull-up.
type backend interface {
	output(name string) (line, error)
	input(name string) (line, error)
}

var backends = map[string]func(Config) (backend, error){
	"gpiocdev": newCdevBackend,
	"periph":   newPeriphBackend,
}

// Lines are the opened bus lines.
type Lines struct {
	clock, command, attention, data *pin
}

// Open requests the lines named in cfg. Clock, command and attention are
// driven high before Open returns.
func Open(cfg Config, logger *slog.Logger) (*Lines, error) {
	if logger == nil {
		logger = slog.Default()
	}
	name := cfg.Backend
	if name == "" {
		name = "gpiocdev"
	}
	newBackend, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("gpio: unknown backend %q", cfg.Backend)
	}
	b, err := newBackend(cfg)
	if err != nil {
		return nil, err
	}

	l := &Lines{}
	defer func() {
		if err != nil {
			l.Close()
		}
	}()
	request := func(dst **pin, role, lineName string, req func(string) (line, error)) {
		if err != nil {
			return
		}
		var ln line
		ln, err = req(lineName)
		if err != nil {
			err = fmt.Errorf("gpio: request %s line %q: %w", role, lineName, err)
			return
		}
		*dst = &pin{name: role, line: ln, logger: logger}
	}
	request(&l.clock, "clock", cfg.Clock, b.output)
	request(&l.command, "command", cfg.Command, b.output)
	request(&l.attention, "attention", cfg.Attention, b.output)
	request(&l.data, "data", cfg.Data, b.input)
	if err != nil {
		return nil, err
	}
	logger.Debug("gpio: lines requested", "backend", name,
		"clock", cfg.Clock, "command", cfg.Command, "attention", cfg.Attention, "data", cfg.Data)
	return l, nil
}

// Pins returns the lines in the form the psx driver expects.
func (l *Lines) Pins() psx.Pins {
	return psx.Pins{Clock: l.clock, Command: l.command, Attention: l.attention, Data: l.data}
}

// Close releases every line that was requested.
func (l *Lines) Close() error {
	var errs []error
	for _, p := range []*pin{l.clock, l.command, l.attention, l.data} {
		if p == nil {
			continue
		}
		if err := p.line.close(); err != nil {
			errs = append(errs, fmt.Errorf("gpio: release %s: %w", p.name, err))
		}
	}
	return errors.Join(errs...)
}

// pin adapts a backend line to psx.Pin. The bus has no way to report I/O
// errors, so they are logged and a failed read returns the idle level.
type pin struct {
	name   string
	line   line
	logger *slog.Logger
}

func (p *pin) High() { p.set(true) }

func (p *pin) Low() { p.set(false) }

func (p *pin) set(high bool) {
	if err := p.line.set(high); err != nil {
		p.logger.Debug("gpio: write failed", "line", p.name, "error", err)
	}
}

func (p *pin) Get() bool {
	v, err := p.line.get()
	if err != nil {
		p.logger.Debug("gpio: read failed", "line", p.name, "error", err)
		return true
	}
	return v
}
