package gpio

import (
	"fmt"

	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

type periphBackend struct{}

func newPeriphBackend(Config) (backend, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("gpio: periph host init: %w", err)
	}
	return periphBackend{}, nil
}

func (periphBackend) output(name string) (line, error) {
	p, err := lookup(name)
	if err != nil {
		return nil, err
	}
	if err := p.Out(pgpio.High); err != nil {
		return nil, err
	}
	return periphLine{p}, nil
}

func (periphBackend) input(name string) (line, error) {
	p, err := lookup(name)
	if err != nil {
		return nil, err
	}
	if err := p.In(pgpio.PullUp, pgpio.NoEdge); err != nil {
		return nil, err
	}
	return periphLine{p}, nil
}

func lookup(name string) (pgpio.PinIO, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("no pin named %q", name)
	}
	return p, nil
}

type periphLine struct {
	p pgpio.PinIO
}

func (l periphLine) set(high bool) error { return l.p.Out(pgpio.Level(high)) }

func (l periphLine) get() (bool, error) { return l.p.Read() == pgpio.High, nil }

func (l periphLine) close() error { return l.p.Halt() }
