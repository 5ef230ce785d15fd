package gpio

import (
	"fmt"
	"strconv"

	"github.com/warthog618/go-gpiocdev"
)

type cdevBackend struct {
	chip string
}

func newCdevBackend(cfg Config) (backend, error) {
	if cfg.Chip == "" {
		return nil, fmt.Errorf("gpio: gpiocdev backend needs a chip")
	}
	return &cdevBackend{chip: cfg.Chip}, nil
}

func (b *cdevBackend) output(name string) (line, error) {
	return b.request(name, gpiocdev.AsOutput(1))
}

func (b *cdevBackend) input(name string) (line, error) {
	return b.request(name, gpiocdev.AsInput, gpiocdev.WithPullUp)
}

func (b *cdevBackend) request(name string, opts ...gpiocdev.LineReqOption) (line, error) {
	offset, err := strconv.Atoi(name)
	if err != nil {
		return nil, fmt.Errorf("line offset %q is not a number", name)
	}
	opts = append(opts, gpiocdev.WithConsumer(consumer))
	l, err := gpiocdev.RequestLine(b.chip, offset, opts...)
	if err != nil {
		return nil, err
	}
	return cdevLine{l}, nil
}

type cdevLine struct {
	l *gpiocdev.Line
}

func (c cdevLine) set(high bool) error {
	v := 0
	if high {
		v = 1
	}
	return c.l.SetValue(v)
}

func (c cdevLine) get() (bool, error) {
	v, err := c.l.Value()
	return v == 1, err
}

func (c cdevLine) close() error { return c.l.Close() }
