package psx

import (
	"io"
	"log/slog"
	"time"
)

// fakeClock advances only when the driver sleeps.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_000_000, 0)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
}

func (c *fakeClock) count(d time.Duration) int {
	n := 0
	for _, s := range c.sleeps {
		if s == d {
			n++
		}
	}
	return n
}

// fakePad emulates a DualShock 2 at the byte level. It acts as the
// attention line and as the Transferer, and applies commands once the
// attention line is released, like the real pad does.
type fakePad struct {
	id       byte
	config   bool
	padType  byte
	buttons  uint16
	sticks   [4]byte // RX, RY, LX, LY
	pressure [pressureSize]byte
	rumble   bool
	motors   [2]byte

	absent       bool // every byte reads 0xFF
	silent       bool // every byte reads 0x00
	glitches     int  // next n transactions read as absent
	mute         byte // command answered as if absent
	refuseConfig bool
	lateConfig   int // enter config commands ignored before one takes effect
	refuseAnalog bool

	selected  bool
	glitching bool
	header    byte
	rx        []byte
	commands  [][]byte
}

func newDualShock2() *fakePad {
	return &fakePad{
		id:      0x41,
		padType: byte(PadTypeDualShock2),
		buttons: AllReleased,
		sticks:  [4]byte{0x80, 0x80, 0x80, 0x80},
	}
}

func (p *fakePad) Low() {
	p.selected = true
	p.rx = nil
	p.glitching = p.glitches > 0
	if p.glitching {
		p.glitches--
	}
	p.header = p.id
	if p.config {
		p.header = 0xF3
	}
}

func (p *fakePad) High() {
	if !p.selected {
		return
	}
	p.selected = false
	p.commands = append(p.commands, p.rx)
	if p.absent || p.silent || p.glitching || p.muted() {
		return
	}
	p.apply(p.rx)
}

func (p *fakePad) muted() bool {
	return p.mute != 0 && len(p.rx) > 1 && p.rx[1] == p.mute
}

func (p *fakePad) Get() bool { return true }

func (p *fakePad) Transfer(out byte) byte {
	i := len(p.rx)
	p.rx = append(p.rx, out)
	switch {
	case !p.selected, p.absent, p.glitching, p.muted():
		return 0xFF
	case p.silent:
		return 0x00
	}
	switch i {
	case 0:
		return 0xFF
	case 1:
		return p.header
	case 2:
		return headerTrailer
	}
	if payload := p.payload(); i-headerSize < len(payload) {
		return payload[i-headerSize]
	}
	return 0x00
}

func (p *fakePad) payload() []byte {
	cmd := p.rx[1]
	if p.header == 0xF3 {
		switch cmd {
		case cmdReadType:
			return []byte{p.padType, 0x02, 0x01, 0x02, 0x01, 0x00}
		case cmdPoll:
			return p.report()[:6]
		}
		return make([]byte, 6)
	}
	if cmd == cmdPoll || cmd == cmdConfig {
		return p.report()
	}
	return nil
}

func (p *fakePad) report() []byte {
	r := []byte{byte(p.buttons), byte(p.buttons >> 8)}
	r = append(r, p.sticks[:]...)
	return append(r, p.pressure[:]...)
}

func (p *fakePad) apply(rx []byte) {
	if len(rx) < 4 {
		return
	}
	switch rx[1] {
	case cmdPoll:
		if p.rumble && len(rx) >= 5 {
			p.motors = [2]byte{rx[3], rx[4]}
		}
	case cmdConfig:
		switch {
		case rx[3] == 0x01 && !p.refuseConfig:
			if p.lateConfig > 0 {
				p.lateConfig--
				return
			}
			p.config = true
		case rx[3] == 0x00:
			p.config = false
		}
	case cmdSetMode:
		if !p.config || p.refuseAnalog {
			return
		}
		if rx[3] == modeAnalog {
			p.id = 0x73
		} else {
			p.id = 0x41
		}
	case cmdRumble:
		if p.config {
			p.rumble = true
		}
	case cmdPressure:
		if p.config && p.id&0xF0 == 0x70 {
			p.id = 0x79
		}
	}
}

// sent counts completed transactions that started with cmd.
func (p *fakePad) sent(cmd []byte) int {
	n := 0
	for _, c := range p.commands {
		if len(c) >= len(cmd) && string(c[:len(cmd)]) == string(cmd) {
			n++
		}
	}
	return n
}

type recordingTracer struct {
	in, out [][]byte
}

func (r *recordingTracer) Log(in bool, data []byte) {
	if in {
		r.in = append(r.in, append([]byte(nil), data...))
		return
	}
	r.out = append(r.out, append([]byte(nil), data...))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestController wires a Controller straight to the byte level fake.
func newTestController(pad *fakePad, opts Options) (*Controller, *fakeClock) {
	clk := newFakeClock()
	opts.Clock = clk
	opts.Logger = discardLogger()
	opts = withDefaults(opts)
	c := &Controller{opts: opts, timing: opts.Timing}
	c.init(pad, pad)
	return c, clk
}

func newTestLink(pad *fakePad) (*link, *fakeClock) {
	clk := newFakeClock()
	timing := DefaultTiming()
	tx := NewTransceiver(pad, clk, &timing, nil)
	return newLink(pad, tx, clk, &timing), clk
}
