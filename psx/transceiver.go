package psx

import (
	"fmt"
	"time"
)

// Transferer exchanges a single byte with the pad. Shifter is the hardware
// implementation.
type Transferer interface {
	Transfer(out byte) byte
}

// Transceiver runs whole command/response transactions. The pad announces
// the length of its reply in the second header byte, so the frame length is
// only known once the header has been received.
type Transceiver struct {
	xfer   Transferer
	clock  Clock
	timing *Timing
	trace  Tracer
}

// NewTransceiver returns a Transceiver on top of xfer. trace may be nil.
func NewTransceiver(xfer Transferer, clock Clock, timing *Timing, trace Tracer) *Transceiver {
	if trace == nil {
		trace = nopTracer{}
	}
	return &Transceiver{xfer: xfer, clock: clock, timing: timing, trace: trace}
}

// Transact sends cmd and returns every byte received, padding the command
// with filler bytes until the pad's declared reply length is reached.
//
// A reply with an invalid header is returned as the bare 3 byte header;
// callers decide how to recover. A command shorter than the header is a
// programming error and panics.
func (t *Transceiver) Transact(cmd []byte) Frame {
	if len(cmd) < headerSize {
		panic(fmt.Sprintf("psx: command of %d bytes is shorter than the %d byte header", len(cmd), headerSize))
	}

	sent := make([]byte, 0, fullFrame)
	frame := make(Frame, 0, fullFrame)
	shift := func(b byte) {
		sent = append(sent, b)
		frame = append(frame, t.xfer.Transfer(b))
		t.clock.Sleep(t.timing.ByteDelay)
	}

	for _, b := range cmd[:headerSize] {
		shift(b)
	}
	if frame.Valid() {
		for _, b := range cmd[headerSize:] {
			shift(b)
		}
		remaining := frame.ReplyLength() - len(cmd) + headerSize
		for i := 0; i < remaining; i++ {
			shift(filler)
		}
	}

	t.trace.Log(true, sent)
	t.trace.Log(false, frame)
	return frame
}

// link is one pad's bus session: the attention line around each transaction
// and the inter-command delay shared by polling and configuration.
type link struct {
	attention Pin
	tx        *Transceiver
	clock     Clock
	timing    *Timing
	readDelay time.Duration
}

func newLink(attention Pin, tx *Transceiver, clock Clock, timing *Timing) *link {
	return &link{
		attention: attention,
		tx:        tx,
		clock:     clock,
		timing:    timing,
		readDelay: timing.ReadDelay,
	}
}

// exchange selects the pad, runs one transaction and releases it again.
func (l *link) exchange(cmd []byte) Frame {
	l.attention.Low()
	l.clock.Sleep(l.timing.ByteDelay)
	f := l.tx.Transact(cmd)
	l.attention.High()
	l.clock.Sleep(l.readDelay)
	return f
}

// slowDown lengthens the inter-command delay for pads that need more time
// between transactions.
func (l *link) slowDown() {
	l.readDelay = min(l.readDelay+l.timing.ReadDelayStep, l.timing.MaxReadDelay)
}
