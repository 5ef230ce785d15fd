package psx

import "errors"

var (
	// ErrNoDevice means the probe never saw a recognised mode byte.
	ErrNoDevice = errors.New("psx: no controller found")
	// ErrDisconnected is returned by Update when no usable frame could be
	// read within the retry budget.
	ErrDisconnected = errors.New("psx: controller disconnected")
	// ErrInvalidReply marks a frame with a 0xFF mode byte or a bad trailer.
	ErrInvalidReply = errors.New("psx: invalid reply")
	// ErrConfigTimeout means a configuration step ran out of time.
	ErrConfigTimeout = errors.New("psx: configuration timed out")
)
