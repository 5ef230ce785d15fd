package apiclient

import (
	"bufio"
	"context"
	"encoding"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/Alia5/psxpad/apitypes"
)

var errStreamClosed = errors.New("stream closed")

// DeviceStream is the bidirectional connection to one device: input state
// goes to the server, feedback (rumble, LEDs) comes back.
type DeviceStream struct {
	conn  net.Conn
	BusID uint32
	DevID string

	mu         sync.Mutex
	closed     bool
	readCancel context.CancelFunc
}

// OpenStream connects to the stream channel of an existing device.
func (c *Client) OpenStream(ctx context.Context, busID uint32, devID string) (*DeviceStream, error) {
	if c.transport.mock != nil {
		return nil, fmt.Errorf("stream connections not supported with mock transport")
	}
	conn, err := c.transport.dial(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Write([]byte(fmt.Sprintf("bus/%d/%s\x00", busID, devID))); err != nil {
		conn.Close()
		return nil, fmt.Errorf("write stream path: %w", err)
	}
	return &DeviceStream{conn: conn, BusID: busID, DevID: devID}, nil
}

// AddDeviceAndConnect creates a device and opens its stream. The device is
// returned even when the stream could not be opened so the caller can
// remove it again.
func (c *Client) AddDeviceAndConnect(ctx context.Context, busID uint32, devType string, o *CreateOptions) (*DeviceStream, *apitypes.Device, error) {
	dev, err := c.DeviceAdd(ctx, busID, devType, o)
	if err != nil {
		return nil, nil, err
	}
	stream, err := c.OpenStream(ctx, busID, dev.DevId)
	if err != nil {
		return nil, dev, err
	}
	return stream, dev, nil
}

func (s *DeviceStream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// WriteBinary marshals v and sends it as one input report.
func (s *DeviceStream) WriteBinary(v encoding.BinaryMarshaler) error {
	if s.isClosed() {
		return errStreamClosed
	}
	data, err := v.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	_, err = s.conn.Write(data)
	return err
}

// StartReading decodes feedback messages in a background goroutine until
// ctx is cancelled, the stream is closed or decode fails. decode reads
// exactly one message. The error channel receives the reason reading
// stopped; both channels are closed afterwards.
func (s *DeviceStream) StartReading(ctx context.Context, chSize int, decode func(r *bufio.Reader) (encoding.BinaryUnmarshaler, error)) (<-chan encoding.BinaryUnmarshaler, <-chan error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readCancel != nil {
		panic("StartReading called twice on the same stream")
	}

	msgCh := make(chan encoding.BinaryUnmarshaler, chSize)
	errCh := make(chan error, 1)
	readCtx, cancel := context.WithCancel(ctx)
	s.readCancel = cancel

	go func() {
		defer close(msgCh)
		defer close(errCh)
		defer cancel()

		// Unblock the pending read when the context ends.
		stop := context.AfterFunc(readCtx, func() { _ = s.conn.SetReadDeadline(time.Now()) })
		defer stop()

		r := bufio.NewReader(s.conn)
		for {
			msg, err := decode(r)
			if err != nil {
				if readCtx.Err() != nil {
					err = readCtx.Err()
				} else if s.isClosed() {
					err = errStreamClosed
				}
				errCh <- err
				return
			}
			select {
			case msgCh <- msg:
			case <-readCtx.Done():
				errCh <- readCtx.Err()
				return
			}
		}
	}()
	return msgCh, errCh
}

// Close closes the connection and stops background reading.
func (s *DeviceStream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	cancel := s.readCancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return s.conn.Close()
}
