package apiclient_test

import (
	"bufio"
	"context"
	"encoding"
	"io"
	"net"
	"testing"
	"time"

	"github.com/Alia5/psxpad/apiclient"
	"github.com/Alia5/psxpad/device/dualshock4"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeFeedback(r *bufio.Reader) (encoding.BinaryUnmarshaler, error) {
	return dualshock4.ReadOutputState(r)
}

func TestOpenStream_NotSupportedWithMockTransport(t *testing.T) {
	c := testClient(map[string]string{}, nil)
	_, err := c.OpenStream(context.Background(), 1, "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported with mock transport")
}

func TestAddDeviceAndConnect_ReturnsDeviceOnStreamError(t *testing.T) {
	c := testClient(map[string]string{
		"bus/{id}/add": `{"busId":42,"devId":"7","vid":"0x054c","pid":"0x05c4","type":"dualshock4"}`,
	}, nil)

	stream, dev, err := c.AddDeviceAndConnect(context.Background(), 42, dualshock4.DeviceType, nil)

	require.Error(t, err)
	assert.Nil(t, stream)
	require.NotNil(t, dev)
	assert.Equal(t, "7", dev.DevId)
}

func TestDeviceStream_RoundTrip(t *testing.T) {
	for _, password := range []string{"", "pad-secret"} {
		t.Run("password="+password, func(t *testing.T) {
			srv := newFakeServer(t, password)
			srv.responses["bus/1/add"] = `{"busId":1,"devId":"1","vid":"0x054c","pid":"0x05c4","type":"dualshock4"}`
			got := make(chan []byte, 1)
			srv.streams["bus/1/1"] = func(conn net.Conn, r *bufio.Reader) {
				buf := make([]byte, dualshock4.InputStateSize)
				if _, err := io.ReadFull(r, buf); err != nil {
					return
				}
				got <- buf
				_, _ = conn.Write([]byte{0x80, 0xFF, 0, 0, 0, 0, 0})
				// Hold the stream open until the client goes away.
				_, _ = r.ReadByte()
			}
			c := apiclient.NewWithConfig(srv.addr(), &apiclient.Config{Password: password})
			ctx := context.Background()

			stream, dev, err := c.AddDeviceAndConnect(ctx, 1, dualshock4.DeviceType, nil)
			require.NoError(t, err)
			assert.Equal(t, "1", dev.DevId)

			state := dualshock4.Neutral()
			state.Buttons = dualshock4.ButtonCross
			require.NoError(t, stream.WriteBinary(&state))

			select {
			case b := <-got:
				want, _ := state.MarshalBinary()
				assert.Equal(t, want, b)
			case <-time.After(2 * time.Second):
				t.Fatal("server never received the input report")
			}

			msgs, errs := stream.StartReading(ctx, 1, decodeFeedback)
			select {
			case msg := <-msgs:
				out := msg.(*dualshock4.OutputState)
				assert.Equal(t, uint8(0x80), out.RumbleSmall)
				assert.Equal(t, uint8(0xFF), out.RumbleLarge)
			case <-time.After(2 * time.Second):
				t.Fatal("no feedback received")
			}

			require.NoError(t, stream.Close())
			select {
			case <-errs:
			case <-time.After(2 * time.Second):
				t.Fatal("reader did not stop after Close")
			}
			assert.Error(t, stream.WriteBinary(&state))
			assert.NoError(t, stream.Close(), "second Close is a no-op")
			assert.Contains(t, srv.seen(), "bus/1/1")
		})
	}
}

func TestDeviceStream_StopsOnCancel(t *testing.T) {
	srv := newFakeServer(t, "")
	srv.streams["bus/2/5"] = func(conn net.Conn, r *bufio.Reader) {
		_, _ = r.ReadByte()
	}
	c := apiclient.New(srv.addr())
	stream, err := c.OpenStream(context.Background(), 2, "5")
	require.NoError(t, err)
	defer stream.Close()

	ctx, cancel := context.WithCancel(context.Background())
	_, errs := stream.StartReading(ctx, 1, decodeFeedback)
	cancel()

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("reader did not stop after cancel")
	}
}
