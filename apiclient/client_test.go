package apiclient_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Alia5/psxpad/apiclient"
	"github.com/Alia5/psxpad/apitypes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClient constructs a client backed by an in-memory responder keyed by
// the unfilled path pattern. A non-nil err fails every request.
func testClient(responses map[string]string, err error) *apiclient.Client {
	return apiclient.WithTransport(apiclient.NewMockTransport(func(path string, _ any, _ map[string]string) (string, error) {
		if err != nil {
			return "", err
		}
		return responses[path], nil
	}))
}

func TestClient_Mock(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name      string
		responses map[string]string
		err       error
		call      func(c *apiclient.Client) (any, error)
		wantErr   string
		check     func(t *testing.T, got any)
	}{
		{
			name:      "bus create",
			responses: map[string]string{"bus/create": `{"busId":3}`},
			call:      func(c *apiclient.Client) (any, error) { return c.BusCreate(ctx, 0) },
			check: func(t *testing.T, got any) {
				assert.Equal(t, uint32(3), got.(*apitypes.BusCreateResponse).BusID)
			},
		},
		{
			name:      "problem response",
			responses: map[string]string{"bus/create": `{"status":409,"title":"Conflict","detail":"bus 1 already exists"}`},
			call:      func(c *apiclient.Client) (any, error) { return c.BusCreate(ctx, 1) },
			wantErr:   "409 Conflict: bus 1 already exists",
		},
		{
			name:      "device add",
			responses: map[string]string{"bus/{id}/add": `{"busId":1,"devId":"2","vid":"0x054c","pid":"0x05c4","type":"dualshock4"}`},
			call:      func(c *apiclient.Client) (any, error) { return c.DeviceAdd(ctx, 1, "dualshock4", nil) },
			check: func(t *testing.T, got any) {
				dev := got.(*apitypes.Device)
				assert.Equal(t, "2", dev.DevId)
				assert.Equal(t, "dualshock4", dev.Type)
			},
		},
		{
			name:      "devices list empty",
			responses: map[string]string{"bus/{id}/list": `{"devices":[]}`},
			call:      func(c *apiclient.Client) (any, error) { return c.DevicesList(ctx, 1) },
			check: func(t *testing.T, got any) {
				assert.Empty(t, got.(*apitypes.DevicesListResponse).Devices)
			},
		},
		{
			name:    "transport failure",
			err:     errors.New("dial fail"),
			call:    func(c *apiclient.Client) (any, error) { return c.BusList(ctx) },
			wantErr: "dial fail",
		},
		{
			name:    "blank response",
			call:    func(c *apiclient.Client) (any, error) { return c.BusList(ctx) },
			wantErr: "empty response",
		},
		{
			name:      "unknown field",
			responses: map[string]string{"bus/list": `{"buses":[1],"extra":true}`},
			call:      func(c *apiclient.Client) (any, error) { return c.BusList(ctx) },
			wantErr:   "decode:",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.call(testClient(tt.responses, tt.err))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, got)
			}
		})
	}
}

func TestClient_ProblemIsApiError(t *testing.T) {
	c := testClient(map[string]string{"bus/remove": `{"status":404,"title":"Not Found","detail":"bus 9"}`}, nil)
	_, err := c.BusRemove(context.Background(), 9)

	var apiErr *apitypes.ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
}

func TestClient_CancelledContext(t *testing.T) {
	c := apiclient.New("127.0.0.1:9")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.BusList(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_Wire(t *testing.T) {
	for _, password := range []string{"", "pad-secret"} {
		t.Run("password="+password, func(t *testing.T) {
			srv := newFakeServer(t, password)
			srv.responses["bus/create"] = `{"busId":1}`
			srv.responses["bus/1/add"] = `{"busId":1,"devId":"1","vid":"0x054c","pid":"0x05c4","type":"dualshock4"}`
			srv.responses["bus/1/remove"] = `{"busId":1,"devId":"1"}`
			c := apiclient.NewWithConfig(srv.addr(), &apiclient.Config{Password: password})
			ctx := context.Background()

			bus, err := c.BusCreate(ctx, 0)
			require.NoError(t, err)
			dev, err := c.DeviceAdd(ctx, bus.BusID, "dualshock4", nil)
			require.NoError(t, err)
			_, err = c.DeviceRemove(ctx, bus.BusID, dev.DevId)
			require.NoError(t, err)

			assert.Equal(t, []string{
				"bus/create",
				`bus/1/add {"type":"dualshock4"}`,
				"bus/1/remove 1",
			}, srv.seen())
		})
	}
}

func TestClient_WrongPassword(t *testing.T) {
	srv := newFakeServer(t, "right")
	c := apiclient.NewWithConfig(srv.addr(), &apiclient.Config{Password: "wrong"})

	_, err := c.BusList(context.Background())

	var apiErr *apitypes.ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
}
