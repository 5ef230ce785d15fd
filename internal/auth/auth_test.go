package auth_test

import (
	"bufio"
	"bytes"
	"crypto/hmac"
	"io"
	"net"
	"testing"

	"github.com/Alia5/psxpad/apitypes"
	"github.com/Alia5/psxpad/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serveHandshake plays the server side: it checks the client proof and
// answers with reply, or with OK and a fixed nonce when reply is nil.
func serveHandshake(t *testing.T, conn net.Conn, key []byte, reply []byte) <-chan []byte {
	t.Helper()
	done := make(chan []byte, 1)
	go func() {
		defer close(done)
		hdr := make([]byte, len(auth.HandshakeMagic)+auth.NonceSize+32)
		if _, err := io.ReadFull(conn, hdr); err != nil {
			return
		}
		clientNonce := hdr[len(auth.HandshakeMagic) : len(auth.HandshakeMagic)+auth.NonceSize]
		proof := hdr[len(auth.HandshakeMagic)+auth.NonceSize:]
		if !hmac.Equal(proof, auth.ClientProof(key, clientNonce)) {
			_ = conn.Close()
			return
		}
		if reply != nil {
			_, _ = conn.Write(reply)
			_ = conn.Close()
			return
		}
		serverNonce := bytes.Repeat([]byte{0xAB}, auth.NonceSize)
		_, _ = conn.Write(append([]byte("OK\x00"), serverNonce...))
		done <- auth.DeriveSessionKey(key, serverNonce, clientNonce)
	}()
	return done
}

func TestDeriveKey(t *testing.T) {
	k1, err := auth.DeriveKey("hunter2")
	require.NoError(t, err)
	k2, err := auth.DeriveKey("hunter2")
	require.NoError(t, err)
	k3, err := auth.DeriveKey("hunter3")
	require.NoError(t, err)

	assert.Len(t, k1, 32)
	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)

	_, err = auth.DeriveKey("")
	assert.Error(t, err)
}

func TestHandshake_EncryptedRoundTrip(t *testing.T) {
	key, err := auth.DeriveKey("secret")
	require.NoError(t, err)
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	sessionCh := serveHandshake(t, server, key, nil)
	clientNonce, serverNonce, err := auth.Handshake(bufio.NewReader(client), client, key)
	require.NoError(t, err)
	serverSession := <-sessionCh
	require.NotNil(t, serverSession)

	clientSession := auth.DeriveSessionKey(key, serverNonce, clientNonce)
	assert.Equal(t, serverSession, clientSession)

	cc, err := auth.WrapConn(client, clientSession)
	require.NoError(t, err)
	sc, err := auth.WrapConn(server, serverSession)
	require.NoError(t, err)

	go func() { _, _ = cc.Write([]byte("bus/list")) }()
	buf := make([]byte, 64)
	n, err := sc.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "bus/list", string(buf[:n]))
}

func TestHandshake_WrongPassword(t *testing.T) {
	good, err := auth.DeriveKey("right")
	require.NoError(t, err)
	bad, err := auth.DeriveKey("wrong")
	require.NoError(t, err)
	client, server := net.Pipe()
	defer client.Close()

	serveHandshake(t, server, good, nil)
	_, _, err = auth.Handshake(bufio.NewReader(client), client, bad)

	var apiErr *apitypes.ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
}

func TestHandshake_ProblemResponse(t *testing.T) {
	key, err := auth.DeriveKey("secret")
	require.NoError(t, err)
	client, server := net.Pipe()
	defer client.Close()

	serveHandshake(t, server, key, []byte(`{"status":403,"title":"Forbidden","detail":"remote clients disabled"}`+"\n"))
	_, _, err = auth.Handshake(bufio.NewReader(client), client, key)

	var apiErr *apitypes.ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "remote clients disabled", apiErr.Detail)
}

func TestWrapConn_DifferentKeys(t *testing.T) {
	k1, _ := auth.DeriveKey("one")
	k2, _ := auth.DeriveKey("two")
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	cc, err := auth.WrapConn(client, k1)
	require.NoError(t, err)
	sc, err := auth.WrapConn(server, k2)
	require.NoError(t, err)

	go func() { _, _ = cc.Write([]byte("x")) }()
	_, err = sc.Read(make([]byte, 8))
	assert.ErrorContains(t, err, "message authentication failed")

	_, err = auth.WrapConn(client, []byte{1, 2, 3})
	assert.Error(t, err)
}
