package apiclient_test

import (
	"bufio"
	"bytes"
	"crypto/hmac"
	"io"
	"net"
	"strings"
	"sync"
	"testing"

	"github.com/Alia5/psxpad/internal/auth"

	"github.com/stretchr/testify/require"
)

// fakeServer speaks the server side of the management protocol. Requests
// are answered from responses, keyed by the path without payload; paths
// with a stream handler keep the connection open for it.
type fakeServer struct {
	t         *testing.T
	ln        net.Listener
	password  string
	responses map[string]string
	streams   map[string]func(conn net.Conn, r *bufio.Reader)

	mu       sync.Mutex
	requests []string
}

func newFakeServer(t *testing.T, password string) *fakeServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := &fakeServer{
		t:         t,
		ln:        ln,
		password:  password,
		responses: map[string]string{},
		streams:   map[string]func(net.Conn, *bufio.Reader){},
	}
	t.Cleanup(func() { _ = ln.Close() })
	go s.serve()
	return s
}

func (s *fakeServer) addr() string { return s.ln.Addr().String() }

func (s *fakeServer) seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *fakeServer) serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

func (s *fakeServer) handle(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	if s.password != "" {
		c, ok := s.authenticate(conn, r)
		if !ok {
			return
		}
		conn = c
		r = bufio.NewReader(conn)
	}

	req, err := r.ReadString('\x00')
	if err != nil {
		return
	}
	req = strings.TrimSuffix(req, "\x00")
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	path, _, _ := strings.Cut(req, " ")
	if fn, ok := s.streams[path]; ok {
		fn(conn, r)
		return
	}
	_, _ = conn.Write([]byte(s.responses[path] + "\n"))
}

func (s *fakeServer) authenticate(conn net.Conn, r *bufio.Reader) (net.Conn, bool) {
	key, err := auth.DeriveKey(s.password)
	require.NoError(s.t, err)

	hdr := make([]byte, len(auth.HandshakeMagic)+auth.NonceSize+32)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, false
	}
	clientNonce := hdr[len(auth.HandshakeMagic) : len(auth.HandshakeMagic)+auth.NonceSize]
	if !hmac.Equal(hdr[len(auth.HandshakeMagic)+auth.NonceSize:], auth.ClientProof(key, clientNonce)) {
		return nil, false
	}
	serverNonce := bytes.Repeat([]byte{0x42}, auth.NonceSize)
	if _, err := conn.Write(append([]byte("OK\x00"), serverNonce...)); err != nil {
		return nil, false
	}
	wrapped, err := auth.WrapConn(conn, auth.DeriveSessionKey(key, serverNonce, clientNonce))
	require.NoError(s.t, err)
	return wrapped, true
}
