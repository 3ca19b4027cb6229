package transport

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lasercast/dac-go/pkg/log"
)

type syncLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (s *syncLogger) Log(e log.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *syncLogger) states() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, e := range s.events {
		if e.StateChange != nil {
			out = append(out, e.StateChange.NewState)
		}
	}
	return out
}

func TestConnExchangesFrames(t *testing.T) {
	a, b := net.Pipe()
	logger := &syncLogger{}

	left := NewConn(a, ConnConfig{Logger: logger, RemoteAddr: "pipe"})
	right := NewConn(b, ConnConfig{})
	defer left.Close()
	defer right.Close()

	assert.NotEqual(t, left.ID(), right.ID())
	assert.Equal(t, "pipe", left.RemoteAddr())
	assert.Equal(t, StateConnected, left.State())

	errCh := make(chan error, 1)
	go func() { errCh <- left.WriteFrame([]byte("ping")) }()

	got, err := right.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, "ping", string(got))
	require.NoError(t, <-errCh)
}

func TestConnClose(t *testing.T) {
	a, b := net.Pipe()
	defer b.Close()
	logger := &syncLogger{}

	conn := NewConn(a, ConnConfig{Logger: logger})
	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close())

	assert.Equal(t, StateClosed, conn.State())
	assert.True(t, errors.Is(conn.WriteFrame([]byte("x")), ErrConnectionClosed))
	_, err := conn.ReadFrameInto(nil)
	assert.True(t, errors.Is(err, ErrConnectionClosed))

	assert.Equal(t, []string{"CONNECTED", "CLOSED"}, logger.states())
}

func TestServerAcceptsAndDial(t *testing.T) {
	logger := &syncLogger{}
	srv, err := NewServer(ServerConfig{
		Address: "127.0.0.1:0",
		Logger:  logger,
		Handler: func(ctx context.Context, conn *Conn) {
			for {
				data, err := conn.ReadFrame()
				if err != nil {
					return
				}
				if err := conn.WriteFrame(append([]byte("echo:"), data...)); err != nil {
					return
				}
			}
		},
	})
	require.NoError(t, err)
	require.NoError(t, srv.Start(context.Background()))
	defer srv.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conn, err := Dial(ctx, srv.Addr().String(), DialConfig{})
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteFrame([]byte("hi")))
	got, err := conn.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, "echo:hi", string(got))

	assert.Eventually(t, func() bool { return srv.ConnectionCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, srv.Stop())
	assert.Equal(t, 0, srv.ConnectionCount())
}

func TestNewServerRequiresHandler(t *testing.T) {
	_, err := NewServer(ServerConfig{})
	assert.Error(t, err)
}

func TestDialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	_, err = Dial(context.Background(), addr, DialConfig{ConnectTimeout: 500 * time.Millisecond})
	assert.Error(t, err)
}
