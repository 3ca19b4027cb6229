package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/lasercast/dac-go/pkg/log"
)

// DefaultPort is the TCP port Ether Dream DACs listen on.
const DefaultPort = 7765

// Connection states.
type ConnectionState int32

const (
	// StateConnected indicates an open connection.
	StateConnected ConnectionState = iota

	// StateClosed indicates the connection was closed.
	StateClosed
)

// String returns the connection state name.
func (s ConnectionState) String() string {
	switch s {
	case StateConnected:
		return "CONNECTED"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// ErrConnectionClosed is returned by frame I/O on a closed Conn.
var ErrConnectionClosed = errors.New("connection closed")

// ConnConfig configures a Conn.
type ConnConfig struct {
	// MaxMessageSize is the maximum frame payload size (default: 64KB).
	MaxMessageSize uint32

	// Logger receives frame and connection state events (optional).
	Logger log.Logger

	// RemoteAddr labels the peer in log events. Filled in by Dial, OpenSerial
	// and Server.
	RemoteAddr string
}

// Conn is a framed connection to a DAC (or, on the server side, to a host).
type Conn struct {
	rwc        io.ReadWriteCloser
	framer     *Framer
	id         string
	remoteAddr string
	logger     log.Logger

	state     atomic.Int32
	closeOnce sync.Once
	closeErr  error
}

// NewConn wraps an established byte stream in a framed connection and
// assigns it a fresh connection ID.
func NewConn(rwc io.ReadWriteCloser, cfg ConnConfig) *Conn {
	if cfg.MaxMessageSize == 0 {
		cfg.MaxMessageSize = DefaultMaxMessageSize
	}

	c := &Conn{
		rwc:        rwc,
		framer:     NewFramerWithMaxSize(rwc, cfg.MaxMessageSize),
		id:         uuid.New().String(),
		remoteAddr: cfg.RemoteAddr,
		logger:     cfg.Logger,
	}
	if c.logger != nil {
		c.framer.SetLogger(c.logger, c.id)
	}
	c.logState("", StateConnected)
	return c
}

// ID returns the unique connection identifier.
func (c *Conn) ID() string {
	return c.id
}

// RemoteAddr returns the peer label (address or device path).
func (c *Conn) RemoteAddr() string {
	return c.remoteAddr
}

// State returns the current connection state.
func (c *Conn) State() ConnectionState {
	return ConnectionState(c.state.Load())
}

// WriteFrame writes data as one frame.
func (c *Conn) WriteFrame(data []byte) error {
	if c.State() == StateClosed {
		return ErrConnectionClosed
	}
	return c.framer.WriteFrame(data)
}

// ReadFrameInto reads the next frame into buf.
func (c *Conn) ReadFrameInto(buf []byte) ([]byte, error) {
	if c.State() == StateClosed {
		return buf[:0], ErrConnectionClosed
	}
	return c.framer.ReadFrameInto(buf)
}

// ReadFrame reads the next frame into a newly allocated slice.
func (c *Conn) ReadFrame() ([]byte, error) {
	return c.ReadFrameInto(nil)
}

// Close closes the underlying stream. It is safe to call more than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.state.Store(int32(StateClosed))
		c.closeErr = c.rwc.Close()
		c.logState(StateConnected.String(), StateClosed)
	})
	return c.closeErr
}

func (c *Conn) logState(old string, state ConnectionState) {
	if c.logger == nil {
		return
	}
	c.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.id,
		Layer:        log.LayerTransport,
		Category:     log.CategoryState,
		RemoteAddr:   c.remoteAddr,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityConnection,
			OldState: old,
			NewState: state.String(),
		},
	})
}

// DialConfig configures Dial.
type DialConfig struct {
	ConnConfig

	// ConnectTimeout bounds connection establishment (default: 5s).
	ConnectTimeout time.Duration
}

// Dial opens a TCP connection to a DAC. A missing port defaults to DefaultPort.
func Dial(ctx context.Context, address string, cfg DialConfig) (*Conn, error) {
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}
	if _, _, err := net.SplitHostPort(address); err != nil {
		address = net.JoinHostPort(address, fmt.Sprint(DefaultPort))
	}

	// Apply timeout from config if context doesn't have one
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	dialer := &net.Dialer{}
	nc, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	// Frames are small and latency matters more than throughput.
	if tc, ok := nc.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}

	cfg.RemoteAddr = nc.RemoteAddr().String()
	return NewConn(nc, cfg.ConnConfig), nil
}
