package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/lasercast/dac-go/pkg/dac"
	"github.com/lasercast/dac-go/pkg/log"
	"github.com/lasercast/dac-go/pkg/transport"
	"github.com/lasercast/dac-go/pkg/wire"
)

// Config configures a Stream.
type Config struct {
	// ProtocolLogger receives command, response, status and error events
	// (optional).
	ProtocolLogger log.Logger

	// Logger receives operational messages (default: slog.Default()).
	Logger *slog.Logger
}

// Stream is a command session with one DAC.
type Stream struct {
	conn   transport.FrameReadWriter
	dac    dac.Addressed
	connID string

	// Reused across batches; truncated, never shrunk.
	commands []QueuedCommand
	points   []dac.Point
	bytes    []byte
	resp     wire.Response

	batchOpen atomic.Bool

	// Set when a failed batch leaves responses unread.
	desync error

	logger         *slog.Logger
	protocolLogger log.Logger
}

// New binds a Stream to an established connection and an initial snapshot
// of the device behind it.
func New(conn transport.FrameReadWriter, device dac.Addressed, cfg Config) *Stream {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ProtocolLogger == nil {
		cfg.ProtocolLogger = log.NoopLogger{}
	}

	s := &Stream{
		conn:           conn,
		dac:            device,
		protocolLogger: cfg.ProtocolLogger,
	}
	if c, ok := conn.(interface{ ID() string }); ok {
		s.connID = c.ID()
	}
	s.logger = cfg.Logger.With("device", device.ID, "conn", s.connID)
	return s
}

// Dial connects to the DAC at address over TCP and loads its current status
// with a Ping. device carries the identifier and any snapshot already known
// (for example from a discovery broadcast); the Ping replaces the snapshot.
func Dial(ctx context.Context, address string, device dac.Addressed, cfg Config) (*Stream, error) {
	conn, err := transport.Dial(ctx, address, transport.DialConfig{
		ConnConfig: transport.ConnConfig{Logger: cfg.ProtocolLogger},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	s := New(conn, device, cfg)
	if err := s.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("initial ping: %w", err)
	}
	s.logger.Debug("Connected to DAC", "address", address, "status", s.dac.Status)
	return s, nil
}

// Dac returns a copy of the most recently validated snapshot.
func (s *Stream) Dac() dac.Addressed {
	return s.dac
}

// Err returns an error wrapping ErrDesynchronized once a failed batch has
// left responses in flight, and nil while the session is usable.
func (s *Stream) Err() error {
	if s.desync == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrDesynchronized, s.desync)
}

// QueueCommands opens a new batch. It fails with ErrBatchInProgress if a
// batch opened earlier has not been submitted or discarded, and with
// ErrDesynchronized after a batch failure that left responses unread.
func (s *Stream) QueueCommands() (*CommandQueue, error) {
	if err := s.Err(); err != nil {
		return nil, err
	}
	if !s.batchOpen.CompareAndSwap(false, true) {
		return nil, ErrBatchInProgress
	}
	s.commands = s.commands[:0]
	s.points = s.points[:0]
	return &CommandQueue{stream: s}, nil
}

// Ping submits a batch holding a single Ping, refreshing the snapshot.
func (s *Stream) Ping() error {
	q, err := s.QueueCommands()
	if err != nil {
		return err
	}
	return q.Ping().Submit()
}

// Close closes the underlying connection if it can be closed.
func (s *Stream) Close() error {
	if c, ok := s.conn.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// sendCommand encodes cmd into the byte buffer and writes it as one frame.
func (s *Stream) sendCommand(index int, cmd QueuedCommand) error {
	var err error
	s.bytes, err = wire.AppendCommand(s.bytes, cmd.wireCommand(s.points))
	if err != nil {
		return &CommunicationError{Kind: KindEncode, Expected: cmd.CommandCode(), Err: err}
	}
	if err := s.conn.WriteFrame(s.bytes); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrTransport, cmd.CommandCode(), err)
	}
	s.logCommand(index, cmd)
	return nil
}

// recvResponse reads one frame, validates it as the response to a command
// with code expected and, only if every check passes, replaces the snapshot.
func (s *Stream) recvResponse(index int, expected wire.CommandCode) error {
	buf, err := s.conn.ReadFrameInto(s.bytes)
	if buf != nil {
		s.bytes = buf
	}
	if err != nil {
		// A frame cut short or out of bounds was still a response attempt;
		// anything else is the connection failing underneath us.
		if errors.Is(err, transport.ErrFrameTruncated) ||
			errors.Is(err, transport.ErrMessageEmpty) ||
			errors.Is(err, transport.ErrMessageTooLarge) {
			return &CommunicationError{Kind: KindMalformed, Expected: expected, Err: err}
		}
		return fmt.Errorf("%w: read response to %s: %w", ErrTransport, expected, err)
	}

	if err := wire.DecodeResponse(buf, &s.resp); err != nil {
		return &CommunicationError{Kind: KindMalformed, Expected: expected, Err: err}
	}
	s.logResponse(index)

	if s.resp.Command != expected {
		return &CommunicationError{
			Kind:     KindCommandMismatch,
			Expected: expected,
			Got:      s.resp.Command,
			Ack:      s.resp.Ack,
		}
	}
	if !s.resp.Ack.IsSuccess() {
		return &CommunicationError{
			Kind:     KindRejected,
			Expected: expected,
			Got:      s.resp.Command,
			Ack:      s.resp.Ack,
		}
	}

	old := s.dac.Status
	s.dac = s.dac.WithDac(s.resp.Status.Dac())
	if s.dac.Status != old {
		s.logState(log.StateEntityDevice, old.String(), s.dac.Status.String(), expected.String())
	}
	return nil
}

func (s *Stream) logCommand(index int, cmd QueuedCommand) {
	ev := &log.CommandEvent{Code: cmd.CommandCode(), BatchIndex: index}
	switch c := cmd.(type) {
	case Data:
		ev.PointCount = c.Len()
	case Begin:
		ev.PointRate = c.PointRate
	case PointRate:
		ev.PointRate = c.Rate
	}
	s.emit(log.Event{
		Direction: log.DirectionOut,
		Layer:     log.LayerWire,
		Category:  log.CategoryMessage,
		Command:   ev,
	})
}

func (s *Stream) logResponse(index int) {
	s.emit(log.Event{
		Direction: log.DirectionIn,
		Layer:     log.LayerWire,
		Category:  log.CategoryMessage,
		Response: &log.ResponseEvent{
			Ack:        s.resp.Ack,
			Command:    s.resp.Command,
			BatchIndex: index,
			Status:     s.resp.Status,
		},
	})
}

func (s *Stream) logState(entity log.StateEntity, old, state, reason string) {
	s.emit(log.Event{
		Layer:    log.LayerSession,
		Category: log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   entity,
			OldState: old,
			NewState: state,
			Reason:   reason,
		},
	})
}

func (s *Stream) logError(index int, code wire.CommandCode, err error) {
	s.emit(log.Event{
		Layer:    log.LayerSession,
		Category: log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:      log.LayerSession,
			Message:    err.Error(),
			BatchIndex: index,
			Context:    code.String(),
		},
	})
}

func (s *Stream) emit(ev log.Event) {
	ev.Timestamp = time.Now()
	ev.ConnectionID = s.connID
	ev.DeviceID = s.dac.ID
	s.protocolLogger.Log(ev)
}
