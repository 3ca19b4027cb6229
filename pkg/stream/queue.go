package stream

import (
	"errors"
	"slices"
	"strconv"

	"github.com/lasercast/dac-go/pkg/dac"
	"github.com/lasercast/dac-go/pkg/log"
	"github.com/lasercast/dac-go/pkg/wire"
)

// CommandQueue accumulates one batch of commands for its Stream.
//
// Push methods return the queue so calls can be chained. A queue is released
// by Submit or Discard; afterwards every method fails with ErrBatchClosed
// (push methods record it and report it through Err).
type CommandQueue struct {
	stream *Stream
	closed bool
	err    error
}

func (q *CommandQueue) push(cmd QueuedCommand) *CommandQueue {
	if q.closed {
		q.err = ErrBatchClosed
		return q
	}
	q.stream.commands = append(q.stream.commands, cmd)
	return q
}

// PrepareStream queues a prepare-stream command.
func (q *CommandQueue) PrepareStream() *CommandQueue {
	return q.push(PrepareStream{})
}

// Begin queues a begin-playback command.
func (q *CommandQueue) Begin(b wire.Begin) *CommandQueue {
	return q.push(Begin(b))
}

// PointRate queues a point-rate change.
func (q *CommandQueue) PointRate(r wire.PointRate) *CommandQueue {
	return q.push(PointRate(r))
}

// Stop queues a stop command.
func (q *CommandQueue) Stop() *CommandQueue {
	return q.push(Stop{})
}

// EmergencyStop queues an emergency stop.
func (q *CommandQueue) EmergencyStop() *CommandQueue {
	return q.push(EmergencyStop{})
}

// ClearEmergencyStop queues a clear-emergency-stop command.
func (q *CommandQueue) ClearEmergencyStop() *CommandQueue {
	return q.push(ClearEmergencyStop{})
}

// Ping queues a status request.
func (q *CommandQueue) Ping() *CommandQueue {
	return q.push(Ping{})
}

// Data queues points for transmission. The points are copied into the
// session's point buffer.
//
// The total number of points queued in the batch may not exceed the free
// buffer space reported by the current snapshot. If it would, Data returns a
// *CapacityError and the batch is left exactly as it was.
func (q *CommandQueue) Data(points []dac.Point) error {
	if q.closed {
		return ErrBatchClosed
	}
	s := q.stream
	available := s.dac.RemainingCapacity()
	if len(points) > available-len(s.points) {
		return &CapacityError{
			Requested: len(points),
			Queued:    len(s.points),
			Available: available,
		}
	}

	start := len(s.points)
	s.points = append(s.points, points...)
	s.commands = append(s.commands, Data{Start: start, End: len(s.points)})
	return nil
}

// Submit sends the batch and validates one response per command.
//
// All commands are written first, then all responses are read in the same
// order. The first failure stops the batch and is returned as a *BatchError;
// a write failure means no responses are read at all. Each validated
// response updates the Stream's snapshot, so after a failure the snapshot
// reflects the last command that succeeded.
//
// Submit releases the queue whether or not it succeeds. A failure that
// leaves responses unread also marks the Stream desynchronized; see
// Stream.Err.
func (q *CommandQueue) Submit() error {
	if q.closed {
		return ErrBatchClosed
	}
	defer q.release("SUBMITTED")

	s := q.stream
	for i, cmd := range s.commands {
		if err := s.sendCommand(i, cmd); err != nil {
			return q.fail(i, cmd.CommandCode(), err, sendLeavesInFlight(i, err))
		}
	}
	last := len(s.commands) - 1
	for i, cmd := range s.commands {
		if err := s.recvResponse(i, cmd.CommandCode()); err != nil {
			return q.fail(i, cmd.CommandCode(), err, i < last || !responseConsumed(err))
		}
	}
	return nil
}

// sendLeavesInFlight reports whether a write failure at index i may have
// put bytes on the wire that no response will be read for. Only an encode
// failure on the first command sends nothing.
func sendLeavesInFlight(i int, err error) bool {
	var commErr *CommunicationError
	return i > 0 || !errors.As(err, &commErr) || commErr.Kind != KindEncode
}

// responseConsumed reports whether the failed response frame was read in
// full, leaving the connection aligned on the next frame. A mismatched
// command code means the pairing was already off.
func responseConsumed(err error) bool {
	var commErr *CommunicationError
	if !errors.As(err, &commErr) {
		return false
	}
	switch commErr.Kind {
	case KindRejected:
		return true
	case KindMalformed:
		return errors.Is(err, wire.ErrMalformedResponse)
	default:
		return false
	}
}

// Discard releases the queue without sending anything. It is safe to call
// after Submit, which makes `defer q.Discard()` a valid pattern.
func (q *CommandQueue) Discard() {
	if q.closed {
		return
	}
	q.release("DISCARDED")
}

// Err reports ErrBatchClosed if a command was pushed after release.
func (q *CommandQueue) Err() error {
	return q.err
}

// Len returns the number of queued commands.
func (q *CommandQueue) Len() int {
	if q.closed {
		return 0
	}
	return len(q.stream.commands)
}

// QueuedPoints returns the number of points queued across all Data commands.
func (q *CommandQueue) QueuedPoints() int {
	if q.closed {
		return 0
	}
	return len(q.stream.points)
}

// Commands returns a copy of the queued commands in push order.
func (q *CommandQueue) Commands() []QueuedCommand {
	if q.closed {
		return nil
	}
	return slices.Clone(q.stream.commands)
}

// Points returns the points carried by a queued Data command, or nil if d
// does not lie within the batch's point buffer.
// The slice aliases the session buffer and is valid until the queue is
// released.
func (q *CommandQueue) Points(d Data) []dac.Point {
	if q.closed || d.Start < 0 || d.Start > d.End || d.End > len(q.stream.points) {
		return nil
	}
	return q.stream.points[d.Start:d.End]
}

func (q *CommandQueue) fail(index int, code wire.CommandCode, err error, desync bool) error {
	s := q.stream
	s.logError(index, code, err)
	s.logger.Warn("Command batch failed",
		"index", index,
		"command", code.String(),
		"commands", len(s.commands),
		"desynchronized", desync,
		"error", err)
	batchErr := &BatchError{Index: index, Command: code, Err: err}
	if desync {
		s.desync = batchErr
		s.logState(log.StateEntitySession, "SYNCHRONIZED", "DESYNCHRONIZED", batchErr.Error())
	}
	return batchErr
}

func (q *CommandQueue) release(state string) {
	q.closed = true
	s := q.stream
	s.logState(log.StateEntityBatch, "OPEN", state, strconv.Itoa(len(s.commands))+" commands")
	s.batchOpen.Store(false)
}
