package stream

import (
	"errors"
	"fmt"

	"github.com/lasercast/dac-go/pkg/wire"
)

// Session errors.
var (
	// ErrTransport indicates a read or write on the connection failed.
	// Always fatal to the batch; the session should be re-established.
	ErrTransport = errors.New("transport error")

	// ErrCommunication indicates a response arrived but failed validation.
	// Command/response alignment can no longer be trusted.
	ErrCommunication = errors.New("communication error")

	// ErrCapacity indicates queued points would exceed the DAC's free buffer.
	ErrCapacity = errors.New("point buffer capacity exceeded")

	// ErrBatchInProgress indicates a CommandQueue is already open on the Stream.
	ErrBatchInProgress = errors.New("command batch already in progress")

	// ErrBatchClosed indicates use of a CommandQueue after Submit or Discard.
	ErrBatchClosed = errors.New("command batch already closed")

	// ErrDesynchronized indicates an earlier batch failed with responses
	// still unread. The Stream cannot pair responses with commands any more
	// and must be replaced by a new connection.
	ErrDesynchronized = errors.New("session out of sync with DAC")
)

// CommunicationKind classifies a CommunicationError.
type CommunicationKind uint8

const (
	// KindCommandMismatch: the response echoed a different command code.
	KindCommandMismatch CommunicationKind = iota + 1

	// KindMalformed: the response frame or payload could not be decoded.
	KindMalformed

	// KindRejected: the DAC answered the right command with a NAK.
	KindRejected

	// KindEncode: the command could not be encoded.
	KindEncode
)

// String returns the kind name.
func (k CommunicationKind) String() string {
	switch k {
	case KindCommandMismatch:
		return "command mismatch"
	case KindMalformed:
		return "malformed response"
	case KindRejected:
		return "rejected"
	case KindEncode:
		return "encode failure"
	default:
		return "unknown"
	}
}

// CommunicationError reports a response that failed validation.
// errors.Is(err, ErrCommunication) holds for every CommunicationError.
type CommunicationError struct {
	Kind CommunicationKind

	// Expected is the code of the command being answered.
	Expected wire.CommandCode

	// Got is the code echoed by the DAC (KindCommandMismatch, KindRejected).
	Got wire.CommandCode

	// Ack is the DAC's acceptance code (KindRejected).
	Ack wire.Ack

	// Err is the underlying decode or framing error, if any.
	Err error
}

func (e *CommunicationError) Error() string {
	switch e.Kind {
	case KindCommandMismatch:
		return fmt.Sprintf("communication error: expected response to %s, got %s", e.Expected, e.Got)
	case KindRejected:
		return fmt.Sprintf("communication error: %s rejected with %s", e.Expected, e.Ack)
	default:
		if e.Err != nil {
			return fmt.Sprintf("communication error: %s for %s: %v", e.Kind, e.Expected, e.Err)
		}
		return fmt.Sprintf("communication error: %s for %s", e.Kind, e.Expected)
	}
}

// Is matches ErrCommunication.
func (e *CommunicationError) Is(target error) bool {
	return target == ErrCommunication
}

func (e *CommunicationError) Unwrap() error {
	return e.Err
}

// CapacityError reports a Data push that does not fit the DAC's free buffer.
// errors.Is(err, ErrCapacity) holds for every CapacityError.
type CapacityError struct {
	// Requested is the number of points in the rejected push.
	Requested int

	// Queued is the number of points already queued in the batch.
	Queued int

	// Available is the DAC's free buffer space when the batch was built.
	Available int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%v: %d points requested, %d queued, %d available",
		ErrCapacity, e.Requested, e.Queued, e.Available)
}

// Is matches ErrCapacity.
func (e *CapacityError) Is(target error) bool {
	return target == ErrCapacity
}

// BatchError identifies the command at which a submitted batch failed.
// Commands before Index were validated; commands from Index on have an
// unknown effect on the DAC.
type BatchError struct {
	// Index is the zero-based position of the failing command.
	Index int

	// Command is the failing command's code.
	Command wire.CommandCode

	// Err is the transport or communication error.
	Err error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch failed at command %d (%s): %v", e.Index, e.Command, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}
