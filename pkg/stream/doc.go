// Package stream implements a command session with a single laser DAC.
//
// A Stream owns one transport connection, the last validated snapshot of
// the DAC, and the buffers reused by every batch. Commands are never sent
// one at a time: callers open a CommandQueue, push commands, and Submit
// them as a unit.
//
//	q, err := s.QueueCommands()
//	if err != nil {
//	    return err
//	}
//	q.PrepareStream()
//	if err := q.Data(points); err != nil {
//	    q.Discard()
//	    return err
//	}
//	q.Begin(wire.Begin{PointRate: 30000})
//	if err := q.Submit(); err != nil {
//	    return err
//	}
//
// # Ordering
//
// Submit writes every queued command before reading any response, then
// reads exactly one response per command in push order. The protocol has no
// sequence numbers, so the echoed command code is the only correlation. Any
// failure aborts the batch. If responses are left unread, the Stream is
// marked desynchronized: QueueCommands and Ping then return
// ErrDesynchronized, and the caller must reconnect with a new Stream.
//
// # Status
//
// The Stream records the status each validated response reports. It never
// refuses to send a command based on that status: the DAC is the authority
// and rejects invalid commands with a NAK, which surfaces as a
// CommunicationError.
//
// # Concurrency
//
// A Stream is driven by one goroutine. At most one CommandQueue may be open
// per Stream; QueueCommands returns ErrBatchInProgress otherwise. Callers
// sharing a Stream between goroutines must serialize access themselves.
package stream
