package emulator

import (
	"sync"

	"github.com/lasercast/dac-go/pkg/wire"
)

// responseQueue hands responses from the reader to the writer goroutine.
// It grows without bound: a client writes its whole batch before reading,
// so a fixed-size queue would stall the reader once the batch outgrew it
// and both ends would block writing to each other.
type responseQueue struct {
	mu      sync.Mutex
	pending []wire.Response
	closed  bool
	ready   chan struct{}
}

func newResponseQueue() *responseQueue {
	return &responseQueue{ready: make(chan struct{}, 1)}
}

func (q *responseQueue) push(resp wire.Response) {
	q.mu.Lock()
	q.pending = append(q.pending, resp)
	q.mu.Unlock()
	q.signal()
}

func (q *responseQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
}

func (q *responseQueue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// take waits for pending responses and swaps them out for spare, which the
// caller has finished with. It returns false once the queue is closed and
// drained.
func (q *responseQueue) take(spare []wire.Response) ([]wire.Response, bool) {
	for {
		q.mu.Lock()
		if len(q.pending) > 0 {
			out := q.pending
			q.pending = spare[:0]
			q.mu.Unlock()
			return out, true
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return nil, false
		}
		<-q.ready
	}
}
