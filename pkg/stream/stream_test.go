package stream

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lasercast/dac-go/pkg/dac"
	"github.com/lasercast/dac-go/pkg/emulator"
	"github.com/lasercast/dac-go/pkg/log"
	"github.com/lasercast/dac-go/pkg/transport"
	"github.com/lasercast/dac-go/pkg/transport/mocks"
	"github.com/lasercast/dac-go/pkg/wire"
)

const testDeviceID = 7

func testDac(status dac.Status) dac.Dac {
	return dac.Dac{
		Revision:       3,
		BufferCapacity: 100,
		MaxPointRate:   30000,
		Status:         status,
	}
}

type recordingLogger struct {
	events []log.Event
}

func (r *recordingLogger) Log(ev log.Event) {
	r.events = append(r.events, ev)
}

func (r *recordingLogger) responses() []*log.ResponseEvent {
	var out []*log.ResponseEvent
	for _, ev := range r.events {
		if ev.Response != nil {
			out = append(out, ev.Response)
		}
	}
	return out
}

// newEmulatedStream connects a Stream to an emulated DAC over a synchronous
// in-memory pipe.
func newEmulatedStream(t *testing.T, d dac.Dac, cfg Config) (*Stream, *emulator.Device) {
	t.Helper()

	client, server := net.Pipe()
	dev := emulator.New(emulator.Config{Dac: d})
	serverConn := transport.NewConn(server, transport.ConnConfig{})

	served := make(chan error, 1)
	go func() { served <- dev.Serve(context.Background(), serverConn) }()

	s := New(transport.NewConn(client, transport.ConnConfig{}), dac.NewAddressed(testDeviceID, d), cfg)
	t.Cleanup(func() {
		_ = s.Close()
		select {
		case <-served:
		case <-time.After(2 * time.Second):
			t.Error("emulator did not stop")
		}
		_ = serverConn.Close()
	})
	return s, dev
}

func points(n int) []dac.Point {
	pts := make([]dac.Point, n)
	for i := range pts {
		pts[i] = dac.Blank(int16(i), int16(-i))
	}
	return pts
}

func TestNew(t *testing.T) {
	m := mocks.NewMockFrameReadWriter(t)
	device := dac.NewAddressed(testDeviceID, testDac(dac.StatusIdle))

	s := New(m, device, Config{})

	assert.Equal(t, device, s.Dac())
	assert.NoError(t, s.Close(), "Close without an io.Closer is a no-op")
}

func TestSubmitPrepareDataBegin(t *testing.T) {
	s, dev := newEmulatedStream(t, testDac(dac.StatusIdle), Config{})

	q, err := s.QueueCommands()
	require.NoError(t, err)
	q.PrepareStream()
	require.NoError(t, q.Data(points(10)))
	q.Begin(wire.Begin{PointRate: 20000})
	require.Equal(t, 3, q.Len())

	require.NoError(t, q.Submit())

	snap := s.Dac()
	assert.Equal(t, uint32(testDeviceID), snap.ID)
	assert.Equal(t, dac.StatusPlaying, snap.Status)
	assert.Equal(t, uint32(10), snap.BufferFullness)
	assert.Equal(t, uint32(20000), snap.PointRate)
	assert.Equal(t, dev.Snapshot(), snap.Dac)
}

func TestSubmitResponsesInOrder(t *testing.T) {
	rec := &recordingLogger{}
	s, _ := newEmulatedStream(t, testDac(dac.StatusIdle), Config{ProtocolLogger: rec})

	q, err := s.QueueCommands()
	require.NoError(t, err)
	q.Ping().PrepareStream().Ping()
	require.NoError(t, q.Data(points(5)))
	q.Ping().Begin(wire.Begin{PointRate: 1000}).PointRate(wire.PointRate{Rate: 2000}).Ping()

	var want []wire.CommandCode
	for _, cmd := range q.Commands() {
		want = append(want, cmd.CommandCode())
	}

	require.NoError(t, q.Submit())

	responses := rec.responses()
	require.Len(t, responses, len(want))
	for i, resp := range responses {
		assert.Equal(t, i, resp.BatchIndex)
		assert.Equal(t, want[i], resp.Command, "response %d", i)
		assert.Equal(t, wire.AckOK, resp.Ack, "response %d", i)
	}
	assert.Equal(t, dac.StatusPlaying, s.Dac().Status)
	assert.Equal(t, uint32(2000), s.Dac().PointRate)

	// Every event carries the session's identity.
	for _, ev := range rec.events {
		assert.Equal(t, uint32(testDeviceID), ev.DeviceID)
		assert.NotEmpty(t, ev.ConnectionID)
	}
}

func TestSubmitEmptyBatch(t *testing.T) {
	m := mocks.NewMockFrameReadWriter(t)
	s := New(m, dac.NewAddressed(1, testDac(dac.StatusIdle)), Config{})

	q, err := s.QueueCommands()
	require.NoError(t, err)
	assert.NoError(t, q.Submit())

	m.AssertNotCalled(t, "WriteFrame", mock.Anything)
	m.AssertNotCalled(t, "ReadFrameInto", mock.Anything)
}

func TestQueueCommandsStartsEmpty(t *testing.T) {
	s, _ := newEmulatedStream(t, testDac(dac.StatusPreparing), Config{})

	q, err := s.QueueCommands()
	require.NoError(t, err)
	q.Ping()
	require.NoError(t, q.Data(points(20)))
	q.Discard()

	q, err = s.QueueCommands()
	require.NoError(t, err)
	assert.Zero(t, q.Len())
	assert.Zero(t, q.QueuedPoints())
	assert.Empty(t, q.Commands())
	q.Discard()
}

func TestPingRefreshesSnapshot(t *testing.T) {
	s, dev := newEmulatedStream(t, testDac(dac.StatusIdle), Config{})

	q, err := s.QueueCommands()
	require.NoError(t, err)
	q.PrepareStream()
	require.NoError(t, q.Data(points(40)))
	q.Begin(wire.Begin{PointRate: 10000})
	require.NoError(t, q.Submit())
	require.Equal(t, uint32(40), s.Dac().BufferFullness)

	require.Equal(t, 15, dev.Consume(15))

	require.NoError(t, s.Ping())
	assert.Equal(t, dac.StatusPlaying, s.Dac().Status)
	assert.Equal(t, uint32(25), s.Dac().BufferFullness)
	assert.Equal(t, 75, s.Dac().RemainingCapacity())
}

func TestDataCapacity(t *testing.T) {
	s, _ := newEmulatedStream(t, testDac(dac.StatusPreparing), Config{})

	q, err := s.QueueCommands()
	require.NoError(t, err)
	defer q.Discard()

	require.NoError(t, q.Data(points(80)))
	require.Equal(t, 80, q.QueuedPoints())

	err = q.Data(points(30))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCapacity)

	var capErr *CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 30, capErr.Requested)
	assert.Equal(t, 80, capErr.Queued)
	assert.Equal(t, 100, capErr.Available)

	// The failed push left both buffers untouched.
	assert.Equal(t, 1, q.Len())
	assert.Equal(t, 80, q.QueuedPoints())
	assert.Equal(t, []QueuedCommand{Data{Start: 0, End: 80}}, q.Commands())

	// Exactly filling the buffer is allowed.
	require.NoError(t, q.Data(points(20)))
	assert.Equal(t, 100, q.QueuedPoints())
}

func TestDataCapacityAccountsForFullness(t *testing.T) {
	d := testDac(dac.StatusPlaying)
	d.BufferFullness = 90
	s := New(mocks.NewMockFrameReadWriter(t), dac.NewAddressed(1, d), Config{})

	q, err := s.QueueCommands()
	require.NoError(t, err)
	defer q.Discard()

	assert.NoError(t, q.Data(points(10)))
	assert.ErrorIs(t, q.Data(points(1)), ErrCapacity)
}

func TestEmergencyStop(t *testing.T) {
	s, _ := newEmulatedStream(t, testDac(dac.StatusIdle), Config{})

	q, err := s.QueueCommands()
	require.NoError(t, err)
	q.PrepareStream()
	require.NoError(t, q.Data(points(10)))
	q.Begin(wire.Begin{PointRate: 10000}).EmergencyStop()
	require.NoError(t, q.Submit())

	assert.Equal(t, dac.StatusEmergencyStopped, s.Dac().Status)
	assert.Zero(t, s.Dac().BufferFullness)
}

func TestClearEmergencyStop(t *testing.T) {
	s, _ := newEmulatedStream(t, testDac(dac.StatusEmergencyStopped), Config{})

	q, err := s.QueueCommands()
	require.NoError(t, err)
	require.NoError(t, q.ClearEmergencyStop().Submit())

	assert.Equal(t, dac.StatusIdle, s.Dac().Status)
}

func TestClearEmergencyStopRejected(t *testing.T) {
	for _, status := range []dac.Status{dac.StatusIdle, dac.StatusPreparing, dac.StatusPlaying} {
		t.Run(status.String(), func(t *testing.T) {
			s, _ := newEmulatedStream(t, testDac(status), Config{})
			before := s.Dac()

			q, err := s.QueueCommands()
			require.NoError(t, err)
			err = q.ClearEmergencyStop().Submit()

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrCommunication)

			var batchErr *BatchError
			require.ErrorAs(t, err, &batchErr)
			assert.Equal(t, 0, batchErr.Index)
			assert.Equal(t, wire.CmdClearEmergencyStop, batchErr.Command)

			var commErr *CommunicationError
			require.ErrorAs(t, err, &commErr)
			assert.Equal(t, KindRejected, commErr.Kind)
			assert.Equal(t, wire.AckNakInvalid, commErr.Ack)

			assert.Equal(t, before, s.Dac())
		})
	}
}

func TestSubmitStopsAtRejectedCommand(t *testing.T) {
	rec := &recordingLogger{}
	s, dev := newEmulatedStream(t, testDac(dac.StatusIdle), Config{ProtocolLogger: rec})

	q, err := s.QueueCommands()
	require.NoError(t, err)
	// Begin above the device's max rate is refused.
	q.PrepareStream().Begin(wire.Begin{PointRate: 90000}).Ping()
	err = q.Submit()

	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, 1, batchErr.Index)
	assert.Equal(t, wire.CmdBegin, batchErr.Command)

	// The snapshot reflects the last validated response.
	assert.Equal(t, dac.StatusPreparing, s.Dac().Status)
	assert.Equal(t, dac.StatusPreparing, dev.Snapshot().Status)

	// The third response was never read.
	assert.Len(t, rec.responses(), 2)
	assert.ErrorIs(t, s.Err(), ErrDesynchronized)
}

func TestDesynchronizedStreamRefusesBatches(t *testing.T) {
	rec := &recordingLogger{}
	s, dev := newEmulatedStream(t, testDac(dac.StatusIdle), Config{ProtocolLogger: rec})

	q, err := s.QueueCommands()
	require.NoError(t, err)
	q.PrepareStream().Begin(wire.Begin{PointRate: 90000}).Ping()
	require.Error(t, q.Submit())

	// The unread Ping response would otherwise be taken as the answer to
	// the next Ping and hide the device's emergency stop.
	dev.Trip()
	err = s.Ping()
	assert.ErrorIs(t, err, ErrDesynchronized)
	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, 1, batchErr.Index)

	_, err = s.QueueCommands()
	assert.ErrorIs(t, err, ErrDesynchronized)
	assert.Equal(t, dac.StatusPreparing, s.Dac().Status)
	assert.Len(t, rec.responses(), 2)

	var desyncEvents int
	for _, ev := range rec.events {
		if ev.StateChange != nil && ev.StateChange.Entity == log.StateEntitySession {
			desyncEvents++
			assert.Equal(t, "DESYNCHRONIZED", ev.StateChange.NewState)
		}
	}
	assert.Equal(t, 1, desyncEvents)
}

func TestRejectedLastCommandKeepsSync(t *testing.T) {
	s, _ := newEmulatedStream(t, testDac(dac.StatusIdle), Config{})

	q, err := s.QueueCommands()
	require.NoError(t, err)
	q.PrepareStream().Begin(wire.Begin{PointRate: 90000})
	require.ErrorIs(t, q.Submit(), ErrCommunication)

	assert.NoError(t, s.Err())
	require.NoError(t, s.Ping())
	assert.Equal(t, dac.StatusPreparing, s.Dac().Status)
}

func TestBatchInProgress(t *testing.T) {
	s := New(mocks.NewMockFrameReadWriter(t), dac.NewAddressed(1, testDac(dac.StatusIdle)), Config{})

	q, err := s.QueueCommands()
	require.NoError(t, err)

	_, err = s.QueueCommands()
	assert.ErrorIs(t, err, ErrBatchInProgress)
	assert.ErrorIs(t, s.Ping(), ErrBatchInProgress)

	q.Discard()
	q2, err := s.QueueCommands()
	require.NoError(t, err)
	q2.Discard()
}

func TestBatchClosed(t *testing.T) {
	s, _ := newEmulatedStream(t, testDac(dac.StatusPreparing), Config{})

	q, err := s.QueueCommands()
	require.NoError(t, err)
	require.NoError(t, q.Ping().Submit())

	assert.ErrorIs(t, q.Submit(), ErrBatchClosed)
	assert.ErrorIs(t, q.Data(points(1)), ErrBatchClosed)
	assert.NoError(t, q.Err())
	q.Ping()
	assert.ErrorIs(t, q.Err(), ErrBatchClosed)
	q.Discard()

	// A stale queue cannot touch the next batch.
	next, err := s.QueueCommands()
	require.NoError(t, err)
	q.Stop()
	assert.Zero(t, next.Len())
	require.NoError(t, next.Ping().Submit())

	discarded, err := s.QueueCommands()
	require.NoError(t, err)
	discarded.Discard()
	assert.ErrorIs(t, discarded.Submit(), ErrBatchClosed)
}

func TestSubmitWriteFailureSkipsReads(t *testing.T) {
	m := mocks.NewMockFrameReadWriter(t)
	m.EXPECT().WriteFrame(mock.Anything).Return(nil).Once()
	m.EXPECT().WriteFrame(mock.Anything).Return(io.ErrClosedPipe).Once()

	s := New(m, dac.NewAddressed(1, testDac(dac.StatusIdle)), Config{})
	before := s.Dac()

	q, err := s.QueueCommands()
	require.NoError(t, err)
	q.Ping().PrepareStream().Ping().Stop()
	err = q.Submit()

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, io.ErrClosedPipe)

	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, 1, batchErr.Index)
	assert.Equal(t, wire.CmdPrepareStream, batchErr.Command)

	m.AssertNumberOfCalls(t, "WriteFrame", 2)
	m.AssertNotCalled(t, "ReadFrameInto", mock.Anything)
	assert.Equal(t, before, s.Dac())

	// The first command's response is still in flight.
	_, err = s.QueueCommands()
	assert.ErrorIs(t, err, ErrDesynchronized)
	assert.ErrorIs(t, s.Err(), io.ErrClosedPipe)
	assert.False(t, s.batchOpen.Load(), "the failed queue is released")
}

func TestSubmitWritesEncodedCommands(t *testing.T) {
	m := mocks.NewMockFrameReadWriter(t)
	var written []wire.Command
	m.EXPECT().WriteFrame(mock.Anything).RunAndReturn(func(data []byte) error {
		cmd, err := wire.DecodeCommand(data)
		if err != nil {
			return err
		}
		written = append(written, cmd)
		return nil
	}).Times(3)
	m.EXPECT().ReadFrameInto(mock.Anything).Return(nil, io.EOF).Once()

	s := New(m, dac.NewAddressed(1, testDac(dac.StatusPreparing)), Config{})
	q, err := s.QueueCommands()
	require.NoError(t, err)
	pts := points(3)
	require.NoError(t, q.Data(pts))
	q.Begin(wire.Begin{PointRate: 500}).Stop()

	err = q.Submit()
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, io.EOF)

	require.Len(t, written, 3)
	assert.Equal(t, wire.Data{Points: pts}, written[0])
	assert.Equal(t, wire.Begin{PointRate: 500}, written[1])
	assert.Equal(t, wire.Stop{}, written[2])
}

// respondWith returns a ReadFrameInto implementation answering with resp.
func respondWith(t *testing.T, resp wire.Response) func([]byte) ([]byte, error) {
	return func(buf []byte) ([]byte, error) {
		data, err := wire.AppendResponse(buf, &resp)
		require.NoError(t, err)
		return data, nil
	}
}

// respondRaw returns a ReadFrameInto implementation answering with the CBOR
// encoding of v.
func respondRaw(t *testing.T, v any) func([]byte) ([]byte, error) {
	return func([]byte) ([]byte, error) {
		data, err := cbor.Marshal(v)
		require.NoError(t, err)
		return data, nil
	}
}

func TestRecvResponseValidation(t *testing.T) {
	changed := wire.StatusFromDac(testDac(dac.StatusPlaying))

	tests := []struct {
		name     string
		read     func(t *testing.T) func([]byte) ([]byte, error)
		kind     CommunicationKind
		wantErr  error
		sentinel error
		desync   bool
	}{
		{
			name: "command mismatch",
			read: func(t *testing.T) func([]byte) ([]byte, error) {
				return respondWith(t, wire.Response{Ack: wire.AckOK, Command: wire.CmdStop, Status: changed})
			},
			kind:     KindCommandMismatch,
			sentinel: ErrCommunication,
			desync:   true,
		},
		{
			name: "nak",
			read: func(t *testing.T) func([]byte) ([]byte, error) {
				return respondWith(t, wire.Response{Ack: wire.AckNakStopCondition, Command: wire.CmdPing, Status: changed})
			},
			kind:     KindRejected,
			sentinel: ErrCommunication,
		},
		{
			name: "unknown ack",
			read: func(t *testing.T) func([]byte) ([]byte, error) {
				return respondWith(t, wire.Response{Ack: 'z', Command: wire.CmdPing, Status: changed})
			},
			kind:     KindMalformed,
			wantErr:  wire.ErrMalformedResponse,
			sentinel: ErrCommunication,
		},
		{
			name: "garbage payload",
			read: func(t *testing.T) func([]byte) ([]byte, error) {
				return func([]byte) ([]byte, error) { return []byte{0x1f, 0x00}, nil }
			},
			kind:     KindMalformed,
			wantErr:  wire.ErrMalformedResponse,
			sentinel: ErrCommunication,
		},
		{
			name: "missing status block",
			read: func(t *testing.T) func([]byte) ([]byte, error) {
				return respondRaw(t, map[int]any{1: 'a', 2: '?'})
			},
			kind:     KindMalformed,
			wantErr:  wire.ErrMalformedResponse,
			sentinel: ErrCommunication,
		},
		{
			name: "partial status block",
			read: func(t *testing.T) func([]byte) ([]byte, error) {
				return respondRaw(t, map[int]any{1: 'a', 2: '?', 3: map[int]any{4: 0}})
			},
			kind:     KindMalformed,
			wantErr:  wire.ErrMalformedResponse,
			sentinel: ErrCommunication,
		},
		{
			name: "truncated frame",
			read: func(t *testing.T) func([]byte) ([]byte, error) {
				return func(buf []byte) ([]byte, error) { return buf[:0], transport.ErrFrameTruncated }
			},
			kind:     KindMalformed,
			wantErr:  transport.ErrFrameTruncated,
			sentinel: ErrCommunication,
			desync:   true,
		},
		{
			name: "connection reset",
			read: func(t *testing.T) func([]byte) ([]byte, error) {
				return func(buf []byte) ([]byte, error) { return buf[:0], errors.New("connection reset by peer") }
			},
			sentinel: ErrTransport,
			desync:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mocks.NewMockFrameReadWriter(t)
			m.EXPECT().WriteFrame(mock.Anything).Return(nil).Once()
			m.EXPECT().ReadFrameInto(mock.Anything).RunAndReturn(tt.read(t)).Once()

			s := New(m, dac.NewAddressed(1, testDac(dac.StatusIdle)), Config{})
			before := s.Dac()

			err := s.Ping()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.kind != 0 {
				var commErr *CommunicationError
				require.ErrorAs(t, err, &commErr)
				assert.Equal(t, tt.kind, commErr.Kind)
				assert.Equal(t, wire.CmdPing, commErr.Expected)
			}

			assert.Equal(t, before, s.Dac(), "failed validation must not update the snapshot")
			if tt.desync {
				assert.ErrorIs(t, s.Err(), ErrDesynchronized)
			} else {
				assert.NoError(t, s.Err())
			}
		})
	}
}

func TestQueuedCommandsAreComparable(t *testing.T) {
	seen := map[QueuedCommand]int{
		PrepareStream{}:          1,
		Begin{PointRate: 1000}:   2,
		PointRate{Rate: 500}:     3,
		Data{Start: 0, End: 10}:  4,
		Stop{}:                   5,
		EmergencyStop{}:          6,
		ClearEmergencyStop{}:     7,
		Ping{}:                   8,
		Begin{PointRate: 2000}:   9,
		Data{Start: 10, End: 20}: 10,
	}
	assert.Len(t, seen, 10)
	assert.Equal(t, 2, seen[Begin{PointRate: 1000}])
	assert.Equal(t, 10, seen[Data{Start: 10, End: 20}])
	assert.True(t, QueuedCommand(Ping{}) == QueuedCommand(Ping{}))
	assert.False(t, QueuedCommand(Stop{}) == QueuedCommand(EmergencyStop{}))
	assert.Equal(t, 10, Data{Start: 10, End: 20}.Len())
}

func TestQueueIntrospection(t *testing.T) {
	s := New(mocks.NewMockFrameReadWriter(t), dac.NewAddressed(1, testDac(dac.StatusPreparing)), Config{})

	q, err := s.QueueCommands()
	require.NoError(t, err)
	defer q.Discard()

	first, second := points(4), points(6)
	q.PointRate(wire.PointRate{Rate: 100})
	require.NoError(t, q.Data(first))
	require.NoError(t, q.Data(second))

	cmds := q.Commands()
	require.Equal(t, []QueuedCommand{
		PointRate{Rate: 100},
		Data{Start: 0, End: 4},
		Data{Start: 4, End: 10},
	}, cmds)
	assert.Equal(t, first, q.Points(cmds[1].(Data)))
	assert.Equal(t, second, q.Points(cmds[2].(Data)))

	// Caller slices are copied in.
	first[0].X = 999
	assert.NotEqual(t, int16(999), q.Points(cmds[1].(Data))[0].X)

	assert.Nil(t, q.Points(Data{Start: 5, End: 500}))
	assert.Nil(t, q.Points(Data{Start: 6, End: 2}))
	assert.Nil(t, q.Points(Data{Start: -1, End: 2}))
	assert.Empty(t, q.Points(Data{Start: 10, End: 10}))
}

func TestDial(t *testing.T) {
	dev := emulator.New(emulator.Config{Dac: testDac(dac.StatusIdle)})
	srv, err := transport.NewServer(transport.ServerConfig{
		Address: "127.0.0.1:0",
		Handler: func(ctx context.Context, conn *transport.Conn) {
			_ = dev.Serve(ctx, conn)
		},
	})
	require.NoError(t, err)
	require.NoError(t, srv.Start(context.Background()))
	defer srv.Stop()

	// The caller's snapshot is replaced by the device's report.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s, err := Dial(ctx, srv.Addr().String(), dac.NewAddressed(42, dac.Dac{}), Config{})
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, uint32(42), s.Dac().ID)
	assert.Equal(t, dev.Snapshot(), s.Dac().Dac)
	assert.Equal(t, uint32(100), s.Dac().BufferCapacity)
}

func TestDialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = Dial(context.Background(), addr, dac.NewAddressed(1, dac.Dac{}), Config{})
	assert.ErrorIs(t, err, ErrTransport)
}
