package log

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/lasercast/dac-go/pkg/wire"
)

func createTestLogFile(t *testing.T, events []Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.dlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create test log: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func readAll(t *testing.T, r *Reader) []Event {
	t.Helper()
	var out []Event
	for {
		event, err := r.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		out = append(out, event)
	}
}

func TestReaderIteratesEvents(t *testing.T) {
	events := []Event{
		{Timestamp: time.Now(), ConnectionID: "conn-1", Direction: DirectionOut, Layer: LayerWire, Category: CategoryMessage},
		{Timestamp: time.Now(), ConnectionID: "conn-2", Direction: DirectionIn, Layer: LayerWire, Category: CategoryMessage},
		{Timestamp: time.Now(), ConnectionID: "conn-3", Direction: DirectionIn, Layer: LayerSession, Category: CategoryState},
	}
	path := createTestLogFile(t, events)

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)
	if len(read) != 3 {
		t.Fatalf("got %d events, want 3", len(read))
	}
	for i, e := range read {
		if e.ConnectionID != events[i].ConnectionID {
			t.Errorf("event %d: got %q, want %q", i, e.ConnectionID, events[i].ConnectionID)
		}
	}
}

func TestReaderFilters(t *testing.T) {
	now := time.Now()
	events := []Event{
		{Timestamp: now, ConnectionID: "a", DeviceID: 1, Direction: DirectionOut, Command: &CommandEvent{Code: wire.CmdPing}},
		{Timestamp: now.Add(time.Millisecond), ConnectionID: "a", DeviceID: 1, Direction: DirectionIn, Response: &ResponseEvent{Ack: wire.AckOK, Command: wire.CmdPing}},
		{Timestamp: now.Add(2 * time.Millisecond), ConnectionID: "b", DeviceID: 2, Direction: DirectionOut, Command: &CommandEvent{Code: wire.CmdStop}},
		{Timestamp: now.Add(3 * time.Millisecond), ConnectionID: "b", DeviceID: 2, Category: CategoryState, StateChange: &StateChangeEvent{NewState: "IDLE"}},
	}

	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	for _, e := range events {
		if err := enc.Encode(e); err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
	}
	data := buf.Bytes()

	out := DirectionOut
	ping := wire.CmdPing
	dev2 := uint32(2)
	state := CategoryState
	later := now.Add(2 * time.Millisecond)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"all", Filter{}, []string{"a", "a", "b", "b"}},
		{"connection", Filter{ConnectionID: "b"}, []string{"b", "b"}},
		{"direction", Filter{Direction: &out}, []string{"a", "b"}},
		{"command", Filter{Command: &ping}, []string{"a", "a"}},
		{"device", Filter{DeviceID: &dev2}, []string{"b", "b"}},
		{"category", Filter{Category: &state}, []string{"b"}},
		{"time start", Filter{TimeStart: &later}, []string{"b", "b"}},
		{"time end", Filter{TimeEnd: &later}, []string{"a", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := readAll(t, NewStreamReader(bytes.NewReader(data), tt.filter))
			if len(got) != len(tt.want) {
				t.Fatalf("got %d events, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].ConnectionID != tt.want[i] {
					t.Errorf("event %d: got %q, want %q", i, got[i].ConnectionID, tt.want[i])
				}
			}
		})
	}
}

func TestNewReaderMissingFile(t *testing.T) {
	if _, err := NewReader(filepath.Join(t.TempDir(), "missing.dlog")); err == nil {
		t.Error("expected error for missing file")
	}
}
