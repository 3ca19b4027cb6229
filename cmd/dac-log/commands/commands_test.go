package commands

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/lasercast/dac-go/pkg/dac"
	"github.com/lasercast/dac-go/pkg/log"
	"github.com/lasercast/dac-go/pkg/wire"
)

// createTestLogFile writes events to a temporary log file and returns its path.
func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.dlog")
	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("failed to close logger: %v", err)
	}
	return path
}

// sessionEvents returns a short session: a Ping, its response, a rejected
// Begin and the resulting batch error.
func sessionEvents() []log.Event {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	status := wire.StatusFromDac(dac.Dac{
		Revision:       3,
		BufferCapacity: 1800,
		MaxPointRate:   100000,
		Status:         dac.StatusIdle,
	})

	return []log.Event{
		{
			Timestamp:    base,
			ConnectionID: "abc12345-6789-0123-4567-890abcdef012",
			Direction:    log.DirectionOut,
			Layer:        log.LayerWire,
			Category:     log.CategoryMessage,
			DeviceID:     7,
			Command:      &log.CommandEvent{Code: wire.CmdPing},
		},
		{
			Timestamp:    base.Add(time.Millisecond),
			ConnectionID: "abc12345-6789-0123-4567-890abcdef012",
			Direction:    log.DirectionIn,
			Layer:        log.LayerWire,
			Category:     log.CategoryMessage,
			DeviceID:     7,
			Response:     &log.ResponseEvent{Ack: wire.AckOK, Command: wire.CmdPing, Status: status},
		},
		{
			Timestamp:    base.Add(2 * time.Millisecond),
			ConnectionID: "abc12345-6789-0123-4567-890abcdef012",
			Direction:    log.DirectionOut,
			Layer:        log.LayerWire,
			Category:     log.CategoryMessage,
			DeviceID:     7,
			Command:      &log.CommandEvent{Code: wire.CmdData, PointCount: 300},
		},
		{
			Timestamp:    base.Add(3 * time.Millisecond),
			ConnectionID: "abc12345-6789-0123-4567-890abcdef012",
			Direction:    log.DirectionIn,
			Layer:        log.LayerWire,
			Category:     log.CategoryMessage,
			DeviceID:     7,
			Response:     &log.ResponseEvent{Ack: wire.AckNakInvalid, Command: wire.CmdData, Status: status},
		},
		{
			Timestamp:    base.Add(4 * time.Millisecond),
			ConnectionID: "abc12345-6789-0123-4567-890abcdef012",
			Layer:        log.LayerSession,
			Category:     log.CategoryError,
			DeviceID:     7,
			Error: &log.ErrorEventData{
				Layer:   log.LayerSession,
				Message: "communication error: Data rejected with NAK_INVALID",
				Context: "Data",
			},
		},
		{
			Timestamp:    base.Add(time.Second),
			ConnectionID: "ffff0000-6789-0123-4567-890abcdef012",
			Layer:        log.LayerTransport,
			Category:     log.CategoryState,
			StateChange: &log.StateChangeEvent{
				Entity:   log.StateEntityConnection,
				NewState: "CONNECTED",
			},
		},
	}
}
