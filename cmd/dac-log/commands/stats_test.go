package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lasercast/dac-go/pkg/log"
	"github.com/lasercast/dac-go/pkg/wire"
)

func TestCollectStats(t *testing.T) {
	path := createTestLogFile(t, sessionEvents())
	reader, err := log.NewReader(path)
	if err != nil {
		t.Fatalf("failed to open log: %v", err)
	}
	defer reader.Close()

	stats, err := collectStats(reader)
	if err != nil {
		t.Fatalf("collectStats failed: %v", err)
	}

	if stats.TotalEvents != 6 {
		t.Errorf("TotalEvents = %d, want 6", stats.TotalEvents)
	}
	if stats.Commands[wire.CmdPing] != 1 || stats.Commands[wire.CmdData] != 1 {
		t.Errorf("unexpected command counts: %v", stats.Commands)
	}
	if stats.PointsSent != 300 {
		t.Errorf("PointsSent = %d, want 300", stats.PointsSent)
	}
	if stats.Naks[wire.AckNakInvalid] != 1 {
		t.Errorf("unexpected NAK counts: %v", stats.Naks)
	}
	if stats.Errors != 1 {
		t.Errorf("Errors = %d, want 1", stats.Errors)
	}
	if len(stats.Connections) != 2 {
		t.Errorf("Connections = %d, want 2", len(stats.Connections))
	}
	conn := stats.Connections["abc12345-6789-0123-4567-890abcdef012"]
	if conn == nil || conn.DeviceID != 7 || conn.LastStatus != "IDLE" {
		t.Errorf("unexpected connection stats: %+v", conn)
	}
}

func TestRunStatsOutput(t *testing.T) {
	path := createTestLogFile(t, sessionEvents())

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"Total Events: 6",
		"Points:",
		"NAK_INVALID:",
		"Connections: 2",
		"[abc12345]",
		"DAC: 7",
		"Errors: 1",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got:\n%s", want, output)
		}
	}
}
