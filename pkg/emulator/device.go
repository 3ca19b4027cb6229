package emulator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/lasercast/dac-go/pkg/dac"
	"github.com/lasercast/dac-go/pkg/transport"
	"github.com/lasercast/dac-go/pkg/wire"
)

// Config configures a Device.
type Config struct {
	// Dac is the initial state.
	Dac dac.Dac

	// Logger receives operational messages (default: slog.Default()).
	Logger *slog.Logger
}

// Device is an emulated DAC. Its methods are safe for concurrent use, so a
// playback loop may call Consume while Serve handles a connection.
type Device struct {
	mu  sync.Mutex
	dac dac.Dac

	logger *slog.Logger
}

// New creates a device in the state given by cfg.Dac.
func New(cfg Config) *Device {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Device{
		dac:    cfg.Dac,
		logger: cfg.Logger,
	}
}

// Snapshot returns the device's current state.
func (d *Device) Snapshot() dac.Dac {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dac
}

// Consume plays up to n buffered points and returns how many were played.
// Points are only played while the device is Playing.
func (d *Device) Consume(n int) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.dac.Status != dac.StatusPlaying || n <= 0 {
		return 0
	}
	played := min(uint32(n), d.dac.BufferFullness)
	d.dac.BufferFullness -= played
	return int(played)
}

// Trip forces an emergency stop, as a hardware interlock would.
func (d *Device) Trip() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dac.Status = dac.StatusEmergencyStopped
	d.dac.BufferFullness = 0
	d.dac.PointRate = 0
}

// Apply executes one command and returns the response the device sends.
func (d *Device) Apply(cmd wire.Command) wire.Response {
	d.mu.Lock()
	defer d.mu.Unlock()

	code := cmd.CommandCode()
	ack := d.apply(cmd)
	return wire.Response{
		Ack:     ack,
		Command: code,
		Status:  wire.StatusFromDac(d.dac),
	}
}

// apply mutates d.dac only when it returns AckOK.
func (d *Device) apply(cmd wire.Command) wire.Ack {
	event, ok := cmd.CommandCode().Event()
	if !ok {
		return wire.AckNakInvalid
	}
	next, ok := dac.Transition(d.dac.Status, event)
	if !ok {
		if d.dac.Status == dac.StatusEmergencyStopped {
			return wire.AckNakStopCondition
		}
		return wire.AckNakInvalid
	}

	switch c := cmd.(type) {
	case wire.PrepareStream:
		d.dac.BufferFullness = 0
	case wire.Begin:
		if c.PointRate == 0 || c.PointRate > d.dac.MaxPointRate {
			return wire.AckNakInvalid
		}
		d.dac.PointRate = c.PointRate
	case wire.PointRate:
		if c.Rate == 0 || c.Rate > d.dac.MaxPointRate {
			return wire.AckNakInvalid
		}
		d.dac.PointRate = c.Rate
	case wire.Data:
		if len(c.Points) > d.dac.RemainingCapacity() {
			return wire.AckNakFull
		}
		d.dac.BufferFullness += uint32(len(c.Points))
	case wire.Stop, wire.EmergencyStop, wire.ClearEmergencyStop:
		d.dac.BufferFullness = 0
		d.dac.PointRate = 0
	}

	d.dac.Status = next
	return wire.AckOK
}

// Serve answers commands on conn until the peer closes it, ctx is cancelled,
// or a write fails. A clean close by the peer returns nil.
//
// Serve does not close conn. To stop a Serve blocked in a read, cancel ctx
// and close conn.
func (d *Device) Serve(ctx context.Context, conn transport.FrameReadWriter) error {
	responses := newResponseQueue()
	done := make(chan struct{})
	var writeErr error
	go func() {
		defer close(done)
		writeErr = writeResponses(conn, responses)
	}()
	defer func() {
		responses.close()
		<-done
	}()

	var buf []byte
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var err error
		buf, err = conn.ReadFrameInto(buf)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, transport.ErrConnectionClosed) {
				return nil
			}
			return err
		}

		responses.push(d.handleFrame(buf))

		select {
		case <-done:
			return writeErr
		default:
		}
	}
}

func (d *Device) handleFrame(data []byte) wire.Response {
	cmd, err := wire.DecodeCommand(data)
	if err != nil {
		d.logger.Debug("Rejecting undecodable command", "error", err, "size", len(data))
		return wire.Response{
			Ack:    wire.AckNakInvalid,
			Status: wire.StatusFromDac(d.Snapshot()),
		}
	}

	resp := d.Apply(cmd)
	if !resp.Ack.IsSuccess() {
		d.logger.Debug("Rejected command",
			"command", resp.Command.String(),
			"ack", resp.Ack.String(),
			"status", resp.Status.Status.String())
	}
	return resp
}

func writeResponses(conn transport.FrameReadWriter, responses *responseQueue) error {
	var (
		buf   []byte
		batch []wire.Response
	)
	for {
		var ok bool
		batch, ok = responses.take(batch)
		if !ok {
			return nil
		}
		for i := range batch {
			var err error
			buf, err = wire.AppendResponse(buf, &batch[i])
			if err != nil {
				return err
			}
			if err := conn.WriteFrame(buf); err != nil {
				return err
			}
		}
	}
}
