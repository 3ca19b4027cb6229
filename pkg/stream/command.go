package stream

import (
	"github.com/lasercast/dac-go/pkg/dac"
	"github.com/lasercast/dac-go/pkg/wire"
)

// QueuedCommand is a command buffered in a CommandQueue.
//
// The set of implementations is closed: PrepareStream, Begin, PointRate,
// Data, Stop, EmergencyStop, ClearEmergencyStop and Ping. All are comparable
// values, so queued commands can be compared with == and used as map keys.
type QueuedCommand interface {
	// CommandCode returns the code the command's response must echo.
	CommandCode() wire.CommandCode

	// wireCommand resolves the command against the batch's point buffer.
	wireCommand(points []dac.Point) wire.Command
}

// PrepareStream readies an idle DAC to receive points.
type PrepareStream struct{}

// Begin starts playback.
type Begin wire.Begin

// PointRate queues a playback rate change.
type PointRate wire.PointRate

// Data refers to the points [Start, End) of the session's point buffer.
type Data struct {
	Start int
	End   int
}

// Len returns the number of points the command carries.
func (d Data) Len() int {
	return d.End - d.Start
}

// Stop ends playback.
type Stop struct{}

// EmergencyStop halts output from any state.
type EmergencyStop struct{}

// ClearEmergencyStop leaves the emergency-stopped state.
type ClearEmergencyStop struct{}

// Ping requests a status report.
type Ping struct{}

func (PrepareStream) CommandCode() wire.CommandCode      { return wire.CmdPrepareStream }
func (Begin) CommandCode() wire.CommandCode              { return wire.CmdBegin }
func (PointRate) CommandCode() wire.CommandCode          { return wire.CmdPointRate }
func (Data) CommandCode() wire.CommandCode               { return wire.CmdData }
func (Stop) CommandCode() wire.CommandCode               { return wire.CmdStop }
func (EmergencyStop) CommandCode() wire.CommandCode      { return wire.CmdEmergencyStop }
func (ClearEmergencyStop) CommandCode() wire.CommandCode { return wire.CmdClearEmergencyStop }
func (Ping) CommandCode() wire.CommandCode               { return wire.CmdPing }

func (PrepareStream) wireCommand([]dac.Point) wire.Command      { return wire.PrepareStream{} }
func (c Begin) wireCommand([]dac.Point) wire.Command            { return wire.Begin(c) }
func (c PointRate) wireCommand([]dac.Point) wire.Command        { return wire.PointRate(c) }
func (Stop) wireCommand([]dac.Point) wire.Command               { return wire.Stop{} }
func (EmergencyStop) wireCommand([]dac.Point) wire.Command      { return wire.EmergencyStop{} }
func (ClearEmergencyStop) wireCommand([]dac.Point) wire.Command { return wire.ClearEmergencyStop{} }
func (Ping) wireCommand([]dac.Point) wire.Command               { return wire.Ping{} }

func (c Data) wireCommand(points []dac.Point) wire.Command {
	return wire.Data{Points: points[c.Start:c.End]}
}
