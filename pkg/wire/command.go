package wire

import "github.com/lasercast/dac-go/pkg/dac"

// CommandCode is the one-byte tag identifying a command on the wire.
// Responses echo the code of the command they answer.
type CommandCode uint8

const (
	// CmdPrepareStream readies an idle DAC to receive points.
	CmdPrepareStream CommandCode = 'p'

	// CmdBegin starts playback of buffered points.
	CmdBegin CommandCode = 'b'

	// CmdPointRate queues a point rate change.
	CmdPointRate CommandCode = 'q'

	// CmdData appends points to the DAC buffer.
	CmdData CommandCode = 'd'

	// CmdStop stops playback and returns the DAC to idle.
	CmdStop CommandCode = 's'

	// CmdEmergencyStop halts output immediately from any state.
	CmdEmergencyStop CommandCode = 0xFF

	// CmdClearEmergencyStop returns an emergency-stopped DAC to idle.
	CmdClearEmergencyStop CommandCode = 'c'

	// CmdPing requests a status report without side effects.
	CmdPing CommandCode = '?'
)

// String returns the command name.
func (c CommandCode) String() string {
	switch c {
	case CmdPrepareStream:
		return "PrepareStream"
	case CmdBegin:
		return "Begin"
	case CmdPointRate:
		return "PointRate"
	case CmdData:
		return "Data"
	case CmdStop:
		return "Stop"
	case CmdEmergencyStop:
		return "EmergencyStop"
	case CmdClearEmergencyStop:
		return "ClearEmergencyStop"
	case CmdPing:
		return "Ping"
	default:
		return "Unknown"
	}
}

// IsValid returns true if c is a known command code.
func (c CommandCode) IsValid() bool {
	_, ok := c.Event()
	return ok
}

// Event maps the command code to the status machine event it drives.
func (c CommandCode) Event() (dac.Event, bool) {
	switch c {
	case CmdPrepareStream:
		return dac.EventPrepareStream, true
	case CmdBegin:
		return dac.EventBegin, true
	case CmdPointRate:
		return dac.EventPointRate, true
	case CmdData:
		return dac.EventData, true
	case CmdStop:
		return dac.EventStop, true
	case CmdEmergencyStop:
		return dac.EventEmergencyStop, true
	case CmdClearEmergencyStop:
		return dac.EventClearEmergencyStop, true
	case CmdPing:
		return dac.EventPing, true
	default:
		return 0, false
	}
}

// Command is implemented by every encodable command variant.
type Command interface {
	// CommandCode returns the tag written on the wire and expected back in
	// the response.
	CommandCode() CommandCode

	// fill writes the variant's parameters into the wire frame.
	fill(f *commandFrame)
}

// Begin starts playback.
type Begin struct {
	_ struct{} `cbor:",toarray"`

	// LowWaterMark is reserved by the protocol; DACs ignore it.
	LowWaterMark uint16

	// PointRate is the initial playback rate in points per second.
	PointRate uint32
}

// PointRate queues a new playback rate, applied at the next point carrying
// dac.ControlRateChange.
type PointRate struct {
	_ struct{} `cbor:",toarray"`

	Rate uint32
}

// Data appends points to the DAC buffer.
type Data struct {
	Points []dac.Point
}

type (
	// PrepareStream readies an idle DAC.
	PrepareStream struct{}

	// Stop ends playback.
	Stop struct{}

	// EmergencyStop halts output from any state.
	EmergencyStop struct{}

	// ClearEmergencyStop leaves the emergency-stopped state.
	ClearEmergencyStop struct{}

	// Ping requests a status report.
	Ping struct{}
)

func (PrepareStream) CommandCode() CommandCode      { return CmdPrepareStream }
func (Begin) CommandCode() CommandCode              { return CmdBegin }
func (PointRate) CommandCode() CommandCode          { return CmdPointRate }
func (Data) CommandCode() CommandCode               { return CmdData }
func (Stop) CommandCode() CommandCode               { return CmdStop }
func (EmergencyStop) CommandCode() CommandCode      { return CmdEmergencyStop }
func (ClearEmergencyStop) CommandCode() CommandCode { return CmdClearEmergencyStop }
func (Ping) CommandCode() CommandCode               { return CmdPing }

func (PrepareStream) fill(*commandFrame)      {}
func (c Begin) fill(f *commandFrame)          { f.Begin = &c }
func (c PointRate) fill(f *commandFrame)      { f.PointRate = &c }
func (c Data) fill(f *commandFrame)           { f.Points = c.Points }
func (Stop) fill(*commandFrame)               {}
func (EmergencyStop) fill(*commandFrame)      {}
func (ClearEmergencyStop) fill(*commandFrame) {}
func (Ping) fill(*commandFrame)               {}

// commandFrame is the CBOR layout shared by all commands.
type commandFrame struct {
	Code      CommandCode `cbor:"1,keyasint"`
	Begin     *Begin      `cbor:"2,keyasint,omitempty"`
	PointRate *PointRate  `cbor:"3,keyasint,omitempty"`
	Points    []dac.Point `cbor:"4,keyasint,omitempty"`
}

// command rebuilds the typed variant from a decoded frame.
func (f *commandFrame) command() (Command, error) {
	switch f.Code {
	case CmdPrepareStream:
		return PrepareStream{}, nil
	case CmdBegin:
		if f.Begin == nil {
			return nil, ErrMissingParameters
		}
		return *f.Begin, nil
	case CmdPointRate:
		if f.PointRate == nil {
			return nil, ErrMissingParameters
		}
		return *f.PointRate, nil
	case CmdData:
		return Data{Points: f.Points}, nil
	case CmdStop:
		return Stop{}, nil
	case CmdEmergencyStop:
		return EmergencyStop{}, nil
	case CmdClearEmergencyStop:
		return ClearEmergencyStop{}, nil
	case CmdPing:
		return Ping{}, nil
	default:
		return nil, ErrUnknownCommand
	}
}
