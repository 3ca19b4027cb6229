package dac

// Status is the playback state of a DAC.
type Status uint8

const (
	// StatusIdle indicates no stream is prepared.
	StatusIdle Status = 0

	// StatusPreparing indicates a stream was prepared and accepts data, but
	// playback has not begun.
	StatusPreparing Status = 1

	// StatusPlaying indicates buffered points are being output.
	StatusPlaying Status = 2

	// StatusEmergencyStopped indicates output was halted by an emergency stop.
	// Only ClearEmergencyStop leaves this state.
	StatusEmergencyStopped Status = 3
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "IDLE"
	case StatusPreparing:
		return "PREPARING"
	case StatusPlaying:
		return "PLAYING"
	case StatusEmergencyStopped:
		return "EMERGENCY_STOPPED"
	default:
		return "UNKNOWN"
	}
}

// IsValid returns true if s is one of the defined states.
func (s Status) IsValid() bool {
	return s <= StatusEmergencyStopped
}

// Event identifies the command driving a status transition.
type Event uint8

const (
	EventPrepareStream Event = iota
	EventBegin
	EventPointRate
	EventData
	EventStop
	EventEmergencyStop
	EventClearEmergencyStop
	EventPing
)

// String returns the event name.
func (e Event) String() string {
	switch e {
	case EventPrepareStream:
		return "PrepareStream"
	case EventBegin:
		return "Begin"
	case EventPointRate:
		return "PointRate"
	case EventData:
		return "Data"
	case EventStop:
		return "Stop"
	case EventEmergencyStop:
		return "EmergencyStop"
	case EventClearEmergencyStop:
		return "ClearEmergencyStop"
	case EventPing:
		return "Ping"
	default:
		return "Unknown"
	}
}

// Transition returns the status that follows from applying e in status s.
// ok is false when a device must reject e in s.
func Transition(s Status, e Event) (next Status, ok bool) {
	switch e {
	case EventPrepareStream:
		if s == StatusIdle {
			return StatusPreparing, true
		}
	case EventBegin:
		if s == StatusPreparing {
			return StatusPlaying, true
		}
	case EventStop:
		if s == StatusPlaying || s == StatusPreparing {
			return StatusIdle, true
		}
	case EventEmergencyStop:
		return StatusEmergencyStopped, true
	case EventClearEmergencyStop:
		if s == StatusEmergencyStopped {
			return StatusIdle, true
		}
	case EventPointRate, EventData:
		if s == StatusPlaying || s == StatusPreparing {
			return s, true
		}
	case EventPing:
		return s, true
	}
	return s, false
}
