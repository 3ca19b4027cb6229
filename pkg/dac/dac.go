package dac

// Dac is a snapshot of a DAC's capabilities and its most recently reported status.
//
// A Dac is a value: sessions replace their copy wholesale after every
// validated response rather than mutating it field by field.
type Dac struct {
	// Revision is the firmware revision.
	Revision uint32

	// BufferCapacity is the maximum number of points the DAC may buffer at once.
	BufferCapacity uint32

	// MaxPointRate is the maximum rate, in points per second, at which the
	// DAC may process buffered points.
	MaxPointRate uint32

	// Status is the playback state reported by the DAC.
	Status Status

	// BufferFullness is the number of points currently buffered on the DAC.
	BufferFullness uint32

	// PointRate is the current playback rate in points per second.
	PointRate uint32
}

// RemainingCapacity returns how many more points the DAC can accept.
func (d Dac) RemainingCapacity() int {
	if d.BufferFullness >= d.BufferCapacity {
		return 0
	}
	return int(d.BufferCapacity - d.BufferFullness)
}

// Ready reports whether the DAC accepts point data in its current status.
func (d Dac) Ready() bool {
	return d.Status == StatusPreparing || d.Status == StatusPlaying
}

// Addressed is a DAC along with its ID.
//
// The embedded Dac makes every snapshot field readable directly on the
// Addressed value (a.BufferCapacity, a.Status, ...).
//
// Addressed is comparable: two values are == when their IDs and all snapshot
// fields match, and the type can be used as a map key.
type Addressed struct {
	// ID distinguishes between multiple DACs broadcasting on one network.
	ID uint32

	Dac
}

// NewAddressed pairs a device identifier with a snapshot.
func NewAddressed(id uint32, d Dac) Addressed {
	return Addressed{ID: id, Dac: d}
}

// Equal reports whether a and b carry the same ID and snapshot.
func (a Addressed) Equal(b Addressed) bool {
	return a == b
}

// WithDac returns a copy of a whose snapshot is replaced by d.
func (a Addressed) WithDac(d Dac) Addressed {
	a.Dac = d
	return a
}
