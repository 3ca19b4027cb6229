package wire

import (
	"fmt"

	"github.com/lasercast/dac-go/pkg/dac"
)

// Ack is the acceptance code leading every response.
type Ack uint8

const (
	// AckOK indicates the command was accepted.
	AckOK Ack = 'a'

	// AckNakFull indicates data was rejected because the buffer is full.
	AckNakFull Ack = 'F'

	// AckNakInvalid indicates the command is invalid in the current state.
	AckNakInvalid Ack = 'I'

	// AckNakStopCondition indicates the DAC is in an emergency-stop condition.
	AckNakStopCondition Ack = '!'
)

// String returns the ack name.
func (a Ack) String() string {
	switch a {
	case AckOK:
		return "ACK"
	case AckNakFull:
		return "NAK_FULL"
	case AckNakInvalid:
		return "NAK_INVALID"
	case AckNakStopCondition:
		return "NAK_STOP_CONDITION"
	default:
		return "UNKNOWN"
	}
}

// IsValid returns true if a is a known ack code.
func (a Ack) IsValid() bool {
	switch a {
	case AckOK, AckNakFull, AckNakInvalid, AckNakStopCondition:
		return true
	}
	return false
}

// IsSuccess returns true if the ack accepts the command.
func (a Ack) IsSuccess() bool {
	return a == AckOK
}

// DacStatus is the capability and status block carried by every response.
//
// CBOR encoding:
//
//	{
//	  1: revision,        // uint32
//	  2: bufferCapacity,  // uint32
//	  3: maxPointRate,    // uint32
//	  4: status,          // uint8, dac.Status
//	  5: bufferFullness,  // uint32
//	  6: pointRate        // uint32
//	}
type DacStatus struct {
	Revision       uint32     `cbor:"1,keyasint"`
	BufferCapacity uint32     `cbor:"2,keyasint"`
	MaxPointRate   uint32     `cbor:"3,keyasint"`
	Status         dac.Status `cbor:"4,keyasint"`
	BufferFullness uint32     `cbor:"5,keyasint,omitempty"`
	PointRate      uint32     `cbor:"6,keyasint,omitempty"`
}

// StatusFromDac builds the wire status block for a snapshot.
func StatusFromDac(d dac.Dac) DacStatus {
	return DacStatus{
		Revision:       d.Revision,
		BufferCapacity: d.BufferCapacity,
		MaxPointRate:   d.MaxPointRate,
		Status:         d.Status,
		BufferFullness: d.BufferFullness,
		PointRate:      d.PointRate,
	}
}

// Dac converts the status block into a snapshot.
func (s DacStatus) Dac() dac.Dac {
	return dac.Dac{
		Revision:       s.Revision,
		BufferCapacity: s.BufferCapacity,
		MaxPointRate:   s.MaxPointRate,
		Status:         s.Status,
		BufferFullness: s.BufferFullness,
		PointRate:      s.PointRate,
	}
}

// Response is the DAC's answer to one command.
type Response struct {
	Ack     Ack         `cbor:"1,keyasint"`
	Command CommandCode `cbor:"2,keyasint"`
	Status  DacStatus   `cbor:"3,keyasint"`
}

// responseFrame is the decoding layout of a response. Pointer fields tell a
// missing key apart from a zero value.
type responseFrame struct {
	Ack     *Ack         `cbor:"1,keyasint"`
	Command *CommandCode `cbor:"2,keyasint"`
	Status  *statusFrame `cbor:"3,keyasint"`
}

type statusFrame struct {
	Revision       *uint32     `cbor:"1,keyasint"`
	BufferCapacity *uint32     `cbor:"2,keyasint"`
	MaxPointRate   *uint32     `cbor:"3,keyasint"`
	Status         *dac.Status `cbor:"4,keyasint"`
	BufferFullness uint32      `cbor:"5,keyasint"`
	PointRate      uint32      `cbor:"6,keyasint"`
}

// response copies every present field into r and reports the first
// required key that is missing.
func (f *responseFrame) response(r *Response) error {
	if f.Ack != nil {
		r.Ack = *f.Ack
	}
	if f.Command != nil {
		r.Command = *f.Command
	}
	switch {
	case f.Ack == nil:
		return fmt.Errorf("%w: missing ack", ErrMalformedResponse)
	case f.Command == nil:
		return fmt.Errorf("%w: missing command", ErrMalformedResponse)
	case f.Status == nil:
		return fmt.Errorf("%w: missing status block", ErrMalformedResponse)
	}

	st := f.Status
	switch {
	case st.Revision == nil:
		return fmt.Errorf("%w: status block missing revision", ErrMalformedResponse)
	case st.BufferCapacity == nil:
		return fmt.Errorf("%w: status block missing buffer capacity", ErrMalformedResponse)
	case st.MaxPointRate == nil:
		return fmt.Errorf("%w: status block missing max point rate", ErrMalformedResponse)
	case st.Status == nil:
		return fmt.Errorf("%w: status block missing status", ErrMalformedResponse)
	}
	r.Status = DacStatus{
		Revision:       *st.Revision,
		BufferCapacity: *st.BufferCapacity,
		MaxPointRate:   *st.MaxPointRate,
		Status:         *st.Status,
		BufferFullness: st.BufferFullness,
		PointRate:      st.PointRate,
	}
	return nil
}

// Validate checks that every field carries a known value.
func (r *Response) Validate() error {
	if !r.Ack.IsValid() {
		return fmt.Errorf("%w: ack 0x%02x", ErrMalformedResponse, uint8(r.Ack))
	}
	if !r.Command.IsValid() {
		return fmt.Errorf("%w: command 0x%02x", ErrMalformedResponse, uint8(r.Command))
	}
	if !r.Status.Status.IsValid() {
		return fmt.Errorf("%w: status %d", ErrMalformedResponse, r.Status.Status)
	}
	return nil
}
