package wire

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Codec errors.
var (
	// ErrUnknownCommand indicates a command frame carries an unknown code.
	ErrUnknownCommand = errors.New("unknown command code")

	// ErrMissingParameters indicates a command frame lacks the parameters
	// its variant requires.
	ErrMissingParameters = errors.New("missing command parameters")

	// ErrMalformedResponse indicates a response could not be decoded or
	// carries out-of-range values.
	ErrMalformedResponse = errors.New("malformed response")
)

// encMode is the CBOR encoder mode for DAC messages.
// Configured for deterministic encoding into caller-owned buffers.
var encMode cbor.UserBufferEncMode

// decMode is the CBOR decoder mode for DAC messages.
var decMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
	}
	encMode, err = encOpts.UserBufferEncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	// Lenient on unknown keys so newer firmware can extend the status block.
	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// AppendCommand encodes cmd and appends it to dst[:0], reusing dst's
// backing array when it is large enough.
func AppendCommand(dst []byte, cmd Command) ([]byte, error) {
	var f commandFrame
	f.Code = cmd.CommandCode()
	cmd.fill(&f)
	return appendCBOR(dst, &f)
}

// EncodeCommand encodes cmd into a new byte slice.
func EncodeCommand(cmd Command) ([]byte, error) {
	return AppendCommand(nil, cmd)
}

// DecodeCommand decodes a command frame payload into its typed variant.
func DecodeCommand(data []byte) (Command, error) {
	var f commandFrame
	if err := decMode.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode command: %w", err)
	}
	cmd, err := f.command()
	if err != nil {
		return nil, fmt.Errorf("invalid command 0x%02x: %w", uint8(f.Code), err)
	}
	return cmd, nil
}

// AppendResponse encodes resp and appends it to dst[:0].
func AppendResponse(dst []byte, resp *Response) ([]byte, error) {
	return appendCBOR(dst, resp)
}

// EncodeResponse encodes resp into a new byte slice.
func EncodeResponse(resp *Response) ([]byte, error) {
	return AppendResponse(nil, resp)
}

// DecodeResponse decodes a response frame payload into resp and validates it.
// The ack, the command and the status block with its revision, capacity,
// max point rate and status keys are required. resp is overwritten entirely,
// so callers may reuse one value across reads.
func DecodeResponse(data []byte, resp *Response) error {
	*resp = Response{}
	var f responseFrame
	if err := decMode.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if err := f.response(resp); err != nil {
		return err
	}
	return resp.Validate()
}

func appendCBOR(dst []byte, v any) ([]byte, error) {
	buf := bytes.NewBuffer(dst[:0])
	if err := encMode.MarshalToBuffer(v, buf); err != nil {
		return dst[:0], err
	}
	return buf.Bytes(), nil
}
