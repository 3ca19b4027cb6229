package transport

// FrameReadWriter provides length-prefixed frame I/O.
// Implemented by Framer and Conn.
type FrameReadWriter interface {
	// ReadFrameInto reads the next frame payload into buf, growing it when
	// its capacity is insufficient, and returns the filled slice.
	ReadFrameInto(buf []byte) ([]byte, error)

	// WriteFrame writes data as one length-prefixed frame.
	WriteFrame(data []byte) error
}

// Compile-time interface satisfaction checks.
var (
	_ FrameReadWriter = (*Framer)(nil)
	_ FrameReadWriter = (*Conn)(nil)
)
