package dac

// Point is a single laser point as streamed to an Ether Dream DAC.
//
// CBOR encoding is a fixed nine-element array in field order.
type Point struct {
	_ struct{} `cbor:",toarray"`

	// Control carries per-point flags (bit 15: change point rate).
	Control uint16
	X       int16
	Y       int16
	R       uint16
	G       uint16
	B       uint16
	I       uint16
	U1      uint16
	U2      uint16
}

// ControlRateChange marks a point at which the DAC applies the next queued point rate.
const ControlRateChange uint16 = 1 << 15

// Blank returns a point at (x, y) with all colour channels off.
func Blank(x, y int16) Point {
	return Point{X: x, Y: y}
}
