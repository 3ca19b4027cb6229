package interactive

import (
	"fmt"
	"math"

	"github.com/lasercast/dac-go/pkg/dac"
)

const (
	maxCoord = math.MaxInt16
	fullOn   = math.MaxUint16
)

// shapes maps pattern names to point generators.
var shapes = map[string]func(n int) []dac.Point{
	"circle": circle,
	"square": square,
	"blank":  blank,
}

// pattern returns n points of the named shape.
func pattern(name string, n int) ([]dac.Point, error) {
	gen, ok := shapes[name]
	if !ok {
		return nil, fmt.Errorf("unknown pattern: %s (use: circle, square, blank)", name)
	}
	return gen(n), nil
}

func circle(n int) []dac.Point {
	pts := make([]dac.Point, n)
	for i := range pts {
		theta := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = dac.Point{
			X: int16(math.Cos(theta) * maxCoord),
			Y: int16(math.Sin(theta) * maxCoord),
			R: fullOn,
			G: fullOn,
			B: fullOn,
			I: fullOn,
		}
	}
	return pts
}

// square traces the outline of a square, spending n/4 points per side.
func square(n int) []dac.Point {
	corners := [5][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}, {-1, -1}}
	pts := make([]dac.Point, n)
	for i := range pts {
		pos := 4 * float64(i) / float64(n)
		side := int(pos)
		t := pos - float64(side)
		from, to := corners[side], corners[side+1]
		pts[i] = dac.Point{
			X: int16((from[0] + (to[0]-from[0])*t) * maxCoord),
			Y: int16((from[1] + (to[1]-from[1])*t) * maxCoord),
			G: fullOn,
			I: fullOn,
		}
	}
	return pts
}

func blank(n int) []dac.Point {
	pts := make([]dac.Point, n)
	for i := range pts {
		pts[i] = dac.Blank(0, 0)
	}
	return pts
}
