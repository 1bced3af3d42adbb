package geomath

import (
	"math"

	"github.com/paulmach/orb"
)

// There are two angle conventions in the engine and they are deliberately kept
// apart:
//
//   - math angles (MathAngle, PointAtAngle): 0° east, counter-clockwise, measured
//     in a local metric frame around a geographic center. Circles and sections use
//     these.
//   - screen rotations (ScreenRotation): 0° pointing up, clockwise-positive,
//     measured on container pixels with y growing downwards. Rectangles use these.

// NormalizeAngle maps any angle in degrees into [0,360).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a = 0
	}
	return a
}

// MathAngle returns the math angle in [0,360) from center to point.
func MathAngle(center, point orb.Point) float64 {
	x, y := NewFrame(center).ToLocal(point)
	if x == 0 && y == 0 {
		return 0
	}
	return NormalizeAngle(math.Atan2(y, x) * 180 / math.Pi)
}

// ScreenRotation returns the clockwise rotation in [0,360) of the handle at
// pointPx around centerPx, where 0° is straight up on screen.
func ScreenRotation(centerPx, pointPx orb.Point) float64 {
	dx := pointPx[0] - centerPx[0]
	dy := centerPx[1] - pointPx[1]
	if dx == 0 && dy == 0 {
		return 0
	}
	atan := math.Atan2(dy, dx) * 180 / math.Pi
	return NormalizeAngle(90 - atan)
}

// RotatePixel rotates p around c by angleDeg, clockwise on screen.
func RotatePixel(p, c orb.Point, angleDeg float64) orb.Point {
	rad := angleDeg * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	dx, dy := p[0]-c[0], p[1]-c[1]
	return orb.Point{
		c[0] + dx*cos - dy*sin,
		c[1] + dx*sin + dy*cos,
	}
}

// OpeningAngle returns the counter-clockwise sweep from start to end in [0,360).
func OpeningAngle(start, end float64) float64 {
	return NormalizeAngle(end - start)
}
