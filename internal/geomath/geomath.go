// Package geomath contains the stateless geodesic and projective helpers used by
// the shape engine.
//
// Points are orb.Point values in [lng, lat] order (degrees). Lengths are meters,
// areas square meters. The helpers favour the small-extent approximations that are
// accurate at the scale of individual plots over full geodesic solutions.
package geomath

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// MetersPerDegree is the equirectangular meters-per-degree factor used by
// PointAtAngle and its inverse.
const MetersPerDegree = 111319.9

// BoundsMetersPerDegree is the coarser factor used for bounding boxes.
const BoundsMetersPerDegree = 111000.0

// groundResolution is the Web-Mercator meters-per-pixel at zoom 0 on the equator.
const groundResolution = 156543.03392

// PointAtAngle returns the point at radius meters from center along a math angle
// (0° east, counter-clockwise).
func PointAtAngle(center orb.Point, radius, angleDeg float64) orb.Point {
	return NewFrame(center).PointAt(radius, angleDeg)
}

// Offset moves center by eastM meters east and northM meters north using the
// destination formula along two bearings.
func Offset(center orb.Point, eastM, northM float64) orb.Point {
	p := center
	if northM != 0 {
		bearing := 0.0
		if northM < 0 {
			bearing = 180
		}
		p = geo.PointAtBearingAndDistance(p, bearing, math.Abs(northM))
	}
	if eastM != 0 {
		bearing := 90.0
		if eastM < 0 {
			bearing = 270
		}
		p = geo.PointAtBearingAndDistance(p, bearing, math.Abs(eastM))
	}
	return p
}

// Translate shifts p by the given degree deltas.
func Translate(p orb.Point, dLat, dLng float64) orb.Point {
	return orb.Point{p[0] + dLng, p[1] + dLat}
}

// Interpolate returns the point at fraction t of the way from a to b, linear in
// degrees.
func Interpolate(a, b orb.Point, t float64) orb.Point {
	return orb.Point{a[0] + (b[0]-a[0])*t, a[1] + (b[1]-a[1])*t}
}

// Midpoint is Interpolate at one half.
func Midpoint(a, b orb.Point) orb.Point {
	return Interpolate(a, b, 0.5)
}

// MetersToPixels converts a ground distance to screen pixels at a latitude and zoom
// using the Web-Mercator ground resolution.
func MetersToPixels(meters, lat, zoom float64) float64 {
	return meters / metersPerPixel(lat, zoom)
}

// PixelsToMeters is the inverse of MetersToPixels.
func PixelsToMeters(pixels, lat, zoom float64) float64 {
	return pixels * metersPerPixel(lat, zoom)
}

func metersPerPixel(lat, zoom float64) float64 {
	return groundResolution * math.Cos(lat*math.Pi/180) / math.Pow(2, zoom)
}
