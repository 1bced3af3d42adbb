package geomath

import (
	"math"

	"github.com/paulmach/orb"
)

// maxCachedAngles bounds the per-frame trig table. Handles only ever use a few
// discrete angles (cardinal points, section boundaries).
const maxCachedAngles = 64

type sincos struct {
	sin, cos float64
}

// Frame is a local equirectangular frame around a center point. It caches cos(lat)
// for the center and sin/cos for every angle it has been asked about, so repeated
// handle placement during a drag does no redundant trigonometry.
//
// A Frame is not safe for concurrent use.
type Frame struct {
	center orb.Point
	cosLat float64
	trig   map[float64]sincos
}

// NewFrame creates a frame centered at center.
func NewFrame(center orb.Point) *Frame {
	return &Frame{
		center: center,
		cosLat: math.Cos(center.Lat() * math.Pi / 180),
		trig:   make(map[float64]sincos),
	}
}

// Center returns the frame origin.
func (f *Frame) Center() orb.Point {
	return f.center
}

// CosLat returns the cached cosine of the center latitude.
func (f *Frame) CosLat() float64 {
	return f.cosLat
}

// Recenter moves the frame. The trig table survives; cos(lat) is recomputed only
// when the latitude actually changes.
func (f *Frame) Recenter(center orb.Point) {
	if center.Lat() != f.center.Lat() {
		f.cosLat = math.Cos(center.Lat() * math.Pi / 180)
	}
	f.center = center
}

// PointAt returns the point radius meters away along a math angle.
func (f *Frame) PointAt(radius, angleDeg float64) orb.Point {
	sc := f.sincos(NormalizeAngle(angleDeg))
	dLat := radius / MetersPerDegree * sc.sin
	dLng := radius / (MetersPerDegree * f.cosLat) * sc.cos
	return orb.Point{f.center[0] + dLng, f.center[1] + dLat}
}

// ToLocal converts p to meters east/north of the frame center.
func (f *Frame) ToLocal(p orb.Point) (x, y float64) {
	x = (p[0] - f.center[0]) * MetersPerDegree * f.cosLat
	y = (p[1] - f.center[1]) * MetersPerDegree
	return x, y
}

// FromLocal converts meters east/north of the center back to a geographic point.
func (f *Frame) FromLocal(x, y float64) orb.Point {
	return orb.Point{
		f.center[0] + x/(MetersPerDegree*f.cosLat),
		f.center[1] + y/MetersPerDegree,
	}
}

func (f *Frame) sincos(angle float64) sincos {
	if sc, ok := f.trig[angle]; ok {
		return sc
	}
	if len(f.trig) >= maxCachedAngles {
		f.trig = make(map[float64]sincos)
	}
	rad := angle * math.Pi / 180
	sc := sincos{sin: math.Sin(rad), cos: math.Cos(rad)}
	f.trig[angle] = sc
	return sc
}
