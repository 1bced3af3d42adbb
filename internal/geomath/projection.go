package geomath

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// Projector converts between geographic coordinates and map container pixels.
// The map host owns the real implementation; MercatorProjector is used when no
// host is attached.
type Projector interface {
	LatLngToContainerPoint(p orb.Point) orb.Point
	ContainerPointToLatLng(px orb.Point) orb.Point
}

// mercatorHalfWorld is half the Web-Mercator world width in meters.
const mercatorHalfWorld = 20037508.342789244

// MercatorProjector is a Web-Mercator projector at a fixed zoom. Origin is the
// geographic point at container pixel (0, 0); a zero Origin means world pixels.
type MercatorProjector struct {
	Zoom   float64
	Origin orb.Point
}

// NewMercatorProjector creates a projector at zoom with world-pixel origin.
func NewMercatorProjector(zoom float64) *MercatorProjector {
	return &MercatorProjector{Zoom: zoom}
}

func (m *MercatorProjector) resolution() float64 {
	return groundResolution / math.Pow(2, m.Zoom)
}

func (m *MercatorProjector) world(p orb.Point) orb.Point {
	merc := project.WGS84.ToMercator(p)
	res := m.resolution()
	return orb.Point{
		(merc[0] + mercatorHalfWorld) / res,
		(mercatorHalfWorld - merc[1]) / res,
	}
}

// LatLngToContainerPoint implements Projector.
func (m *MercatorProjector) LatLngToContainerPoint(p orb.Point) orb.Point {
	w := m.world(p)
	if m.Origin != (orb.Point{}) {
		o := m.world(m.Origin)
		w = orb.Point{w[0] - o[0], w[1] - o[1]}
	}
	return w
}

// ContainerPointToLatLng implements Projector.
func (m *MercatorProjector) ContainerPointToLatLng(px orb.Point) orb.Point {
	if m.Origin != (orb.Point{}) {
		o := m.world(m.Origin)
		px = orb.Point{px[0] + o[0], px[1] + o[1]}
	}
	res := m.resolution()
	merc := orb.Point{
		px[0]*res - mercatorHalfWorld,
		mercatorHalfWorld - px[1]*res,
	}
	return project.Mercator.ToWGS84(merc)
}
