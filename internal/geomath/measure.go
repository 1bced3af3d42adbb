package geomath

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

// CloseRing returns ring with its first point repeated at the end. The input is
// not modified.
func CloseRing(ring []orb.Point) orb.Ring {
	out := make(orb.Ring, 0, len(ring)+1)
	out = append(out, ring...)
	if len(ring) > 0 && !ring[0].Equal(ring[len(ring)-1]) {
		out = append(out, ring[0])
	}
	return out
}

// Distance is the great-circle distance between two points in meters.
func Distance(a, b orb.Point) float64 {
	return geo.Distance(a, b)
}

// PolygonArea returns the area of an open ring in square meters.
func PolygonArea(ring []orb.Point) float64 {
	if len(ring) < 3 {
		return 0
	}
	return math.Abs(geo.Area(CloseRing(ring)))
}

// PolygonPerimeter returns the length of an open ring including the closing
// segment.
func PolygonPerimeter(ring []orb.Point) float64 {
	if len(ring) < 2 {
		return 0
	}
	return geo.Length(orb.LineString(CloseRing(ring)))
}

// LineLength returns the length of an open polyline. Coincident consecutive points
// contribute zero.
func LineLength(points []orb.Point) float64 {
	if len(points) < 2 {
		return 0
	}
	return geo.Length(orb.LineString(points))
}

// SegmentLengths returns the length of every segment of points.
func SegmentLengths(points []orb.Point) []float64 {
	if len(points) < 2 {
		return nil
	}
	out := make([]float64, len(points)-1)
	for i := 1; i < len(points); i++ {
		out[i-1] = geo.Distance(points[i-1], points[i])
	}
	return out
}

// Centroid returns the area centroid of an open ring. Degenerate rings fall back
// to the vertex average.
func Centroid(ring []orb.Point) orb.Point {
	if len(ring) == 0 {
		return orb.Point{}
	}
	if len(ring) >= 3 {
		c, area := planar.CentroidArea(orb.Polygon{CloseRing(ring)})
		if area != 0 && !math.IsNaN(c[0]) && !math.IsNaN(c[1]) {
			return c
		}
	}
	var sx, sy float64
	for _, p := range ring {
		sx += p[0]
		sy += p[1]
	}
	n := float64(len(ring))
	return orb.Point{sx / n, sy / n}
}

// DistanceToSegment returns the planar distance from p to segment ab in the units
// of the inputs (pixels for container points). The projection parameter is
// dot/len² clamped to [0,1].
func DistanceToSegment(p, a, b orb.Point) float64 {
	return planar.DistanceFromSegment(a, b, p)
}

// DistanceToSegmentMeters returns the distance in meters from p to segment ab,
// measured in a local equirectangular frame centered on p.
func DistanceToSegmentMeters(p, a, b orb.Point) float64 {
	f := NewFrame(p)
	ax, ay := f.ToLocal(a)
	bx, by := f.ToLocal(b)
	return planar.DistanceFromSegment(orb.Point{ax, ay}, orb.Point{bx, by}, orb.Point{0, 0})
}

// Bound returns the bounding box of points.
func Bound(points []orb.Point) orb.Bound {
	return orb.MultiPoint(points).Bound()
}

// CircleBound returns the approximate bounding box of a circle: radius/111000
// degrees of latitude, widened by cos(lat) in longitude.
func CircleBound(center orb.Point, radius float64) orb.Bound {
	dLat := radius / BoundsMetersPerDegree
	cosLat := math.Cos(center.Lat() * math.Pi / 180)
	dLng := dLat
	if cosLat > 1e-12 {
		dLng = dLat / cosLat
	}
	return orb.Bound{
		Min: orb.Point{center[0] - dLng, center[1] - dLat},
		Max: orb.Point{center[0] + dLng, center[1] + dLat},
	}
}

// PointAlong returns the point at distance meters along the polyline, clamped to
// its endpoints. Segments are interpolated linearly in degrees.
func PointAlong(points []orb.Point, distance float64) orb.Point {
	if len(points) == 0 {
		return orb.Point{}
	}
	if distance <= 0 {
		return points[0]
	}
	walked := 0.0
	for i := 1; i < len(points); i++ {
		seg := geo.Distance(points[i-1], points[i])
		if seg > 0 && walked+seg >= distance {
			return Interpolate(points[i-1], points[i], (distance-walked)/seg)
		}
		walked += seg
	}
	return points[len(points)-1]
}
