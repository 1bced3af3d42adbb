package coverage

import (
	"math"
	"sort"

	"github.com/ctessum/geom"
	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-draw/internal/geomath"
	"github.com/joeblew999/plat-draw/internal/shape"
)

// Polygon approximation resolution.
const (
	CircleSteps = 256
	SectorSteps = 64
)

// hasArea reports whether s contributes to coverage. Lines and notes do not.
func hasArea(s shape.Shape) bool {
	switch s.(type) {
	case *shape.Polygon, *shape.Circle, *shape.SectionedCircle, *shape.Rectangle:
		return true
	}
	return false
}

// footprint converts s to a polygon in the meter frame f.
func footprint(s shape.Shape, f *geomath.Frame) geom.Polygon {
	switch v := s.(type) {
	case *shape.Polygon:
		return ringPolygon(v.Points(), f)
	case *shape.Rectangle:
		return ringPolygon(v.RotatedCorners(), f)
	case *shape.Circle:
		cx, cy := f.ToLocal(v.Center())
		return geom.Polygon{arc(nil, cx, cy, v.Radius(), 0, 360, CircleSteps, false)}
	case *shape.SectionedCircle:
		return sectorsPolygon(v, f)
	}
	return nil
}

func ringPolygon(pts []orb.Point, f *geomath.Frame) geom.Polygon {
	path := make(geom.Path, 0, len(pts)+1)
	for _, p := range pts {
		x, y := f.ToLocal(p)
		path = append(path, geom.Point{X: x, Y: y})
	}
	return geom.Polygon{closePath(path)}
}

// arc appends points on a circle of radius r from angle a to b (degrees). The end
// point is included when inclusive is set.
func arc(path geom.Path, cx, cy, r, a, b float64, steps int, inclusive bool) geom.Path {
	n := steps
	if inclusive {
		n++
	}
	for i := 0; i < n; i++ {
		t := (a + (b-a)*float64(i)/float64(steps)) * math.Pi / 180
		path = append(path, geom.Point{X: cx + r*math.Cos(t), Y: cy + r*math.Sin(t)})
	}
	return path
}

// sectorsPolygon is the star-shaped outline of the union of a circle's sections:
// between consecutive section boundaries the outline follows the largest radius
// covering that direction, or collapses to the center where nothing does. A
// circle without sections covers its full disc.
func sectorsPolygon(c *shape.SectionedCircle, f *geomath.Frame) geom.Polygon {
	cx, cy := f.ToLocal(c.Center())
	sections := c.Sections()
	if len(sections) == 0 {
		return geom.Polygon{arc(nil, cx, cy, c.Radius(), 0, 360, CircleSteps, false)}
	}

	var bounds []float64
	for _, s := range sections {
		if !s.IsFull() {
			bounds = append(bounds, s.StartAngle, s.EndAngle)
		}
	}
	if len(bounds) == 0 {
		return geom.Polygon{arc(nil, cx, cy, maxRadius(sections, 0), 0, 360, CircleSteps, false)}
	}
	sort.Float64s(bounds)
	bounds = dedupe(bounds)

	var path geom.Path
	center := geom.Point{X: cx, Y: cy}
	for i, a := range bounds {
		b := bounds[0] + 360
		if i+1 < len(bounds) {
			b = bounds[i+1]
		}
		r := maxRadius(sections, geomath.NormalizeAngle((a+b)/2))
		if r == 0 {
			if len(path) == 0 || path[len(path)-1] != center {
				path = append(path, center)
			}
			continue
		}
		path = arc(path, cx, cy, r, a, b, SectorSteps, true)
	}
	if len(path) > 1 && path[0] == path[len(path)-1] {
		path = path[:len(path)-1]
	}
	return geom.Polygon{closePath(path)}
}

func maxRadius(sections []shape.Section, angle float64) float64 {
	r := 0.0
	for _, s := range sections {
		if s.Contains(angle) {
			r = math.Max(r, s.Radius)
		}
	}
	return r
}

func dedupe(sorted []float64) []float64 {
	out := sorted[:0]
	for _, v := range sorted {
		if len(out) == 0 || v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

func closePath(p geom.Path) geom.Path {
	if len(p) > 0 && p[0] != p[len(p)-1] {
		p = append(p, p[0])
	}
	return p
}

// ringArea is the absolute shoelace area of the polygon's rings.
func ringArea(p geom.Polygon) float64 {
	if len(p) == 0 {
		return 0
	}
	return math.Abs(p.Area())
}

func samePolygon(a, b geom.Polygon) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}
