package shape

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-draw/internal/geomath"
)

// path is an ordered vertex list shared by polygons and lines. A closed path has
// an implicit segment from the last vertex back to the first.
type path struct {
	points []orb.Point
	closed bool
}

func newPath(points []orb.Point, closed bool) path {
	pts := append([]orb.Point(nil), points...)
	// Stored rings are open; drop an explicit closing point.
	if closed && len(pts) > 1 && pts[0].Equal(pts[len(pts)-1]) {
		pts = pts[:len(pts)-1]
	}
	return path{points: pts, closed: closed}
}

func (p *path) copyPoints() []orb.Point {
	return append([]orb.Point(nil), p.points...)
}

func (p *path) len() int { return len(p.points) }

func (p *path) segmentCount() int {
	switch {
	case len(p.points) < 2:
		return 0
	case p.closed:
		return len(p.points)
	default:
		return len(p.points) - 1
	}
}

// segment returns the endpoints of segment i.
func (p *path) segment(i int) (orb.Point, orb.Point) {
	return p.points[i], p.points[(i+1)%len(p.points)]
}

func (p *path) midPoints() []orb.Point {
	n := p.segmentCount()
	out := make([]orb.Point, n)
	for i := 0; i < n; i++ {
		a, b := p.segment(i)
		out[i] = geomath.Midpoint(a, b)
	}
	return out
}

func (p *path) set(i int, pt orb.Point) error {
	if i < 0 || i >= len(p.points) {
		return fmt.Errorf("vertex %d of %d: %w", i, len(p.points), ErrIndexOutOfRange)
	}
	p.points[i] = pt
	return nil
}

// insertAfter inserts pt into segment i and returns the new vertex index.
func (p *path) insertAfter(segment int, pt orb.Point) (int, error) {
	if segment < 0 || segment >= p.segmentCount() {
		return 0, fmt.Errorf("segment %d of %d: %w", segment, p.segmentCount(), ErrIndexOutOfRange)
	}
	at := segment + 1
	p.points = append(p.points, orb.Point{})
	copy(p.points[at+1:], p.points[at:])
	p.points[at] = pt
	return at, nil
}

func (p *path) remove(i int) error {
	if i < 0 || i >= len(p.points) {
		return fmt.Errorf("vertex %d of %d: %w", i, len(p.points), ErrIndexOutOfRange)
	}
	p.points = append(p.points[:i], p.points[i+1:]...)
	return nil
}

func (p *path) move(d Delta) {
	for i := range p.points {
		p.points[i] = d.Apply(p.points[i])
	}
}

func (p *path) bound() orb.Bound {
	return geomath.Bound(p.points)
}

// distinct counts vertices that differ from every earlier vertex.
func (p *path) distinct() int {
	n := 0
	for i, pt := range p.points {
		seen := false
		for _, q := range p.points[:i] {
			if q.Equal(pt) {
				seen = true
				break
			}
		}
		if !seen {
			n++
		}
	}
	return n
}
