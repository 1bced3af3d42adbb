package shape

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-draw/internal/geomath"
)

// Polygon is a closed ring of at least three distinct vertices.
type Polygon struct {
	base
	ring path
}

// NewPolygon creates a polygon. An explicit closing vertex is dropped.
func NewPolygon(points []orb.Point, opts ...Option) (*Polygon, error) {
	ring := newPath(points, true)
	if ring.distinct() < 3 {
		return nil, fmt.Errorf("polygon needs 3 distinct points, got %d: %w", ring.distinct(), ErrTooFewPoints)
	}
	p := &Polygon{base: newBase(KindPolygon, buildOptions(opts)), ring: ring}
	p.compute = p.computeProperties
	return p, nil
}

// Points returns a copy of the open ring.
func (p *Polygon) Points() []orb.Point { return p.ring.copyPoints() }

// SetPoints replaces the ring. Validity is checked on the next commit.
func (p *Polygon) SetPoints(points []orb.Point) {
	p.ring = newPath(points, true)
	p.invalidate()
}

// MoveVertex moves vertex i to pt.
func (p *Polygon) MoveVertex(i int, pt orb.Point) error {
	if err := p.ring.set(i, pt); err != nil {
		return err
	}
	p.invalidate()
	return nil
}

// AddVertex splits segment into two at pt and returns the new vertex index.
// Segment len-1 is the closing edge.
func (p *Polygon) AddVertex(segment int, pt orb.Point) (int, error) {
	i, err := p.ring.insertAfter(segment, pt)
	if err != nil {
		return 0, err
	}
	p.invalidate()
	return i, nil
}

// RemoveVertex deletes vertex i unless that would leave fewer than three.
func (p *Polygon) RemoveVertex(i int) error {
	if p.ring.len() <= 3 {
		return fmt.Errorf("polygon has %d vertices: %w", p.ring.len(), ErrTooFewPoints)
	}
	if err := p.ring.remove(i); err != nil {
		return err
	}
	p.invalidate()
	return nil
}

// MidPoints returns the midpoint of every edge, including the closing edge.
func (p *Polygon) MidPoints() []orb.Point { return p.ring.midPoints() }

func (p *Polygon) Move(d Delta) {
	if d.IsZero() {
		return
	}
	p.ring.move(d)
	p.invalidate()
}

func (p *Polygon) Bound() orb.Bound { return p.ring.bound() }

func (p *Polygon) computeProperties() (Properties, error) {
	if n := p.ring.distinct(); n < 3 {
		return Properties{}, fmt.Errorf("%d distinct vertices: %w", n, ErrTooFewPoints)
	}
	pts := p.ring.points
	return Properties{
		Center:         geomath.Centroid(pts),
		Surface:        geomath.PolygonArea(pts),
		Perimeter:      geomath.PolygonPerimeter(pts),
		VertexCount:    len(pts),
		SegmentLengths: geomath.SegmentLengths(geomath.CloseRing(pts)),
	}, nil
}

func (p *Polygon) Snapshot() (Record, error) {
	return encodeRecord(KindPolygon, pathData{ID: p.id, Points: p.Points(), Style: p.style})
}

func (p *Polygon) Restore(r Record) error {
	var d pathData
	if err := decodeRecord(r, KindPolygon, &d); err != nil {
		return err
	}
	ring := newPath(d.Points, true)
	if ring.distinct() < 3 {
		return fmt.Errorf("polygon: %w: %w", ErrInvalidRecord, ErrTooFewPoints)
	}
	p.ring = ring
	p.style = restoredStyle(d.Style)
	p.invalidate()
	return nil
}
