package shape

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-draw/internal/geomath"
)

// Line is an open polyline of at least two vertices. Consecutive vertices may
// coincide.
type Line struct {
	base
	path path
}

// NewLine creates a polyline.
func NewLine(points []orb.Point, opts ...Option) (*Line, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("line needs 2 points, got %d: %w", len(points), ErrTooFewPoints)
	}
	l := &Line{base: newBase(KindLine, buildOptions(opts)), path: newPath(points, false)}
	l.compute = l.computeProperties
	return l, nil
}

func (l *Line) Points() []orb.Point { return l.path.copyPoints() }

func (l *Line) SetPoints(points []orb.Point) {
	l.path = newPath(points, false)
	l.invalidate()
}

func (l *Line) MoveVertex(i int, pt orb.Point) error {
	if err := l.path.set(i, pt); err != nil {
		return err
	}
	l.invalidate()
	return nil
}

// AddVertex splits segment into two at pt and returns the new vertex index.
func (l *Line) AddVertex(segment int, pt orb.Point) (int, error) {
	i, err := l.path.insertAfter(segment, pt)
	if err != nil {
		return 0, err
	}
	l.invalidate()
	return i, nil
}

func (l *Line) RemoveVertex(i int) error {
	if l.path.len() <= 2 {
		return fmt.Errorf("line has %d vertices: %w", l.path.len(), ErrTooFewPoints)
	}
	if err := l.path.remove(i); err != nil {
		return err
	}
	l.invalidate()
	return nil
}

func (l *Line) MidPoints() []orb.Point { return l.path.midPoints() }

func (l *Line) Move(d Delta) {
	if d.IsZero() {
		return
	}
	l.path.move(d)
	l.invalidate()
}

func (l *Line) Bound() orb.Bound { return l.path.bound() }

func (l *Line) computeProperties() (Properties, error) {
	return pathProperties(l.path.points)
}

// pathProperties are the derived values of an open polyline. The label anchor
// sits halfway along the line.
func pathProperties(pts []orb.Point) (Properties, error) {
	if len(pts) < 2 {
		return Properties{}, fmt.Errorf("%d vertices: %w", len(pts), ErrTooFewPoints)
	}
	length := geomath.LineLength(pts)
	return Properties{
		Center:         geomath.PointAlong(pts, length/2),
		Length:         length,
		VertexCount:    len(pts),
		SegmentLengths: geomath.SegmentLengths(pts),
	}, nil
}

func (l *Line) Snapshot() (Record, error) {
	return encodeRecord(KindLine, pathData{ID: l.id, Points: l.Points(), Style: l.style})
}

func (l *Line) Restore(r Record) error {
	var d pathData
	if err := decodeRecord(r, KindLine, &d); err != nil {
		return err
	}
	if len(d.Points) < 2 {
		return fmt.Errorf("line: %w: %w", ErrInvalidRecord, ErrTooFewPoints)
	}
	l.path = newPath(d.Points, false)
	l.style = restoredStyle(d.Style)
	l.invalidate()
	return nil
}
