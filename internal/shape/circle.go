package shape

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-draw/internal/geomath"
)

// MinRadius is the smallest radius a resize gesture can produce, in meters.
const MinRadius = 1.0

// circleGeometry is the center/radius pair shared by plain and sectioned circles.
// The frame caches cos(lat) and handle trig across a drag.
type circleGeometry struct {
	center orb.Point
	radius float64
	frame  *geomath.Frame

	cardinals      []orb.Point
	cardinalsValid bool
}

func newCircleGeometry(center orb.Point, radius float64) (circleGeometry, error) {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return circleGeometry{}, fmt.Errorf("radius %v: %w", radius, ErrInvalidDimension)
	}
	return circleGeometry{center: center, radius: radius, frame: geomath.NewFrame(center)}, nil
}

func (g *circleGeometry) setCenter(c orb.Point) {
	g.center = c
	g.frame.Recenter(c)
	g.cardinalsValid = false
}

func (g *circleGeometry) setRadius(r float64) {
	g.radius = r
	g.cardinalsValid = false
}

// pointAt places a point on a circle of radius r around the center.
func (g *circleGeometry) pointAt(r, angle float64) orb.Point {
	return g.frame.PointAt(r, angle)
}

// cardinalPoints are the resize handles in N, E, S, W order.
func (g *circleGeometry) cardinalPoints() []orb.Point {
	if !g.cardinalsValid {
		g.cardinals = []orb.Point{
			g.pointAt(g.radius, 90),
			g.pointAt(g.radius, 0),
			g.pointAt(g.radius, 270),
			g.pointAt(g.radius, 180),
		}
		g.cardinalsValid = true
	}
	return append([]orb.Point(nil), g.cardinals...)
}

func (g *circleGeometry) radiusTo(p orb.Point) float64 {
	return math.Max(MinRadius, geomath.Distance(g.center, p))
}

func (g *circleGeometry) bound() orb.Bound {
	return geomath.CircleBound(g.center, g.radius)
}

func (g *circleGeometry) area() float64 {
	return math.Pi * g.radius * g.radius
}

// Circle is a center and a radius in meters.
type Circle struct {
	base
	geom circleGeometry
}

// NewCircle creates a circle. The radius must be positive.
func NewCircle(center orb.Point, radius float64, opts ...Option) (*Circle, error) {
	g, err := newCircleGeometry(center, radius)
	if err != nil {
		return nil, err
	}
	c := &Circle{base: newBase(KindCircle, buildOptions(opts)), geom: g}
	c.compute = c.computeProperties
	return c, nil
}

func (c *Circle) Center() orb.Point { return c.geom.center }
func (c *Circle) Radius() float64 { return c.geom.radius }

func (c *Circle) SetCenter(p orb.Point) {
	c.geom.setCenter(p)
	c.invalidate()
}

func (c *Circle) SetRadius(r float64) error {
	if !(r > 0) {
		return fmt.Errorf("radius %v: %w", r, ErrInvalidDimension)
	}
	c.geom.setRadius(r)
	c.invalidate()
	return nil
}

// ResizeFromControlPoint sets the radius to the distance from the center to p.
func (c *Circle) ResizeFromControlPoint(p orb.Point) {
	c.geom.setRadius(c.geom.radiusTo(p))
	c.invalidate()
}

// CardinalPoints returns the N, E, S, W points on the circle.
func (c *Circle) CardinalPoints() []orb.Point { return c.geom.cardinalPoints() }

func (c *Circle) Move(d Delta) {
	if d.IsZero() {
		return
	}
	c.geom.setCenter(d.Apply(c.geom.center))
	c.invalidate()
}

func (c *Circle) Bound() orb.Bound { return c.geom.bound() }

func (c *Circle) computeProperties() (Properties, error) {
	return Properties{
		Center:    c.geom.center,
		Radius:    c.geom.radius,
		Surface:   c.geom.area(),
		Perimeter: 2 * math.Pi * c.geom.radius,
	}, nil
}

func (c *Circle) Snapshot() (Record, error) {
	center, radius := c.geom.center, c.geom.radius
	return encodeRecord(KindCircle, circleData{ID: c.id, Center: &center, Radius: &radius, Style: c.style})
}

func (c *Circle) Restore(r Record) error {
	var d circleData
	if err := decodeRecord(r, KindCircle, &d); err != nil {
		return err
	}
	g, err := d.geometry()
	if err != nil {
		return err
	}
	c.geom = g
	c.style = restoredStyle(d.Style)
	c.invalidate()
	return nil
}
