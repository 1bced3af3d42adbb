package shape

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-draw/internal/geomath"
)

// MinDimension is the smallest rectangle side in meters.
const MinDimension = 1.0

// Corner indexes of RotatedCorners, before rotation.
const (
	CornerNW = iota
	CornerNE
	CornerSE
	CornerSW
)

// Rectangle is a center, a width (east-west) and height (north-south) in meters,
// and a clockwise screen rotation in degrees. Rotation is applied in projected
// pixel space so the rectangle stays square-cornered on the map.
type Rectangle struct {
	base
	center   orb.Point
	width    float64
	height   float64
	rotation float64

	projector geomath.Projector
	frame     *geomath.Frame
	corners   [4]orb.Point
}

// NewRectangle creates a rectangle. Width and height must be at least
// MinDimension.
func NewRectangle(center orb.Point, width, height, rotation float64, opts ...Option) (*Rectangle, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	r := &Rectangle{
		base:      newBase(KindRectangle, o),
		center:    center,
		width:     width,
		height:    height,
		rotation:  geomath.NormalizeAngle(rotation),
		projector: o.projector,
		frame:     geomath.NewFrame(center),
	}
	r.compute = r.computeProperties
	r.placeCorners()
	return r, nil
}

// boundsGeometry returns the center and metric size of an unrotated box.
func boundsGeometry(b orb.Bound) (center orb.Point, w, h float64) {
	center = b.Center()
	f := geomath.NewFrame(center)
	minX, minY := f.ToLocal(b.Min)
	maxX, maxY := f.ToLocal(b.Max)
	return center, maxX - minX, maxY - minY
}

func checkDimensions(w, h float64) error {
	if !(w >= MinDimension) || !(h >= MinDimension) || math.IsInf(w, 0) || math.IsInf(h, 0) {
		return fmt.Errorf("%vx%v m: %w", w, h, ErrInvalidDimension)
	}
	return nil
}

func (r *Rectangle) Center() orb.Point { return r.center }
func (r *Rectangle) Width() float64 { return r.width }
func (r *Rectangle) Height() float64 { return r.height }
func (r *Rectangle) Rotation() float64 { return r.rotation }

// RotatedCorners returns the corners in NW, NE, SE, SW order of the unrotated
// rectangle.
func (r *Rectangle) RotatedCorners() []orb.Point {
	return append([]orb.Point(nil), r.corners[:]...)
}

// SetRotation sets the clockwise rotation in degrees.
func (r *Rectangle) SetRotation(angle float64) {
	r.rotation = geomath.NormalizeAngle(angle)
	r.invalidate()
	r.placeCorners()
	r.emit(Event{Type: RotationUpdated, Rotation: r.rotation})
}

// SetDimensions changes width and height around the current center.
func (r *Rectangle) SetDimensions(width, height float64) error {
	if err := checkDimensions(width, height); err != nil {
		return err
	}
	r.width, r.height = width, height
	r.invalidate()
	r.placeCorners()
	r.emit(Event{Type: DimensionsUpdated, Width: width, Height: height})
	return nil
}

func (r *Rectangle) SetCenter(c orb.Point) {
	r.center = c
	r.frame.Recenter(c)
	r.invalidate()
	r.placeCorners()
}

func (r *Rectangle) Move(d Delta) {
	if d.IsZero() {
		return
	}
	r.SetCenter(d.Apply(r.center))
}

func (r *Rectangle) Bound() orb.Bound { return geomath.Bound(r.corners[:]) }

// ResizeFromCorner resizes symmetrically about the center so that a corner lands
// on p. Any corner works; sides are clamped to MinDimension.
func (r *Rectangle) ResizeFromCorner(p orb.Point) {
	cpx := r.projector.LatLngToContainerPoint(r.center)
	px := geomath.RotatePixel(r.projector.LatLngToContainerPoint(p), cpx, -r.rotation)
	x, y := r.frame.ToLocal(r.projector.ContainerPointToLatLng(px))
	_ = r.SetDimensions(math.Max(MinDimension, 2*math.Abs(x)), math.Max(MinDimension, 2*math.Abs(y)))
}

// RotationHandle is the point above the top edge, rotated with the rectangle.
func (r *Rectangle) RotationHandle() orb.Point {
	north := r.height/2 + math.Max(r.height*0.2, 2)
	return r.rotate(geomath.Offset(r.center, 0, north))
}

// RotateToward sets the rotation so the rotation handle points at p.
func (r *Rectangle) RotateToward(p orb.Point) {
	r.SetRotation(geomath.ScreenRotation(
		r.projector.LatLngToContainerPoint(r.center),
		r.projector.LatLngToContainerPoint(p),
	))
}

func (r *Rectangle) rotate(p orb.Point) orb.Point {
	if r.rotation == 0 {
		return p
	}
	cpx := r.projector.LatLngToContainerPoint(r.center)
	px := geomath.RotatePixel(r.projector.LatLngToContainerPoint(p), cpx, r.rotation)
	return r.projector.ContainerPointToLatLng(px)
}

func (r *Rectangle) placeCorners() {
	hw, hh := r.width/2, r.height/2
	unrotated := [4]orb.Point{
		CornerNW: geomath.Offset(r.center, -hw, hh),
		CornerNE: geomath.Offset(r.center, hw, hh),
		CornerSE: geomath.Offset(r.center, hw, -hh),
		CornerSW: geomath.Offset(r.center, -hw, -hh),
	}
	for i, p := range unrotated {
		r.corners[i] = r.rotate(p)
	}
	r.emit(Event{Type: CoordinatesUpdated, Coordinates: r.RotatedCorners()})
}

func (r *Rectangle) computeProperties() (Properties, error) {
	return Properties{
		Center:    r.center,
		Width:     r.width,
		Height:    r.height,
		Rotation:  r.rotation,
		Surface:   r.width * r.height,
		Perimeter: 2 * (r.width + r.height),
	}, nil
}

// Snapshot writes the unrotated bounds next to center and size, so readers that
// only understand bounds still get the rectangle's extent.
func (r *Rectangle) Snapshot() (Record, error) {
	center := r.center
	hw, hh := r.width/2, r.height/2
	return encodeRecord(KindRectangle, rectangleData{
		ID:       r.id,
		Center:   &center,
		Width:    r.width,
		Height:   r.height,
		Rotation: r.rotation,
		Bounds: &boundsData{
			SouthWest: geomath.Offset(center, -hw, -hh),
			NorthEast: geomath.Offset(center, hw, hh),
		},
		Style: r.style,
	})
}

func (r *Rectangle) Restore(rec Record) error {
	var d rectangleData
	if err := decodeRecord(rec, KindRectangle, &d); err != nil {
		return err
	}
	center, w, h, err := d.geometry()
	if err != nil {
		return err
	}
	r.center, r.width, r.height = center, w, h
	r.rotation = geomath.NormalizeAngle(d.Rotation)
	r.frame.Recenter(center)
	r.style = restoredStyle(d.Style)
	r.invalidate()
	r.placeCorners()
	return nil
}
