// Package shape contains the drawable shape kinds and their derived-properties
// caches.
//
// Every shape owns its geometry. Geometry changes only through methods, which
// invalidate the cache and bump the geometry version; derived properties are
// recomputed by UpdateProperties (or lazily by Properties). Mutators never
// recompute on their own so that a drag gesture can move a shape many times and
// commit once on release.
//
// Shapes are not safe for concurrent use. The host serializes access.
package shape

import (
	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"

	"github.com/joeblew999/plat-draw/internal/geomath"
)

// Kind identifies a shape type on the wire and in properties.
type Kind string

const (
	KindPolygon         Kind = "Polygon"
	KindLine            Kind = "Line"
	KindElevationLine   Kind = "ElevationLine"
	KindCircle          Kind = "Circle"
	KindSectionedCircle Kind = "CircleWithSections"
	KindRectangle       Kind = "Rectangle"
	KindNote            Kind = "Note"
)

// Shape is the behaviour shared by every shape kind.
type Shape interface {
	ID() string
	Kind() Kind

	Style() Style
	SetStyle(Style)
	Rename(name string)
	Classify(category, accessLevel string)

	// Properties returns the derived properties, committing pending geometry
	// changes first.
	Properties() Properties
	// UpdateProperties recomputes derived properties from the current geometry.
	UpdateProperties() error

	// Move translates every coordinate of the shape.
	Move(Delta)
	Bound() orb.Bound

	// Version increases on every geometry mutation.
	Version() uint64
	// On registers a listener and returns a function that removes it.
	On(Listener) func()

	// Snapshot serializes the current geometry and style.
	Snapshot() (Record, error)
	// Restore replaces geometry and style from a snapshot of the same kind.
	Restore(Record) error

	// Release marks the shape as removed from its host collection.
	Release()
	Alive() bool
}

// Delta is a translation in degrees.
type Delta struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DeltaBetween returns the translation from a to b.
func DeltaBetween(a, b orb.Point) Delta {
	return Delta{Lat: b.Lat() - a.Lat(), Lng: b.Lon() - a.Lon()}
}

// Apply translates p by d.
func (d Delta) Apply(p orb.Point) orb.Point {
	return geomath.Translate(p, d.Lat, d.Lng)
}

// IsZero reports whether d moves nothing.
func (d Delta) IsZero() bool {
	return d.Lat == 0 && d.Lng == 0
}

// Access levels for notes.
const (
	AccessPrivate = "private"
	AccessCompany = "company"
	AccessPublic  = "public"
)

// Style is display metadata. It is never derived from geometry; Name, Category and
// AccessLevel are user classification that recomputation must carry over.
type Style struct {
	Color       string  `json:"color,omitempty"`
	FillColor   string  `json:"fillColor,omitempty"`
	Weight      float64 `json:"weight,omitempty"`
	Opacity     float64 `json:"opacity,omitempty"`
	FillOpacity float64 `json:"fillOpacity,omitempty"`
	Fill        bool    `json:"fill,omitempty"`
	Name        string  `json:"name,omitempty"`
	Category    string  `json:"category,omitempty"`
	AccessLevel string  `json:"accessLevel,omitempty"`
}

// DefaultStyle is applied to shapes created without an explicit style.
var DefaultStyle = Style{
	Color:       "#3388ff",
	FillColor:   "#3388ff",
	Weight:      3,
	Opacity:     1,
	FillOpacity: 0.2,
	Fill:        true,
}

type options struct {
	id        string
	style     *Style
	log       logrus.FieldLogger
	projector geomath.Projector
}

// Option configures a new shape.
type Option func(*options)

// WithID sets the shape ID instead of generating one.
func WithID(id string) Option {
	return func(o *options) { o.id = id }
}

// WithStyle sets the initial style.
func WithStyle(s Style) Option {
	return func(o *options) { o.style = &s }
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.log = l }
}

// WithProjector sets the map projection used by rectangles for pixel-space
// rotation.
func WithProjector(p geomath.Projector) Option {
	return func(o *options) { o.projector = p }
}

// defaultProjector stands in for the map host when none is attached. Pixel
// rotation is conformal, so the zoom only affects numeric resolution.
var defaultProjector geomath.Projector = geomath.NewMercatorProjector(20)

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logrus.StandardLogger()
	}
	if o.projector == nil {
		o.projector = defaultProjector
	}
	return o
}
