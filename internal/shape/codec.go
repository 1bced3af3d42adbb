package shape

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/joeblew999/plat-draw/internal/geomath"
)

// Record is the persisted form of a shape: its kind and kind-specific data.
type Record struct {
	Type Kind            `json:"type"`
	Data json.RawMessage `json:"data"`
}

type pathData struct {
	ID     string      `json:"id,omitempty"`
	Points []orb.Point `json:"points"`
	Style  Style       `json:"style"`
}

type elevationData struct {
	ID         string            `json:"id,omitempty"`
	Points     []orb.Point       `json:"points"`
	Style      Style             `json:"style"`
	Samples    []ElevationSample `json:"samples,omitempty"`
	DataSource DataSource        `json:"dataSource,omitempty"`
}

type circleData struct {
	ID     string     `json:"id,omitempty"`
	Center *orb.Point `json:"center"`
	Radius *float64   `json:"radius"`
	Style  Style      `json:"style"`
}

func (d circleData) geometry() (circleGeometry, error) {
	if d.Center == nil || d.Radius == nil {
		return circleGeometry{}, fmt.Errorf("circle without center or radius: %w", ErrInvalidRecord)
	}
	g, err := newCircleGeometry(*d.Center, *d.Radius)
	if err != nil {
		return g, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	return g, nil
}

type sectionedData struct {
	ID       string     `json:"id,omitempty"`
	Center   *orb.Point `json:"center"`
	Radius   *float64   `json:"radius"`
	Style    Style      `json:"style"`
	Sections []Section  `json:"sections,omitempty"`
}

type boundsData struct {
	SouthWest orb.Point `json:"southWest"`
	NorthEast orb.Point `json:"northEast"`
}

// rectangleData carries center+size and the unrotated bounds. Center wins when
// both are present; records written by older clients only have bounds.
type rectangleData struct {
	ID       string      `json:"id,omitempty"`
	Center   *orb.Point  `json:"center,omitempty"`
	Width    float64     `json:"width,omitempty"`
	Height   float64     `json:"height,omitempty"`
	Rotation float64     `json:"rotation"`
	Bounds   *boundsData `json:"bounds,omitempty"`
	Style    Style       `json:"style"`
}

func (d rectangleData) geometry() (center orb.Point, w, h float64, err error) {
	switch {
	case d.Center != nil:
		center, w, h = *d.Center, d.Width, d.Height
	case d.Bounds != nil:
		center, w, h = boundsGeometry(orb.Bound{Min: d.Bounds.SouthWest, Max: d.Bounds.NorthEast})
	default:
		return center, 0, 0, fmt.Errorf("rectangle without center or bounds: %w", ErrInvalidRecord)
	}
	if err := checkDimensions(w, h); err != nil {
		return center, 0, 0, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	return center, w, h, nil
}

type noteData struct {
	ID          string     `json:"id,omitempty"`
	Point       *orb.Point `json:"point"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Comments    []Comment  `json:"comments,omitempty"`
	Photos      []Photo    `json:"photos,omitempty"`
	Style       Style      `json:"style"`
}

func encodeRecord(kind Kind, v any) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Record{}, fmt.Errorf("encode %s: %w", kind, err)
	}
	return Record{Type: kind, Data: data}, nil
}

func decodeRecord(r Record, kind Kind, v any) error {
	if r.Type != kind {
		return fmt.Errorf("record %s into %s: %w", r.Type, kind, ErrKindMismatch)
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("%s: %w: %w", kind, ErrInvalidRecord, err)
	}
	return nil
}

// Encode serializes a shape.
func Encode(s Shape) (Record, error) {
	return s.Snapshot()
}

// Decode rebuilds a shape from a record. The stored ID and style take precedence
// over opts.
func Decode(r Record, opts ...Option) (Shape, error) {
	switch r.Type {
	case KindPolygon:
		var d pathData
		if err := decodeRecord(r, r.Type, &d); err != nil {
			return nil, err
		}
		return wrapInvalid(NewPolygon(d.Points, restoredOptions(opts, d.ID, d.Style)...))
	case KindLine:
		var d pathData
		if err := decodeRecord(r, r.Type, &d); err != nil {
			return nil, err
		}
		return wrapInvalid(NewLine(d.Points, restoredOptions(opts, d.ID, d.Style)...))
	case KindElevationLine:
		var d elevationData
		if err := decodeRecord(r, r.Type, &d); err != nil {
			return nil, err
		}
		l, err := NewElevationLine(d.Points, restoredOptions(opts, d.ID, d.Style)...)
		if err != nil {
			return wrapInvalid(l, err)
		}
		l.restoreProfile(d)
		return l, nil
	case KindCircle:
		var d circleData
		if err := decodeRecord(r, r.Type, &d); err != nil {
			return nil, err
		}
		g, err := d.geometry()
		if err != nil {
			return nil, err
		}
		return wrapInvalid(NewCircle(g.center, g.radius, restoredOptions(opts, d.ID, d.Style)...))
	case KindSectionedCircle:
		var d sectionedData
		if err := decodeRecord(r, r.Type, &d); err != nil {
			return nil, err
		}
		g, err := circleData{Center: d.Center, Radius: d.Radius}.geometry()
		if err != nil {
			return nil, err
		}
		c, err := NewSectionedCircle(g.center, g.radius, restoredOptions(opts, d.ID, d.Style)...)
		if err != nil {
			return nil, err
		}
		for _, s := range d.Sections {
			c.AddSection(s)
		}
		return c, nil
	case KindRectangle:
		var d rectangleData
		if err := decodeRecord(r, r.Type, &d); err != nil {
			return nil, err
		}
		center, w, h, err := d.geometry()
		if err != nil {
			return nil, err
		}
		return wrapInvalid(NewRectangle(center, w, h, d.Rotation, restoredOptions(opts, d.ID, d.Style)...))
	case KindNote:
		var d noteData
		if err := decodeRecord(r, r.Type, &d); err != nil {
			return nil, err
		}
		if d.Point == nil {
			return nil, fmt.Errorf("note without point: %w", ErrInvalidRecord)
		}
		n := NewNote(*d.Point, d.Title, restoredOptions(opts, d.ID, d.Style)...)
		n.description = d.Description
		n.comments = append([]Comment(nil), d.Comments...)
		n.photos = append([]Photo(nil), d.Photos...)
		return n, nil
	default:
		return nil, fmt.Errorf("unknown shape type %q: %w", r.Type, ErrInvalidRecord)
	}
}

// DecodeAll decodes every record it can. Records that fail are skipped and their
// errors joined.
func DecodeAll(records []Record, opts ...Option) ([]Shape, error) {
	shapes := make([]Shape, 0, len(records))
	var errs []error
	for i, r := range records {
		s, err := Decode(r, opts...)
		if err != nil {
			errs = append(errs, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		shapes = append(shapes, s)
	}
	return shapes, errors.Join(errs...)
}

func restoredOptions(opts []Option, id string, style Style) []Option {
	out := append([]Option(nil), opts...)
	if id != "" {
		out = append(out, WithID(id))
	}
	if style != (Style{}) {
		out = append(out, WithStyle(style))
	}
	return out
}

// restoredStyle is the style a record restores to; records without one get
// DefaultStyle, as they do through Decode.
func restoredStyle(s Style) Style {
	if s == (Style{}) {
		return DefaultStyle
	}
	return s
}

func wrapInvalid(s Shape, err error) (Shape, error) {
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	return s, nil
}

// ToFeature converts a shape to a GeoJSON feature carrying its derived
// properties. Circles become points with a radius property.
func ToFeature(s Shape) *geojson.Feature {
	var g orb.Geometry
	switch v := s.(type) {
	case *Polygon:
		g = orb.Polygon{geomath.CloseRing(v.Points())}
	case *Line:
		g = orb.LineString(v.Points())
	case *ElevationLine:
		g = orb.LineString(v.Points())
	case *Circle:
		g = v.Center()
	case *SectionedCircle:
		g = v.Center()
	case *Rectangle:
		g = orb.Polygon{geomath.CloseRing(v.RotatedCorners())}
	case *Note:
		g = v.Point()
	default:
		g = s.Bound().Center()
	}

	f := geojson.NewFeature(g)
	f.ID = s.ID()
	props := s.Properties()
	if raw, err := json.Marshal(props); err == nil {
		var m map[string]any
		if json.Unmarshal(raw, &m) == nil {
			for k, v := range m {
				f.Properties[k] = v
			}
		}
	}
	f.Properties["id"] = s.ID()
	if props.Style.Name != "" {
		f.Properties["name"] = props.Style.Name
	}
	return f
}

// ToFeatureCollection converts shapes to a GeoJSON feature collection.
func ToFeatureCollection(shapes []Shape) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, s := range shapes {
		fc.Append(ToFeature(s))
	}
	return fc
}
