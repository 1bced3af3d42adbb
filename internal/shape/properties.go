package shape

import (
	"bytes"
	"encoding/json"
	"reflect"

	"github.com/paulmach/orb"
)

// Properties are the derived, cached values of a shape plus its style. Only the
// fields relevant to the kind are set.
type Properties struct {
	Type   Kind      `json:"type"`
	Style  Style     `json:"style"`
	Center orb.Point `json:"center"`

	Surface   float64 `json:"surface,omitempty"`
	Perimeter float64 `json:"perimeter,omitempty"`
	Length    float64 `json:"length,omitempty"`

	VertexCount    int       `json:"vertexCount,omitempty"`
	SegmentLengths []float64 `json:"segmentLengths,omitempty"`

	Radius   float64 `json:"radius,omitempty"`
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
	Rotation float64 `json:"rotation,omitempty"`

	Sections       []SectionProperties `json:"sections,omitempty"`
	SectionSurface float64             `json:"sectionSurface,omitempty"`

	Elevation  *ElevationStats `json:"elevation,omitempty"`
	DataSource DataSource      `json:"dataSource,omitempty"`

	Title        string `json:"title,omitempty"`
	CommentCount int    `json:"commentCount,omitempty"`
	PhotoCount   int    `json:"photoCount,omitempty"`
}

// SectionProperties are the derived values of one circle section.
type SectionProperties struct {
	ID         string  `json:"id"`
	Name       string  `json:"name,omitempty"`
	Color      string  `json:"color,omitempty"`
	StartAngle float64 `json:"startAngle"`
	EndAngle   float64 `json:"endAngle"`
	Opening    float64 `json:"opening"`
	Radius     float64 `json:"radius"`
	Surface    float64 `json:"surface"`
}

func (p Properties) clone() Properties {
	out := p
	if p.SegmentLengths != nil {
		out.SegmentLengths = append([]float64(nil), p.SegmentLengths...)
	}
	if p.Sections != nil {
		out.Sections = append([]SectionProperties(nil), p.Sections...)
	}
	if p.Elevation != nil {
		e := *p.Elevation
		out.Elevation = &e
	}
	return out
}

// sameProperties compares the serialized form, which is what listeners observe.
func sameProperties(a, b Properties) bool {
	ab, errA := json.Marshal(a)
	bb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return reflect.DeepEqual(a, b)
	}
	return bytes.Equal(ab, bb)
}
