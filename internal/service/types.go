// Package service holds the drawing plans of a running server: their live
// shapes, persistence and the editing, coverage and elevation operations on them.
package service

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-draw/internal/controlpoint"
	"github.com/joeblew999/plat-draw/internal/shape"
)

// PlanInfo summarizes a plan.
type PlanInfo struct {
	ID         string `json:"id" doc:"Unique plan identifier" example:"north_field"`
	Name       string `json:"name" required:"true" minLength:"1" maxLength:"100" doc:"Display name" example:"North field"`
	ShapeCount int    `json:"shapeCount" doc:"Number of shapes in the plan"`
}

// ShapeRecord is the wire form of a stored shape. Data holds the kind-specific
// geometry and style, e.g. {"center":[lng,lat],"radius":50} for a circle.
type ShapeRecord struct {
	Type shape.Kind     `json:"type" yaml:"type" required:"true" enum:"Polygon,Line,ElevationLine,Circle,CircleWithSections,Rectangle,Note" doc:"Shape kind"`
	Data map[string]any `json:"data" yaml:"data" required:"true" doc:"Kind-specific geometry and style"`
}

// Record converts r to the codec form.
func (r ShapeRecord) Record() (shape.Record, error) {
	data, err := json.Marshal(r.Data)
	if err != nil {
		return shape.Record{}, fmt.Errorf("shape data: %w", err)
	}
	return shape.Record{Type: r.Type, Data: data}, nil
}

func toShapeRecord(rec shape.Record) (ShapeRecord, error) {
	out := ShapeRecord{Type: rec.Type}
	if err := json.Unmarshal(rec.Data, &out.Data); err != nil {
		return ShapeRecord{}, err
	}
	return out, nil
}

// ShapeView is a shape with its derived properties.
type ShapeView struct {
	ID         string           `json:"id" doc:"Shape identifier"`
	Kind       shape.Kind       `json:"kind" doc:"Shape kind"`
	Version    uint64           `json:"version" doc:"Geometry version"`
	Properties shape.Properties `json:"properties" doc:"Derived properties"`
	Record     ShapeRecord      `json:"record" doc:"Stored form"`
}

func viewOf(s shape.Shape) (ShapeView, error) {
	rec, err := s.Snapshot()
	if err != nil {
		return ShapeView{}, err
	}
	wire, err := toShapeRecord(rec)
	if err != nil {
		return ShapeView{}, err
	}
	return ShapeView{
		ID:         s.ID(),
		Kind:       s.Kind(),
		Version:    s.Version(),
		Properties: s.Properties(),
		Record:     wire,
	}, nil
}

// DragRequest is a complete gesture on one control point.
type DragRequest struct {
	PointID string      `json:"pointId" required:"true" doc:"Control point identifier" example:"vertex:0"`
	Path    []orb.Point `json:"path" required:"true" minItems:"1" doc:"Pointer positions as [lng,lat]; the last one is the release point"`
}

// Details are the labels of a shape. Every field is applied as given, so empty
// strings clear. Title and Description only apply to notes.
type Details struct {
	Name        string  `json:"name" doc:"Display name"`
	Category    string  `json:"category" doc:"Category"`
	AccessLevel string  `json:"accessLevel" doc:"Access level"`
	Title       *string `json:"title,omitempty" doc:"Note title"`
	Description *string `json:"description,omitempty" doc:"Note description"`
}

// Handles is the control point set of a shape.
type Handles = controlpoint.Set
