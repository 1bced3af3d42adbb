package service

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-draw/internal/controlpoint"
	"github.com/joeblew999/plat-draw/internal/elevation"
	"github.com/joeblew999/plat-draw/internal/geomath"
	"github.com/joeblew999/plat-draw/internal/shape"
)

var origin = orb.Point{1, 46}

func at(x, y float64) orb.Point { return geomath.NewFrame(origin).FromLocal(x, y) }

func newService(t *testing.T, dir string, opts ...Option) *PlanService {
	t.Helper()
	log, _ := test.NewNullLogger()
	return NewPlanService(dir, append([]Option{WithLogger(log)}, opts...)...)
}

func circleRecord(id string, center orb.Point, r float64) ShapeRecord {
	return ShapeRecord{Type: shape.KindCircle, Data: map[string]any{
		"id":     id,
		"center": []any{center.Lon(), center.Lat()},
		"radius": r,
	}}
}

func squareRecord(id string, cx, cy, side float64) ShapeRecord {
	h := side / 2
	var pts []any
	for _, p := range []orb.Point{at(cx-h, cy-h), at(cx+h, cy-h), at(cx+h, cy+h), at(cx-h, cy+h)} {
		pts = append(pts, []any{p.Lon(), p.Lat()})
	}
	return ShapeRecord{Type: shape.KindPolygon, Data: map[string]any{"id": id, "points": pts}}
}

func drain(ch chan Event) []Event {
	var out []Event
	for {
		select {
		case e := <-ch:
			out = append(out, e)
		default:
			return out
		}
	}
}

func TestPlanCRUD(t *testing.T) {
	s := newService(t, t.TempDir())

	p, err := s.Create("North Field")
	require.NoError(t, err)
	assert.Equal(t, "north_field", p.ID)

	_, err = s.Create("north field")
	assert.ErrorIs(t, err, ErrExists)

	_, err = s.Create("Alpha")
	require.NoError(t, err)
	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "Alpha", list[0].Name)

	got, ok := s.Get("north_field")
	require.True(t, ok)
	assert.Equal(t, "North Field", got.Name)

	require.NoError(t, s.Delete("north_field"))
	assert.ErrorIs(t, s.Delete("north_field"), ErrNotFound)
	assert.Len(t, s.List(), 1)
}

func TestShapesPersistAcrossRestart(t *testing.T) {
	dir := t.TempDir()
	s := newService(t, dir)
	_, err := s.Create("plan")
	require.NoError(t, err)

	v, err := s.AddShape("plan", circleRecord("pivot", at(0, 0), 100))
	require.NoError(t, err)
	assert.Equal(t, shape.KindCircle, v.Kind)
	assert.InDelta(t, math.Pi*100*100, v.Properties.Surface, 1)

	_, err = s.AddShape("plan", circleRecord("pivot", at(10, 0), 5))
	assert.ErrorIs(t, err, ErrExists)
	_, err = s.AddShape("missing", circleRecord("x", at(0, 0), 5))
	assert.ErrorIs(t, err, ErrNotFound)

	reloaded := newService(t, dir)
	shapes, err := reloaded.Shapes("plan")
	require.NoError(t, err)
	require.Len(t, shapes, 1)
	assert.Equal(t, "pivot", shapes[0].ID)
	assert.InDelta(t, v.Properties.Surface, shapes[0].Properties.Surface, 1e-6)
}

func TestCorruptShapeSkippedOnLoad(t *testing.T) {
	dir := t.TempDir()
	doc := `{"p":{"id":"p","name":"P","shapes":[
		{"type":"Circle","data":{"id":"ok","center":[1,46],"radius":10}},
		{"type":"Circle","data":{"id":"bad","center":[1,46]}}
	]}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plans.json"), []byte(doc), 0644))

	shapes, err := newService(t, dir).Shapes("p")
	require.NoError(t, err)
	require.Len(t, shapes, 1)
	assert.Equal(t, "ok", shapes[0].ID)
}

func TestDragPublishesAndPersists(t *testing.T) {
	dir := t.TempDir()
	s := newService(t, dir)
	_, err := s.Create("plan")
	require.NoError(t, err)
	_, err = s.AddShape("plan", squareRecord("sq", 0, 0, 100))
	require.NoError(t, err)

	ch := s.Bus().Subscribe()
	defer s.Bus().Unsubscribe(ch)

	v, err := s.Drag("plan", "sq", DragRequest{
		PointID: controlpoint.VertexID(2),
		Path:    []orb.Point{at(60, 60), at(70, 70), at(50, 150)},
	})
	require.NoError(t, err)
	assert.InDelta(t, 15000, v.Properties.Surface, 150)

	var panning []any
	updates := 0
	for _, e := range drain(ch) {
		switch {
		case e.Resource == "map" && e.Action == "panning":
			panning = append(panning, e.Payload)
		case e.Resource == "shapes" && e.Action == string(shape.PropertiesUpdated):
			updates++
			assert.Equal(t, "plan", e.Plan)
		}
	}
	assert.Equal(t, []any{false, true}, panning)
	assert.Equal(t, 1, updates)

	shapes, err := newService(t, dir).Shapes("plan")
	require.NoError(t, err)
	assert.InDelta(t, 15000, shapes[0].Properties.Surface, 150)
}

func TestLiveDragSession(t *testing.T) {
	s := newService(t, "")
	_, err := s.Create("plan")
	require.NoError(t, err)
	_, err = s.AddShape("plan", circleRecord("c", at(0, 0), 50))
	require.NoError(t, err)

	h, err := s.BeginDrag("plan", "c", controlpoint.CardinalID(1))
	require.NoError(t, err)
	assert.Len(t, h.Visible(), 1)

	_, err = s.BeginDrag("plan", "c", controlpoint.CenterID)
	assert.ErrorIs(t, err, controlpoint.ErrAlreadyDragging)

	applied, _, err := s.MoveDrag("plan", "c", at(70, 0))
	require.NoError(t, err)
	assert.True(t, applied)

	during, err := s.Handles("plan", "c")
	require.NoError(t, err)
	assert.Len(t, during.Visible(), 1)

	v, err := s.EndDrag("plan", "c", at(80, 0))
	require.NoError(t, err)
	assert.InDelta(t, 80, v.Properties.Radius, 0.5)

	_, _, err = s.MoveDrag("plan", "c", at(90, 0))
	assert.ErrorIs(t, err, ErrNoSession)

	after, err := s.Handles("plan", "c")
	require.NoError(t, err)
	assert.Len(t, after.Visible(), 5)
}

func TestCancelDragRestores(t *testing.T) {
	s := newService(t, "")
	_, err := s.Create("plan")
	require.NoError(t, err)
	_, err = s.AddShape("plan", circleRecord("c", at(0, 0), 50))
	require.NoError(t, err)

	_, err = s.BeginDrag("plan", "c", controlpoint.CenterID)
	require.NoError(t, err)
	_, _, err = s.MoveDrag("plan", "c", at(500, 500))
	require.NoError(t, err)
	v, err := s.CancelDrag("plan", "c")
	require.NoError(t, err)
	assert.InDelta(t, 0, geomath.Distance(at(0, 0), v.Properties.Center), 1e-6)
}

func TestCollapsedPolygonSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	s := newService(t, dir)
	_, err := s.Create("plan")
	require.NoError(t, err)
	var pts []any
	for _, p := range []orb.Point{at(0, 0), at(40, 0), at(0, 40)} {
		pts = append(pts, []any{p.Lon(), p.Lat()})
	}
	_, err = s.AddShape("plan", ShapeRecord{Type: shape.KindPolygon, Data: map[string]any{"id": "tri", "points": pts}})
	require.NoError(t, err)
	_, err = s.AddShape("plan", circleRecord("c", at(500, 0), 20))
	require.NoError(t, err)

	_, err = s.BeginDrag("plan", "tri", controlpoint.VertexID(0))
	require.NoError(t, err)
	_, err = s.EndDrag("plan", "tri", at(40, 0))
	assert.ErrorIs(t, err, shape.ErrTooFewPoints)

	_, err = s.Drag("plan", "tri", DragRequest{PointID: controlpoint.VertexID(2), Path: []orb.Point{at(40, 0)}})
	assert.ErrorIs(t, err, shape.ErrTooFewPoints)
	_, err = s.SetStyle("plan", "c", shape.Style{Color: "#ff0000"})
	require.NoError(t, err)

	shapes, err := newService(t, dir).Shapes("plan")
	require.NoError(t, err)
	require.Len(t, shapes, 2)
	tri, err := newService(t, dir).Shape("plan", "tri")
	require.NoError(t, err)
	assert.InDelta(t, 800, tri.Properties.Surface, 10)
}

func TestSetDetails(t *testing.T) {
	s := newService(t, "")
	_, err := s.Create("plan")
	require.NoError(t, err)
	_, err = s.AddShape("plan", circleRecord("c", at(0, 0), 50))
	require.NoError(t, err)
	_, err = s.AddShape("plan", ShapeRecord{Type: shape.KindNote, Data: map[string]any{
		"id": "n", "point": []any{origin.Lon(), origin.Lat()}, "title": "Gate",
	}})
	require.NoError(t, err)

	v, err := s.SetDetails("plan", "c", Details{Name: "Pivot", Category: "irrigation", AccessLevel: "public"})
	require.NoError(t, err)
	assert.Equal(t, "irrigation", v.Properties.Style.Category)

	v, err = s.SetDetails("plan", "c", Details{Name: "Pivot"})
	require.NoError(t, err)
	assert.Equal(t, "Pivot", v.Properties.Style.Name)
	assert.Empty(t, v.Properties.Style.Category)
	assert.Empty(t, v.Properties.Style.AccessLevel)

	title := "Broken gate"
	v, err = s.SetDetails("plan", "n", Details{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Broken gate", v.Properties.Title)

	_, err = s.SetDetails("plan", "c", Details{Title: &title})
	assert.ErrorIs(t, err, ErrNotNote)
	_, err = s.SetDetails("plan", "missing", Details{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlanCoverageAndExport(t *testing.T) {
	s := newService(t, "")
	_, err := s.Create("plan")
	require.NoError(t, err)
	for _, r := range []ShapeRecord{
		squareRecord("a", 0, 0, 100),
		squareRecord("b", 50, 10, 100),
		squareRecord("far", 3000, 0, 10),
	} {
		_, err := s.AddShape("plan", r)
		require.NoError(t, err)
	}

	res, err := s.Coverage("plan", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, res.ShapeIDs)
	assert.InDelta(t, 20000-50*90, res.Area, 200)

	res, err = s.Coverage("plan", "far")
	require.NoError(t, err)
	assert.InDelta(t, 100, res.Area, 2)

	comps, err := s.Components("plan")
	require.NoError(t, err)
	assert.Len(t, comps, 2)

	fc, err := s.Export("plan")
	require.NoError(t, err)
	assert.Len(t, fc.Features, 3)

	require.NoError(t, s.RemoveShape("plan", "far"))
	assert.ErrorIs(t, s.RemoveShape("plan", "far"), ErrNotFound)
}

func TestRefreshElevation(t *testing.T) {
	lookup := elevation.LookupFunc(func(ctx context.Context, pts []orb.Point) ([]float64, error) {
		out := make([]float64, len(pts))
		for i := range pts {
			out[i] = float64(200 + 2*i)
		}
		return out, nil
	})
	log, _ := test.NewNullLogger()
	smp := elevation.NewSampler(lookup, elevation.WithLogger(log), elevation.WithRetryDelay(time.Millisecond))
	s := newService(t, "", WithSampler(smp))
	_, err := s.Create("plan")
	require.NoError(t, err)

	a, b := at(0, 0), at(900, 0)
	_, err = s.AddShape("plan", ShapeRecord{Type: shape.KindElevationLine, Data: map[string]any{
		"id":     "profile",
		"points": []any{[]any{a.Lon(), a.Lat()}, []any{b.Lon(), b.Lat()}},
	}})
	require.NoError(t, err)
	_, err = s.AddShape("plan", circleRecord("c", at(0, 0), 10))
	require.NoError(t, err)

	v, err := s.RefreshElevation(context.Background(), "plan", "profile")
	require.NoError(t, err)
	require.NotNil(t, v.Properties.Elevation)
	assert.Equal(t, shape.SourceAPI, v.Properties.DataSource)
	assert.Equal(t, 18.0, v.Properties.Elevation.Gain)

	_, err = s.RefreshElevation(context.Background(), "plan", "c")
	assert.ErrorIs(t, err, ErrNotLine)
}

func TestImportPlanFile(t *testing.T) {
	dir := t.TempDir()
	sources := filepath.Join(dir, "sources")
	require.NoError(t, os.MkdirAll(sources, 0755))
	doc := `name: Orchard
shapes:
  - type: Circle
    data:
      id: well
      center: [1, 46]
      radius: 20
  - type: Rectangle
    data:
      id: shed
      center: [1.001, 46]
      width: 10
      height: 5
  - type: Circle
    data:
      id: broken
`
	require.NoError(t, os.WriteFile(filepath.Join(sources, "orchard.yaml"), []byte(doc), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(sources, "notes.txt"), []byte("x"), 0644))

	src := NewSourceService(dir)
	files, err := src.List()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "YAML", files[0].FileType)

	pf, err := src.Read("orchard.yaml")
	require.NoError(t, err)
	_, err = src.Read("../plans.json")
	assert.Error(t, err)
	_, err = src.Read("missing.yaml")
	assert.ErrorIs(t, err, ErrNotFound)

	s := newService(t, dir)
	info, err := s.Import(pf)
	assert.ErrorIs(t, err, shape.ErrInvalidRecord)
	assert.Equal(t, "orchard", info.ID)
	assert.Equal(t, 2, info.ShapeCount)
}

func TestParsePlanFileJSON(t *testing.T) {
	pf, err := ParsePlanFile([]byte(`{"name":"P","shapes":[{"type":"Note","data":{"point":[1,46],"title":"gate"}}]}`), "JSON")
	require.NoError(t, err)
	require.Len(t, pf.Shapes, 1)
	assert.Equal(t, shape.KindNote, pf.Shapes[0].Type)

	_, err = ParsePlanFile(nil, "CSV")
	assert.Error(t, err)
}
