package shape

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-draw/internal/geomath"
)

var origin = orb.Point{1, 46}

func square(t *testing.T, side float64, opts ...Option) *Polygon {
	t.Helper()
	f := geomath.NewFrame(origin)
	h := side / 2
	p, err := NewPolygon([]orb.Point{
		f.FromLocal(-h, -h), f.FromLocal(h, -h), f.FromLocal(h, h), f.FromLocal(-h, h),
	}, opts...)
	require.NoError(t, err)
	return p
}

func countEvents(s Shape, typ EventType) *int {
	n := new(int)
	s.On(func(e Event) {
		if e.Type == typ {
			*n++
		}
	})
	return n
}

func TestPolygon_Properties(t *testing.T) {
	p := square(t, 100)
	props := p.Properties()
	assert.Equal(t, KindPolygon, props.Type)
	assert.InDelta(t, 10000, props.Surface, 100)
	assert.InDelta(t, 400, props.Perimeter, 4)
	assert.Equal(t, 4, props.VertexCount)
	assert.Len(t, props.SegmentLengths, 4)
	assert.InDelta(t, origin[0], props.Center[0], 1e-9)
	assert.InDelta(t, origin[1], props.Center[1], 1e-9)
}

func TestNewPolygon_RejectsDegenerateRings(t *testing.T) {
	_, err := NewPolygon([]orb.Point{{0, 0}, {1, 1}, {0, 0}})
	assert.ErrorIs(t, err, ErrTooFewPoints)

	// A closing duplicate is dropped, not counted.
	p, err := NewPolygon([]orb.Point{{0, 0}, {1, 0}, {1, 1}, {0, 0}})
	require.NoError(t, err)
	assert.Len(t, p.Points(), 3)
}

func TestUpdateProperties_IsIdempotent(t *testing.T) {
	p := square(t, 50)
	updates := countEvents(p, PropertiesUpdated)

	require.NoError(t, p.UpdateProperties())
	require.NoError(t, p.UpdateProperties())
	assert.Equal(t, 1, *updates)

	// A move that is undone produces no new notification.
	p.Move(Delta{Lat: 0.001})
	p.Move(Delta{Lat: -0.001})
	require.NoError(t, p.UpdateProperties())
	assert.LessOrEqual(t, *updates, 2)
}

func TestMutatorsDoNotCommit(t *testing.T) {
	p := square(t, 50)
	require.NoError(t, p.UpdateProperties())
	updates := countEvents(p, PropertiesUpdated)

	for i := 0; i < 20; i++ {
		require.NoError(t, p.MoveVertex(0, geomath.Translate(p.Points()[0], 0.00001, 0)))
	}
	assert.Equal(t, 0, *updates)
	assert.True(t, p.Dirty())

	require.NoError(t, p.UpdateProperties())
	assert.Equal(t, 1, *updates)
	assert.False(t, p.Dirty())
}

func TestUpdateProperties_TooFewPointsKeepsPrevious(t *testing.T) {
	logger, hook := test.NewNullLogger()
	p := square(t, 100, WithLogger(logger))
	before := p.Properties()
	v := p.Version()

	p.SetPoints([]orb.Point{{0, 0}, {1, 1}})
	assert.Greater(t, p.Version(), v)

	err := p.UpdateProperties()
	assert.ErrorIs(t, err, ErrTooFewPoints)
	assert.Equal(t, before, p.Properties())

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, p.ID(), hook.LastEntry().Data["shape"])
}

func TestPolygon_InsertAndRemoveVertex(t *testing.T) {
	p := square(t, 100)
	mids := p.MidPoints()
	require.Len(t, mids, 4)

	// Segment 3 is the closing edge.
	i, err := p.AddVertex(3, mids[3])
	require.NoError(t, err)
	assert.Equal(t, 4, i)
	assert.Len(t, p.Points(), 5)
	assert.Equal(t, mids[3], p.Points()[4])

	_, err = p.AddVertex(5, mids[0])
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	require.NoError(t, p.RemoveVertex(4))
	require.NoError(t, p.RemoveVertex(0))
	assert.ErrorIs(t, p.RemoveVertex(0), ErrTooFewPoints)
}

func TestLine_Length(t *testing.T) {
	l, err := NewLine([]orb.Point{{0, 0}, {0, 0.001}})
	require.NoError(t, err)
	assert.InDelta(t, 111.2, l.Properties().Length, 111.2*0.01)

	// Coincident vertices are allowed and add nothing.
	l.SetPoints([]orb.Point{{0, 0}, {0, 0}, {0, 0.001}})
	assert.InDelta(t, 111.2, l.Properties().Length, 111.2*0.01)

	_, err = NewLine([]orb.Point{{0, 0}})
	assert.ErrorIs(t, err, ErrTooFewPoints)
}

func TestStyle_ClassificationSurvivesRecompute(t *testing.T) {
	p := square(t, 30, WithStyle(Style{Color: "#ff0000", Name: "North field", Category: "crops"}))
	p.SetStyle(Style{Color: "#00ff00"})
	p.Move(Delta{Lng: 0.0001})

	props := p.Properties()
	assert.Equal(t, "#00ff00", props.Style.Color)
	assert.Equal(t, "North field", props.Style.Name)
	assert.Equal(t, "crops", props.Style.Category)

	p.Rename("South field")
	assert.Equal(t, "South field", p.Properties().Style.Name)
}

func TestClassify_ClearsCategoryAndAccess(t *testing.T) {
	p := square(t, 30, WithStyle(Style{Category: "crops", AccessLevel: AccessPrivate}))
	p.SetStyle(Style{Color: "#00ff00"})
	assert.Equal(t, "crops", p.Style().Category)

	p.Classify("", "")
	props := p.Properties()
	assert.Empty(t, props.Style.Category)
	assert.Empty(t, props.Style.AccessLevel)
	assert.Equal(t, "#00ff00", props.Style.Color)
}

func TestOn_Unsubscribe(t *testing.T) {
	p := square(t, 10)
	calls := 0
	cancel := p.On(func(Event) { calls++ })
	require.NoError(t, p.UpdateProperties())
	cancel()
	p.Move(Delta{Lat: 0.01})
	require.NoError(t, p.UpdateProperties())
	assert.Equal(t, 1, calls)
}

func TestCircle(t *testing.T) {
	c, err := NewCircle(origin, 100)
	require.NoError(t, err)
	props := c.Properties()
	assert.InDelta(t, math.Pi*100*100, props.Surface, 1e-6)
	assert.InDelta(t, 2*math.Pi*100, props.Perimeter, 1e-9)

	cards := c.CardinalPoints()
	require.Len(t, cards, 4)
	assert.Greater(t, cards[0].Lat(), origin.Lat())
	assert.Greater(t, cards[1].Lon(), origin.Lon())
	assert.Less(t, cards[2].Lat(), origin.Lat())
	assert.Less(t, cards[3].Lon(), origin.Lon())

	c.ResizeFromControlPoint(geomath.PointAtAngle(origin, 250, 33))
	assert.InDelta(t, 250, c.Radius(), 2)
	c.ResizeFromControlPoint(origin)
	assert.Equal(t, MinRadius, c.Radius())

	_, err = NewCircle(origin, 0)
	assert.ErrorIs(t, err, ErrInvalidDimension)
	assert.ErrorIs(t, c.SetRadius(-1), ErrInvalidDimension)
}

func TestRectangle_Properties(t *testing.T) {
	r, err := NewRectangle(origin, 10, 20, 0)
	require.NoError(t, err)
	props := r.Properties()
	assert.Equal(t, 200.0, props.Surface)
	assert.Equal(t, 60.0, props.Perimeter)
	assert.Equal(t, 10.0, props.Width)
	assert.Equal(t, 20.0, props.Height)

	_, err = NewRectangle(origin, 0.5, 20, 0)
	assert.ErrorIs(t, err, ErrInvalidDimension)
}

func TestRectangle_RotationSwapsCornerRoles(t *testing.T) {
	r, err := NewRectangle(origin, 10, 20, 0)
	require.NoError(t, err)
	f := geomath.NewFrame(origin)

	x, y := f.ToLocal(r.RotatedCorners()[CornerNW])
	assert.InDelta(t, -5, x, 0.05)
	assert.InDelta(t, 10, y, 0.05)

	r.SetRotation(90)
	x, y = f.ToLocal(r.RotatedCorners()[CornerNW])
	assert.InDelta(t, 10, x, 0.05)
	assert.InDelta(t, 5, y, 0.05)
	assert.Equal(t, 200.0, r.Properties().Surface)
}

func TestRectangle_SidesAlternateAtAnyRotation(t *testing.T) {
	r, err := NewRectangle(origin, 10, 20, 0)
	require.NoError(t, err)
	for _, angle := range []float64{0, 17, 45, 90, 133, 180, 271, 359} {
		r.SetRotation(angle)
		c := r.RotatedCorners()
		for i := 0; i < 4; i++ {
			want := 10.0
			if i%2 == 1 {
				want = 20
			}
			got := geomath.Distance(c[i], c[(i+1)%4])
			assert.InDelta(t, want, got, 0.02, "rotation %v side %d", angle, i)
		}
	}
}

func TestRectangle_Events(t *testing.T) {
	r, err := NewRectangle(origin, 10, 20, 0)
	require.NoError(t, err)
	coords := countEvents(r, CoordinatesUpdated)
	rotations := countEvents(r, RotationUpdated)
	dims := countEvents(r, DimensionsUpdated)

	r.SetRotation(30)
	require.NoError(t, r.SetDimensions(12, 24))
	r.Move(Delta{Lat: 0.0001})

	assert.Equal(t, 3, *coords)
	assert.Equal(t, 1, *rotations)
	assert.Equal(t, 1, *dims)
}

func TestRectangle_ResizeAndRotateFromHandles(t *testing.T) {
	r, err := NewRectangle(origin, 10, 20, 0)
	require.NoError(t, err)

	r.ResizeFromCorner(geomath.Offset(origin, 15, -25))
	assert.InDelta(t, 30, r.Width(), 0.1)
	assert.InDelta(t, 50, r.Height(), 0.1)

	r.ResizeFromCorner(origin)
	assert.Equal(t, MinDimension, r.Width())
	assert.Equal(t, MinDimension, r.Height())

	r.RotateToward(geomath.Offset(origin, 50, 0))
	assert.InDelta(t, 90, r.Rotation(), 0.01)
}

func TestSectionedCircle_OpeningStepIsCapped(t *testing.T) {
	c, err := NewSectionedCircle(origin, 200)
	require.NoError(t, err)
	s := c.AddSection(Section{StartAngle: 10, EndAngle: 40})

	prev := s.Opening()
	for end := 40.0; end < 800; end += 37 {
		got, err := c.SetSectionAngles(s.ID, 10, end)
		require.NoError(t, err)
		op := got.Opening()
		assert.GreaterOrEqual(t, op, MinSectionOpening)
		assert.LessOrEqual(t, op, 360.0)
		assert.LessOrEqual(t, math.Abs(op-prev), MaxOpeningStep+1e-9)
		prev = op
	}
}

func TestSectionedCircle_JumpAcrossStartIsCapped(t *testing.T) {
	c, err := NewSectionedCircle(origin, 200)
	require.NoError(t, err)
	s := c.AddSection(Section{StartAngle: 0, EndAngle: 90})

	// The end handle jumps just behind the start handle.
	got, err := c.SetSectionAngles(s.ID, 0, 355)
	require.NoError(t, err)
	assert.InDelta(t, 135, got.Opening(), 1e-9)
	assert.InDelta(t, 0, got.StartAngle, 1e-9)

	// Moving only the start keeps the end fixed; the shrink is capped too.
	got, err = c.SetSectionAngles(s.ID, 130, got.EndAngle)
	require.NoError(t, err)
	assert.InDelta(t, 135, got.EndAngle, 1e-9)
	assert.InDelta(t, 90, got.Opening(), 1e-9)
	assert.InDelta(t, 45, got.StartAngle, 1e-9)
}

func TestSectionedCircle_FullCircleAndRadius(t *testing.T) {
	c, err := NewSectionedCircle(origin, 200)
	require.NoError(t, err)
	s := c.AddSection(Section{StartAngle: 30, EndAngle: 32, Radius: 500})
	assert.InDelta(t, MinSectionOpening, s.Opening(), 1e-9)
	assert.Equal(t, 200.0, s.Radius)

	require.NoError(t, c.MakeFullCircle(s.ID))
	got, _ := c.Section(s.ID)
	assert.True(t, got.IsFull())
	assert.Equal(t, 360.0, got.Opening())

	got, err = c.SetSectionRadius(s.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, MinSectionRadius, got.Radius)

	got, err = c.SetSectionRadius(s.ID, 150)
	require.NoError(t, err)
	require.NoError(t, c.SetRadius(100))
	got, _ = c.Section(got.ID)
	assert.Equal(t, 100.0, got.Radius)

	props := c.Properties()
	require.Len(t, props.Sections, 1)
	assert.InDelta(t, math.Pi*100*100, props.SectionSurface, 1e-6)

	require.NoError(t, c.RemoveSection(s.ID))
	assert.ErrorIs(t, c.RemoveSection(s.ID), ErrSectionNotFound)
}

func TestSectionedCircle_Handles(t *testing.T) {
	c, err := NewSectionedCircle(origin, 200)
	require.NoError(t, err)
	s := c.AddSection(Section{StartAngle: 0, EndAngle: 90, Radius: 100})

	start, end, mid, ok := c.SectionHandles(s.ID)
	require.True(t, ok)
	assert.InDelta(t, 0, c.AngleTo(start), 1e-6)
	assert.InDelta(t, 90, c.AngleTo(end), 1e-6)
	assert.InDelta(t, 45, c.AngleTo(mid), 1e-6)
	assert.InDelta(t, 100, c.DistanceTo(mid), 1)
}

func TestElevationLine(t *testing.T) {
	f := geomath.NewFrame(origin)
	l, err := NewElevationLine([]orb.Point{f.FromLocal(0, 0), f.FromLocal(3000, 0)})
	require.NoError(t, err)

	_, err = l.AddVertex(0, f.FromLocal(1500, 0))
	assert.ErrorIs(t, err, ErrFixedVertexCount)
	assert.Equal(t, 30, l.SampleCount())
	assert.True(t, l.ProfileStale())
	assert.Equal(t, SourcePending, l.Properties().DataSource)

	v := l.Version()
	profile := Profile{Version: v, Source: SourceAPI, Samples: []ElevationSample{
		{Distance: 0, Elevation: 100}, {Distance: 1500, Elevation: 130}, {Distance: 3000, Elevation: 120},
	}}
	require.NoError(t, l.ApplyProfile(profile))
	assert.False(t, l.ProfileStale())
	props := l.Properties()
	require.NotNil(t, props.Elevation)
	assert.Equal(t, 130.0, props.Elevation.Max)
	assert.Equal(t, SourceAPI, props.DataSource)

	require.NoError(t, l.MoveVertex(1, f.FromLocal(2000, 0)))
	assert.True(t, l.ProfileStale())
	assert.ErrorIs(t, l.ApplyProfile(profile), ErrStaleProfile)

	profile.Version = l.Version()
	l.Release()
	assert.ErrorIs(t, l.ApplyProfile(profile), ErrStaleProfile)
}

func TestElevationSampleCount(t *testing.T) {
	assert.Equal(t, 10, ElevationSampleCount(0))
	assert.Equal(t, 10, ElevationSampleCount(950))
	assert.Equal(t, 11, ElevationSampleCount(1001))
	assert.Equal(t, 50, ElevationSampleCount(100000))
}

func TestComputeElevationStats(t *testing.T) {
	st := ComputeElevationStats([]ElevationSample{
		{Distance: 0, Elevation: 100},
		{Distance: 100, Elevation: 110},
		{Distance: 200, Elevation: 90},
		{Distance: 200, Elevation: 95},
	})
	assert.Equal(t, 90.0, st.Min)
	assert.Equal(t, 110.0, st.Max)
	assert.Equal(t, 15.0, st.Gain)
	assert.Equal(t, 20.0, st.Loss)
	// Descents count by magnitude; the zero-distance step is ignored.
	assert.Equal(t, 20.0, st.MaxSlope)
	assert.Equal(t, 15.0, st.AverageSlope)
	assert.Equal(t, 4, st.SampleCount)

	assert.Equal(t, ElevationStats{}, ComputeElevationStats(nil))
}

func TestNote(t *testing.T) {
	n := NewNote(origin, "Broken fence", WithStyle(Style{Category: "maintenance"}))
	c := n.AddComment("sam", "Fixed on Monday")
	n.AddComment("sam", "duplicate")
	n.AddPhoto("https://example.com/fence.jpg", "")
	assert.True(t, n.RemoveComment(n.Comments()[1].ID))
	assert.False(t, n.RemoveComment("missing"))
	assert.Equal(t, c.ID, n.Comments()[0].ID)
	props := n.Properties()
	assert.Equal(t, "Broken fence", props.Title)
	assert.Equal(t, 1, props.CommentCount)
	assert.Equal(t, 1, props.PhotoCount)
	assert.Equal(t, AccessPrivate, props.Style.AccessLevel)
	assert.Equal(t, "maintenance", props.Style.Category)
}

func TestNote_SetDetails(t *testing.T) {
	n := NewNote(origin, "Gate")
	require.NoError(t, n.UpdateProperties())
	n.SetDetails("Broken gate", "Hinge snapped")
	assert.Equal(t, "Hinge snapped", n.Description())
	assert.Equal(t, "Broken gate", n.Properties().Title)
}

func allKinds(t *testing.T) []Shape {
	t.Helper()
	f := geomath.NewFrame(origin)
	poly := square(t, 80, WithStyle(Style{Name: "Plot 7", Color: "#123456"}))
	line, err := NewLine([]orb.Point{f.FromLocal(0, 0), f.FromLocal(40, 30), f.FromLocal(90, 10)})
	require.NoError(t, err)
	elev, err := NewElevationLine([]orb.Point{f.FromLocal(0, 0), f.FromLocal(500, 0)})
	require.NoError(t, err)
	require.NoError(t, elev.ApplyProfile(Profile{Version: elev.Version(), Source: SourceAPI, Samples: []ElevationSample{
		{Distance: 0, Elevation: 10}, {Distance: 500, Elevation: 25},
	}}))
	circle, err := NewCircle(origin, 120)
	require.NoError(t, err)
	sc, err := NewSectionedCircle(origin, 300)
	require.NoError(t, err)
	sc.AddSection(Section{Name: "A", StartAngle: 350, EndAngle: 80, Radius: 250})
	sc.AddSection(Section{Name: "B", StartAngle: 0, EndAngle: 360})
	rect, err := NewRectangle(origin, 15, 35, 33)
	require.NoError(t, err)
	note := NewNote(origin, "Gate")
	note.AddComment("kim", "Locked")
	return []Shape{poly, line, elev, circle, sc, rect, note}
}

func TestRoundTrip_PreservesDerivedProperties(t *testing.T) {
	for _, s := range allKinds(t) {
		t.Run(string(s.Kind()), func(t *testing.T) {
			rec, err := Encode(s)
			require.NoError(t, err)

			raw, err := json.Marshal(rec)
			require.NoError(t, err)
			var back Record
			require.NoError(t, json.Unmarshal(raw, &back))

			got, err := Decode(back)
			require.NoError(t, err)
			assert.Equal(t, s.ID(), got.ID())
			assert.Equal(t, s.Kind(), got.Kind())

			want, have := s.Properties(), got.Properties()
			assert.InEpsilon(t, want.Surface+1, have.Surface+1, 1e-6)
			assert.InEpsilon(t, want.Perimeter+1, have.Perimeter+1, 1e-6)
			assert.InEpsilon(t, want.Length+1, have.Length+1, 1e-6)
			assert.Equal(t, want.Style, have.Style)
			assert.Equal(t, want.Sections, have.Sections)
			assert.Equal(t, want.Elevation, have.Elevation)
		})
	}
}

func TestRestore_ReplacesGeometryInPlace(t *testing.T) {
	r, err := NewRectangle(origin, 10, 20, 0)
	require.NoError(t, err)
	snap, err := r.Snapshot()
	require.NoError(t, err)

	r.SetRotation(45)
	require.NoError(t, r.SetDimensions(40, 40))
	require.NoError(t, r.Restore(snap))
	assert.Equal(t, 10.0, r.Width())
	assert.Equal(t, 0.0, r.Rotation())

	other, err := NewCircle(origin, 5)
	require.NoError(t, err)
	assert.ErrorIs(t, other.Restore(snap), ErrKindMismatch)
}

func TestDecode_RectangleFromBounds(t *testing.T) {
	f := geomath.NewFrame(origin)
	rec := Record{Type: KindRectangle, Data: json.RawMessage(`{"bounds":{"southWest":` +
		mustJSON(t, f.FromLocal(-10, -5)) + `,"northEast":` + mustJSON(t, f.FromLocal(10, 5)) + `}}`)}
	s, err := Decode(rec)
	require.NoError(t, err)
	r := s.(*Rectangle)
	assert.InDelta(t, 20, r.Width(), 1e-6)
	assert.InDelta(t, 10, r.Height(), 1e-6)
}

func TestSnapshot_RectangleWritesBounds(t *testing.T) {
	r, err := NewRectangle(origin, 20, 10, 30)
	require.NoError(t, err)
	rec, err := r.Snapshot()
	require.NoError(t, err)

	var d rectangleData
	require.NoError(t, json.Unmarshal(rec.Data, &d))
	require.NotNil(t, d.Bounds)
	assert.Less(t, d.Bounds.SouthWest.Lon(), d.Bounds.NorthEast.Lon())
	assert.Less(t, d.Bounds.SouthWest.Lat(), d.Bounds.NorthEast.Lat())

	d.Center = nil
	raw, err := json.Marshal(d)
	require.NoError(t, err)
	s, err := Decode(Record{Type: KindRectangle, Data: raw})
	require.NoError(t, err)
	back := s.(*Rectangle)
	assert.InDelta(t, 20, back.Width(), 0.01)
	assert.InDelta(t, 10, back.Height(), 0.01)
	assert.InDelta(t, 0, geomath.Distance(origin, back.Center()), 0.01)
}

func TestRestore_MissingStyleFallsBackToDefault(t *testing.T) {
	rec := Record{Type: KindCircle, Data: json.RawMessage(`{"center":[1,46],"radius":10}`)}
	decoded, err := Decode(rec)
	require.NoError(t, err)

	c, err := NewCircle(origin, 30, WithStyle(Style{Color: "#ff0000"}))
	require.NoError(t, err)
	require.NoError(t, c.Restore(rec))
	assert.Equal(t, DefaultStyle, c.Style())
	assert.Equal(t, decoded.Style(), c.Style())

	r, err := NewRectangle(origin, 5, 5, 0, WithStyle(Style{Color: "#ff0000"}))
	require.NoError(t, err)
	require.NoError(t, r.Restore(Record{Type: KindRectangle, Data: json.RawMessage(`{"center":[1,46],"width":4,"height":4}`)}))
	assert.Equal(t, DefaultStyle, r.Style())
}

func TestDecodeAll_SkipsCorruptRecords(t *testing.T) {
	good, err := Encode(square(t, 20))
	require.NoError(t, err)
	records := []Record{
		good,
		{Type: KindPolygon, Data: json.RawMessage(`{"points":[[0,0],[1,1]]}`)},
		{Type: KindCircle, Data: json.RawMessage(`{"center":[1,2]}`)},
		{Type: "Hexagon", Data: json.RawMessage(`{}`)},
		{Type: KindLine, Data: json.RawMessage(`not json`)},
	}
	shapes, err := DecodeAll(records)
	require.Len(t, shapes, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRecord))
}

func TestToFeatureCollection(t *testing.T) {
	fc := ToFeatureCollection(allKinds(t))
	require.Len(t, fc.Features, 7)

	poly := fc.Features[0]
	assert.Equal(t, "Polygon", poly.Geometry.GeoJSONType())
	assert.Equal(t, "Plot 7", poly.Properties["name"])
	assert.Equal(t, string(KindPolygon), poly.Properties["type"])
	ring := poly.Geometry.(orb.Polygon)[0]
	assert.Equal(t, ring[0], ring[len(ring)-1])

	circle := fc.Features[3]
	assert.Equal(t, "Point", circle.Geometry.GeoJSONType())
	assert.Equal(t, 120.0, circle.Properties["radius"])
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
