package geomath

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointAtAngle_FullTurnIsIdentity(t *testing.T) {
	center := orb.Point{1.0, 46.0}
	for _, theta := range []float64{0, 30, 45, 90, 135, 180, 222.5, 270, 359} {
		a := PointAtAngle(center, 150, theta)
		b := PointAtAngle(center, 150, theta+360)
		assert.InDelta(t, a[0], b[0], 1e-12, "lng at %v", theta)
		assert.InDelta(t, a[1], b[1], 1e-12, "lat at %v", theta)
	}
}

func TestPointAtAngle_DistanceMatchesRadius(t *testing.T) {
	center := orb.Point{1.0, 46.0}
	for theta := 0.0; theta < 360; theta += 15 {
		p := PointAtAngle(center, 250, theta)
		assert.InDelta(t, 250, Distance(center, p), 250*0.005, "theta=%v", theta)
	}
}

func TestPointAtAngle_Cardinals(t *testing.T) {
	center := orb.Point{1.0, 46.0}

	north := PointAtAngle(center, 100, 90)
	assert.Greater(t, north.Lat(), center.Lat())
	assert.InDelta(t, center.Lon(), north.Lon(), 1e-12)

	east := PointAtAngle(center, 100, 0)
	assert.Greater(t, east.Lon(), center.Lon())
	assert.InDelta(t, center.Lat(), east.Lat(), 1e-12)
}

func TestFrame_LocalRoundTrip(t *testing.T) {
	f := NewFrame(orb.Point{2.35, 48.85})
	p := f.FromLocal(120, -80)
	x, y := f.ToLocal(p)
	assert.InDelta(t, 120, x, 1e-6)
	assert.InDelta(t, -80, y, 1e-6)
}

func TestFrame_TrigCacheIsBounded(t *testing.T) {
	f := NewFrame(orb.Point{0, 10})
	for i := 0; i < 500; i++ {
		f.PointAt(10, float64(i)*0.7)
	}
	assert.LessOrEqual(t, len(f.trig), maxCachedAngles)
}

func TestMetersToPixels(t *testing.T) {
	// At the equator, zoom 0, one pixel is the ground resolution.
	assert.InDelta(t, 1, MetersToPixels(156543.03392, 0, 0), 1e-9)
	// Every zoom level doubles the pixel count.
	assert.InDelta(t, 2*MetersToPixels(100, 46, 15), MetersToPixels(100, 46, 16), 1e-9)
	assert.InDelta(t, 100, PixelsToMeters(MetersToPixels(100, 46, 17), 46, 17), 1e-9)
}

func TestLineLength(t *testing.T) {
	line := []orb.Point{{0, 0}, {0, 0.001}}
	assert.InDelta(t, 111.2, LineLength(line), 111.2*0.01)

	assert.Equal(t, 0.0, LineLength([]orb.Point{{0, 0}}))
	assert.Equal(t, 0.0, LineLength([]orb.Point{{1, 1}, {1, 1}}))
}

func TestPolygonAreaAndPerimeter(t *testing.T) {
	f := NewFrame(orb.Point{1, 46})
	ring := []orb.Point{
		f.FromLocal(-50, -50),
		f.FromLocal(50, -50),
		f.FromLocal(50, 50),
		f.FromLocal(-50, 50),
	}
	assert.InDelta(t, 10000, PolygonArea(ring), 10000*0.01)
	assert.InDelta(t, 400, PolygonPerimeter(ring), 400*0.01)

	// Explicitly closed input gives the same answer.
	assert.InDelta(t, PolygonArea(ring), PolygonArea(CloseRing(ring)), 1e-6)
	assert.Equal(t, 0.0, PolygonArea(ring[:2]))
}

func TestCentroid(t *testing.T) {
	ring := []orb.Point{{0, 0}, {2, 0}, {2, 2}, {0, 2}}
	c := Centroid(ring)
	assert.InDelta(t, 1, c[0], 1e-9)
	assert.InDelta(t, 1, c[1], 1e-9)

	// Collinear ring falls back to the vertex average.
	c = Centroid([]orb.Point{{0, 0}, {1, 0}, {2, 0}})
	assert.InDelta(t, 1, c[0], 1e-9)
}

func TestDistanceToSegment(t *testing.T) {
	a, b := orb.Point{0, 0}, orb.Point{10, 0}
	assert.InDelta(t, 5, DistanceToSegment(orb.Point{5, 5}, a, b), 1e-9)
	// Beyond the end, the clamp makes it endpoint distance.
	assert.InDelta(t, 5, DistanceToSegment(orb.Point{13, 4}, a, b), 1e-9)
	// Degenerate segment.
	assert.InDelta(t, 5, DistanceToSegment(orb.Point{3, 4}, a, a), 1e-9)
}

func TestDistanceToSegmentMeters(t *testing.T) {
	f := NewFrame(orb.Point{1, 46})
	a := f.FromLocal(-100, 0)
	b := f.FromLocal(100, 0)
	p := f.FromLocal(0, 30)
	assert.InDelta(t, 30, DistanceToSegmentMeters(p, a, b), 0.01)
}

func TestNormalizeAngle(t *testing.T) {
	cases := map[float64]float64{
		0: 0, 360: 0, 720: 0, -90: 270, 450: 90, 359.5: 359.5, -360: 0,
	}
	for in, want := range cases {
		assert.InDelta(t, want, NormalizeAngle(in), 1e-9, "in=%v", in)
	}
}

func TestAngleConventionsAreDistinct(t *testing.T) {
	center := orb.Point{1, 46}
	north := PointAtAngle(center, 50, 90)
	assert.InDelta(t, 90, MathAngle(center, north), 1e-6)

	// On screen, straight up is rotation 0 and right is 90 (clockwise).
	c := orb.Point{100, 100}
	assert.InDelta(t, 0, ScreenRotation(c, orb.Point{100, 50}), 1e-9)
	assert.InDelta(t, 90, ScreenRotation(c, orb.Point{150, 100}), 1e-9)
	assert.InDelta(t, 180, ScreenRotation(c, orb.Point{100, 150}), 1e-9)
	assert.InDelta(t, 270, ScreenRotation(c, orb.Point{50, 100}), 1e-9)
}

func TestMathAngle_InvertsPointAtAngle(t *testing.T) {
	center := orb.Point{-0.5, 52}
	for theta := 0.0; theta < 360; theta += 20 {
		p := PointAtAngle(center, 80, theta)
		got := MathAngle(center, p)
		diff := math.Abs(got - theta)
		if diff > 180 {
			diff = 360 - diff
		}
		assert.Less(t, diff, 1e-6, "theta=%v got=%v", theta, got)
	}
}

func TestRotatePixel_Clockwise(t *testing.T) {
	c := orb.Point{0, 0}
	up := orb.Point{0, -10}
	r := RotatePixel(up, c, 90)
	assert.InDelta(t, 10, r[0], 1e-9)
	assert.InDelta(t, 0, r[1], 1e-9)
}

func TestMercatorProjector_RoundTrip(t *testing.T) {
	p := NewMercatorProjector(18)
	ll := orb.Point{1.0, 46.0}
	px := p.LatLngToContainerPoint(ll)
	back := p.ContainerPointToLatLng(px)
	assert.InDelta(t, ll[0], back[0], 1e-9)
	assert.InDelta(t, ll[1], back[1], 1e-9)

	withOrigin := &MercatorProjector{Zoom: 18, Origin: orb.Point{0.999, 46.001}}
	px = withOrigin.LatLngToContainerPoint(ll)
	require.Greater(t, px[0], 0.0)
	require.Greater(t, px[1], 0.0)
	back = withOrigin.ContainerPointToLatLng(px)
	assert.InDelta(t, ll[0], back[0], 1e-9)
	assert.InDelta(t, ll[1], back[1], 1e-9)
}

func TestCircleBound(t *testing.T) {
	b := CircleBound(orb.Point{0, 0}, 111000)
	assert.InDelta(t, 1, b.Max[1]-0, 1e-9)
	assert.InDelta(t, -1, b.Min[0], 1e-9)

	b = CircleBound(orb.Point{0, 60}, 111000)
	assert.InDelta(t, 2, b.Max[0], 1e-6)
}

func TestOffset(t *testing.T) {
	c := orb.Point{1, 46}
	p := Offset(c, 30, 40)
	assert.InDelta(t, 50, Distance(c, p), 0.1)
	assert.Equal(t, c, Offset(c, 0, 0))
}

func TestPointAlong(t *testing.T) {
	f := NewFrame(orb.Point{1, 46})
	line := []orb.Point{f.FromLocal(0, 0), f.FromLocal(100, 0), f.FromLocal(100, 100)}

	assert.Equal(t, line[0], PointAlong(line, -5))
	assert.Equal(t, line[2], PointAlong(line, 1e6))

	x, y := f.ToLocal(PointAlong(line, 150))
	assert.InDelta(t, 100, x, 0.5)
	assert.InDelta(t, 50, y, 0.5)
}
