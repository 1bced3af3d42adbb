package tiles

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plan() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	well := geojson.NewFeature(orb.Point{1.0001, 46.0001})
	well.Properties["id"] = "well"
	well.Properties["radius"] = 25.0
	well.Properties["style"] = map[string]any{"color": "#00f"}
	fc.Append(well)

	field := geojson.NewFeature(orb.Polygon{{{1, 46}, {1.002, 46}, {1.002, 46.002}, {1, 46.002}, {1, 46}}})
	field.Properties["id"] = "field"
	field.Properties["segmentLengths"] = []any{150.0, 222.0}
	fc.Append(field)
	return fc
}

func TestEncode(t *testing.T) {
	fc := plan()
	tile := maptile.At(orb.Point{1.0001, 46.0001}, 16)

	data, err := Encode(fc, tile, DefaultLayer)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	layers, err := mvt.UnmarshalGzipped(data)
	require.NoError(t, err)
	require.Len(t, layers, 1)
	assert.Equal(t, DefaultLayer, layers[0].Name)
	require.Len(t, layers[0].Features, 2)
	for _, f := range layers[0].Features {
		assert.NotContains(t, f.Properties, "style")
		assert.NotContains(t, f.Properties, "segmentLengths")
	}

	// Encoding must leave the source geometry in degrees.
	assert.Equal(t, orb.Point{1.0001, 46.0001}, fc.Features[0].Geometry)
}

func TestEncodeEmptyTile(t *testing.T) {
	data, err := Encode(plan(), maptile.At(orb.Point{-70, -30}, 16), DefaultLayer)
	require.NoError(t, err)
	assert.Nil(t, data)

	_, err = Encode(plan(), maptile.New(0, 0, MaxZoom+1), DefaultLayer)
	assert.ErrorIs(t, err, ErrZoom)
}

func TestCovering(t *testing.T) {
	fc := plan()
	assert.Len(t, Covering(fc, 0), 1)

	tiles := Covering(fc, 18)
	assert.Greater(t, len(tiles), 1)
	for _, tl := range tiles {
		assert.Equal(t, maptile.Zoom(18), tl.Z)
	}
}
