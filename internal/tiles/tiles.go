// Package tiles renders plan shapes as gzipped Mapbox vector tiles so a map can
// display a plan without loading every shape.
//
// Circles are exported as points carrying a radius property; clients draw the
// disc themselves.
package tiles

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"
)

// DefaultLayer is the MVT layer name shapes are written to.
const DefaultLayer = "shapes"

// MaxZoom is the deepest zoom level tiles are rendered for.
const MaxZoom = 22

// extent is the MVT tile extent ProjectToTile maps to.
const extent = 4096

var ErrZoom = errors.New("zoom out of range")

// Encode renders the features of fc that touch t. Empty tiles return nil data
// and no error.
func Encode(fc *geojson.FeatureCollection, t maptile.Tile, layer string) ([]byte, error) {
	if t.Z > MaxZoom {
		return nil, fmt.Errorf("z=%d: %w", t.Z, ErrZoom)
	}
	bound := t.Bound()

	clipped := geojson.NewFeatureCollection()
	for _, f := range fc.Features {
		if f.Geometry == nil || !intersects(f.Geometry, bound) {
			continue
		}
		// Clip and ProjectToTile rewrite coordinates in place.
		clone := geojson.NewFeature(orb.Clone(f.Geometry))
		clone.ID = f.ID
		for k, v := range f.Properties {
			if scalar(v) {
				clone.Properties[k] = v
			}
		}
		clipped.Append(clone)
	}
	if len(clipped.Features) == 0 {
		return nil, nil
	}

	l := mvt.NewLayer(layer, clipped)
	l.Simplify(simplify.DouglasPeucker(pixelDegrees(t.Z)))
	l.Clip(bound)
	l.ProjectToTile(t)
	l.RemoveEmpty(0.5, 0.5)
	if len(l.Features) == 0 {
		return nil, nil
	}
	return mvt.MarshalGzipped(mvt.Layers{l})
}

// Covering returns the tiles at zoom z that hold at least one feature of fc.
func Covering(fc *geojson.FeatureCollection, z maptile.Zoom) []maptile.Tile {
	seen := make(map[maptile.Tile]bool)
	var out []maptile.Tile
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		for _, t := range tilesInBound(f.Geometry.Bound(), z) {
			if !seen[t] && intersects(f.Geometry, t.Bound()) {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}

// pixelDegrees is the width of one tile pixel in degrees at zoom z.
func pixelDegrees(z maptile.Zoom) float64 {
	return 360 / (math.Exp2(float64(z)) * extent)
}

func scalar(v any) bool {
	switch v.(type) {
	case string, bool, float64, float32, int, int64, uint64:
		return true
	}
	return false
}

// intersects refines a bounding box test for areal geometry: a polygon whose
// bound overlaps the tile may still miss it.
func intersects(g orb.Geometry, tile orb.Bound) bool {
	if !g.Bound().Intersects(tile) {
		return false
	}
	poly, ok := g.(orb.Polygon)
	if !ok {
		return true
	}
	for _, p := range poly[0] {
		if tile.Contains(p) {
			return true
		}
	}
	corners := []orb.Point{tile.Min, {tile.Max[0], tile.Min[1]}, tile.Max, {tile.Min[0], tile.Max[1]}, tile.Center()}
	for _, c := range corners {
		if planar.PolygonContains(poly, c) {
			return true
		}
	}
	// Edges may still cross the tile with no vertex on either side.
	ring := poly[0]
	for i := 0; i+1 < len(ring); i++ {
		if (orb.LineString{ring[i], ring[i+1]}).Bound().Intersects(tile) {
			return true
		}
	}
	return false
}

func tilesInBound(b orb.Bound, z maptile.Zoom) []maptile.Tile {
	minTile := maptile.At(orb.Point{b.Min[0], b.Max[1]}, z)
	maxTile := maptile.At(orb.Point{b.Max[0], b.Min[1]}, z)

	var out []maptile.Tile
	for x := minTile.X; x <= maxTile.X; x++ {
		for y := minTile.Y; y <= maxTile.Y; y++ {
			out = append(out, maptile.New(x, y, z))
		}
	}
	return out
}
