// Package coverage groups overlapping shapes and estimates the ground area they
// cover together.
//
// Shapes are linked when their bounding boxes intersect, which may over-connect
// but never misses a real overlap. The union area of a group is the sum of the
// individual areas minus every pairwise intersection. That is exact for two
// overlapping shapes; where three or more overlap the same ground the triple
// regions are subtracted too often and Result.ApproximateOverlap is set.
package coverage

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"

	"github.com/joeblew999/plat-draw/internal/geomath"
	"github.com/joeblew999/plat-draw/internal/shape"
)

var (
	ErrNotFound = errors.New("shape not found")
	ErrNoArea   = errors.New("shape has no area")
)

// minOverlap is the smallest intersection, in m², counted as an overlap.
const minOverlap = 1e-6

// Result is the coverage of one connected component.
type Result struct {
	ShapeIDs []string `json:"shapeIds"`
	// Area is the estimated union area in m².
	Area float64 `json:"area"`
	// NaiveArea is the plain sum of the shapes' areas.
	NaiveArea float64 `json:"naiveArea"`
	// Overlap is the total of the pairwise intersections subtracted.
	Overlap float64 `json:"overlap"`
	// ApproximateOverlap is set when three or more shapes share ground.
	ApproximateOverlap bool `json:"approximateOverlap"`
}

// Analyzer computes coverage. The zero value is not usable; call New.
type Analyzer struct {
	log logrus.FieldLogger
}

type Option func(*Analyzer)

func WithLogger(l logrus.FieldLogger) Option { return func(a *Analyzer) { a.log = l } }

func New(opts ...Option) *Analyzer {
	a := &Analyzer{log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// node is a shape's bounding box in degrees, stored in the rtree.
type node struct {
	geom.Polygon
	index int
	bound orb.Bound
}

func newNode(i int, b orb.Bound) *node {
	return &node{
		Polygon: geom.Polygon{{
			{X: b.Min.Lon(), Y: b.Min.Lat()},
			{X: b.Max.Lon(), Y: b.Min.Lat()},
			{X: b.Max.Lon(), Y: b.Max.Lat()},
			{X: b.Min.Lon(), Y: b.Max.Lat()},
			{X: b.Min.Lon(), Y: b.Min.Lat()},
		}},
		index: i,
		bound: b,
	}
}

// ConnectedComponents splits the shapes that have an area into groups linked by
// bounding box intersection. Lines and notes are ignored. Components keep the
// input order of their first member.
func (a *Analyzer) ConnectedComponents(shapes []shape.Shape) [][]shape.Shape {
	var areal []shape.Shape
	for _, s := range shapes {
		if s != nil && hasArea(s) {
			areal = append(areal, s)
		}
	}

	tree := rtree.NewTree(25, 50)
	nodes := make([]*node, len(areal))
	for i, s := range areal {
		nodes[i] = newNode(i, s.Bound())
		tree.Insert(nodes[i])
	}

	visited := make([]bool, len(areal))
	var components [][]shape.Shape
	for start := range areal {
		if visited[start] {
			continue
		}
		visited[start] = true
		queue := []int{start}
		var members []int
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			members = append(members, cur)
			for _, g := range tree.SearchIntersect(nodes[cur].Bounds()) {
				n, ok := g.(*node)
				if !ok || visited[n.index] || !n.bound.Intersects(nodes[cur].bound) {
					continue
				}
				visited[n.index] = true
				queue = append(queue, n.index)
			}
		}
		sort.Ints(members)
		component := make([]shape.Shape, len(members))
		for i, m := range members {
			component[i] = areal[m]
		}
		components = append(components, component)
	}
	return components
}

// TotalArea estimates the union area of a component. Shapes without area are
// skipped. An intersection that cannot be computed counts as zero overlap.
func (a *Analyzer) TotalArea(component []shape.Shape) Result {
	var (
		res    Result
		polys  []geom.Polygon
		frame  *geomath.Frame
		shapes []shape.Shape
	)
	for _, s := range component {
		if s == nil || !hasArea(s) {
			continue
		}
		if frame == nil {
			frame = geomath.NewFrame(s.Bound().Center())
		}
		p := footprint(s, frame)
		polys = append(polys, p)
		shapes = append(shapes, s)
		res.ShapeIDs = append(res.ShapeIDs, s.ID())
		res.NaiveArea += ringArea(p)
	}

	overlaps := make(map[[2]int]bool)
	for i := 0; i < len(polys); i++ {
		for j := i + 1; j < len(polys); j++ {
			if !shapes[i].Bound().Intersects(shapes[j].Bound()) {
				continue
			}
			o := a.intersection(polys[i], polys[j], shapes[i], shapes[j])
			if o > minOverlap {
				overlaps[[2]int{i, j}] = true
				res.Overlap += o
			}
		}
	}
	res.ApproximateOverlap = a.tripleOverlap(polys, overlaps)
	res.Area = res.NaiveArea - res.Overlap
	if res.Area < 0 {
		res.Area = 0
	}
	if res.ApproximateOverlap {
		a.log.WithFields(logrus.Fields{
			"shapes":  res.ShapeIDs,
			"overlap": res.Overlap,
		}).Debug("three or more shapes overlap; coverage area is under-estimated")
	}
	return res
}

// intersection returns the overlap area of p and q in m².
func (a *Analyzer) intersection(p, q geom.Polygon, ps, qs shape.Shape) (area float64) {
	if samePolygon(p, q) {
		return ringArea(p)
	}
	defer func() {
		if r := recover(); r != nil {
			a.log.WithFields(logrus.Fields{
				"shape": ps.ID(),
				"other": qs.ID(),
			}).Warnf("intersection failed, counting no overlap: %v", r)
			area = 0
		}
	}()
	return ringArea(p.Intersection(q))
}

// tripleOverlap reports whether any three mutually overlapping polygons share a
// region.
func (a *Analyzer) tripleOverlap(polys []geom.Polygon, overlaps map[[2]int]bool) bool {
	n := len(polys)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if !overlaps[[2]int{i, j}] {
				continue
			}
			for k := j + 1; k < n; k++ {
				if overlaps[[2]int{i, k}] && overlaps[[2]int{j, k}] && a.shared(polys[i], polys[j], polys[k]) {
					return true
				}
			}
		}
	}
	return false
}

func (a *Analyzer) shared(p, q, r geom.Polygon) (ok bool) {
	defer func() {
		if recover() != nil {
			// Three pairwise overlaps without a computable common region still
			// make the estimate suspect.
			ok = true
		}
	}()
	pq := p
	if !samePolygon(p, q) {
		pq = p.Intersection(q)
	}
	if ringArea(pq) <= minOverlap {
		return false
	}
	if samePolygon(pq, r) {
		return true
	}
	return ringArea(pq.Intersection(r)) > minOverlap
}

// Components returns the coverage of every component, largest area first.
func (a *Analyzer) Components(shapes []shape.Shape) []Result {
	comps := a.ConnectedComponents(shapes)
	out := make([]Result, len(comps))
	for i, c := range comps {
		out[i] = a.TotalArea(c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Area > out[j].Area })
	return out
}

// Coverage returns the largest component's coverage, or with a non-empty focusID
// the coverage of the component containing that shape. With no areal shapes the
// result is empty.
func (a *Analyzer) Coverage(shapes []shape.Shape, focusID string) (Result, error) {
	if focusID == "" {
		results := a.Components(shapes)
		if len(results) == 0 {
			return Result{}, nil
		}
		return results[0], nil
	}

	var focus shape.Shape
	for _, s := range shapes {
		if s != nil && s.ID() == focusID {
			focus = s
			break
		}
	}
	if focus == nil {
		return Result{}, fmt.Errorf("%s: %w", focusID, ErrNotFound)
	}
	if !hasArea(focus) {
		return Result{}, fmt.Errorf("%s (%s): %w", focusID, focus.Kind(), ErrNoArea)
	}
	for _, c := range a.ConnectedComponents(shapes) {
		for _, s := range c {
			if s.ID() == focusID {
				return a.TotalArea(c), nil
			}
		}
	}
	return Result{}, fmt.Errorf("%s: %w", focusID, ErrNotFound)
}
