// Package controlpoint derives the draggable handles of a shape and runs the
// pointer-drag state machine that edits it.
package controlpoint

import (
	"fmt"
	"strconv"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-draw/internal/geomath"
	"github.com/joeblew999/plat-draw/internal/shape"
)

// Role says what dragging a control point does.
type Role string

const (
	RoleCenter        Role = "center"
	RoleVertex        Role = "vertex"
	RoleMidpoint      Role = "midpoint"
	RoleCorner        Role = "corner"
	RoleCardinal      Role = "cardinal"
	RoleRotation      Role = "rotation"
	RoleSectionStart  Role = "section-start"
	RoleSectionEnd    Role = "section-end"
	RoleSectionRadius Role = "section-radius"
)

// Point is one handle.
type Point struct {
	ID       string    `json:"id"`
	Role     Role      `json:"role"`
	Position orb.Point `json:"position"`
	// Index is the vertex, segment, corner or cardinal index for those roles.
	Index   int    `json:"index"`
	Section string `json:"section,omitempty"`
	Hidden  bool   `json:"hidden,omitempty"`
}

// Guide is the line drawn from a rectangle's center to its rotation handle.
type Guide struct {
	From    orb.Point `json:"from"`
	To      orb.Point `json:"to"`
	Visible bool      `json:"visible"`
}

// Set is the full handle set of one shape.
type Set struct {
	Points []Point `json:"points"`
	Guide  *Guide  `json:"guide,omitempty"`
}

// Get returns the handle with the given ID.
func (s Set) Get(id string) (Point, bool) {
	for _, p := range s.Points {
		if p.ID == id {
			return p, true
		}
	}
	return Point{}, false
}

// Visible returns the handles that are not hidden.
func (s Set) Visible() []Point {
	var out []Point
	for _, p := range s.Points {
		if !p.Hidden {
			out = append(out, p)
		}
	}
	return out
}

// ByRole returns the handles with role r in order.
func (s Set) ByRole(r Role) []Point {
	var out []Point
	for _, p := range s.Points {
		if p.Role == r {
			out = append(out, p)
		}
	}
	return out
}

func (s *Set) update(p Point) {
	for i := range s.Points {
		if s.Points[i].ID == p.ID {
			s.Points[i] = p
			return
		}
	}
}

// Handle IDs.
func VertexID(i int) string { return "vertex:" + strconv.Itoa(i) }
func MidpointID(i int) string { return "midpoint:" + strconv.Itoa(i) }
func CornerID(i int) string { return "corner:" + strconv.Itoa(i) }
func CardinalID(i int) string { return "cardinal:" + strconv.Itoa(i) }

func SectionHandleID(section string, r Role) string {
	return fmt.Sprintf("section:%s:%s", section, r)
}

const (
	CenterID   = "center"
	RotationID = "rotation"
)

// Derive builds the handle set for s from its current geometry.
func Derive(s shape.Shape) Set {
	var set Set
	add := func(p Point) { set.Points = append(set.Points, p) }

	switch v := s.(type) {
	case *shape.Polygon:
		pts := v.Points()
		add(Point{ID: CenterID, Role: RoleCenter, Position: geomath.Centroid(pts)})
		addPath(add, pts, v.MidPoints())
	case *shape.Line:
		pts := v.Points()
		add(Point{ID: CenterID, Role: RoleCenter, Position: lineCenter(pts)})
		addPath(add, pts, v.MidPoints())
	case *shape.ElevationLine:
		pts := v.Points()
		add(Point{ID: CenterID, Role: RoleCenter, Position: lineCenter(pts)})
		addPath(add, pts, nil)
	case *shape.Circle:
		add(Point{ID: CenterID, Role: RoleCenter, Position: v.Center()})
		addCardinals(add, v.CardinalPoints())
	case *shape.SectionedCircle:
		add(Point{ID: CenterID, Role: RoleCenter, Position: v.Center()})
		addCardinals(add, v.CardinalPoints())
		for _, sec := range v.Sections() {
			start, end, radius, _ := v.SectionHandles(sec.ID)
			add(Point{ID: SectionHandleID(sec.ID, RoleSectionStart), Role: RoleSectionStart, Position: start, Section: sec.ID})
			add(Point{ID: SectionHandleID(sec.ID, RoleSectionEnd), Role: RoleSectionEnd, Position: end, Section: sec.ID})
			add(Point{ID: SectionHandleID(sec.ID, RoleSectionRadius), Role: RoleSectionRadius, Position: radius, Section: sec.ID})
		}
	case *shape.Rectangle:
		add(Point{ID: CenterID, Role: RoleCenter, Position: v.Center()})
		for i, c := range v.RotatedCorners() {
			add(Point{ID: CornerID(i), Role: RoleCorner, Position: c, Index: i})
		}
		handle := v.RotationHandle()
		add(Point{ID: RotationID, Role: RoleRotation, Position: handle})
		set.Guide = &Guide{From: v.Center(), To: handle}
	case *shape.Note:
		add(Point{ID: CenterID, Role: RoleCenter, Position: v.Point()})
	default:
		add(Point{ID: CenterID, Role: RoleCenter, Position: s.Bound().Center()})
	}
	return set
}

func addPath(add func(Point), pts, mids []orb.Point) {
	for i, p := range pts {
		add(Point{ID: VertexID(i), Role: RoleVertex, Position: p, Index: i})
	}
	for i, m := range mids {
		add(Point{ID: MidpointID(i), Role: RoleMidpoint, Position: m, Index: i})
	}
}

func addCardinals(add func(Point), cards []orb.Point) {
	for i, c := range cards {
		add(Point{ID: CardinalID(i), Role: RoleCardinal, Position: c, Index: i})
	}
}

func lineCenter(pts []orb.Point) orb.Point {
	return geomath.PointAlong(pts, geomath.LineLength(pts)/2)
}
