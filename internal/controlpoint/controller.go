package controlpoint

import (
	"errors"
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"

	"github.com/joeblew999/plat-draw/internal/shape"
)

var (
	ErrUnknownPoint    = errors.New("unknown control point")
	ErrNotDragging     = errors.New("no drag in progress")
	ErrAlreadyDragging = errors.New("drag already in progress")
	ErrShapeReleased   = errors.New("shape has been released")
	ErrEmptyPath       = errors.New("empty drag path")
)

// DefaultFrameInterval is the minimum time between applied pointer moves.
const DefaultFrameInterval = 16 * time.Millisecond

// Host is the map surface the controller drives.
type Host interface {
	SetPanning(enabled bool)
}

type nopHost struct{}

func (nopHost) SetPanning(bool) {}

// State of a Controller.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Controller edits one shape through its control points. It is not safe for
// concurrent use.
type Controller struct {
	shape    shape.Shape
	host     Host
	log      logrus.FieldLogger
	now      func() time.Time
	interval time.Duration

	state    State
	set      Set
	active   Point
	snapshot shape.Record
	lastMove time.Time
	inserted bool
}

type Option func(*Controller)

func WithHost(h Host) Option { return func(c *Controller) { c.host = h } }

func WithLogger(l logrus.FieldLogger) Option { return func(c *Controller) { c.log = l } }

// WithClock replaces time.Now for throttling.
func WithClock(now func() time.Time) Option { return func(c *Controller) { c.now = now } }

// WithFrameInterval sets the move throttle; zero disables throttling.
func WithFrameInterval(d time.Duration) Option { return func(c *Controller) { c.interval = d } }

// New creates an idle controller for s.
func New(s shape.Shape, opts ...Option) *Controller {
	c := &Controller{
		shape:    s,
		host:     nopHost{},
		log:      logrus.StandardLogger(),
		now:      time.Now,
		interval: DefaultFrameInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithFields(logrus.Fields{"shape": s.ID(), "kind": s.Kind()})
	c.set = Derive(s)
	return c
}

func (c *Controller) Shape() shape.Shape { return c.shape }
func (c *Controller) State() State { return c.state }

// Set returns the current handles, including hidden flags during a drag.
func (c *Controller) Set() Set {
	out := Set{Points: append([]Point(nil), c.set.Points...)}
	if c.set.Guide != nil {
		g := *c.set.Guide
		out.Guide = &g
	}
	return out
}

// PointerDown starts dragging pointID. Map panning is disabled and every other
// handle hidden except those that follow the active one.
func (c *Controller) PointerDown(pointID string) error {
	if c.state == Dragging {
		return ErrAlreadyDragging
	}
	if !c.shape.Alive() {
		return ErrShapeReleased
	}
	p, ok := c.set.Get(pointID)
	if !ok {
		return fmt.Errorf("%q: %w", pointID, ErrUnknownPoint)
	}
	snap, err := c.shape.Snapshot()
	if err != nil {
		return fmt.Errorf("snapshot before drag: %w", err)
	}

	c.snapshot = snap
	c.active = p
	c.inserted = false
	c.lastMove = time.Time{}
	c.state = Dragging
	c.host.SetPanning(false)

	for i := range c.set.Points {
		c.set.Points[i].Hidden = c.set.Points[i].ID != p.ID && !c.follows(c.set.Points[i])
	}
	if c.set.Guide != nil {
		c.set.Guide.Visible = p.Role == RoleRotation
	}
	c.log.WithFields(logrus.Fields{"point": p.ID, "role": p.Role}).Debug("drag started")
	return nil
}

// follows reports whether q moves along with the active handle: the midpoints on
// either side of a dragged vertex.
func (c *Controller) follows(q Point) bool {
	if c.active.Role != RoleVertex || q.Role != RoleMidpoint {
		return false
	}
	prev, next := c.adjacentSegments(c.active.Index)
	return q.Index == prev || q.Index == next
}

// adjacentSegments returns the segments touching vertex i, or -1.
func (c *Controller) adjacentSegments(i int) (prev, next int) {
	n, closed := c.pathShape()
	prev, next = i-1, i
	if closed {
		prev = (i - 1 + n) % n
	} else if next >= n-1 {
		next = -1
	}
	return prev, next
}

func (c *Controller) pathShape() (n int, closed bool) {
	switch v := c.shape.(type) {
	case *shape.Polygon:
		return len(v.Points()), true
	case *shape.Line:
		return len(v.Points()), false
	case *shape.ElevationLine:
		return len(v.Points()), false
	}
	return 0, false
}

// PointerMove drags the active handle to at. Moves arriving faster than the frame
// interval are dropped and false is returned. Derived properties are not
// recomputed.
func (c *Controller) PointerMove(at orb.Point) (bool, error) {
	if c.state != Dragging {
		return false, ErrNotDragging
	}
	now := c.now()
	if c.interval > 0 && !c.lastMove.IsZero() && now.Sub(c.lastMove) < c.interval {
		return false, nil
	}
	c.lastMove = now
	return true, c.apply(at)
}

// PointerUp applies the final position, re-enables panning, commits the shape's
// derived properties once and rebuilds the handles. When the result cannot be
// committed the geometry is restored from before PointerDown and the commit
// error returned.
func (c *Controller) PointerUp(at orb.Point) error {
	if c.state != Dragging {
		return ErrNotDragging
	}
	applyErr := c.apply(at)
	commitErr := c.finish("drag finished")
	if commitErr != nil {
		commitErr = errors.Join(commitErr, c.rollback())
	}
	return errors.Join(applyErr, commitErr)
}

func (c *Controller) rollback() error {
	if err := c.shape.Restore(c.snapshot); err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	c.set = Derive(c.shape)
	c.log.WithField("version", c.shape.Version()).Warn("drag rolled back")
	return c.shape.UpdateProperties()
}

// Cancel restores the geometry from before PointerDown.
func (c *Controller) Cancel() error {
	if c.state != Dragging {
		return ErrNotDragging
	}
	restoreErr := c.shape.Restore(c.snapshot)
	return errors.Join(restoreErr, c.finish("drag cancelled"))
}

func (c *Controller) finish(msg string) error {
	c.state = Idle
	c.host.SetPanning(true)
	err := c.shape.UpdateProperties()
	c.set = Derive(c.shape)
	c.log.WithFields(logrus.Fields{"point": c.active.ID, "version": c.shape.Version()}).Debug(msg)
	c.active = Point{}
	return err
}

func (c *Controller) apply(at orb.Point) error {
	p := c.active
	switch p.Role {
	case RoleCenter:
		c.shape.Move(shape.DeltaBetween(p.Position, at))
		c.moveActive(at)
		return nil
	case RoleVertex:
		return c.moveVertex(p.Index, at)
	case RoleMidpoint:
		return c.dragMidpoint(at)
	case RoleCorner:
		r, ok := c.shape.(*shape.Rectangle)
		if !ok {
			return c.roleMismatch()
		}
		r.ResizeFromCorner(at)
		c.moveActive(r.RotatedCorners()[p.Index])
		return nil
	case RoleRotation:
		r, ok := c.shape.(*shape.Rectangle)
		if !ok {
			return c.roleMismatch()
		}
		r.RotateToward(at)
		handle := r.RotationHandle()
		c.moveActive(handle)
		if c.set.Guide != nil {
			c.set.Guide.From, c.set.Guide.To = r.Center(), handle
		}
		return nil
	case RoleCardinal:
		return c.dragCardinal(at)
	case RoleSectionStart, RoleSectionEnd, RoleSectionRadius:
		return c.dragSection(at)
	}
	return c.roleMismatch()
}

type vertexEditor interface {
	MoveVertex(int, orb.Point) error
	AddVertex(int, orb.Point) (int, error)
	MidPoints() []orb.Point
}

func (c *Controller) moveVertex(i int, at orb.Point) error {
	ed, ok := c.shape.(vertexEditor)
	if !ok {
		return c.roleMismatch()
	}
	if err := ed.MoveVertex(i, at); err != nil {
		return err
	}
	c.moveActive(at)
	mids := ed.MidPoints()
	prev, next := c.adjacentSegments(i)
	for _, seg := range []int{prev, next} {
		if seg < 0 || seg >= len(mids) {
			continue
		}
		if q, ok := c.set.Get(MidpointID(seg)); ok && !q.Hidden {
			q.Position = mids[seg]
			c.set.update(q)
		}
	}
	return nil
}

// dragMidpoint inserts a vertex on the first move and then drags it.
func (c *Controller) dragMidpoint(at orb.Point) error {
	ed, ok := c.shape.(vertexEditor)
	if !ok {
		return c.roleMismatch()
	}
	if c.inserted {
		return c.moveVertex(c.active.Index, at)
	}
	i, err := ed.AddVertex(c.active.Index, at)
	if err != nil {
		return err
	}
	c.inserted = true
	c.active.Index = i
	c.moveActive(at)
	return nil
}

type resizableCircle interface {
	ResizeFromControlPoint(orb.Point)
	CardinalPoints() []orb.Point
}

func (c *Controller) dragCardinal(at orb.Point) error {
	circle, ok := c.shape.(resizableCircle)
	if !ok {
		return c.roleMismatch()
	}
	circle.ResizeFromControlPoint(at)
	c.moveActive(circle.CardinalPoints()[c.active.Index])
	return nil
}

func (c *Controller) dragSection(at orb.Point) error {
	sc, ok := c.shape.(*shape.SectionedCircle)
	if !ok {
		return c.roleMismatch()
	}
	id := c.active.Section
	sec, found := sc.Section(id)
	if !found {
		return fmt.Errorf("section %q: %w", id, shape.ErrSectionNotFound)
	}
	var err error
	switch c.active.Role {
	case RoleSectionStart:
		_, err = sc.SetSectionAngles(id, sc.AngleTo(at), sec.EndAngle)
	case RoleSectionEnd:
		_, err = sc.SetSectionAngles(id, sec.StartAngle, sc.AngleTo(at))
	case RoleSectionRadius:
		_, err = sc.SetSectionRadius(id, sc.DistanceTo(at))
	}
	if err != nil {
		return err
	}
	start, end, radius, _ := sc.SectionHandles(id)
	switch c.active.Role {
	case RoleSectionStart:
		c.moveActive(start)
	case RoleSectionEnd:
		c.moveActive(end)
	default:
		c.moveActive(radius)
	}
	return nil
}

func (c *Controller) moveActive(at orb.Point) {
	c.active.Position = at
	c.set.update(c.active)
}

func (c *Controller) roleMismatch() error {
	return fmt.Errorf("%s handle on %s: %w", c.active.Role, c.shape.Kind(), ErrUnknownPoint)
}

// Replay runs a complete gesture: press on pointID, move through path and release
// at its last point.
func Replay(c *Controller, pointID string, path []orb.Point) error {
	if len(path) == 0 {
		return ErrEmptyPath
	}
	if err := c.PointerDown(pointID); err != nil {
		return err
	}
	for _, p := range path[:len(path)-1] {
		if _, err := c.PointerMove(p); err != nil {
			return errors.Join(err, c.Cancel())
		}
	}
	return c.PointerUp(path[len(path)-1])
}
