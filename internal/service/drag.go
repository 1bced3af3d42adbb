package service

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-draw/internal/controlpoint"
	"github.com/joeblew999/plat-draw/internal/shape"
)

var ErrNoSession = errors.New("no drag in progress")

func sessionKey(planID, shapeID string) string { return planID + "/" + shapeID }

func (s *PlanService) controller(planID string, sh shape.Shape, opts ...controlpoint.Option) *controlpoint.Controller {
	return controlpoint.New(sh, append([]controlpoint.Option{
		controlpoint.WithHost(busHost{bus: s.bus, plan: planID}),
		controlpoint.WithLogger(s.log),
	}, opts...)...)
}

// Handles returns the control points of a shape. During a live drag these are
// the session's handles, with the non-active ones hidden.
func (s *PlanService) Handles(planID, shapeID string) (Handles, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, sh, err := s.lookup(planID, shapeID)
	if err != nil {
		return Handles{}, err
	}
	if c, ok := s.sessions[sessionKey(planID, shapeID)]; ok {
		return c.Set(), nil
	}
	return controlpoint.Derive(sh), nil
}

// Drag replays a complete gesture on a shape and persists the result.
func (s *PlanService) Drag(planID, shapeID string, req DragRequest) (ShapeView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, sh, err := s.lookup(planID, shapeID)
	if err != nil {
		return ShapeView{}, err
	}
	if _, busy := s.sessions[sessionKey(planID, shapeID)]; busy {
		return ShapeView{}, fmt.Errorf("shape %q: %w", shapeID, controlpoint.ErrAlreadyDragging)
	}
	// Replayed paths are not paced by a display.
	c := s.controller(planID, sh, controlpoint.WithFrameInterval(0))
	if err := controlpoint.Replay(c, req.PointID, req.Path); err != nil {
		return ShapeView{}, err
	}
	if err := s.saveToDisk(); err != nil {
		return ShapeView{}, err
	}
	return viewOf(sh)
}

// BeginDrag opens a live drag session on one control point.
func (s *PlanService) BeginDrag(planID, shapeID, pointID string) (Handles, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, sh, err := s.lookup(planID, shapeID)
	if err != nil {
		return Handles{}, err
	}
	key := sessionKey(planID, shapeID)
	if _, busy := s.sessions[key]; busy {
		return Handles{}, fmt.Errorf("shape %q: %w", shapeID, controlpoint.ErrAlreadyDragging)
	}
	c := s.controller(planID, sh)
	if err := c.PointerDown(pointID); err != nil {
		return Handles{}, err
	}
	s.sessions[key] = c
	return c.Set(), nil
}

// MoveDrag feeds a pointer position to a live session. Moves faster than the
// frame interval are dropped and reported with applied false.
func (s *PlanService) MoveDrag(planID, shapeID string, at orb.Point) (applied bool, h Handles, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.sessions[sessionKey(planID, shapeID)]
	if !ok {
		return false, Handles{}, fmt.Errorf("shape %q: %w", shapeID, ErrNoSession)
	}
	applied, err = c.PointerMove(at)
	return applied, c.Set(), err
}

// EndDrag releases the pointer at at, commits the shape and persists the plan.
func (s *PlanService) EndDrag(planID, shapeID string, at orb.Point) (ShapeView, error) {
	return s.closeDrag(planID, shapeID, func(c *controlpoint.Controller) error { return c.PointerUp(at) })
}

// CancelDrag restores the geometry from before BeginDrag.
func (s *PlanService) CancelDrag(planID, shapeID string) (ShapeView, error) {
	return s.closeDrag(planID, shapeID, (*controlpoint.Controller).Cancel)
}

func (s *PlanService) closeDrag(planID, shapeID string, fn func(*controlpoint.Controller) error) (ShapeView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sessionKey(planID, shapeID)
	c, ok := s.sessions[key]
	if !ok {
		return ShapeView{}, fmt.Errorf("shape %q: %w", shapeID, ErrNoSession)
	}
	delete(s.sessions, key)
	dragErr := fn(c)
	if err := s.saveToDisk(); err != nil {
		return ShapeView{}, errors.Join(dragErr, err)
	}
	v, err := viewOf(c.Shape())
	return v, errors.Join(dragErr, err)
}
