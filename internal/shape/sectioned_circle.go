package shape

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-draw/internal/geomath"
)

// Section limits. Angles are math angles in degrees.
const (
	MinSectionOpening = 5.0
	// MaxOpeningStep caps how far one angle update may change a section's opening,
	// so a pointer jumping across the start handle cannot flip the sector.
	MaxOpeningStep   = 45.0
	MinSectionRadius = 1.0
)

// Section is an angular sector of a sectioned circle. A full-circle section is
// stored as 0..360; any other section has both angles in [0,360) and sweeps
// counter-clockwise from StartAngle to EndAngle.
type Section struct {
	ID         string  `json:"id"`
	Name       string  `json:"name,omitempty"`
	Color      string  `json:"color,omitempty"`
	StartAngle float64 `json:"startAngle"`
	EndAngle   float64 `json:"endAngle"`
	Radius     float64 `json:"radius"`
}

// IsFull reports whether the section covers the whole circle.
func (s Section) IsFull() bool {
	return s.StartAngle == 0 && s.EndAngle == 360
}

// Opening is the counter-clockwise sweep in degrees.
func (s Section) Opening() float64 {
	if s.IsFull() {
		return 360
	}
	return geomath.OpeningAngle(s.StartAngle, s.EndAngle)
}

// MidAngle is the angle halfway through the sweep.
func (s Section) MidAngle() float64 {
	return geomath.NormalizeAngle(s.StartAngle + s.Opening()/2)
}

// Surface is the sector area in square meters.
func (s Section) Surface() float64 {
	return s.Opening() / 360 * math.Pi * s.Radius * s.Radius
}

// Contains reports whether the math angle falls inside the sweep.
func (s Section) Contains(angle float64) bool {
	if s.IsFull() {
		return true
	}
	return geomath.OpeningAngle(s.StartAngle, angle) <= s.Opening()
}

// SectionUpdate carries the fields to change; nil fields are left alone.
type SectionUpdate struct {
	StartAngle *float64 `json:"startAngle,omitempty"`
	EndAngle   *float64 `json:"endAngle,omitempty"`
	Radius     *float64 `json:"radius,omitempty"`
	Name       *string  `json:"name,omitempty"`
	Color      *string  `json:"color,omitempty"`
}

// SectionedCircle is a circle carrying a list of sections, each with its own
// radius bounded by the circle's.
type SectionedCircle struct {
	base
	geom     circleGeometry
	sections []Section
}

// NewSectionedCircle creates a circle without sections.
func NewSectionedCircle(center orb.Point, radius float64, opts ...Option) (*SectionedCircle, error) {
	g, err := newCircleGeometry(center, radius)
	if err != nil {
		return nil, err
	}
	c := &SectionedCircle{base: newBase(KindSectionedCircle, buildOptions(opts)), geom: g}
	c.compute = c.computeProperties
	return c, nil
}

func (c *SectionedCircle) Center() orb.Point { return c.geom.center }
func (c *SectionedCircle) Radius() float64 { return c.geom.radius }

func (c *SectionedCircle) SetCenter(p orb.Point) {
	c.geom.setCenter(p)
	c.invalidate()
}

// SetRadius changes the circle radius; sections larger than it shrink to match.
func (c *SectionedCircle) SetRadius(r float64) error {
	if !(r > 0) {
		return fmt.Errorf("radius %v: %w", r, ErrInvalidDimension)
	}
	c.geom.setRadius(r)
	for i := range c.sections {
		c.sections[i].Radius = c.clampRadius(c.sections[i].Radius)
	}
	c.invalidate()
	return nil
}

// ResizeFromControlPoint sets the circle radius to the distance from the center to p.
func (c *SectionedCircle) ResizeFromControlPoint(p orb.Point) {
	_ = c.SetRadius(c.geom.radiusTo(p))
}

func (c *SectionedCircle) CardinalPoints() []orb.Point { return c.geom.cardinalPoints() }

func (c *SectionedCircle) Move(d Delta) {
	if d.IsZero() {
		return
	}
	c.geom.setCenter(d.Apply(c.geom.center))
	c.invalidate()
}

func (c *SectionedCircle) Bound() orb.Bound { return c.geom.bound() }

// Sections returns a copy of the sections in insertion order.
func (c *SectionedCircle) Sections() []Section {
	return append([]Section(nil), c.sections...)
}

// Section looks up a section by ID.
func (c *SectionedCircle) Section(id string) (Section, bool) {
	if i := c.indexOf(id); i >= 0 {
		return c.sections[i], true
	}
	return Section{}, false
}

func (c *SectionedCircle) indexOf(id string) int {
	for i, s := range c.sections {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// AddSection normalizes s and appends it. A missing ID is generated and a zero
// radius means the circle radius. 0..360 creates a full-circle section.
func (c *SectionedCircle) AddSection(s Section) Section {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Radius == 0 {
		s.Radius = c.geom.radius
	}
	s.Radius = c.clampRadius(s.Radius)
	if isFullSweep(s.StartAngle, s.EndAngle) {
		s.StartAngle, s.EndAngle = 0, 360
	} else {
		s.StartAngle = geomath.NormalizeAngle(s.StartAngle)
		s.EndAngle = geomath.NormalizeAngle(s.EndAngle)
		if geomath.OpeningAngle(s.StartAngle, s.EndAngle) < MinSectionOpening {
			s.EndAngle = geomath.NormalizeAngle(s.StartAngle + MinSectionOpening)
		}
	}
	c.sections = append(c.sections, s)
	c.invalidate()
	return s
}

// UpdateSection applies u to the section. Angle changes go through the same
// capped path as handle drags.
func (c *SectionedCircle) UpdateSection(id string, u SectionUpdate) (Section, error) {
	i := c.indexOf(id)
	if i < 0 {
		return Section{}, fmt.Errorf("section %q: %w", id, ErrSectionNotFound)
	}
	s := &c.sections[i]
	if u.Name != nil {
		s.Name = *u.Name
	}
	if u.Color != nil {
		s.Color = *u.Color
	}
	if u.Radius != nil {
		s.Radius = c.clampRadius(*u.Radius)
	}
	if u.StartAngle != nil || u.EndAngle != nil {
		start, end := s.StartAngle, s.EndAngle
		if u.StartAngle != nil {
			start = *u.StartAngle
		}
		if u.EndAngle != nil {
			end = *u.EndAngle
		}
		applyAngles(s, start, end)
	}
	c.invalidate()
	return *s, nil
}

// SetSectionAngles moves the section boundaries, see UpdateSection.
func (c *SectionedCircle) SetSectionAngles(id string, start, end float64) (Section, error) {
	return c.UpdateSection(id, SectionUpdate{StartAngle: &start, EndAngle: &end})
}

// SetSectionRadius clamps r to [MinSectionRadius, circle radius].
func (c *SectionedCircle) SetSectionRadius(id string, r float64) (Section, error) {
	return c.UpdateSection(id, SectionUpdate{Radius: &r})
}

// MakeFullCircle turns the section into a full-circle sector.
func (c *SectionedCircle) MakeFullCircle(id string) error {
	i := c.indexOf(id)
	if i < 0 {
		return fmt.Errorf("section %q: %w", id, ErrSectionNotFound)
	}
	c.sections[i].StartAngle, c.sections[i].EndAngle = 0, 360
	c.invalidate()
	return nil
}

func (c *SectionedCircle) RemoveSection(id string) error {
	i := c.indexOf(id)
	if i < 0 {
		return fmt.Errorf("section %q: %w", id, ErrSectionNotFound)
	}
	c.sections = append(c.sections[:i], c.sections[i+1:]...)
	c.invalidate()
	return nil
}

// SectionHandles returns the start, end and radius handle positions of a section.
func (c *SectionedCircle) SectionHandles(id string) (start, end, radius orb.Point, ok bool) {
	s, ok := c.Section(id)
	if !ok {
		return start, end, radius, false
	}
	return c.geom.pointAt(s.Radius, s.StartAngle),
		c.geom.pointAt(s.Radius, s.EndAngle),
		c.geom.pointAt(s.Radius, s.MidAngle()),
		true
}

// AngleTo returns the math angle from the center to p.
func (c *SectionedCircle) AngleTo(p orb.Point) float64 {
	return geomath.MathAngle(c.geom.center, p)
}

// DistanceTo returns meters from the center to p.
func (c *SectionedCircle) DistanceTo(p orb.Point) float64 {
	return geomath.Distance(c.geom.center, p)
}

func (c *SectionedCircle) clampRadius(r float64) float64 {
	return math.Min(c.geom.radius, math.Max(MinSectionRadius, r))
}

func isFullSweep(start, end float64) bool {
	return end-start == 360
}

// applyAngles updates the boundaries of s. A 360° sweep is taken as an explicit
// full circle. Otherwise the opening may change by at most MaxOpeningStep and
// never drops below MinSectionOpening; when clamped, the boundary that moved is
// the one adjusted.
func applyAngles(s *Section, start, end float64) {
	if isFullSweep(start, end) {
		s.StartAngle, s.EndAngle = 0, 360
		return
	}
	start = geomath.NormalizeAngle(start)
	end = geomath.NormalizeAngle(end)

	prev := s.Opening()
	opening := geomath.OpeningAngle(start, end)
	opening = math.Max(prev-MaxOpeningStep, math.Min(prev+MaxOpeningStep, opening))
	opening = math.Max(MinSectionOpening, opening)

	startMoved := start != geomath.NormalizeAngle(s.StartAngle)
	endMoved := end != geomath.NormalizeAngle(s.EndAngle)
	if startMoved && !endMoved {
		s.StartAngle = geomath.NormalizeAngle(end - opening)
		s.EndAngle = end
		return
	}
	s.StartAngle = start
	s.EndAngle = geomath.NormalizeAngle(start + opening)
}

func (c *SectionedCircle) computeProperties() (Properties, error) {
	props := Properties{
		Center:    c.geom.center,
		Radius:    c.geom.radius,
		Surface:   c.geom.area(),
		Perimeter: 2 * math.Pi * c.geom.radius,
	}
	for _, s := range c.sections {
		area := s.Surface()
		props.SectionSurface += area
		props.Sections = append(props.Sections, SectionProperties{
			ID:         s.ID,
			Name:       s.Name,
			Color:      s.Color,
			StartAngle: s.StartAngle,
			EndAngle:   s.EndAngle,
			Opening:    s.Opening(),
			Radius:     s.Radius,
			Surface:    area,
		})
	}
	return props, nil
}

func (c *SectionedCircle) Snapshot() (Record, error) {
	center, radius := c.geom.center, c.geom.radius
	return encodeRecord(KindSectionedCircle, sectionedData{
		ID:       c.id,
		Center:   &center,
		Radius:   &radius,
		Style:    c.style,
		Sections: c.Sections(),
	})
}

func (c *SectionedCircle) Restore(r Record) error {
	var d sectionedData
	if err := decodeRecord(r, KindSectionedCircle, &d); err != nil {
		return err
	}
	g, err := circleData{Center: d.Center, Radius: d.Radius}.geometry()
	if err != nil {
		return err
	}
	c.geom = g
	c.style = restoredStyle(d.Style)
	c.sections = nil
	for _, s := range d.Sections {
		c.AddSection(s)
	}
	c.invalidate()
	return nil
}
