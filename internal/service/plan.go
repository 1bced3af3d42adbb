package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"

	"github.com/joeblew999/plat-draw/internal/controlpoint"
	"github.com/joeblew999/plat-draw/internal/coverage"
	"github.com/joeblew999/plat-draw/internal/elevation"
	"github.com/joeblew999/plat-draw/internal/shape"
)

var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("already exists")
	ErrNotLine  = errors.New("shape is not an elevation line")
	ErrNotNote  = errors.New("shape is not a note")
)

type plan struct {
	id     string
	name   string
	shapes []shape.Shape
	unsub  map[string]func()
}

func (p *plan) info() PlanInfo {
	return PlanInfo{ID: p.id, Name: p.name, ShapeCount: len(p.shapes)}
}

func (p *plan) find(id string) (int, shape.Shape) {
	for i, s := range p.shapes {
		if s.ID() == id {
			return i, s
		}
	}
	return -1, nil
}

// storedPlan is the on-disk form of a plan.
type storedPlan struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Shapes []shape.Record `json:"shapes"`
}

// PlanService manages drawing plans and their shapes.
type PlanService struct {
	dataDir  string
	plans    map[string]*plan
	sessions map[string]*controlpoint.Controller
	bus      *EventBus
	analyzer *coverage.Analyzer
	sampler  *elevation.Sampler
	log      logrus.FieldLogger
	mu       sync.RWMutex
}

type Option func(*PlanService)

func WithBus(b *EventBus) Option { return func(s *PlanService) { s.bus = b } }

func WithSampler(smp *elevation.Sampler) Option { return func(s *PlanService) { s.sampler = smp } }

func WithLogger(l logrus.FieldLogger) Option { return func(s *PlanService) { s.log = l } }

// NewPlanService creates a plan service and loads plans.json from dataDir. An
// empty dataDir keeps plans in memory only.
func NewPlanService(dataDir string, opts ...Option) *PlanService {
	s := &PlanService{
		dataDir:  dataDir,
		plans:    make(map[string]*plan),
		sessions: make(map[string]*controlpoint.Controller),
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.bus == nil {
		s.bus = NewEventBus()
	}
	if s.sampler == nil {
		s.sampler = elevation.NewSampler(nil, elevation.WithLogger(s.log))
	}
	s.analyzer = coverage.New(coverage.WithLogger(s.log))
	s.loadFromDisk()
	return s
}

// Bus returns the bus shape and plan events are published on.
func (s *PlanService) Bus() *EventBus { return s.bus }

// List returns all plans ordered by name.
func (s *PlanService) List() []PlanInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]PlanInfo, 0, len(s.plans))
	for _, p := range s.plans {
		out = append(out, p.info())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Get returns a plan by ID.
func (s *PlanService) Get(id string) (PlanInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.plans[id]
	if !ok {
		return PlanInfo{}, false
	}
	return p.info(), true
}

// Create adds an empty plan. The ID is derived from the name.
func (s *PlanService) Create(name string) (PlanInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := generateID(name)
	if id == "" {
		id = uuid.NewString()
	}
	if _, exists := s.plans[id]; exists {
		return PlanInfo{}, fmt.Errorf("plan %q: %w", id, ErrExists)
	}

	p := &plan{id: id, name: name, unsub: make(map[string]func())}
	s.plans[id] = p
	if err := s.saveToDisk(); err != nil {
		delete(s.plans, id)
		return PlanInfo{}, err
	}
	s.bus.Publish(Event{Resource: "plans", Action: "created", ID: id})
	return p.info(), nil
}

// Import creates a plan from a plan file. Shapes that fail to decode are
// skipped and reported in the returned error alongside the created plan.
func (s *PlanService) Import(pf PlanFile) (PlanInfo, error) {
	info, err := s.Create(pf.Name)
	if err != nil {
		return PlanInfo{}, err
	}
	var errs []error
	for i, r := range pf.Shapes {
		if _, err := s.AddShape(info.ID, r); err != nil {
			errs = append(errs, fmt.Errorf("shape %d: %w", i, err))
		}
	}
	info, _ = s.Get(info.ID)
	return info, errors.Join(errs...)
}

// Delete removes a plan and releases its shapes.
func (s *PlanService) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.plans[id]
	if !ok {
		return fmt.Errorf("plan %q: %w", id, ErrNotFound)
	}
	for _, sh := range p.shapes {
		s.detach(p, sh)
	}
	delete(s.plans, id)
	s.bus.Publish(Event{Resource: "plans", Action: "deleted", ID: id})
	return s.saveToDisk()
}

// AddShape decodes rec into a live shape of the plan.
func (s *PlanService) AddShape(planID string, rec ShapeRecord) (ShapeView, error) {
	r, err := rec.Record()
	if err != nil {
		return ShapeView{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.plans[planID]
	if !ok {
		return ShapeView{}, fmt.Errorf("plan %q: %w", planID, ErrNotFound)
	}
	sh, err := shape.Decode(r, shape.WithLogger(s.log))
	if err != nil {
		return ShapeView{}, err
	}
	if _, dup := p.find(sh.ID()); dup != nil {
		return ShapeView{}, fmt.Errorf("shape %q: %w", sh.ID(), ErrExists)
	}
	s.attach(p, sh)
	if err := sh.UpdateProperties(); err != nil {
		s.log.WithError(err).WithField("shape", sh.ID()).Warn("new shape has no derived properties")
	}
	if err := s.saveToDisk(); err != nil {
		return ShapeView{}, err
	}
	s.bus.Publish(Event{Resource: "shapes", Action: "created", Plan: planID, ID: sh.ID()})
	return viewOf(sh)
}

// Shapes returns every shape of a plan in insertion order.
func (s *PlanService) Shapes(planID string) ([]ShapeView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.plans[planID]
	if !ok {
		return nil, fmt.Errorf("plan %q: %w", planID, ErrNotFound)
	}
	out := make([]ShapeView, 0, len(p.shapes))
	for _, sh := range p.shapes {
		v, err := viewOf(sh)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Shape returns one shape.
func (s *PlanService) Shape(planID, shapeID string) (ShapeView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, sh, err := s.lookup(planID, shapeID)
	if err != nil {
		return ShapeView{}, err
	}
	return viewOf(sh)
}

// SetStyle restyles a shape. Empty name, category and access level keep their
// current values.
func (s *PlanService) SetStyle(planID, shapeID string, style shape.Style) (ShapeView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, sh, err := s.lookup(planID, shapeID)
	if err != nil {
		return ShapeView{}, err
	}
	sh.SetStyle(style)
	if err := s.saveToDisk(); err != nil {
		return ShapeView{}, err
	}
	return viewOf(sh)
}

// SetDetails relabels a shape. Unlike SetStyle, empty values clear.
func (s *PlanService) SetDetails(planID, shapeID string, d Details) (ShapeView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, sh, err := s.lookup(planID, shapeID)
	if err != nil {
		return ShapeView{}, err
	}
	if d.Title != nil || d.Description != nil {
		n, ok := sh.(*shape.Note)
		if !ok {
			return ShapeView{}, fmt.Errorf("shape %q is %s: %w", shapeID, sh.Kind(), ErrNotNote)
		}
		title, desc := n.Title(), n.Description()
		if d.Title != nil {
			title = *d.Title
		}
		if d.Description != nil {
			desc = *d.Description
		}
		n.SetDetails(title, desc)
	}
	sh.Rename(d.Name)
	sh.Classify(d.Category, d.AccessLevel)
	if err := s.saveToDisk(); err != nil {
		return ShapeView{}, err
	}
	return viewOf(sh)
}

// RemoveShape releases a shape and drops it from its plan.
func (s *PlanService) RemoveShape(planID, shapeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, sh, err := s.lookup(planID, shapeID)
	if err != nil {
		return err
	}
	i, _ := p.find(shapeID)
	p.shapes = append(p.shapes[:i], p.shapes[i+1:]...)
	s.detach(p, sh)
	s.bus.Publish(Event{Resource: "shapes", Action: "deleted", Plan: planID, ID: shapeID})
	return s.saveToDisk()
}

// Coverage computes the coverage of a plan, focused on focusID when set.
func (s *PlanService) Coverage(planID, focusID string) (coverage.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.plans[planID]
	if !ok {
		return coverage.Result{}, fmt.Errorf("plan %q: %w", planID, ErrNotFound)
	}
	return s.analyzer.Coverage(p.shapes, focusID)
}

// Components returns the coverage of every connected group in a plan.
func (s *PlanService) Components(planID string) ([]coverage.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.plans[planID]
	if !ok {
		return nil, fmt.Errorf("plan %q: %w", planID, ErrNotFound)
	}
	return s.analyzer.Components(p.shapes), nil
}

// RefreshElevation fetches a new profile for an elevation line. The lookup runs
// without holding the service lock; the result is dropped if the line changed
// meanwhile.
func (s *PlanService) RefreshElevation(ctx context.Context, planID, shapeID string) (ShapeView, error) {
	s.mu.RLock()
	line, version, points, err := s.elevationLine(planID, shapeID)
	s.mu.RUnlock()
	if err != nil {
		return ShapeView{}, err
	}

	profile, lookupErr := s.sampler.Profile(ctx, points)
	if profile.Source == "" {
		return ShapeView{}, lookupErr
	}
	profile.Version = version

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := line.ApplyProfile(profile); err != nil {
		return ShapeView{}, errors.Join(lookupErr, err)
	}
	if err := line.UpdateProperties(); err != nil {
		return ShapeView{}, err
	}
	if err := s.saveToDisk(); err != nil {
		return ShapeView{}, err
	}
	v, err := viewOf(line)
	return v, errors.Join(lookupErr, err)
}

// Export returns a plan as a GeoJSON feature collection.
func (s *PlanService) Export(planID string) (*geojson.FeatureCollection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.plans[planID]
	if !ok {
		return nil, fmt.Errorf("plan %q: %w", planID, ErrNotFound)
	}
	return shape.ToFeatureCollection(p.shapes), nil
}

func (s *PlanService) elevationLine(planID, shapeID string) (*shape.ElevationLine, uint64, []orb.Point, error) {
	_, sh, err := s.lookup(planID, shapeID)
	if err != nil {
		return nil, 0, nil, err
	}
	line, ok := sh.(*shape.ElevationLine)
	if !ok {
		return nil, 0, nil, fmt.Errorf("shape %q is %s: %w", shapeID, sh.Kind(), ErrNotLine)
	}
	return line, line.Version(), line.Points(), nil
}

func (s *PlanService) lookup(planID, shapeID string) (*plan, shape.Shape, error) {
	p, ok := s.plans[planID]
	if !ok {
		return nil, nil, fmt.Errorf("plan %q: %w", planID, ErrNotFound)
	}
	_, sh := p.find(shapeID)
	if sh == nil {
		return nil, nil, fmt.Errorf("shape %q: %w", shapeID, ErrNotFound)
	}
	return p, sh, nil
}

// attach adds sh to p and republishes its notifications on the bus.
func (s *PlanService) attach(p *plan, sh shape.Shape) {
	p.shapes = append(p.shapes, sh)
	planID := p.id
	p.unsub[sh.ID()] = sh.On(func(e shape.Event) {
		s.bus.Publish(Event{Resource: "shapes", Action: string(e.Type), Plan: planID, ID: e.ShapeID, Payload: e})
	})
}

func (s *PlanService) detach(p *plan, sh shape.Shape) {
	if cancel, ok := p.unsub[sh.ID()]; ok {
		cancel()
		delete(p.unsub, sh.ID())
	}
	delete(s.sessions, sessionKey(p.id, sh.ID()))
	sh.Release()
}

// configFile returns the path to the plans file.
func (s *PlanService) configFile() string {
	return filepath.Join(s.dataDir, "plans.json")
}

// loadFromDisk loads plans from disk. Shapes that fail to decode are logged and
// skipped; the rest of the plan still loads.
func (s *PlanService) loadFromDisk() {
	if s.dataDir == "" {
		return
	}
	data, err := os.ReadFile(s.configFile())
	if err != nil {
		return // File doesn't exist yet, start empty
	}

	var stored map[string]storedPlan
	if err := json.Unmarshal(data, &stored); err != nil {
		s.log.WithError(err).Warn("ignoring unreadable plans file")
		return
	}
	for id, sp := range stored {
		p := &plan{id: id, name: sp.Name, unsub: make(map[string]func())}
		shapes, err := shape.DecodeAll(sp.Shapes, shape.WithLogger(s.log))
		if err != nil {
			s.log.WithError(err).WithField("plan", id).Warn("skipped corrupt shapes")
		}
		for _, sh := range shapes {
			s.attach(p, sh)
		}
		s.plans[id] = p
	}
}

// saveToDisk persists plans to disk.
func (s *PlanService) saveToDisk() error {
	if s.dataDir == "" {
		return nil
	}
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return err
	}

	stored := make(map[string]storedPlan, len(s.plans))
	for id, p := range s.plans {
		sp := storedPlan{ID: id, Name: p.name, Shapes: make([]shape.Record, 0, len(p.shapes))}
		for _, sh := range p.shapes {
			rec, err := sh.Snapshot()
			if err != nil {
				return fmt.Errorf("snapshot %s: %w", sh.ID(), err)
			}
			sp.Shapes = append(sp.Shapes, rec)
		}
		stored[id] = sp
	}
	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.configFile(), data, 0644)
}

// generateID creates a URL-safe ID from a name.
func generateID(name string) string {
	id := strings.ToLower(strings.TrimSpace(name))
	id = strings.ReplaceAll(id, " ", "_")
	var result strings.Builder
	for _, r := range id {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			result.WriteRune(r)
		}
	}
	return result.String()
}
