// Package elevation samples terrain elevation along a line through a remote
// lookup service and degrades to a synthetic profile when the service fails.
package elevation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"

	"github.com/joeblew999/plat-draw/internal/geomath"
	"github.com/joeblew999/plat-draw/internal/shape"
)

var (
	ErrMalformed = errors.New("malformed elevation response")
	ErrNoPoints  = errors.New("no points to sample")
)

// Retry defaults.
const (
	DefaultRetryDelay = 2 * time.Second
	DefaultAttempts   = 3
)

// Lookup returns one elevation in meters per point.
type Lookup interface {
	Lookup(ctx context.Context, points []orb.Point) ([]float64, error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(ctx context.Context, points []orb.Point) ([]float64, error)

func (f LookupFunc) Lookup(ctx context.Context, points []orb.Point) ([]float64, error) {
	return f(ctx, points)
}

// SamplePoints returns n samples spaced evenly by distance along points. Each
// sample carries its distance from the start and its position; elevations are
// zero.
func SamplePoints(points []orb.Point, n int) []shape.ElevationSample {
	if len(points) == 0 || n <= 0 {
		return nil
	}
	if n == 1 {
		return []shape.ElevationSample{{Point: points[0]}}
	}
	length := geomath.LineLength(points)
	out := make([]shape.ElevationSample, n)
	for i := range out {
		d := length * float64(i) / float64(n-1)
		out[i] = shape.ElevationSample{Distance: d, Point: geomath.PointAlong(points, d)}
	}
	return out
}

// ComputeStats derives profile statistics from samples alone.
func ComputeStats(samples []shape.ElevationSample) shape.ElevationStats {
	return shape.ComputeElevationStats(samples)
}

// Sampler fetches profiles.
type Sampler struct {
	lookup   Lookup
	log      logrus.FieldLogger
	delay    time.Duration
	attempts int
}

type Option func(*Sampler)

func WithLogger(l logrus.FieldLogger) Option { return func(s *Sampler) { s.log = l } }

// WithRetryDelay sets the fixed pause between attempts.
func WithRetryDelay(d time.Duration) Option { return func(s *Sampler) { s.delay = d } }

// WithAttempts sets the total number of lookup attempts, at least one.
func WithAttempts(n int) Option {
	return func(s *Sampler) {
		if n > 0 {
			s.attempts = n
		}
	}
}

// NewSampler creates a sampler over lookup. A nil lookup always falls back to
// the synthetic profile.
func NewSampler(lookup Lookup, opts ...Option) *Sampler {
	s := &Sampler{
		lookup:   lookup,
		log:      logrus.StandardLogger(),
		delay:    DefaultRetryDelay,
		attempts: DefaultAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Profile samples ElevationSampleCount(length) points along points and looks up
// their elevations. When every attempt fails the synthetic profile is returned
// with source simulation. When ctx ends first the synthetic profile is returned
// with source error, together with the context's error.
func (s *Sampler) Profile(ctx context.Context, points []orb.Point) (shape.Profile, error) {
	if len(points) < 2 {
		return shape.Profile{}, fmt.Errorf("%d points: %w", len(points), ErrNoPoints)
	}
	samples := SamplePoints(points, shape.ElevationSampleCount(geomath.LineLength(points)))
	log := s.log.WithField("samples", len(samples))

	err := s.fetch(ctx, samples)
	switch {
	case err == nil:
		return shape.Profile{Samples: samples, Source: shape.SourceAPI}, nil
	case ctx.Err() != nil:
		log.WithError(err).Warn("elevation lookup cancelled, using synthetic profile")
		return shape.Profile{Samples: Synthetic(samples), Source: shape.SourceError}, ctx.Err()
	default:
		log.WithError(err).Warn("elevation lookup failed, using synthetic profile")
		return shape.Profile{Samples: Synthetic(samples), Source: shape.SourceSimulation}, nil
	}
}

func (s *Sampler) fetch(ctx context.Context, samples []shape.ElevationSample) error {
	if s.lookup == nil {
		return errors.New("no elevation lookup configured")
	}
	pts := make([]orb.Point, len(samples))
	for i, smp := range samples {
		pts[i] = smp.Point
	}

	attempt := 0
	op := func() error {
		attempt++
		elev, err := s.lookup.Lookup(ctx, pts)
		if err != nil {
			return err
		}
		if err := validate(elev, len(pts)); err != nil {
			return err
		}
		for i := range samples {
			samples[i].Elevation = elev[i]
		}
		return nil
	}
	var policy backoff.BackOff = &backoff.StopBackOff{}
	if s.attempts > 1 {
		policy = backoff.WithMaxRetries(backoff.NewConstantBackOff(s.delay), uint64(s.attempts-1))
	}
	return backoff.RetryNotify(op, backoff.WithContext(policy, ctx), func(err error, d time.Duration) {
		s.log.WithError(err).WithField("attempt", attempt).Debugf("elevation lookup: retrying in %v", d)
	})
}

func validate(elev []float64, n int) error {
	if len(elev) != n {
		return fmt.Errorf("%d elevations for %d points: %w", len(elev), n, ErrMalformed)
	}
	for i, e := range elev {
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return fmt.Errorf("elevation %d is %v: %w", i, e, ErrMalformed)
		}
	}
	return nil
}

// Synthetic fills samples with a smooth profile derived from their distances.
func Synthetic(samples []shape.ElevationSample) []shape.ElevationSample {
	out := append([]shape.ElevationSample(nil), samples...)
	if len(out) == 0 {
		return out
	}
	total := out[len(out)-1].Distance
	for i := range out {
		t := 0.0
		if total > 0 {
			t = out[i].Distance / total
		}
		out[i].Elevation = 100 + 20*math.Sin(2*math.Pi*t) + 5*math.Sin(6*math.Pi*t)
	}
	return out
}

// Refresh fetches a profile for the line's current geometry and attaches it. The
// result is dropped with shape.ErrStaleProfile when the line was released or
// edited while the lookup ran.
func (s *Sampler) Refresh(ctx context.Context, line *shape.ElevationLine) error {
	if !line.Alive() {
		return fmt.Errorf("line %s: %w", line.ID(), shape.ErrStaleProfile)
	}
	version := line.Version()
	profile, lookupErr := s.Profile(ctx, line.Points())
	if profile.Source == "" {
		return lookupErr
	}
	profile.Version = version
	if err := line.ApplyProfile(profile); err != nil {
		s.log.WithFields(logrus.Fields{"shape": line.ID(), "version": version}).Debug("discarding stale elevation profile")
		return errors.Join(lookupErr, err)
	}
	return errors.Join(lookupErr, line.UpdateProperties())
}
