package shape

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// DataSource records where an elevation profile came from.
type DataSource string

const (
	SourcePending    DataSource = "pending"
	SourceAPI        DataSource = "api"
	SourceSimulation DataSource = "simulation"
	SourceError      DataSource = "error"
	SourceRestored   DataSource = "restored"
)

// ElevationSample is one point of a profile. Distance is meters from the start of
// the line.
type ElevationSample struct {
	Distance  float64   `json:"distance"`
	Elevation float64   `json:"elevation"`
	Point     orb.Point `json:"point"`
}

// ElevationStats summarize a profile. Slopes are percentages.
type ElevationStats struct {
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Gain         float64 `json:"gain"`
	Loss         float64 `json:"loss"`
	MaxSlope     float64 `json:"maxSlope"`
	AverageSlope float64 `json:"averageSlope"`
	SampleCount  int     `json:"sampleCount"`
}

// Profile is a sampled elevation profile for a given geometry version.
type Profile struct {
	Samples []ElevationSample `json:"samples"`
	Source  DataSource        `json:"source"`
	Version uint64            `json:"version"`
}

// ComputeElevationStats derives statistics from samples alone. Slope uses the
// magnitude of every step with positive horizontal distance.
func ComputeElevationStats(samples []ElevationSample) ElevationStats {
	if len(samples) == 0 {
		return ElevationStats{}
	}
	st := ElevationStats{
		Min:         samples[0].Elevation,
		Max:         samples[0].Elevation,
		SampleCount: len(samples),
	}
	var slopeSum float64
	var slopes int
	for i := 1; i < len(samples); i++ {
		e := samples[i].Elevation
		st.Min = math.Min(st.Min, e)
		st.Max = math.Max(st.Max, e)

		de := e - samples[i-1].Elevation
		if de > 0 {
			st.Gain += de
		} else {
			st.Loss -= de
		}
		dd := samples[i].Distance - samples[i-1].Distance
		if dd <= 0 {
			continue
		}
		slope := math.Abs(de / dd * 100)
		st.MaxSlope = math.Max(st.MaxSlope, slope)
		slopeSum += slope
		slopes++
	}
	if slopes > 0 {
		st.AverageSlope = slopeSum / float64(slopes)
	}
	return st
}

// Sample count bounds for elevation profiles.
const (
	MinElevationSamples    = 10
	MaxElevationSamples    = 50
	elevationSampleSpacing = 100.0
)

// ElevationSampleCount is one sample per 100 m, clamped to [10, 50].
func ElevationSampleCount(length float64) int {
	n := int(math.Ceil(length / elevationSampleSpacing))
	if n < MinElevationSamples {
		return MinElevationSamples
	}
	if n > MaxElevationSamples {
		return MaxElevationSamples
	}
	return n
}

// ElevationLine is a polyline with an attached elevation profile. Its vertex count
// is fixed after creation; vertices can only be moved.
type ElevationLine struct {
	base
	path path

	samples        []ElevationSample
	source         DataSource
	profileVersion uint64
}

// NewElevationLine creates a line with a pending profile.
func NewElevationLine(points []orb.Point, opts ...Option) (*ElevationLine, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("elevation line needs 2 points, got %d: %w", len(points), ErrTooFewPoints)
	}
	l := &ElevationLine{
		base:   newBase(KindElevationLine, buildOptions(opts)),
		path:   newPath(points, false),
		source: SourcePending,
	}
	l.compute = l.computeProperties
	return l, nil
}

func (l *ElevationLine) Points() []orb.Point { return l.path.copyPoints() }

func (l *ElevationLine) MoveVertex(i int, pt orb.Point) error {
	if err := l.path.set(i, pt); err != nil {
		return err
	}
	l.invalidate()
	return nil
}

// AddVertex always fails: the profile endpoints are fixed.
func (l *ElevationLine) AddVertex(int, orb.Point) (int, error) {
	return 0, ErrFixedVertexCount
}

func (l *ElevationLine) MidPoints() []orb.Point { return l.path.midPoints() }

func (l *ElevationLine) Move(d Delta) {
	if d.IsZero() {
		return
	}
	l.path.move(d)
	l.invalidate()
}

func (l *ElevationLine) Bound() orb.Bound { return l.path.bound() }

// Length is the current geodesic length in meters.
func (l *ElevationLine) Length() float64 {
	p, err := pathProperties(l.path.points)
	if err != nil {
		return 0
	}
	return p.Length
}

// SampleCount is the number of samples a profile of the current geometry needs.
func (l *ElevationLine) SampleCount() int {
	return ElevationSampleCount(l.Length())
}

// Samples returns a copy of the current profile.
func (l *ElevationLine) Samples() []ElevationSample {
	return append([]ElevationSample(nil), l.samples...)
}

func (l *ElevationLine) DataSource() DataSource { return l.source }

// Stats derives statistics from the current samples.
func (l *ElevationLine) Stats() ElevationStats {
	return ComputeElevationStats(l.samples)
}

// ProfileStale reports whether the geometry changed since the profile was applied.
func (l *ElevationLine) ProfileStale() bool {
	return l.source == SourcePending || l.profileVersion != l.version
}

// ApplyProfile attaches a profile fetched for geometry version p.Version. It fails
// with ErrStaleProfile if the line was released or moved in the meantime.
func (l *ElevationLine) ApplyProfile(p Profile) error {
	if !l.Alive() {
		return fmt.Errorf("line %s released: %w", l.id, ErrStaleProfile)
	}
	if p.Version != l.version {
		return fmt.Errorf("profile for version %d, line at %d: %w", p.Version, l.version, ErrStaleProfile)
	}
	l.samples = append([]ElevationSample(nil), p.Samples...)
	l.source = p.Source
	l.profileVersion = l.version
	l.dirty = true
	return nil
}

func (l *ElevationLine) computeProperties() (Properties, error) {
	p, err := pathProperties(l.path.points)
	if err != nil {
		return p, err
	}
	if len(l.samples) > 0 {
		st := ComputeElevationStats(l.samples)
		p.Elevation = &st
	}
	p.DataSource = l.source
	return p, nil
}

func (l *ElevationLine) Snapshot() (Record, error) {
	return encodeRecord(KindElevationLine, elevationData{
		ID:         l.id,
		Points:     l.Points(),
		Style:      l.style,
		Samples:    l.Samples(),
		DataSource: l.source,
	})
}

func (l *ElevationLine) Restore(r Record) error {
	var d elevationData
	if err := decodeRecord(r, KindElevationLine, &d); err != nil {
		return err
	}
	if len(d.Points) < 2 {
		return fmt.Errorf("elevation line: %w: %w", ErrInvalidRecord, ErrTooFewPoints)
	}
	l.path = newPath(d.Points, false)
	l.style = restoredStyle(d.Style)
	l.invalidate()
	l.restoreProfile(d)
	return nil
}

func (l *ElevationLine) restoreProfile(d elevationData) {
	l.samples = append([]ElevationSample(nil), d.Samples...)
	switch {
	case len(d.Samples) == 0:
		l.source = SourcePending
	case d.DataSource == "" || d.DataSource == SourcePending:
		l.source = SourceRestored
	default:
		l.source = d.DataSource
	}
	l.profileVersion = l.version
}
