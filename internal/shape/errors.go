package shape

import "errors"

// ErrTooFewPoints is returned when geometry has fewer points than its kind needs.
var ErrTooFewPoints = errors.New("too few points")

// ErrIndexOutOfRange is returned for vertex or segment indexes outside the shape.
var ErrIndexOutOfRange = errors.New("index out of range")

// ErrFixedVertexCount is returned when inserting into an elevation line.
var ErrFixedVertexCount = errors.New("vertex count is fixed")

// ErrInvalidDimension is returned for non-positive radii and sub-meter rectangles.
var ErrInvalidDimension = errors.New("invalid dimension")

// ErrSectionNotFound is returned for unknown section IDs.
var ErrSectionNotFound = errors.New("section not found")

// ErrInvalidRecord is returned when stored data cannot be restored.
var ErrInvalidRecord = errors.New("invalid shape record")

// ErrKindMismatch is returned when restoring a snapshot of another kind.
var ErrKindMismatch = errors.New("shape kind mismatch")

// ErrStaleProfile is returned when an elevation profile arrives for geometry that
// has changed or a line that has been removed.
var ErrStaleProfile = errors.New("stale elevation profile")
