package shape

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// base carries the state every kind shares: identity, style, the properties cache
// and the listener list. Kinds embed it and provide compute.
type base struct {
	id    string
	kind  Kind
	style Style
	log   logrus.FieldLogger

	listeners notifier

	compute  func() (Properties, error)
	props    Properties
	hasProps bool
	dirty    bool

	version  uint64
	released bool
}

func newBase(kind Kind, o options) base {
	id := o.id
	if id == "" {
		id = uuid.NewString()
	}
	style := DefaultStyle
	if o.style != nil {
		style = *o.style
	}
	return base{
		id:    id,
		kind:  kind,
		style: style,
		log:   o.log.WithFields(logrus.Fields{"shape": id, "kind": kind}),
		dirty: true,
	}
}

func (b *base) ID() string { return b.id }
func (b *base) Kind() Kind { return b.kind }
func (b *base) Style() Style { return b.style }

// SetStyle replaces the display style. Empty classification fields keep their
// current values; Rename and Classify set them verbatim, empty included.
func (b *base) SetStyle(s Style) {
	if s.Name == "" {
		s.Name = b.style.Name
	}
	if s.Category == "" {
		s.Category = b.style.Category
	}
	if s.AccessLevel == "" {
		s.AccessLevel = b.style.AccessLevel
	}
	b.style = s
	b.dirty = true
}

// Rename sets the user-facing name.
func (b *base) Rename(name string) {
	b.style.Name = name
	b.dirty = true
}

// Classify sets the category and access level.
func (b *base) Classify(category, accessLevel string) {
	b.style.Category = category
	b.style.AccessLevel = accessLevel
	b.dirty = true
}

func (b *base) Version() uint64 { return b.version }

func (b *base) On(fn Listener) func() { return b.listeners.on(fn) }

func (b *base) Release() { b.released = true }
func (b *base) Alive() bool { return !b.released }

// Dirty reports whether geometry changed since the last commit.
func (b *base) Dirty() bool { return b.dirty }

// invalidate records a geometry mutation.
func (b *base) invalidate() {
	b.dirty = true
	b.version++
}

// UpdateProperties recomputes the derived properties and notifies listeners when
// the serialized result changed. On invalid geometry the previous properties are
// kept and the error is returned.
func (b *base) UpdateProperties() error {
	p, err := b.compute()
	b.dirty = false
	if err != nil {
		b.log.WithError(err).Warn("keeping previous properties")
		return fmt.Errorf("%s %s: %w", b.kind, b.id, err)
	}
	p.Type = b.kind
	p.Style = b.style
	if b.hasProps && sameProperties(b.props, p) {
		return nil
	}
	b.props = p
	b.hasProps = true
	out := p.clone()
	b.listeners.emit(Event{Type: PropertiesUpdated, ShapeID: b.id, Kind: b.kind, Properties: &out})
	return nil
}

// Properties returns the cached properties, committing pending changes first.
func (b *base) Properties() Properties {
	if b.dirty || !b.hasProps {
		_ = b.UpdateProperties()
	}
	return b.props.clone()
}

func (b *base) emit(e Event) {
	e.ShapeID = b.id
	e.Kind = b.kind
	b.listeners.emit(e)
}
