package shape

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

type Comment struct {
	ID        string    `json:"id"`
	Author    string    `json:"author,omitempty"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type Photo struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Caption   string    `json:"caption,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Note is a point annotation with free text, comments and photos. Its category
// and access level live in the style.
type Note struct {
	base
	point       orb.Point
	title       string
	description string
	comments    []Comment
	photos      []Photo
}

func NewNote(point orb.Point, title string, opts ...Option) *Note {
	n := &Note{base: newBase(KindNote, buildOptions(opts)), point: point, title: title}
	if n.style.AccessLevel == "" {
		n.style.AccessLevel = AccessPrivate
	}
	n.compute = n.computeProperties
	return n
}

func (n *Note) Point() orb.Point { return n.point }
func (n *Note) Title() string { return n.title }
func (n *Note) Description() string { return n.description }
func (n *Note) Comments() []Comment { return append([]Comment(nil), n.comments...) }
func (n *Note) Photos() []Photo { return append([]Photo(nil), n.photos...) }

func (n *Note) SetPoint(p orb.Point) {
	n.point = p
	n.invalidate()
}

// SetDetails replaces the title and description.
func (n *Note) SetDetails(title, description string) {
	n.title, n.description = title, description
	n.dirty = true
}

func (n *Note) AddComment(author, text string) Comment {
	c := Comment{ID: uuid.NewString(), Author: author, Text: text, CreatedAt: time.Now().UTC()}
	n.comments = append(n.comments, c)
	n.dirty = true
	return c
}

// RemoveComment deletes a comment by ID and reports whether it existed.
func (n *Note) RemoveComment(id string) bool {
	for i, c := range n.comments {
		if c.ID == id {
			n.comments = append(n.comments[:i], n.comments[i+1:]...)
			n.dirty = true
			return true
		}
	}
	return false
}

func (n *Note) AddPhoto(url, caption string) Photo {
	p := Photo{ID: uuid.NewString(), URL: url, Caption: caption, CreatedAt: time.Now().UTC()}
	n.photos = append(n.photos, p)
	n.dirty = true
	return p
}

func (n *Note) Move(d Delta) {
	if d.IsZero() {
		return
	}
	n.SetPoint(d.Apply(n.point))
}

func (n *Note) Bound() orb.Bound { return n.point.Bound() }

func (n *Note) computeProperties() (Properties, error) {
	return Properties{
		Center:       n.point,
		Title:        n.title,
		CommentCount: len(n.comments),
		PhotoCount:   len(n.photos),
	}, nil
}

func (n *Note) Snapshot() (Record, error) {
	pt := n.point
	return encodeRecord(KindNote, noteData{
		ID:          n.id,
		Point:       &pt,
		Title:       n.title,
		Description: n.description,
		Comments:    n.Comments(),
		Photos:      n.Photos(),
		Style:       n.style,
	})
}

func (n *Note) Restore(r Record) error {
	var d noteData
	if err := decodeRecord(r, KindNote, &d); err != nil {
		return err
	}
	if d.Point == nil {
		return fmt.Errorf("note without point: %w", ErrInvalidRecord)
	}
	n.point = *d.Point
	n.title, n.description = d.Title, d.Description
	n.comments = append([]Comment(nil), d.Comments...)
	n.photos = append([]Photo(nil), d.Photos...)
	n.style = restoredStyle(d.Style)
	if n.style.AccessLevel == "" {
		n.style.AccessLevel = AccessPrivate
	}
	n.invalidate()
	return nil
}
