// Package core holds the note/tag/notebook domain of notebox.
//
// It is storage agnostic: collections are persisted through the Store
// contract, and every derived field (preview, timestamp label, tag
// vocabulary) is recomputed here rather than trusted from storage.
package core

import (
	"fmt"
	"slices"
)

// DefaultNotebookID is the well-known notebook every note falls back to.
const DefaultNotebookID = "default"

// Note is the central entity of the domain.
// Tags are referenced by name, never by Tag.ID.
type Note struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Tags        []string `json:"tags"`
	NotebookID  string   `json:"notebookId"`
	Timestamp   string   `json:"timestamp"`
	Preview     string   `json:"preview,omitempty"`
	LastUpdated int64    `json:"lastUpdated"`
}

// Clone returns a deep copy so callers never share the Tags backing array.
func (n Note) Clone() Note {
	c := n
	if n.Tags != nil {
		c.Tags = slices.Clone(n.Tags)
	} else {
		c.Tags = []string{}
	}
	return c
}

// HasTag reports whether the note references the exact tag name.
func (n Note) HasTag(name string) bool {
	return slices.Contains(n.Tags, name)
}

// SameEdits reports whether two versions of a note carry the same
// user-editable fields. Derived fields are ignored.
func (n Note) SameEdits(o Note) bool {
	return n.ID == o.ID &&
		n.Title == o.Title &&
		n.Content == o.Content &&
		n.NotebookID == o.NotebookID &&
		slices.Equal(n.Tags, o.Tags)
}

// Tag is an entry of the derived tag vocabulary.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Notebook groups notes.
type Notebook struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// EventType represents the type of change in the store.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change of a persisted key.
type Event struct {
	Type      EventType
	Key       string
	Timestamp int64 // Unix timestamp
}

// String implements fmt.Stringer (and lifecycle.Event).
func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Type, e.Key)
}
