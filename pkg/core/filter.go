package core

import (
	"slices"
	"strings"
)

// FilterKind selects which predicate a Filter applies.
type FilterKind int

const (
	FilterNone FilterKind = iota
	FilterTag
	FilterNotebook
)

const (
	tagPrefix      = "tag:"
	notebookPrefix = "notebook:"
)

// Filter is the active sidebar selection. The zero value selects every note.
type Filter struct {
	Kind  FilterKind
	Value string
}

// TagFilter selects notes carrying the exact tag name.
func TagFilter(name string) Filter {
	return Filter{Kind: FilterTag, Value: name}
}

// NotebookFilter selects notes of a notebook.
func NotebookFilter(id string) Filter {
	return Filter{Kind: FilterNotebook, Value: id}
}

// ParseFilter decodes the "tag:<name>" / "notebook:<id>" encoding.
// Anything else yields the zero Filter.
func ParseFilter(s string) Filter {
	switch {
	case strings.HasPrefix(s, tagPrefix):
		return TagFilter(strings.TrimPrefix(s, tagPrefix))
	case strings.HasPrefix(s, notebookPrefix):
		return NotebookFilter(strings.TrimPrefix(s, notebookPrefix))
	}
	return Filter{}
}

func (f Filter) String() string {
	switch f.Kind {
	case FilterTag:
		return tagPrefix + f.Value
	case FilterNotebook:
		return notebookPrefix + f.Value
	}
	return ""
}

// IsZero reports whether the filter selects every note.
func (f Filter) IsZero() bool {
	return f.Kind == FilterNone
}

// NotebookID returns the selected notebook id, or "" for other filters.
func (f Filter) NotebookID() string {
	if f.Kind == FilterNotebook {
		return f.Value
	}
	return ""
}

// Match applies the filter predicate to a single note.
func (f Filter) Match(n Note) bool {
	switch f.Kind {
	case FilterTag:
		return n.HasTag(f.Value)
	case FilterNotebook:
		return n.NotebookID == f.Value
	}
	return true
}

// MatchQuery reports whether the lowercased query is a substring of the
// note's title, content or any of its tag names.
func MatchQuery(n Note, query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(n.Title), q) ||
		strings.Contains(strings.ToLower(n.Content), q) {
		return true
	}
	for _, t := range n.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

// VisibleNotes returns the notes to render, newest first.
// A non-empty query takes precedence over the filter, which is then ignored.
// The input slice is not modified.
func VisibleNotes(notes []Note, query string, filter Filter) []Note {
	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		var keep bool
		if query != "" {
			keep = MatchQuery(n, query)
		} else {
			keep = filter.Match(n)
		}
		if keep {
			out = append(out, n)
		}
	}

	slices.SortStableFunc(out, func(a, b Note) int {
		switch {
		case a.LastUpdated > b.LastUpdated:
			return -1
		case a.LastUpdated < b.LastUpdated:
			return 1
		}
		return 0
	})
	return out
}

// TagCounts maps each referenced tag name to the number of notes carrying it.
func TagCounts(notes []Note) map[string]int {
	counts := make(map[string]int)
	for _, n := range notes {
		for _, t := range n.Tags {
			counts[t]++
		}
	}
	return counts
}

// NotebookCounts maps each referenced notebook id to its number of notes.
func NotebookCounts(notes []Note) map[string]int {
	counts := make(map[string]int)
	for _, n := range notes {
		counts[n.NotebookID]++
	}
	return counts
}
