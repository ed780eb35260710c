package core

import "strings"

// Reconcile returns the entries of vocabulary whose name is referenced by at
// least one note. Order of the surviving entries is preserved. It is pure:
// vocabulary is not modified.
func Reconcile(notes []Note, vocabulary []Tag) []Tag {
	used := make(map[string]struct{})
	for _, n := range notes {
		for _, t := range n.Tags {
			used[t] = struct{}{}
		}
	}

	out := make([]Tag, 0, len(vocabulary))
	for _, t := range vocabulary {
		if _, ok := used[t.Name]; ok {
			out = append(out, t)
		}
	}
	return out
}

// EnsureTag returns vocabulary extended with a tag named name, unless a tag
// with that exact name already exists. The name is trimmed first; blank names
// are ignored. The returned bool reports whether a tag was appended.
func EnsureTag(name string, vocabulary []Tag, newID func() string) ([]Tag, Tag, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return vocabulary, Tag{}, false
	}
	for _, t := range vocabulary {
		if t.Name == name {
			return vocabulary, t, false
		}
	}

	tag := Tag{ID: newID(), Name: name}
	out := make([]Tag, len(vocabulary), len(vocabulary)+1)
	copy(out, vocabulary)
	return append(out, tag), tag, true
}

// NormalizeTags trims tag names and drops blanks and duplicates, keeping the
// first occurrence.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
