package core

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultAutosaveDelay is how long a draft must stay unchanged before it is
// committed automatically.
const DefaultAutosaveDelay = 5 * time.Second

// EditorState reports whether an autosave is pending.
type EditorState string

const (
	EditorIdle      EditorState = "idle"
	EditorScheduled EditorState = "scheduled"
)

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithAutosaveDelay overrides DefaultAutosaveDelay.
func WithAutosaveDelay(d time.Duration) EditorOption {
	return func(e *Editor) {
		if d > 0 {
			e.delay = d
		}
	}
}

// OnAutosave registers a callback run after each automatic commit.
// It is called outside the editor lock.
func OnAutosave(fn func(Note, error)) EditorOption {
	return func(e *Editor) {
		e.hook = fn
	}
}

// Editor holds the working draft of a single note and debounces commits.
//
// Every change resets a timer; when the draft stays unchanged for the delay
// it is saved through the Repository. Only the newest scheduled save may
// commit: timers are tagged with a generation and stale ones are ignored.
type Editor struct {
	repo  *Repository
	delay time.Duration
	hook  func(Note, error)

	mu         sync.Mutex
	draft      Note
	committed  Note
	timer      *time.Timer
	generation uint64
	closed     bool
	savedAt    time.Time
}

// Edit opens an Editor on the note with id, or returns ErrNotFound.
func (r *Repository) Edit(id string, opts ...EditorOption) (*Editor, error) {
	n, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}
	e := &Editor{
		repo:      r,
		delay:     DefaultAutosaveDelay,
		draft:     n.Clone(),
		committed: n.Clone(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Draft returns a copy of the working draft.
func (e *Editor) Draft() Note {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft.Clone()
}

// Committed returns the last version known to be persisted.
func (e *Editor) Committed() Note {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.committed.Clone()
}

// Dirty reports whether the draft differs from the committed version.
func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.draft.SameEdits(e.committed)
}

// State reports whether an autosave is pending.
func (e *Editor) State() EditorState {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.timer != nil {
		return EditorScheduled
	}
	return EditorIdle
}

// SavedMarker returns the "autosaved at" indicator, or "" before the first
// automatic commit.
func (e *Editor) SavedMarker() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.savedAt.IsZero() {
		return ""
	}
	return "autosaved at " + e.savedAt.Format("15:04:05")
}

func (e *Editor) SetTitle(title string) error {
	return e.change(func(n *Note) { n.Title = title })
}

func (e *Editor) SetContent(content string) error {
	return e.change(func(n *Note) { n.Content = content })
}

func (e *Editor) SetNotebook(id string) error {
	return e.change(func(n *Note) { n.NotebookID = id })
}

// AddTag appends a trimmed tag name to the draft and registers it in the
// vocabulary right away. Blank and duplicate names are ignored.
func (e *Editor) AddTag(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrEditorClosed
	}
	if _, err := e.repo.EnsureTag(ctx, name); err != nil {
		return err
	}
	e.tagLocked(name)
	return nil
}

// StageTag appends a trimmed tag name to the draft only. The vocabulary
// learns it when the draft is saved.
func (e *Editor) StageTag(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrEditorClosed
	}
	e.tagLocked(name)
	return nil
}

func (e *Editor) tagLocked(name string) {
	if !e.draft.HasTag(name) {
		next := e.draft.Clone()
		next.Tags = append(next.Tags, name)
		e.draft = next
	}
	e.scheduleLocked()
}

// RemoveTag drops a tag from the draft. The vocabulary is reconciled on commit.
func (e *Editor) RemoveTag(name string) error {
	return e.change(func(n *Note) {
		out := n.Tags[:0]
		for _, t := range n.Tags {
			if t != name {
				out = append(out, t)
			}
		}
		n.Tags = out
	})
}

func (e *Editor) change(apply func(*Note)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrEditorClosed
	}
	next := e.draft.Clone()
	apply(&next)
	e.draft = next
	e.scheduleLocked()
	return nil
}

// scheduleLocked replaces any pending timer. A draft equal to the committed
// version leaves nothing scheduled.
func (e *Editor) scheduleLocked() {
	e.stopLocked()
	if e.draft.SameEdits(e.committed) {
		return
	}
	gen := e.generation
	e.timer = time.AfterFunc(e.delay, func() { e.fire(gen) })
}

func (e *Editor) stopLocked() {
	e.generation++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *Editor) fire(gen uint64) {
	e.mu.Lock()
	if e.closed || gen != e.generation {
		e.mu.Unlock()
		return
	}
	e.timer = nil
	saved, err := e.commitLocked(context.Background())
	if err == nil {
		e.savedAt = time.Now()
	}
	hook := e.hook
	e.mu.Unlock()

	if err != nil {
		e.repo.logger.Warn("autosave failed", "note", saved.ID, "error", err)
	}
	if hook != nil {
		hook(saved, err)
	}
}

func (e *Editor) commitLocked(ctx context.Context) (Note, error) {
	saved, err := e.repo.Save(ctx, e.draft)
	if err != nil {
		return e.draft.Clone(), err
	}
	e.draft = saved.Clone()
	e.committed = saved.Clone()
	return saved, nil
}

// Save commits the draft immediately, cancelling any pending autosave.
func (e *Editor) Save(ctx context.Context) (Note, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return Note{}, ErrEditorClosed
	}
	e.stopLocked()
	return e.commitLocked(ctx)
}

// Cancel leaves the editor without saving. A dirty draft is discarded only if
// confirm, given the pending diff, approves it. Cancel reports whether the
// editor was closed.
func (e *Editor) Cancel(confirm func(diff string) bool) bool {
	if e.Dirty() && (confirm == nil || !confirm(e.Diff())) {
		return false
	}
	e.Close()
	return true
}

// Close discards the draft and any pending autosave.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
	e.closed = true
}

// Diff renders a line diff of the committed content against the draft,
// prefixing lines with "+ ", "- " or "  ". Title changes are listed first.
func (e *Editor) Diff() string {
	e.mu.Lock()
	before, after := e.committed.Clone(), e.draft.Clone()
	e.mu.Unlock()

	var b strings.Builder
	if before.Title != after.Title {
		b.WriteString("- title: " + before.Title + "\n")
		b.WriteString("+ title: " + after.Title + "\n")
	}

	dmp := diffmatchpatch.New()
	a, c, lines := dmp.DiffLinesToChars(before.Content, after.Content)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, c, false), lines)
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			b.WriteString(prefix + line)
			if !strings.HasSuffix(line, "\n") {
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}
