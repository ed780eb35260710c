package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository is the in-memory source of truth for notes, tags and notebooks
// during a session. Every mutation is a complete read-modify-write of the
// persisted collections, so concurrent writers resolve as last-write-wins.
type Repository struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
	newID  func() string

	untitled        string
	defaultNotebook string
	previewLength   int
	dateLayout      string

	mu        sync.RWMutex
	notes     []Note
	tags      []Tag
	notebooks []Notebook
	loadedAt  *time.Time

	// unreadable holds the keys the last Load could not read. While it is
	// non-empty nothing is written back, so the stored values survive.
	unreadable []string
}

// RepositoryOption configures a Repository.
type RepositoryOption func(*Repository)

// WithLogger sets the logger used for recoverable warnings.
func WithLogger(logger *slog.Logger) RepositoryOption {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock replaces time.Now (useful for testing).
func WithClock(now func() time.Time) RepositoryOption {
	return func(r *Repository) {
		r.now = now
	}
}

// WithIDGenerator replaces the uuid based id generator.
func WithIDGenerator(newID func() string) RepositoryOption {
	return func(r *Repository) {
		r.newID = newID
	}
}

// WithUntitledTitle sets the title given to new notes.
func WithUntitledTitle(title string) RepositoryOption {
	return func(r *Repository) {
		if title != "" {
			r.untitled = title
		}
	}
}

// WithDefaultNotebookName sets the display name of the seeded default notebook.
func WithDefaultNotebookName(name string) RepositoryOption {
	return func(r *Repository) {
		if name != "" {
			r.defaultNotebook = name
		}
	}
}

// WithPreviewLength sets the maximum preview length in characters.
func WithPreviewLength(n int) RepositoryOption {
	return func(r *Repository) {
		if n > 0 {
			r.previewLength = n
		}
	}
}

// WithDateLayout sets the layout of labels older than a week.
func WithDateLayout(layout string) RepositoryOption {
	return func(r *Repository) {
		if layout != "" {
			r.dateLayout = layout
		}
	}
}

// NewRepository creates an empty Repository backed by store.
// Call Load before use.
func NewRepository(store Store, opts ...RepositoryOption) *Repository {
	r := &Repository{
		store:           store,
		logger:          slog.New(slog.DiscardHandler),
		now:             time.Now,
		newID:           uuid.NewString,
		untitled:        "Untitled",
		defaultNotebook: "Default",
		previewLength:   DefaultPreviewLength,
		dateLayout:      DefaultDateLayout,
		notes:           []Note{},
		tags:            []Tag{},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.notebooks = []Notebook{r.seedNotebook()}
	return r
}

func (r *Repository) seedNotebook() Notebook {
	return Notebook{ID: DefaultNotebookID, Name: r.defaultNotebook}
}

// Store returns the backing store.
func (r *Repository) Store() Store {
	return r.store
}

// Load (re)reads the persisted collections.
//
// It never fails: absent keys mean first run and seed defaults, malformed
// values are logged and reset. Notes are normalised (tags, dangling notebook
// references, previews) and the tag vocabulary is re-derived from them.
// Anything seeded or repaired is written back.
//
// A key whose value cannot be read (I/O error, locked database) is not
// treated as absent: the previous in-memory collections are kept when there
// are any, and every write fails with ErrUnavailable until a Load succeeds.
func (r *Repository) Load(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var notes []Note
	var tags []Tag
	var notebooks []Notebook

	results := []readResult{
		r.read(ctx, KeyNotes, &notes),
		r.read(ctx, KeyTags, &tags),
		r.read(ctx, KeyNotebooks, &notebooks),
	}
	var unreadable []string
	repaired := false
	for i, key := range []string{KeyNotes, KeyTags, KeyNotebooks} {
		switch results[i] {
		case readFailed:
			unreadable = append(unreadable, key)
		case readAbsent, readMalformed:
			repaired = true
		}
	}
	r.unreadable = unreadable
	if len(unreadable) > 0 {
		r.logger.Warn("persisted state unreadable, writes disabled until reload", "keys", unreadable)
		if r.loadedAt != nil {
			return
		}
	}

	if notes == nil {
		notes = []Note{}
	}
	if tags == nil {
		tags = []Tag{}
	}
	if !slices.ContainsFunc(notebooks, func(nb Notebook) bool { return nb.ID == DefaultNotebookID }) {
		notebooks = append([]Notebook{r.seedNotebook()}, notebooks...)
		repaired = true
	}
	r.notebooks = notebooks

	for i := range notes {
		before := notes[i].Clone()
		notes[i] = r.normalize(notes[i])
		if !notes[i].SameEdits(before) || notes[i].Preview != before.Preview {
			repaired = true
		}
	}
	r.notes = notes

	synced := r.syncVocabulary(tags)
	if !slices.Equal(synced, tags) {
		repaired = true
	}
	r.tags = synced

	now := r.now()
	r.loadedAt = &now

	if repaired && len(unreadable) == 0 {
		if err := r.persist(ctx, KeyNotes, KeyTags, KeyNotebooks); err != nil {
			r.logger.Warn("failed to persist repaired state", "error", err)
		}
	}
}

// readResult classifies a persisted value.
type readResult int

const (
	readOK readResult = iota
	readAbsent
	readMalformed
	readFailed
)

// read decodes key into v. On any result but readOK, v is left at its zero
// value.
func (r *Repository) read(ctx context.Context, key string, v any) readResult {
	data, err := r.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		r.logger.Debug("key absent, seeding defaults", "key", key)
		return readAbsent
	}
	if err != nil {
		r.logger.Warn("failed to read persisted state", "key", key, "error", err)
		return readFailed
	}
	if err := json.Unmarshal(data, v); err != nil {
		r.logger.Warn("malformed persisted state, starting empty", "key", key, "error", err)
		return readMalformed
	}
	return readOK
}

// writable reports ErrUnavailable while the last Load left keys unread.
// Callers must hold r.mu.
func (r *Repository) writable() error {
	if len(r.unreadable) > 0 {
		return fmt.Errorf("unreadable %v: %w", r.unreadable, ErrUnavailable)
	}
	return nil
}

func (r *Repository) persist(ctx context.Context, keys ...string) error {
	if err := r.writable(); err != nil {
		return err
	}
	for _, key := range keys {
		var v any
		switch key {
		case KeyNotes:
			v = r.notes
		case KeyTags:
			v = r.tags
		case KeyNotebooks:
			v = r.notebooks
		default:
			return fmt.Errorf("unknown collection %q: %w", key, ErrInvalidKey)
		}
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		if err := r.store.Put(ctx, key, data); err != nil {
			return fmt.Errorf("write %s: %w", key, err)
		}
	}
	return nil
}

// normalize enforces the note invariants that do not depend on time.
// Callers must hold r.mu.
func (r *Repository) normalize(n Note) Note {
	n = n.Clone()
	n.Tags = NormalizeTags(n.Tags)
	if !r.hasNotebook(n.NotebookID) {
		n.NotebookID = DefaultNotebookID
	}
	n.Preview = DerivePreview(n.Content, r.previewLength)
	return n
}

func (r *Repository) hasNotebook(id string) bool {
	return slices.ContainsFunc(r.notebooks, func(nb Notebook) bool { return nb.ID == id })
}

// syncVocabulary adds every referenced tag name missing from vocabulary and
// prunes the unreferenced ones. Callers must hold r.mu.
func (r *Repository) syncVocabulary(vocabulary []Tag) []Tag {
	for _, n := range r.notes {
		for _, name := range n.Tags {
			vocabulary, _, _ = EnsureTag(name, vocabulary, r.newID)
		}
	}
	return Reconcile(r.notes, vocabulary)
}

func (r *Repository) indexOf(id string) int {
	return slices.IndexFunc(r.notes, func(n Note) bool { return n.ID == id })
}

// Create allocates a new empty note in notebookID (the default notebook when
// empty or unknown), prepends it to the collection and persists.
func (r *Repository) Create(ctx context.Context, notebookID string) (Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.writable(); err != nil {
		return Note{}, err
	}
	if !r.hasNotebook(notebookID) {
		notebookID = DefaultNotebookID
	}
	now := r.now()
	n := Note{
		ID:          r.newID(),
		Title:       r.untitled,
		Content:     "",
		Tags:        []string{},
		NotebookID:  notebookID,
		Timestamp:   FormatRelativeLabel(now.UnixMilli(), now.UnixMilli(), r.dateLayout),
		Preview:     "",
		LastUpdated: now.UnixMilli(),
	}

	r.notes = append([]Note{n}, r.notes...)
	if err := r.persist(ctx, KeyNotes); err != nil {
		return n.Clone(), err
	}
	r.logger.Debug("note created", "note", n.ID, "notebook", notebookID)
	return n.Clone(), nil
}

// Save commits note, which must already exist, recomputing its derived
// fields, and reconciles the tag vocabulary. It returns the committed note.
func (r *Repository) Save(ctx context.Context, note Note) (Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.writable(); err != nil {
		return Note{}, err
	}
	i := r.indexOf(note.ID)
	if i < 0 {
		return Note{}, fmt.Errorf("save note %s: %w", note.ID, ErrNotFound)
	}

	saved := r.normalize(note)
	now := r.now().UnixMilli()
	saved.LastUpdated = max(now, r.notes[i].LastUpdated)
	saved.Timestamp = FormatRelativeLabel(saved.LastUpdated, now, r.dateLayout)
	r.notes[i] = saved

	r.tags = r.syncVocabulary(r.tags)

	if err := r.persist(ctx, KeyNotes, KeyTags); err != nil {
		return saved.Clone(), err
	}
	r.logger.Debug("note saved", "note", saved.ID, "tags", len(saved.Tags))
	return saved.Clone(), nil
}

// Delete removes the note with id and prunes orphaned tags. An unknown id is
// a no-op.
func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.writable(); err != nil {
		return err
	}
	i := r.indexOf(id)
	if i < 0 {
		return nil
	}
	r.notes = slices.Delete(r.notes, i, i+1)
	r.tags = Reconcile(r.notes, r.tags)

	if err := r.persist(ctx, KeyNotes, KeyTags); err != nil {
		return err
	}
	r.logger.Debug("note deleted", "note", id)
	return nil
}

// Import upserts notes: a known id replaces the stored note, an unknown id is
// prepended. Notes without an id get a fresh one. LastUpdated is kept when
// set, so imported history survives. It returns the number of notes written.
func (r *Repository) Import(ctx context.Context, notes ...Note) (int, error) {
	if len(notes) == 0 {
		return 0, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.writable(); err != nil {
		return 0, err
	}
	now := r.now().UnixMilli()
	for _, n := range notes {
		if n.ID == "" {
			n.ID = r.newID()
		}
		n = r.normalize(n)
		if n.LastUpdated == 0 {
			n.LastUpdated = now
		}
		n.Timestamp = FormatRelativeLabel(n.LastUpdated, now, r.dateLayout)

		if i := r.indexOf(n.ID); i >= 0 {
			r.notes[i] = n
		} else {
			r.notes = append([]Note{n}, r.notes...)
		}
	}
	r.tags = r.syncVocabulary(r.tags)

	if err := r.persist(ctx, KeyNotes, KeyTags); err != nil {
		return 0, err
	}
	r.logger.Debug("notes imported", "count", len(notes))
	return len(notes), nil
}

// FindByID returns a copy of the note, or ErrNotFound.
func (r *Repository) FindByID(id string) (Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return Note{}, fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	return r.notes[i].Clone(), nil
}

// EnsureTag adds name to the vocabulary if missing and persists it.
// Blank names are ignored and return the zero Tag.
func (r *Repository) EnsureTag(ctx context.Context, name string) (Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.writable(); err != nil {
		return Tag{}, err
	}
	tags, tag, added := EnsureTag(name, r.tags, r.newID)
	if !added {
		return tag, nil
	}
	r.tags = tags
	return tag, r.persist(ctx, KeyTags)
}

// AddNotebook creates a notebook named name.
func (r *Repository) AddNotebook(ctx context.Context, name string) (Notebook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.writable(); err != nil {
		return Notebook{}, err
	}
	nb := Notebook{ID: r.newID(), Name: name}
	r.notebooks = append(r.notebooks, nb)
	return nb, r.persist(ctx, KeyNotebooks)
}

// RemoveNotebook deletes a notebook and moves its notes to the default
// notebook. Removing an unknown notebook is a no-op.
func (r *Repository) RemoveNotebook(ctx context.Context, id string) error {
	if id == DefaultNotebookID {
		return ErrDefaultNotebook
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.writable(); err != nil {
		return err
	}
	i := slices.IndexFunc(r.notebooks, func(nb Notebook) bool { return nb.ID == id })
	if i < 0 {
		return nil
	}
	r.notebooks = slices.Delete(r.notebooks, i, i+1)

	moved := 0
	for j := range r.notes {
		if r.notes[j].NotebookID == id {
			r.notes[j].NotebookID = DefaultNotebookID
			moved++
		}
	}
	r.logger.Debug("notebook removed", "notebook", id, "moved", moved)
	return r.persist(ctx, KeyNotebooks, KeyNotes)
}

// Notes returns a copy of the collection, in storage order (newest created first).
func (r *Repository) Notes() []Note {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneNotes(r.notes)
}

// Tags returns a copy of the tag vocabulary.
func (r *Repository) Tags() []Tag {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.tags)
}

// Notebooks returns a copy of the notebooks.
func (r *Repository) Notebooks() []Notebook {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.notebooks)
}

// Visible runs VisibleNotes over the current collection and refreshes each
// note's relative timestamp label.
func (r *Repository) Visible(query string, filter Filter) []Note {
	r.mu.RLock()
	notes := VisibleNotes(cloneNotes(r.notes), query, filter)
	layout := r.dateLayout
	r.mu.RUnlock()

	now := r.now().UnixMilli()
	for i := range notes {
		notes[i].Timestamp = FormatRelativeLabel(notes[i].LastUpdated, now, layout)
	}
	return notes
}

// TagCounts counts notes per tag name.
func (r *Repository) TagCounts() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return TagCounts(r.notes)
}

// NotebookCounts counts notes per notebook id.
func (r *Repository) NotebookCounts() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return NotebookCounts(r.notes)
}

func cloneNotes(notes []Note) []Note {
	out := make([]Note, len(notes))
	for i, n := range notes {
		out[i] = n.Clone()
	}
	return out
}
