// Package notebox is the composition root of a single-user notes store.
//
// Notes, the tag vocabulary derived from them, and notebooks are kept
// mutually consistent by core.Repository and persisted as three JSON
// collections in a pluggable key-value store: a directory of files (with an
// optional git history), a SQLite database, or memory.
//
// Usage:
//
//	repo, err := notebox.Open(ctx, ".notebox", notebox.WithHistory(true))
//	if err != nil {
//		return err
//	}
//	note, err := repo.Create(ctx, "")
//	note.Title = "Groceries"
//	note, err = repo.Save(ctx, note)
//
// Edits can also go through an autosaving editor:
//
//	ed, err := repo.Edit(note.ID, core.WithAutosaveDelay(5*time.Second))
//	defer ed.Close()
//	ed.SetContent("milk")
package notebox
