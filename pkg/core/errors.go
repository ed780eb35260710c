package core

import "errors"

// Common errors.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidKey      = errors.New("invalid store key")
	ErrReadOnly        = errors.New("store is in read-only mode")
	ErrDefaultNotebook = errors.New("the default notebook cannot be removed")
	ErrEditorClosed    = errors.New("editor is closed")
	ErrUnavailable     = errors.New("persisted state could not be read; reload before writing")
)
