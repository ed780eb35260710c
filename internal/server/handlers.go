package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aretw0/notebox/pkg/chat"
	"github.com/aretw0/notebox/pkg/core"
)

// Badge is a tag or notebook with the number of notes referencing it.
type Badge struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// noteUpdate is the body of PUT /api/notes/:id. Absent fields are kept.
type noteUpdate struct {
	Title      *string   `json:"title"`
	Content    *string   `json:"content"`
	Tags       *[]string `json:"tags"`
	NotebookID *string   `json:"notebookId"`
}

type nameRequest struct {
	Name string `json:"name" binding:"required"`
}

type chatRequest struct {
	Message string `json:"message"`
	NoteID  string `json:"noteId"`
}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrDefaultNotebook), errors.Is(err, chat.ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrReadOnly):
		return http.StatusForbidden
	case errors.Is(err, chat.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, core.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"repository": s.repo.State(),
	})
}

func (s *Server) listNotes(c *gin.Context) {
	filter := core.ParseFilter(c.Query("filter"))
	c.JSON(http.StatusOK, s.repo.Visible(c.Query("q"), filter))
}

// createNote adds an empty note. The notebook comes from the body, or from a
// notebook filter in the query string.
func (s *Server) createNote(c *gin.Context) {
	var body struct {
		NotebookID string `json:"notebookId"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if body.NotebookID == "" {
		body.NotebookID = core.ParseFilter(c.Query("filter")).NotebookID()
	}

	note, err := s.repo.Create(c.Request.Context(), body.NotebookID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}

// getNote answers an unknown id with a redirect hint to the list view.
func (s *Server) getNote(c *gin.Context) {
	note, err := s.repo.FindByID(c.Param("id"))
	if errors.Is(err, core.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "note not found", "redirect": "/"})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func (s *Server) updateNote(c *gin.Context) {
	var body noteUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	note, err := s.repo.FindByID(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if body.Title != nil {
		note.Title = *body.Title
	}
	if body.Content != nil {
		note.Content = *body.Content
	}
	if body.Tags != nil {
		note.Tags = *body.Tags
	}
	if body.NotebookID != nil {
		note.NotebookID = *body.NotebookID
	}

	saved, err := s.repo.Save(c.Request.Context(), note)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (s *Server) deleteNote(c *gin.Context) {
	if err := s.repo.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listTags(c *gin.Context) {
	counts := s.repo.TagCounts()
	tags := s.repo.Tags()
	out := make([]Badge, 0, len(tags))
	for _, t := range tags {
		out = append(out, Badge{ID: t.ID, Name: t.Name, Count: counts[t.Name]})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createTag(c *gin.Context) {
	var body nameRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tag, err := s.repo.EnsureTag(c.Request.Context(), body.Name)
	if err != nil {
		s.fail(c, err)
		return
	}
	if tag.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tag name is blank"})
		return
	}
	c.JSON(http.StatusCreated, tag)
}

func (s *Server) listNotebooks(c *gin.Context) {
	counts := s.repo.NotebookCounts()
	notebooks := s.repo.Notebooks()
	out := make([]Badge, 0, len(notebooks))
	for _, nb := range notebooks {
		out = append(out, Badge{ID: nb.ID, Name: nb.Name, Count: counts[nb.ID]})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createNotebook(c *gin.Context) {
	var body nameRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	nb, err := s.repo.AddNotebook(c.Request.Context(), body.Name)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, nb)
}

func (s *Server) deleteNotebook(c *gin.Context) {
	if err := s.repo.RemoveNotebook(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// sendChat posts a message to the session. With noteId, the note's content
// becomes the conversation context.
func (s *Server) sendChat(c *gin.Context) {
	if s.session == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "chat is not configured"})
		return
	}
	var body chatRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if body.NoteID != "" {
		note, err := s.repo.FindByID(body.NoteID)
		if err != nil {
			s.fail(c, err)
			return
		}
		s.session.SetContext(note.Content)
	}

	reply, err := s.session.Send(c.Request.Context(), body.Message)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

func (s *Server) chatHistory(c *gin.Context) {
	if s.session == nil {
		c.JSON(http.StatusOK, []chat.Entry{})
		return
	}
	c.JSON(http.StatusOK, s.session.History())
}
