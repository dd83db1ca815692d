package handlers

import (
	"net/http"

	"github.com/alimgiray/familytree/internal/models"
	"github.com/alimgiray/familytree/internal/services"
	"github.com/gin-gonic/gin"
)

type NoteHandler struct {
	noteService *services.NoteService
}

func NewNoteHandler(noteService *services.NoteService) *NoteHandler {
	return &NoteHandler{
		noteService: noteService,
	}
}

type noteRequest struct {
	Title           string `json:"title" form:"title"`
	Content         string `json:"content" form:"content"`
	RelatedPersonID string `json:"relatedPersonId" form:"relatedPersonId"`
}

// List returns the family stories of the current user
func (h *NoteHandler) List(c *gin.Context) {
	notes, err := h.noteService.ListNotes(currentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

// Create adds a family story
func (h *NoteHandler) Create(c *gin.Context) {
	h.save(c, "")
}

// Update edits a family story
func (h *NoteHandler) Update(c *gin.Context) {
	h.save(c, c.Param("id"))
}

func (h *NoteHandler) save(c *gin.Context, id string) {
	var req noteRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid note data"})
		return
	}

	note := &models.Note{
		ID:              id,
		Title:           req.Title,
		Content:         req.Content,
		RelatedPersonID: req.RelatedPersonID,
	}

	saved, err := h.noteService.SaveNote(currentSession(c), note)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if id == "" {
		status = http.StatusCreated
	}
	c.JSON(status, saved)
}

// Delete removes a family story
func (h *NoteHandler) Delete(c *gin.Context) {
	if err := h.noteService.DeleteNote(currentSession(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
