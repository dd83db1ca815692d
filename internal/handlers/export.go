package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/alimgiray/familytree/internal/services"
	"github.com/gin-gonic/gin"
)

type ExportHandler struct {
	familyService *services.FamilyService
	noteService   *services.NoteService
	exportService *services.ExportService
}

func NewExportHandler(familyService *services.FamilyService, noteService *services.NoteService, exportService *services.ExportService) *ExportHandler {
	return &ExportHandler{
		familyService: familyService,
		noteService:   noteService,
		exportService: exportService,
	}
}

// Workbook downloads the printable family workbook
func (h *ExportHandler) Workbook(c *gin.Context) {
	session := currentSession(c)

	members, err := h.familyService.ListMembers(session)
	if err != nil {
		respondError(c, err)
		return
	}
	notes, err := h.noteService.ListNotes(session)
	if err != nil {
		respondError(c, err)
		return
	}

	f, err := h.exportService.Workbook(members, notes)
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("family-tree-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Status(http.StatusOK)

	if err := f.Write(c.Writer); err != nil {
		c.Error(err)
	}
}
