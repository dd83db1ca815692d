package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/alimgiray/familytree/internal/models"
	"github.com/alimgiray/familytree/internal/services"
	"github.com/gin-gonic/gin"
)

type MemberHandler struct {
	familyService *services.FamilyService
}

func NewMemberHandler(familyService *services.FamilyService) *MemberHandler {
	return &MemberHandler{
		familyService: familyService,
	}
}

// List returns the members of the current user
func (h *MemberHandler) List(c *gin.Context) {
	members, err := h.familyService.ListMembers(currentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": members})
}

// Create handles the add member form
func (h *MemberHandler) Create(c *gin.Context) {
	h.save(c, "")
}

// Update handles the edit member form
func (h *MemberHandler) Update(c *gin.Context) {
	h.save(c, c.Param("id"))
}

func (h *MemberHandler) save(c *gin.Context, id string) {
	var draft models.PersonDraft
	if err := c.ShouldBind(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid member data"})
		return
	}
	draft.ID = id

	photo, closePhoto, err := photoFromRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid photo upload"})
		return
	}
	defer closePhoto()

	result, err := h.familyService.SavePerson(c.Request.Context(), currentSession(c), &draft, photo)

	var relErr *services.RelationshipUpdateError
	if errors.As(err, &relErr) && result != nil {
		c.JSON(http.StatusOK, gin.H{
			"person":   result.Person,
			"applied":  result.Applied,
			"warnings": []string{relErr.Error()},
		})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if id == "" {
		status = http.StatusCreated
	}
	c.JSON(status, result)
}

// Delete removes a member and every relationship pointing at it
func (h *MemberHandler) Delete(c *gin.Context) {
	if err := h.familyService.DeletePerson(currentSession(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Tree returns the chart model; ?root= carries the root the client showed last
func (h *MemberHandler) Tree(c *gin.Context) {
	chart, err := h.familyService.Tree(currentSession(c), c.Query("root"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, chart)
}

// photoFromRequest reads the optional "photo" file of a multipart form
func photoFromRequest(c *gin.Context) (*services.PhotoUpload, func(), error) {
	noop := func() {}
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, noop, nil
	}

	header, err := c.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, err
	}

	file, err := header.Open()
	if err != nil {
		return nil, noop, err
	}

	return &services.PhotoUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     file,
	}, func() { file.Close() }, nil
}
