package handlers

import (
	"errors"
	"net/http"

	"github.com/alimgiray/familytree/internal/middleware"
	"github.com/alimgiray/familytree/internal/models"
	"github.com/alimgiray/familytree/internal/services"
	"github.com/alimgiray/familytree/pkg/logger"
	"github.com/gin-gonic/gin"
)

const guestNotice = "You are in guest mode. Your changes are not saved."

// respondError turns a service error into the user-facing response
func respondError(c *gin.Context, err error) {
	var validationErrs models.ValidationErrors
	var relErr *services.RelationshipUpdateError

	switch {
	case errors.Is(err, services.ErrGuestMode):
		c.JSON(http.StatusAccepted, gin.H{"notice": guestNotice, "saved": false})
	case errors.As(err, &validationErrs):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErrs.Error(), "fields": validationErrs})
	case errors.Is(err, services.ErrPersonNotFound), errors.Is(err, services.ErrNoteNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUploadFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to upload photo. Please try again."})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &relErr):
		c.JSON(http.StatusInternalServerError, gin.H{"error": relErr.Error(), "failed": relErr.Failures})
	case errors.Is(err, services.ErrPrimarySave):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while saving the family member."})
	default:
		logger.WithError(err).WithField("path", c.Request.URL.Path).Error("Unhandled request error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}

// currentSession returns the identity of the request. AuthRequired guarantees one exists.
func currentSession(c *gin.Context) models.Session {
	session := middleware.GetSession(c)
	if session == nil {
		return models.Session{}
	}
	return session.Session()
}
