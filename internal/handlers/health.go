package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	workerStatus func() map[string]bool
}

func NewHealthHandler(workerStatus func() map[string]bool) *HealthHandler {
	return &HealthHandler{workerStatus: workerStatus}
}

// HealthCheck reports the server and its workers as alive
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	data := gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format("2006-01-02 15:04:05"),
	}
	if h.workerStatus != nil {
		data["workers"] = h.workerStatus()
	}

	c.JSON(http.StatusOK, data)
}
