package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AuthRequired middleware rejects requests without a session.
// Guest sessions pass; their writes are turned away by the services.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := GetSession(c)

		if session == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Sign in to continue"})
			return
		}

		// User is authenticated, continue
		c.Next()
	}
}
