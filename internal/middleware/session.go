package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alimgiray/familytree/internal/models"
	"github.com/alimgiray/familytree/pkg/config"
	"github.com/gin-gonic/gin"
)

const (
	sessionCookie = "session"
	sessionTTL    = 24 * time.Hour
)

type SessionData struct {
	UserID    string             `json:"user_id"`
	Username  string             `json:"username"`
	Email     string             `json:"email"`
	Mode      models.SessionMode `json:"mode"`
	ExpiresAt time.Time          `json:"expires_at"`
}

// Session returns the identity services act for
func (s *SessionData) Session() models.Session {
	mode := s.Mode
	if mode == "" {
		mode = models.SessionAuthenticated
	}
	return models.Session{UserID: s.UserID, Mode: mode}
}

// SessionMiddleware handles session management using cookies.
// A valid session is extended by another day whenever the request succeeds.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get session from cookie
		sessionData := getSessionFromCookie(c)

		// Set session data in context
		c.Set("session", sessionData)

		if sessionData != nil {
			c.Writer = &extendingWriter{ResponseWriter: c.Writer, context: c, session: *sessionData}
		}

		c.Next()
	}
}

// extendingWriter refreshes the session cookie just before the status line
// is written, as long as the response is not an error
type extendingWriter struct {
	gin.ResponseWriter
	context *gin.Context
	session SessionData
	done    bool
}

func (w *extendingWriter) WriteHeader(code int) {
	w.extend(code)
	w.ResponseWriter.WriteHeader(code)
}

func (w *extendingWriter) WriteHeaderNow() {
	w.extend(w.ResponseWriter.Status())
	w.ResponseWriter.WriteHeaderNow()
}

func (w *extendingWriter) Write(data []byte) (int, error) {
	w.extend(w.ResponseWriter.Status())
	return w.ResponseWriter.Write(data)
}

func (w *extendingWriter) WriteString(s string) (int, error) {
	w.extend(w.ResponseWriter.Status())
	return w.ResponseWriter.WriteString(s)
}

func (w *extendingWriter) extend(code int) {
	if w.done || w.ResponseWriter.Written() {
		return
	}
	w.done = true

	if code >= http.StatusBadRequest {
		return
	}
	// Handlers that replaced or cleared the session own the cookie
	if strings.Contains(strings.Join(w.Header().Values("Set-Cookie"), ";"), sessionCookie+"=") {
		return
	}

	value, err := encodeSession(w.session.UserID, w.session.Username, w.session.Email, w.session.Mode)
	if err != nil {
		return
	}
	http.SetCookie(w.ResponseWriter, &http.Cookie{
		Name:     sessionCookie,
		Value:    url.QueryEscape(value),
		MaxAge:   int(sessionTTL.Seconds()),
		Path:     "/",
		HttpOnly: true,
	})
}

// getSessionFromCookie extracts and validates session data from cookie
func getSessionFromCookie(c *gin.Context) *SessionData {
	cookie, err := c.Cookie(sessionCookie)
	if err != nil {
		return nil
	}

	// Split cookie value (signature.data)
	parts := strings.Split(cookie, ".")
	if len(parts) != 2 {
		return nil
	}

	signature, data := parts[0], parts[1]

	// Verify signature
	if !verifySignature(data, signature) {
		return nil
	}

	// Decode data
	decodedData, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		return nil
	}

	var sessionData SessionData
	if err := json.Unmarshal(decodedData, &sessionData); err != nil {
		return nil
	}

	// Check if session is expired
	if time.Now().After(sessionData.ExpiresAt) {
		return nil
	}

	return &sessionData
}

// SetSession creates a new session cookie
func SetSession(c *gin.Context, userID, username, email string, mode models.SessionMode) error {
	value, err := encodeSession(userID, username, email, mode)
	if err != nil {
		return err
	}

	c.SetCookie(sessionCookie, value, int(sessionTTL.Seconds()), "/", "", false, true)

	return nil
}

func encodeSession(userID, username, email string, mode models.SessionMode) (string, error) {
	sessionData := SessionData{
		UserID:    userID,
		Username:  username,
		Email:     email,
		Mode:      mode,
		ExpiresAt: time.Now().Add(sessionTTL),
	}

	data, err := json.Marshal(sessionData)
	if err != nil {
		return "", err
	}

	encodedData := base64.URLEncoding.EncodeToString(data)
	return createSignature(encodedData) + "." + encodedData, nil
}

// ClearSession removes the session cookie
func ClearSession(c *gin.Context) {
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
}

// createSignature creates HMAC signature for data
func createSignature(data string) string {
	h := hmac.New(sha256.New, []byte(config.AppConfig.Session.Secret))
	h.Write([]byte(data))
	return base64.URLEncoding.EncodeToString(h.Sum(nil))
}

// verifySignature verifies HMAC signature
func verifySignature(data, signature string) bool {
	expectedSignature := createSignature(data)
	return hmac.Equal([]byte(signature), []byte(expectedSignature))
}

// GetSession retrieves session data from context
func GetSession(c *gin.Context) *SessionData {
	session, exists := c.Get("session")
	if !exists {
		return nil
	}

	if sessionData, ok := session.(*SessionData); ok {
		return sessionData
	}

	return nil
}
