package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"

	"github.com/alimgiray/familytree/internal/middleware"
	"github.com/alimgiray/familytree/internal/models"
	"github.com/alimgiray/familytree/internal/services"
	"github.com/alimgiray/familytree/pkg/logger"
	"github.com/gin-gonic/gin"
)

const oauthStateCookie = "oauth_state"

type AuthHandler struct {
	userService   *services.UserService
	githubService *services.GitHubService
}

// NewAuthHandler wires the sign-in flows. githubService may be nil when GitHub sign-in is not configured.
func NewAuthHandler(userService *services.UserService, githubService *services.GitHubService) *AuthHandler {
	return &AuthHandler{
		userService:   userService,
		githubService: githubService,
	}
}

// Register creates a password account and signs it in
func (h *AuthHandler) Register(c *gin.Context) {
	var creds services.Credentials
	if err := c.ShouldBind(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid registration data"})
		return
	}

	user, err := h.userService.Register(creds)
	if err != nil {
		respondError(c, err)
		return
	}

	h.signIn(c, user, models.SessionAuthenticated, http.StatusCreated)
}

// Login signs in with email and password
func (h *AuthHandler) Login(c *gin.Context) {
	var creds services.Credentials
	if err := c.ShouldBind(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid login data"})
		return
	}

	user, err := h.userService.Login(creds)
	if err != nil {
		respondError(c, err)
		return
	}

	h.signIn(c, user, models.SessionAuthenticated, http.StatusOK)
}

// Anonymous signs in without credentials
func (h *AuthHandler) Anonymous(c *gin.Context) {
	user, err := h.userService.SignInAnonymously()
	if err != nil {
		respondError(c, err)
		return
	}

	h.signIn(c, user, models.SessionAnonymous, http.StatusCreated)
}

// Guest starts a session whose changes are never stored
func (h *AuthHandler) Guest(c *gin.Context) {
	session := h.userService.NewGuestSession()
	if err := middleware.SetSession(c, session.UserID, "Guest", "", session.Mode); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mode":   session.Mode,
		"notice": guestNotice,
	})
}

// Logout handles user logout
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearSession(c)
	c.Status(http.StatusNoContent)
}

// Me describes the signed-in visitor
func (h *AuthHandler) Me(c *gin.Context) {
	session := currentSession(c)
	if !session.Persistent() {
		c.JSON(http.StatusOK, gin.H{
			"mode":   session.Mode,
			"notice": guestNotice,
		})
		return
	}

	user, err := h.userService.GetUserByID(session.UserID)
	if err != nil {
		// The account behind the cookie is gone
		middleware.ClearSession(c)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Sign in to continue"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mode":           session.Mode,
		"user":           user,
		"hasSeenWelcome": user.HasSeenWelcome,
	})
}

// DismissWelcome stores that the welcome message was shown
func (h *AuthHandler) DismissWelcome(c *gin.Context) {
	if err := h.userService.DismissWelcome(currentSession(c)); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GitHubLogin initiates GitHub OAuth flow
func (h *AuthHandler) GitHubLogin(c *gin.Context) {
	if h.githubService == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "GitHub sign-in is not enabled"})
		return
	}

	state, err := randomState()
	if err != nil {
		respondError(c, err)
		return
	}

	c.SetCookie(oauthStateCookie, state, 600, "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, h.githubService.GetAuthURL(state))
}

// GitHubCallback handles GitHub OAuth callback
func (h *AuthHandler) GitHubCallback(c *gin.Context) {
	if h.githubService == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "GitHub sign-in is not enabled"})
		return
	}

	state, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || state != c.Query("state") {
		c.Redirect(http.StatusFound, "/?error=invalid_state")
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusFound, "/?error=no_code")
		return
	}

	// Exchange code for token
	token, err := h.githubService.ExchangeCodeForToken(c.Request.Context(), code)
	if err != nil {
		logger.WithError(err).Warn("GitHub token exchange failed")
		c.Redirect(http.StatusFound, "/?error=token_exchange_failed")
		return
	}

	// Get user info from GitHub
	githubUser, err := h.githubService.GetUserInfo(c.Request.Context(), token)
	if err != nil {
		logger.WithError(err).Warn("GitHub user lookup failed")
		c.Redirect(http.StatusFound, "/?error=user_info_failed")
		return
	}

	user, err := h.userService.SignInWithGitHub(githubUser)
	if err != nil {
		logger.WithError(err).WithField("login", githubUser.Login).Error("GitHub sign-in failed")
		c.Redirect(http.StatusFound, "/?error=user_creation_failed")
		return
	}

	if err := middleware.SetSession(c, user.ID.String(), user.Name, user.Email, models.SessionAuthenticated); err != nil {
		c.Redirect(http.StatusFound, "/?error=session_creation_failed")
		return
	}

	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) signIn(c *gin.Context, user *models.User, mode models.SessionMode, status int) {
	if err := middleware.SetSession(c, user.ID.String(), user.Name, user.Email, mode); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(status, gin.H{
		"mode":           mode,
		"user":           user,
		"hasSeenWelcome": user.HasSeenWelcome,
	})
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
