package models

import (
	"time"

	"github.com/google/uuid"
)

// AuthMode records how a stored user signed up
type AuthMode string

const (
	AuthModePassword  AuthMode = "password"
	AuthModeAnonymous AuthMode = "anonymous"
	AuthModeGitHub    AuthMode = "github"
)

type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	PasswordHash   string    `json:"-"`
	AuthMode       AuthMode  `json:"authMode"`
	GitHubLogin    string    `json:"githubLogin,omitempty"`
	HasSeenWelcome bool      `json:"hasSeenWelcome"`
	CreatedAt      time.Time `json:"createdAt"`
}
