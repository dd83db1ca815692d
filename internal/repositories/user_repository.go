package repositories

import (
	"database/sql"
	"strings"

	"github.com/alimgiray/familytree/internal/models"
	"github.com/google/uuid"
)

const userColumns = `id, email, name, password_hash, auth_mode, github_login, has_seen_welcome, created_at`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// Create creates a new user
func (r *UserRepository) Create(user *models.User) error {
	query := `
		INSERT INTO users (id, email, name, password_hash, auth_mode, github_login, has_seen_welcome)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		user.ID.String(),
		strings.ToLower(user.Email),
		user.Name,
		user.PasswordHash,
		string(user.AuthMode),
		user.GitHubLogin,
		user.HasSeenWelcome,
	)
	return err
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(id string) (*models.User, error) {
	return r.getOne(`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	return r.getOne(`SELECT `+userColumns+` FROM users WHERE email = ?`, strings.ToLower(email))
}

// GetByGitHubLogin retrieves a user that signed in through GitHub
func (r *UserRepository) GetByGitHubLogin(login string) (*models.User, error) {
	return r.getOne(`SELECT `+userColumns+` FROM users WHERE github_login = ? AND auth_mode = ?`,
		login, string(models.AuthModeGitHub))
}

// Update updates a user
func (r *UserRepository) Update(user *models.User) error {
	query := `
		UPDATE users
		SET email = ?, name = ?, password_hash = ?, github_login = ?, has_seen_welcome = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		strings.ToLower(user.Email),
		user.Name,
		user.PasswordHash,
		user.GitHubLogin,
		user.HasSeenWelcome,
		user.ID.String(),
	)
	if err != nil {
		return err
	}

	return requireAffected(result)
}

// MarkWelcomeSeen records that the user dismissed the welcome message
func (r *UserRepository) MarkWelcomeSeen(id string) error {
	result, err := r.db.Exec(`UPDATE users SET has_seen_welcome = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}

	return requireAffected(result)
}

func (r *UserRepository) getOne(query string, args ...interface{}) (*models.User, error) {
	var user models.User
	var userID, authMode string
	err := r.db.QueryRow(query, args...).Scan(
		&userID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&authMode,
		&user.GitHubLogin,
		&user.HasSeenWelcome,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.ID, err = uuid.Parse(userID)
	if err != nil {
		return nil, err
	}
	user.AuthMode = models.AuthMode(authMode)

	return &user, nil
}
