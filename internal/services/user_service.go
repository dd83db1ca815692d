package services

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/alimgiray/familytree/internal/models"
	"github.com/alimgiray/familytree/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserStore persists signed-up users
type UserStore interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByGitHubLogin(login string) (*models.User, error)
	Update(user *models.User) error
	MarkWelcomeSeen(id string) error
}

// Credentials is an email/password pair from the login or register form
type Credentials struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=6,max=72"`
	Name     string `json:"name" form:"name" validate:"max=100"`
}

type UserService struct {
	userRepo   UserStore
	bcryptCost int
}

func NewUserService(userRepo UserStore) *UserService {
	return &UserService{
		userRepo:   userRepo,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// Register creates a password user
func (s *UserService) Register(creds Credentials) (*models.User, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if err := validateStruct(creds); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByEmail(creds.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(creds.Name)
	if name == "" {
		name = strings.SplitN(creds.Email, "@", 2)[0]
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        creds.Email,
		Name:         name,
		PasswordHash: string(hash),
		AuthMode:     models.AuthModePassword,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	logger.WithUser(user.ID.String()).Info("User registered")
	return user, nil
}

// Login checks an email/password pair
func (s *UserService) Login(creds Credentials) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(strings.TrimSpace(creds.Email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.AuthMode != models.AuthModePassword {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// SignInAnonymously creates a persisted user without credentials.
// The data stays reachable for as long as the session cookie lives.
func (s *UserService) SignInAnonymously() (*models.User, error) {
	user := &models.User{
		ID:       uuid.New(),
		Name:     "Anonymous",
		AuthMode: models.AuthModeAnonymous,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	logger.WithUser(user.ID.String()).Info("Anonymous user created")
	return user, nil
}

// NewGuestSession returns a throwaway identity that is never stored
func (s *UserService) NewGuestSession() models.Session {
	return models.Session{UserID: uuid.New().String(), Mode: models.SessionGuest}
}

// SignInWithGitHub finds or creates the user behind a GitHub profile
func (s *UserService) SignInWithGitHub(profile *GitHubUser) (*models.User, error) {
	user, err := s.userRepo.GetByGitHubLogin(profile.Login)
	if err == nil {
		if profile.Name != "" && profile.Name != user.Name {
			user.Name = profile.Name
			if err := s.userRepo.Update(user); err != nil {
				return nil, err
			}
		}
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	name := profile.Name
	if name == "" {
		name = profile.Login
	}
	user = &models.User{
		ID:          uuid.New(),
		Name:        name,
		AuthMode:    models.AuthModeGitHub,
		GitHubLogin: profile.Login,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	logger.WithUser(user.ID.String()).Info("GitHub user created")
	return user, nil
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(id string) (*models.User, error) {
	return s.userRepo.GetByID(id)
}

// DismissWelcome records that the welcome message was shown
func (s *UserService) DismissWelcome(session models.Session) error {
	if !session.Persistent() {
		return ErrGuestMode
	}
	return s.userRepo.MarkWelcomeSeen(session.UserID)
}
