package services

import (
	"database/sql"
	"strings"
	"sync"
	"testing"

	"github.com/alimgiray/familytree/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: make(map[string]*models.User)}
}

func (s *memoryUsers) Create(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *user
	c.Email = strings.ToLower(c.Email)
	s.users[user.ID.String()] = &c
	return nil
}

func (s *memoryUsers) find(match func(*models.User) bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *memoryUsers) GetByID(id string) (*models.User, error) {
	return s.find(func(u *models.User) bool { return u.ID.String() == id })
}

func (s *memoryUsers) GetByEmail(email string) (*models.User, error) {
	return s.find(func(u *models.User) bool { return u.Email != "" && u.Email == strings.ToLower(email) })
}

func (s *memoryUsers) GetByGitHubLogin(login string) (*models.User, error) {
	return s.find(func(u *models.User) bool { return u.GitHubLogin != "" && u.GitHubLogin == login })
}

func (s *memoryUsers) Update(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID.String()]; !ok {
		return sql.ErrNoRows
	}
	c := *user
	s.users[user.ID.String()] = &c
	return nil
}

func (s *memoryUsers) MarkWelcomeSeen(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.HasSeenWelcome = true
	return nil
}

func newTestUserService() (*UserService, *memoryUsers) {
	users := newMemoryUsers()
	service := NewUserService(users)
	service.bcryptCost = bcrypt.MinCost
	return service, users
}

func TestRegisterAndLogin(t *testing.T) {
	service, _ := newTestUserService()

	user, err := service.Register(Credentials{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "ada", user.Name)
	assert.Equal(t, models.AuthModePassword, user.AuthMode)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	_, err = service.Register(Credentials{Email: "ADA@example.com", Password: "another"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	loggedIn, err := service.Login(Credentials{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	_, err = service.Login(Credentials{Email: "ada@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Login(Credentials{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	service, users := newTestUserService()

	_, err := service.Register(Credentials{Email: "not-an-email", Password: "123"})

	var validationErrs models.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
	fields := []string{}
	for _, v := range validationErrs {
		fields = append(fields, v.Field)
	}
	assert.ElementsMatch(t, []string{"email", "password"}, fields)
	assert.Empty(t, users.users)
}

func TestAnonymousAndGuest(t *testing.T) {
	service, users := newTestUserService()

	anon, err := service.SignInAnonymously()
	require.NoError(t, err)
	assert.Equal(t, models.AuthModeAnonymous, anon.AuthMode)
	assert.Len(t, users.users, 1)

	guest := service.NewGuestSession()
	assert.Equal(t, models.SessionGuest, guest.Mode)
	assert.NotEmpty(t, guest.UserID)
	assert.False(t, guest.Persistent())
	assert.Len(t, users.users, 1)

	assert.ErrorIs(t, service.DismissWelcome(guest), ErrGuestMode)
	require.NoError(t, service.DismissWelcome(models.Session{UserID: anon.ID.String(), Mode: models.SessionAnonymous}))

	stored, err := service.GetUserByID(anon.ID.String())
	require.NoError(t, err)
	assert.True(t, stored.HasSeenWelcome)
}

func TestSignInWithGitHub(t *testing.T) {
	service, users := newTestUserService()

	first, err := service.SignInWithGitHub(&GitHubUser{ID: 7, Login: "octo"})
	require.NoError(t, err)
	assert.Equal(t, "octo", first.Name)
	assert.Equal(t, models.AuthModeGitHub, first.AuthMode)

	again, err := service.SignInWithGitHub(&GitHubUser{ID: 7, Login: "octo", Name: "Octo Cat"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "Octo Cat", again.Name)
	assert.Len(t, users.users, 1)

	// GitHub accounts have no password to log in with
	_, err = service.Login(Credentials{Email: "", Password: "anything"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
