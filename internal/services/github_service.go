package services

import (
	"context"
	"fmt"

	"github.com/alimgiray/familytree/pkg/config"
	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
	githubOAuth "golang.org/x/oauth2/github"
)

type GitHubService struct {
	oauthConfig *oauth2.Config
}

type GitHubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

func NewGitHubService(cfg config.GitHubConfig) *GitHubService {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.CallbackURL,
		Scopes:       []string{"read:user"},
		Endpoint:     githubOAuth.Endpoint,
	}

	return &GitHubService{
		oauthConfig: oauthConfig,
	}
}

// GetAuthURL returns the GitHub OAuth authorization URL
func (s *GitHubService) GetAuthURL(state string) string {
	return s.oauthConfig.AuthCodeURL(state)
}

// ExchangeCodeForToken exchanges authorization code for access token
func (s *GitHubService) ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}
	return token, nil
}

// GetUserInfo retrieves the authenticated user's profile from GitHub
func (s *GitHubService) GetUserInfo(ctx context.Context, token *oauth2.Token) (*GitHubUser, error) {
	client := github.NewClient(s.oauthConfig.Client(ctx, token))

	user, _, err := client.Users.Get(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}

	return &GitHubUser{
		ID:        user.GetID(),
		Login:     user.GetLogin(),
		Name:      user.GetName(),
		AvatarURL: user.GetAvatarURL(),
	}, nil
}
