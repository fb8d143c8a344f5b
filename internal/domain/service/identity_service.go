package service

import (
	"context"

	"evault/internal/domain/entity"
)

// RepoOwner is the owner slice of a GitHub repository payload.
type RepoOwner struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

// RemoteRepository is a repository as reported live by the provider.
type RemoteRepository struct {
	ID          int64     `json:"id"`
	FullName    string    `json:"full_name"`
	Private     bool      `json:"private"`
	HTMLURL     string    `json:"html_url"`
	Description *string   `json:"description"`
	Owner       RepoOwner `json:"owner"`
}

// IdentityService is the boundary to the GitHub OAuth and REST APIs. The
// broker treats it as an opaque remote call; any non-success response from
// the provider surfaces as an error.
type IdentityService interface {
	// ExchangeCode trades an authorization code for a provider token.
	ExchangeCode(ctx context.Context, code string) (*entity.GitHubToken, error)

	// FetchProfile fetches the authenticated user's profile. The email is
	// nil when the provider withholds it.
	FetchProfile(ctx context.Context, token *entity.GitHubToken) (*entity.GitHubUser, *string, error)

	// FetchUserRepositories lists the caller's repositories, most recently
	// pushed first.
	FetchUserRepositories(ctx context.Context, token *entity.GitHubToken) ([]*RemoteRepository, error)

	// FetchRepository fetches a single repository by owner and name.
	FetchRepository(ctx context.Context, token *entity.GitHubToken, owner, name string) (*RemoteRepository, error)
}
