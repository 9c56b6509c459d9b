package source

import (
	"context"

	"github.com/kurihiro0119/github-projects/internal/domain"
)

// Source defines the interface for the external repository provider
type Source interface {
	// ListRepositories retrieves the authenticated user's repositories
	ListRepositories(ctx context.Context) ([]*domain.Repository, error)

	// FetchReadme retrieves the raw readme text for a repository.
	// A missing readme is not an error: it returns ("", nil).
	FetchReadme(ctx context.Context, owner, name, defaultBranch string) (string, error)
}
