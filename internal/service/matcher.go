package service

import (
	"context"
	"log"

	"github.com/kurihiro0119/github-projects/internal/domain"
	"github.com/kurihiro0119/github-projects/internal/storage"
)

// Matcher resolves the at-most-one project linked to a repository id
type Matcher struct {
	store storage.Storage
}

// NewMatcher creates a new matcher
func NewMatcher(store storage.Storage) *Matcher {
	return &Matcher{store: store}
}

// FindProjectID returns the id of the project linked to the repository,
// or "" when none is linked. More than one match means the uniqueness
// constraint was violated upstream; the matcher degrades to "no match"
// and logs the inconsistency instead of failing the read.
func (m *Matcher) FindProjectID(ctx context.Context, repositoryID int64) (string, error) {
	matches, err := m.store.FindProjects(ctx, domain.ProjectFilter{RepositoryID: &repositoryID})
	if err != nil {
		return "", err
	}
	if len(matches) == 1 {
		return matches[0].ID, nil
	}
	if len(matches) > 1 {
		log.Printf("repository %d is linked to %d projects, expected at most one", repositoryID, len(matches))
	}
	return "", nil
}
