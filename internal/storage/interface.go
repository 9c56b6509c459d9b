package storage

import (
	"context"

	"github.com/kurihiro0119/github-projects/internal/domain"
)

// Storage is the abstract interface for the project persistence layer.
// Uniqueness of repository_id and title is enforced by the schema;
// adapters translate constraint violations into the application error
// taxonomy (ALREADY_LINKED, INVALID_TITLE).
type Storage interface {
	// CreateProject persists a new project and returns it with its
	// store-assigned id
	CreateProject(ctx context.Context, fields domain.ProjectFields) (*domain.Project, error)

	// DeleteProject removes a project and returns the deleted snapshot
	DeleteProject(ctx context.Context, id string) (*domain.Project, error)

	// FindProjects returns projects matching the filter, a zero filter
	// matches all
	FindProjects(ctx context.Context, filter domain.ProjectFilter) ([]*domain.Project, error)

	// FindProject returns a single project by id
	FindProject(ctx context.Context, id string) (*domain.Project, error)

	// Migration
	Migrate(ctx context.Context) error

	// Connection management
	Close() error
}
