package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/kurihiro0119/github-projects/internal/domain"
	apperrors "github.com/kurihiro0119/github-projects/internal/errors"
	"github.com/kurihiro0119/github-projects/internal/storage"
)

// postgresStorage implements the Storage interface for PostgreSQL
type postgresStorage struct {
	db *sql.DB
}

// NewPostgresStorage creates a new PostgreSQL storage instance
func NewPostgresStorage(connURL string) (storage.Storage, error) {
	db, err := sql.Open("postgres", connURL)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &postgresStorage{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		return nil, err
	}

	return s, nil
}

// Migrate runs database migrations
func (s *postgresStorage) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		repository_id BIGINT NOT NULL,
		title TEXT NOT NULL,
		short_description TEXT NOT NULL DEFAULT '',
		repository_url TEXT NOT NULL DEFAULT '',
		long_description TEXT NOT NULL DEFAULT '',
		cover_image TEXT,
		created_by TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT projects_repository_id_key UNIQUE (repository_id),
		CONSTRAINT projects_title_key UNIQUE (title)
	);

	CREATE INDEX IF NOT EXISTS idx_projects_repository_id ON projects(repository_id);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// CreateProject persists a new project with a store-assigned uuid
func (s *postgresStorage) CreateProject(ctx context.Context, fields domain.ProjectFields) (*domain.Project, error) {
	project := &domain.Project{
		ID:               uuid.New().String(),
		RepositoryID:     fields.RepositoryID,
		Title:            fields.Title,
		ShortDescription: fields.ShortDescription,
		RepositoryURL:    fields.RepositoryURL,
		LongDescription:  fields.LongDescription,
		CreatedBy:        fields.CreatedBy,
		CreatedAt:        time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, repository_id, title, short_description, repository_url, long_description, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, project.ID, project.RepositoryID, project.Title, project.ShortDescription,
		project.RepositoryURL, project.LongDescription, project.CreatedBy, project.CreatedAt)
	if err != nil {
		return nil, mapConstraintError(err, fields)
	}

	return project, nil
}

// DeleteProject removes a project and returns the deleted snapshot
func (s *postgresStorage) DeleteProject(ctx context.Context, id string) (*domain.Project, error) {
	row := s.db.QueryRowContext(ctx, `
		DELETE FROM projects WHERE id = $1
		RETURNING id, repository_id, title, short_description, repository_url, long_description, cover_image, created_by, created_at
	`, id)

	project, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("project")
		}
		return nil, apperrors.NewStoreUnavailableError("failed to delete project", err)
	}
	return project, nil
}

// FindProjects returns projects matching the filter
func (s *postgresStorage) FindProjects(ctx context.Context, filter domain.ProjectFilter) ([]*domain.Project, error) {
	query := selectColumns + ` FROM projects`
	var args []interface{}

	switch {
	case filter.RepositoryID != nil:
		query += ` WHERE repository_id = $1`
		args = append(args, *filter.RepositoryID)
	case len(filter.RepositoryIDs) > 0:
		query += ` WHERE repository_id = ANY($1)`
		args = append(args, pq.Array(filter.RepositoryIDs))
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError("failed to query projects", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, apperrors.NewStoreUnavailableError("failed to scan project", err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreUnavailableError("failed to iterate projects", err)
	}
	return projects, nil
}

// FindProject returns a single project by id
func (s *postgresStorage) FindProject(ctx context.Context, id string) (*domain.Project, error) {
	project, err := scanProject(s.db.QueryRowContext(ctx, selectColumns+` FROM projects WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("project")
		}
		return nil, apperrors.NewStoreUnavailableError("failed to load project", err)
	}
	return project, nil
}

// Close closes the database connection
func (s *postgresStorage) Close() error {
	return s.db.Close()
}

const selectColumns = `SELECT id, repository_id, title, short_description, repository_url, long_description, cover_image, created_by, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var project domain.Project
	var coverImage sql.NullString
	err := row.Scan(&project.ID, &project.RepositoryID, &project.Title,
		&project.ShortDescription, &project.RepositoryURL, &project.LongDescription,
		&coverImage, &project.CreatedBy, &project.CreatedAt)
	if err != nil {
		return nil, err
	}
	if coverImage.Valid {
		project.CoverImage = &coverImage.String
	}
	return &project, nil
}

// mapConstraintError translates a unique violation (23505) into the
// application error taxonomy based on the violated constraint
func mapConstraintError(err error, fields domain.ProjectFields) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		if strings.Contains(pqErr.Constraint, "repository_id") {
			return apperrors.NewAlreadyLinkedError(fields.RepositoryID)
		}
		if strings.Contains(pqErr.Constraint, "title") {
			return apperrors.NewInvalidTitleError(fields.Title)
		}
	}
	return apperrors.NewStoreUnavailableError("failed to create project", err)
}
