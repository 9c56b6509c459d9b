package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/kurihiro0119/github-projects/internal/domain"
	apperrors "github.com/kurihiro0119/github-projects/internal/errors"
	"github.com/kurihiro0119/github-projects/internal/storage"
)

// sqliteStorage implements the Storage interface for SQLite
type sqliteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (storage.Storage, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	s := &sqliteStorage{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		return nil, err
	}

	return s, nil
}

// Migrate runs database migrations
func (s *sqliteStorage) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		repository_id INTEGER NOT NULL UNIQUE,
		title TEXT NOT NULL UNIQUE,
		short_description TEXT NOT NULL DEFAULT '',
		repository_url TEXT NOT NULL DEFAULT '',
		long_description TEXT NOT NULL DEFAULT '',
		cover_image TEXT,
		created_by TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_projects_repository_id ON projects(repository_id);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// CreateProject persists a new project with a store-assigned uuid
func (s *sqliteStorage) CreateProject(ctx context.Context, fields domain.ProjectFields) (*domain.Project, error) {
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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, project.ID, project.RepositoryID, project.Title, project.ShortDescription,
		project.RepositoryURL, project.LongDescription, project.CreatedBy, project.CreatedAt)
	if err != nil {
		return nil, mapConstraintError(err, fields)
	}

	return project, nil
}

// DeleteProject removes a project and returns the deleted snapshot
func (s *sqliteStorage) DeleteProject(ctx context.Context, id string) (*domain.Project, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	project, err := scanProject(tx.QueryRowContext(ctx, selectColumns+` FROM projects WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("project")
		}
		return nil, apperrors.NewStoreUnavailableError("failed to load project", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id); err != nil {
		return nil, apperrors.NewStoreUnavailableError("failed to delete project", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewStoreUnavailableError("failed to commit delete", err)
	}
	return project, nil
}

// FindProjects returns projects matching the filter
func (s *sqliteStorage) FindProjects(ctx context.Context, filter domain.ProjectFilter) ([]*domain.Project, error) {
	query := selectColumns + ` FROM projects`
	var args []interface{}

	switch {
	case filter.RepositoryID != nil:
		query += ` WHERE repository_id = ?`
		args = append(args, *filter.RepositoryID)
	case len(filter.RepositoryIDs) > 0:
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(filter.RepositoryIDs)), ",")
		query += ` WHERE repository_id IN (` + placeholders + `)`
		for _, id := range filter.RepositoryIDs {
			args = append(args, id)
		}
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
func (s *sqliteStorage) FindProject(ctx context.Context, id string) (*domain.Project, error) {
	project, err := scanProject(s.db.QueryRowContext(ctx, selectColumns+` FROM projects WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("project")
		}
		return nil, apperrors.NewStoreUnavailableError("failed to load project", err)
	}
	return project, nil
}

// Close closes the database connection
func (s *sqliteStorage) Close() error {
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

// mapConstraintError translates a unique constraint violation into the
// application error taxonomy based on the violated column
func mapConstraintError(err error, fields domain.ProjectFields) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		if strings.Contains(sqliteErr.Error(), "repository_id") {
			return apperrors.NewAlreadyLinkedError(fields.RepositoryID)
		}
		if strings.Contains(sqliteErr.Error(), "title") {
			return apperrors.NewInvalidTitleError(fields.Title)
		}
	}
	return apperrors.NewStoreUnavailableError("failed to create project", err)
}
