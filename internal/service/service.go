package service

import (
	"context"
	"log"
	"sync"

	"github.com/kurihiro0119/github-projects/internal/domain"
	"github.com/kurihiro0119/github-projects/internal/render"
	"github.com/kurihiro0119/github-projects/internal/source"
	"github.com/kurihiro0119/github-projects/internal/storage"
)

// maxConcurrent bounds parallel readme fetches and batch store calls
const maxConcurrent = 5

// Service orchestrates the repository-to-project synchronization:
// enriched listing, single create/delete and the partial-failure
// tolerant batch variants.
type Service struct {
	source  source.Source
	store   storage.Storage
	matcher *Matcher
}

// NewService creates a new sync service
func NewService(src source.Source, store storage.Storage) *Service {
	return &Service{
		source:  src,
		store:   store,
		matcher: NewMatcher(store),
	}
}

// ListRepositories fetches the external repository list, enriches each
// entry with its rendered readme and resolves project linkage with a
// single batched store lookup. Source order is preserved. Readme
// enrichment is best-effort per repository; only the listing fetch
// itself can fail the operation.
func (s *Service) ListRepositories(ctx context.Context) ([]*domain.Repository, error) {
	repos, err := s.source.ListRepositories(ctx)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, maxConcurrent)

	for _, repo := range repos {
		wg.Add(1)
		go func(r *domain.Repository) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			readme, err := s.source.FetchReadme(ctx, r.Owner, r.Name, r.DefaultBranch)
			if err != nil {
				log.Printf("readme fetch failed for %s/%s: %v", r.Owner, r.Name, err)
				return
			}
			r.LongDescription = render.Description(readme)
		}(repo)
	}
	wg.Wait()

	if err := s.resolveLinkage(ctx, repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// resolveLinkage derives each repository's ProjectID from one batched
// query over all listed repository ids
func (s *Service) resolveLinkage(ctx context.Context, repos []*domain.Repository) error {
	if len(repos) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(repos))
	for _, repo := range repos {
		ids = append(ids, repo.ID)
	}

	projects, err := s.store.FindProjects(ctx, domain.ProjectFilter{RepositoryIDs: ids})
	if err != nil {
		return err
	}

	byRepo := make(map[int64][]*domain.Project)
	for _, project := range projects {
		byRepo[project.RepositoryID] = append(byRepo[project.RepositoryID], project)
	}

	for _, repo := range repos {
		matches := byRepo[repo.ID]
		switch {
		case len(matches) == 1:
			id := matches[0].ID
			repo.ProjectID = &id
		case len(matches) > 1:
			// Same degrade policy as the single-item matcher
			log.Printf("repository %d is linked to %d projects, expected at most one", repo.ID, len(matches))
		}
	}
	return nil
}

// CreateProject creates one project from the repository snapshot. The
// store's uniqueness constraints decide ALREADY_LINKED and INVALID_TITLE.
func (s *Service) CreateProject(ctx context.Context, repo *domain.Repository, actingUserID string) (*domain.Project, error) {
	return s.store.CreateProject(ctx, domain.FieldsFromRepository(repo, actingUserID))
}

// DeleteProject deletes a project and returns the deleted snapshot
func (s *Service) DeleteProject(ctx context.Context, projectID string) (*domain.Project, error) {
	return s.store.DeleteProject(ctx, projectID)
}

// CreateAllProjects attempts one creation per repository. Creations run
// independently; a failure is logged and absorbed, never aborting the
// rest. The result carries only the projects that were created.
func (s *Service) CreateAllProjects(ctx context.Context, repos []*domain.Repository, actingUserID string) *domain.BatchResult {
	created := make([]*domain.Project, len(repos))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, maxConcurrent)

	for i, repo := range repos {
		wg.Add(1)
		go func(index int, r *domain.Repository) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			project, err := s.CreateProject(ctx, r, actingUserID)
			if err != nil {
				log.Printf("batch create failed for repository %d: %v", r.ID, err)
				return
			}
			created[index] = project
		}(i, repo)
	}
	wg.Wait()

	return collectBatchResult(len(repos), created)
}

// DeleteAllProjects attempts one deletion per project id with the same
// partial-failure policy as CreateAllProjects
func (s *Service) DeleteAllProjects(ctx context.Context, projectIDs []string) *domain.BatchResult {
	deleted := make([]*domain.Project, len(projectIDs))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, maxConcurrent)

	for i, projectID := range projectIDs {
		wg.Add(1)
		go func(index int, id string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			project, err := s.DeleteProject(ctx, id)
			if err != nil {
				log.Printf("batch delete failed for project %s: %v", id, err)
				return
			}
			deleted[index] = project
		}(i, projectID)
	}
	wg.Wait()

	return collectBatchResult(len(projectIDs), deleted)
}

// FindProjects returns persisted projects matching the filter
func (s *Service) FindProjects(ctx context.Context, filter domain.ProjectFilter) ([]*domain.Project, error) {
	return s.store.FindProjects(ctx, filter)
}

// FindProject returns a single persisted project
func (s *Service) FindProject(ctx context.Context, projectID string) (*domain.Project, error) {
	return s.store.FindProject(ctx, projectID)
}

// collectBatchResult compacts the per-slot outcomes into a result that
// keeps input order for the successes
func collectBatchResult(requested int, outcomes []*domain.Project) *domain.BatchResult {
	result := &domain.BatchResult{Requested: requested, Projects: []*domain.Project{}}
	for _, project := range outcomes {
		if project != nil {
			result.Projects = append(result.Projects, project)
			result.Succeeded++
		}
	}
	return result
}
