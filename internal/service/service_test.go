package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/github-projects/internal/domain"
	apperrors "github.com/kurihiro0119/github-projects/internal/errors"
)

// fakeSource serves a fixed repository list and per-repo readmes
type fakeSource struct {
	repos      []*domain.Repository
	readmes    map[int64]string
	readmeErrs map[int64]error
	listErr    error
}

func (f *fakeSource) ListRepositories(ctx context.Context) ([]*domain.Repository, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	// Fresh copies per call, like a real fetch
	repos := make([]*domain.Repository, len(f.repos))
	for i, r := range f.repos {
		clone := *r
		repos[i] = &clone
	}
	return repos, nil
}

func (f *fakeSource) FetchReadme(ctx context.Context, owner, name, branch string) (string, error) {
	for _, r := range f.repos {
		if r.Owner == owner && r.Name == name {
			if err, ok := f.readmeErrs[r.ID]; ok {
				return "", err
			}
			return f.readmes[r.ID], nil
		}
	}
	return "", nil
}

// fakeStore is an in-memory Storage that enforces the same uniqueness
// constraints as the SQL adapters
type fakeStore struct {
	mu       sync.Mutex
	seq      int
	projects map[string]*domain.Project
}

func newFakeStore() *fakeStore {
	return &fakeStore{projects: make(map[string]*domain.Project)}
}

// insert bypasses the uniqueness checks, used to seed invariant
// violations the matcher must degrade on
func (f *fakeStore) insert(p *domain.Project) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projects[p.ID] = p
}

func (f *fakeStore) CreateProject(ctx context.Context, fields domain.ProjectFields) (*domain.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, p := range f.projects {
		if p.RepositoryID == fields.RepositoryID {
			return nil, apperrors.NewAlreadyLinkedError(fields.RepositoryID)
		}
		if p.Title == fields.Title {
			return nil, apperrors.NewInvalidTitleError(fields.Title)
		}
	}

	f.seq++
	project := &domain.Project{
		ID:               fmt.Sprintf("p%d", f.seq),
		RepositoryID:     fields.RepositoryID,
		Title:            fields.Title,
		ShortDescription: fields.ShortDescription,
		RepositoryURL:    fields.RepositoryURL,
		LongDescription:  fields.LongDescription,
		CreatedBy:        fields.CreatedBy,
	}
	f.projects[project.ID] = project
	return project, nil
}

func (f *fakeStore) DeleteProject(ctx context.Context, id string) (*domain.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	project, ok := f.projects[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("project")
	}
	delete(f.projects, id)
	return project, nil
}

func (f *fakeStore) FindProjects(ctx context.Context, filter domain.ProjectFilter) ([]*domain.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*domain.Project
	for _, p := range f.projects {
		switch {
		case filter.RepositoryID != nil:
			if p.RepositoryID == *filter.RepositoryID {
				out = append(out, p)
			}
		case len(filter.RepositoryIDs) > 0:
			for _, id := range filter.RepositoryIDs {
				if p.RepositoryID == id {
					out = append(out, p)
					break
				}
			}
		default:
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) FindProject(ctx context.Context, id string) (*domain.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	project, ok := f.projects[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("project")
	}
	return project, nil
}

func (f *fakeStore) Migrate(ctx context.Context) error { return nil }
func (f *fakeStore) Close() error                      { return nil }

func testRepos() []*domain.Repository {
	return []*domain.Repository{
		{ID: 1, Name: "alpha", Owner: "octo", DefaultBranch: "main", URL: "https://github.com/octo/alpha"},
		{ID: 2, Name: "beta", Owner: "octo", DefaultBranch: "main", URL: "https://github.com/octo/beta"},
		{ID: 3, Name: "gamma", Owner: "octo", DefaultBranch: "main", URL: "https://github.com/octo/gamma"},
	}
}

func TestListRepositories_EnrichesAndPreservesOrder(t *testing.T) {
	src := &fakeSource{
		repos:   testRepos(),
		readmes: map[int64]string{1: "# Alpha\n\nHello", 2: ""},
	}
	service := NewService(src, newFakeStore())

	repos, err := service.ListRepositories(context.Background())
	require.NoError(t, err)
	require.Len(t, repos, 3)

	assert.Equal(t, []int64{1, 2, 3}, []int64{repos[0].ID, repos[1].ID, repos[2].ID})
	assert.Contains(t, repos[0].LongDescription, "Alpha")
	assert.NotContains(t, repos[0].LongDescription, "\n")
	assert.Equal(t, "", repos[1].LongDescription, "missing readme resolves to empty")
	assert.Nil(t, repos[0].ProjectID)
}

func TestListRepositories_UpstreamFailure(t *testing.T) {
	src := &fakeSource{listErr: apperrors.NewUpstreamUnavailableError("github down", nil)}
	service := NewService(src, newFakeStore())

	_, err := service.ListRepositories(context.Background())
	assert.True(t, apperrors.IsUpstreamUnavailable(err))
}

func TestListRepositories_ReadmeErrorDegradesToEmpty(t *testing.T) {
	src := &fakeSource{
		repos:      testRepos(),
		readmes:    map[int64]string{1: "# Alpha"},
		readmeErrs: map[int64]error{2: fmt.Errorf("raw fetch timed out")},
	}
	service := NewService(src, newFakeStore())

	repos, err := service.ListRepositories(context.Background())
	require.NoError(t, err, "readme enrichment is best-effort per repository")
	assert.Equal(t, "", repos[1].LongDescription)
	assert.NotEmpty(t, repos[0].LongDescription)
}

func TestCreateProject_RoundTrip(t *testing.T) {
	src := &fakeSource{repos: testRepos()}
	store := newFakeStore()
	service := NewService(src, store)
	ctx := context.Background()

	project, err := service.CreateProject(ctx, src.repos[0], "user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, project.ID)
	assert.Equal(t, int64(1), project.RepositoryID)
	assert.Equal(t, "alpha", project.Title)
	assert.Equal(t, "user-1", project.CreatedBy)

	matched, err := service.matcher.FindProjectID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, project.ID, matched)

	_, err = service.DeleteProject(ctx, project.ID)
	require.NoError(t, err)

	matched, err = service.matcher.FindProjectID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "", matched)
}

func TestCreateProject_AlreadyLinked(t *testing.T) {
	src := &fakeSource{repos: testRepos()}
	store := newFakeStore()
	service := NewService(src, store)
	ctx := context.Background()

	first, err := service.CreateProject(ctx, src.repos[0], "user-1")
	require.NoError(t, err)

	_, err = service.CreateProject(ctx, src.repos[0], "user-1")
	assert.True(t, apperrors.IsAlreadyLinked(err))

	// The existing project is untouched
	got, err := service.FindProject(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
}

func TestCreateProject_TitleCollision(t *testing.T) {
	store := newFakeStore()
	service := NewService(&fakeSource{}, store)
	ctx := context.Background()

	_, err := service.CreateProject(ctx, &domain.Repository{ID: 10, Name: "dup"}, "u")
	require.NoError(t, err)

	_, err = service.CreateProject(ctx, &domain.Repository{ID: 11, Name: "dup"}, "u")
	assert.True(t, apperrors.IsInvalidTitle(err))
}

func TestDeleteProject_NotFound(t *testing.T) {
	service := NewService(&fakeSource{}, newFakeStore())

	_, err := service.DeleteProject(context.Background(), "missing")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestMatcher_MultipleMatchesDegradeToNoMatch(t *testing.T) {
	store := newFakeStore()
	store.insert(&domain.Project{ID: "a", RepositoryID: 7, Title: "one"})
	store.insert(&domain.Project{ID: "b", RepositoryID: 7, Title: "two"})

	matched, err := NewMatcher(store).FindProjectID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "", matched)
}

func TestCreateAllProjects_PartialFailure(t *testing.T) {
	src := &fakeSource{repos: testRepos()}
	store := newFakeStore()
	service := NewService(src, store)
	ctx := context.Background()

	// B (id 2) already has a linked project
	existing, err := service.CreateProject(ctx, src.repos[1], "user-1")
	require.NoError(t, err)

	result := service.CreateAllProjects(ctx, src.repos, "user-1")
	assert.Equal(t, 3, result.Requested)
	assert.Equal(t, 2, result.Succeeded)
	assert.True(t, result.Partial())

	createdFor := map[int64]bool{}
	for _, p := range result.Projects {
		createdFor[p.RepositoryID] = true
	}
	assert.True(t, createdFor[1])
	assert.True(t, createdFor[3])
	assert.False(t, createdFor[2])

	// A and C are linked afterward, B's existing link is unchanged
	repos, err := service.ListRepositories(ctx)
	require.NoError(t, err)
	require.NotNil(t, repos[0].ProjectID)
	require.NotNil(t, repos[2].ProjectID)
	require.NotNil(t, repos[1].ProjectID)
	assert.Equal(t, existing.ID, *repos[1].ProjectID)
}

func TestCreateAllProjects_AllSucceed(t *testing.T) {
	src := &fakeSource{repos: testRepos()}
	service := NewService(src, newFakeStore())

	result := service.CreateAllProjects(context.Background(), src.repos, "user-1")
	assert.Equal(t, 3, result.Succeeded)
	assert.False(t, result.Partial())
}

func TestDeleteAllProjects_Reconciliation(t *testing.T) {
	src := &fakeSource{repos: testRepos()}
	store := newFakeStore()
	service := NewService(src, store)
	ctx := context.Background()

	p1, err := service.CreateProject(ctx, src.repos[0], "user-1")
	require.NoError(t, err)

	result := service.DeleteAllProjects(ctx, []string{p1.ID, "does-not-exist"})
	assert.Equal(t, 2, result.Requested)
	assert.Equal(t, 1, result.Succeeded)
	assert.True(t, result.Partial())
	require.Len(t, result.Projects, 1)
	assert.Equal(t, int64(1), result.Projects[0].RepositoryID)

	// p1's repository shows as unlinked in a subsequent listing
	repos, err := service.ListRepositories(ctx)
	require.NoError(t, err)
	assert.Nil(t, repos[0].ProjectID)
}

func TestListRepositories_Idempotent(t *testing.T) {
	src := &fakeSource{repos: testRepos(), readmes: map[int64]string{1: "# Alpha"}}
	store := newFakeStore()
	service := NewService(src, store)
	ctx := context.Background()

	_, err := service.CreateProject(ctx, src.repos[2], "user-1")
	require.NoError(t, err)

	first, err := service.ListRepositories(ctx)
	require.NoError(t, err)
	second, err := service.ListRepositories(ctx)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].LongDescription, second[i].LongDescription)
		if first[i].ProjectID == nil {
			assert.Nil(t, second[i].ProjectID)
		} else {
			require.NotNil(t, second[i].ProjectID)
			assert.Equal(t, *first[i].ProjectID, *second[i].ProjectID)
		}
	}
}
