package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/go-github/v55/github"
	"golang.org/x/oauth2"

	"github.com/kurihiro0119/github-projects/internal/domain"
	apperrors "github.com/kurihiro0119/github-projects/internal/errors"
)

const rawContentBaseURL = "https://raw.githubusercontent.com"

// githubSource implements Source using the GitHub API
type githubSource struct {
	client      *github.Client
	httpClient  *http.Client
	rawBaseURL  string
	rateLimiter RateLimiter
}

// NewGitHubSource creates a new GitHub source. An empty token is
// accepted; the first API call will fail as upstream unavailable.
func NewGitHubSource(token string) Source {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	client := github.NewClient(tc)

	return &githubSource{
		client:      client,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		rawBaseURL:  rawContentBaseURL,
		rateLimiter: NewRateLimiter(),
	}
}

// ListRepositories retrieves all repositories visible to the
// authenticated user, preserving the order GitHub returns them in
func (s *githubSource) ListRepositories(ctx context.Context) ([]*domain.Repository, error) {
	if err := s.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	var allRepos []*domain.Repository
	opts := &github.RepositoryListOptions{
		Visibility:  "public",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		repos, resp, err := s.client.Repositories.List(ctx, "", opts)
		if err != nil {
			return nil, apperrors.NewUpstreamUnavailableError("failed to list repositories", err)
		}

		s.updateRateLimitFromResponse(resp)

		for _, repo := range repos {
			allRepos = append(allRepos, &domain.Repository{
				ID:               repo.GetID(),
				Name:             repo.GetName(),
				ShortDescription: repo.GetDescription(),
				URL:              repo.GetHTMLURL(),
				Owner:            repo.GetOwner().GetLogin(),
				DefaultBranch:    repo.GetDefaultBranch(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage

		if err := s.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	return allRepos, nil
}

// FetchReadme retrieves the readme from the well-known raw content path
// for the repository's default branch. GitHub serves raw files outside
// the REST API, so this goes through a plain HTTP client.
func (s *githubSource) FetchReadme(ctx context.Context, owner, name, defaultBranch string) (string, error) {
	if err := s.rateLimiter.Wait(ctx); err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/%s/%s/%s/README.md", s.rawBaseURL, owner, name, defaultBranch)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch readme for %s/%s: %w", owner, name, err)
	}
	defer resp.Body.Close()

	// No readme means no long description, not a failure
	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s fetching readme for %s/%s", resp.Status, owner, name)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// updateRateLimitFromResponse updates the rate limiter from API response
func (s *githubSource) updateRateLimitFromResponse(resp *github.Response) {
	if resp != nil && resp.Rate.Remaining >= 0 {
		s.rateLimiter.UpdateLimit(resp.Rate.Remaining, resp.Rate.Reset.Time)
	}
}
