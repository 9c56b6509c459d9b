package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSource(rawBaseURL string) *githubSource {
	return &githubSource{
		httpClient:  &http.Client{Timeout: 5 * time.Second},
		rawBaseURL:  rawBaseURL,
		rateLimiter: NewRateLimiter(),
	}
}

func TestFetchReadme_Found(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/octocat/hello/main/README.md", r.URL.Path)
		_, _ = w.Write([]byte("# Hello"))
	}))
	defer server.Close()

	s := newTestSource(server.URL)
	readme, err := s.FetchReadme(context.Background(), "octocat", "hello", "main")
	require.NoError(t, err)
	assert.Equal(t, "# Hello", readme)
}

func TestFetchReadme_NotFoundIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	s := newTestSource(server.URL)
	readme, err := s.FetchReadme(context.Background(), "octocat", "no-readme", "main")
	require.NoError(t, err, "a missing readme is not an error")
	assert.Equal(t, "", readme)
}

func TestFetchReadme_ServerErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	s := newTestSource(server.URL)
	_, err := s.FetchReadme(context.Background(), "octocat", "hello", "main")
	assert.Error(t, err)
}

func TestFetchReadme_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newTestSource(server.URL)
	_, err := s.FetchReadme(ctx, "octocat", "hello", "main")
	assert.Error(t, err)
}
