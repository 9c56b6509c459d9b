package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kurihiro0119/github-projects/internal/domain"
)

// Client is the API client for github-projects
type Client struct {
	baseURL    string
	userID     string
	httpClient *http.Client
}

// BatchMeta mirrors the meta block of a batch response
type BatchMeta struct {
	Requested int  `json:"requested"`
	Succeeded int  `json:"succeeded"`
	Partial   bool `json:"partial"`
}

// NewClient creates a new API client acting as the given user
func NewClient(baseURL, userID string) *Client {
	return &Client{
		baseURL: baseURL,
		userID:  userID,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// ListRepositories retrieves the enriched repository list
func (c *Client) ListRepositories() ([]*domain.Repository, error) {
	var response struct {
		Data []*domain.Repository `json:"data"`
	}
	if err := c.do(http.MethodGet, "/api/v1/repos", nil, nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// ListProjects retrieves all persisted projects
func (c *Client) ListProjects() ([]*domain.Project, error) {
	var response struct {
		Data []*domain.Project `json:"data"`
	}
	if err := c.do(http.MethodGet, "/api/v1/projects", nil, nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetProject retrieves a single project
func (c *Client) GetProject(id string) (*domain.Project, error) {
	var response struct {
		Data *domain.Project `json:"data"`
	}
	if err := c.do(http.MethodGet, "/api/v1/projects/"+id, nil, nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// CreateProject creates a project from a repository snapshot
func (c *Client) CreateProject(repo *domain.Repository) (*domain.Project, error) {
	var response struct {
		Data *domain.Project `json:"data"`
	}
	if err := c.do(http.MethodPost, "/api/v1/projects", nil, repo, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// DeleteProject deletes a project and returns the deleted snapshot
func (c *Client) DeleteProject(id string) (*domain.Project, error) {
	var response struct {
		Data *domain.Project `json:"data"`
	}
	if err := c.do(http.MethodDelete, "/api/v1/projects/"+id, nil, nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// CreateAllProjects bulk-creates projects; the meta reports partial
// completion
func (c *Client) CreateAllProjects(repos []*domain.Repository) ([]*domain.Project, *BatchMeta, error) {
	body := map[string]interface{}{"repos": repos}
	var response struct {
		Data []*domain.Project `json:"data"`
		Meta *BatchMeta        `json:"meta"`
	}
	if err := c.do(http.MethodPost, "/api/v1/projects/batch", nil, body, &response); err != nil {
		return nil, nil, err
	}
	return response.Data, response.Meta, nil
}

// DeleteAllProjects bulk-deletes projects by id
func (c *Client) DeleteAllProjects(ids []string) ([]*domain.Project, *BatchMeta, error) {
	params := url.Values{}
	for _, id := range ids {
		params.Add("ids", id)
	}
	var response struct {
		Data []*domain.Project `json:"data"`
		Meta *BatchMeta        `json:"meta"`
	}
	if err := c.do(http.MethodDelete, "/api/v1/projects/batch", params, nil, &response); err != nil {
		return nil, nil, err
	}
	return response.Data, response.Meta, nil
}

// HealthCheck checks if the API is healthy
func (c *Client) HealthCheck() error {
	var response struct {
		Status string `json:"status"`
	}
	if err := c.do(http.MethodGet, "/health", nil, nil, &response); err != nil {
		return err
	}
	if response.Status != "ok" {
		return fmt.Errorf("unhealthy status: %s", response.Status)
	}
	return nil
}

func (c *Client) do(method, path string, params url.Values, body, result interface{}) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return err
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, u.String(), reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userID != "" {
		req.Header.Set("X-User-ID", c.userID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error: %s - %s", resp.Status, string(respBody))
	}

	return json.NewDecoder(resp.Body).Decode(result)
}
