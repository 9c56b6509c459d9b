package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kurihiro0119/github-projects/internal/domain"
	apperrors "github.com/kurihiro0119/github-projects/internal/errors"
	"github.com/kurihiro0119/github-projects/internal/service"
)

// Handler handles API requests
type Handler struct {
	service *service.Service
}

// NewHandler creates a new API handler
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		service: svc,
	}
}

// ListRepositories returns the enriched external repository list
// GET /api/v1/repos
func (h *Handler) ListRepositories(c *gin.Context) {
	repos, err := h.service.ListRepositories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": repos,
	})
}

// CreateProject creates one project from a repository snapshot
// POST /api/v1/projects
func (h *Handler) CreateProject(c *gin.Context) {
	var repo domain.Repository
	if err := c.ShouldBindJSON(&repo); err != nil {
		respondError(c, apperrors.NewBadRequestError("invalid repository payload: "+err.Error()))
		return
	}

	project, err := h.service.CreateProject(c.Request.Context(), &repo, actingUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data": project,
	})
}

// DeleteProject deletes a project and returns the deleted snapshot
// DELETE /api/v1/projects/:id
func (h *Handler) DeleteProject(c *gin.Context) {
	project, err := h.service.DeleteProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": project,
	})
}

// CreateAllProjects creates projects for a batch of repositories.
// Partial success is allowed; meta reports how much of the batch held.
// POST /api/v1/projects/batch
func (h *Handler) CreateAllProjects(c *gin.Context) {
	var req struct {
		Repos []*domain.Repository `json:"repos" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewBadRequestError("invalid batch payload: "+err.Error()))
		return
	}

	result := h.service.CreateAllProjects(c.Request.Context(), req.Repos, actingUserID(c))
	respondBatch(c, result)
}

// DeleteAllProjects deletes a batch of projects by id, same
// partial-failure policy as CreateAllProjects
// DELETE /api/v1/projects/batch?ids=...
func (h *Handler) DeleteAllProjects(c *gin.Context) {
	ids := c.QueryArray("ids")
	if len(ids) == 0 {
		respondError(c, apperrors.NewBadRequestError("ids query parameter is required"))
		return
	}

	result := h.service.DeleteAllProjects(c.Request.Context(), ids)
	respondBatch(c, result)
}

// FindProjects lists persisted projects, optionally filtered by
// repository id
// GET /api/v1/projects
func (h *Handler) FindProjects(c *gin.Context) {
	var filter domain.ProjectFilter
	var query struct {
		RepositoryID *int64 `form:"repositoryId"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, apperrors.NewBadRequestError("invalid repositoryId"))
		return
	}
	filter.RepositoryID = query.RepositoryID

	projects, err := h.service.FindProjects(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": projects,
	})
}

// FindProject returns a single persisted project
// GET /api/v1/projects/:id
func (h *Handler) FindProject(c *gin.Context) {
	project, err := h.service.FindProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": project,
	})
}

// HealthCheck returns the health status of the API
// GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// respondBatch sends a batch result; callers must be able to tell a
// fully satisfied batch from a partial one
func respondBatch(c *gin.Context, result *domain.BatchResult) {
	c.JSON(http.StatusOK, gin.H{
		"data": result.Projects,
		"meta": gin.H{
			"requested": result.Requested,
			"succeeded": result.Succeeded,
			"partial":   result.Partial(),
		},
	})
}

// respondError sends an error response
func respondError(c *gin.Context, err error) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		status := http.StatusInternalServerError
		switch appErr.Code {
		case apperrors.ErrCodeNotFound:
			status = http.StatusNotFound
		case apperrors.ErrCodeAlreadyLinked, apperrors.ErrCodeInvalidTitle:
			status = http.StatusConflict
		case apperrors.ErrCodeBadRequest:
			status = http.StatusBadRequest
		case apperrors.ErrCodeUpstreamUnavailable:
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{
			"code":    "INTERNAL_ERROR",
			"message": err.Error(),
		},
	})
}
