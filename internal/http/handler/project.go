package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/cadence/internal/http/dto"
	"basegraph.app/cadence/internal/service"
)

type ProjectHandler struct {
	projects service.ProjectService
	plans    service.PlanService
}

func NewProjectHandler(projects service.ProjectService, plans service.PlanService) *ProjectHandler {
	return &ProjectHandler{projects: projects, plans: plans}
}

func (h *ProjectHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.projects.Create(ctx, service.CreateProjectParams{
		WorkspaceID:       req.WorkspaceID,
		Name:              req.Name,
		Slug:              req.Slug,
		PrimaryKeywords:   req.PrimaryKeywords,
		SecondaryKeywords: req.SecondaryKeywords,
		InternalLinks:     req.InternalLinks,
		ExternalLinks:     req.ExternalLinks,
	})
	if err != nil {
		writeError(c, err, "failed to create project")
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectResponse(project))
}

func (h *ProjectHandler) Get(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	project, err := h.projects.Get(c.Request.Context(), projectID)
	if err != nil {
		writeError(c, err, "failed to load project")
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectResponse(project))
}

func (h *ProjectHandler) ListPlans(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	plans, err := h.plans.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		writeError(c, err, "failed to list plans")
		return
	}

	c.JSON(http.StatusOK, dto.ToPlanListResponse(plans))
}
