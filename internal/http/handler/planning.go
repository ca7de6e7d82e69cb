package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"basegraph.app/cadence/internal/http/dto"
	"basegraph.app/cadence/internal/model"
	"basegraph.app/cadence/internal/planning"
	"basegraph.app/cadence/internal/service"
)

// PlanningHandler exposes the engine statelessly for previews.
type PlanningHandler struct {
	plans service.PlanService
}

func NewPlanningHandler(plans service.PlanService) *PlanningHandler {
	return &PlanningHandler{plans: plans}
}

func (h *PlanningHandler) Preview(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Mode == model.PlanModeRefresh {
		c.JSON(http.StatusOK, h.plans.PreviewRefresh(planning.RefreshRequest{
			SourcePlanID:  req.SourcePlanID,
			ProposalName:  req.ProposalName,
			HorizonWeeks:  req.HorizonWeeks,
			StartDateISO:  req.StartDate,
			Cadence:       req.Cadence,
			Channels:      req.Channels,
			Clusters:      req.Clusters,
			InternalLinks: req.Project.InternalLinks,
			ExternalLinks: req.Project.ExternalLinks,
		}))
		return
	}

	var start time.Time
	if req.StartDate != "" {
		parsed, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
			return
		}
		start = parsed
	}

	c.JSON(http.StatusOK, h.plans.PreviewGenerate(planning.GenerateRequest{
		Project: planning.ProjectContext{
			Name:              req.Project.Name,
			PrimaryKeywords:   req.Project.PrimaryKeywords,
			SecondaryKeywords: req.Project.SecondaryKeywords,
			InternalLinks:     req.Project.InternalLinks,
			ExternalLinks:     req.Project.ExternalLinks,
		},
		StartDate:    start,
		Cadence:      req.Cadence,
		Channels:     req.Channels,
		HorizonWeeks: req.HorizonWeeks,
	}))
}
