package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"basegraph.app/cadence/internal/http/dto"
	"basegraph.app/cadence/internal/model"
	"basegraph.app/cadence/internal/service"
)

type PlanHandler struct {
	plans service.PlanService
}

func NewPlanHandler(plans service.PlanService) *PlanHandler {
	return &PlanHandler{plans: plans}
}

// Generate creates an active bootstrap plan for the project in the path.
func (h *PlanHandler) Generate(c *gin.Context) {
	ctx := c.Request.Context()
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.GeneratePlanRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
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

	params := service.GeneratePlanParams{
		ProjectID:    projectID,
		Name:         req.Name,
		StartDate:    start,
		Channels:     req.Channels,
		HorizonWeeks: req.HorizonWeeks,
	}
	if req.Cadence != nil {
		params.Cadence = *req.Cadence
	}

	detail, err := h.plans.Generate(ctx, params)
	if err != nil {
		writeError(c, err, "failed to generate plan")
		return
	}

	c.JSON(http.StatusCreated, dto.ToPlanDetailResponse(detail))
}

func (h *PlanHandler) Get(c *gin.Context) {
	planID, ok := pathID(c, "id")
	if !ok {
		return
	}

	detail, err := h.plans.Get(c.Request.Context(), planID)
	if err != nil {
		writeError(c, err, "failed to load plan")
		return
	}

	c.JSON(http.StatusOK, dto.ToPlanDetailResponse(detail))
}

// Refresh builds and stores a proposal synchronously.
func (h *PlanHandler) Refresh(c *gin.Context) {
	ctx := c.Request.Context()
	params, ok := h.refreshParams(c)
	if !ok {
		return
	}

	detail, err := h.plans.Refresh(ctx, params)
	if err != nil {
		writeError(c, err, "failed to refresh plan")
		return
	}

	c.JSON(http.StatusCreated, dto.ToPlanDetailResponse(detail))
}

// RefreshAsync hands the refresh to the worker and returns immediately.
func (h *PlanHandler) RefreshAsync(c *gin.Context) {
	ctx := c.Request.Context()
	params, ok := h.refreshParams(c)
	if !ok {
		return
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		params.TraceID = sc.TraceID().String()
	}

	messageID, err := h.plans.EnqueueRefresh(ctx, params)
	if err != nil {
		writeError(c, err, "failed to enqueue refresh")
		return
	}

	slog.InfoContext(ctx, "plan refresh enqueued",
		"plan_id", params.SourcePlanID,
		"message_id", messageID)
	c.JSON(http.StatusAccepted, dto.EnqueueRefreshResponse{
		MessageID:    messageID,
		SourcePlanID: params.SourcePlanID,
	})
}

func (h *PlanHandler) Accept(c *gin.Context) {
	planID, ok := pathID(c, "id")
	if !ok {
		return
	}

	plan, err := h.plans.Accept(c.Request.Context(), planID)
	if err != nil {
		writeError(c, err, "failed to accept proposal")
		return
	}

	c.JSON(http.StatusOK, dto.ToPlanResponse(plan))
}

func (h *PlanHandler) refreshParams(c *gin.Context) (service.RefreshPlanParams, bool) {
	planID, ok := pathID(c, "id")
	if !ok {
		return service.RefreshPlanParams{}, false
	}

	var req dto.RefreshPlanRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		slog.WarnContext(c.Request.Context(), "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return service.RefreshPlanParams{}, false
	}

	return service.RefreshPlanParams{
		SourcePlanID: planID,
		ProposalName: req.ProposalName,
		HorizonWeeks: req.HorizonWeeks,
		StartDate:    req.StartDate,
		Cadence:      req.Cadence,
		Channels:     req.Channels,
		Clusters:     clustersOrNil(req.Clusters),
	}, true
}

func clustersOrNil(clusters []model.KeywordCluster) []model.KeywordCluster {
	if len(clusters) == 0 {
		return nil
	}
	return clusters
}
