package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/cadence/common/id"
	"basegraph.app/cadence/internal/drafting"
	"basegraph.app/cadence/internal/service"
)

// writeError maps service sentinels to status codes. Anything unrecognized is
// logged and reported as a 500 with fallback as the message.
func writeError(c *gin.Context, err error, fallback string) {
	ctx := c.Request.Context()

	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
	case errors.Is(err, service.ErrPlanNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
	case errors.Is(err, service.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "plan item not found"})
	case errors.Is(err, service.ErrPlanNotProposal):
		c.JSON(http.StatusConflict, gin.H{"error": "plan is not a proposal"})
	case errors.Is(err, service.ErrProjectNotReady):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "project has no primary keywords"})
	case errors.Is(err, service.ErrRefreshQueueDown):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "refresh queue is not configured"})
	case errors.Is(err, drafting.ErrDraftingDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "drafting is not configured"})
	default:
		slog.ErrorContext(ctx, fallback, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// pathID parses a snowflake id route parameter, writing a 400 on failure.
func pathID(c *gin.Context, name string) (int64, bool) {
	v, err := id.Parse(c.Param(name))
	if err != nil || v <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return v, true
}

// bindOptionalJSON binds the body when there is one. An empty body leaves
// dst untouched.
func bindOptionalJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
