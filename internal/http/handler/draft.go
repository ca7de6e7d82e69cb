package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/cadence/internal/drafting"
	"basegraph.app/cadence/internal/http/dto"
)

// Drafter produces a content brief for one plan item.
type Drafter interface {
	Draft(ctx context.Context, planID, itemID int64) (*drafting.Draft, error)
}

type DraftHandler struct {
	drafter Drafter
}

func NewDraftHandler(drafter Drafter) *DraftHandler {
	return &DraftHandler{drafter: drafter}
}

func (h *DraftHandler) Create(c *gin.Context) {
	planID, ok := pathID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "itemId")
	if !ok {
		return
	}

	if h.drafter == nil {
		writeError(c, drafting.ErrDraftingDisabled, "failed to draft item")
		return
	}

	draft, err := h.drafter.Draft(c.Request.Context(), planID, itemID)
	if err != nil {
		writeError(c, err, "failed to draft item")
		return
	}

	c.JSON(http.StatusOK, dto.DraftResponse{
		PlanID:       planID,
		ItemID:       itemID,
		Headline:     draft.Headline,
		Summary:      draft.Summary,
		Outline:      draft.Outline,
		CallToAction: draft.CallToAction,
	})
}
