package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/cadence/internal/http/handler"
)

func PlanRouter(rg *gin.RouterGroup, h *handler.PlanHandler, exports *handler.ExportHandler, drafts *handler.DraftHandler) {
	rg.GET("/:id", h.Get)
	rg.POST("/:id/refresh", h.Refresh)
	rg.POST("/:id/refresh/async", h.RefreshAsync)
	rg.POST("/:id/accept", h.Accept)

	rg.GET("/:id/export.md", exports.Markdown)
	rg.GET("/:id/export.html", exports.HTML)

	rg.POST("/:id/items/:itemId/draft", drafts.Create)
}

func PlanningRouter(rg *gin.RouterGroup, h *handler.PlanningHandler) {
	rg.POST("/preview", h.Preview)
}
