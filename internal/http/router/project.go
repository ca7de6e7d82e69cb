package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/cadence/internal/http/handler"
)

func ProjectRouter(rg *gin.RouterGroup, h *handler.ProjectHandler, plans *handler.PlanHandler) {
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.GET("/:id/plans", h.ListPlans)
	rg.POST("/:id/plans", plans.Generate)
}
