package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"basegraph.app/cadence/internal/http/handler"
	"basegraph.app/cadence/internal/service"
)

type RouterConfig struct {
	Drafter      handler.Drafter
	Gatherer     prometheus.Gatherer // nil uses the default registry
	HealthChecks map[string]handler.Check
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", handler.NewHealthHandler(cfg.HealthChecks).Health)

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	plans := services.Plans()
	planHandler := handler.NewPlanHandler(plans)

	v1 := router.Group("/api/v1")
	{
		projectHandler := handler.NewProjectHandler(services.Projects(), plans)
		ProjectRouter(v1.Group("/projects"), projectHandler, planHandler)

		exportHandler := handler.NewExportHandler(services.Exports())
		draftHandler := handler.NewDraftHandler(cfg.Drafter)
		PlanRouter(v1.Group("/plans"), planHandler, exportHandler, draftHandler)

		PlanningRouter(v1.Group("/planning"), handler.NewPlanningHandler(plans))
	}
}
