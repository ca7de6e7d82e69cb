package handler_test

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/cadence/internal/drafting"
	"basegraph.app/cadence/internal/http/handler"
	"basegraph.app/cadence/internal/model"
	"basegraph.app/cadence/internal/planning"
	"basegraph.app/cadence/internal/service"
)

var _ = Describe("ExportHandler", func() {
	var (
		router  *gin.Engine
		exports *mockExportService
	)

	BeforeEach(func() {
		router = gin.New()
		exports = &mockExportService{}
		h := handler.NewExportHandler(exports)
		router.GET("/plans/:id/export.md", h.Markdown)
		router.GET("/plans/:id/export.html", h.HTML)
	})

	It("serves markdown", func() {
		exports.markdownFn = func(_ context.Context, planID int64) (string, error) {
			Expect(planID).To(Equal(int64(7)))
			return "# Plan\n", nil
		}
		w := perform(router, http.MethodGet, "/plans/7/export.md", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(HavePrefix("text/markdown"))
		Expect(w.Body.String()).To(Equal("# Plan\n"))
	})

	It("serves html", func() {
		exports.htmlFn = func(context.Context, int64) (string, error) { return "<h1>Plan</h1>", nil }
		w := perform(router, http.MethodGet, "/plans/7/export.html", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(HavePrefix("text/html"))
	})

	It("returns 404 for unknown plans", func() {
		exports.markdownFn = func(context.Context, int64) (string, error) { return "", service.ErrPlanNotFound }
		w := perform(router, http.MethodGet, "/plans/7/export.md", nil)
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})
})

var _ = Describe("DraftHandler", func() {
	var (
		router  *gin.Engine
		drafter *mockDrafter
	)

	BeforeEach(func() {
		router = gin.New()
		drafter = &mockDrafter{}
		router.POST("/plans/:id/items/:itemId/draft", handler.NewDraftHandler(drafter).Create)
	})

	It("returns the draft", func() {
		drafter.draftFn = func(_ context.Context, planID, itemID int64) (*drafting.Draft, error) {
			Expect(planID).To(Equal(int64(7)))
			Expect(itemID).To(Equal(int64(8)))
			return &drafting.Draft{Headline: "H", Summary: "S", Outline: []string{"a"}, CallToAction: "C"}, nil
		}

		w := perform(router, http.MethodPost, "/plans/7/items/8/draft", nil)

		Expect(w.Code).To(Equal(http.StatusOK))
		resp := decode(w)
		Expect(resp["item_id"]).To(Equal("8"))
		Expect(resp["headline"]).To(Equal("H"))
		Expect(resp["outline"]).To(Equal([]any{"a"}))
	})

	DescribeTable("maps errors",
		func(err error, status int) {
			drafter.draftFn = func(context.Context, int64, int64) (*drafting.Draft, error) { return nil, err }
			w := perform(router, http.MethodPost, "/plans/7/items/8/draft", nil)
			Expect(w.Code).To(Equal(status))
		},
		Entry("disabled", drafting.ErrDraftingDisabled, http.StatusServiceUnavailable),
		Entry("missing item", service.ErrItemNotFound, http.StatusNotFound),
		Entry("llm failure", errors.New("timeout"), http.StatusInternalServerError),
	)

	It("reports drafting as disabled without a drafter", func() {
		r := gin.New()
		r.POST("/plans/:id/items/:itemId/draft", handler.NewDraftHandler(nil).Create)
		w := perform(r, http.MethodPost, "/plans/7/items/8/draft", nil)
		Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
	})
})

var _ = Describe("PlanningHandler", func() {
	var (
		router *gin.Engine
		plans  *mockPlanService
	)

	BeforeEach(func() {
		router = gin.New()
		plans = &mockPlanService{}
		router.POST("/planning/preview", handler.NewPlanningHandler(plans).Preview)
	})

	It("previews a bootstrap plan", func() {
		plans.previewGenerateFn = func(req planning.GenerateRequest) model.PlanGenerationResult {
			Expect(req.Project.PrimaryKeywords).To(Equal([]string{"seo"}))
			Expect(req.StartDate.Format("2006-01-02")).To(Equal("2024-01-01"))
			return model.PlanGenerationResult{Diagnostics: model.Diagnostics{Mode: model.PlanModeBootstrap, TotalItems: 3}}
		}

		w := perform(router, http.MethodPost, "/planning/preview", map[string]any{
			"mode":       "bootstrap",
			"start_date": "2024-01-01",
			"project":    map[string]any{"primary_keywords": []string{"seo"}},
		})

		Expect(w.Code).To(Equal(http.StatusOK))
		diag := decode(w)["diagnostics"].(map[string]any)
		Expect(diag["mode"]).To(Equal("bootstrap"))
		Expect(diag["total_items"]).To(BeEquivalentTo(3))
	})

	It("previews a refresh proposal", func() {
		plans.previewRefreshFn = func(req planning.RefreshRequest) model.PlanRefreshResult {
			Expect(req.SourcePlanID).To(Equal("p1"))
			Expect(req.StartDateISO).To(Equal("not a date"))
			Expect(req.Clusters).To(HaveLen(1))
			return model.PlanRefreshResult{Proposal: model.PlanProposal{Name: "Refreshed plan"}}
		}

		w := perform(router, http.MethodPost, "/planning/preview", map[string]any{
			"mode":           "refresh",
			"source_plan_id": "p1",
			"start_date":     "not a date",
			"clusters":       []map[string]any{{"id": "a", "label": "A", "primary_keyword": "alpha"}},
		})

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(decode(w)["proposal"].(map[string]any)["name"]).To(Equal("Refreshed plan"))
	})

	It("rejects unknown modes", func() {
		w := perform(router, http.MethodPost, "/planning/preview", map[string]any{"mode": "weekly"})
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})
})

var _ = Describe("HealthHandler", func() {
	It("reports ok when every check passes", func() {
		router := gin.New()
		router.GET("/health", handler.NewHealthHandler(map[string]handler.Check{
			"db": func(context.Context) error { return nil },
		}).Health)

		w := perform(router, http.MethodGet, "/health", nil)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(decode(w)).To(Equal(map[string]any{"status": "ok", "checks": map[string]any{"db": "ok"}}))
	})

	It("reports degraded when a check fails", func() {
		router := gin.New()
		router.GET("/health", handler.NewHealthHandler(map[string]handler.Check{
			"db":    func(context.Context) error { return nil },
			"redis": func(context.Context) error { return errors.New("refused") },
		}).Health)

		w := perform(router, http.MethodGet, "/health", nil)

		Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
		resp := decode(w)
		Expect(resp["status"]).To(Equal("degraded"))
		Expect(resp["checks"]).To(HaveKeyWithValue("redis", "down"))
	})
})
