package router_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"

	"basegraph.app/cadence/internal/http/router"
	"basegraph.app/cadence/internal/metrics"
	"basegraph.app/cadence/internal/service"
	"basegraph.app/cadence/internal/store"
)

var _ = Describe("SetupRoutes", func() {
	var engine *gin.Engine

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		reg := prometheus.NewRegistry()
		rec, err := metrics.NewPrometheus(reg, "cadence")
		Expect(err).NotTo(HaveOccurred())

		engine = gin.New()
		router.SetupRoutes(engine, service.NewServices(service.ServicesConfig{
			Stores:  store.NewStores(nil),
			Metrics: rec,
		}), router.RouterConfig{Gatherer: reg})
	})

	serve := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w
	}

	It("serves health", func() {
		Expect(serve(http.MethodGet, "/health", "").Code).To(Equal(http.StatusOK))
	})

	It("exposes planning metrics after a preview", func() {
		w := serve(http.MethodPost, "/api/v1/planning/preview",
			`{"mode":"bootstrap","project":{"primary_keywords":["seo"]},"channels":["blog"]}`)
		Expect(w.Code).To(Equal(http.StatusOK))

		w = serve(http.MethodGet, "/metrics", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`cadence_planning_runs_total{mode="bootstrap"} 1`))
	})

	It("reports drafting as unavailable without a drafter", func() {
		w := serve(http.MethodPost, "/api/v1/plans/1/items/2/draft", "")
		Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
	})

	It("reports the refresh queue as unavailable without a producer", func() {
		w := serve(http.MethodPost, "/api/v1/plans/1/refresh/async", "")
		Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
	})
})
