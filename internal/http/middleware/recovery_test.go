package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"basegraph.app/cadence/internal/http/middleware"
)

var _ = Describe("Recovery", func() {
	var (
		spans  *tracetest.SpanRecorder
		router *gin.Engine
	)

	BeforeEach(func() {
		spans = tracetest.NewSpanRecorder()
		tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans)).Tracer("test")

		router = gin.New()
		router.Use(func(c *gin.Context) {
			ctx, span := tracer.Start(c.Request.Context(), "request")
			defer span.End()
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
		router.Use(middleware.Recovery(), middleware.Logger())
		router.GET("/boom", func(*gin.Context) { panic("plan store exploded") })
		router.GET("/ok", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	})

	It("answers a panic with a 500 error body", func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		var body map[string]string
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body).To(Equal(map[string]string{"error": "internal server error"}))
	})

	It("marks the request span as failed", func() {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

		ended := spans.Ended()
		Expect(ended).To(HaveLen(1))
		Expect(ended[0].Status().Code).To(Equal(codes.Error))
		Expect(ended[0].Events()).NotTo(BeEmpty())
		Expect(ended[0].Events()[0].Name).To(Equal("exception"))
	})

	It("leaves healthy requests alone", func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(spans.Ended()[0].Status().Code).To(Equal(codes.Unset))
	})
})
