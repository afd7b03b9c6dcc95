package middleware_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mtngoatgit/mobile-voice-dev-assistant/common/logger"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/http/middleware"
)

var _ = Describe("Middleware", func() {
	var engine *gin.Engine

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		engine = gin.New()
		engine.Use(middleware.Recovery(), middleware.Logger())
	})

	It("turns a panic into a 500", func() {
		engine.GET("/boom", func(c *gin.Context) { panic("kaboom") })

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(w.Body.String()).To(ContainSubstring("internal server error"))
	})

	It("keeps a caller supplied request id", func() {
		var seen *string
		engine.GET("/ok", func(c *gin.Context) {
			seen = logger.GetLogFields(c.Request.Context()).RequestID
			c.Status(http.StatusNoContent)
		})

		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		req.Header.Set(middleware.RequestIDHeader, "req-123")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusNoContent))
		Expect(w.Header().Get(middleware.RequestIDHeader)).To(Equal("req-123"))
		Expect(seen).NotTo(BeNil())
		Expect(*seen).To(Equal("req-123"))
	})

	It("generates a request id when none is sent", func() {
		engine.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

		Expect(w.Header().Get(middleware.RequestIDHeader)).NotTo(BeEmpty())
	})
})
