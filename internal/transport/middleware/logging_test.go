package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/incidentops/incident-management/internal/transport/middleware"
)

func TestMiddleware(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Middleware Suite")
}

var _ = Describe("LoggingMiddleware", func() {
	var (
		buf     *bytes.Buffer
		handler http.Handler
	)

	BeforeEach(func() {
		buf = &bytes.Buffer{}
		logger := slog.New(slog.NewTextHandler(buf, nil))

		final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		handler = middleware.RequestID(middleware.LoggingMiddleware(logger)(final))
	})

	It("should log the trace id issued for the request", func() {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/incidents", nil))

		traceID := rec.Header().Get("X-Trace-ID")
		Expect(traceID).NotTo(BeEmpty())
		Expect(buf.String()).To(ContainSubstring("trace_id=" + traceID))
	})

	It("should keep a caller-supplied trace id", func() {
		req := httptest.NewRequest(http.MethodGet, "/incidents", nil)
		req.Header.Set("X-Trace-ID", "trace-from-upstream")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		Expect(buf.String()).To(ContainSubstring("trace_id=trace-from-upstream"))
	})

	It("should filter credentialed query strings", func() {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?password=hunter2", nil))

		Expect(buf.String()).NotTo(ContainSubstring("hunter2"))
		Expect(buf.String()).To(ContainSubstring("[FILTERED]"))
	})
})
