package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const unmatchedRoute = "unmatched"

// GinMiddleware counts requests and records latency labelled by route template, so /topics/:id is
// one series no matter how many ids are requested. A nil m yields a pass-through.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		m.apiInflight.Inc()
		start := time.Now()
		c.Next()
		m.apiInflight.Dec()

		status := c.Writer.Status()
		labels := []string{methodLabel(c.Request.Method), RouteLabel(c.FullPath()), strconv.Itoa(status)}
		m.apiRequests.WithLabelValues(labels...).Inc()
		m.apiLatency.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
	}
}

// RouteLabel returns the matched route template. Requests that matched no route share a single
// label.
func RouteLabel(fullPath string) string {
	if fullPath == "" {
		return unmatchedRoute
	}
	return fullPath
}

// Unknown verbs are folded together to keep label cardinality bounded.
func methodLabel(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions:
		return method
	default:
		return "OTHER"
	}
}
