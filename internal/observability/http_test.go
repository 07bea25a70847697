package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// sample returns the value of the named series with exactly the given labels, and the number of
// series in the family.
func sample(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) (float64, int) {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		var val float64
		for _, metric := range mf.GetMetric() {
			if matches(metric, labels) {
				switch {
				case metric.GetCounter() != nil:
					val = metric.GetCounter().GetValue()
				case metric.GetGauge() != nil:
					val = metric.GetGauge().GetValue()
				}
			}
		}
		return val, len(mf.GetMetric())
	}
	return 0, 0
}

func matches(metric *dto.Metric, labels map[string]string) bool {
	if len(metric.GetLabel()) != len(labels) {
		return false
	}
	for _, lp := range metric.GetLabel() {
		if labels[lp.GetName()] != lp.GetValue() {
			return false
		}
	}
	return true
}

func requestLabels(method, route, status string) map[string]string {
	return map[string]string{"method": method, "route": route, "status": status}
}

func TestGinMiddlewareLabelsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := newMetrics(reg)
	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/topics/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/topics/a", "/topics/b", "/scan/1", "/scan/2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("PROPFIND", "/topics/a", nil))

	const requests = "aura_api_requests_total"
	if got, _ := sample(t, reg, requests, requestLabels("GET", "/topics/:id", "200")); got != 2 {
		t.Fatalf("templated route count=%v want 2", got)
	}
	if got, _ := sample(t, reg, requests, requestLabels("GET", unmatchedRoute, "404")); got != 2 {
		t.Fatalf("unmatched count=%v want 2", got)
	}
	got, series := sample(t, reg, requests, requestLabels("OTHER", unmatchedRoute, "404"))
	if got != 1 {
		t.Fatalf("unknown verb count=%v want 1", got)
	}
	if series != 3 {
		t.Fatalf("series=%d want 3", series)
	}
	if got, _ := sample(t, reg, "aura_api_inflight_requests", map[string]string{}); got != 0 {
		t.Fatalf("inflight=%v want 0", got)
	}
}

func TestGinMiddlewareNilMetricsPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var m *Metrics
	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("code=%d", w.Code)
	}
}
