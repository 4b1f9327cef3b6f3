package metrics

import (
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// APIMetrics records outcomes of outbound gateway calls.
type APIMetrics struct {
	requests *prometheus.CounterVec
	failures *prometheus.CounterVec
}

// NewAPIMetrics registers the gateway metrics on the provided registerer.
func NewAPIMetrics(reg prometheus.Registerer) *APIMetrics {
	if reg == nil {
		return &APIMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "api_requests_total",
		Help: "Outbound API requests by method and endpoint.",
	}, []string{"method", "endpoint"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "api_failures_total",
		Help: "Failed outbound API requests by method, endpoint, and status.",
	}, []string{"method", "endpoint", "status"})
	reg.MustRegister(requests, failures)
	return &APIMetrics{
		requests: requests,
		failures: failures,
	}
}

// IncRequest counts one outbound call.
func (m *APIMetrics) IncRequest(method, endpoint string) {
	if m == nil || m.requests == nil {
		return
	}
	m.requests.WithLabelValues(method, normalizeLabel(endpoint)).Inc()
}

// IncFailure counts one failed call. Status zero means the transport failed
// before any response arrived.
func (m *APIMetrics) IncFailure(method, endpoint string, status int) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(method, normalizeLabel(endpoint), strconv.Itoa(status)).Inc()
}

// normalizeLabel collapses id path segments so the endpoint label stays a
// bounded set of route templates rather than one value per resource.
func normalizeLabel(endpoint string) string {
	if endpoint == "" {
		return "unknown"
	}
	segments := strings.Split(endpoint, "/")
	for i, segment := range segments {
		if segment == "" {
			continue
		}
		if _, err := strconv.ParseInt(segment, 10, 64); err == nil {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}
