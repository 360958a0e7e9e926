package httpserver

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var requestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "quorum_http_requests_total",
		Help: "HTTP requests processed, labeled by method and status code.",
	},
	[]string{"method", "code"},
)

func instrument(next http.Handler) http.Handler {
	return promhttp.InstrumentHandlerCounter(requestsTotal, next)
}
