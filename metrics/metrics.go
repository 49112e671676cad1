// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "actions_requests_total", Help: "HTTP requests by route and status"},
		[]string{"route", "status"},
	)
	TransactionsBuilt = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "actions_transactions_built_total", Help: "Unsigned transactions built by kind"},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(RequestsTotal, TransactionsBuilt)
}

// Handler exposes the registry for mounting on the main router.
func Handler() http.Handler {
	return promhttp.Handler()
}
