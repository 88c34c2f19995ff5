package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	// Domain writes
	MutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entity_mutations_total",
			Help: "Successful create/update/delete operations",
		},
		[]string{"entity", "action"}, // book|author|library|...  created|updated|deleted
	)
	AccessDenied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_denied_total",
			Help: "Requests rejected by an access check",
		},
		[]string{"kind"}, // unauthenticated|forbidden
	)
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Login attempts by result",
		},
		[]string{"result"}, // ok|failed
	)

	initOnce sync.Once
)

// /metrics endpoint'i için handler
var Handler = promhttp.Handler

// Init registers the collectors with the default registry. Safe to call repeatedly.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestsTotal)
		prometheus.MustRegister(MutationsTotal)
		prometheus.MustRegister(AccessDenied)
		prometheus.MustRegister(LoginsTotal)
	})
}

func Mutation(entity, action string) { MutationsTotal.WithLabelValues(entity, action).Inc() }
