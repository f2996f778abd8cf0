// Package metrics registers the service's Prometheus collectors. The HTTP
// server exposes them on /metrics when enabled in config.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StockMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_mutations_total",
		Help: "Ledger mutations applied, by operation.",
	}, []string{"op"})

	BusyRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_busy_retries_total",
		Help: "Ledger mutations retried after a storage lock timeout.",
	})

	LoginFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "login_failures_total",
		Help: "Failed authentication attempts recorded.",
	})

	Lockouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "login_lockouts_total",
		Help: "Accounts locked after reaching the failure threshold.",
	})
)
