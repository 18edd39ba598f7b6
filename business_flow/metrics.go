package businessflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	contractsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "contracts_created_total",
			Help: "Total number of contracts created",
		},
	)

	// Lifecycle transitions partitioned by target status
	contractTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contract_transitions_total",
			Help: "Total number of contract status transitions",
		},
		[]string{"to"},
	)

	// Login attempts partitioned by outcome
	authLoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Total number of login attempts",
		},
		[]string{"result"},
	)
)
