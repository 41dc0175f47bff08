package usersapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// authOutcomes counts credential operations by outcome. Labels are bounded:
// operation is one of register/login/get_profile/update_profile/
// change_password, outcome is ok/denied/conflict/invalid/not_found/error.
var authOutcomes = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "warden_auth_operations_total",
		Help: "Credential operations by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

func countOutcome(operation, outcome string) {
	authOutcomes.WithLabelValues(operation, outcome).Inc()
}
