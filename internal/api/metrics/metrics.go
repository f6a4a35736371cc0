// Package metrics defines the custom Prometheus metrics of the auth API.
// It is the single source of truth for metric names, labels and help strings.
//
// Call Register once per registry before serving traffic. HTTP level metrics
// (latency, status codes) come from the echoprometheus middleware.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "staffhub_auth"

// Outcome labels shared by the auth counters.
const (
	OutcomeSuccess            = "success"
	OutcomeValidation         = "validation_error"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeInactive           = "inactive"
	OutcomeDuplicate          = "duplicate"
	OutcomeError              = "error"
)

// LoginAttemptsTotal counts POST /auth/login calls.
// Label:
//   - outcome: one of the Outcome* constants
var LoginAttemptsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"outcome"},
)

// SignupsTotal counts POST /auth/signup calls.
// Label:
//   - outcome: one of the Outcome* constants
var SignupsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of signup attempts, by outcome.",
	},
	[]string{"outcome"},
)

// Register adds all custom collectors to reg. Collectors already present in
// reg are left alone.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{LoginAttemptsTotal, SignupsTotal} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}
