// Package telemetry holds Prometheus metrics for the registration funnel.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RegistrationMetrics counts funnel events: step commits, validation
// failures, postal code lookups, completions, guard denials and logins.
type RegistrationMetrics struct {
	StepsCommitted     *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	InvalidFields      *prometheus.HistogramVec
	Lookups            *prometheus.CounterVec
	Completed          prometheus.Counter
	GuardDenials       *prometheus.CounterVec
	Logins             *prometheus.CounterVec
}

// NewRegistrationMetrics registers the metrics with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewRegistrationMetrics(namespace string, reg prometheus.Registerer) *RegistrationMetrics {
	if namespace == "" {
		namespace = "ferrovelho"
	}
	factory := promauto.With(reg)

	return &RegistrationMetrics{
		StepsCommitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "registration",
				Name:      "steps_committed_total",
				Help:      "Registration steps committed, by step",
			},
			[]string{"step"},
		),
		ValidationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "registration",
				Name:      "validation_failures_total",
				Help:      "Submissions rejected by validation, by step",
			},
			[]string{"step"},
		),
		InvalidFields: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "registration",
				Name:      "invalid_fields",
				Help:      "Number of invalid fields per rejected submission",
				Buckets:   []float64{1, 2, 3, 5, 8, 11},
			},
			[]string{"step"},
		),
		Lookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "registration",
				Name:      "postal_code_lookups_total",
				Help:      "Postal code lookups, by outcome",
			},
			[]string{"outcome"},
		),
		Completed: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "registration",
				Name:      "completed_total",
				Help:      "Registrations completed and handed off",
			},
		),
		GuardDenials: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "guard_denials_total",
				Help:      "Requests redirected by the route guard, by role",
			},
			[]string{"role"},
		),
		Logins: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "logins_total",
				Help:      "Login attempts, by result",
			},
			[]string{"result"},
		),
	}
}

func (m *RegistrationMetrics) StepCommitted(step string) {
	m.StepsCommitted.WithLabelValues(step).Inc()
}

func (m *RegistrationMetrics) ValidationFailed(step string, fields int) {
	m.ValidationFailures.WithLabelValues(step).Inc()
	m.InvalidFields.WithLabelValues(step).Observe(float64(fields))
}

func (m *RegistrationMetrics) LookupFinished(outcome string) {
	m.Lookups.WithLabelValues(outcome).Inc()
}

func (m *RegistrationMetrics) RegistrationCompleted() {
	m.Completed.Inc()
}

// GuardDenied counts a guard redirect. Roles are free-form, so anything
// other than guest and admin is reported as "other".
func (m *RegistrationMetrics) GuardDenied(role string) {
	switch role {
	case "guest", "admin":
	default:
		role = "other"
	}
	m.GuardDenials.WithLabelValues(role).Inc()
}

// Login counts a login attempt; result is "success", "invalid" or "rejected".
func (m *RegistrationMetrics) Login(result string) {
	m.Logins.WithLabelValues(result).Inc()
}
