package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the form engine.
type Metrics struct {
	// Sessions opened, by mode ("new", "edit")
	SessionsOpened *prometheus.CounterVec

	// Mutations applied to sessions, by command
	Commands *prometheus.CounterVec

	// Validation outcomes by result ("ok", "error", "warning")
	Validations *prometheus.CounterVec

	// Submissions by outcome ("created", "updated", "rejected")
	Submissions *prometheus.CounterVec

	// Submit latency including persistence and audit
	SubmitLatency prometheus.Histogram
}

// New creates a new Metrics instance with all form metrics registered.
func New() *Metrics {
	return &Metrics{
		SessionsOpened: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "demandas_form_sessions_opened_total",
			Help: "Total form sessions opened by mode",
		}, []string{"mode"}),

		Commands: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "demandas_form_commands_total",
			Help: "Total form commands applied by command name and outcome",
		}, []string{"command", "outcome"}),

		Validations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "demandas_form_validations_total",
			Help: "Total validation passes by result",
		}, []string{"result"}),

		Submissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "demandas_form_submissions_total",
			Help: "Total submissions by outcome",
		}, []string{"outcome"}),

		SubmitLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "demandas_form_submit_duration_seconds",
			Help:    "Duration of form submission including persistence and audit",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

// IncrementSessionsOpened records a session being opened.
func (m *Metrics) IncrementSessionsOpened(mode string) {
	if m != nil {
		m.SessionsOpened.WithLabelValues(mode).Inc()
	}
}

// IncrementCommand records a command and whether it succeeded.
func (m *Metrics) IncrementCommand(command string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Commands.WithLabelValues(command, outcome).Inc()
}

// IncrementValidation records a validation result.
func (m *Metrics) IncrementValidation(result string) {
	if m != nil {
		m.Validations.WithLabelValues(result).Inc()
	}
}

// IncrementSubmission records a submission outcome.
func (m *Metrics) IncrementSubmission(outcome string) {
	if m != nil {
		m.Submissions.WithLabelValues(outcome).Inc()
	}
}

// ObserveSubmitLatency records the total submit duration.
func (m *Metrics) ObserveSubmitLatency(d time.Duration) {
	if m != nil {
		m.SubmitLatency.Observe(d.Seconds())
	}
}
