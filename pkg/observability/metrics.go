// Package observability provides monitoring for the Gangway engine: a set of
// Prometheus collectors and a bridge that feeds them from lifecycle hooks.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gangway-io/gangway/pkg/domain"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	Transitions   *prometheus.CounterVec
	Completions   *prometheus.CounterVec
	StepsEntered  *prometheus.CounterVec
	CompileErrors *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with the given
// registerer (use prometheus.DefaultRegisterer in production, a fresh
// registry in tests).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gangway",
			Name:      "transitions_total",
			Help:      "Transitions executed, by workflow and matched condition kind.",
		}, []string{"workflow", "reason"}),
		Completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gangway",
			Name:      "workflow_completions_total",
			Help:      "Workflows that reached the terminal step.",
		}, []string{"workflow"}),
		StepsEntered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gangway",
			Name:      "steps_entered_total",
			Help:      "Steps entered, by workflow and stage.",
		}, []string{"workflow", "stage"}),
		CompileErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gangway",
			Name:      "compile_errors_total",
			Help:      "Workflow compilation failures, by workflow.",
		}, []string{"workflow"}),
	}
	reg.MustRegister(m.Transitions, m.Completions, m.StepsEntered, m.CompileErrors)
	return m
}

// Hooks returns lifecycle hooks that record into the collectors. Merge them
// into the engine's hook configuration.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(_ context.Context, ev *domain.StepEvent) {
			m.StepsEntered.WithLabelValues(ev.WorkflowID, ev.StageID).Inc()
		},
		OnTransition: func(_ context.Context, ev *domain.TransitionEvent) {
			reason := "condition"
			if ev.Reason == "default" {
				reason = "default"
			}
			m.Transitions.WithLabelValues(ev.WorkflowID, reason).Inc()
		},
		OnWorkflowComplete: func(_ context.Context, ev *domain.TransitionEvent) {
			m.Completions.WithLabelValues(ev.WorkflowID).Inc()
		},
		OnCompileError: func(_ context.Context, ev *domain.CompileErrorEvent) {
			m.RecordCompileError(ev.WorkflowID)
		},
	}
}

// RecordCompileError counts a compilation failure for the workflow.
func (m *Metrics) RecordCompileError(workflowID string) {
	m.CompileErrors.WithLabelValues(workflowID).Inc()
}
