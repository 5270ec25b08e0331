// Package runtime implements the transition engine: the single authoritative
// path for validating collected input and advancing an entity to its next
// step in a compiled machine.
package runtime

import (
	"context"
	"log/slog"
	"reflect"
	"time"

	"github.com/gangway-io/gangway/internal/logging"
	"github.com/gangway-io/gangway/pkg/domain"
	"github.com/gangway-io/gangway/pkg/expr"
)

// ReasonDefault tags a transition taken via the default target because no
// condition matched.
const ReasonDefault = "default"

// TransitionResult is the outcome of ExecuteTransition.
type TransitionResult struct {
	// NextStepID is the computed target: a step ID or domain.TerminalStep.
	NextStepID string `json:"next_step_id"`

	// NextStep is the resolved compiled step; nil when the target is terminal.
	NextStep *domain.CompiledStep `json:"next_step,omitempty"`

	// Terminal reports that the workflow completed.
	Terminal bool `json:"terminal"`

	// Reason is the condition expression that matched, or ReasonDefault.
	Reason string `json:"reason"`
}

// TransitionCheck is the advisory result of CanTransitionFrom.
type TransitionCheck struct {
	Allowed bool     `json:"allowed"`
	Missing []string `json:"missing,omitempty"`
	Reason  string   `json:"reason,omitempty"`
}

// Engine computes transitions over compiled machines. It holds no per-entity
// state; callers supply the step and inputs on every call.
type Engine struct {
	evaluator *expr.Evaluator
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// NewEngine creates a transition engine. A nil evaluator gets a default
// (silent) one.
func NewEngine(evaluator *expr.Evaluator, opts ...Option) *Engine {
	e := &Engine{
		evaluator: evaluator,
		logger:    logging.NewNop(),
	}
	if e.evaluator == nil {
		e.evaluator = expr.New()
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MissingRequiredFields returns the subset of the step's required fields that
// are missing from the inputs, in declaration order. A field counts as
// missing when absent, nil, an empty string, or an empty collection.
func (e *Engine) MissingRequiredFields(step *domain.CompiledStep, inputs map[string]any) []string {
	var missing []string
	for _, name := range step.RequiredFields {
		val, ok := inputs[name]
		if !ok || isEmptyValue(val) {
			missing = append(missing, name)
		}
	}
	return missing
}

// NextStepID evaluates the step's conditions in order and returns the first
// match's target, or the default. Pure, no side effects.
func (e *Engine) NextStepID(step *domain.CompiledStep, inputs map[string]any) string {
	target, _ := e.resolveNext(step, inputs)
	return target
}

func (e *Engine) resolveNext(step *domain.CompiledStep, inputs map[string]any) (target, reason string) {
	if i, ok := e.evaluator.FirstMatch(step.Next.Conditions, inputs); ok {
		return step.Next.Conditions[i].Goto, step.Next.Conditions[i].If
	}
	return step.Next.Default, ReasonDefault
}

// IsValidTransition reports whether the target is the terminal marker or a
// known step of the machine.
func (e *Engine) IsValidTransition(m *domain.Machine, targetID string) bool {
	return targetID == domain.TerminalStep || m.HasStep(targetID)
}

// CanTransitionFrom wraps MissingRequiredFields into an advisory check.
func (e *Engine) CanTransitionFrom(step *domain.CompiledStep, inputs map[string]any) TransitionCheck {
	missing := e.MissingRequiredFields(step, inputs)
	if len(missing) > 0 {
		return TransitionCheck{Missing: missing, Reason: "missing required fields"}
	}
	return TransitionCheck{Allowed: true}
}

// ExecuteTransition is the single authoritative transition operation. Every
// caller must route through it rather than re-implement validate-then-advance.
//
// It re-validates required fields (failing with *domain.MissingFieldsError),
// computes the next step ID via ordered condition evaluation, and resolves
// the next compiled step (nil when terminal). A machine that compiled
// successfully can never produce an unresolvable non-terminal target here.
func (e *Engine) ExecuteTransition(ctx context.Context, m *domain.Machine, step *domain.CompiledStep, inputs map[string]any) (*TransitionResult, error) {
	if missing := e.MissingRequiredFields(step, inputs); len(missing) > 0 {
		return nil, &domain.MissingFieldsError{StepID: step.ID, Fields: missing}
	}

	target, reason := e.resolveNext(step, inputs)
	terminal := target == domain.TerminalStep

	result := &TransitionResult{
		NextStepID: target,
		Terminal:   terminal,
		Reason:     reason,
	}
	if !terminal {
		next, ok := m.Step(target)
		if !ok {
			// Unreachable for compiled machines; guard kept for hand-built ones.
			return nil, &domain.InvalidTargetError{StepID: step.ID, Target: target}
		}
		result.NextStep = next
	}

	e.logger.Debug("transition executed",
		"workflow", m.WorkflowID,
		"from", step.ID,
		"to", target,
		"reason", reason,
		"terminal", terminal,
	)
	e.emitTransition(ctx, m, step, result)

	return result, nil
}

func (e *Engine) emitTransition(ctx context.Context, m *domain.Machine, step *domain.CompiledStep, res *TransitionResult) {
	now := time.Now().UTC()

	if e.hooks.OnTransition != nil {
		e.hooks.OnTransition(ctx, &domain.TransitionEvent{
			Timestamp:  now,
			Type:       domain.EventTransition,
			WorkflowID: m.WorkflowID,
			FromStepID: step.ID,
			ToStepID:   res.NextStepID,
			Reason:     res.Reason,
			Terminal:   res.Terminal,
		})
	}

	if res.Terminal {
		if e.hooks.OnWorkflowComplete != nil {
			e.hooks.OnWorkflowComplete(ctx, &domain.TransitionEvent{
				Timestamp:  now,
				Type:       domain.EventWorkflowComplete,
				WorkflowID: m.WorkflowID,
				FromStepID: step.ID,
				ToStepID:   res.NextStepID,
				Reason:     res.Reason,
				Terminal:   true,
			})
		}
		return
	}

	if e.hooks.OnStepEnter != nil && res.NextStep != nil {
		e.hooks.OnStepEnter(ctx, &domain.StepEvent{
			Timestamp:  now,
			Type:       domain.EventStepEnter,
			WorkflowID: m.WorkflowID,
			StepID:     res.NextStep.ID,
			StageID:    res.NextStep.Stage,
		})
	}
}

// isEmptyValue treats nil, empty strings and empty collections as missing.
func isEmptyValue(val any) bool {
	switch v := val.(type) {
	case nil:
		return true
	case string:
		return v == ""
	}
	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	}
	return false
}
