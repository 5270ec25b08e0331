package domain

import (
	"context"
	"time"
)

// EventType defines the category of a lifecycle event.
type EventType string

const (
	EventStepEnter        EventType = "step_enter"
	EventTransition       EventType = "transition"
	EventWorkflowComplete EventType = "workflow_complete"
	EventCompileError     EventType = "compile_error"
)

// StepEvent describes entry into a step.
type StepEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	Type       EventType `json:"type"`
	EntityID   string    `json:"entity_id,omitempty"`
	WorkflowID string    `json:"workflow_id"`
	StepID     string    `json:"step_id"`
	StageID    string    `json:"stage_id,omitempty"`
}

// TransitionEvent describes a computed transition, including which condition
// matched ("default" when none did).
type TransitionEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	Type       EventType `json:"type"`
	EntityID   string    `json:"entity_id,omitempty"`
	WorkflowID string    `json:"workflow_id"`
	FromStepID string    `json:"from_step_id"`
	ToStepID   string    `json:"to_step_id"`
	Reason     string    `json:"reason"`
	Terminal   bool      `json:"terminal,omitempty"`
}

// CompileErrorEvent describes a failed workflow compilation.
type CompileErrorEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	Type       EventType `json:"type"`
	WorkflowID string    `json:"workflow_id"`
	Err        string    `json:"error"`
}

// LifecycleHooks defines callbacks for engine observability. All hooks are
// optional and must not block; they run synchronously on the transition path.
type LifecycleHooks struct {
	OnStepEnter        func(context.Context, *StepEvent)
	OnTransition       func(context.Context, *TransitionEvent)
	OnWorkflowComplete func(context.Context, *TransitionEvent)
	OnCompileError     func(context.Context, *CompileErrorEvent)
}
