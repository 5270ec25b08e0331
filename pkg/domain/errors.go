package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrStateNotFound is returned when an entity record does not exist where
// existence is required (e.g. Update before Initialize).
var ErrStateNotFound = errors.New("entity state not found")

// ErrStateExists is returned when initializing an entity that already has a
// record. Initialization is deliberately not idempotent.
var ErrStateExists = errors.New("entity state already exists")

// ErrDefinitionNotFound is returned when a referenced task or workflow
// definition source is absent.
var ErrDefinitionNotFound = errors.New("definition not found")

// SchemaError reports a loaded definition missing mandatory fields.
type SchemaError struct {
	Ref     string
	Reasons []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid definition %q: %s", e.Ref, strings.Join(e.Reasons, "; "))
}

// CircularInheritanceError reports a loop in a task's ancestor chain.
// Chain holds the full path walked, ending at the repeated ID.
type CircularInheritanceError struct {
	Chain []string
}

func (e *CircularInheritanceError) Error() string {
	return fmt.Sprintf("circular task inheritance: %s", strings.Join(e.Chain, " -> "))
}

// FieldMismatchError reports required-field names absent from the field
// schema of a step's resolved task. The two lists are maintained by
// convention in the source format, so the compiler cross-checks them.
type FieldMismatchError struct {
	StepID  string
	TaskID  string
	Missing []string
}

func (e *FieldMismatchError) Error() string {
	return fmt.Sprintf("step %q: task %q declares required fields missing from its schema: %s",
		e.StepID, e.TaskID, strings.Join(e.Missing, ", "))
}

// InvalidTargetError reports a transition pointing at an unknown step.
type InvalidTargetError struct {
	StepID string
	Target string
}

func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("step %q: transition target %q is not a known step", e.StepID, e.Target)
}

// MissingFieldsError blocks a transition whose step still lacks required
// input. Fields preserves declaration order.
type MissingFieldsError struct {
	StepID string
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("step %q: missing required fields: %s", e.StepID, strings.Join(e.Fields, ", "))
}
