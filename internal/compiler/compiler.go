// Package compiler turns declarative workflow definitions into executable,
// validated runtime machines. Compilation is all-or-nothing: any failure
// aborts before a machine is produced, so a compiled machine can never hand
// the transition engine a dangling target.
package compiler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gangway-io/gangway/internal/logging"
	"github.com/gangway-io/gangway/pkg/domain"
	"github.com/gangway-io/gangway/pkg/ports"
)

// Compiler resolves every step's task reference into a denormalized,
// validated runtime graph.
type Compiler struct {
	loader   ports.TaskLoader
	resolver *Resolver
	logger   *slog.Logger
}

// Option configures the Compiler.
type Option func(*Compiler)

// WithLogger sets the compiler's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// New creates a compiler that loads task definitions through the given loader.
func New(loader ports.TaskLoader, opts ...Option) *Compiler {
	c := &Compiler{
		loader:   loader,
		resolver: NewResolver(loader),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile produces a runtime machine from a workflow definition.
//
// For each step it loads and resolves the referenced task, cross-validates
// that every declared required field appears in the field schema, and
// assembles the denormalized compiled step. After all steps compile it
// validates every transition target against the step index. The initial step
// is the first step in declaration order.
func (c *Compiler) Compile(ctx context.Context, def *domain.WorkflowDefinition) (*domain.Machine, error) {
	steps := make([]domain.CompiledStep, 0, len(def.Steps))

	for _, ref := range def.Steps {
		raw, err := c.loader.LoadTask(ctx, ref.Task)
		if err != nil {
			return nil, fmt.Errorf("workflow %q step %q: %w", def.ID, ref.ID, err)
		}
		task, err := c.resolver.Resolve(ctx, raw)
		if err != nil {
			return nil, fmt.Errorf("workflow %q step %q: %w", def.ID, ref.ID, err)
		}

		if missing := missingFromSchema(task); len(missing) > 0 {
			return nil, &domain.FieldMismatchError{StepID: ref.ID, TaskID: task.ID, Missing: missing}
		}

		steps = append(steps, domain.CompiledStep{
			ID:             ref.ID,
			Stage:          ref.Stage,
			TaskID:         task.ID,
			Title:          task.Name,
			Description:    task.Description,
			Component:      task.Component,
			RequiredFields: append([]string(nil), task.RequiredFields...),
			Fields:         domain.CloneFields(task.Fields),
			Outputs:        append([]string(nil), task.Outputs...),
			Next:           ref.Next,
		})
	}

	machine := domain.NewMachine(def.ID, def.Version, append([]domain.StageDefinition(nil), def.Stages...), steps)

	// Transition-target integrity is enforced once, here, never at
	// transition time.
	for _, step := range machine.Steps {
		for _, cond := range step.Next.Conditions {
			if !validTarget(machine, cond.Goto) {
				return nil, &domain.InvalidTargetError{StepID: step.ID, Target: cond.Goto}
			}
		}
		if !validTarget(machine, step.Next.Default) {
			return nil, &domain.InvalidTargetError{StepID: step.ID, Target: step.Next.Default}
		}
	}

	c.logger.Debug("workflow compiled",
		"workflow", def.ID,
		"version", def.Version,
		"steps", len(machine.Steps),
		"initial", machine.InitialStepID,
	)

	return machine, nil
}

// missingFromSchema returns the required-field names absent from the task's
// field schema, in declaration order.
func missingFromSchema(task *domain.TaskDefinition) []string {
	var missing []string
	for _, name := range task.RequiredFields {
		if _, ok := task.Field(name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

func validTarget(m *domain.Machine, target string) bool {
	if target == domain.TerminalStep {
		return true
	}
	return target != "" && m.HasStep(target)
}
