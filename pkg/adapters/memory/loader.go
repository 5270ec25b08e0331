package memory

import (
	"context"
	"fmt"

	"github.com/gangway-io/gangway/pkg/domain"
	"github.com/gangway-io/gangway/pkg/ports"
)

// TaskLoader implements ports.TaskLoader over a fixed map of definitions,
// keyed by reference. Used by tests and by callers that assemble definitions
// programmatically.
type TaskLoader struct {
	tasks map[string]*domain.TaskDefinition
}

// NewTaskLoader creates a loader over the given definitions. Each task is
// registered under its ID.
func NewTaskLoader(tasks ...domain.TaskDefinition) *TaskLoader {
	l := &TaskLoader{tasks: make(map[string]*domain.TaskDefinition, len(tasks))}
	for i := range tasks {
		l.Register(tasks[i].ID, &tasks[i])
	}
	return l
}

// Register adds a definition under an explicit reference (useful when the
// reference is a path rather than the task ID).
func (l *TaskLoader) Register(ref string, task *domain.TaskDefinition) {
	l.tasks[ref] = task.Clone()
}

// LoadTask returns a copy of the registered definition.
func (l *TaskLoader) LoadTask(ctx context.Context, ref string) (*domain.TaskDefinition, error) {
	task, ok := l.tasks[ref]
	if !ok {
		return nil, fmt.Errorf("task %q: %w", ref, domain.ErrDefinitionNotFound)
	}
	return task.Clone(), nil
}

// WorkflowLoader implements ports.WorkflowLoader over a fixed list.
type WorkflowLoader struct {
	defs []domain.WorkflowDefinition
}

// NewWorkflowLoader creates a loader over the given definitions.
func NewWorkflowLoader(defs ...domain.WorkflowDefinition) *WorkflowLoader {
	return &WorkflowLoader{defs: defs}
}

// LoadAll returns the registered definitions in registration order.
func (l *WorkflowLoader) LoadAll(ctx context.Context) ([]domain.WorkflowDefinition, error) {
	out := make([]domain.WorkflowDefinition, len(l.defs))
	copy(out, l.defs)
	return out, nil
}

var (
	_ ports.TaskLoader     = (*TaskLoader)(nil)
	_ ports.WorkflowLoader = (*WorkflowLoader)(nil)
)
