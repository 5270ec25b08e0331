package ports

import (
	"context"

	"github.com/gangway-io/gangway/pkg/domain"
)

// TaskLoader retrieves raw (unresolved) task definitions by reference.
// This decouples the compiler from the storage layer (filesystem, memory).
type TaskLoader interface {
	// LoadTask parses the definition at the given reference. It returns
	// domain.ErrDefinitionNotFound (possibly wrapped) if the source is absent
	// and *domain.SchemaError if mandatory fields are missing.
	// The returned value still carries its Extends reference; inheritance
	// resolution is the compiler's job.
	LoadTask(ctx context.Context, ref string) (*domain.TaskDefinition, error)
}

// WorkflowLoader retrieves workflow definitions.
type WorkflowLoader interface {
	// LoadAll reads every definition in the workflow source. A missing
	// backing directory yields an empty list, not an error.
	LoadAll(ctx context.Context) ([]domain.WorkflowDefinition, error)
}
