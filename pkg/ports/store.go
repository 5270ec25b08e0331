package ports

import (
	"context"

	"github.com/gangway-io/gangway/pkg/domain"
)

// EntityStore defines durable, atomic per-entity persistence.
//
// Stores guarantee write atomicity at the granularity of a single record (a
// reader never observes a partial write) but do NOT serialize concurrent
// writers to the same entity: last writer wins. Multi-writer deployments must
// wrap the store in session.Manager (keyed mutex, optionally distributed).
type EntityStore interface {
	// Initialize creates the record for an entity. It fails with
	// domain.ErrStateExists if a record already exists; callers needing
	// idempotency must check Exists first.
	Initialize(ctx context.Context, entityID, workflowID, initialStepID string) (*domain.EntityState, error)

	// Load retrieves the record. Returns domain.ErrStateNotFound if the
	// entity has no record; unreadable content is treated the same way.
	Load(ctx context.Context, entityID string) (*domain.EntityState, error)

	// Save replaces the record wholesale. WorkflowID and CurrentStepID must
	// be set. The store refreshes UpdatedAt, overriding any caller value.
	Save(ctx context.Context, entityID string, state *domain.EntityState) error

	// Update shallow-merges the given top-level fields over the existing
	// record and re-saves it atomically. Each key is fully replaced, never
	// deep-merged. Fails with domain.ErrStateNotFound if no record exists,
	// and refuses to alter the entity ID.
	Update(ctx context.Context, entityID string, fields map[string]any) (*domain.EntityState, error)

	// Delete removes the record. Deleting an absent record is a no-op.
	Delete(ctx context.Context, entityID string) error

	// Exists reports whether a record is present.
	Exists(ctx context.Context, entityID string) (bool, error)

	// List returns all known entity IDs. An absent backing directory yields
	// an empty list.
	List(ctx context.Context) ([]string, error)
}
