// Package record holds the persistence rules shared by every EntityStore
// adapter: save-time validation and the shallow partial-merge semantics of
// Update.
package record

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/gangway-io/gangway/pkg/domain"
)

// Validate enforces the save invariants: a record must carry its workflow ID
// and current step ID before it may be persisted.
func Validate(state *domain.EntityState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if state.WorkflowID == "" {
		return fmt.Errorf("state is missing workflow_id")
	}
	if state.CurrentStepID == "" {
		return fmt.Errorf("state is missing current_step_id")
	}
	return nil
}

// Merge shallow-merges partial fields (keyed by the JSON field names) over a
// copy of the current record. Each provided top-level key fully replaces the
// existing value; nothing is deep-merged. The entity ID cannot be altered.
func Merge(current *domain.EntityState, fields map[string]any) (*domain.EntityState, error) {
	merged := current.Clone()

	// The entity ID is immutable and the timestamp is store-owned; both are
	// dropped rather than rejected so callers can round-trip loaded records.
	pruned := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == "entity_id" || k == "updated_at" {
			continue
		}
		pruned[k] = v
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  merged,
		TagName: "json",
		// ZeroFields empties map and slice targets before decoding, which is
		// exactly the "replace, never deep-merge" contract.
		ZeroFields:       true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("building merge decoder: %w", err)
	}
	if err := decoder.Decode(pruned); err != nil {
		return nil, fmt.Errorf("merging partial state: %w", err)
	}

	merged.EntityID = current.EntityID
	return merged, nil
}
