package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gangway-io/gangway/pkg/domain"
)

// RunEntityStoreContract runs a suite of tests verifying that an EntityStore
// implementation adheres to the interface contract. Every adapter's test
// package is expected to invoke it.
func RunEntityStoreContract(t *testing.T, store EntityStore) {
	ctx := context.Background()
	entityID := "contract-entity-" + time.Now().Format("20060102150405.000")

	t.Run("Initialize", func(t *testing.T) {
		state, err := store.Initialize(ctx, entityID, "wf-onboarding", "step-one")
		require.NoError(t, err)
		assert.Equal(t, entityID, state.EntityID)
		assert.Equal(t, "wf-onboarding", state.WorkflowID)
		assert.Equal(t, "step-one", state.CurrentStepID)
		assert.Empty(t, state.Inputs)
		assert.Empty(t, state.CompletedSteps)
		assert.False(t, state.UpdatedAt.IsZero())
	})

	t.Run("Initialize Conflict", func(t *testing.T) {
		_, err := store.Initialize(ctx, entityID, "wf-onboarding", "step-one")
		assert.ErrorIs(t, err, domain.ErrStateExists)
	})

	t.Run("Save and Load", func(t *testing.T) {
		state, err := store.Load(ctx, entityID)
		require.NoError(t, err)

		state.CurrentStepID = "step-two"
		state.Inputs["legal_name"] = "Acme Holdings"
		state.Inputs["employee_count"] = 42
		state.CompletedSteps = append(state.CompletedSteps, "step-one")
		before := state.UpdatedAt

		require.NoError(t, store.Save(ctx, entityID, state))

		loaded, err := store.Load(ctx, entityID)
		require.NoError(t, err)
		assert.Equal(t, "step-two", loaded.CurrentStepID)
		assert.Equal(t, "Acme Holdings", loaded.Inputs["legal_name"])
		// JSON round trips may widen numerics; only presence is contractual.
		assert.NotNil(t, loaded.Inputs["employee_count"])
		assert.Equal(t, []string{"step-one"}, loaded.CompletedSteps)
		assert.False(t, loaded.UpdatedAt.Before(before), "UpdatedAt must never decrease")
	})

	t.Run("Save Requires Position", func(t *testing.T) {
		state := domain.NewEntityState(entityID, "", "")
		assert.Error(t, store.Save(ctx, entityID, state))
	})

	t.Run("Update Merges Shallow", func(t *testing.T) {
		updated, err := store.Update(ctx, entityID, map[string]any{
			"current_step_id": "step-three",
			"inputs":          map[string]any{"region": "EU"},
		})
		require.NoError(t, err)
		assert.Equal(t, "step-three", updated.CurrentStepID)
		// Top-level keys are fully replaced: the old inputs are gone.
		assert.Equal(t, "EU", updated.Inputs["region"])
		assert.NotContains(t, updated.Inputs, "legal_name")
		// Untouched keys survive.
		assert.Equal(t, []string{"step-one"}, updated.CompletedSteps)
	})

	t.Run("Update Cannot Rekey", func(t *testing.T) {
		updated, err := store.Update(ctx, entityID, map[string]any{"entity_id": "someone-else"})
		require.NoError(t, err)
		assert.Equal(t, entityID, updated.EntityID)
	})

	t.Run("Update Missing Record", func(t *testing.T) {
		_, err := store.Update(ctx, "never-initialized-"+entityID, map[string]any{"current_step_id": "x"})
		assert.ErrorIs(t, err, domain.ErrStateNotFound)
	})

	t.Run("Exists and List", func(t *testing.T) {
		ok, err := store.Exists(ctx, entityID)
		require.NoError(t, err)
		assert.True(t, ok)

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, entityID)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+entityID)
		assert.ErrorIs(t, err, domain.ErrStateNotFound)
	})

	t.Run("Delete Idempotent", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, entityID))
		_, err := store.Load(ctx, entityID)
		assert.ErrorIs(t, err, domain.ErrStateNotFound)

		// Deleting again is a silent no-op.
		assert.NoError(t, store.Delete(ctx, entityID))

		ok, err := store.Exists(ctx, entityID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
