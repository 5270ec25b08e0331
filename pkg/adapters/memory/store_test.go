package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gangway-io/gangway/pkg/adapters/memory"
	"github.com/gangway-io/gangway/pkg/ports"
)

func TestStore_Contract(t *testing.T) {
	ports.RunEntityStoreContract(t, memory.NewStore())
}

func TestStore_CallersNeverShareState(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	state, err := store.Initialize(ctx, "user-1", "kyc-default", "collect_email")
	require.NoError(t, err)

	// Mutating the returned value must not leak into the store.
	state.Inputs["email"] = "jo@example.com"
	state.CurrentStepID = "mutated"

	loaded, err := store.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, loaded.Inputs)
	assert.Equal(t, "collect_email", loaded.CurrentStepID)

	// Same for values read back.
	loaded.Inputs["phone"] = "555"
	again, err := store.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.NotContains(t, again.Inputs, "phone")
}
