package record_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gangway-io/gangway/pkg/adapters/record"
	"github.com/gangway-io/gangway/pkg/domain"
)

func TestValidate(t *testing.T) {
	assert.Error(t, record.Validate(nil))

	st := domain.NewEntityState("user-1", "", "step")
	assert.ErrorContains(t, record.Validate(st), "workflow_id")

	st = domain.NewEntityState("user-1", "wf", "")
	assert.ErrorContains(t, record.Validate(st), "current_step_id")

	st = domain.NewEntityState("user-1", "wf", "step")
	assert.NoError(t, record.Validate(st))
}

func TestMerge_ShallowReplace(t *testing.T) {
	current := domain.NewEntityState("user-1", "kyc-default", "collect_email")
	current.Inputs = map[string]any{"email": "jo@example.com", "phone": "555"}
	current.CompletedSteps = []string{"collect_email"}

	merged, err := record.Merge(current, map[string]any{
		"current_step_id": "risk_check",
		"inputs":          map[string]any{"risk_score": 80},
	})
	require.NoError(t, err)

	assert.Equal(t, "risk_check", merged.CurrentStepID)
	// inputs is replaced wholesale, not deep-merged.
	assert.NotContains(t, merged.Inputs, "email")
	assert.EqualValues(t, 80, merged.Inputs["risk_score"])
	// Untouched keys survive.
	assert.Equal(t, []string{"collect_email"}, merged.CompletedSteps)
	assert.Equal(t, "kyc-default", merged.WorkflowID)
}

func TestMerge_DoesNotMutateCurrent(t *testing.T) {
	current := domain.NewEntityState("user-1", "kyc-default", "collect_email")
	current.Inputs = map[string]any{"email": "jo@example.com"}

	_, err := record.Merge(current, map[string]any{
		"current_step_id": "other",
		"inputs":          map[string]any{},
	})
	require.NoError(t, err)

	assert.Equal(t, "collect_email", current.CurrentStepID)
	assert.Equal(t, "jo@example.com", current.Inputs["email"])
}

func TestMerge_ProtectedKeysDropped(t *testing.T) {
	current := domain.NewEntityState("user-1", "kyc-default", "collect_email")
	before := current.UpdatedAt

	merged, err := record.Merge(current, map[string]any{
		"entity_id":  "intruder",
		"updated_at": time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	require.NoError(t, err)
	assert.Equal(t, "user-1", merged.EntityID)
	assert.Equal(t, before, merged.UpdatedAt)
}

func TestMerge_CompletedStepsReplaced(t *testing.T) {
	current := domain.NewEntityState("user-1", "kyc-default", "b")
	current.CompletedSteps = []string{"a", "b"}

	merged, err := record.Merge(current, map[string]any{
		"completed_steps": []string{"a"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, merged.CompletedSteps)
}

func TestMerge_WeakTyping(t *testing.T) {
	current := domain.NewEntityState("user-1", "kyc-default", "a")

	// JSON-decoded payloads carry strings and float64s; both must land.
	merged, err := record.Merge(current, map[string]any{
		"current_stage_id": "review",
		"workflow_id":      "kyc-enhanced",
	})
	require.NoError(t, err)
	assert.Equal(t, "review", merged.CurrentStageID)
	assert.Equal(t, "kyc-enhanced", merged.WorkflowID)
}
