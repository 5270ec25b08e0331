package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gangway-io/gangway/pkg/domain"
)

func progressMachine() *domain.Machine {
	stages := []domain.StageDefinition{
		{ID: "identity", Name: "Identity"},
		{ID: "review", Name: "Review"},
		{ID: "empty_stage", Name: "Empty"},
	}
	steps := []domain.CompiledStep{
		{ID: "a", Stage: "identity", Next: domain.StepNext{Default: "b"}},
		{ID: "b", Stage: "identity", Next: domain.StepNext{Default: "c"}},
		{ID: "c", Stage: "review", Next: domain.StepNext{Default: domain.TerminalStep}},
	}
	return domain.NewMachine("kyc-default", "1.0", stages, steps)
}

func TestWorkflowProgress(t *testing.T) {
	m := progressMachine()

	tests := []struct {
		name      string
		completed []string
		want      domain.Progress
	}{
		{"nothing completed", nil, domain.Progress{Completed: 0, Total: 3, Percent: 0}},
		{"one of three", []string{"a"}, domain.Progress{Completed: 1, Total: 3, Percent: 33}},
		{"two of three", []string{"a", "b"}, domain.Progress{Completed: 2, Total: 3, Percent: 67}},
		{"all completed", []string{"a", "b", "c"}, domain.Progress{Completed: 3, Total: 3, Percent: 100}},
		{"stray ids ignored", []string{"a", "ghost", "stale"}, domain.Progress{Completed: 1, Total: 3, Percent: 33}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.WorkflowProgress(m, tt.completed)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got.Percent, 0)
			assert.LessOrEqual(t, got.Percent, 100)
		})
	}
}

func TestWorkflowProgress_EmptyMachine(t *testing.T) {
	m := domain.NewMachine("empty", "", nil, nil)
	got := domain.WorkflowProgress(m, []string{"anything"})
	assert.Equal(t, domain.Progress{Completed: 0, Total: 0, Percent: 0}, got)
}

func TestStageProgress(t *testing.T) {
	m := progressMachine()
	reports := domain.StageProgress(m, []string{"a", "c"})
	require.Len(t, reports, 3)

	assert.Equal(t, "identity", reports[0].StageID)
	assert.Equal(t, domain.Progress{Completed: 1, Total: 2, Percent: 50}, reports[0].Progress)

	assert.Equal(t, "review", reports[1].StageID)
	assert.Equal(t, domain.Progress{Completed: 1, Total: 1, Percent: 100}, reports[1].Progress)

	// A stage with no member steps reports 0%, not 100%.
	assert.Equal(t, "empty_stage", reports[2].StageID)
	assert.Equal(t, domain.Progress{Completed: 0, Total: 0, Percent: 0}, reports[2].Progress)
}

func TestStageCompleted(t *testing.T) {
	m := progressMachine()

	assert.False(t, domain.StageCompleted(m, "identity", []string{"a"}))
	assert.True(t, domain.StageCompleted(m, "identity", []string{"a", "b"}))
	assert.True(t, domain.StageCompleted(m, "review", []string{"c"}))

	// A stage needs at least one member step to count as completed.
	assert.False(t, domain.StageCompleted(m, "empty_stage", []string{"a", "b", "c"}))
	assert.False(t, domain.StageCompleted(m, "ghost_stage", []string{"a", "b", "c"}))
}
