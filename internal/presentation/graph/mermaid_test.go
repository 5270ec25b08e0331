package graph_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gangway-io/gangway/internal/presentation/graph"
	"github.com/gangway-io/gangway/pkg/domain"
)

func testMachine() *domain.Machine {
	stages := []domain.StageDefinition{
		{ID: "identity", Name: "Identity"},
		{ID: "review", Name: "Review"},
	}
	steps := []domain.CompiledStep{
		{
			ID:    "collect_email",
			Stage: "identity",
			Title: "Collect Email",
			Next: domain.StepNext{
				Default: "risk_check",
			},
		},
		{
			ID:    "risk_check",
			Stage: "review",
			Title: "Risk Check",
			Next: domain.StepNext{
				Conditions: []domain.StepCondition{
					{If: "input.risk_score > 70", Goto: "manual_review"},
				},
				Default: domain.TerminalStep,
			},
		},
		{
			ID:    "manual_review",
			Stage: "review",
			Title: "Manual Review",
			Next: domain.StepNext{
				Default: domain.TerminalStep,
			},
		},
	}
	return domain.NewMachine("kyc-default", "1.0", stages, steps)
}

func TestGenerateMermaid_Structure(t *testing.T) {
	out := graph.GenerateMermaid(testMachine(), nil)

	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	assert.Contains(t, out, `subgraph identity["Identity"]`)
	assert.Contains(t, out, `subgraph review["Review"]`)

	// Initial step renders as a circle.
	assert.Contains(t, out, `collect_email(("Collect Email"))`)
	assert.Contains(t, out, `risk_check["Risk Check"]`)

	// Conditional edges carry the expression; defaults are plain arrows.
	assert.Contains(t, out, `risk_check -- "input.risk_score > 70" --> manual_review`)
	assert.Contains(t, out, "collect_email --> risk_check")
	assert.Contains(t, out, "manual_review --> complete")

	// Terminal node is rendered exactly once.
	assert.Equal(t, 1, strings.Count(out, `complete((("done")))`))
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	overlay := &graph.Overlay{
		CompletedSteps: []string{"collect_email", "collect_email"},
		CurrentStepID:  "risk_check",
	}
	out := graph.GenerateMermaid(testMachine(), overlay)

	assert.Equal(t, 1, strings.Count(out, "class collect_email completed;"))
	assert.Contains(t, out, "class risk_check current;")
	assert.Contains(t, out, "classDef current")
}

func TestGenerateMermaid_SanitizesIDs(t *testing.T) {
	steps := []domain.CompiledStep{
		{ID: "verify-id.step", Title: `Say "hi"`, Next: domain.StepNext{Default: domain.TerminalStep}},
	}
	m := domain.NewMachine("wf", "", nil, steps)
	out := graph.GenerateMermaid(m, nil)

	assert.Contains(t, out, "verify_id_step")
	assert.Contains(t, out, "Say 'hi'")
	assert.NotContains(t, out, "verify-id.step[")
}
