package expr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gangway-io/gangway/pkg/domain"
	"github.com/gangway-io/gangway/pkg/expr"
)

func TestEvaluate_Operators(t *testing.T) {
	inputs := map[string]any{
		"risk_score": 75,
		"country":    "BR",
		"verified":   true,
		"age":        "30",
	}

	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"numeric greater than", "input.risk_score > 70", true},
		{"numeric greater than false", "input.risk_score > 80", false},
		{"numeric less than", "input.risk_score < 80", true},
		{"numeric gte boundary", "input.risk_score >= 75", true},
		{"numeric lte boundary", "input.risk_score <= 75", true},
		{"numeric equality", "input.risk_score == 75", true},
		{"numeric inequality", "input.risk_score != 75", false},
		{"string equality single quotes", "input.country == 'BR'", true},
		{"string equality double quotes", `input.country == "BR"`, true},
		{"string equality raw literal", "input.country == BR", true},
		{"string inequality", "input.country != 'US'", true},
		{"boolean equality", "input.verified == true", true},
		{"boolean inequality", "input.verified != false", true},
		{"string number coerces numerically", "input.age > 7", true},
		{"lexicographic string ordering", "input.country > 'AR'", true},
	}

	e := expr.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Evaluate(tt.expr, inputs))
		})
	}
}

func TestEvaluate_TwoCharOperatorPriority(t *testing.T) {
	e := expr.New()
	// ">=" must win over ">", otherwise "= 75" becomes the right operand.
	assert.True(t, e.Evaluate("input.score >= 75", map[string]any{"score": 75}))
	assert.False(t, e.Evaluate("input.score > 75", map[string]any{"score": 75}))
}

func TestEvaluate_OperatorInsideLiteral(t *testing.T) {
	e := expr.New()
	inputs := map[string]any{"note": "a==b", "threshold": ">= 70"}

	// The comparison operator in front must win over operator-like
	// sequences inside the quoted literal.
	assert.True(t, e.Evaluate("input.note == 'a==b'", inputs))
	assert.False(t, e.Evaluate("input.note != 'a==b'", inputs))
	assert.True(t, e.Evaluate("input.threshold == '>= 70'", inputs))
	assert.False(t, e.Evaluate("input.note == 'a<b'", inputs))
}

func TestEvaluate_MissingField(t *testing.T) {
	e := expr.New()
	inputs := map[string]any{}

	assert.False(t, e.Evaluate("input.risk_score > 70", inputs))
	assert.False(t, e.Evaluate("input.risk_score == 70", inputs))
	// An absent field equals null.
	assert.True(t, e.Evaluate("input.risk_score == null", inputs))
	assert.False(t, e.Evaluate("input.risk_score != null", inputs))
}

func TestEvaluate_MalformedExpressions(t *testing.T) {
	e := expr.New()
	inputs := map[string]any{"x": 1}

	tests := []struct {
		name string
		expr string
	}{
		{"no operator", "input.x"},
		{"empty expression", ""},
		{"missing left operand", "> 5"},
		{"missing right operand", "input.x >"},
		{"no input prefix", "x > 0"},
		{"bare prefix", "input. > 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, e.Evaluate(tt.expr, inputs))
		})
	}
}

func TestEvaluate_NullLiteral(t *testing.T) {
	e := expr.New()
	assert.True(t, e.Evaluate("input.middle_name == null", map[string]any{"middle_name": nil}))
	assert.False(t, e.Evaluate("input.middle_name == null", map[string]any{"middle_name": "Ann"}))
	// Ordering against null is always false.
	assert.False(t, e.Evaluate("input.middle_name > null", map[string]any{"middle_name": "Ann"}))
}

func TestFirstMatch_DeclaredOrderWins(t *testing.T) {
	e := expr.New()
	conditions := []domain.StepCondition{
		{If: "input.risk_score > 90", Goto: "escalate"},
		{If: "input.risk_score > 70", Goto: "manual_review"},
		{If: "input.risk_score > 70", Goto: "never_reached"},
	}

	idx, ok := e.FirstMatch(conditions, map[string]any{"risk_score": 75})
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	idx, ok = e.FirstMatch(conditions, map[string]any{"risk_score": 95})
	assert.True(t, ok)
	assert.Equal(t, 0, idx)

	idx, ok = e.FirstMatch(conditions, map[string]any{"risk_score": 10})
	assert.False(t, ok)
	assert.Equal(t, -1, idx)
}

func TestFirstMatch_MalformedConditionSkipped(t *testing.T) {
	e := expr.New()
	conditions := []domain.StepCondition{
		{If: "not an expression", Goto: "a"},
		{If: "input.ok == true", Goto: "b"},
	}
	idx, ok := e.FirstMatch(conditions, map[string]any{"ok": true})
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
}
