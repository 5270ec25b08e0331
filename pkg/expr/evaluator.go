// Package expr implements the fixed-grammar condition evaluator used for
// workflow branching: a single binary comparison of a collected input field
// against a literal, e.g. "input.risk_score > 70".
//
// This is deliberately not a general-purpose expression language. A malformed
// condition logs a warning and evaluates to false rather than failing the
// workflow for every entity.
package expr

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/gangway-io/gangway/internal/logging"
	"github.com/gangway-io/gangway/pkg/domain"
)

// FieldRefPrefix is the mandatory prefix of the left-hand field reference.
const FieldRefPrefix = "input."

// operators with two-character forms before their one-character prefixes, so
// a tie at the same position resolves to ">=" rather than ">" followed by "=".
var operators = []string{"==", "!=", ">=", "<=", ">", "<"}

// Evaluator evaluates comparison expressions against collected input maps.
type Evaluator struct {
	logger *slog.Logger
}

// Option configures the Evaluator.
type Option func(*Evaluator)

// WithLogger sets the logger used for malformed-expression warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

// New creates an Evaluator. Without options it logs nowhere.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs a single expression against the inputs. Malformed expressions
// (missing operator, unparsable field reference, empty operands) are logged
// and evaluate to false.
func (e *Evaluator) Evaluate(expression string, inputs map[string]any) bool {
	expression = strings.TrimSpace(expression)

	op, lhs, rhs := splitOnOperator(expression)
	if op == "" {
		e.logger.Warn("condition has no recognized operator", "expr", expression)
		return false
	}
	if lhs == "" || rhs == "" {
		e.logger.Warn("condition is missing an operand", "expr", expression)
		return false
	}

	if !strings.HasPrefix(lhs, FieldRefPrefix) {
		e.logger.Warn("condition left side is not an input reference", "expr", expression, "ref", lhs)
		return false
	}
	fieldName := strings.TrimPrefix(lhs, FieldRefPrefix)
	if fieldName == "" {
		e.logger.Warn("condition references an empty field name", "expr", expression)
		return false
	}

	actual := inputs[fieldName]
	expected := parseLiteral(rhs)

	switch op {
	case "==":
		return looseEqual(actual, expected)
	case "!=":
		return !looseEqual(actual, expected)
	case ">=":
		return compare(actual, expected, func(c int) bool { return c >= 0 })
	case "<=":
		return compare(actual, expected, func(c int) bool { return c <= 0 })
	case ">":
		return compare(actual, expected, func(c int) bool { return c > 0 })
	case "<":
		return compare(actual, expected, func(c int) bool { return c < 0 })
	}
	return false
}

// FirstMatch walks the conditions in declared order and returns the index of
// the first one whose expression evaluates to true. Later true conditions are
// never reached.
func (e *Evaluator) FirstMatch(conditions []domain.StepCondition, inputs map[string]any) (int, bool) {
	for i, cond := range conditions {
		if e.Evaluate(cond.If, inputs) {
			return i, true
		}
	}
	return -1, false
}

// splitOnOperator splits the expression around the earliest operator
// occurrence, so an operator-like sequence inside a quoted literal never wins
// over the real comparison operator in front of it. Ties at the same position
// resolve to the two-character form.
func splitOnOperator(expression string) (op, lhs, rhs string) {
	at := -1
	for _, cand := range operators {
		idx := strings.Index(expression, cand)
		if idx < 0 {
			continue
		}
		if at == -1 || idx < at {
			at, op = idx, cand
		}
	}
	if at < 0 {
		return "", "", ""
	}
	return op, strings.TrimSpace(expression[:at]), strings.TrimSpace(expression[at+len(op):])
}

// parseLiteral decodes the right-hand side. Order: quoted string, boolean,
// null, numeric, raw string.
func parseLiteral(raw string) any {
	if len(raw) >= 2 {
		first, last := raw[0], raw[len(raw)-1]
		if (first == '\'' && last == '\'') || (first == '"' && last == '"') {
			return raw[1 : len(raw)-1]
		}
	}
	switch raw {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	return raw
}

// looseEqual implements type-coercing equality: numeric comparison when both
// sides coerce to numbers, string comparison otherwise.
func looseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	af, aerr := cast.ToFloat64E(a)
	bf, berr := cast.ToFloat64E(b)
	if aerr == nil && berr == nil {
		return af == bf
	}
	return cast.ToString(a) == cast.ToString(b)
}

// compare applies native value ordering: numeric when both sides coerce,
// lexicographic when both are strings, false otherwise.
func compare(a, b any, ok func(int) bool) bool {
	if a == nil || b == nil {
		return false
	}
	af, aerr := cast.ToFloat64E(a)
	bf, berr := cast.ToFloat64E(b)
	if aerr == nil && berr == nil {
		switch {
		case af < bf:
			return ok(-1)
		case af > bf:
			return ok(1)
		default:
			return ok(0)
		}
	}
	as, aIsStr := a.(string)
	bs, bIsStr := b.(string)
	if aIsStr && bIsStr {
		return ok(strings.Compare(as, bs))
	}
	return false
}
