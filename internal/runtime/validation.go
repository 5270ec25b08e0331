package runtime

import (
	"fmt"
	"regexp"

	"github.com/spf13/cast"

	"github.com/gangway-io/gangway/pkg/domain"
)

// emailPattern is deliberately permissive: anything with a local part, an @,
// and a dotted domain. Strict RFC validation belongs to upstream collectors.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationResult is the structured outcome of ValidateInputs. It is
// ordinary data, never an error: incomplete input is normal control flow.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ValidateInputs checks completeness plus the opportunistic per-field rules
// declared on the step's schema: email format, numeric coercibility, pattern
// and length constraints. It returns ordered human-readable errors and never
// panics on odd input values.
func (e *Engine) ValidateInputs(step *domain.CompiledStep, inputs map[string]any) ValidationResult {
	var errs []string

	for _, name := range e.MissingRequiredFields(step, inputs) {
		errs = append(errs, fmt.Sprintf("field %q is required", name))
	}

	for _, field := range step.Fields {
		val, ok := inputs[field.Name]
		if !ok || isEmptyValue(val) {
			continue
		}
		errs = append(errs, validateField(field, val)...)
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

func validateField(field domain.FieldDefinition, val any) []string {
	var errs []string
	str := cast.ToString(val)

	switch field.Type {
	case "email":
		if !emailPattern.MatchString(str) {
			errs = append(errs, fmt.Sprintf("field %q must be a valid email address", field.Name))
		}
	case "number":
		if _, err := cast.ToFloat64E(val); err != nil {
			errs = append(errs, fmt.Sprintf("field %q must be numeric", field.Name))
		}
	}

	rules := field.Validation
	if rules == nil {
		return errs
	}

	if rules.Pattern != "" {
		re, err := regexp.Compile(rules.Pattern)
		if err == nil && !re.MatchString(str) {
			errs = append(errs, fmt.Sprintf("field %q does not match the expected format", field.Name))
		}
	}
	if rules.MinLength > 0 && len(str) < rules.MinLength {
		errs = append(errs, fmt.Sprintf("field %q must be at least %d characters", field.Name, rules.MinLength))
	}
	if rules.MaxLength > 0 && len(str) > rules.MaxLength {
		errs = append(errs, fmt.Sprintf("field %q must be at most %d characters", field.Name, rules.MaxLength))
	}

	return errs
}
