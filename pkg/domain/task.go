package domain

// ValidationRules holds the optional, declarative constraints for a field.
// All rules are opportunistic: an absent rule never blocks input.
type ValidationRules struct {
	Pattern   string `json:"pattern,omitempty" yaml:"pattern,omitempty" mapstructure:"pattern"`
	MinLength int    `json:"min_length,omitempty" yaml:"min_length,omitempty" mapstructure:"min_length"`
	MaxLength int    `json:"max_length,omitempty" yaml:"max_length,omitempty" mapstructure:"max_length"`
}

// FieldOption is one selectable choice for option-typed fields.
type FieldOption struct {
	Value string `json:"value" yaml:"value" mapstructure:"value"`
	Label string `json:"label,omitempty" yaml:"label,omitempty" mapstructure:"label"`
}

// FieldDefinition describes a single data-collection field within a task schema.
type FieldDefinition struct {
	Name     string `json:"name" yaml:"name" mapstructure:"name"`
	Label    string `json:"label,omitempty" yaml:"label,omitempty" mapstructure:"label"`
	Type     string `json:"type,omitempty" yaml:"type,omitempty" mapstructure:"type"`
	Required bool   `json:"required,omitempty" yaml:"required,omitempty" mapstructure:"required"`

	// InheritFrom names a *different* field in the parent task whose attributes
	// this field copies before applying its own overrides. It is consumed during
	// inheritance resolution and cleared on the merged result.
	InheritFrom string `json:"inherit_from,omitempty" yaml:"inherit_from,omitempty" mapstructure:"inherit_from"`

	Validation *ValidationRules `json:"validation,omitempty" yaml:"validation,omitempty" mapstructure:"validation"`
	Options    []FieldOption    `json:"options,omitempty" yaml:"options,omitempty" mapstructure:"options"`
}

// TaskDefinition is a reusable, inheritable schema for one unit of data collection.
// A loaded definition may reference a parent via Extends; the inheritance resolver
// merges the ancestor chain into a single, self-contained value.
type TaskDefinition struct {
	ID          string `json:"id" yaml:"id" validate:"required"`
	Name        string `json:"name" yaml:"name" validate:"required"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Version     string `json:"version,omitempty" yaml:"version,omitempty"`

	// Extends is a reference (loader path) to the parent task, if any.
	Extends string `json:"extends,omitempty" yaml:"extends,omitempty"`

	// Component is an opaque UI-component reference. The engine never interprets
	// it; rendering collaborators map it externally.
	Component string `json:"component" yaml:"component" validate:"required"`

	RequiredFields []string          `json:"required_fields,omitempty" yaml:"required_fields,omitempty"`
	Fields         []FieldDefinition `json:"fields,omitempty" yaml:"fields,omitempty"`

	// Outputs lists the field names this task is expected to produce.
	Outputs []string `json:"outputs,omitempty" yaml:"outputs,omitempty"`

	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Field returns the field definition with the given name, if present.
func (t *TaskDefinition) Field(name string) (FieldDefinition, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDefinition{}, false
}

// Clone returns a deep copy of the task definition, so resolution and
// compilation never mutate loader-owned values.
func (t *TaskDefinition) Clone() *TaskDefinition {
	if t == nil {
		return nil
	}
	out := *t
	out.RequiredFields = append([]string(nil), t.RequiredFields...)
	out.Outputs = append([]string(nil), t.Outputs...)
	out.Tags = append([]string(nil), t.Tags...)
	out.Fields = CloneFields(t.Fields)
	return &out
}

// CloneFields deep-copies a field schema, including validation blocks.
func CloneFields(fields []FieldDefinition) []FieldDefinition {
	if fields == nil {
		return nil
	}
	out := make([]FieldDefinition, len(fields))
	for i, f := range fields {
		out[i] = f
		if f.Validation != nil {
			v := *f.Validation
			out[i].Validation = &v
		}
		out[i].Options = append([]FieldOption(nil), f.Options...)
	}
	return out
}
