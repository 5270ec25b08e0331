package compiler

import (
	"context"
	"fmt"

	"github.com/gangway-io/gangway/pkg/domain"
	"github.com/gangway-io/gangway/pkg/ports"
)

// Resolver merges a task definition with its ancestor chain into a single
// self-contained value. Resolution never mutates its inputs.
type Resolver struct {
	loader ports.TaskLoader
}

// NewResolver creates a resolver that fetches parents through the given loader.
func NewResolver(loader ports.TaskLoader) *Resolver {
	return &Resolver{loader: loader}
}

// Resolve returns the task merged with its ancestors. A parentless task is
// returned as-is (modulo copying). Cycles in the ancestor chain fail with
// *domain.CircularInheritanceError reporting the full chain walked.
func (r *Resolver) Resolve(ctx context.Context, task *domain.TaskDefinition) (*domain.TaskDefinition, error) {
	return r.resolve(ctx, task, nil)
}

func (r *Resolver) resolve(ctx context.Context, task *domain.TaskDefinition, chain []string) (*domain.TaskDefinition, error) {
	for _, seen := range chain {
		if seen == task.ID {
			return nil, &domain.CircularInheritanceError{Chain: append(append([]string{}, chain...), task.ID)}
		}
	}

	if task.Extends == "" {
		return task.Clone(), nil
	}

	chain = append(chain, task.ID)

	rawParent, err := r.loader.LoadTask(ctx, task.Extends)
	if err != nil {
		return nil, fmt.Errorf("task %q: loading parent %q: %w", task.ID, task.Extends, err)
	}
	parent, err := r.resolve(ctx, rawParent, chain)
	if err != nil {
		return nil, err
	}

	return mergeTask(parent, task), nil
}

// mergeTask layers a child definition over its fully resolved parent.
// The child's identity fields win; empty descriptive fields fall back to the
// parent's. Field schemas merge by name (parent first), expected outputs
// concatenate without de-duplication.
func mergeTask(parent, child *domain.TaskDefinition) *domain.TaskDefinition {
	out := child.Clone()
	out.Extends = ""

	if out.Description == "" {
		out.Description = parent.Description
	}
	if out.Component == "" {
		out.Component = parent.Component
	}
	if len(out.RequiredFields) == 0 {
		out.RequiredFields = append([]string(nil), parent.RequiredFields...)
	}
	if len(out.Tags) == 0 {
		out.Tags = append([]string(nil), parent.Tags...)
	}

	out.Fields = mergeFields(parent.Fields, child.Fields)

	// Parent's outputs first, then the child's. Duplicates are the caller's
	// responsibility.
	outputs := append([]string(nil), parent.Outputs...)
	out.Outputs = append(outputs, child.Outputs...)

	return out
}

// mergeFields merges field schemas by name: parent fields keep their order; a
// child field with the same name overrides the parent's entirely; a child
// field with an inherit_from reference copies that parent field's attributes
// and layers its own overrides on top; remaining child fields append.
func mergeFields(parentFields, childFields []domain.FieldDefinition) []domain.FieldDefinition {
	merged := domain.CloneFields(parentFields)

	byName := make(map[string]int, len(merged))
	for i, f := range merged {
		byName[f.Name] = i
	}

	for _, cf := range childFields {
		resolved := cf
		if cf.InheritFrom != "" && cf.InheritFrom != cf.Name {
			if base, ok := fieldByName(parentFields, cf.InheritFrom); ok {
				resolved = overlayField(base, cf)
			}
		}
		resolved.InheritFrom = ""

		if i, ok := byName[resolved.Name]; ok {
			merged[i] = resolved
			continue
		}
		byName[resolved.Name] = len(merged)
		merged = append(merged, resolved)
	}

	return domain.CloneFields(merged)
}

func fieldByName(fields []domain.FieldDefinition, name string) (domain.FieldDefinition, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return domain.FieldDefinition{}, false
}

// overlayField copies the base field and applies the child's non-zero
// attributes over it. The child's name always wins; a field is required if
// either side marks it so.
func overlayField(base, child domain.FieldDefinition) domain.FieldDefinition {
	out := base
	out.Name = child.Name
	out.Required = base.Required || child.Required
	if child.Label != "" {
		out.Label = child.Label
	}
	if child.Type != "" {
		out.Type = child.Type
	}
	if child.Validation != nil {
		out.Validation = child.Validation
	}
	if len(child.Options) > 0 {
		out.Options = child.Options
	}
	return out
}
