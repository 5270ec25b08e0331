package domain

// Profile identifies the kind of entity being onboarded. The selector matches
// it against each workflow's applicability predicate.
type Profile struct {
	EntityType   string `json:"entity_type" yaml:"entity_type"`
	Jurisdiction string `json:"jurisdiction,omitempty" yaml:"jurisdiction,omitempty"`
}

// Applicability is the optional predicate restricting which profiles a
// workflow applies to.
type Applicability struct {
	EntityType    string   `json:"entity_type,omitempty" yaml:"entity_type,omitempty"`
	Jurisdictions []string `json:"jurisdictions,omitempty" yaml:"jurisdictions,omitempty"`
}

// HasJurisdiction reports whether the predicate's jurisdiction set contains j.
func (a *Applicability) HasJurisdiction(j string) bool {
	for _, cand := range a.Jurisdictions {
		if cand == j {
			return true
		}
	}
	return false
}

// StageDefinition is an organizational grouping of steps. Stages never gate
// execution; they exist for reporting only.
type StageDefinition struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// StepCondition is one conditional branch of a transition rule. Conditions are
// evaluated top-to-bottom; the first whose expression holds wins.
type StepCondition struct {
	// If is a single comparison expression, e.g. "input.risk_score > 70".
	If string `json:"if" yaml:"if"`
	// Goto is the target step ID (or TerminalStep).
	Goto string `json:"goto" yaml:"goto"`
}

// StepNext is the transition rule of a step: an ordered condition list plus a
// mandatory default target.
type StepNext struct {
	Conditions []StepCondition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Default    string          `json:"default" yaml:"default"`
}

// StepReference is one node in a workflow definition: a task reference plus a
// transition rule, optionally assigned to a stage.
type StepReference struct {
	ID    string   `json:"id" yaml:"id"`
	Stage string   `json:"stage,omitempty" yaml:"stage,omitempty"`
	Task  string   `json:"task" yaml:"task"`
	Next  StepNext `json:"next" yaml:"next"`
}

// WorkflowDefinition is the declarative description of an onboarding process:
// an ordered step list grouped into stages, applicable to matching profiles.
type WorkflowDefinition struct {
	ID        string          `json:"id" yaml:"id" validate:"required"`
	Name      string          `json:"name" yaml:"name" validate:"required"`
	Version   string          `json:"version,omitempty" yaml:"version,omitempty"`
	AppliesTo *Applicability  `json:"applies_to,omitempty" yaml:"applies_to,omitempty"`
	Stages    []StageDefinition `json:"stages,omitempty" yaml:"stages,omitempty"`
	Steps     []StepReference `json:"steps" yaml:"steps" validate:"min=1"`
}
