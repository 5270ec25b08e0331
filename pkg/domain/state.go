package domain

import "time"

// EntityState is the durable, per-entity record of onboarding progress.
// One record exists per entity; it is created once via explicit
// initialization and mutated by full replace or partial merge.
type EntityState struct {
	EntityID string `json:"entity_id"`

	// WorkflowID must be non-empty once initialized and must match the
	// machine in use.
	WorkflowID string `json:"workflow_id"`

	// CurrentStepID must exist in the machine's index or equal TerminalStep.
	CurrentStepID  string `json:"current_step_id"`
	CurrentStageID string `json:"current_stage_id,omitempty"`

	// Inputs is the field-name to collected-value map.
	Inputs map[string]any `json:"inputs"`

	CompletedSteps  []string `json:"completed_steps"`
	CompletedStages []string `json:"completed_stages"`

	// UpdatedAt advances on every mutation; stores refresh it server-side.
	UpdatedAt time.Time `json:"updated_at"`

	// Profile is an optional denormalized snapshot of the entity profile.
	Profile *Profile `json:"profile,omitempty"`
}

// NewEntityState creates a fresh record positioned at the given step, with
// empty inputs and completion lists.
func NewEntityState(entityID, workflowID, stepID string) *EntityState {
	return &EntityState{
		EntityID:        entityID,
		WorkflowID:      workflowID,
		CurrentStepID:   stepID,
		Inputs:          make(map[string]any),
		CompletedSteps:  []string{},
		CompletedStages: []string{},
		UpdatedAt:       time.Now().UTC(),
	}
}

// Clone returns a copy with its own input map and completion slices, so
// stores can hand out values callers may mutate freely.
func (s *EntityState) Clone() *EntityState {
	if s == nil {
		return nil
	}
	out := *s
	out.Inputs = make(map[string]any, len(s.Inputs))
	for k, v := range s.Inputs {
		out.Inputs[k] = v
	}
	out.CompletedSteps = append([]string(nil), s.CompletedSteps...)
	out.CompletedStages = append([]string(nil), s.CompletedStages...)
	if s.Profile != nil {
		p := *s.Profile
		out.Profile = &p
	}
	return &out
}

// Normalize replaces nil collections with empty ones. Stores call this after
// decoding so a hand-authored record with "inputs": null never hands callers
// a nil map to write into.
func (s *EntityState) Normalize() {
	if s.Inputs == nil {
		s.Inputs = make(map[string]any)
	}
	if s.CompletedSteps == nil {
		s.CompletedSteps = []string{}
	}
	if s.CompletedStages == nil {
		s.CompletedStages = []string{}
	}
}

// HasCompletedStep reports whether the step ID is in the completed list.
func (s *EntityState) HasCompletedStep(stepID string) bool {
	for _, id := range s.CompletedSteps {
		if id == stepID {
			return true
		}
	}
	return false
}
