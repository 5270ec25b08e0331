package domain

// TerminalStep is the designated transition target meaning "workflow complete".
const TerminalStep = "complete"

// CompiledStep is a step reference merged with its fully resolved task: the
// required-field list, field schema and component reference are denormalized
// onto the step while the original transition rule is retained. Produced once
// by the compiler and immutable thereafter.
type CompiledStep struct {
	ID    string `json:"id"`
	Stage string `json:"stage,omitempty"`

	TaskID      string `json:"task_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	// Component is the opaque UI-component reference carried over from the
	// task. Never interpreted by the engine.
	Component string `json:"component"`

	RequiredFields []string          `json:"required_fields,omitempty"`
	Fields         []FieldDefinition `json:"fields,omitempty"`
	Outputs        []string          `json:"outputs,omitempty"`

	Next StepNext `json:"next"`
}

// Machine is the fully compiled, indexed, validated workflow graph. A machine
// produced by the compiler guarantees that every transition target in every
// step resolves to a known step ID or TerminalStep.
type Machine struct {
	WorkflowID string            `json:"workflow_id"`
	Version    string            `json:"version,omitempty"`
	Stages     []StageDefinition `json:"stages,omitempty"`
	Steps      []CompiledStep    `json:"steps"`

	// InitialStepID is the first step in declaration order.
	InitialStepID string `json:"initial_step_id"`

	index map[string]*CompiledStep
}

// NewMachine builds a machine over the given compiled steps and constructs
// the ID index. The first step in declaration order becomes the initial step.
func NewMachine(workflowID, version string, stages []StageDefinition, steps []CompiledStep) *Machine {
	m := &Machine{
		WorkflowID: workflowID,
		Version:    version,
		Stages:     stages,
		Steps:      steps,
	}
	if len(steps) > 0 {
		m.InitialStepID = steps[0].ID
	}
	m.reindex()
	return m
}

func (m *Machine) reindex() {
	m.index = make(map[string]*CompiledStep, len(m.Steps))
	for i := range m.Steps {
		m.index[m.Steps[i].ID] = &m.Steps[i]
	}
}

// Step returns the compiled step with the given ID.
func (m *Machine) Step(id string) (*CompiledStep, bool) {
	if m.index == nil {
		m.reindex()
	}
	s, ok := m.index[id]
	return s, ok
}

// HasStep reports whether a step with the given ID exists in the machine.
func (m *Machine) HasStep(id string) bool {
	_, ok := m.Step(id)
	return ok
}

// StepIDs returns the step identifiers in declaration order.
func (m *Machine) StepIDs() []string {
	ids := make([]string, len(m.Steps))
	for i := range m.Steps {
		ids[i] = m.Steps[i].ID
	}
	return ids
}

// StageSteps returns the steps belonging to the given stage, in declaration order.
func (m *Machine) StageSteps(stageID string) []CompiledStep {
	var out []CompiledStep
	for _, s := range m.Steps {
		if s.Stage == stageID {
			out = append(out, s)
		}
	}
	return out
}

// Index returns the step index flattened to a plain map, keyed by step ID.
// Request layers embedding the engine serialize this map when handing a
// machine to clients; the internal lookup index never leaves the package.
func (m *Machine) Index() map[string]CompiledStep {
	out := make(map[string]CompiledStep, len(m.Steps))
	for _, s := range m.Steps {
		out[s.ID] = s
	}
	return out
}
