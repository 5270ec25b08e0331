// Package graph renders compiled workflow machines as Mermaid flowcharts,
// used by the CLI to document and debug workflow definitions.
package graph

import (
	"fmt"
	"strings"

	"github.com/gangway-io/gangway/pkg/domain"
)

// Overlay contains per-entity progress to highlight on the rendered graph.
type Overlay struct {
	CompletedSteps []string
	CurrentStepID  string
}

// GenerateMermaid produces Mermaid flowchart syntax for a compiled machine.
// Steps are grouped into subgraphs by stage, conditional transitions carry
// their expression as the edge label, and the terminal target is rendered as
// a double circle. If an overlay is given, completed and current steps get
// highlighted styles.
func GenerateMermaid(machine *domain.Machine, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	writeStep := func(step domain.CompiledStep) {
		safeID := sanitizeMermaidID(step.ID)
		label := step.Title
		if label == "" {
			label = step.ID
		}
		// The initial step is a circle, everything else a rectangle.
		opener, closer := "[", "]"
		if step.ID == machine.InitialStepID {
			opener, closer = "((", "))"
		}
		sb.WriteString(fmt.Sprintf("        %s%s\"%s\"%s\n", safeID, opener, escapeMermaidLabel(label), closer))
	}

	rendered := make(map[string]bool)
	for _, stage := range machine.Stages {
		steps := machine.StageSteps(stage.ID)
		if len(steps) == 0 {
			continue
		}
		name := stage.Name
		if name == "" {
			name = stage.ID
		}
		sb.WriteString(fmt.Sprintf("    subgraph %s[\"%s\"]\n", sanitizeMermaidID(stage.ID), escapeMermaidLabel(name)))
		for _, step := range steps {
			writeStep(step)
			rendered[step.ID] = true
		}
		sb.WriteString("    end\n")
	}

	// Steps outside any declared stage.
	for _, step := range machine.Steps {
		if !rendered[step.ID] {
			writeStep(step)
		}
	}

	terminalNeeded := false
	for _, step := range machine.Steps {
		safeID := sanitizeMermaidID(step.ID)
		for _, cond := range step.Next.Conditions {
			if cond.Goto == domain.TerminalStep {
				terminalNeeded = true
			}
			sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n",
				safeID, escapeMermaidLabel(cond.If), sanitizeMermaidID(cond.Goto)))
		}
		if step.Next.Default != "" {
			if step.Next.Default == domain.TerminalStep {
				terminalNeeded = true
			}
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", safeID, sanitizeMermaidID(step.Next.Default)))
		}
	}

	if terminalNeeded {
		sb.WriteString(fmt.Sprintf("    %s(((\"done\")))\n", sanitizeMermaidID(domain.TerminalStep)))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text for contrast regardless of theme.
		sb.WriteString("    classDef completed fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.CompletedSteps {
			safeID := sanitizeMermaidID(id)
			if safeID == "" || seen[safeID] {
				continue
			}
			seen[safeID] = true
			sb.WriteString(fmt.Sprintf("    class %s completed;\n", safeID))
		}

		if overlay.CurrentStepID != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentStepID)))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

func escapeMermaidLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
