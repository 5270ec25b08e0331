// Package validator lints compiled machines beyond the structural checks the
// compiler enforces. The compiler guarantees every transition target exists;
// this package reports steps that exist but can never be reached.
package validator

import (
	"fmt"
	"strings"

	"github.com/gangway-io/gangway/pkg/domain"
)

// UnreachableStepsError lists steps that no transition path from the initial
// step can reach.
type UnreachableStepsError struct {
	WorkflowID string
	StepIDs    []string
}

func (e *UnreachableStepsError) Error() string {
	return fmt.Sprintf("workflow %q has unreachable steps: %s",
		e.WorkflowID, strings.Join(e.StepIDs, ", "))
}

// ValidateReachability crawls the machine from its initial step, following
// every conditional and default transition, and fails if any declared step is
// never visited. Crawling ignores condition semantics: a branch counts as
// reachable even if its expression could never hold at runtime.
func ValidateReachability(machine *domain.Machine) error {
	if len(machine.Steps) == 0 {
		return nil
	}

	visited := make(map[string]bool, len(machine.Steps))
	queue := []string{machine.InitialStepID}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		if id == domain.TerminalStep || visited[id] {
			continue
		}
		visited[id] = true

		step, ok := machine.Step(id)
		if !ok {
			// The compiler rejects unknown targets, so this only fires on a
			// hand-built machine.
			return fmt.Errorf("workflow %q references unknown step %q", machine.WorkflowID, id)
		}

		for _, cond := range step.Next.Conditions {
			queue = append(queue, cond.Goto)
		}
		if step.Next.Default != "" {
			queue = append(queue, step.Next.Default)
		}
	}

	var unreachable []string
	for _, id := range machine.StepIDs() {
		if !visited[id] {
			unreachable = append(unreachable, id)
		}
	}
	if len(unreachable) > 0 {
		return &UnreachableStepsError{WorkflowID: machine.WorkflowID, StepIDs: unreachable}
	}
	return nil
}
