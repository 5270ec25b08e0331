package domain

import "math"

// Progress is a completion ratio over a set of steps.
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Percent   int `json:"percent"`
}

func ratio(completed, total int) Progress {
	p := Progress{Completed: completed, Total: total}
	// total == 0 is defined as 0%, never NaN.
	if total > 0 {
		p.Percent = int(math.Round(float64(completed) / float64(total) * 100))
	}
	return p
}

func completedSet(completedStepIDs []string) map[string]struct{} {
	set := make(map[string]struct{}, len(completedStepIDs))
	for _, id := range completedStepIDs {
		set[id] = struct{}{}
	}
	return set
}

// WorkflowProgress derives the workflow-level completion ratio: completed is
// the intersection of completedStepIDs with the machine's step IDs, so stray
// IDs from stale records never inflate the result.
func WorkflowProgress(m *Machine, completedStepIDs []string) Progress {
	done := completedSet(completedStepIDs)
	completed := 0
	for _, s := range m.Steps {
		if _, ok := done[s.ID]; ok {
			completed++
		}
	}
	return ratio(completed, len(m.Steps))
}

// StageReport is the per-stage completion ratio.
type StageReport struct {
	StageID string `json:"stage_id"`
	Name    string `json:"name,omitempty"`
	Progress
}

// StageProgress computes the completion ratio of every declared stage, in
// declaration order. A stage with zero member steps reports 0% by convention,
// indistinguishable from "not started".
func StageProgress(m *Machine, completedStepIDs []string) []StageReport {
	done := completedSet(completedStepIDs)
	reports := make([]StageReport, 0, len(m.Stages))
	for _, stage := range m.Stages {
		completed, total := 0, 0
		for _, s := range m.Steps {
			if s.Stage != stage.ID {
				continue
			}
			total++
			if _, ok := done[s.ID]; ok {
				completed++
			}
		}
		reports = append(reports, StageReport{
			StageID:  stage.ID,
			Name:     stage.Name,
			Progress: ratio(completed, total),
		})
	}
	return reports
}

// StageCompleted reports whether the stage has at least one member step and
// every member step is completed. Stages are reporting-only: the transition
// engine never consults this.
func StageCompleted(m *Machine, stageID string, completedStepIDs []string) bool {
	done := completedSet(completedStepIDs)
	members := 0
	for _, s := range m.Steps {
		if s.Stage != stageID {
			continue
		}
		members++
		if _, ok := done[s.ID]; !ok {
			return false
		}
	}
	return members > 0
}
