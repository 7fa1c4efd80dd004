package insight

import (
	"regexp"

	"homeplan/internal/model"
)

type StepKind string

const (
	StepCreateProject     StepKind = "create_project"
	StepGeneratePlan      StepKind = "generate_plan"
	StepPermitTask        StepKind = "permit_task"
	StepNextTask          StepKind = "next_task"
	StepBrowseContractors StepKind = "browse_contractors"
)

var permitPattern = regexp.MustCompile(`(?i)permit|application|zoning`)

type Recommendation struct {
	Kind    StepKind    `json:"kind"`
	Message string      `json:"message"`
	Task    *model.Task `json:"task,omitempty"`
}

// NextStep picks the single most useful action. Tasks are scanned in the
// order given, so callers pass them sorted by due date.
func NextStep(hasProject bool, tasks []model.Task) Recommendation {
	if !hasProject {
		return Recommendation{Kind: StepCreateProject, Message: "Create your first project to get started."}
	}
	if len(tasks) == 0 {
		return Recommendation{
			Kind:    StepGeneratePlan,
			Message: "Generate a starter plan tailored to your project and municipality.",
		}
	}

	for i := range tasks {
		if !tasks[i].Completed && permitPattern.MatchString(tasks[i].Title) {
			t := tasks[i]
			return Recommendation{
				Kind:    StepPermitTask,
				Message: "Complete the permit task below to keep approvals moving.",
				Task:    &t,
			}
		}
	}
	for i := range tasks {
		if !tasks[i].Completed {
			t := tasks[i]
			return Recommendation{
				Kind:    StepNextTask,
				Message: "Tackle your next task to keep progress steady.",
				Task:    &t,
			}
		}
	}
	return Recommendation{
		Kind:    StepBrowseContractors,
		Message: "Invite or browse contractors to get quotes and move to construction.",
	}
}
