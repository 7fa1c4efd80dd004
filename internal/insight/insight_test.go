package insight

import (
	"testing"

	"homeplan/internal/caldate"
	"homeplan/internal/model"
)

var today = caldate.New(2025, 6, 15)

func overdueTasks(n int) []model.Task {
	tasks := make([]model.Task, n)
	for i := range tasks {
		tasks[i] = model.Task{Title: "late", DueDate: today.AddDays(-1 - i)}
	}
	return tasks
}

// --- Health ---

func TestHealth(t *testing.T) {
	tests := []struct {
		name    string
		tasks   []model.Task
		score   int
		label   HealthLabel
		message string
	}{
		{"no tasks", nil, 100, HealthExcellent, "No active tasks."},
		{"on track", []model.Task{{Title: "a", DueDate: today}}, 100, HealthExcellent, "Your project is on track."},
		{"one overdue", overdueTasks(1), 85, HealthGood, "1 task(s) overdue."},
		{"two overdue", overdueTasks(2), 70, HealthGood, "2 task(s) overdue."},
		{"three overdue", overdueTasks(3), 55, HealthAtRisk, "Multiple tasks overdue (3)."},
		{"four overdue", overdueTasks(4), 40, HealthCritical, "Significant delays detected."},
		{"floor at zero", overdueTasks(8), 0, HealthCritical, "Significant delays detected."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Health(tt.tasks, today)
			if got.Score != tt.score || got.Label != tt.label || got.Message != tt.message {
				t.Errorf("Health() = %+v, want {%d %s %q}", got, tt.score, tt.label, tt.message)
			}
		})
	}
}

func TestOverdue_IgnoresCompletedAndUndated(t *testing.T) {
	tasks := []model.Task{
		{Title: "done late", DueDate: today.AddDays(-3), Completed: true},
		{Title: "undated"},
		{Title: "due today", DueDate: today},
		{Title: "late", DueDate: today.AddDays(-1)},
	}
	if got := Overdue(tasks, today); got != 1 {
		t.Errorf("Overdue() = %d, want 1", got)
	}
}

// --- NextStep ---

func TestNextStep(t *testing.T) {
	tests := []struct {
		name       string
		hasProject bool
		tasks      []model.Task
		kind       StepKind
		task       string
	}{
		{"no project", false, nil, StepCreateProject, ""},
		{"empty plan", true, nil, StepGeneratePlan, ""},
		{
			"permit preferred over earlier task", true,
			[]model.Task{{Title: "Site survey"}, {Title: "Submit building permit application"}},
			StepPermitTask, "Submit building permit application",
		},
		{
			"zoning counts as permit work", true,
			[]model.Task{{Title: "ZONING check"}},
			StepPermitTask, "ZONING check",
		},
		{
			"completed permit skipped", true,
			[]model.Task{{Title: "Permit approved", Completed: true}, {Title: "Framing"}},
			StepNextTask, "Framing",
		},
		{
			"all done", true,
			[]model.Task{{Title: "Framing", Completed: true}},
			StepBrowseContractors, "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextStep(tt.hasProject, tt.tasks)
			if got.Kind != tt.kind {
				t.Fatalf("Kind = %s, want %s", got.Kind, tt.kind)
			}
			title := ""
			if got.Task != nil {
				title = got.Task.Title
			}
			if title != tt.task {
				t.Errorf("Task = %q, want %q", title, tt.task)
			}
			if got.Message == "" {
				t.Error("Message should not be empty")
			}
		})
	}
}
