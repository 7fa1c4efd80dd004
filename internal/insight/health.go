// Package insight derives dashboard summaries from a project's tasks.
package insight

import (
	"fmt"

	"homeplan/internal/caldate"
	"homeplan/internal/model"
)

type HealthLabel string

const (
	HealthExcellent HealthLabel = "Excellent"
	HealthGood      HealthLabel = "Good"
	HealthAtRisk    HealthLabel = "At Risk"
	HealthCritical  HealthLabel = "Critical"
)

// overduePenalty is the score lost per overdue task.
const overduePenalty = 15

type HealthReport struct {
	Score   int         `json:"score"`
	Label   HealthLabel `json:"label"`
	Message string      `json:"message"`
	Overdue int         `json:"overdue"`
}

// Overdue counts incomplete tasks due strictly before today. Undated tasks are never overdue.
func Overdue(tasks []model.Task, today caldate.Date) int {
	n := 0
	for _, t := range tasks {
		if !t.Completed && !t.DueDate.IsZero() && t.DueDate.Before(today) {
			n++
		}
	}
	return n
}

// Health scores a project from 100 down by overdue tasks.
func Health(tasks []model.Task, today caldate.Date) HealthReport {
	if len(tasks) == 0 {
		return HealthReport{Score: 100, Label: HealthExcellent, Message: "No active tasks."}
	}

	overdue := Overdue(tasks, today)
	r := HealthReport{
		Score:   max(0, 100-overdue*overduePenalty),
		Label:   HealthExcellent,
		Message: "Your project is on track.",
		Overdue: overdue,
	}
	switch {
	case r.Score < 50:
		r.Label, r.Message = HealthCritical, "Significant delays detected."
	case r.Score < 70:
		r.Label, r.Message = HealthAtRisk, fmt.Sprintf("Multiple tasks overdue (%d).", overdue)
	case r.Score < 90:
		r.Label, r.Message = HealthGood, fmt.Sprintf("%d task(s) overdue.", overdue)
	}
	return r
}
