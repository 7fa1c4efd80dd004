package model

import (
	"time"

	"homeplan/internal/caldate"
)

// Resource is a reference link attached to a task.
type Resource struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

type Task struct {
	ID          string       `json:"id"`
	ProjectID   string       `json:"project_id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	DueDate     caldate.Date `json:"due_date"`
	Completed   bool         `json:"completed"`
	DIYGuidance string       `json:"diy_guidance,omitempty"`
	CostSavings string       `json:"cost_savings,omitempty"`
	Resources   []Resource   `json:"resources,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// StageTitle and IsCompleted let the stage classifier read tasks directly.
func (t Task) StageTitle() string { return t.Title }
func (t Task) IsCompleted() bool  { return t.Completed }

// TaskDraft is a task that has not been stored yet.
type TaskDraft struct {
	ProjectID   string       `json:"project_id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	DueDate     caldate.Date `json:"due_date"`
	Completed   bool         `json:"completed"`
	DIYGuidance string       `json:"diy_guidance,omitempty"`
	CostSavings string       `json:"cost_savings,omitempty"`
	Resources   []Resource   `json:"resources,omitempty"`
}

func (t TaskDraft) StageTitle() string { return t.Title }
func (t TaskDraft) IsCompleted() bool  { return t.Completed }
