package model

import (
	"fmt"
	"time"

	"homeplan/internal/stage"
)

type ProjectStatus string

const (
	ProjectPlanning     ProjectStatus = "Planning"
	ProjectPermitting   ProjectStatus = "Permitting"
	ProjectConstruction ProjectStatus = "Construction"
	ProjectCompleted    ProjectStatus = "Completed"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanning, ProjectPermitting, ProjectConstruction, ProjectCompleted:
		return true
	}
	return false
}

type Project struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	Name      string        `json:"name"`
	Address   string        `json:"address"`
	Status    ProjectStatus `json:"status"`
	Progress  int           `json:"progress"`
	Stage     *stage.Stage  `json:"stage"` // nil: inferred from tasks
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (p *Project) Validate() error {
	if p.UserID == "" {
		return fmt.Errorf("project: user_id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("project: name is required")
	}
	if !p.Status.Valid() {
		return fmt.Errorf("project: invalid status %q", p.Status)
	}
	if p.Progress < 0 || p.Progress > 100 {
		return fmt.Errorf("project: progress %d out of range 0..100", p.Progress)
	}
	if p.Stage != nil && !p.Stage.Valid() {
		return fmt.Errorf("project: invalid stage %q", *p.Stage)
	}
	return nil
}
