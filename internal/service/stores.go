package service

import (
	"context"

	"homeplan/internal/model"
	"homeplan/internal/repository"
	"homeplan/internal/stage"
	"homeplan/pkg/outbox"
)

// ProjectStore is implemented by repository.ProjectRepository.
type ProjectStore interface {
	Insert(ctx context.Context, p *model.Project) error
	Get(ctx context.Context, id string) (*model.Project, error)
	GetLatestByUser(ctx context.Context, userID string) (*model.Project, error)
	UpdateStage(ctx context.Context, id string, s *stage.Stage, event *outbox.Event) error
	UpdateStatus(ctx context.Context, id string, status model.ProjectStatus, progress int) error
}

// TaskStore is implemented by repository.TaskRepository.
type TaskStore interface {
	Get(ctx context.Context, id string) (*model.Task, error)
	ListByProject(ctx context.Context, projectID string) ([]model.Task, error)
	SetCompleted(ctx context.Context, id string, completed bool) (*model.Task, error)
}

// MilestoneStore is implemented by repository.MilestoneRepository.
type MilestoneStore interface {
	ListByProject(ctx context.Context, projectID string) ([]model.Milestone, error)
}

// PlanStore is implemented by repository.PlanWriter.
type PlanStore interface {
	WritePlan(ctx context.Context, projectID string, tasks []model.TaskDraft, milestones []model.MilestoneDraft, reset bool, event *outbox.Event) (*repository.PlanResult, error)
	AppendTasks(ctx context.Context, projectID string, tasks []model.TaskDraft, pin *stage.Stage, event *outbox.Event) ([]model.Task, error)
}

// Caller is the authenticated user behind a request or message.
type Caller struct {
	UserID string
	Role   string
}
