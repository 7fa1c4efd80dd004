package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"homeplan/internal/model"
	"homeplan/internal/stage"
	"homeplan/pkg/outbox"
)

// PlanResult holds the rows a plan write created.
type PlanResult struct {
	Tasks      []model.Task
	Milestones []model.Milestone
	Removed    int64
}

// PlanWriter stores generated plans. Every write is a single transaction
// that also records its outbox event, so readers never see half a plan.
type PlanWriter struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPlanWriter(db *pgxpool.Pool, logger *zap.Logger) *PlanWriter {
	return &PlanWriter{db: db, logger: logger}
}

// WritePlan inserts tasks and milestones for projectID. Without reset it
// fails with model.ErrPlanExists when the project already has tasks; with
// reset the previous tasks and milestones are deleted first.
func (w *PlanWriter) WritePlan(
	ctx context.Context,
	projectID string,
	tasks []model.TaskDraft,
	milestones []model.MilestoneDraft,
	reset bool,
	event *outbox.Event,
) (*PlanResult, error) {
	tx, err := w.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockProject(ctx, tx, projectID); err != nil {
		return nil, err
	}

	res := &PlanResult{}
	if reset {
		n, err := deleteByProject(ctx, tx, "tasks", projectID)
		if err != nil {
			return nil, err
		}
		if _, err := deleteByProject(ctx, tx, "milestones", projectID); err != nil {
			return nil, err
		}
		res.Removed = n
	} else {
		var exists bool
		err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tasks WHERE project_id = $1)`, projectID).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("check existing plan: %w", err)
		}
		if exists {
			return nil, fmt.Errorf("project %s: %w", projectID, model.ErrPlanExists)
		}
	}

	for _, d := range tasks {
		d.ProjectID = projectID
		t, err := insertTask(ctx, tx, d)
		if err != nil {
			return nil, fmt.Errorf("insert task %q: %w", d.Title, err)
		}
		res.Tasks = append(res.Tasks, t)
	}
	for _, d := range milestones {
		d.ProjectID = projectID
		m, err := insertMilestone(ctx, tx, d)
		if err != nil {
			return nil, fmt.Errorf("insert milestone %q: %w", d.Title, err)
		}
		res.Milestones = append(res.Milestones, m)
	}

	if event != nil {
		if err := outbox.InsertEvent(ctx, tx, event); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		w.logger.Error("Failed to commit plan", zap.String("project_id", projectID), zap.Error(err))
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	w.logger.Info("Plan written",
		zap.String("project_id", projectID),
		zap.Int("tasks", len(res.Tasks)),
		zap.Int("milestones", len(res.Milestones)),
		zap.Int64("removed", res.Removed),
	)
	return res, nil
}

// AppendTasks adds tasks to an existing plan and optionally pins the
// project's stage, in one transaction with event.
func (w *PlanWriter) AppendTasks(
	ctx context.Context,
	projectID string,
	tasks []model.TaskDraft,
	pin *stage.Stage,
	event *outbox.Event,
) ([]model.Task, error) {
	tx, err := w.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockProject(ctx, tx, projectID); err != nil {
		return nil, err
	}

	created := make([]model.Task, 0, len(tasks))
	for _, d := range tasks {
		d.ProjectID = projectID
		t, err := insertTask(ctx, tx, d)
		if err != nil {
			return nil, fmt.Errorf("insert task %q: %w", d.Title, err)
		}
		created = append(created, t)
	}
	if pin != nil {
		if err := updateStage(ctx, tx, projectID, pin); err != nil {
			return nil, err
		}
	}
	if event != nil {
		if err := outbox.InsertEvent(ctx, tx, event); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	w.logger.Info("Tasks appended",
		zap.String("project_id", projectID),
		zap.Int("tasks", len(created)),
	)
	return created, nil
}
