package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"homeplan/internal/model"
)

type TaskRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTaskRepository(db *pgxpool.Pool, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{db: db, logger: logger}
}

func (r *TaskRepository) Get(ctx context.Context, id string) (*model.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}
	t, err := scanTask(r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "task", id)
	}
	return &t, nil
}

// ListByProject returns tasks by due date; undated tasks come last.
func (r *TaskRepository) ListByProject(ctx context.Context, projectID string) ([]model.Task, error) {
	r.logger.Debug("Listing tasks for project", zap.String("project_id", projectID))
	query := `
        SELECT ` + taskColumns + `
        FROM tasks
        WHERE project_id = $1
        ORDER BY due_date ASC NULLS LAST, created_at ASC
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to query tasks", zap.String("project_id", projectID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			r.logger.Error("Failed to scan task row", zap.Error(err))
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) SetCompleted(ctx context.Context, id string, completed bool) (*model.Task, error) {
	query := `
        UPDATE tasks
        SET completed = $1
        WHERE id = $2
        RETURNING ` + taskColumns
	t, err := scanTask(r.db.QueryRow(ctx, query, completed, id))
	if err != nil {
		return nil, notFound(err, "task", id)
	}
	r.logger.Info("Task completion updated",
		zap.String("task_id", id),
		zap.Bool("completed", completed),
	)
	return &t, nil
}

func insertTask(ctx context.Context, q querier, d model.TaskDraft) (model.Task, error) {
	resources, err := resourcesParam(d.Resources)
	if err != nil {
		return model.Task{}, fmt.Errorf("encode resources: %w", err)
	}
	t := model.Task{
		ID:          uuid.NewString(),
		ProjectID:   d.ProjectID,
		Title:       d.Title,
		Description: d.Description,
		DueDate:     d.DueDate,
		Completed:   d.Completed,
		DIYGuidance: d.DIYGuidance,
		CostSavings: d.CostSavings,
		Resources:   d.Resources,
	}
	query := `
        INSERT INTO tasks (id, project_id, title, description, due_date, completed, diy_guidance, cost_savings, resources)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING created_at
    `
	err = q.QueryRow(ctx, query,
		t.ID,
		t.ProjectID,
		t.Title,
		t.Description,
		t.DueDate.TimePtr(),
		t.Completed,
		t.DIYGuidance,
		t.CostSavings,
		resources,
	).Scan(&t.CreatedAt)
	return t, err
}

// deleteByProject only accepts the fixed table names used in this package.
func deleteByProject(ctx context.Context, q querier, table, projectID string) (int64, error) {
	var query string
	switch table {
	case "tasks":
		query = `DELETE FROM tasks WHERE project_id = $1`
	case "milestones":
		query = `DELETE FROM milestones WHERE project_id = $1`
	default:
		return 0, fmt.Errorf("deleteByProject: unknown table %q", table)
	}
	tag, err := q.Exec(ctx, query, projectID)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", table, err)
	}
	return tag.RowsAffected(), nil
}
