package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"homeplan/internal/caldate"
	"homeplan/internal/model"
	"homeplan/internal/stage"
)

// querier is satisfied by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	projectColumns   = `id, user_id, name, address, status, progress, stage, created_at, updated_at`
	taskColumns      = `id, project_id, title, description, due_date, completed, diy_guidance, cost_savings, resources, created_at`
	milestoneColumns = `id, project_id, title, date, amount, status, created_at`
)

func notFound(err error, what, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", what, id, model.ErrNotFound)
	}
	return err
}

func scanProject(row pgx.Row) (*model.Project, error) {
	var p model.Project
	var st *string
	if err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Address,
		&p.Status,
		&p.Progress,
		&st,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if st != nil {
		s := stage.Stage(*st)
		p.Stage = &s
	}
	return &p, nil
}

func scanTask(row pgx.Row) (model.Task, error) {
	var t model.Task
	var due *time.Time
	var resources []byte
	if err := row.Scan(
		&t.ID,
		&t.ProjectID,
		&t.Title,
		&t.Description,
		&due,
		&t.Completed,
		&t.DIYGuidance,
		&t.CostSavings,
		&resources,
		&t.CreatedAt,
	); err != nil {
		return t, err
	}
	t.DueDate = caldate.Ptr(due)
	if len(resources) > 0 {
		if err := json.Unmarshal(resources, &t.Resources); err != nil {
			return t, fmt.Errorf("decode resources of task %s: %w", t.ID, err)
		}
	}
	return t, nil
}

func scanMilestone(row pgx.Row) (model.Milestone, error) {
	var m model.Milestone
	var date *time.Time
	if err := row.Scan(
		&m.ID,
		&m.ProjectID,
		&m.Title,
		&date,
		&m.Amount,
		&m.Status,
		&m.CreatedAt,
	); err != nil {
		return m, err
	}
	m.Date = caldate.Ptr(date)
	return m, nil
}

func stageParam(s *stage.Stage) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}

func resourcesParam(r []model.Resource) ([]byte, error) {
	if r == nil {
		r = []model.Resource{}
	}
	return json.Marshal(r)
}
