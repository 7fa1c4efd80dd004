package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"homeplan/internal/model"
	"homeplan/internal/stage"
	"homeplan/pkg/outbox"
)

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{db: db, logger: logger}
}

// Insert assigns p an id when it has none.
func (r *ProjectRepository) Insert(ctx context.Context, p *model.Project) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = model.ProjectPlanning
	}
	if err := p.Validate(); err != nil {
		return err
	}

	r.logger.Debug("Inserting project",
		zap.String("user_id", p.UserID),
		zap.String("name", p.Name),
	)

	query := `
        INSERT INTO projects (id, user_id, name, address, status, progress, stage)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query,
		p.ID,
		p.UserID,
		p.Name,
		p.Address,
		p.Status,
		p.Progress,
		stageParam(p.Stage),
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to insert project", zap.Error(err))
		return err
	}

	r.logger.Info("Project inserted successfully",
		zap.String("project_id", p.ID),
		zap.String("user_id", p.UserID),
	)
	return nil
}

func (r *ProjectRepository) Get(ctx context.Context, id string) (*model.Project, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("project %s: %w", id, model.ErrNotFound)
	}
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	p, err := scanProject(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "project", id)
	}
	return p, nil
}

// GetLatestByUser returns the user's most recently created project.
func (r *ProjectRepository) GetLatestByUser(ctx context.Context, userID string) (*model.Project, error) {
	query := `
        SELECT ` + projectColumns + `
        FROM projects
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT 1
    `
	p, err := scanProject(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, notFound(err, "project for user", userID)
	}
	return p, nil
}

// UpdateStage sets (or clears, when s is nil) the explicit stage and
// records event in the same transaction.
func (r *ProjectRepository) UpdateStage(ctx context.Context, id string, s *stage.Stage, event *outbox.Event) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := updateStage(ctx, tx, id, s); err != nil {
		return err
	}
	if event != nil {
		if err := outbox.InsertEvent(ctx, tx, event); err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		r.logger.Error("Failed to commit stage update", zap.String("project_id", id), zap.Error(err))
		return fmt.Errorf("commit tx: %w", err)
	}

	r.logger.Info("Project stage updated",
		zap.String("project_id", id),
		zap.Stringp("stage", stageParam(s)),
	)
	return nil
}

func (r *ProjectRepository) UpdateStatus(ctx context.Context, id string, status model.ProjectStatus, progress int) error {
	if !status.Valid() {
		return fmt.Errorf("invalid project status %q", status)
	}
	tag, err := r.db.Exec(ctx, `
        UPDATE projects
        SET status = $1, progress = $2, updated_at = NOW()
        WHERE id = $3
    `, status, progress, id)
	if err != nil {
		r.logger.Error("Failed to update project status", zap.String("project_id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project %s: %w", id, model.ErrNotFound)
	}
	return nil
}

func updateStage(ctx context.Context, q querier, id string, s *stage.Stage) error {
	tag, err := q.Exec(ctx, `
        UPDATE projects
        SET stage = $1, updated_at = NOW()
        WHERE id = $2
    `, stageParam(s), id)
	if err != nil {
		return fmt.Errorf("update stage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project %s: %w", id, model.ErrNotFound)
	}
	return nil
}

// lockProject serialises plan writes for one project.
func lockProject(ctx context.Context, tx pgx.Tx, id string) error {
	var got string
	err := tx.QueryRow(ctx, `SELECT id FROM projects WHERE id = $1 FOR UPDATE`, id).Scan(&got)
	return notFound(err, "project", id)
}
