package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"homeplan/internal/model"
)

type MilestoneRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewMilestoneRepository(db *pgxpool.Pool, logger *zap.Logger) *MilestoneRepository {
	return &MilestoneRepository{db: db, logger: logger}
}

func (r *MilestoneRepository) ListByProject(ctx context.Context, projectID string) ([]model.Milestone, error) {
	query := `
        SELECT ` + milestoneColumns + `
        FROM milestones
        WHERE project_id = $1
        ORDER BY date ASC NULLS LAST, created_at ASC
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to query milestones", zap.String("project_id", projectID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	milestones := []model.Milestone{}
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			r.logger.Error("Failed to scan milestone row", zap.Error(err))
			return nil, err
		}
		milestones = append(milestones, m)
	}
	return milestones, rows.Err()
}

func insertMilestone(ctx context.Context, q querier, d model.MilestoneDraft) (model.Milestone, error) {
	m := model.Milestone{
		ID:        uuid.NewString(),
		ProjectID: d.ProjectID,
		Title:     d.Title,
		Date:      d.Date,
		Amount:    d.Amount,
		Status:    d.Status,
	}
	query := `
        INSERT INTO milestones (id, project_id, title, date, amount, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at
    `
	err := q.QueryRow(ctx, query,
		m.ID,
		m.ProjectID,
		m.Title,
		m.Date.TimePtr(),
		m.Amount,
		m.Status,
	).Scan(&m.CreatedAt)
	return m, err
}
