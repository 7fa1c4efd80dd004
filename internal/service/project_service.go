package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	mqc "homeplan/contracts/mq"
	"homeplan/internal/caldate"
	"homeplan/internal/insight"
	"homeplan/internal/model"
	"homeplan/internal/plan"
	"homeplan/internal/stage"
	"homeplan/pkg/metrics"
	"homeplan/pkg/mq"
	"homeplan/pkg/outbox"
	"homeplan/pkg/rbac"
	"homeplan/pkg/trace"
)

// defaultChecklistDays is the due offset for checklist items without a timeline.
const defaultChecklistDays = 7

type ProjectService struct {
	projects   ProjectStore
	tasks      TaskStore
	milestones MilestoneStore
	plans      PlanStore
	templates  plan.Source
	logger     *zap.Logger
	now        func() time.Time
}

func NewProjectService(
	projects ProjectStore,
	tasks TaskStore,
	milestones MilestoneStore,
	plans PlanStore,
	templates plan.Source,
	logger *zap.Logger,
) *ProjectService {
	return &ProjectService{
		projects:   projects,
		tasks:      tasks,
		milestones: milestones,
		plans:      plans,
		templates:  templates,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *ProjectService) today() caldate.Date {
	return caldate.FromTime(s.now())
}

// authorize loads the project and checks that caller may perform permission on it.
func (s *ProjectService) authorize(ctx context.Context, caller Caller, projectID, permission string) (*model.Project, error) {
	p, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := rbac.CheckProjectAccess(caller.UserID, caller.Role, p.UserID, permission); err != nil {
		return nil, err
	}
	return p, nil
}

// --- Projects ---

func (s *ProjectService) CreateProject(ctx context.Context, caller Caller, name, address string) (*model.Project, error) {
	p := &model.Project{
		UserID:  caller.UserID,
		Name:    strings.TrimSpace(name),
		Address: strings.TrimSpace(address),
		Status:  model.ProjectPlanning,
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.projects.Insert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// --- Plan generation ---

// PlanSummary describes a generated plan.
type PlanSummary struct {
	ProjectID  string            `json:"project_id"`
	Requested  string            `json:"requested_template"`
	Template   string            `json:"template"`
	FellBack   bool              `json:"fell_back"`
	Reference  caldate.Date      `json:"reference_date"`
	Stage      stage.Stage       `json:"stage"`
	Removed    int64             `json:"removed"`
	Tasks      []model.Task      `json:"tasks"`
	Milestones []model.Milestone `json:"milestones"`
}

// GeneratePlan expands planType (falling back to the standard template)
// against today's date and stores it on the project. A project that already
// has tasks is refused with ErrPlanExists unless reset is set, in which case
// the old plan is replaced.
func (s *ProjectService) GeneratePlan(ctx context.Context, caller Caller, projectID, planType string, reset bool) (*PlanSummary, error) {
	p, err := s.authorize(ctx, caller, projectID, rbac.PermissionGeneratePlan)
	if err != nil {
		return nil, err
	}

	exp, err := plan.Expand(planType, s.today(), s.templates)
	if err != nil {
		s.logger.Error("Plan expansion failed",
			zap.String("project_id", projectID),
			zap.String("plan_type", planType),
			zap.Error(err),
		)
		return nil, err
	}
	exp.ForProject(p.ID)

	resulting := stage.Compute(p.Stage, exp.Tasks)
	ctx, traceID := trace.Ensure(ctx)
	event, err := outbox.NewEvent("project", p.ID, mq.RoutingPlanGenerated, traceID, mqc.PlanGeneratedPayload{
		UserID:     p.UserID,
		ProjectID:  p.ID,
		Requested:  planType,
		Template:   exp.Template,
		FellBack:   exp.FellBack,
		Reference:  exp.Reference.String(),
		Tasks:      len(exp.Tasks),
		Milestones: len(exp.Milestones),
		Stage:      string(resulting),
		TraceID:    traceID,
	})
	if err != nil {
		return nil, err
	}

	res, err := s.plans.WritePlan(ctx, p.ID, exp.Tasks, exp.Milestones, reset, event)
	if err != nil {
		return nil, err
	}

	metrics.IncrementPlanGeneration(exp.Template, exp.FellBack, len(res.Tasks), len(res.Milestones))
	if exp.FellBack {
		s.logger.Warn("Unknown plan type, used standard template",
			zap.String("project_id", p.ID),
			zap.String("plan_type", planType),
		)
	}
	s.logger.Info("Plan generated",
		zap.String("project_id", p.ID),
		zap.String("template", exp.Template),
		zap.Int("tasks", len(res.Tasks)),
		zap.Int("milestones", len(res.Milestones)),
		zap.String("trace_id", traceID),
	)

	return &PlanSummary{
		ProjectID:  p.ID,
		Requested:  planType,
		Template:   exp.Template,
		FellBack:   exp.FellBack,
		Reference:  exp.Reference,
		Stage:      resulting,
		Removed:    res.Removed,
		Tasks:      res.Tasks,
		Milestones: res.Milestones,
	}, nil
}

// Templates lists the plan types that can be requested.
func (s *ProjectService) Templates() []string {
	if c, ok := s.templates.(interface{ Names() []string }); ok {
		return c.Names()
	}
	return []string{plan.StandardTemplate}
}

// --- Stage ---

// StageView is a resolved stage with its display data.
type StageView struct {
	Stage       stage.Stage  `json:"stage"`
	Explicit    bool         `json:"explicit"`
	Label       string       `json:"label"`
	Description string       `json:"description"`
	Position    int          `json:"position"`
	Total       int          `json:"total"`
	Next        *stage.Stage `json:"next,omitempty"`
}

func newStageView(explicit *stage.Stage, tasks []model.Task) StageView {
	resolved := stage.Compute(explicit, tasks)
	metrics.IncrementStageResolution(string(resolved), explicit != nil)

	info := stage.Info(resolved)
	pos, total := stage.Progress(resolved)
	v := StageView{
		Stage:       resolved,
		Explicit:    explicit != nil,
		Label:       info.Label,
		Description: info.Description,
		Position:    pos,
		Total:       total,
	}
	if next, ok := stage.Next(resolved); ok {
		v.Next = &next
	}
	return v
}

func (s *ProjectService) Stage(ctx context.Context, caller Caller, projectID string) (StageView, error) {
	p, err := s.authorize(ctx, caller, projectID, rbac.PermissionReadProject)
	if err != nil {
		return StageView{}, err
	}
	tasks, err := s.tasks.ListByProject(ctx, p.ID)
	if err != nil {
		return StageView{}, err
	}
	return newStageView(p.Stage, tasks), nil
}

// SetStage pins the project to st, or returns it to auto-detection when st is nil.
func (s *ProjectService) SetStage(ctx context.Context, caller Caller, projectID string, st *stage.Stage) (StageView, error) {
	if st != nil && !st.Valid() {
		return StageView{}, fmt.Errorf("%w: unknown stage %q", ErrInvalidInput, *st)
	}
	p, err := s.authorize(ctx, caller, projectID, rbac.PermissionOverrideStage)
	if err != nil {
		return StageView{}, err
	}
	tasks, err := s.tasks.ListByProject(ctx, p.ID)
	if err != nil {
		return StageView{}, err
	}

	event, err := s.stageChangedEvent(ctx, caller, p, tasks, st)
	if err != nil {
		return StageView{}, err
	}
	if err := s.projects.UpdateStage(ctx, p.ID, st, event); err != nil {
		return StageView{}, err
	}
	return newStageView(st, tasks), nil
}

func (s *ProjectService) stageChangedEvent(ctx context.Context, caller Caller, p *model.Project, tasks []model.Task, st *stage.Stage) (*outbox.Event, error) {
	traceID := trace.FromContext(ctx)
	payload := mqc.StageChangedPayload{
		UserID:    caller.UserID,
		ProjectID: p.ID,
		Previous:  string(stage.Compute(p.Stage, tasks)),
		Current:   string(stage.Compute(st, tasks)),
		TraceID:   traceID,
	}
	if st != nil {
		payload.Explicit = string(*st)
	}
	return outbox.NewEvent("project", p.ID, mq.RoutingStageChanged, traceID, payload)
}

// --- Tasks ---

// ChecklistItem is one entry of a permit checklist.
type ChecklistItem struct {
	Title               string `json:"title"`
	TypicalTimelineDays int    `json:"typical_timeline_days"`
}

// AddChecklistTasks creates a task for every checklist item whose title the
// project does not have yet (case-insensitive), then pins the project to the
// permitting stage. It returns only the tasks it created.
func (s *ProjectService) AddChecklistTasks(ctx context.Context, caller Caller, projectID string, items []ChecklistItem) ([]model.Task, error) {
	p, err := s.authorize(ctx, caller, projectID, rbac.PermissionUpdateTask)
	if err != nil {
		return nil, err
	}
	existing, err := s.tasks.ListByProject(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(existing)+len(items))
	for _, t := range existing {
		seen[strings.ToLower(t.Title)] = true
	}

	today := s.today()
	var drafts []model.TaskDraft
	for _, it := range items {
		title := strings.TrimSpace(it.Title)
		key := strings.ToLower(title)
		if title == "" || seen[key] {
			continue
		}
		seen[key] = true

		days := it.TypicalTimelineDays
		if days <= 0 {
			days = defaultChecklistDays
		}
		drafts = append(drafts, model.TaskDraft{
			ProjectID: p.ID,
			Title:     title,
			DueDate:   today.AddDays(days),
		})
	}

	pin := stage.Ptr(stage.Permitting)
	event, err := s.stageChangedEvent(ctx, caller, p, existing, pin)
	if err != nil {
		return nil, err
	}
	created, err := s.plans.AppendTasks(ctx, p.ID, drafts, pin, event)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Checklist tasks added",
		zap.String("project_id", p.ID),
		zap.Int("requested", len(items)),
		zap.Int("created", len(created)),
	)
	return created, nil
}

// taskFor loads a task together with its project. Tasks of projects the
// caller does not own are reported as not found.
func (s *ProjectService) taskFor(ctx context.Context, caller Caller, taskID, permission string) (*model.Task, *model.Project, error) {
	t, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.authorize(ctx, caller, t.ProjectID, permission)
	var owner *rbac.OwnershipError
	if errors.As(err, &owner) {
		return nil, nil, fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	if err != nil {
		return nil, nil, err
	}
	return t, p, nil
}

// GetTask returns one task of a project the caller can read.
func (s *ProjectService) GetTask(ctx context.Context, caller Caller, taskID string) (*model.Task, error) {
	t, _, err := s.taskFor(ctx, caller, taskID, rbac.PermissionReadProject)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ToggleTask marks a task complete or incomplete and refreshes the project's progress.
func (s *ProjectService) ToggleTask(ctx context.Context, caller Caller, taskID string, completed bool) (*model.Task, error) {
	_, p, err := s.taskFor(ctx, caller, taskID, rbac.PermissionUpdateTask)
	if err != nil {
		return nil, err
	}

	updated, err := s.tasks.SetCompleted(ctx, taskID, completed)
	if err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListByProject(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if err := s.projects.UpdateStatus(ctx, p.ID, p.Status, completionPercent(tasks)); err != nil {
		// progress is advisory; the toggle itself succeeded
		s.logger.Warn("Failed to refresh project progress", zap.String("project_id", p.ID), zap.Error(err))
	}
	return updated, nil
}

func completionPercent(tasks []model.Task) int {
	if len(tasks) == 0 {
		return 0
	}
	done := 0
	for _, t := range tasks {
		if t.Completed {
			done++
		}
	}
	return done * 100 / len(tasks)
}

// --- Overview ---

// Overview is everything the dashboard shows for one project.
type Overview struct {
	Project    *model.Project         `json:"project"`
	Stage      *StageView             `json:"stage,omitempty"`
	Health     insight.HealthReport   `json:"health"`
	NextStep   insight.Recommendation `json:"next_step"`
	Tasks      []model.Task           `json:"tasks"`
	Milestones []model.Milestone      `json:"milestones"`
}

func (s *ProjectService) Overview(ctx context.Context, caller Caller, projectID string) (*Overview, error) {
	p, err := s.authorize(ctx, caller, projectID, rbac.PermissionReadProject)
	if err != nil {
		return nil, err
	}
	return s.overview(ctx, p)
}

// CurrentOverview returns the overview of the caller's latest project. A
// caller without projects gets an empty overview recommending to create one.
func (s *ProjectService) CurrentOverview(ctx context.Context, caller Caller) (*Overview, error) {
	p, err := s.projects.GetLatestByUser(ctx, caller.UserID)
	if errors.Is(err, model.ErrNotFound) {
		return &Overview{
			Health:     insight.Health(nil, s.today()),
			NextStep:   insight.NextStep(false, nil),
			Tasks:      []model.Task{},
			Milestones: []model.Milestone{},
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.overview(ctx, p)
}

func (s *ProjectService) overview(ctx context.Context, p *model.Project) (*Overview, error) {
	tasks, err := s.tasks.ListByProject(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	milestones, err := s.milestones.ListByProject(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	view := newStageView(p.Stage, tasks)
	return &Overview{
		Project:    p,
		Stage:      &view,
		Health:     insight.Health(tasks, s.today()),
		NextStep:   insight.NextStep(true, tasks),
		Tasks:      tasks,
		Milestones: milestones,
	}, nil
}
