package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	mqc "homeplan/contracts/mq"
	"homeplan/internal/model"
	"homeplan/internal/service"
	"homeplan/internal/stage"
	"homeplan/pkg/mq"
	"homeplan/pkg/trace"
)

// ProjectService is the subset of service.ProjectService the HTTP layer uses.
type ProjectService interface {
	CreateProject(ctx context.Context, caller service.Caller, name, address string) (*model.Project, error)
	GeneratePlan(ctx context.Context, caller service.Caller, projectID, planType string, reset bool) (*service.PlanSummary, error)
	Templates() []string
	Stage(ctx context.Context, caller service.Caller, projectID string) (service.StageView, error)
	SetStage(ctx context.Context, caller service.Caller, projectID string, st *stage.Stage) (service.StageView, error)
	AddChecklistTasks(ctx context.Context, caller service.Caller, projectID string, items []service.ChecklistItem) ([]model.Task, error)
	GetTask(ctx context.Context, caller service.Caller, taskID string) (*model.Task, error)
	ToggleTask(ctx context.Context, caller service.Caller, taskID string, completed bool) (*model.Task, error)
	Overview(ctx context.Context, caller service.Caller, projectID string) (*service.Overview, error)
	CurrentOverview(ctx context.Context, caller service.Caller) (*service.Overview, error)
}

// Publisher sends plan requests to the worker.
type Publisher interface {
	PublishWithContext(ctx context.Context, routingKey string, payload any) error
}

type ProjectHandler struct {
	svc       ProjectService
	publisher Publisher
	logger    *zap.Logger
}

// NewProjectHandler accepts a nil publisher; async plan requests are then rejected.
func NewProjectHandler(svc ProjectService, publisher Publisher, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{svc: svc, publisher: publisher, logger: logger}
}

// CreateProject handles POST /projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var req struct {
		Name    string `json:"name" binding:"required"`
		Address string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	p, err := h.svc.CreateProject(c.Request.Context(), who, req.Name, req.Address)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// GeneratePlan handles POST /projects/:id/plan[?async=true]
func (h *ProjectHandler) GeneratePlan(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var req struct {
		PlanType string `json:"plan_type"`
		Reset    bool   `json:"reset"`
	}
	// an empty body requests the standard plan
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.PlanType == "" {
		req.PlanType = "standard"
	}
	projectID := c.Param("id")

	if async, _ := strconv.ParseBool(c.Query("async")); async {
		h.requestPlan(c, who, projectID, req.PlanType, req.Reset)
		return
	}

	sum, err := h.svc.GeneratePlan(c.Request.Context(), who, projectID, req.PlanType, req.Reset)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, sum)
}

// requestPlan hands generation to the worker. Access is checked there.
func (h *ProjectHandler) requestPlan(c *gin.Context, who service.Caller, projectID, planType string, reset bool) {
	if h.publisher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "async plan generation unavailable"})
		return
	}
	ctx := c.Request.Context()
	traceID := trace.FromContext(ctx)
	payload := mqc.PlanRequestedPayload{
		UserID:    who.UserID,
		ProjectID: projectID,
		PlanType:  planType,
		Reset:     reset,
		TraceID:   traceID,
		RequestID: uuid.NewString(),
	}
	if err := h.publisher.PublishWithContext(ctx, mq.RoutingPlanRequested, payload); err != nil {
		h.logger.Error("Failed to publish plan request",
			zap.String("project_id", projectID),
			zap.Error(err),
		)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to queue plan request"})
		return
	}
	h.logger.Info("Plan request queued",
		zap.String("project_id", projectID),
		zap.String("plan_type", planType),
		zap.String("request_id", payload.RequestID),
		zap.String("trace_id", traceID),
	)
	c.JSON(http.StatusAccepted, gin.H{"status": "queued", "request_id": payload.RequestID})
}

// ListPlans handles GET /plans
func (h *ProjectHandler) ListPlans(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"plans": h.svc.Templates()})
}

// GetStage handles GET /projects/:id/stage
func (h *ProjectHandler) GetStage(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	view, err := h.svc.Stage(c.Request.Context(), who, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SetStage handles PUT /projects/:id/stage. {"stage": null} returns to auto-detection.
func (h *ProjectHandler) SetStage(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var req struct {
		Stage *string `json:"stage"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	var st *stage.Stage
	if req.Stage != nil {
		parsed, err := stage.Parse(*req.Stage)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		st = &parsed
	}

	view, err := h.svc.SetStage(c.Request.Context(), who, c.Param("id"), st)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// AddChecklist handles POST /projects/:id/checklist
func (h *ProjectHandler) AddChecklist(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var req struct {
		Items []service.ChecklistItem `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	created, err := h.svc.AddChecklistTasks(c.Request.Context(), who, c.Param("id"), req.Items)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"created": created})
}

// Overview handles GET /projects/:id/overview
func (h *ProjectHandler) Overview(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	ov, err := h.svc.Overview(c.Request.Context(), who, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ov)
}

// CurrentOverview handles GET /projects/current
func (h *ProjectHandler) CurrentOverview(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	ov, err := h.svc.CurrentOverview(c.Request.Context(), who)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ov)
}

// GetTask handles GET /tasks/:id
func (h *ProjectHandler) GetTask(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	t, err := h.svc.GetTask(c.Request.Context(), who, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// CompleteTask handles POST /tasks/:id/complete
func (h *ProjectHandler) CompleteTask(c *gin.Context) {
	h.toggleTask(c, true)
}

// ReopenTask handles POST /tasks/:id/reopen
func (h *ProjectHandler) ReopenTask(c *gin.Context) {
	h.toggleTask(c, false)
}

func (h *ProjectHandler) toggleTask(c *gin.Context, completed bool) {
	who, ok := caller(c)
	if !ok {
		return
	}
	t, err := h.svc.ToggleTask(c.Request.Context(), who, c.Param("id"), completed)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, t)
}
