package mqhandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	mqc "homeplan/contracts/mq"
	"homeplan/internal/service"
	"homeplan/pkg/logger"
	"homeplan/pkg/metrics"
	"homeplan/pkg/mq"
	"homeplan/pkg/rbac"
	"homeplan/pkg/trace"
	"homeplan/pkg/util"
)

const (
	planRequestedName = "plan_requested"
	maxRetries        = 3
)

type PlanGenerator interface {
	GeneratePlan(ctx context.Context, caller service.Caller, projectID, planType string, reset bool) (*service.PlanSummary, error)
}

// Deduper is implemented by util.Deduper.
type Deduper interface {
	AcquireOnce(ctx context.Context, handler, id string) bool
	Release(ctx context.Context, handler, id string)
}

// RetryCounter is implemented by util.RetryCounter.
type RetryCounter interface {
	IncrementAndGet(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

// PlanRequestedHandler generates plans requested over MQ.
type PlanRequestedHandler struct {
	generator    PlanGenerator
	deduper      Deduper
	retryCounter RetryCounter
	logger       *zap.Logger

	// attempts counted in process while the retry counter is unavailable
	mu            sync.Mutex
	localAttempts map[string]int64
}

func NewPlanRequestedHandler(generator PlanGenerator, deduper Deduper, retryCounter RetryCounter, logger *zap.Logger) *PlanRequestedHandler {
	return &PlanRequestedHandler{
		generator:    generator,
		deduper:      deduper,
		retryCounter:  retryCounter,
		logger:        logger,
		localAttempts: make(map[string]int64),
	}
}

// Handle returns nil to ack, an mq.Permanent error to drop, and any other
// error to have the message redelivered.
func (h *PlanRequestedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p mqc.PlanRequestedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal PlanRequestedPayload", zap.Error(err))
		return mq.Permanent(err)
	}
	if p.UserID == "" || p.ProjectID == "" {
		h.logger.Error("Plan request without user or project",
			zap.String("user_id", p.UserID),
			zap.String("project_id", p.ProjectID),
		)
		return mq.Permanent(fmt.Errorf("plan request missing user_id or project_id"))
	}
	if p.TraceID != "" && trace.FromContext(ctx) == "" {
		ctx = trace.WithContext(ctx, p.TraceID)
	}

	log := logger.WithTrace(ctx, h.logger).With(
		zap.String("project_id", p.ProjectID),
		zap.String("plan_type", p.PlanType),
	)
	log.Info("Handling project.plan_requested event", zap.Bool("reset", p.Reset))

	dedupID := p.DedupID()
	if !h.deduper.AcquireOnce(ctx, planRequestedName, dedupID) {
		metrics.IncrementDuplicateEvent(mq.RoutingPlanRequested)
		return nil
	}

	retryKey := util.FormatRetryKey(planRequestedName, dedupID)
	attempt, err := h.retryCounter.IncrementAndGet(ctx, retryKey)
	if err != nil {
		attempt = h.countLocally(retryKey)
		log.Warn("Retry counter unavailable, counting attempts locally",
			zap.Int64("attempt", attempt),
			zap.Error(err),
		)
	}

	caller := service.Caller{UserID: p.UserID, Role: rbac.RoleUser}
	sum, err := h.generator.GeneratePlan(ctx, caller, p.ProjectID, p.PlanType, p.Reset)
	if err == nil {
		h.resetAttempts(ctx, retryKey)
		log.Info("Plan generated from request",
			zap.String("template", sum.Template),
			zap.Int("tasks", len(sum.Tasks)),
			zap.Int("milestones", len(sum.Milestones)),
		)
		return nil
	}

	if permanent(err) {
		h.resetAttempts(ctx, retryKey)
		log.Warn("Plan request rejected", zap.Error(err))
		return mq.Permanent(err)
	}

	retryable, errType := util.IsRetryableError(err)
	if !util.ShouldRetry(attempt, maxRetries, retryable) {
		h.resetAttempts(ctx, retryKey)
		log.Error("Plan request failed, giving up",
			zap.String("error_type", errType),
			zap.Int64("attempt", attempt),
			zap.Error(err),
		)
		return mq.Permanent(err)
	}

	// let the redelivery through the deduper
	h.deduper.Release(ctx, planRequestedName, dedupID)
	log.Warn("Plan request failed, will retry",
		zap.String("error_type", errType),
		zap.Int64("attempt", attempt),
		zap.Error(err),
	)
	return err
}

func (h *PlanRequestedHandler) countLocally(key string) int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.localAttempts[key]++
	return h.localAttempts[key]
}

func (h *PlanRequestedHandler) resetAttempts(ctx context.Context, key string) {
	h.mu.Lock()
	delete(h.localAttempts, key)
	h.mu.Unlock()
	if err := h.retryCounter.Reset(ctx, key); err != nil {
		h.logger.Warn("Failed to reset retry counter", zap.String("key", key), zap.Error(err))
	}
}

// permanent reports errors that no redelivery can fix.
func permanent(err error) bool {
	var denied *rbac.PermissionDeniedError
	var owner *rbac.OwnershipError
	return errors.Is(err, service.ErrNotFound) ||
		errors.Is(err, service.ErrPlanExists) ||
		errors.Is(err, service.ErrInvalidInput) ||
		errors.As(err, &denied) ||
		errors.As(err, &owner)
}
