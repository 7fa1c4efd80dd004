package mqhandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"homeplan/internal/service"
	"homeplan/pkg/mq"
	"homeplan/pkg/trace"
)

type fakeGenerator struct {
	err     error
	calls   int
	traceID string
	caller  service.Caller
}

func (g *fakeGenerator) GeneratePlan(ctx context.Context, caller service.Caller, projectID, planType string, reset bool) (*service.PlanSummary, error) {
	g.calls++
	g.caller = caller
	g.traceID = trace.FromContext(ctx)
	if g.err != nil {
		return nil, g.err
	}
	return &service.PlanSummary{ProjectID: projectID, Template: planType}, nil
}

type memDeduper struct {
	seen     map[string]bool
	released int
}

func (d *memDeduper) AcquireOnce(_ context.Context, handler, id string) bool {
	key := handler + ":" + id
	if d.seen[key] {
		return false
	}
	d.seen[key] = true
	return true
}

func (d *memDeduper) Release(_ context.Context, handler, id string) {
	delete(d.seen, handler+":"+id)
	d.released++
}

type memCounter struct{ counts map[string]int64 }

func (c *memCounter) IncrementAndGet(_ context.Context, key string) (int64, error) {
	c.counts[key]++
	return c.counts[key], nil
}

func (c *memCounter) Reset(_ context.Context, key string) error {
	delete(c.counts, key)
	return nil
}

// downCounter fails like an unreachable Redis.
type downCounter struct{}

func (downCounter) IncrementAndGet(context.Context, string) (int64, error) {
	return 0, errors.New("dial tcp: connection refused")
}

func (downCounter) Reset(context.Context, string) error {
	return errors.New("dial tcp: connection refused")
}

func newTestHandler(gen *fakeGenerator) (*PlanRequestedHandler, *memDeduper) {
	d := &memDeduper{seen: map[string]bool{}}
	return NewPlanRequestedHandler(gen, d, &memCounter{counts: map[string]int64{}}, zap.NewNop()), d
}

func body(t *testing.T, v map[string]any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return raw
}

func TestHandle_Success(t *testing.T) {
	gen := &fakeGenerator{}
	h, _ := newTestHandler(gen)

	msg := body(t, map[string]any{"user_id": "u-1", "project_id": "p-1", "plan_type": "standard", "trace_id": "tr-9"})
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("Handle() failed: %v", err)
	}
	if gen.calls != 1 || gen.traceID != "tr-9" || gen.caller.UserID != "u-1" {
		t.Errorf("generator saw calls=%d trace=%q caller=%+v", gen.calls, gen.traceID, gen.caller)
	}

	// redelivery of the same request is skipped
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("duplicate Handle() failed: %v", err)
	}
	if gen.calls != 1 {
		t.Errorf("duplicate processed, calls = %d", gen.calls)
	}
}

func TestHandle_BadPayloadIsPermanent(t *testing.T) {
	h, _ := newTestHandler(&fakeGenerator{})

	for name, raw := range map[string]json.RawMessage{
		"not json":   json.RawMessage(`{`),
		"no project": body(t, map[string]any{"user_id": "u-1"}),
	} {
		t.Run(name, func(t *testing.T) {
			if err := h.Handle(context.Background(), raw); !mq.IsPermanent(err) {
				t.Errorf("Handle() = %v, want permanent error", err)
			}
		})
	}
}

func TestHandle_BusinessErrorsArePermanent(t *testing.T) {
	for _, err := range []error{
		fmt.Errorf("project p-1: %w", service.ErrPlanExists),
		fmt.Errorf("project p-1: %w", service.ErrNotFound),
	} {
		gen := &fakeGenerator{err: err}
		h, _ := newTestHandler(gen)
		got := h.Handle(context.Background(), body(t, map[string]any{"user_id": "u-1", "project_id": "p-1"}))
		if !mq.IsPermanent(got) || !errors.Is(got, err) {
			t.Errorf("Handle() = %v, want permanent %v", got, err)
		}
	}
}

func TestHandle_TransientErrorRetriesThenGivesUp(t *testing.T) {
	gen := &fakeGenerator{err: fmt.Errorf("write plan: %w", context.DeadlineExceeded)}
	h, d := newTestHandler(gen)
	msg := body(t, map[string]any{"user_id": "u-1", "project_id": "p-1", "request_id": "req-1"})

	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := h.Handle(context.Background(), msg)
		if err == nil || mq.IsPermanent(err) {
			t.Fatalf("attempt %d: Handle() = %v, want retryable error", attempt, err)
		}
	}
	if d.released != maxRetries {
		t.Errorf("dedup released %d times, want %d", d.released, maxRetries)
	}

	if err := h.Handle(context.Background(), msg); !mq.IsPermanent(err) {
		t.Errorf("final attempt = %v, want permanent", err)
	}
	if gen.calls != maxRetries+1 {
		t.Errorf("calls = %d, want %d", gen.calls, maxRetries+1)
	}
}

func TestHandle_GivesUpWhenRetryCounterIsDown(t *testing.T) {
	gen := &fakeGenerator{err: fmt.Errorf("write plan: %w", context.DeadlineExceeded)}
	d := &memDeduper{seen: map[string]bool{}}
	h := NewPlanRequestedHandler(gen, d, downCounter{}, zap.NewNop())
	msg := body(t, map[string]any{"user_id": "u-1", "project_id": "p-1", "request_id": "req-2"})

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := h.Handle(context.Background(), msg); err == nil || mq.IsPermanent(err) {
			t.Fatalf("attempt %d: Handle() = %v, want retryable error", attempt, err)
		}
	}
	if err := h.Handle(context.Background(), msg); !mq.IsPermanent(err) {
		t.Fatalf("attempt %d: Handle() = %v, want permanent", maxRetries+1, err)
	}
	if len(h.localAttempts) != 0 {
		t.Errorf("local attempts not cleared: %v", h.localAttempts)
	}

	// a later request with the same id starts from a fresh budget
	gen.err = nil
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Errorf("Handle() after give-up = %v, want nil", err)
	}
}
