package outbox

import (
	"context"
	"fmt"
)

// ReplayService re-queues failed events for the dispatcher to pick up.
type ReplayService struct {
	repo *Repository
}

func NewReplayService(repo *Repository) *ReplayService {
	return &ReplayService{repo: repo}
}

// ListFailed returns up to limit events that exhausted their retries.
func (s *ReplayService) ListFailed(ctx context.Context, limit int) ([]*Event, error) {
	return s.repo.GetFailedEvents(ctx, limit)
}

// ReplayEvent resets a single event to pending.
func (s *ReplayService) ReplayEvent(ctx context.Context, eventID int64) error {
	if _, err := s.repo.GetEventByID(ctx, eventID); err != nil {
		return err
	}
	if err := s.repo.ResetEvent(ctx, eventID); err != nil {
		return fmt.Errorf("failed to replay event %d: %w", eventID, err)
	}
	return nil
}

// ReplayFailedEvents resets up to limit failed events and reports how many were re-queued.
func (s *ReplayService) ReplayFailedEvents(ctx context.Context, limit int) (int, error) {
	events, err := s.repo.GetFailedEvents(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to get failed events: %w", err)
	}

	replayed := 0
	for _, event := range events {
		if err := s.repo.ResetEvent(ctx, event.ID); err != nil {
			continue
		}
		replayed++
	}
	return replayed, nil
}
