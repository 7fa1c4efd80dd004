package service

import (
	"context"
	"fmt"

	"homeplan/internal/model"
	"homeplan/internal/repository"
	"homeplan/internal/stage"
	"homeplan/pkg/outbox"
)

// memStore is an in-memory stand-in for all repositories.
type memStore struct {
	projects   map[string]*model.Project
	tasks      []model.Task
	milestones []model.Milestone
	events     []*outbox.Event
	seq        int
	failWrite  error
}

func newMemStore() *memStore {
	return &memStore{projects: map[string]*model.Project{}}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memStore) Insert(_ context.Context, p *model.Project) error {
	if p.ID == "" {
		p.ID = m.nextID("p")
	}
	cp := *p
	m.projects[p.ID] = &cp
	return nil
}

func (m *memStore) Get(_ context.Context, id string) (*model.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %s: %w", id, model.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) GetLatestByUser(_ context.Context, userID string) (*model.Project, error) {
	var latest *model.Project
	for _, p := range m.projects {
		if p.UserID == userID && (latest == nil || p.ID > latest.ID) {
			latest = p
		}
	}
	if latest == nil {
		return nil, model.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (m *memStore) UpdateStage(_ context.Context, id string, s *stage.Stage, event *outbox.Event) error {
	p, ok := m.projects[id]
	if !ok {
		return model.ErrNotFound
	}
	p.Stage = s
	if event != nil {
		m.events = append(m.events, event)
	}
	return nil
}

func (m *memStore) UpdateStatus(_ context.Context, id string, status model.ProjectStatus, progress int) error {
	p, ok := m.projects[id]
	if !ok {
		return model.ErrNotFound
	}
	p.Status, p.Progress = status, progress
	return nil
}

// taskStore and milestoneStore adapt memStore to the narrower interfaces,
// whose method names overlap with ProjectStore.
type taskStore struct{ m *memStore }

func (s taskStore) Get(_ context.Context, id string) (*model.Task, error) {
	for _, t := range s.m.tasks {
		if t.ID == id {
			cp := t
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
}

func (s taskStore) ListByProject(_ context.Context, projectID string) ([]model.Task, error) {
	out := []model.Task{}
	for _, t := range s.m.tasks {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s taskStore) SetCompleted(_ context.Context, id string, completed bool) (*model.Task, error) {
	for i := range s.m.tasks {
		if s.m.tasks[i].ID == id {
			s.m.tasks[i].Completed = completed
			cp := s.m.tasks[i]
			return &cp, nil
		}
	}
	return nil, model.ErrNotFound
}

type milestoneStore struct{ m *memStore }

func (s milestoneStore) ListByProject(_ context.Context, projectID string) ([]model.Milestone, error) {
	out := []model.Milestone{}
	for _, ms := range s.m.milestones {
		if ms.ProjectID == projectID {
			out = append(out, ms)
		}
	}
	return out, nil
}

type planStore struct{ m *memStore }

func (s planStore) WritePlan(_ context.Context, projectID string, tasks []model.TaskDraft, milestones []model.MilestoneDraft, reset bool, event *outbox.Event) (*repository.PlanResult, error) {
	if s.m.failWrite != nil {
		return nil, s.m.failWrite
	}
	res := &repository.PlanResult{}
	var kept []model.Task
	for _, t := range s.m.tasks {
		if t.ProjectID != projectID {
			kept = append(kept, t)
			continue
		}
		if !reset {
			return nil, model.ErrPlanExists
		}
		res.Removed++
	}
	if reset {
		s.m.tasks = kept
		var keptMs []model.Milestone
		for _, ms := range s.m.milestones {
			if ms.ProjectID != projectID {
				keptMs = append(keptMs, ms)
			}
		}
		s.m.milestones = keptMs
	}

	for _, d := range tasks {
		t := model.Task{
			ID: s.m.nextID("t"), ProjectID: projectID, Title: d.Title, Description: d.Description,
			DueDate: d.DueDate, Completed: d.Completed, Resources: d.Resources,
		}
		s.m.tasks = append(s.m.tasks, t)
		res.Tasks = append(res.Tasks, t)
	}
	for _, d := range milestones {
		ms := model.Milestone{
			ID: s.m.nextID("m"), ProjectID: projectID, Title: d.Title,
			Date: d.Date, Amount: d.Amount, Status: d.Status,
		}
		s.m.milestones = append(s.m.milestones, ms)
		res.Milestones = append(res.Milestones, ms)
	}
	s.m.events = append(s.m.events, event)
	return res, nil
}

func (s planStore) AppendTasks(_ context.Context, projectID string, tasks []model.TaskDraft, pin *stage.Stage, event *outbox.Event) ([]model.Task, error) {
	created := []model.Task{}
	for _, d := range tasks {
		t := model.Task{ID: s.m.nextID("t"), ProjectID: projectID, Title: d.Title, DueDate: d.DueDate}
		s.m.tasks = append(s.m.tasks, t)
		created = append(created, t)
	}
	if pin != nil {
		s.m.projects[projectID].Stage = pin
	}
	s.m.events = append(s.m.events, event)
	return created, nil
}
