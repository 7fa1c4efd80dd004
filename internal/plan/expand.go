package plan

import (
	"homeplan/internal/caldate"
	"homeplan/internal/model"
)

// Expansion is the result of resolving a template against a reference date.
// Drafts carry no project id until ForProject is called.
type Expansion struct {
	Template   string
	FellBack   bool
	Reference  caldate.Date
	Tasks      []model.TaskDraft
	Milestones []model.MilestoneDraft
}

// Expand resolves name through src and dates every skeleton relative to ref.
// Tasks start incomplete; milestones without a status are Pending.
func Expand(name string, ref caldate.Date, src Source) (*Expansion, error) {
	tpl, fellBack, err := Resolve(src, name)
	if err != nil {
		return nil, err
	}
	// Sources other than Catalog are not validated on load.
	if err := tpl.Validate(); err != nil {
		return nil, err
	}

	exp := &Expansion{
		Template:   tpl.Name,
		FellBack:   fellBack,
		Reference:  ref,
		Tasks:      make([]model.TaskDraft, 0, len(tpl.Tasks)),
		Milestones: make([]model.MilestoneDraft, 0, len(tpl.Milestones)),
	}

	for _, s := range tpl.Tasks {
		var resources []model.Resource
		if len(s.Resources) > 0 {
			resources = append(resources, s.Resources...)
		}
		exp.Tasks = append(exp.Tasks, model.TaskDraft{
			Title:       s.Title,
			Description: s.Description,
			DueDate:     ref.AddDays(s.OffsetDays),
			Completed:   false,
			DIYGuidance: s.DIYGuidance,
			CostSavings: s.CostSavings,
			Resources:   resources,
		})
	}

	for _, s := range tpl.Milestones {
		status := s.Status
		if status == "" {
			status = model.MilestonePending
		}
		var amount *float64
		if s.Amount != nil {
			v := *s.Amount
			amount = &v
		}
		exp.Milestones = append(exp.Milestones, model.MilestoneDraft{
			Title:  s.Title,
			Date:   ref.AddDays(s.OffsetDays),
			Amount: amount,
			Status: status,
		})
	}

	return exp, nil
}

// ForProject tags every draft with projectID.
func (e *Expansion) ForProject(projectID string) {
	for i := range e.Tasks {
		e.Tasks[i].ProjectID = projectID
	}
	for i := range e.Milestones {
		e.Milestones[i].ProjectID = projectID
	}
}
