// Package plan turns named plan templates into dated tasks and milestones.
package plan

import (
	"errors"
	"fmt"
	"strings"

	"homeplan/internal/model"
)

// StandardTemplate is the template used when a requested one does not exist.
const StandardTemplate = "standard"

var (
	ErrInvalidTemplate    = errors.New("invalid plan template")
	ErrNoStandardTemplate = errors.New("plan template source has no standard template")
)

type TaskSkeleton struct {
	Title       string           `yaml:"title" json:"title"`
	OffsetDays  int              `yaml:"offset_days" json:"offset_days"`
	Description string           `yaml:"description,omitempty" json:"description,omitempty"`
	DIYGuidance string           `yaml:"diy_guidance,omitempty" json:"diy_guidance,omitempty"`
	CostSavings string           `yaml:"cost_savings,omitempty" json:"cost_savings,omitempty"`
	Resources   []model.Resource `yaml:"resources,omitempty" json:"resources,omitempty"`
}

type MilestoneSkeleton struct {
	Title      string                `yaml:"title" json:"title"`
	OffsetDays int                   `yaml:"offset_days" json:"offset_days"`
	Status     model.MilestoneStatus `yaml:"status,omitempty" json:"status,omitempty"`
	Amount     *float64              `yaml:"amount,omitempty" json:"amount,omitempty"`
}

// Template is an immutable bundle of skeletons keyed by plan type.
type Template struct {
	Name       string              `yaml:"-" json:"name"`
	Tasks      []TaskSkeleton      `yaml:"tasks" json:"tasks"`
	Milestones []MilestoneSkeleton `yaml:"milestones" json:"milestones"`
}

// Validate rejects skeletons without a title and milestones with an unknown status.
func (t Template) Validate() error {
	for i, s := range t.Tasks {
		if strings.TrimSpace(s.Title) == "" {
			return fmt.Errorf("%w: template %q task #%d has no title", ErrInvalidTemplate, t.Name, i+1)
		}
	}
	for i, s := range t.Milestones {
		if strings.TrimSpace(s.Title) == "" {
			return fmt.Errorf("%w: template %q milestone #%d has no title", ErrInvalidTemplate, t.Name, i+1)
		}
		if s.Status != "" && !s.Status.Valid() {
			return fmt.Errorf("%w: template %q milestone %q has unknown status %q",
				ErrInvalidTemplate, t.Name, s.Title, s.Status)
		}
	}
	return nil
}

// Source resolves template names to templates.
type Source interface {
	Lookup(name string) (Template, bool)
}

// Resolve applies the fallback policy: the requested template if the source
// has it, otherwise the standard one. fellBack reports whether the fallback
// was taken.
func Resolve(src Source, name string) (tpl Template, fellBack bool, err error) {
	if t, ok := src.Lookup(name); ok {
		return t, false, nil
	}
	t, ok := src.Lookup(StandardTemplate)
	if !ok {
		return Template{}, false, fmt.Errorf("resolve %q: %w", name, ErrNoStandardTemplate)
	}
	return t, true, nil
}
