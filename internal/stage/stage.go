// Package stage derives a project's lifecycle stage from its task list.
package stage

import (
	"fmt"
	"strings"
)

// Stage is one of the seven ordered lifecycle phases of a project.
type Stage string

const (
	Idea         Stage = "idea"
	Feasibility  Stage = "feasibility"
	Design       Stage = "design"
	Permitting   Stage = "permitting"
	Procurement  Stage = "procurement"
	Construction Stage = "construction"
	Closeout     Stage = "closeout"
)

// Order lists every stage from first to last.
var Order = [...]Stage{Idea, Feasibility, Design, Permitting, Procurement, Construction, Closeout}

// Task is the view of a task the classifier needs.
type Task interface {
	StageTitle() string
	IsCompleted() bool
}

// keywords is read-only after init. Matching is a case-insensitive substring test.
var keywords = map[Stage][]string{
	Feasibility:  {"feasibility", "survey", "assessment", "zoning"},
	Design:       {"design", "schematic", "development", "construction documents"},
	Permitting:   {"permit", "application", "review", "approval"},
	Procurement:  {"tender", "procurement", "contractor", "quote", "rfc"},
	Construction: {"construction", "foundation", "framing", "inspection", "rough-in"},
	Closeout:     {"closeout", "final", "occupancy", "handover"},
}

// Compute returns the current stage of a project.
//
// A non-nil explicit stage is returned as is. Otherwise the earliest stage
// (idea excluded) with a keyword in the title of any incomplete task wins.
// With no match the result is closeout when every task is complete and idea
// otherwise, including for an empty task list.
func Compute[T Task](explicit *Stage, tasks []T) Stage {
	if explicit != nil {
		return *explicit
	}
	if len(tasks) == 0 {
		return Idea
	}

	open := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if !t.IsCompleted() {
			open = append(open, strings.ToLower(t.StageTitle()))
		}
	}

	for _, s := range Order[1:] {
		for _, title := range open {
			if matches(s, title) {
				return s
			}
		}
	}

	if len(open) == 0 {
		return Closeout
	}
	// Unmatched open tasks fall back to idea. Kept as observed in production.
	return Idea
}

func matches(s Stage, lowerTitle string) bool {
	for _, kw := range keywords[s] {
		if strings.Contains(lowerTitle, kw) {
			return true
		}
	}
	return false
}

// Keywords returns a copy of the keyword set for s. Idea has none.
func Keywords(s Stage) []string {
	kws := keywords[s]
	out := make([]string, len(kws))
	copy(out, kws)
	return out
}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	return Index(s) >= 0
}

// Index returns the zero-based position of s in Order, or -1.
func Index(s Stage) int {
	for i, o := range Order {
		if o == s {
			return i
		}
	}
	return -1
}

// Parse validates a stage name. Input is matched case-insensitively.
func Parse(raw string) (Stage, error) {
	s := Stage(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("invalid stage %q: must be one of: idea, feasibility, design, permitting, procurement, construction, closeout", raw)
	}
	return s, nil
}

// Ptr is a convenience for building explicit overrides.
func Ptr(s Stage) *Stage {
	return &s
}
