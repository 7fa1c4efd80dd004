package plan

import (
	"errors"
	"strings"
	"testing"

	"homeplan/internal/caldate"
	"homeplan/internal/model"
	"homeplan/internal/stage"
)

// mapSource is an unvalidated Source, as a caller might hand in.
type mapSource map[string]Template

func (m mapSource) Lookup(name string) (Template, bool) {
	t, ok := m[name]
	if ok {
		t.Name = name
	}
	return t, ok
}

func testSource() mapSource {
	return mapSource{
		"standard": {
			Tasks: []TaskSkeleton{
				{Title: "Site survey", OffsetDays: 1},
				{Title: "Submit permit", OffsetDays: 30, DIYGuidance: "Do it yourself",
					Resources: []model.Resource{{Name: "City", URL: "https://example.com"}}},
			},
			Milestones: []MilestoneSkeleton{
				{Title: "Permit issued", OffsetDays: 45},
				{Title: "Deposit", OffsetDays: -2, Status: model.MilestonePaid},
			},
		},
		"catalogue": {
			Tasks: []TaskSkeleton{{Title: "Pick a design", OffsetDays: 0}},
		},
	}
}

// --- Expand ---

func TestExpand_MonthRollover(t *testing.T) {
	exp, err := Expand("standard", caldate.New(2024, 1, 31), testSource())
	if err != nil {
		t.Fatalf("Expand() failed: %v", err)
	}
	if got := exp.Tasks[0].DueDate.String(); got != "2024-02-01" {
		t.Errorf("due_date = %s, want 2024-02-01", got)
	}
	if got := exp.Milestones[1].Date.String(); got != "2024-01-29" {
		t.Errorf("negative offset date = %s, want 2024-01-29", got)
	}
}

func TestExpand_Defaults(t *testing.T) {
	exp, err := Expand("standard", caldate.New(2024, 3, 1), testSource())
	if err != nil {
		t.Fatalf("Expand() failed: %v", err)
	}
	if exp.FellBack {
		t.Error("standard should not be a fallback")
	}
	if len(exp.Tasks) != 2 || len(exp.Milestones) != 2 {
		t.Fatalf("got %d tasks, %d milestones", len(exp.Tasks), len(exp.Milestones))
	}
	for _, task := range exp.Tasks {
		if task.Completed {
			t.Errorf("task %q should start incomplete", task.Title)
		}
	}
	if exp.Tasks[0].DIYGuidance != "" || exp.Tasks[0].Resources != nil {
		t.Error("optional fields should stay empty when the skeleton has none")
	}
	if exp.Tasks[1].DIYGuidance != "Do it yourself" || len(exp.Tasks[1].Resources) != 1 {
		t.Error("optional fields from the skeleton were dropped")
	}
	if exp.Milestones[0].Status != model.MilestonePending {
		t.Errorf("missing status = %q, want Pending", exp.Milestones[0].Status)
	}
	if exp.Milestones[1].Status != model.MilestonePaid {
		t.Errorf("explicit status = %q, want Paid", exp.Milestones[1].Status)
	}
}

func TestExpand_SharedReferenceDate(t *testing.T) {
	ref := caldate.New(2024, 6, 1)
	exp, err := Expand("standard", ref, testSource())
	if err != nil {
		t.Fatalf("Expand() failed: %v", err)
	}
	if exp.Reference != ref {
		t.Errorf("Reference = %s, want %s", exp.Reference, ref)
	}
	if got := exp.Tasks[1].DueDate; got != ref.AddDays(30) {
		t.Errorf("due_date = %s, want %s", got, ref.AddDays(30))
	}
}

func TestExpand_UnknownTemplateFallsBackToStandard(t *testing.T) {
	ref := caldate.New(2024, 3, 1)
	want, err := Expand("standard", ref, testSource())
	if err != nil {
		t.Fatalf("Expand(standard) failed: %v", err)
	}
	got, err := Expand("nonexistent-template", ref, testSource())
	if err != nil {
		t.Fatalf("Expand(nonexistent) failed: %v", err)
	}
	if !got.FellBack || got.Template != "standard" {
		t.Errorf("FellBack = %v, Template = %q", got.FellBack, got.Template)
	}
	if len(got.Tasks) != len(want.Tasks) {
		t.Fatalf("fallback produced %d tasks, want %d", len(got.Tasks), len(want.Tasks))
	}
	for i := range want.Tasks {
		if got.Tasks[i].Title != want.Tasks[i].Title || got.Tasks[i].DueDate != want.Tasks[i].DueDate {
			t.Errorf("task %d = %+v, want %+v", i, got.Tasks[i], want.Tasks[i])
		}
	}
}

func TestExpand_NoStandardIsFatal(t *testing.T) {
	src := mapSource{"catalogue": {Tasks: []TaskSkeleton{{Title: "x"}}}}
	_, err := Expand("missing", caldate.New(2024, 1, 1), src)
	if !errors.Is(err, ErrNoStandardTemplate) {
		t.Errorf("err = %v, want ErrNoStandardTemplate", err)
	}
}

func TestExpand_TitlelessSkeletonIsFatal(t *testing.T) {
	src := mapSource{"standard": {Tasks: []TaskSkeleton{{Title: "ok"}, {Title: "  ", OffsetDays: 3}}}}
	exp, err := Expand("standard", caldate.New(2024, 1, 1), src)
	if !errors.Is(err, ErrInvalidTemplate) {
		t.Errorf("err = %v, want ErrInvalidTemplate", err)
	}
	if exp != nil {
		t.Error("no partial expansion should be returned")
	}
}

func TestExpansion_ForProject(t *testing.T) {
	exp, err := Expand("standard", caldate.New(2024, 1, 1), testSource())
	if err != nil {
		t.Fatalf("Expand() failed: %v", err)
	}
	exp.ForProject("p-1")
	for _, task := range exp.Tasks {
		if task.ProjectID != "p-1" {
			t.Errorf("task %q project_id = %q", task.Title, task.ProjectID)
		}
	}
	for _, m := range exp.Milestones {
		if m.ProjectID != "p-1" {
			t.Errorf("milestone %q project_id = %q", m.Title, m.ProjectID)
		}
	}
}

// --- Catalog ---

func TestParseCatalog_RejectsMissingTitle(t *testing.T) {
	doc := `
templates:
  standard:
    tasks:
      - offset_days: 3
`
	_, err := ParseCatalog(strings.NewReader(doc))
	if !errors.Is(err, ErrInvalidTemplate) {
		t.Errorf("err = %v, want ErrInvalidTemplate", err)
	}
}

func TestParseCatalog_RejectsUnknownFields(t *testing.T) {
	doc := `
templates:
  standard:
    tasks:
      - title: Survey
        offset_dayz: 3
`
	if _, err := ParseCatalog(strings.NewReader(doc)); err == nil {
		t.Error("misspelled field should be rejected")
	}
}

func TestParseCatalog_RejectsBadStatus(t *testing.T) {
	doc := `
templates:
  standard:
    milestones:
      - title: Permit
        status: Overdue
`
	_, err := ParseCatalog(strings.NewReader(doc))
	if !errors.Is(err, ErrInvalidTemplate) {
		t.Errorf("err = %v, want ErrInvalidTemplate", err)
	}
}

func TestParseCatalog_RequiresStandard(t *testing.T) {
	doc := `
templates:
  custom:
    tasks: []
`
	_, err := ParseCatalog(strings.NewReader(doc))
	if !errors.Is(err, ErrNoStandardTemplate) {
		t.Errorf("err = %v, want ErrNoStandardTemplate", err)
	}
}

func TestDefaultCatalog(t *testing.T) {
	c, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog() failed: %v", err)
	}
	names := c.Names()
	want := []string{"catalogue", "custom", "standard"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("Names() = %v, want %v", names, want)
	}

	custom, ok := c.Lookup("custom")
	if !ok || len(custom.Tasks) != 0 || len(custom.Milestones) != 0 {
		t.Errorf("custom template should be empty, got %+v", custom)
	}
}

// --- Round trip with the stage classifier ---

func TestExpand_RoundTripWithStage(t *testing.T) {
	c, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog() failed: %v", err)
	}
	tests := []struct {
		template string
		want     stage.Stage
	}{
		{"standard", stage.Feasibility},
		{"catalogue", stage.Feasibility},
		{"custom", stage.Idea},
	}
	for _, tt := range tests {
		exp, err := Expand(tt.template, caldate.New(2024, 1, 1), c)
		if err != nil {
			t.Fatalf("Expand(%s) failed: %v", tt.template, err)
		}
		if got := stage.Compute(nil, exp.Tasks); got != tt.want {
			t.Errorf("stage after expanding %s = %s, want %s", tt.template, got, tt.want)
		}
	}
}
