package caldate

import (
	"encoding/json"
	"testing"
	"time"
)

// --- AddDays ---

func TestAddDays(t *testing.T) {
	tests := []struct {
		name string
		from Date
		days int
		want string
	}{
		{"zero offset", New(2024, 5, 10), 0, "2024-05-10"},
		{"month rollover", New(2024, 1, 31), 1, "2024-02-01"},
		{"leap day", New(2024, 2, 28), 1, "2024-02-29"},
		{"non leap february", New(2023, 2, 28), 1, "2023-03-01"},
		{"year rollover", New(2024, 12, 31), 1, "2025-01-01"},
		{"negative across year", New(2025, 1, 1), -1, "2024-12-31"},
		{"long offset", New(2024, 1, 1), 366, "2025-01-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.from.AddDays(tt.days).String()
			if got != tt.want {
				t.Errorf("%s.AddDays(%d) = %s, want %s", tt.from, tt.days, got, tt.want)
			}
		})
	}
}

func TestAddDays_IgnoresDSTTransitions(t *testing.T) {
	loc, err := time.LoadLocation("America/Toronto")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 2024-03-10 is the spring-forward day in Toronto.
	d := FromTime(time.Date(2024, 3, 9, 23, 30, 0, 0, loc))
	if got := d.AddDays(1).String(); got != "2024-03-10" {
		t.Errorf("AddDays across DST = %s, want 2024-03-10", got)
	}
}

// --- New / FromTime ---

func TestNew_Normalises(t *testing.T) {
	if got := New(2024, 2, 30).String(); got != "2024-03-01" {
		t.Errorf("New(2024, 2, 30) = %s, want 2024-03-01", got)
	}
}

func TestFromTime_UsesWallClockDate(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	// 21:00 at UTC-5 is already the next day in UTC; the wall date must win.
	d := FromTime(time.Date(2024, 6, 30, 21, 0, 0, 0, loc))
	if d.String() != "2024-06-30" {
		t.Errorf("FromTime = %s, want 2024-06-30", d)
	}
}

func TestToday_UsesClock(t *testing.T) {
	orig := timeNow
	defer func() { timeNow = orig }()
	timeNow = func() time.Time { return time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC) }

	if got := Today().String(); got != "2026-10-18" {
		t.Errorf("Today() = %s, want 2026-10-18", got)
	}
}

// --- Parse / JSON ---

func TestParse(t *testing.T) {
	d, err := Parse("2024-02-29")
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if d != New(2024, 2, 29) {
		t.Errorf("Parse() = %+v", d)
	}

	if _, err := Parse("2024-02-30"); err == nil {
		t.Error("Parse(2024-02-30) should fail")
	}
	if _, err := Parse("29/02/2024"); err == nil {
		t.Error("Parse(29/02/2024) should fail")
	}
}

func TestJSON(t *testing.T) {
	type wrapper struct {
		Due Date `json:"due"`
	}

	b, err := json.Marshal(wrapper{Due: New(2024, 2, 1)})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(b) != `{"due":"2024-02-01"}` {
		t.Errorf("Marshal = %s", b)
	}

	var w wrapper
	if err := json.Unmarshal([]byte(`{"due":null}`), &w); err != nil {
		t.Fatalf("Unmarshal(null) failed: %v", err)
	}
	if !w.Due.IsZero() {
		t.Errorf("null should decode to zero date, got %v", w.Due)
	}

	b, _ = json.Marshal(wrapper{})
	if string(b) != `{"due":null}` {
		t.Errorf("zero date Marshal = %s, want null", b)
	}
}

func TestBefore(t *testing.T) {
	a, b := New(2024, 1, 31), New(2024, 2, 1)
	if !a.Before(b) || b.Before(a) || a.Before(a) {
		t.Error("Before ordering is wrong")
	}
	if !b.After(a) {
		t.Error("After ordering is wrong")
	}
}
