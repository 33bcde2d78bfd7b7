package validation

import (
	"testing"
	"time"

	"github.com/hitoshi/taskman/internal/model"
)

func strPtr(s string) *string { return &s }

func TestValidateTask_CreateValid(t *testing.T) {
	p := NewTaskPayload(model.TaskInput{
		Title:    strPtr("Buy milk"),
		Status:   strPtr("To Do"),
		Priority: strPtr("Low"),
		DueDate:  strPtr("2026-12-31"),
	})

	if issues := ValidateTask(ModeCreate, p); len(issues) != 0 {
		t.Fatalf("expected no issues, got %+v", issues)
	}
	want := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	if !p.DueDate.Time.Equal(want) {
		t.Errorf("DueDate = %v, want %v", p.DueDate.Time, want)
	}
}

func TestValidateTask_CreateMissingRequired(t *testing.T) {
	issues := ValidateTask(ModeCreate, NewTaskPayload(model.TaskInput{}))

	want := []string{"title", "status", "priority"}
	if len(issues) != len(want) {
		t.Fatalf("issues = %+v, want fields %v", issues, want)
	}
	for i, f := range want {
		if issues[i].Field != f || issues[i].Code != "invalid_type" {
			t.Errorf("issues[%d] = %+v, want field %q invalid_type", i, issues[i], f)
		}
	}
}

func TestValidateTask_UpdateAllOptional(t *testing.T) {
	if issues := ValidateTask(ModeUpdate, NewTaskPayload(model.TaskInput{})); len(issues) != 0 {
		t.Errorf("expected empty update to pass, got %+v", issues)
	}
}

func TestValidateTask_InvalidEnums(t *testing.T) {
	for _, mode := range []Mode{ModeCreate, ModeUpdate} {
		p := NewTaskPayload(model.TaskInput{
			Title:    strPtr("t"),
			Status:   strPtr("Done"),
			Priority: strPtr("Urgent"),
		})
		issues := ValidateTask(mode, p)
		if len(issues) != 2 {
			t.Fatalf("mode %d: issues = %+v, want 2", mode, issues)
		}
		if issues[0].Field != "status" || issues[0].Code != "invalid_enum_value" {
			t.Errorf("mode %d: issues[0] = %+v", mode, issues[0])
		}
		if issues[1].Field != "priority" || issues[1].Code != "invalid_enum_value" {
			t.Errorf("mode %d: issues[1] = %+v", mode, issues[1])
		}
	}
}

func TestValidateTask_EmptyTitleRejected(t *testing.T) {
	for _, mode := range []Mode{ModeCreate, ModeUpdate} {
		issues := ValidateTask(mode, NewTaskPayload(model.TaskInput{
			Title:    strPtr(""),
			Status:   strPtr("To Do"),
			Priority: strPtr("Low"),
		}))
		if len(issues) != 1 || issues[0].Field != "title" || issues[0].Code != "too_small" {
			t.Errorf("mode %d: issues = %+v, want title too_small", mode, issues)
		}
	}
}

func TestValidateTask_InvalidDueDate(t *testing.T) {
	issues := ValidateTask(ModeUpdate, NewTaskPayload(model.TaskInput{
		DueDate: strPtr("next tuesday"),
	}))
	if len(issues) != 1 || issues[0].Field != "dueDate" || issues[0].Code != "invalid_date" {
		t.Errorf("issues = %+v, want dueDate invalid_date", issues)
	}
}

func TestNewTaskPayload_EmptyDueDateIsAbsent(t *testing.T) {
	p := NewTaskPayload(model.TaskInput{DueDate: strPtr("")})
	if p.DueDate != nil {
		t.Errorf("DueDate = %+v, want nil", p.DueDate)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw   string
		valid bool
		want  time.Time
	}{
		{"2026-03-01", true, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"2026-03-01T10:30:00Z", true, time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)},
		{"2026-03-01T10:30:00.123Z", true, time.Date(2026, 3, 1, 10, 30, 0, 123000000, time.UTC)},
		{"2026-03-01T19:30:00+09:00", true, time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)},
		{"2026-02-30", false, time.Time{}},
		{"garbage", false, time.Time{}},
	}

	for _, tt := range tests {
		d := ParseDate(tt.raw)
		if d.Valid != tt.valid {
			t.Errorf("ParseDate(%q).Valid = %v, want %v", tt.raw, d.Valid, tt.valid)
			continue
		}
		if tt.valid && !d.Time.Equal(tt.want) {
			t.Errorf("ParseDate(%q).Time = %v, want %v", tt.raw, d.Time, tt.want)
		}
	}
}
