package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/hitoshi/taskman/internal/model"
)

// Mode はタスクペイロードの検証モード。
type Mode int

const (
	// ModeCreate は作成時の検証。title、status、priorityが必須。
	ModeCreate Mode = iota
	// ModeUpdate は更新時の検証。全フィールドが任意。
	ModeUpdate
)

// dateLayouts は期限日として受け付けるワイヤー形式。
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Date は変換済みの期限日。
// 変換に失敗した値もValid=falseとして保持し、検証で違反として扱う。
type Date struct {
	Time  time.Time
	Valid bool
	Raw   string
}

// ParseDate はワイヤー形式の日付文字列をDateに変換する。
func ParseDate(raw string) Date {
	s := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t.UTC(), Valid: true, Raw: raw}
		}
	}
	return Date{Raw: raw}
}

// TaskPayload は期限日を変換済みのタスクペイロード。
type TaskPayload struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *Date
}

// NewTaskPayload はクライアント入力の期限日を変換してTaskPayloadを生成する。
// 空文字列の期限日は未指定として扱う。
func NewTaskPayload(in model.TaskInput) TaskPayload {
	p := TaskPayload{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
	}
	if in.DueDate != nil && *in.DueDate != "" {
		d := ParseDate(*in.DueDate)
		p.DueDate = &d
	}
	return p
}

// ValidateTask はタスクペイロードを指定モードで検証する。
func ValidateTask(mode Mode, p TaskPayload) []model.ValidationIssue {
	var issues []model.ValidationIssue

	switch {
	case p.Title == nil:
		if mode == ModeCreate {
			issues = append(issues, required("title"))
		}
	case *p.Title == "":
		// 更新時も空タイトルは受け付けない
		issues = append(issues, model.ValidationIssue{
			Field:   "title",
			Code:    "too_small",
			Message: "Title is required",
		})
	}

	if p.Status == nil {
		if mode == ModeCreate {
			issues = append(issues, required("status"))
		}
	} else if !model.TaskStatus(*p.Status).IsValid() {
		issues = append(issues, invalidEnum("status", *p.Status,
			model.TaskStatusToDo, model.TaskStatusInProgress, model.TaskStatusCompleted))
	}

	if p.Priority == nil {
		if mode == ModeCreate {
			issues = append(issues, required("priority"))
		}
	} else if !model.TaskPriority(*p.Priority).IsValid() {
		issues = append(issues, invalidEnum("priority", *p.Priority,
			model.TaskPriorityLow, model.TaskPriorityMedium, model.TaskPriorityHigh))
	}

	if p.DueDate != nil && !p.DueDate.Valid {
		issues = append(issues, model.ValidationIssue{
			Field:   "dueDate",
			Code:    "invalid_date",
			Message: "Invalid date",
		})
	}

	return issues
}

func required(field string) model.ValidationIssue {
	return model.ValidationIssue{
		Field:   field,
		Code:    "invalid_type",
		Message: "Required",
	}
}

func invalidEnum[T ~string](field, received string, options ...T) model.ValidationIssue {
	quoted := make([]string, len(options))
	for i, o := range options {
		quoted[i] = fmt.Sprintf("'%s'", o)
	}
	return model.ValidationIssue{
		Field:   field,
		Code:    "invalid_enum_value",
		Message: fmt.Sprintf("Invalid enum value. Expected %s, received '%s'", strings.Join(quoted, " | "), received),
	}
}
