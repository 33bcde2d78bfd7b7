// Package model はドメインモデルを定義する。
package model

import "time"

// TaskStatus はタスクの進捗状態を表す。
// 遷移制約はなく、任意の値から任意の値へ変更できる。
type TaskStatus string

const (
	TaskStatusToDo       TaskStatus = "To Do"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusCompleted  TaskStatus = "Completed"
)

// IsValid は定義済みのステータスかどうかを返す。
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusToDo, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// TaskPriority はタスクの優先度を表す。
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "Low"
	TaskPriorityMedium TaskPriority = "Medium"
	TaskPriorityHigh   TaskPriority = "High"
)

// IsValid は定義済みの優先度かどうかを返す。
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// Task はユーザーが所有するタスクを表す。
// UserIDは作成時に認証済みユーザーから設定され、以後変更されない。
type Task struct {
	ID          string       `json:"_id"`
	UserID      string       `json:"userId"`
	Title       string       `json:"title"`
	Description *string      `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// TaskInput はクライアントから受け取るタスクの作成・更新ペイロード。
// nilのフィールドは未指定を表す。DueDateはワイヤー形式の文字列のまま保持する。
type TaskInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"dueDate"`
}
