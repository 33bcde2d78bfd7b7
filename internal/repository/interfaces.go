// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/taskman/internal/model"
)

// ErrDuplicateEmail は同一メールアドレスのユーザーが既に存在することを表す。
// 存在確認と作成の間に競合した場合もこのエラーを返す。
var ErrDuplicateEmail = errors.New("repository: duplicate email")

// ErrTaskNotFound は更新・削除対象のタスクが存在しないことを表す。
// 取得後に別リクエストで削除された場合に返る。
var ErrTaskNotFound = errors.New("repository: task not found")

// ErrOwnerNotFound はタスクの所有者として指定したユーザーが存在しないことを表す。
var ErrOwnerNotFound = errors.New("repository: task owner not found")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	// メールアドレスは完全一致で比較する。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。メールアドレスが重複する場合はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error
}

// TaskRepository はタスクデータの永続化インターフェース。
// 各操作は単一行の文で完結し、同一タスクへの並行更新は後勝ちとなる。
type TaskRepository interface {
	// FindByID は指定IDのタスクを取得する。見つからない場合やIDが不正な形式の場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Task, error)

	// ListByUserID はユーザーのタスクを作成順で返す。0件の場合は空スライスを返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Task, error)

	// Create はタスクを作成する。所有者のユーザーが存在しない場合はErrOwnerNotFoundを返す。
	Create(ctx context.Context, task *model.Task) error

	// Update はタスクの可変フィールド（title、description、status、priority、due_date）を上書きする。
	// 所有者は更新しない。対象が存在しない場合はErrTaskNotFoundを返す。
	Update(ctx context.Context, task *model.Task) error

	// Delete は指定IDのタスクを削除する。対象が存在しない場合はErrTaskNotFoundを返す。
	Delete(ctx context.Context, id string) error
}

// HealthChecker はデータストアの疎通確認インターフェース。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}
