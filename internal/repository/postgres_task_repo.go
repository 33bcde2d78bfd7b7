package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/hitoshi/taskman/internal/model"
)

// PostgresTaskRepo はPostgreSQLを使用したタスクリポジトリ。
type PostgresTaskRepo struct {
	db *sql.DB
}

// NewPostgresTaskRepo はPostgresTaskRepoを生成する。
func NewPostgresTaskRepo(db *sql.DB) *PostgresTaskRepo {
	return &PostgresTaskRepo{db: db}
}

const taskColumns = `id, user_id, title, description, status, priority, due_date, created_at, updated_at`

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(s rowScanner) (*model.Task, error) {
	task := &model.Task{}
	var (
		description sql.NullString
		dueDate     sql.NullTime
	)
	err := s.Scan(
		&task.ID, &task.UserID, &task.Title, &description,
		&task.Status, &task.Priority, &dueDate,
		&task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		task.Description = &description.String
	}
	if dueDate.Valid {
		t := dueDate.Time.UTC()
		task.DueDate = &t
	}
	return task, nil
}

// FindByID は指定IDのタスクを取得する。
// UUIDとして解釈できないIDはクエリを発行せずnilを返す。
func (r *PostgresTaskRepo) FindByID(ctx context.Context, id string) (*model.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	task, err := scanTask(r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task by ID: %w", err)
	}

	return task, nil
}

// ListByUserID はユーザーのタスクを挿入順（seq昇順）で返す。
func (r *PostgresTaskRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 ORDER BY seq ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*model.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	return tasks, nil
}

// Create はタスクを作成する。
// 所有者が存在しない場合の外部キー制約違反はErrOwnerNotFoundに変換する。
func (r *PostgresTaskRepo) Create(ctx context.Context, task *model.Task) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, user_id, title, description, status, priority, due_date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		task.ID, task.UserID, task.Title, task.Description,
		string(task.Status), string(task.Priority), task.DueDate,
		task.CreatedAt, task.UpdatedAt,
	)
	if isForeignKeyViolation(err) {
		return ErrOwnerNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// Update はタスクの可変フィールドを上書きする。
func (r *PostgresTaskRepo) Update(ctx context.Context, task *model.Task) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks
		 SET title = $2, description = $3, status = $4, priority = $5, due_date = $6, updated_at = $7
		 WHERE id = $1`,
		task.ID, task.Title, task.Description,
		string(task.Status), string(task.Priority), task.DueDate, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Delete は指定IDのタスクを削除する。
func (r *PostgresTaskRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// compile-time interface check
var _ TaskRepository = (*PostgresTaskRepo)(nil)
