// Package task はタスク管理のドメインロジックを提供する。
// 全ての操作は認証済みユーザーのIDを受け取り、所有者以外による変更・削除を拒否する。
package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/taskman/internal/metrics"
	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
	"github.com/hitoshi/taskman/internal/security"
	"github.com/hitoshi/taskman/internal/validation"
)

// Service はタスク管理のサービス層。
type Service struct {
	taskRepo  repository.TaskRepository
	sanitizer security.TextSanitizerService
	metrics   metrics.Recorder
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// recorderがnilの場合はメトリクスを記録しない。
func NewService(
	taskRepo repository.TaskRepository,
	sanitizer security.TextSanitizerService,
	recorder metrics.Recorder,
) *Service {
	if recorder == nil {
		recorder = metrics.NopRecorder{}
	}
	return &Service{
		taskRepo:  taskRepo,
		sanitizer: sanitizer,
		metrics:   recorder,
		now:       time.Now,
	}
}

// List はユーザーのタスクを作成順で返す。
// タスクが1件もない場合はNO_TASKS_FOUNDを返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.Task, error) {
	tasks, err := s.list(ctx, userID)
	s.record(metrics.TaskOpList, err)
	return tasks, err
}

func (s *Service) list(ctx context.Context, userID string) ([]*model.Task, error) {
	tasks, err := s.taskRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	if len(tasks) == 0 {
		return nil, model.NewNoTasksFoundError()
	}
	return tasks, nil
}

// Create はタスクを作成する。所有者は呼び出し元のユーザーとなる。
func (s *Service) Create(ctx context.Context, userID string, in model.TaskInput) (*model.Task, error) {
	task, err := s.create(ctx, userID, in)
	s.record(metrics.TaskOpCreate, err)
	return task, err
}

func (s *Service) create(ctx context.Context, userID string, in model.TaskInput) (*model.Task, error) {
	if isBlank(in.Title) || isBlank(in.Status) || isBlank(in.Priority) {
		return nil, model.NewMissingTaskFieldsError()
	}

	p := s.sanitize(validation.NewTaskPayload(in))
	if issues := validation.ValidateTask(validation.ModeCreate, p); len(issues) > 0 {
		return nil, model.NewValidationError(issues)
	}

	now := s.now().UTC()
	task := &model.Task{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       *p.Title,
		Description: p.Description,
		Status:      model.TaskStatus(*p.Status),
		Priority:    model.TaskPriority(*p.Priority),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.DueDate != nil {
		due := p.DueDate.Time
		task.DueDate = &due
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		// 署名は正しいがユーザーが存在しないトークン
		if errors.Is(err, repository.ErrOwnerNotFound) {
			slog.Warn("task owner does not exist", slog.String("user_id", userID))
			return nil, model.NewTokenInvalidError()
		}
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	slog.Info("task created",
		slog.String("task_id", task.ID),
		slog.String("user_id", userID),
	)

	return task, nil
}

// Update は指定フィールドのみを上書きし、更新後のタスクを返す。
// 入力の検証はタスクの取得より先に行う。
func (s *Service) Update(ctx context.Context, userID, taskID string, in model.TaskInput) (*model.Task, error) {
	task, err := s.update(ctx, userID, taskID, in)
	s.record(metrics.TaskOpUpdate, err)
	return task, err
}

func (s *Service) update(ctx context.Context, userID, taskID string, in model.TaskInput) (*model.Task, error) {
	p := s.sanitize(validation.NewTaskPayload(in))
	if issues := validation.ValidateTask(validation.ModeUpdate, p); len(issues) > 0 {
		return nil, model.NewValidationError(issues)
	}

	task, err := s.findOwned(ctx, userID, taskID, "modify")
	if err != nil {
		return nil, err
	}

	if p.Title != nil {
		task.Title = *p.Title
	}
	if p.Description != nil {
		task.Description = p.Description
	}
	if p.Status != nil {
		task.Status = model.TaskStatus(*p.Status)
	}
	if p.Priority != nil {
		task.Priority = model.TaskPriority(*p.Priority)
	}
	if p.DueDate != nil {
		due := p.DueDate.Time
		task.DueDate = &due
	}
	task.UpdatedAt = s.now().UTC()

	if err := s.taskRepo.Update(ctx, task); err != nil {
		// 取得後に別リクエストで削除された場合
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, model.NewTaskNotFoundError()
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// Delete はタスクを削除する。
func (s *Service) Delete(ctx context.Context, userID, taskID string) error {
	err := s.delete(ctx, userID, taskID)
	s.record(metrics.TaskOpDelete, err)
	return err
}

func (s *Service) delete(ctx context.Context, userID, taskID string) error {
	if _, err := s.findOwned(ctx, userID, taskID, "delete"); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return model.NewTaskNotFoundError()
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	slog.Info("task deleted",
		slog.String("task_id", taskID),
		slog.String("user_id", userID),
	)

	return nil
}

// findOwned はタスクを取得し、呼び出し元が所有者であることを確認する。
func (s *Service) findOwned(ctx context.Context, userID, taskID, action string) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if task == nil {
		return nil, model.NewTaskNotFoundError()
	}
	if err := authorizeOwner(task, userID, action); err != nil {
		return nil, err
	}
	return task, nil
}

// authorizeOwner はタスクの所有者が呼び出し元と一致しない場合にFORBIDDENを返す。
func authorizeOwner(task *model.Task, userID, action string) error {
	if task.UserID != userID {
		slog.Warn("task ownership mismatch",
			slog.String("task_id", task.ID),
			slog.String("user_id", userID),
			slog.String("action", action),
		)
		return model.NewForbiddenError(action)
	}
	return nil
}

// sanitize はtitleとdescriptionからHTMLマークアップを除去する。
func (s *Service) sanitize(p validation.TaskPayload) validation.TaskPayload {
	if p.Title != nil {
		title := s.sanitizer.Sanitize(*p.Title)
		p.Title = &title
	}
	if p.Description != nil {
		desc := s.sanitizer.Sanitize(*p.Description)
		p.Description = &desc
	}
	return p
}

func (s *Service) record(op string, err error) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailure
	}
	s.metrics.RecordTaskOperation(op, outcome)
}

func isBlank(s *string) bool {
	return s == nil || *s == ""
}
