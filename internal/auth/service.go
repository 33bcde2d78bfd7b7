// Package auth はメールアドレスとパスワードによるユーザー登録・認証と、
// 識別トークンの発行・検証を提供する。
package auth

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
	"github.com/hitoshi/taskman/internal/validation"
)

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	tokens   *TokenIssuer
	metrics  metrics.Recorder
	now      func() time.Time
}

// NewService はServiceを生成する。recorderがnilの場合はメトリクスを記録しない。
func NewService(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	tokens *TokenIssuer,
	recorder metrics.Recorder,
) *Service {
	if recorder == nil {
		recorder = metrics.NopRecorder{}
	}
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		metrics:  recorder,
		now:      time.Now,
	}
}

// Register は新規ユーザーを登録し、そのユーザーIDを埋め込んだトークンを返す。
// 同一メールアドレスのユーザーが存在する場合はUSER_ALREADY_EXISTSを返す。
func (s *Service) Register(ctx context.Context, email, password string) (string, error) {
	token, err := s.register(ctx, email, password)
	s.recordAttempt(metrics.AuthSignup, err)
	return token, err
}

func (s *Service) register(ctx context.Context, email, password string) (string, error) {
	creds, issues := validation.ValidateCredentials(email, password)
	if len(issues) > 0 {
		return "", model.NewValidationError(issues)
	}

	existing, err := s.userRepo.FindByEmail(ctx, creds.Email)
	if err != nil {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	if existing != nil {
		return "", model.NewUserAlreadyExistsError()
	}

	hash, err := s.hasher.Hash(creds.Password)
	if err != nil {
		return "", err
	}

	now := s.now().UTC()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        creds.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// 存在確認と作成の間に同一メールアドレスが登録された場合
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return "", model.NewUserAlreadyExistsError()
		}
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
	)

	return s.tokens.Issue(user.ID)
}

// Authenticate はメールアドレスとパスワードを照合し、トークンを返す。
// ユーザー未登録とパスワード不一致はどちらもINVALID_CREDENTIALSを返す。
func (s *Service) Authenticate(ctx context.Context, email, password string) (string, error) {
	token, err := s.authenticate(ctx, email, password)
	s.recordAttempt(metrics.AuthLogin, err)
	return token, err
}

func (s *Service) authenticate(ctx context.Context, email, password string) (string, error) {
	creds, issues := validation.ValidateCredentials(email, password)
	if len(issues) > 0 {
		return "", model.NewValidationError(issues)
	}

	user, err := s.userRepo.FindByEmail(ctx, creds.Email)
	if err != nil {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return "", model.NewInvalidCredentialsError()
	}

	if err := s.hasher.Compare(user.PasswordHash, creds.Password); err != nil {
		if errors.Is(err, ErrPasswordMismatch) {
			return "", model.NewInvalidCredentialsError()
		}
		return "", err
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
	)

	return s.tokens.Issue(user.ID)
}

func (s *Service) recordAttempt(kind string, err error) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailure
	}
	s.metrics.RecordAuthAttempt(kind, outcome)
}
