// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string            // エラーコード
	Message  string            // エラーメッセージ
	Category string            // カテゴリ: auth, validation, task, system
	Action   string            // ユーザー向け対処方法
	Issues   []ValidationIssue // バリデーションエラー時のフィールド単位の詳細
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// ValidationIssue はフィールド単位のバリデーション違反を表す。
type ValidationIssue struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// 定義済みエラーコード
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeTokenInvalid       = "TOKEN_INVALID"
	ErrCodeUserAlreadyExists  = "USER_ALREADY_EXISTS"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeTaskNotFound       = "TASK_NOT_FOUND"
	ErrCodeNoTasksFound       = "NO_TASKS_FOUND"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// NewValidationError は入力値のスキーマ違反エラーを生成する。
func NewValidationError(issues []ValidationIssue) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  "invalid inputs",
		Category: "validation",
		Action:   "errorsに記載された各フィールドを修正してください。",
		Issues:   issues,
	}
}

// NewMissingTaskFieldsError はタスク作成時の必須項目欠落エラーを生成する。
func NewMissingTaskFieldsError() *APIError {
	return &APIError{
		Code:     ErrCodeBadRequest,
		Message:  "Title, status, and priority are required",
		Category: "validation",
		Action:   "title、status、priorityを指定してください。",
	}
}

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewUnauthorizedError はトークン未指定エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Unauthorized",
		Category: "auth",
		Action:   "Authorizationヘッダーにトークンを指定してください。",
	}
}

// NewTokenInvalidError はトークン検証失敗エラーを生成する。
func NewTokenInvalidError() *APIError {
	return &APIError{
		Code:     ErrCodeTokenInvalid,
		Message:  "Token is not valid",
		Category: "auth",
		Action:   "ログインし直してトークンを再取得してください。",
	}
}

// NewUserAlreadyExistsError はメールアドレス重複エラーを生成する。
func NewUserAlreadyExistsError() *APIError {
	return &APIError{
		Code:     ErrCodeUserAlreadyExists,
		Message:  "User already exists",
		Category: "auth",
		Action:   "別のメールアドレスで登録するか、ログインしてください。",
	}
}

// NewInvalidCredentialsError は認証情報不一致エラーを生成する。
// メールアドレス未登録とパスワード不一致は区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Invalid credentials",
		Category: "auth",
		Action:   "メールアドレスとパスワードを確認してください。",
	}
}

// NewTaskNotFoundError はタスク未検出エラーを生成する。
func NewTaskNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeTaskNotFound,
		Message:  "Task not found",
		Category: "task",
		Action:   "タスクIDを確認してください。",
	}
}

// NewNoTasksFoundError はユーザーのタスクが1件もない場合のエラーを生成する。
func NewNoTasksFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeNoTasksFound,
		Message:  "No tasks found for this user",
		Category: "task",
		Action:   "タスクを作成してください。",
	}
}

// NewForbiddenError は所有者以外による操作のエラーを生成する。
// actionには "modify" や "delete" を指定する。
func NewForbiddenError(action string) *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  fmt.Sprintf("You are not authorized to %s this task", action),
		Category: "task",
		Action:   "自分が作成したタスクのみ操作できます。",
	}
}

// NewRateLimitExceededError はレート制限超過エラーを生成する。
func NewRateLimitExceededError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimitExceeded,
		Message:  "Too many requests. Please try again later.",
		Category: "system",
		Action:   "Retry-Afterヘッダーの秒数だけ待ってから再度お試しください。",
	}
}

// NewInternalError は内部エラーを生成する。詳細はレスポンスに含めない。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewSignupFailedError はユーザー作成時の予期しない失敗を表す。
// サインアップでは内部エラーも400として返す。
func NewSignupFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeBadRequest,
		Message:  "Error creating user",
		Category: "auth",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
