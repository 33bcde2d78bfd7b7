// Package validation はリクエストペイロードの形式検証を提供する。
// 検証は副作用を持たず、違反はフィールド単位のmodel.ValidationIssueとして返す。
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hitoshi/taskman/internal/model"
)

const (
	// MinPasswordLength はパスワードの最小文字数。
	MinPasswordLength = 6
	// MaxPasswordBytes はbcryptが扱えるパスワードの最大バイト長。
	MaxPasswordBytes = 72
)

// emailPattern はlocal@domain.tld形式を検証する。
// local部の先頭ドットと連続ドットはRE2で表現できないため別途判定する。
var emailPattern = regexp.MustCompile(`^[A-Za-z0-9_'+\-.]*[A-Za-z0-9_+\-]@([A-Za-z0-9][A-Za-z0-9\-]*\.)+[A-Za-z]{2,}$`)

// Credentials は検証済みのサインアップ/ログイン入力。
type Credentials struct {
	Email    string
	Password string
}

// ValidateCredentials はサインアップ/ログインのペイロードを検証する。
// emailは前後の空白を除去して返す。大文字小文字の正規化は行わない。
func ValidateCredentials(email, password string) (Credentials, []model.ValidationIssue) {
	creds := Credentials{
		Email:    strings.TrimSpace(email),
		Password: password,
	}

	var issues []model.ValidationIssue

	if !IsValidEmail(creds.Email) {
		issues = append(issues, model.ValidationIssue{
			Field:   "email",
			Code:    "invalid_string",
			Message: "Invalid email format",
		})
	}

	switch {
	case utf8.RuneCountInString(password) < MinPasswordLength:
		issues = append(issues, model.ValidationIssue{
			Field:   "password",
			Code:    "too_small",
			Message: "Password must be at least 6 characters",
		})
	case len(password) > MaxPasswordBytes:
		issues = append(issues, model.ValidationIssue{
			Field:   "password",
			Code:    "too_big",
			Message: "Password must be at most 72 bytes",
		})
	}

	return creds, issues
}

// IsValidEmail はメールアドレスの書式が正しいかを返す。
func IsValidEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return false
	}
	local := email[:at]
	if strings.HasPrefix(local, ".") || strings.Contains(local, "..") {
		return false
	}
	return emailPattern.MatchString(email)
}
