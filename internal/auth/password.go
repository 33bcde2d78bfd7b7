package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordMismatch はパスワードがハッシュと一致しないことを表す。
var ErrPasswordMismatch = errors.New("auth: password does not match")

// PasswordHasher はパスワードのハッシュ化と照合のインターフェース。
type PasswordHasher interface {
	// Hash はランダムなソルトを含むハッシュを生成する。
	Hash(password string) (string, error)
	// Compare はハッシュとパスワードを照合する。不一致の場合はErrPasswordMismatchを返す。
	Compare(hash, password string) error
}

// BcryptHasher はbcryptによるPasswordHasherの実装。
// ソルトはハッシュごとにbcryptが生成する。
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher は指定コストのBcryptHasherを生成する。
func NewBcryptHasher(cost int) *BcryptHasher {
	return &BcryptHasher{cost: cost}
}

// Hash はパスワードのbcryptハッシュを返す。
func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Compare はbcryptの定数時間比較でパスワードを照合する。
func (h *BcryptHasher) Compare(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	if err != nil {
		return fmt.Errorf("failed to compare password: %w", err)
	}
	return nil
}

var _ PasswordHasher = (*BcryptHasher)(nil)
