package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken はトークンの署名検証または内容の検証に失敗したことを表す。
var ErrInvalidToken = errors.New("auth: invalid token")

// acceptedMethods は検証時に受け付ける署名アルゴリズム。
// 対称鍵のHMACのみを許可し、alg=noneや公開鍵方式は拒否する。
var acceptedMethods = []string{
	jwt.SigningMethodHS256.Alg(),
	jwt.SigningMethodHS384.Alg(),
	jwt.SigningMethodHS512.Alg(),
}

// identityClaims はトークンのペイロード。ユーザーIDのみを持つ。
// RegisteredClaimsのフィールドは発行時に設定しないため、エンコード結果は {"id": "..."} となる。
type identityClaims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// TokenIssuer はHMAC署名の識別トークンを発行・検証する。
// 署名鍵は起動時に1回だけ注入され、以後変更されない。
// 発行するトークンに有効期限は設定しない。
type TokenIssuer struct {
	secret []byte
}

// NewTokenIssuer は署名鍵からTokenIssuerを生成する。鍵が空の場合はエラーを返す。
func NewTokenIssuer(secret string) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("token signing secret must not be empty")
	}
	return &TokenIssuer{secret: []byte(secret)}, nil
}

// Issue はユーザーIDを埋め込んだHS256トークンを発行する。
func (t *TokenIssuer) Issue(userID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, identityClaims{UserID: userID})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify はトークンの署名を検証し、埋め込まれたユーザーIDを返す。
// ユーザーの存在確認は行わない。
func (t *TokenIssuer) Verify(tokenString string) (string, error) {
	claims := &identityClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods(acceptedMethods))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.UserID == "" {
		return "", fmt.Errorf("%w: missing id claim", ErrInvalidToken)
	}
	return claims.UserID, nil
}
