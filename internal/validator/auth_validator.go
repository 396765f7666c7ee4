package validator

import (
	"context"
	"regexp"
	"strings"

	auth "bookstore/internal/usecase/auth_usecase"
)

// パスワード最低文字数
const minPasswordLen = 6

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type authValidator struct{}

// Usecaseは interface を依存注入
func NewAuthValidator() auth.AuthValidator {
	return &authValidator{}
}

// サインアップの入力を検証
func (v *authValidator) ValidateRegister(ctx context.Context, in auth.RegisterUserInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return auth.ErrNameRequired
	}

	// email形式
	if !isEmailLike(strings.TrimSpace(in.Email)) {
		return auth.ErrInvalidEmailFormat
	}

	if len(in.Password) < minPasswordLen {
		return auth.ErrPasswordTooShort
	}

	// 確認用と一致
	if in.Password != in.ConfirmPassword {
		return auth.ErrPasswordMismatch
	}

	return nil
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	email = strings.TrimSpace(email)

	// 必須チェック
	if email == "" || password == "" {
		return auth.ErrInvalidCredentials
	}

	// email形式
	if !isEmailLike(email) {
		return auth.ErrInvalidEmailFormat
	}

	return nil
}

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	return emailRe.MatchString(s)
}
