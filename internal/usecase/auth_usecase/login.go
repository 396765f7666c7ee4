package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"bookstore/internal/domain/model"
	"bookstore/internal/repository"
)

// handlerからusecaseに渡す入力
type LoginInput struct {
	Email    string
	Password string
}

// token 形（JwtAccessToken相当）
type JwtAccessToken struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenVersion int    `json:"token_version"`
}

// handlerがJSONにして返す
type LoginOutput struct {
	User  UserDTO        `json:"user"`
	Token JwtAccessToken `json:"token"`
}

// メールまたはパスワードが違う
var ErrInvalidCredentials = errors.New("invalid credentials")

// 停止済みユーザー
var ErrUserInactive = errors.New("user is inactive")

// JWTを発行する約束
type AccessTokenIssuer interface {
	Issue(userID int64, role model.Role, tokenVersion int, now time.Time) (token string, expiresAt time.Time, err error)
}

// 入力パスワードと保存したハッシュを比べる約束
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

type LoginUsecase struct {
	userRepo  repository.UserRepository
	validator AuthValidator
	verifier  PasswordVerifier
	issuer    AccessTokenIssuer
	clock     Clock
}

func NewLoginUsecase(
	userRepo repository.UserRepository,
	validator AuthValidator,
	verifier PasswordVerifier,
	issuer AccessTokenIssuer,
	clock Clock,
) *LoginUsecase {
	return &LoginUsecase{
		userRepo:  userRepo,
		validator: validator,
		verifier:  verifier,
		issuer:    issuer,
		clock:     clock,
	}
}

// ログイン処理を実行する
func (u *LoginUsecase) Execute(ctx context.Context, in LoginInput) (LoginOutput, error) {
	var out LoginOutput

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := u.validator.ValidateLogin(ctx, email, in.Password); err != nil {
		return out, ErrInvalidCredentials
	}

	//emailでユーザー取得
	user, err := u.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return out, err
	}
	if user == nil {
		return out, ErrInvalidCredentials
	}

	//パスワード照合
	if ok := u.verifier.Verify(in.Password, user.PasswordHash); !ok {
		return out, ErrInvalidCredentials
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return out, ErrUserInactive
	}

	//AccessToken発行
	now := u.clock.Now()
	accessToken, accessExp, err := u.issuer.Issue(user.ID, user.Role, user.TokenVersion, now)
	if err != nil {
		return out, err
	}

	//最終ログイン時刻更新
	user.LastLoginAt = &now
	if err := u.userRepo.Update(ctx, user); err != nil {
		return out, err
	}

	out.User = ToUserDTO(user)
	out.Token = JwtAccessToken{
		AccessToken:  accessToken,
		ExpiresIn:    int(accessExp.Sub(now).Seconds()),
		TokenVersion: user.TokenVersion,
	}
	return out, nil
}
