package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"bookstore/internal/domain/model"
	"bookstore/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// 会員登録の入力
type RegisterUserInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	// 空ならCUSTOMER。ADMINはCLIからだけ作る
	Role model.Role
}

// 会員登録の出力
type RegisterUserOutput struct {
	User UserDTO `json:"user"`
}

// 返却用ユーザー（password_hashは出さない）
type UserDTO struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	TokenVersion int    `json:"token_version"`
	IsActive     bool   `json:"is_active"`
}

func ToUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         string(u.Role),
		TokenVersion: u.TokenVersion,
		IsActive:     u.IsActive,
	}
}

// bcryptハッシュ化
type BcryptPasswordHasher struct {
	cost int
}

var (
	// 入力が不正
	ErrNameRequired       = errors.New("name required")
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrPasswordMismatch   = errors.New("passwords do not match")

	// 競合
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// 入力検証の約束（validatorパッケージが実装）
type AuthValidator interface {
	ValidateRegister(ctx context.Context, in RegisterUserInput) error
	ValidateLogin(ctx context.Context, email string, password string) error
}

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// RegisterUserUsecaseは会員登録の処理。
type RegisterUserUsecase struct {
	userRepo  repository.UserRepository
	validator AuthValidator
	hasher    PasswordHasher
	clock     Clock
}

// DI
func NewRegisterUserUsecase(
	userRepo repository.UserRepository,
	validator AuthValidator,
	hasher PasswordHasher,
	clock Clock,
) *RegisterUserUsecase {
	return &RegisterUserUsecase{
		userRepo:  userRepo,
		validator: validator,
		hasher:    hasher,
		clock:     clock,
	}
}

// 会員登録実行
func (u *RegisterUserUsecase) Execute(ctx context.Context, in RegisterUserInput) (RegisterUserOutput, error) {
	var out RegisterUserOutput

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	// 形式チェック（name / email / password / 確認用）
	if err := u.validator.ValidateRegister(ctx, in); err != nil {
		return out, err
	}

	// email重複チェック
	existing, err := u.userRepo.FindByEmail(ctx, in.Email)
	if err != nil {
		return out, err
	}
	if existing != nil {
		return out, ErrEmailAlreadyExists
	}

	// パスワードをハッシュ化
	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return out, err
	}

	role := in.Role
	if role == "" {
		role = model.RoleCustomer
	}

	now := u.clock.Now()
	user := &model.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hashed, // ハッシュを保存（平文は保存しない）
		Role:         role,
		TokenVersion: 0,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// DBへ保存（同時登録の一意制約違反も重複扱い）
	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return out, ErrEmailAlreadyExists
		}
		return out, err
	}

	out.User = ToUserDTO(user)
	return out, nil
}

// DI
func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordHasher{cost}
}

// bcryptでハッシュ化
func (h *BcryptPasswordHasher) Hash(plain string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}

	return string(hashedBytes), nil
}

// bcryptハッシュと平文を比較
type BcryptPasswordVerifier struct{}

// DI
func NewBcryptPasswordVerifier() *BcryptPasswordVerifier {
	return &BcryptPasswordVerifier{}
}

// 平文(plain)をbcryptで比較
func (v *BcryptPasswordVerifier) Verify(plain string, hashed string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	return err == nil
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
