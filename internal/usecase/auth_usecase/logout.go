package auth

import (
	"context"
	"errors"

	"bookstore/internal/repository"
)

// ユーザーが見つからない（トークンは有効だったが削除済みなど）
var ErrUserNotFound = errors.New("user not found")

// token_versionを上げて、発行済みのアクセストークンを全部無効にする
type LogoutUsecase struct {
	userRepo repository.UserRepository
}

func NewLogoutUsecase(userRepo repository.UserRepository) *LogoutUsecase {
	return &LogoutUsecase{userRepo: userRepo}
}

func (u *LogoutUsecase) Execute(ctx context.Context, userID int64) error {
	if err := u.userRepo.IncrementTokenVersion(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// GET /auth/me
type MeUsecase struct {
	userRepo repository.UserRepository
}

func NewMeUsecase(userRepo repository.UserRepository) *MeUsecase {
	return &MeUsecase{userRepo: userRepo}
}

func (u *MeUsecase) Execute(ctx context.Context, userID int64) (UserDTO, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return UserDTO{}, err
	}
	if user == nil {
		return UserDTO{}, ErrUserNotFound
	}
	if !user.IsActive {
		return UserDTO{}, ErrUserInactive
	}
	return ToUserDTO(user), nil
}
