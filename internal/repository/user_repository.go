package repository

import (
	"bookstore/internal/domain/model"
	"context"
)

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成。email重複はErrConflict
	Create(ctx context.Context, user *model.User) error
	// 見つからなければ (nil, nil)
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	// 見つからなければ (nil, nil)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	//トークンのバージョンを＋１
	IncrementTokenVersion(ctx context.Context, userID int64) error
	CountByRole(ctx context.Context, role model.Role) (int64, error)
}
