package repository

import (
	"context"

	"bookstore/internal/domain/model"
)

type PurchaseRepository interface {
	// (user_id, book_format_id) が既にあれば何もしない。作成したらtrue
	CreateIfAbsent(ctx context.Context, p *model.Purchase) (bool, error)

	// 所有者で絞って取得する。他人の購入はErrNotFound
	FindByIDForUser(ctx context.Context, purchaseID int64, userID int64) (model.Purchase, error)

	// 上限未満のときだけdownload_countを+1。上限に達していればfalse
	IncrementDownloadIfAvailable(ctx context.Context, purchaseID int64) (bool, error)

	ListByUserID(ctx context.Context, userID int64) ([]model.Purchase, error)
}
