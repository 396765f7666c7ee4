package repository

import (
	"context"
	"time"

	"bookstore/internal/domain/model"

	"github.com/shopspring/decimal"
)

type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
	From   *time.Time
	To     *time.Time
}

type OrderStats struct {
	TotalOrders int64
	//PAIDの注文合計
	Revenue decimal.Decimal
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
	SetPaymentID(ctx context.Context, orderID int64, paymentID string) error

	//管理者用の注文一覧（userを含む）
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
	Stats(ctx context.Context) (OrderStats, error)
}
