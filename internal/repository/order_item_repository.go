package repository

import (
	"context"

	"bookstore/internal/domain/model"
)

type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	// BookFormatとBookを含めて返す
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
}
