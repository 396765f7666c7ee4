package repository

import (
	"context"

	repo "bookstore/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	orders        repo.OrderRepository
	orderItems    repo.OrderItemRepository
	purchases     repo.PurchaseRepository
	books         repo.BookRepository
	paymentEvents repo.PaymentEventRepository
	auditLogs     repo.AuditLogRepository
}

func (r *txReposGorm) Orders() repo.OrderRepository               { return r.orders }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository       { return r.orderItems }
func (r *txReposGorm) Purchases() repo.PurchaseRepository         { return r.purchases }
func (r *txReposGorm) Books() repo.BookRepository                 { return r.books }
func (r *txReposGorm) PaymentEvents() repo.PaymentEventRepository { return r.paymentEvents }
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository         { return r.auditLogs }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			orders:        NewOrderGormRepository(tx),
			orderItems:    NewOrderItemGormRepository(tx),
			purchases:     NewPurchaseGormRepository(tx),
			books:         NewBookGormRepository(tx),
			paymentEvents: NewPaymentEventGormRepository(tx),
			auditLogs:     NewAuditLogGormRepository(tx),
		}
		return fn(r)
	})
}
