package usecase

import (
	"context"
	"net/http"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"

	"github.com/shopspring/decimal"
)

// ダッシュボードに出す最近の注文数
const recentOrdersLimit = 5

type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	users     repo.UserRepository
	auditRepo repo.AuditLogRepository
}

func NewAdminOrderUsecase(tx repo.TransactionManager, users repo.UserRepository, auditRepo repo.AuditLogRepository) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, users: users, auditRepo: auditRepo}
}

type AdminOrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// 注文一覧（購入者・明細つき）
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) (AdminOrderListOutput, error) {
	// page/limitの最低限チェック
	if f.Page < 1 {
		return AdminOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return AdminOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.Status != "" && !model.OrderStatus(f.Status).Valid() {
		return AdminOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return AdminOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "from must be <= to")
	}

	out := AdminOrderListOutput{Page: f.Page, Limit: f.Limit}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out.Total = total
		out.Items, err = withItems(ctx, r, orders)
		return err
	})

	if err != nil {
		return AdminOrderListOutput{}, err
	}
	return out, nil
}

type DashboardOutput struct {
	TotalBooks     int64           `json:"total_books"`
	TotalOrders    int64           `json:"total_orders"`
	Revenue        decimal.Decimal `json:"revenue"`
	TotalCustomers int64           `json:"total_customers"`
	RecentOrders   []OrderOutput   `json:"recent_orders"`
}

// 売上はPAIDの注文だけ
func (u *AdminOrderUsecase) Dashboard(ctx context.Context) (DashboardOutput, error) {
	var out DashboardOutput

	customers, err := u.users.CountByRole(ctx, model.RoleCustomer)
	if err != nil {
		return DashboardOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	out.TotalCustomers = customers

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		books, err := r.Books().Count(ctx)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		stats, err := r.Orders().Stats(ctx)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		recent, _, err := r.Orders().ListAdmin(ctx, repo.AdminOrderListFilter{Page: 1, Limit: recentOrdersLimit})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out.TotalBooks = books
		out.TotalOrders = stats.TotalOrders
		out.Revenue = stats.Revenue
		out.RecentOrders, err = withItems(ctx, r, recent)
		return err
	})

	if err != nil {
		return DashboardOutput{}, err
	}
	return out, nil
}

type AuditLogListOutput struct {
	Items  []model.AuditLog `json:"items"`
	Total  int64            `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// 管理者操作の履歴
func (u *AdminOrderUsecase) ListAuditLogs(ctx context.Context, f repo.AuditLogFilter) (AuditLogListOutput, error) {
	if f.Limit < 0 || f.Limit > repo.MaxAuditLogLimit {
		return AuditLogListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.Offset < 0 {
		return AuditLogListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid offset")
	}
	if f.Action != nil && !f.Action.Valid() {
		return AuditLogListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid action")
	}
	if f.Limit == 0 {
		f.Limit = repo.DefaultAuditLogLimit
	}

	logs, total, err := u.auditRepo.List(ctx, f)
	if err != nil {
		return AuditLogListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return AuditLogListOutput{Items: logs, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

func withItems(ctx context.Context, r repo.TxRepos, orders []model.Order) ([]OrderOutput, error) {
	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return []OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		outs = append(outs, toOrderOutput(o, items))
	}
	return outs, nil
}
