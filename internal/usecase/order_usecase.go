package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"

	"github.com/shopspring/decimal"
)

// 購入履歴で返す件数
const myOrdersLimit = 50

type OrderUsecase struct {
	tx repo.TransactionManager
}

func NewOrderUsecase(tx repo.TransactionManager) *OrderUsecase {
	return &OrderUsecase{tx: tx}
}

type OrderItemOutput struct {
	ID           int64           `json:"id"`
	BookFormatID int64           `json:"book_format_id"`
	BookTitle    string          `json:"book_title"`
	FormatType   string          `json:"format_type"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int64           `json:"quantity"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

type ShippingOutput struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// 管理者向けに付ける購入者
type CustomerOutput struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type OrderOutput struct {
	ID            int64             `json:"id"`
	UserID        int64             `json:"user_id"`
	Status        string            `json:"status"`
	Total         decimal.Decimal   `json:"total"`
	PaymentMethod string            `json:"payment_method"`
	PaymentID     string            `json:"payment_id,omitempty"`
	Shipping      *ShippingOutput   `json:"shipping,omitempty"`
	Customer      *CustomerOutput   `json:"customer,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	Items         []OrderItemOutput `json:"items"`
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByUserID(ctx, userID, 1, myOrdersLimit)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			//他人の注文は「存在しない扱い」にする
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		oi := OrderItemOutput{
			ID:           it.ID,
			BookFormatID: it.BookFormatID,
			Price:        it.Price,
			Quantity:     it.Quantity,
			Subtotal:     it.Subtotal(),
		}
		if f := it.BookFormat; f != nil {
			oi.FormatType = string(f.Type)
			if f.Book != nil {
				oi.BookTitle = f.Book.Title
			}
		}
		outItems = append(outItems, oi)
	}

	out := OrderOutput{
		ID:            o.ID,
		UserID:        o.UserID,
		Status:        string(o.Status),
		Total:         o.Total,
		PaymentMethod: string(o.PaymentMethod),
		PaymentID:     o.PaymentID,
		CreatedAt:     o.CreatedAt,
		Items:         outItems,
	}
	if hasShipping(o) {
		out.Shipping = &ShippingOutput{
			Name:    o.ShippingName,
			Address: o.ShippingAddress,
			City:    o.ShippingCity,
			State:   o.ShippingState,
			Zip:     o.ShippingZip,
			Country: o.ShippingCountry,
		}
	}
	if o.User != nil {
		out.Customer = &CustomerOutput{ID: o.User.ID, Name: o.User.Name, Email: o.User.Email}
	}
	return out
}

func hasShipping(o model.Order) bool {
	return o.ShippingName != "" || o.ShippingAddress != "" || o.ShippingCity != "" ||
		o.ShippingState != "" || o.ShippingZip != "" || o.ShippingCountry != ""
}
