package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"bookstore/internal/domain/cart"
	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"
)

type CheckoutUsecase struct {
	tx      repo.TransactionManager
	gateway PaymentGateway
	appURL  string
	log     Logger
}

// DI
func NewCheckoutUsecase(tx repo.TransactionManager, gateway PaymentGateway, appURL string, log Logger) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:      tx,
		gateway: gateway,
		appURL:  strings.TrimRight(appURL, "/"),
		log:     log,
	}
}

// 配送先（紙の本のみ。デジタルだけなら空でよい）
type ShippingInfo struct {
	Name    string
	Address string
	City    string
	State   string
	Zip     string
	Country string
}

type CheckoutInput struct {
	Items         []cart.Item
	PaymentMethod string
	Shipping      *ShippingInfo
}

// stripe: session_url / paypal: approval_url
type CheckoutOutput struct {
	OrderID     int64  `json:"order_id"`
	SessionURL  string `json:"session_url,omitempty"`
	ApprovalURL string `json:"approval_url,omitempty"`
	Message     string `json:"message,omitempty"`
}

func (u *CheckoutUsecase) Checkout(ctx context.Context, userID int64, in CheckoutInput) (CheckoutOutput, error) {
	if userID <= 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	c := cart.FromItems(in.Items)
	if c.IsEmpty() {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "cart is empty")
	}
	for _, it := range c.Items {
		if it.BookFormatID <= 0 {
			return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "invalid book_format_id")
		}
		if it.Quantity < 1 {
			return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
		}
		if it.Price.IsNegative() {
			return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "invalid price")
		}
	}

	method := strings.ToLower(strings.TrimSpace(in.PaymentMethod))
	var pm model.PaymentMethod
	switch method {
	case "stripe":
		pm = model.PaymentMethodStripe
	case "paypal":
		pm = model.PaymentMethodPayPal
	default:
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "invalid payment method")
	}

	//合計は送られてきた単価×数量（カタログ価格と一致するものだけ通す）
	total := c.TotalPrice()

	var orderID int64
	var lines []CheckoutLine

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		formats, err := r.Books().FindFormatsByIDs(ctx, formatIDs(c.Items))
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		byID := make(map[int64]model.BookFormat, len(formats))
		for _, f := range formats {
			byID[f.ID] = f
		}

		items := make([]model.OrderItem, 0, len(c.Items))
		lines = make([]CheckoutLine, 0, len(c.Items))
		for _, it := range c.Items {
			f, ok := byID[it.BookFormatID]
			//削除済みの本も買えない
			if !ok || f.Book == nil {
				return NewHTTPError(http.StatusBadRequest, "book format not found")
			}
			if !f.Price.Equal(it.Price) {
				return NewHTTPError(http.StatusConflict, "price changed")
			}

			//価格は注文時点の値をコピー
			items = append(items, model.OrderItem{
				BookFormatID: it.BookFormatID,
				Price:        it.Price,
				Quantity:     it.Quantity,
			})
			lines = append(lines, CheckoutLine{
				Name:        f.Book.Title,
				Description: string(f.Type),
				UnitPrice:   it.Price,
				Quantity:    it.Quantity,
			})
		}

		order := model.Order{
			UserID:        userID,
			Status:        model.OrderStatusPending,
			Total:         total,
			PaymentMethod: pm,
		}
		if s := in.Shipping; s != nil {
			order.ShippingName = strings.TrimSpace(s.Name)
			order.ShippingAddress = strings.TrimSpace(s.Address)
			order.ShippingCity = strings.TrimSpace(s.City)
			order.ShippingState = strings.TrimSpace(s.State)
			order.ShippingZip = strings.TrimSpace(s.Zip)
			order.ShippingCountry = strings.TrimSpace(s.Country)
		}

		id, err := r.Orders().Create(ctx, order)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.OrderItems().CreateBulk(ctx, id, items); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		orderID = id
		return nil
	})
	if err != nil {
		return CheckoutOutput{}, err
	}

	if pm == model.PaymentMethodPayPal {
		//PayPalは未連携
		return CheckoutOutput{
			OrderID:     orderID,
			ApprovalURL: "#",
			Message:     "PayPal integration pending",
		}, nil
	}

	//決済セッション作成。失敗してもPENDINGの注文は残る
	session, err := u.gateway.CreateCheckoutSession(ctx, CheckoutSessionRequest{
		OrderID:    orderID,
		Lines:      lines,
		SuccessURL: fmt.Sprintf("%s/checkout/success?session_id={CHECKOUT_SESSION_ID}&order_id=%d", u.appURL, orderID),
		CancelURL:  u.appURL + "/checkout/cancel",
	})
	if err != nil {
		u.log.Errorf("checkout: create payment session for order %d: %v", orderID, err)
		return CheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "failed to create payment session")
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		return r.Orders().SetPaymentID(ctx, orderID, session.ID)
	})
	if err != nil {
		u.log.Errorf("checkout: save payment id for order %d: %v", orderID, err)
		if errors.Is(err, repo.ErrNotFound) {
			return CheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "order not found")
		}
		return CheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return CheckoutOutput{
		OrderID:    orderID,
		SessionURL: session.URL,
	}, nil
}

// 重複を除いた形式ID
func formatIDs(items []cart.Item) []int64 {
	seen := make(map[int64]bool, len(items))
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		if seen[it.BookFormatID] {
			continue
		}
		seen[it.BookFormatID] = true
		ids = append(ids, it.BookFormatID)
	}
	return ids
}
