package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"bookstore/internal/domain/cart"
	"bookstore/internal/domain/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func catalogFormat(id int64, title string, ft model.FormatType, price string) model.BookFormat {
	return model.BookFormat{ID: id, Type: ft, Price: d(price), Book: &model.Book{ID: id * 10, Title: title}}
}

func requireHTTPStatus(t *testing.T, err error, status int) *HTTPError {
	t.Helper()
	he, ok := AsHTTPError(err)
	require.True(t, ok, "expected HTTPError, got %v", err)
	assert.Equal(t, status, he.Status)
	return he
}

func TestCheckout_Stripe_CreatesPendingOrderWithSubmittedTotal(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	gw := new(GatewayMock)

	items := []cart.Item{
		{BookFormatID: 1, BookTitle: "Dune", FormatType: "EBOOK", Price: d("9.99"), Quantity: 2},
		{BookFormatID: 2, BookTitle: "Emma", FormatType: "PAPERBACK", Price: d("19.99"), Quantity: 1},
	}

	f.books.On("FindFormatsByIDs", ctx, []int64{1, 2}).Return([]model.BookFormat{
		catalogFormat(1, "Dune", model.FormatEbook, "9.99"),
		catalogFormat(2, "Emma", model.FormatPaperback, "19.99"),
	}, nil).Once()

	f.orders.On("Create", ctx, mock.MatchedBy(func(o model.Order) bool {
		return o.UserID == 7 &&
			o.Status == model.OrderStatusPending &&
			o.PaymentMethod == model.PaymentMethodStripe &&
			o.Total.Equal(d("39.97")) &&
			o.ShippingCity == "Austin"
	})).Return(int64(55), nil).Once()

	f.orderItems.On("CreateBulk", ctx, int64(55), mock.MatchedBy(func(items []model.OrderItem) bool {
		return len(items) == 2 &&
			items[0].BookFormatID == 1 && items[0].Price.Equal(d("9.99")) && items[0].Quantity == 2 &&
			items[1].BookFormatID == 2 && items[1].Price.Equal(d("19.99")) && items[1].Quantity == 1
	})).Return(nil).Once()

	gw.On("CreateCheckoutSession", ctx, mock.MatchedBy(func(req CheckoutSessionRequest) bool {
		return req.OrderID == 55 &&
			len(req.Lines) == 2 &&
			req.Lines[0].Name == "Dune" && req.Lines[0].Description == "EBOOK" &&
			req.SuccessURL == "https://shop.example/checkout/success?session_id={CHECKOUT_SESSION_ID}&order_id=55" &&
			req.CancelURL == "https://shop.example/checkout/cancel"
	})).Return(CheckoutSession{ID: "cs_1", URL: "https://pay/cs_1"}, nil).Once()

	f.orders.On("SetPaymentID", ctx, int64(55), "cs_1").Return(nil).Once()

	uc := NewCheckoutUsecase(f.tx, gw, "https://shop.example/", nopLogger{})
	out, err := uc.Checkout(ctx, 7, CheckoutInput{
		Items:         items,
		PaymentMethod: "stripe",
		Shipping:      &ShippingInfo{Name: "Ann", City: "Austin"},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(55), out.OrderID)
	assert.Equal(t, "https://pay/cs_1", out.SessionURL)
	f.orders.AssertExpectations(t)
	f.orderItems.AssertExpectations(t)
	gw.AssertExpectations(t)
}

func TestCheckout_PayPal_Placeholder(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	gw := new(GatewayMock)

	f.books.On("FindFormatsByIDs", ctx, []int64{1}).Return([]model.BookFormat{
		catalogFormat(1, "Dune", model.FormatEbook, "9.99"),
	}, nil).Once()
	f.orders.On("Create", ctx, mock.MatchedBy(func(o model.Order) bool {
		return o.PaymentMethod == model.PaymentMethodPayPal && o.Status == model.OrderStatusPending
	})).Return(int64(3), nil).Once()
	f.orderItems.On("CreateBulk", ctx, int64(3), mock.Anything).Return(nil).Once()

	uc := NewCheckoutUsecase(f.tx, gw, "https://shop.example", nopLogger{})
	out, err := uc.Checkout(ctx, 7, CheckoutInput{
		Items:         []cart.Item{{BookFormatID: 1, Price: d("9.99"), Quantity: 1}},
		PaymentMethod: "PayPal",
	})

	require.NoError(t, err)
	assert.Equal(t, CheckoutOutput{OrderID: 3, ApprovalURL: "#", Message: "PayPal integration pending"}, out)
	gw.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
}

func TestCheckout_RejectsBadInputBeforeTx(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		userID int64
		in     CheckoutInput
		status int
		msg    string
	}{
		{"unauthenticated", 0, CheckoutInput{PaymentMethod: "stripe"}, http.StatusUnauthorized, "unauthorized"},
		{"empty cart", 7, CheckoutInput{PaymentMethod: "stripe"}, http.StatusBadRequest, "cart is empty"},
		{"zero quantity", 7, CheckoutInput{Items: []cart.Item{{BookFormatID: 1, Price: d("1"), Quantity: 0}}, PaymentMethod: "stripe"}, http.StatusBadRequest, "invalid quantity"},
		{"negative price", 7, CheckoutInput{Items: []cart.Item{{BookFormatID: 1, Price: d("-1"), Quantity: 1}}, PaymentMethod: "stripe"}, http.StatusBadRequest, "invalid price"},
		{"unknown method", 7, CheckoutInput{Items: []cart.Item{{BookFormatID: 1, Price: d("1"), Quantity: 1}}, PaymentMethod: "bitcoin"}, http.StatusBadRequest, "invalid payment method"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			uc := NewCheckoutUsecase(f.tx, new(GatewayMock), "https://shop.example", nopLogger{})

			_, err := uc.Checkout(ctx, tt.userID, tt.in)

			he := requireHTTPStatus(t, err, tt.status)
			assert.Equal(t, tt.msg, he.Message)
			f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
			f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCheckout_PriceMismatchIsConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.books.On("FindFormatsByIDs", ctx, []int64{1}).Return([]model.BookFormat{
		catalogFormat(1, "Dune", model.FormatEbook, "12.99"),
	}, nil).Once()

	uc := NewCheckoutUsecase(f.tx, new(GatewayMock), "https://shop.example", nopLogger{})
	_, err := uc.Checkout(ctx, 7, CheckoutInput{
		Items:         []cart.Item{{BookFormatID: 1, Price: d("9.99"), Quantity: 1}},
		PaymentMethod: "stripe",
	})

	he := requireHTTPStatus(t, err, http.StatusConflict)
	assert.Equal(t, "price changed", he.Message)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCheckout_UnknownFormat(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	// 削除済みの本（Bookがnil）も見つからない扱い
	f.books.On("FindFormatsByIDs", ctx, []int64{1, 2}).Return([]model.BookFormat{
		{ID: 1, Type: model.FormatEbook, Price: d("9.99")},
	}, nil).Once()

	uc := NewCheckoutUsecase(f.tx, new(GatewayMock), "https://shop.example", nopLogger{})
	_, err := uc.Checkout(ctx, 7, CheckoutInput{
		Items: []cart.Item{
			{BookFormatID: 1, Price: d("9.99"), Quantity: 1},
			{BookFormatID: 2, Price: d("5.00"), Quantity: 1},
		},
		PaymentMethod: "stripe",
	})

	he := requireHTTPStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, "book format not found", he.Message)
}

func TestCheckout_GatewayFailureKeepsPendingOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	gw := new(GatewayMock)

	f.books.On("FindFormatsByIDs", ctx, []int64{1}).Return([]model.BookFormat{
		catalogFormat(1, "Dune", model.FormatEbook, "9.99"),
	}, nil).Once()
	f.orders.On("Create", ctx, mock.Anything).Return(int64(9), nil).Once()
	f.orderItems.On("CreateBulk", ctx, int64(9), mock.Anything).Return(nil).Once()
	gw.On("CreateCheckoutSession", ctx, mock.Anything).Return(CheckoutSession{}, errors.New("stripe down")).Once()

	uc := NewCheckoutUsecase(f.tx, gw, "https://shop.example", nopLogger{})
	_, err := uc.Checkout(ctx, 7, CheckoutInput{
		Items:         []cart.Item{{BookFormatID: 1, Price: d("9.99"), Quantity: 1}},
		PaymentMethod: "stripe",
	})

	requireHTTPStatus(t, err, http.StatusInternalServerError)
	f.orders.AssertNotCalled(t, "SetPaymentID", mock.Anything, mock.Anything, mock.Anything)
	f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}
