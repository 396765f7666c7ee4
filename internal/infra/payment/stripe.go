package payment

import (
	"context"
	"errors"
	"strconv"

	"bookstore/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
)

// Stripe Checkoutのmetadataに入れる注文IDのキー
const MetadataOrderID = "orderId"

var hundred = decimal.NewFromInt(100)

// Stripe Checkout（ホスト型の決済ページ）
type StripeGateway struct {
	client   session.Client
	currency string
}

// backendがnilなら本番APIを使う
func NewStripeGateway(secretKey string, currency string, backend stripe.Backend) *StripeGateway {
	if backend == nil {
		backend = stripe.GetBackend(stripe.APIBackend)
	}
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	return &StripeGateway{
		client:   session.Client{B: backend, Key: secretKey},
		currency: currency,
	}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req usecase.CheckoutSessionRequest) (usecase.CheckoutSession, error) {
	if len(req.Lines) == 0 {
		return usecase.CheckoutSession{}, errors.New("no line items")
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.Lines))
	for _, l := range req.Lines {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(l.Name),
		}
		//空文字はStripeに拒否される
		if l.Description != "" {
			product.Description = stripe.String(l.Description)
		}

		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(g.currency),
				ProductData: product,
				UnitAmount:  stripe.Int64(toMinorUnits(l.UnitPrice)),
			},
			Quantity: stripe.Int64(l.Quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
	}
	params.Context = ctx
	params.AddMetadata(MetadataOrderID, strconv.FormatInt(req.OrderID, 10))

	s, err := g.client.New(params)
	if err != nil {
		return usecase.CheckoutSession{}, err
	}
	return usecase.CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

// ドル→セント
func toMinorUnits(price decimal.Decimal) int64 {
	return price.Mul(hundred).Round(0).IntPart()
}
