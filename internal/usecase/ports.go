package usecase

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// 決済画面に出す明細1行
type CheckoutLine struct {
	Name        string
	Description string
	UnitPrice   decimal.Decimal
	Quantity    int64
}

type CheckoutSessionRequest struct {
	OrderID    int64
	Lines      []CheckoutLine
	SuccessURL string
	CancelURL  string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// 外部の決済ページを作る約束（Stripe Checkout）
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (CheckoutSession, error)
}

// webhookの署名が無い・合わない
var ErrInvalidSignature = errors.New("invalid signature")

// 決済完了のイベント種別
const EventCheckoutSessionCompleted = "checkout.session.completed"

// 署名検証済みのwebhookイベント
type PaymentEvent struct {
	ID   string
	Type string
	// metadata.orderId。無ければ空
	OrderRef string
}

// webhookの署名検証とパースの約束。署名不正はErrInvalidSignature
type PaymentEventParser interface {
	ParseEvent(payload []byte, signature string) (PaymentEvent, error)
}

// usecaseが使うログ出力。gommonの*log.Loggerがそのまま満たす
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}
