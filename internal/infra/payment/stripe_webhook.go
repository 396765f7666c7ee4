package payment

import (
	"encoding/json"
	"fmt"

	"bookstore/internal/usecase"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Stripe-Signatureを検証してイベントを取り出す
type StripeWebhookParser struct {
	secret string
}

func NewStripeWebhookParser(secret string) *StripeWebhookParser {
	return &StripeWebhookParser{secret: secret}
}

func (p *StripeWebhookParser) ParseEvent(payload []byte, signature string) (usecase.PaymentEvent, error) {
	if signature == "" {
		return usecase.PaymentEvent{}, usecase.ErrInvalidSignature
	}

	// APIバージョンはダッシュボード側の設定に任せる
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return usecase.PaymentEvent{}, fmt.Errorf("%w: %v", usecase.ErrInvalidSignature, err)
	}

	out := usecase.PaymentEvent{
		ID:   event.ID,
		Type: string(event.Type),
	}

	if out.Type != usecase.EventCheckoutSessionCompleted || event.Data == nil {
		return out, nil
	}

	var s stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
		return usecase.PaymentEvent{}, fmt.Errorf("decode checkout session: %w", err)
	}
	out.OrderRef = s.Metadata[MetadataOrderID]
	return out, nil
}
