package usecase

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"
)

const providerStripe = "stripe"

var errOrderNotFound = errors.New("order not found")

type WebhookUsecase struct {
	tx           repo.TransactionManager
	parser       PaymentEventParser
	maxDownloads int
	log          Logger
	now          func() time.Time
}

// DI
func NewWebhookUsecase(tx repo.TransactionManager, parser PaymentEventParser, maxDownloads int, log Logger) *WebhookUsecase {
	if maxDownloads < 1 {
		maxDownloads = 5
	}
	return &WebhookUsecase{
		tx:           tx,
		parser:       parser,
		maxDownloads: maxDownloads,
		log:          log,
		now:          time.Now,
	}
}

type WebhookOutput struct {
	Received bool `json:"received"`
}

var ack = WebhookOutput{Received: true}

// 決済プロバイダからの通知を処理する。
// 署名が無い・不正なら何も変更しない。
func (u *WebhookUsecase) HandleStripe(ctx context.Context, payload []byte, signature string) (WebhookOutput, error) {
	if signature == "" {
		return WebhookOutput{}, NewHTTPError(http.StatusBadRequest, "no signature")
	}

	ev, err := u.parser.ParseEvent(payload, signature)
	if err != nil {
		u.log.Warnf("webhook: rejected event: %v", err)
		if errors.Is(err, ErrInvalidSignature) {
			return WebhookOutput{}, NewHTTPError(http.StatusBadRequest, "invalid signature")
		}
		return WebhookOutput{}, NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if ev.ID == "" {
		return WebhookOutput{}, NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	//決済完了以外は受け取るだけ
	if ev.Type != EventCheckoutSessionCompleted {
		return ack, nil
	}

	if ev.OrderRef == "" {
		u.log.Warnf("webhook: event %s has no orderId metadata", ev.ID)
		return ack, nil
	}
	orderID, err := strconv.ParseInt(ev.OrderRef, 10, 64)
	if err != nil || orderID <= 0 {
		//再送されても直らないので受け取って終わり
		u.log.Warnf("webhook: event %s has invalid orderId %q", ev.ID, ev.OrderRef)
		return ack, nil
	}

	duplicate := false
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		pe, created, err := r.PaymentEvents().Record(ctx, model.PaymentEvent{
			Provider:        providerStripe,
			ProviderEventID: ev.ID,
			EventType:       ev.Type,
			OrderID:         orderID,
		})
		if err != nil {
			return err
		}
		if !created && pe.ProcessedAt != nil {
			duplicate = true
			return nil
		}

		if err := u.markPaid(ctx, r, orderID); err != nil {
			return err
		}

		return r.PaymentEvents().MarkProcessed(ctx, pe.ID, u.now())
	})
	if err != nil {
		u.log.Errorf("webhook: event %s order %d: %v", ev.ID, orderID, err)
		return WebhookOutput{}, NewHTTPError(http.StatusInternalServerError, "failed to process order")
	}

	if duplicate {
		u.log.Infof("webhook: event %s already processed", ev.ID)
	} else {
		u.log.Infof("webhook: order %d paid", orderID)
	}
	return ack, nil
}

// PAIDにしてデジタル形式の購入権を付与する。
// 既にある購入権（同じユーザー・同じ形式）はそのまま。
func (u *WebhookUsecase) markPaid(ctx context.Context, r repo.TxRepos, orderID int64) error {
	order, err := r.Orders().FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return errOrderNotFound
	}
	if err != nil {
		return err
	}

	if err := r.Orders().UpdateStatus(ctx, orderID, model.OrderStatusPaid); err != nil {
		return err
	}

	items, err := r.OrderItems().ListByOrderID(ctx, orderID)
	if err != nil {
		return err
	}

	for _, it := range items {
		if it.BookFormat == nil || !it.BookFormat.Type.IsDigital() {
			continue
		}
		if _, err := r.Purchases().CreateIfAbsent(ctx, &model.Purchase{
			UserID:        order.UserID,
			BookFormatID:  it.BookFormatID,
			OrderID:       orderID,
			DownloadCount: 0,
			MaxDownloads:  u.maxDownloads,
		}); err != nil {
			return err
		}
	}
	return nil
}
