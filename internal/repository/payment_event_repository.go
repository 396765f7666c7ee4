package repository

import (
	"context"
	"time"

	"bookstore/internal/domain/model"
)

type PaymentEventRepository interface {
	// 同じ(provider, provider_event_id)があれば既存行を返す。新規ならcreated=true
	Record(ctx context.Context, ev model.PaymentEvent) (model.PaymentEvent, bool, error)
	MarkProcessed(ctx context.Context, id int64, at time.Time) error
}
