package repository

import (
	"context"
	"time"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentEventGormRepository struct {
	db *gorm.DB
}

func NewPaymentEventGormRepository(db *gorm.DB) *PaymentEventGormRepository {
	return &PaymentEventGormRepository{db: db}
}

func (r *PaymentEventGormRepository) Record(ctx context.Context, ev model.PaymentEvent) (model.PaymentEvent, bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider"}, {Name: "provider_event_id"}},
			DoNothing: true,
		}).
		Create(&ev)
	if res.Error != nil {
		return model.PaymentEvent{}, false, res.Error
	}
	if res.RowsAffected == 1 {
		return ev, true, nil
	}

	//再送：既存行を返す
	var existing model.PaymentEvent
	if err := r.db.WithContext(ctx).
		Where("provider = ? AND provider_event_id = ?", ev.Provider, ev.ProviderEventID).
		First(&existing).Error; err != nil {
		return model.PaymentEvent{}, false, translateError(err)
	}
	return existing, false, nil
}

func (r *PaymentEventGormRepository) MarkProcessed(ctx context.Context, id int64, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.PaymentEvent{}).
		Where("id = ?", id).
		Update("processed_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
