package repository

import (
	"context"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"

	"gorm.io/gorm"
)

type auditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) repo.AuditLogRepository {
	return &auditLogGormRepository{db: db}
}

func (r *auditLogGormRepository) Create(ctx context.Context, log model.AuditLog) error {
	if log.BeforeJSON == "" {
		log.BeforeJSON = "null"
	}
	if log.AfterJSON == "" {
		log.AfterJSON = "null"
	}
	return translateError(r.db.WithContext(ctx).Create(&log).Error)
}

func (r *auditLogGormRepository) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, int64, error) {
	query := func() *gorm.DB {
		return applyAuditLogFilter(r.db.WithContext(ctx).Model(&model.AuditLog{}), filter)
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return []model.AuditLog{}, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > repo.MaxAuditLogLimit {
		limit = repo.DefaultAuditLogLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	logs := []model.AuditLog{}
	err := query().Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&logs).Error
	if err != nil {
		return []model.AuditLog{}, 0, err
	}
	return logs, total, nil
}

func applyAuditLogFilter(q *gorm.DB, f repo.AuditLogFilter) *gorm.DB {
	if f.ActorUserID != nil {
		q = q.Where("actor_user_id = ?", *f.ActorUserID)
	}
	if f.Action != nil {
		q = q.Where("action = ?", *f.Action)
	}
	if f.ResourceType != nil {
		q = q.Where("resource_type = ?", *f.ResourceType)
	}
	if f.ResourceID != nil {
		q = q.Where("resource_id = ?", *f.ResourceID)
	}
	if f.CreatedFrom != nil {
		q = q.Where("created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		q = q.Where("created_at <= ?", *f.CreatedTo)
	}
	return q
}
