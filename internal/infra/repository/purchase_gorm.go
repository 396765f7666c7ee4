package repository

import (
	"context"

	"bookstore/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PurchaseGormRepository struct {
	db *gorm.DB
}

func NewPurchaseGormRepository(db *gorm.DB) *PurchaseGormRepository {
	return &PurchaseGormRepository{db: db}
}

func withBook(db *gorm.DB) *gorm.DB {
	return db.Preload("BookFormat").
		Preload("BookFormat.Book", func(db *gorm.DB) *gorm.DB { return db.Unscoped() })
}

// 既存の (user_id, book_format_id) には触らない（webhook再送対策）
func (r *PurchaseGormRepository) CreateIfAbsent(ctx context.Context, p *model.Purchase) (bool, error) {
	res := r.db.WithContext(ctx).
		Omit("BookFormat").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "book_format_id"}},
			DoNothing: true,
		}).
		Create(p)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// 所有者チェックは検索条件に含める（他人の購入は存在しない扱い）
func (r *PurchaseGormRepository) FindByIDForUser(ctx context.Context, purchaseID int64, userID int64) (model.Purchase, error) {
	var p model.Purchase
	err := withBook(r.db.WithContext(ctx)).
		Where("id = ? AND user_id = ?", purchaseID, userID).
		First(&p).Error
	if err != nil {
		return model.Purchase{}, translateError(err)
	}
	return p, nil
}

// 上限未満のときだけ+1する
func (r *PurchaseGormRepository) IncrementDownloadIfAvailable(ctx context.Context, purchaseID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Purchase{}).
		Where("id = ? AND download_count < max_downloads", purchaseID).
		UpdateColumn("download_count", gorm.Expr("download_count + ?", 1))

	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *PurchaseGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Purchase, error) {
	purchases := []model.Purchase{}
	err := withBook(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("purchased_at desc").
		Order("id desc").
		Find(&purchases).Error
	if err != nil {
		return []model.Purchase{}, err
	}
	return purchases, nil
}
