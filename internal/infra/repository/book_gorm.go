package repository

import (
	"context"
	"strings"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"

	"gorm.io/gorm"
)

type BookGormRepository struct {
	db *gorm.DB
}

// DI
func NewBookGormRepository(db *gorm.DB) *BookGormRepository {
	return &BookGormRepository{db: db}
}

func preloadFormats(db *gorm.DB) *gorm.DB {
	return db.Order("book_formats.price asc").Order("book_formats.id asc")
}

// タイトル/著者の部分一致・形式で絞り込み、新しい順で返す。
func (r *BookGormRepository) List(ctx context.Context, q repo.BookListQuery) ([]model.Book, error) {
	tx := r.db.WithContext(ctx).Model(&model.Book{}).Preload("Formats", preloadFormats)

	if s := strings.TrimSpace(q.Q); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		tx = tx.Where("(LOWER(books.title) LIKE ? OR LOWER(books.author) LIKE ?)", like, like)
	}

	//その形式を1つでも持つ本
	if q.Format != nil {
		tx = tx.Where(
			"EXISTS (SELECT 1 FROM book_formats bf WHERE bf.book_id = books.id AND bf.type = ?)",
			string(*q.Format),
		)
	}

	if q.FeaturedOnly {
		tx = tx.Where("books.featured = ?", true)
	}

	tx = tx.Order("books.created_at desc").Order("books.id desc")
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	books := []model.Book{}
	if err := tx.Find(&books).Error; err != nil {
		return []model.Book{}, err
	}
	return books, nil
}

func (r *BookGormRepository) FindByID(ctx context.Context, id int64) (model.Book, error) {
	var b model.Book
	err := r.db.WithContext(ctx).Preload("Formats", preloadFormats).First(&b, id).Error
	if err != nil {
		return model.Book{}, translateError(err)
	}
	return b, nil
}

func (r *BookGormRepository) FindBySlug(ctx context.Context, slug string) (model.Book, error) {
	var b model.Book
	err := r.db.WithContext(ctx).
		Preload("Formats", preloadFormats).
		Where("slug = ?", slug).
		First(&b).Error
	if err != nil {
		return model.Book{}, translateError(err)
	}
	return b, nil
}

// 書籍の作成（Formatsも一緒に作る）
func (r *BookGormRepository) Create(ctx context.Context, b *model.Book) error {
	if err := r.db.WithContext(ctx).Create(b).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// 書籍の更新（形式はUpsertFormatで更新する）
func (r *BookGormRepository) Update(ctx context.Context, b model.Book) error {
	res := r.db.WithContext(ctx).Model(&model.Book{}).Where("id = ?", b.ID).Updates(map[string]interface{}{
		"title":       b.Title,
		"author":      b.Author,
		"slug":        b.Slug,
		"description": b.Description,
		"cover_image": b.CoverImage,
		"isbn":        b.ISBN,
		"featured":    b.Featured,
	})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 書籍削除（論理削除）
func (r *BookGormRepository) SoftDelete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Book{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *BookGormRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Book{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// (book_id, type) が既にあれば更新、無ければ作成
func (r *BookGormRepository) UpsertFormat(ctx context.Context, f *model.BookFormat) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var book model.Book
		if err := tx.First(&book, f.BookID).Error; err != nil {
			return translateError(err)
		}

		var existing model.BookFormat
		err := tx.Where("book_id = ? AND type = ?", f.BookID, f.Type).First(&existing).Error
		if err != nil && !isNotFound(err) {
			return err
		}

		if isNotFound(err) {
			return translateError(tx.Create(f).Error)
		}

		f.ID = existing.ID
		f.CreatedAt = existing.CreatedAt
		return tx.Model(&model.BookFormat{}).Where("id = ?", existing.ID).Updates(map[string]interface{}{
			"price":            f.Price,
			"pages":            f.Pages,
			"duration_minutes": f.DurationMinutes,
			"narrator":         f.Narrator,
			"sample_url":       f.SampleURL,
			"file_url":         f.FileURL,
		}).Error
	})
}

// 削除済みの本の形式はBookがnilになる
func (r *BookGormRepository) FindFormatsByIDs(ctx context.Context, ids []int64) ([]model.BookFormat, error) {
	formats := []model.BookFormat{}
	if len(ids) == 0 {
		return formats, nil
	}
	if err := r.db.WithContext(ctx).
		Preload("Book").
		Where("id IN ?", ids).
		Find(&formats).Error; err != nil {
		return []model.BookFormat{}, err
	}
	return formats, nil
}
