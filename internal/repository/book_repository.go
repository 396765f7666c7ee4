package repository

import (
	"context"

	"bookstore/internal/domain/model"
)

// 一覧検索
type BookListQuery struct {
	//タイトルか著者の部分一致（大文字小文字を区別しない）
	Q string
	//指定形式を持つ本だけ
	Format *model.FormatType
	//おすすめだけ
	FeaturedOnly bool
	//0なら無制限
	Limit int
}

// 書籍と形式の保存・取得
type BookRepository interface {
	List(ctx context.Context, q BookListQuery) ([]model.Book, error)
	FindByID(ctx context.Context, id int64) (model.Book, error)
	FindBySlug(ctx context.Context, slug string) (model.Book, error)
	Create(ctx context.Context, b *model.Book) error
	Update(ctx context.Context, b model.Book) error
	SoftDelete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)

	// (book_id, type) で作成または更新
	UpsertFormat(ctx context.Context, f *model.BookFormat) error
	// Bookを含めて返す。見つからないIDは結果に含まれない
	FindFormatsByIDs(ctx context.Context, ids []int64) ([]model.BookFormat, error)
}
