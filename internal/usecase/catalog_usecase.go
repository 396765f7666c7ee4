package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"

	"github.com/shopspring/decimal"
)

// トップページに出すおすすめの数
const featuredLimit = 6

type CatalogUsecase struct {
	books repo.BookRepository
	tx    repo.TransactionManager
}

// DI
func NewCatalogUsecase(books repo.BookRepository, tx repo.TransactionManager) *CatalogUsecase {
	return &CatalogUsecase{books: books, tx: tx}
}

// GET /books の入力
type ListBooksInput struct {
	Q      string
	Format string
}

// 一覧（ページングなし・新しい順）
func (u *CatalogUsecase) ListBooks(ctx context.Context, in ListBooksInput) ([]model.Book, error) {
	q := strings.TrimSpace(in.Q)
	if len(q) > 100 {
		return []model.Book{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}

	query := repo.BookListQuery{Q: q}
	if f := strings.TrimSpace(in.Format); f != "" {
		ft := model.FormatType(strings.ToUpper(f))
		if !ft.Valid() {
			return []model.Book{}, NewHTTPError(http.StatusBadRequest, "invalid format")
		}
		query.Format = &ft
	}

	books, err := u.books.List(ctx, query)
	if err != nil {
		return []model.Book{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return books, nil
}

func (u *CatalogUsecase) FeaturedBooks(ctx context.Context) ([]model.Book, error) {
	books, err := u.books.List(ctx, repo.BookListQuery{FeaturedOnly: true, Limit: featuredLimit})
	if err != nil {
		return []model.Book{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return books, nil
}

func (u *CatalogUsecase) GetBookBySlug(ctx context.Context, slug string) (model.Book, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return model.Book{}, NewHTTPError(http.StatusBadRequest, "invalid slug")
	}

	b, err := u.books.FindBySlug(ctx, slug)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Book{}, NewHTTPError(http.StatusNotFound, "book not found")
	}
	if err != nil {
		return model.Book{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return b, nil
}

// 管理者用：書籍の入力
type AdminBookInput struct {
	Title       string
	Author      string
	Slug        string
	Description string
	CoverImage  string
	ISBN        string
	Featured    bool
	// 作成時だけ使う
	Formats []AdminFormatInput
}

// 管理者用：形式の入力
type AdminFormatInput struct {
	Type            string
	Price           decimal.Decimal
	Pages           *int
	DurationMinutes *int
	Narrator        string
	SampleURL       string
	FileURL         string
}

func (in AdminBookInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return NewHTTPError(http.StatusBadRequest, "title required")
	}
	if strings.TrimSpace(in.Author) == "" {
		return NewHTTPError(http.StatusBadRequest, "author required")
	}
	return nil
}

func (in AdminFormatInput) toModel(bookID int64) (model.BookFormat, error) {
	ft := model.FormatType(strings.ToUpper(strings.TrimSpace(in.Type)))
	if !ft.Valid() {
		return model.BookFormat{}, NewHTTPError(http.StatusBadRequest, "invalid format")
	}
	if in.Price.IsNegative() {
		return model.BookFormat{}, NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	return model.BookFormat{
		BookID:          bookID,
		Type:            ft,
		Price:           in.Price.Round(2),
		Pages:           in.Pages,
		DurationMinutes: in.DurationMinutes,
		Narrator:        strings.TrimSpace(in.Narrator),
		SampleURL:       strings.TrimSpace(in.SampleURL),
		FileURL:         strings.TrimSpace(in.FileURL),
	}, nil
}

func (u *CatalogUsecase) AdminCreateBook(ctx context.Context, adminUserID int64, in AdminBookInput) (model.Book, error) {
	if adminUserID <= 0 {
		return model.Book{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := in.validate(); err != nil {
		return model.Book{}, err
	}

	slug := Slugify(in.Slug)
	if slug == "" {
		slug = Slugify(in.Title)
	}
	if slug == "" {
		return model.Book{}, NewHTTPError(http.StatusBadRequest, "invalid slug")
	}

	b := model.Book{
		Title:       strings.TrimSpace(in.Title),
		Author:      strings.TrimSpace(in.Author),
		Slug:        slug,
		Description: in.Description,
		CoverImage:  strings.TrimSpace(in.CoverImage),
		ISBN:        strings.TrimSpace(in.ISBN),
		Featured:    in.Featured,
	}

	seen := map[model.FormatType]bool{}
	for _, fin := range in.Formats {
		f, err := fin.toModel(0)
		if err != nil {
			return model.Book{}, err
		}
		if seen[f.Type] {
			return model.Book{}, NewHTTPError(http.StatusBadRequest, "duplicate format")
		}
		seen[f.Type] = true
		b.Formats = append(b.Formats, f)
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Books().Create(ctx, &b); err != nil {
			if errors.Is(err, repo.ErrConflict) {
				return NewHTTPError(http.StatusConflict, "slug already exists")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return writeAudit(ctx, r, adminUserID, model.AuditActionCreateBook, model.AuditResourceBook, b.ID, nil, b)
	})
	if err != nil {
		return model.Book{}, err
	}
	return b, nil
}

func (u *CatalogUsecase) AdminUpdateBook(ctx context.Context, adminUserID int64, bookID int64, in AdminBookInput) (model.Book, error) {
	if adminUserID <= 0 {
		return model.Book{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if bookID <= 0 {
		return model.Book{}, NewHTTPError(http.StatusBadRequest, "invalid book id")
	}
	if err := in.validate(); err != nil {
		return model.Book{}, err
	}

	var out model.Book
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Books().FindByID(ctx, bookID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "book not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		after := before
		after.Title = strings.TrimSpace(in.Title)
		after.Author = strings.TrimSpace(in.Author)
		after.Description = in.Description
		after.CoverImage = strings.TrimSpace(in.CoverImage)
		after.ISBN = strings.TrimSpace(in.ISBN)
		after.Featured = in.Featured
		//slug未指定なら変えない
		if s := Slugify(in.Slug); s != "" {
			after.Slug = s
		}

		if err := r.Books().Update(ctx, after); err != nil {
			if errors.Is(err, repo.ErrConflict) {
				return NewHTTPError(http.StatusConflict, "slug already exists")
			}
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "book not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = after
		return writeAudit(ctx, r, adminUserID, model.AuditActionUpdateBook, model.AuditResourceBook, bookID, before, after)
	})
	if err != nil {
		return model.Book{}, err
	}
	return out, nil
}

func (u *CatalogUsecase) AdminDeleteBook(ctx context.Context, adminUserID int64, bookID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if bookID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid book id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Books().FindByID(ctx, bookID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "book not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//論理削除（注文履歴からは引ける）
		if err := r.Books().SoftDelete(ctx, bookID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "book not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return writeAudit(ctx, r, adminUserID, model.AuditActionDeleteBook, model.AuditResourceBook, bookID, before, nil)
	})
}

func (u *CatalogUsecase) AdminUpsertFormat(ctx context.Context, adminUserID int64, bookID int64, in AdminFormatInput) (model.BookFormat, error) {
	if adminUserID <= 0 {
		return model.BookFormat{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if bookID <= 0 {
		return model.BookFormat{}, NewHTTPError(http.StatusBadRequest, "invalid book id")
	}
	f, err := in.toModel(bookID)
	if err != nil {
		return model.BookFormat{}, err
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Books().UpsertFormat(ctx, &f); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "book not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return writeAudit(ctx, r, adminUserID, model.AuditActionUpsertFormat, model.AuditResourceBookFormat, f.ID, nil, f)
	})
	if err != nil {
		return model.BookFormat{}, err
	}
	return f, nil
}

// 監査ログを作成
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す
func writeAudit(ctx context.Context, r repo.TxRepos, actor int64, action model.AuditAction, rt model.AuditResourceType, resourceID int64, before, after interface{}) error {
	if err := r.AuditLogs().Create(ctx, model.AuditLog{
		ActorUserID:  actor,
		Action:       action,
		ResourceType: rt,
		ResourceID:   resourceID,
		BeforeJSON:   toAuditJSON(before),
		AfterJSON:    toAuditJSON(after),
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func toAuditJSON(v interface{}) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// "The Hobbit: 2nd Ed." -> "the-hobbit-2nd-ed"
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSlugChars.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
