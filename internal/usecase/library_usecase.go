package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"bookstore/internal/domain/model"
	repo "bookstore/internal/repository"
)

type LibraryUsecase struct {
	purchases repo.PurchaseRepository
	log       Logger
}

func NewLibraryUsecase(purchases repo.PurchaseRepository, log Logger) *LibraryUsecase {
	return &LibraryUsecase{purchases: purchases, log: log}
}

type LibraryItemOutput struct {
	PurchaseID         int64     `json:"purchase_id"`
	BookID             int64     `json:"book_id"`
	BookTitle          string    `json:"book_title"`
	BookSlug           string    `json:"book_slug"`
	Author             string    `json:"author"`
	CoverImage         string    `json:"cover_image"`
	BookFormatID       int64     `json:"book_format_id"`
	FormatType         string    `json:"format_type"`
	DownloadCount      int       `json:"download_count"`
	MaxDownloads       int       `json:"max_downloads"`
	DownloadsRemaining int       `json:"downloads_remaining"`
	LimitReached       bool      `json:"limit_reached"`
	FileAvailable      bool      `json:"file_available"`
	PurchasedAt        time.Time `json:"purchased_at"`
}

// 自分のデジタル購入一覧（新しい順）
func (u *LibraryUsecase) Library(ctx context.Context, userID int64) ([]LibraryItemOutput, error) {
	if userID <= 0 {
		return []LibraryItemOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	purchases, err := u.purchases.ListByUserID(ctx, userID)
	if err != nil {
		return []LibraryItemOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs := make([]LibraryItemOutput, 0, len(purchases))
	for _, p := range purchases {
		outs = append(outs, toLibraryItemOutput(p))
	}
	return outs, nil
}

// ダウンロード可能ならカウントを1進めてファイルURLを返す。
// 上限に達していたらカウントは変えない。
func (u *LibraryUsecase) Download(ctx context.Context, userID int64, purchaseID int64) (string, error) {
	if userID <= 0 {
		return "", NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if purchaseID <= 0 {
		return "", NewHTTPError(http.StatusNotFound, "purchase not found")
	}

	//他人の購入は存在しない扱い
	p, err := u.purchases.FindByIDForUser(ctx, purchaseID, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return "", NewHTTPError(http.StatusNotFound, "purchase not found")
	}
	if err != nil {
		return "", NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if p.LimitReached() {
		return "", NewHTTPError(http.StatusForbidden, "download limit reached")
	}

	if p.BookFormat == nil || !p.BookFormat.HasFile() {
		return "", NewHTTPError(http.StatusNotFound, "file not available")
	}

	//同時リクエストでも上限を超えない
	ok, err := u.purchases.IncrementDownloadIfAvailable(ctx, p.ID)
	if err != nil {
		return "", NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !ok {
		return "", NewHTTPError(http.StatusForbidden, "download limit reached")
	}

	u.log.Infof("download: purchase %d by user %d (%d/%d)", p.ID, userID, p.DownloadCount+1, p.MaxDownloads)
	return p.BookFormat.FileURL, nil
}

func toLibraryItemOutput(p model.Purchase) LibraryItemOutput {
	out := LibraryItemOutput{
		PurchaseID:         p.ID,
		BookFormatID:       p.BookFormatID,
		DownloadCount:      p.DownloadCount,
		MaxDownloads:       p.MaxDownloads,
		DownloadsRemaining: p.DownloadsRemaining(),
		LimitReached:       p.LimitReached(),
		PurchasedAt:        p.PurchasedAt,
	}
	if f := p.BookFormat; f != nil {
		out.FormatType = string(f.Type)
		out.FileAvailable = f.HasFile()
		if b := f.Book; b != nil {
			out.BookID = b.ID
			out.BookTitle = b.Title
			out.BookSlug = b.Slug
			out.Author = b.Author
			out.CoverImage = b.CoverImage
		}
	}
	return out
}
