// Package seed はYAMLで書いたカタログをDBに入れる。
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"bookstore/internal/domain/model"
	"bookstore/internal/repository"
	"bookstore/internal/usecase"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// カタログファイル全体
type Catalog struct {
	Books []BookEntry `yaml:"books"`
}

type BookEntry struct {
	Title       string        `yaml:"title"`
	Author      string        `yaml:"author"`
	Slug        string        `yaml:"slug,omitempty"`
	Description string        `yaml:"description,omitempty"`
	CoverImage  string        `yaml:"cover_image,omitempty"`
	ISBN        string        `yaml:"isbn,omitempty"`
	Featured    bool          `yaml:"featured,omitempty"`
	Formats     []FormatEntry `yaml:"formats"`
}

// priceは 9.99 でも "9.99" でもよい
type FormatEntry struct {
	Type            string `yaml:"type"`
	Price           string `yaml:"price"`
	Pages           *int   `yaml:"pages,omitempty"`
	DurationMinutes *int   `yaml:"duration_minutes,omitempty"`
	Narrator        string `yaml:"narrator,omitempty"`
	SampleURL       string `yaml:"sample_url,omitempty"`
	FileURL         string `yaml:"file_url,omitempty"`
}

type Result struct {
	Created int
	Skipped int
}

// LoadFile はYAMLファイルを読む。
func LoadFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}
	for i := range c.Books {
		b := &c.Books[i]
		if b.Slug == "" {
			b.Slug = usecase.Slugify(b.Title)
		}
	}
	return c, nil
}

// 本をモデルにする。形式の重複や不正な価格はエラー
func (e BookEntry) toModel() (model.Book, error) {
	if strings.TrimSpace(e.Title) == "" || strings.TrimSpace(e.Author) == "" {
		return model.Book{}, errors.New("title and author are required")
	}
	slug := usecase.Slugify(e.Slug)
	if slug == "" {
		return model.Book{}, fmt.Errorf("%q: invalid slug", e.Title)
	}

	b := model.Book{
		Title:       strings.TrimSpace(e.Title),
		Author:      strings.TrimSpace(e.Author),
		Slug:        slug,
		Description: e.Description,
		CoverImage:  e.CoverImage,
		ISBN:        e.ISBN,
		Featured:    e.Featured,
	}

	seen := map[model.FormatType]bool{}
	for _, f := range e.Formats {
		ft := model.FormatType(strings.ToUpper(strings.TrimSpace(f.Type)))
		if !ft.Valid() {
			return model.Book{}, fmt.Errorf("%s: unknown format %q", slug, f.Type)
		}
		if seen[ft] {
			return model.Book{}, fmt.Errorf("%s: duplicate format %s", slug, ft)
		}
		seen[ft] = true

		price, err := decimal.NewFromString(strings.TrimSpace(f.Price))
		if err != nil || price.IsNegative() {
			return model.Book{}, fmt.Errorf("%s %s: invalid price %q", slug, ft, f.Price)
		}

		b.Formats = append(b.Formats, model.BookFormat{
			Type:            ft,
			Price:           price.Round(2),
			Pages:           f.Pages,
			DurationMinutes: f.DurationMinutes,
			Narrator:        f.Narrator,
			SampleURL:       f.SampleURL,
			FileURL:         f.FileURL,
		})
	}
	return b, nil
}

// Apply は同じslugが無い本だけを作る。何度実行しても同じ結果になる。
func Apply(ctx context.Context, tx repository.TransactionManager, c Catalog) (Result, error) {
	var res Result

	books := make([]model.Book, 0, len(c.Books))
	for _, e := range c.Books {
		b, err := e.toModel()
		if err != nil {
			return Result{}, err
		}
		books = append(books, b)
	}

	err := tx.WithinTx(ctx, func(r repository.TxRepos) error {
		for i := range books {
			b := &books[i]
			_, err := r.Books().FindBySlug(ctx, b.Slug)
			if err == nil {
				res.Skipped++
				continue
			}
			if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			if err := r.Books().Create(ctx, b); err != nil {
				return fmt.Errorf("create %s: %w", b.Slug, err)
			}
			res.Created++
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}
