package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 書籍の形式
type FormatType string

const (
	FormatAudiobook FormatType = "AUDIOBOOK"
	FormatEbook     FormatType = "EBOOK"
	FormatPaperback FormatType = "PAPERBACK"
	FormatHardcover FormatType = "HARDCOVER"
)

// 定義済みの形式か
func (t FormatType) Valid() bool {
	switch t {
	case FormatAudiobook, FormatEbook, FormatPaperback, FormatHardcover:
		return true
	}
	return false
}

// ダウンロードできる形式（購入でPurchaseが作られる）はAUDIOBOOKとEBOOKだけ
func (t FormatType) IsDigital() bool {
	return t == FormatAudiobook || t == FormatEbook
}

// 書籍。管理者だけが作成・編集する。
type Book struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title"`
	Author      string         `gorm:"type:varchar(255);not null;index" json:"author"`
	Slug        string         `gorm:"type:varchar(255);not null;uniqueIndex" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	CoverImage  string         `gorm:"type:varchar(1024)" json:"cover_image"`
	ISBN        string         `gorm:"column:isbn;type:varchar(32);index" json:"isbn,omitempty"`
	Featured    bool           `gorm:"not null;default:false;index" json:"featured"`
	Formats     []BookFormat   `gorm:"foreignKey:BookID" json:"formats"`
	CreatedAt   time.Time      `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// 書籍ごとの販売形式。1冊につき同じ形式は1つ。
type BookFormat struct {
	ID     int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	BookID int64      `gorm:"not null;uniqueIndex:idx_book_formats_book_type,priority:1" json:"book_id"`
	Type   FormatType `gorm:"type:varchar(20);not null;uniqueIndex:idx_book_formats_book_type,priority:2;index" json:"type"`

	Price decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`

	//紙の本
	Pages *int `json:"pages,omitempty"`

	//オーディオブック
	DurationMinutes *int   `json:"duration_minutes,omitempty"`
	Narrator        string `gorm:"type:varchar(255)" json:"narrator,omitempty"`

	SampleURL string `gorm:"type:varchar(1024)" json:"sample_url,omitempty"`

	//ダウンロード用ファイル。空ならまだ配布できない
	FileURL string `gorm:"type:varchar(1024)" json:"-"`

	Book *Book `gorm:"foreignKey:BookID" json:"book,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (f BookFormat) HasFile() bool {
	return f.FileURL != ""
}
