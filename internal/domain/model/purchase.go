package model

import "time"

// 購入済みデジタル形式へのダウンロード権。
// (user_id, book_format_id) で一意。支払い済み注文からのみ作られる。
type Purchase struct {
	ID            int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        int64       `gorm:"not null;uniqueIndex:idx_purchases_user_format,priority:1" json:"user_id"`
	BookFormatID  int64       `gorm:"not null;uniqueIndex:idx_purchases_user_format,priority:2;index" json:"book_format_id"`
	OrderID       int64       `gorm:"not null;index" json:"order_id"`
	DownloadCount int         `gorm:"not null;default:0" json:"download_count"`
	MaxDownloads  int         `gorm:"not null;default:5" json:"max_downloads"`
	BookFormat    *BookFormat `gorm:"foreignKey:BookFormatID" json:"book_format,omitempty"`
	PurchasedAt   time.Time   `gorm:"not null;autoCreateTime;index" json:"purchased_at"`
}

func (p Purchase) LimitReached() bool {
	return p.DownloadCount >= p.MaxDownloads
}

func (p Purchase) DownloadsRemaining() int {
	if p.LimitReached() {
		return 0
	}
	return p.MaxDownloads - p.DownloadCount
}
