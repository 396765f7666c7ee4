package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文明細。価格は注文時点の値をコピーして持つ。
type OrderItem struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID      int64           `gorm:"not null;index" json:"order_id"`
	BookFormatID int64           `gorm:"not null;index" json:"book_format_id"`
	Price        decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Quantity     int64           `gorm:"not null" json:"quantity"`
	BookFormat   *BookFormat     `gorm:"foreignKey:BookFormatID" json:"book_format,omitempty"`
	CreatedAt    time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}

// 小計
func (it OrderItem) Subtotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(it.Quantity))
}
