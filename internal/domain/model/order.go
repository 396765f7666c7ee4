package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

// PENDING→PAIDだけがコードで遷移する。残りは手動運用のための予約値。
const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusPaid       OrderStatus = "PAID"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusRefunded   OrderStatus = "REFUNDED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodStripe PaymentMethod = "STRIPE"
	PaymentMethodPayPal PaymentMethod = "PAYPAL"
)

type Order struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        int64           `gorm:"not null;index" json:"user_id"`
	Status        OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	Total         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(20);not null" json:"payment_method"`

	//決済セッションID（Stripe checkout session）
	PaymentID string `gorm:"type:varchar(255);index" json:"payment_id,omitempty"`

	//配送先（紙の本のみ）
	ShippingName    string `gorm:"type:varchar(255)" json:"shipping_name,omitempty"`
	ShippingAddress string `gorm:"type:varchar(255)" json:"shipping_address,omitempty"`
	ShippingCity    string `gorm:"type:varchar(255)" json:"shipping_city,omitempty"`
	ShippingState   string `gorm:"type:varchar(100)" json:"shipping_state,omitempty"`
	ShippingZip     string `gorm:"type:varchar(20)" json:"shipping_zip,omitempty"`
	ShippingCountry string `gorm:"type:varchar(100)" json:"shipping_country,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"-"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
