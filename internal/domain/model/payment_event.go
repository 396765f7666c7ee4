package model

import "time"

// 決済プロバイダから届いたwebhookイベント。再送の重複処理を防ぐ。
type PaymentEvent struct {
	ID              int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Provider        string     `gorm:"type:varchar(20);not null;uniqueIndex:idx_payment_events_provider_event,priority:1" json:"provider"`
	ProviderEventID string     `gorm:"type:varchar(191);not null;uniqueIndex:idx_payment_events_provider_event,priority:2" json:"provider_event_id"`
	EventType       string     `gorm:"type:varchar(100);not null;index" json:"event_type"`
	OrderID         int64      `gorm:"not null;default:0;index" json:"order_id"`
	ProcessedAt     *time.Time `gorm:"index" json:"processed_at,omitempty"`
	CreatedAt       time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
}
