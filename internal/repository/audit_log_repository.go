package repository

import (
	"context"
	"time"

	"bookstore/internal/domain/model"
)

// 一覧の件数（未指定時 / 上限）
const (
	DefaultAuditLogLimit = 50
	MaxAuditLogLimit     = 200
)

// 監査ログの絞り込み条件。書籍の変更履歴なら ResourceType=book, ResourceID=書籍ID
type AuditLogFilter struct {
	ActorUserID  *int64
	Action       *model.AuditAction
	ResourceType *model.AuditResourceType
	ResourceID   *int64
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Limit        int
	Offset       int
}

// 管理者操作（書籍・形式の変更）の記録。
// Createは業務データと同じトランザクションで呼ぶ。
type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error
	// 新しい順。totalはlimit/offset適用前の件数
	List(ctx context.Context, filter AuditLogFilter) (logs []model.AuditLog, total int64, err error)
}
