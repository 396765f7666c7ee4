package model

import "time"

// 書籍の作成・更新・削除など。
type AuditAction string

const (
	AuditActionCreateBook   AuditAction = "CREATE_BOOK"
	AuditActionUpdateBook   AuditAction = "UPDATE_BOOK"
	AuditActionDeleteBook   AuditAction = "DELETE_BOOK"
	AuditActionUpsertFormat AuditAction = "UPSERT_FORMAT"
)

func (a AuditAction) Valid() bool {
	switch a {
	case AuditActionCreateBook, AuditActionUpdateBook, AuditActionDeleteBook, AuditActionUpsertFormat:
		return true
	}
	return false
}

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceBook       AuditResourceType = "book"
	AuditResourceBookFormat AuditResourceType = "book_format"
	AuditResourceUser       AuditResourceType = "user"
)

// 監査ログ（管理者操作ログ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作した管理者のID。
	ActorUserID int64 `gorm:"not null;index" json:"actor_user_id"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	ResourceID int64 `gorm:"not null;index" json:"resource_id"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
