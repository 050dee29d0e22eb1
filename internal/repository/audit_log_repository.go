package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
)

// nilや空の項目は条件にしない
type AuditLogFilter struct {
	ActorUserID  *int64
	OrgID        *int64
	Actions      []model.AuditAction
	ResourceType *model.AuditResourceType
	ResourceID   *string
	From         *time.Time // 以上
	To           *time.Time // 以下

	// 前ページ最後のID。これより古いものを返す
	BeforeID int64
	Limit    int
}

// 追記のみ。更新と削除は持たない
type AuditLogRepository interface {
	Create(ctx context.Context, log *model.AuditLog) error

	// 新しい順
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, error)
}
