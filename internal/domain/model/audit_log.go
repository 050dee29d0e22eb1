package model

import "time"

// 管理者操作の種類
type AuditAction string

const (
	AuditActionCreateProduct     AuditAction = "CREATE_PRODUCT"
	AuditActionUpdateProduct     AuditAction = "UPDATE_PRODUCT"
	AuditActionDeleteProduct     AuditAction = "DELETE_PRODUCT"
	AuditActionDeleteLogo        AuditAction = "DELETE_LOGO"
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
)

func (a AuditAction) Valid() bool {
	switch a {
	case AuditActionCreateProduct, AuditActionUpdateProduct, AuditActionDeleteProduct,
		AuditActionDeleteLogo, AuditActionUpdateOrderStatus:
		return true
	}
	return false
}

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceProduct AuditResourceType = "product"
	AuditResourceLogo    AuditResourceType = "logo"
	AuditResourceOrder   AuditResourceType = "order"
)

func (t AuditResourceType) Valid() bool {
	return t == AuditResourceProduct || t == AuditResourceLogo || t == AuditResourceOrder
}

// 監査ログ（管理者操作ログ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。追記のみ
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作したユーザーのID。
	ActorUserID int64 `gorm:"not null;index" json:"actor_user_id"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	//注文はuuidなので文字列で持つ
	ResourceID string `gorm:"type:varchar(64);not null;index" json:"resource_id"`

	//対象の所属org。全org共通のリソースはnil
	OrgID *int64 `gorm:"index" json:"org_id"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
