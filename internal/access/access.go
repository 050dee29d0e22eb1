// Package access は呼び出し元(Caller)から可視範囲と操作権限を決める。
package access

import (
	"errors"

	"storefront/internal/domain/model"

	"gorm.io/gorm"
)

var ErrForbidden = errors.New("forbidden")

// 認証済みの呼び出し元
type Caller struct {
	UserID int64
	Role   model.Role
	OrgID  *int64
}

func (c Caller) IsSuperAdmin() bool { return c.Role == model.RoleSuperAdmin }

// 管理系ロール（SuperAdmin/Admin/Manager）
func (c Caller) IsStaff() bool {
	switch c.Role {
	case model.RoleSuperAdmin, model.RoleAdmin, model.RoleManager:
		return true
	}
	return false
}

// 行の可視範囲。Allならフィルタなし
type Visibility struct {
	All   bool
	OrgID *int64
}

// SuperAdminは全件、それ以外は自org + グローバル(org_id IS NULL)
func ResolveVisibility(c Caller) Visibility {
	if c.IsSuperAdmin() {
		return Visibility{All: true}
	}
	return Visibility{OrgID: c.OrgID}
}

// メモリ上の行に対する判定
func (v Visibility) CanSee(orgID *int64) bool {
	if v.All || orgID == nil {
		return true
	}
	return v.OrgID != nil && *v.OrgID == *orgID
}

// SQL述語を付ける。columnは "products.org_id" のように渡す
func (v Visibility) Apply(db *gorm.DB, column string) *gorm.DB {
	if v.All {
		return db
	}
	if v.OrgID == nil {
		return db.Where(column + " IS NULL")
	}
	return db.Where("("+column+" IS NULL OR "+column+" = ?)", *v.OrgID)
}

// SuperAdminは全org、それ以外は自orgの行だけ。グローバル行はSuperAdminのみ
func OwnsOrganization(c Caller, target *int64) bool {
	if c.IsSuperAdmin() {
		return true
	}
	if c.OrgID == nil || target == nil {
		return false
	}
	return *c.OrgID == *target
}

// 書き込み先のorgを決める。SuperAdminだけ指定できる（nilはグローバル）
func TargetOrg(c Caller, requested *int64) *int64 {
	if c.IsSuperAdmin() {
		return requested
	}
	return c.OrgID
}

type Operation string

const (
	OpCreateProduct       Operation = "product:create"
	OpUpdateProduct       Operation = "product:update"
	OpDeleteProduct       Operation = "product:delete"
	OpViewCatalog         Operation = "catalog:view"
	OpManageCategory      Operation = "category:manage"
	OpManageLogo          Operation = "logo:manage"
	OpCompose             Operation = "customization:create"
	OpDeleteCustomization Operation = "customization:delete"
	OpUseCart             Operation = "cart:use"
	OpCreateOrder         Operation = "order:create"
	OpViewOrders          Operation = "order:view"
	OpUpdateOrderStatus   Operation = "order:update_status"
	OpViewSummary         Operation = "summary:view"
	OpManageAddress       Operation = "address:manage"
)

var (
	everyone = []model.Role{model.RoleSuperAdmin, model.RoleAdmin, model.RoleManager, model.RoleUser}
	staff    = []model.Role{model.RoleSuperAdmin, model.RoleAdmin, model.RoleManager}
	admins   = []model.Role{model.RoleSuperAdmin, model.RoleAdmin}
)

// 権限表
var capabilities = map[Operation][]model.Role{
	OpCreateProduct:       staff,
	OpUpdateProduct:       staff,
	OpDeleteProduct:       admins,
	OpViewCatalog:         everyone,
	OpManageCategory:      staff,
	OpManageLogo:          staff,
	OpCompose:             everyone,
	OpDeleteCustomization: everyone,
	OpUseCart:             everyone,
	OpCreateOrder:         everyone,
	OpViewOrders:          everyone,
	OpUpdateOrderStatus:   staff,
	OpViewSummary:         staff,
	OpManageAddress:       everyone,
}

// 未知のroleや表にない操作はErrForbidden
func Authorize(c Caller, op Operation) error {
	if !c.Role.Valid() {
		return ErrForbidden
	}
	for _, r := range capabilities[op] {
		if r == c.Role {
			return nil
		}
	}
	return ErrForbidden
}
