package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// UserIDかOrgIDで絞る。両方nilなら全件
type CustomizationFilter struct {
	UserID *int64
	OrgID  *int64
}

type CustomizationRepository interface {
	Create(ctx context.Context, c *model.Customization) error
	FindByID(ctx context.Context, id int64) (model.Customization, error)
	List(ctx context.Context, f CustomizationFilter) ([]model.Customization, error)
	Delete(ctx context.Context, id int64) error
	SetPreview(ctx context.Context, id int64, ref string) error

	// 注文済み(consumed)のカート明細から参照されているか
	IsOrdered(ctx context.Context, id int64) (bool, error)
	CountByProductVariants(ctx context.Context, variantIDs []int64) (int64, error)
	CountByLogoVariants(ctx context.Context, variantIDs []int64) (int64, error)
}
