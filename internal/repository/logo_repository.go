package repository

import (
	"context"

	"storefront/internal/access"
	"storefront/internal/domain/model"
)

type LogoRepository interface {
	Create(ctx context.Context, l *model.Logo) error
	FindByID(ctx context.Context, id int64) (model.Logo, error)
	List(ctx context.Context, vis access.Visibility) ([]model.Logo, error)
	Delete(ctx context.Context, id int64) error

	CreateVariant(ctx context.Context, v *model.LogoVariant) error
	FindVariant(ctx context.Context, id int64) (model.LogoVariant, error)
	ListVariants(ctx context.Context, logoIDs []int64) ([]model.LogoVariant, error)
	DeleteVariants(ctx context.Context, ids []int64) error

	Count(ctx context.Context, f StatsFilter) (int64, error)
}

// 配置とバリアント↔配置リンク
type PlacementRepository interface {
	FindByName(ctx context.Context, name string) (model.LogoPlacement, error)
	FindByID(ctx context.Context, id int64) (model.LogoPlacement, error)
	Create(ctx context.Context, p *model.LogoPlacement) error

	IsLinked(ctx context.Context, variantID, placementID int64) (bool, error)
	Link(ctx context.Context, variantID, placementID int64) error
	UnlinkAll(ctx context.Context, variantIDs []int64) error
	ListByVariantIDs(ctx context.Context, variantIDs []int64) (map[int64][]model.LogoPlacement, error)
}
