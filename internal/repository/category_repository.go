package repository

import (
	"context"

	"storefront/internal/access"
	"storefront/internal/domain/model"
)

type CategoryRepository interface {
	Create(ctx context.Context, c *model.Category) error
	FindByID(ctx context.Context, id int64) (model.Category, error)
	// org_idはNULLも含めて比較する。excludeIDが0なら除外なし
	ExistsTitle(ctx context.Context, orgID *int64, title string, excludeID int64) (bool, error)
	UpdateTitle(ctx context.Context, id int64, title string) error
	List(ctx context.Context, vis access.Visibility, titleLike string) ([]model.Category, error)
}
