package repository

import (
	"context"

	"storefront/internal/access"
	"storefront/internal/domain/model"
)

// 一覧検索
type ProductFilter struct {
	Title      string
	SKU        string
	IsActive   *bool
	CategoryID *int64
}

// 商品本体・商品画像・グループ公開設定の永続化を約束。
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id int64) (model.Product, error)
	List(ctx context.Context, vis access.Visibility, f ProductFilter) ([]model.Product, error)
	// 渡されたカラムだけ更新する
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error

	// org内（NULL orgも同一スコープ扱い）でSKUが使われているか
	ExistsSKU(ctx context.Context, orgID *int64, sku string, excludeID int64) (bool, error)

	CreateImages(ctx context.Context, images []model.ProductImage) error
	ListImages(ctx context.Context, productIDs []int64) ([]model.ProductImage, error)
	DeleteImagesByURL(ctx context.Context, productID int64, urls []string) error
	DeleteImagesByProduct(ctx context.Context, productID int64) error

	ReplaceGroupVisibility(ctx context.Context, productID int64, rows []model.GroupProductVisibility) error
	DeleteGroupVisibility(ctx context.Context, productID int64) error

	Count(ctx context.Context, f StatsFilter) (int64, error)
}

// バリアント・バリアント画像・サイズ属性の永続化を約束。
type VariantRepository interface {
	Create(ctx context.Context, v *model.ProductVariant) error
	FindByID(ctx context.Context, id int64) (model.ProductVariant, error)
	// product_idで絞って更新する（別商品のバリアントは触らない）
	Update(ctx context.Context, productID int64, v model.ProductVariant) error
	ListByProductIDs(ctx context.Context, productIDs []int64) ([]model.ProductVariant, error)
	DeleteByIDs(ctx context.Context, productID int64, ids []int64) error

	CreateImages(ctx context.Context, images []model.VariantImage) error
	ListImages(ctx context.Context, variantIDs []int64) ([]model.VariantImage, error)
	DeleteImages(ctx context.Context, variantIDs []int64) error

	// (variant_id, size) で upsert。updateColumnsが空なら既存行は変更しない
	UpsertSize(ctx context.Context, s model.SizeAttribute, updateColumns []string) error
	ListSizes(ctx context.Context, variantIDs []int64) ([]model.SizeAttribute, error)
	DeleteSizes(ctx context.Context, variantIDs []int64) error
}
