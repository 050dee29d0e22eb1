package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VariantGormRepository struct {
	db *gorm.DB
}

// DI
func NewVariantGormRepository(db *gorm.DB) *VariantGormRepository {
	return &VariantGormRepository{db: db}
}

var _ repo.VariantRepository = (*VariantGormRepository)(nil)

func (r *VariantGormRepository) Create(ctx context.Context, v *model.ProductVariant) error {
	return translate(r.db.WithContext(ctx).Create(v).Error)
}

func (r *VariantGormRepository) FindByID(ctx context.Context, id int64) (model.ProductVariant, error) {
	var v model.ProductVariant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&v).Error; err != nil {
		return model.ProductVariant{}, translate(err)
	}
	return v, nil
}

// 他の商品のバリアントIDを渡されても更新しない
func (r *VariantGormRepository) Update(ctx context.Context, productID int64, v model.ProductVariant) error {
	return affected(r.db.WithContext(ctx).
		Model(&model.ProductVariant{}).
		Where("id = ? AND product_id = ?", v.ID, productID).
		Select("color", "sku").
		Updates(v))
}

func (r *VariantGormRepository) ListByProductIDs(ctx context.Context, productIDs []int64) ([]model.ProductVariant, error) {
	if len(productIDs) == 0 {
		return []model.ProductVariant{}, nil
	}
	var list []model.ProductVariant
	if err := r.db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, translate(err)
	}
	return list, nil
}

func (r *VariantGormRepository) DeleteByIDs(ctx context.Context, productID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).
		Where("product_id = ? AND id IN ?", productID, ids).
		Delete(&model.ProductVariant{}).Error)
}

func (r *VariantGormRepository) CreateImages(ctx context.Context, images []model.VariantImage) error {
	if len(images) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).Create(&images).Error)
}

func (r *VariantGormRepository) ListImages(ctx context.Context, variantIDs []int64) ([]model.VariantImage, error) {
	if len(variantIDs) == 0 {
		return []model.VariantImage{}, nil
	}
	var list []model.VariantImage
	if err := r.db.WithContext(ctx).
		Where("variant_id IN ?", variantIDs).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, translate(err)
	}
	return list, nil
}

func (r *VariantGormRepository) DeleteImages(ctx context.Context, variantIDs []int64) error {
	if len(variantIDs) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).
		Where("variant_id IN ?", variantIDs).
		Delete(&model.VariantImage{}).Error)
}

// INSERT ... ON CONFLICT (variant_id, size)
func (r *VariantGormRepository) UpsertSize(ctx context.Context, s model.SizeAttribute, updateColumns []string) error {
	onConflict := clause.OnConflict{
		Columns: []clause.Column{{Name: "variant_id"}, {Name: "size"}},
	}
	if len(updateColumns) == 0 {
		onConflict.DoNothing = true
	} else {
		cols := append([]string{}, updateColumns...)
		onConflict.DoUpdates = clause.AssignmentColumns(append(cols, "updated_at"))
	}
	return translate(r.db.WithContext(ctx).Clauses(onConflict).Create(&s).Error)
}

func (r *VariantGormRepository) ListSizes(ctx context.Context, variantIDs []int64) ([]model.SizeAttribute, error) {
	if len(variantIDs) == 0 {
		return []model.SizeAttribute{}, nil
	}
	var list []model.SizeAttribute
	if err := r.db.WithContext(ctx).
		Where("variant_id IN ?", variantIDs).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, translate(err)
	}
	return list, nil
}

func (r *VariantGormRepository) DeleteSizes(ctx context.Context, variantIDs []int64) error {
	if len(variantIDs) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).
		Where("variant_id IN ?", variantIDs).
		Delete(&model.SizeAttribute{}).Error)
}
