package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type CustomizationGormRepository struct {
	db *gorm.DB
}

// DI
func NewCustomizationGormRepository(db *gorm.DB) *CustomizationGormRepository {
	return &CustomizationGormRepository{db: db}
}

var _ repo.CustomizationRepository = (*CustomizationGormRepository)(nil)

func (r *CustomizationGormRepository) Create(ctx context.Context, c *model.Customization) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r *CustomizationGormRepository) FindByID(ctx context.Context, id int64) (model.Customization, error) {
	var c model.Customization
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return model.Customization{}, translate(err)
	}
	return c, nil
}

// OrgIDはusersをjoinして作成者の所属で絞る
func (r *CustomizationGormRepository) List(ctx context.Context, f repo.CustomizationFilter) ([]model.Customization, error) {
	q := r.db.WithContext(ctx).Model(&model.Customization{})
	if f.UserID != nil {
		q = q.Where("customizations.user_id = ?", *f.UserID)
	}
	if f.OrgID != nil {
		q = q.Joins("JOIN users ON users.id = customizations.user_id").
			Where("users.org_id = ?", *f.OrgID)
	}

	var list []model.Customization
	if err := q.Order("customizations.id DESC").Find(&list).Error; err != nil {
		return nil, translate(err)
	}
	return list, nil
}

func (r *CustomizationGormRepository) Delete(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Customization{}))
}

func (r *CustomizationGormRepository) SetPreview(ctx context.Context, id int64, ref string) error {
	return affected(r.db.WithContext(ctx).
		Model(&model.Customization{}).
		Where("id = ?", id).
		Update("preview_asset_ref", ref))
}

func (r *CustomizationGormRepository) IsOrdered(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("customization_id = ? AND consumed = TRUE", id).
		Count(&count).Error; err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func (r *CustomizationGormRepository) CountByProductVariants(ctx context.Context, variantIDs []int64) (int64, error) {
	return r.countBy(ctx, "product_variant_id", variantIDs)
}

func (r *CustomizationGormRepository) CountByLogoVariants(ctx context.Context, variantIDs []int64) (int64, error) {
	return r.countBy(ctx, "logo_variant_id", variantIDs)
}

func (r *CustomizationGormRepository) countBy(ctx context.Context, column string, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.Customization{}).
		Where(column+" IN ?", ids).
		Count(&count).Error; err != nil {
		return 0, translate(err)
	}
	return count, nil
}
