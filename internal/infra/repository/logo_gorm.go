package repository

import (
	"context"

	"storefront/internal/access"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type LogoGormRepository struct {
	db *gorm.DB
}

// DI
func NewLogoGormRepository(db *gorm.DB) *LogoGormRepository {
	return &LogoGormRepository{db: db}
}

var _ repo.LogoRepository = (*LogoGormRepository)(nil)

func (r *LogoGormRepository) Create(ctx context.Context, l *model.Logo) error {
	return translate(r.db.WithContext(ctx).Create(l).Error)
}

func (r *LogoGormRepository) FindByID(ctx context.Context, id int64) (model.Logo, error) {
	var l model.Logo
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&l).Error; err != nil {
		return model.Logo{}, translate(err)
	}
	return l, nil
}

func (r *LogoGormRepository) List(ctx context.Context, vis access.Visibility) ([]model.Logo, error) {
	var list []model.Logo
	q := vis.Apply(r.db.WithContext(ctx).Model(&model.Logo{}), "org_id")
	if err := q.Order("created_at DESC, id DESC").Find(&list).Error; err != nil {
		return nil, translate(err)
	}
	return list, nil
}

func (r *LogoGormRepository) Delete(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Logo{}))
}

func (r *LogoGormRepository) CreateVariant(ctx context.Context, v *model.LogoVariant) error {
	return translate(r.db.WithContext(ctx).Create(v).Error)
}

func (r *LogoGormRepository) FindVariant(ctx context.Context, id int64) (model.LogoVariant, error) {
	var v model.LogoVariant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&v).Error; err != nil {
		return model.LogoVariant{}, translate(err)
	}
	return v, nil
}

func (r *LogoGormRepository) ListVariants(ctx context.Context, logoIDs []int64) ([]model.LogoVariant, error) {
	if len(logoIDs) == 0 {
		return []model.LogoVariant{}, nil
	}
	var list []model.LogoVariant
	if err := r.db.WithContext(ctx).
		Where("logo_id IN ?", logoIDs).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, translate(err)
	}
	return list, nil
}

func (r *LogoGormRepository) DeleteVariants(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&model.LogoVariant{}).Error)
}

func (r *LogoGormRepository) Count(ctx context.Context, f repo.StatsFilter) (int64, error) {
	var count int64
	if err := applyStats(r.db.WithContext(ctx).Model(&model.Logo{}), f).Count(&count).Error; err != nil {
		return 0, translate(err)
	}
	return count, nil
}

type PlacementGormRepository struct {
	db *gorm.DB
}

// DI
func NewPlacementGormRepository(db *gorm.DB) *PlacementGormRepository {
	return &PlacementGormRepository{db: db}
}

var _ repo.PlacementRepository = (*PlacementGormRepository)(nil)

func (r *PlacementGormRepository) FindByName(ctx context.Context, name string) (model.LogoPlacement, error) {
	var p model.LogoPlacement
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&p).Error; err != nil {
		return model.LogoPlacement{}, translate(err)
	}
	return p, nil
}

func (r *PlacementGormRepository) FindByID(ctx context.Context, id int64) (model.LogoPlacement, error) {
	var p model.LogoPlacement
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return model.LogoPlacement{}, translate(err)
	}
	return p, nil
}

func (r *PlacementGormRepository) Create(ctx context.Context, p *model.LogoPlacement) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *PlacementGormRepository) IsLinked(ctx context.Context, variantID, placementID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.LogoVariantPlacement{}).
		Where("logo_variant_id = ? AND logo_placement_id = ?", variantID, placementID).
		Count(&count).Error; err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func (r *PlacementGormRepository) Link(ctx context.Context, variantID, placementID int64) error {
	return translate(r.db.WithContext(ctx).Create(&model.LogoVariantPlacement{
		LogoVariantID:   variantID,
		LogoPlacementID: placementID,
	}).Error)
}

func (r *PlacementGormRepository) UnlinkAll(ctx context.Context, variantIDs []int64) error {
	if len(variantIDs) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).
		Where("logo_variant_id IN ?", variantIDs).
		Delete(&model.LogoVariantPlacement{}).Error)
}

type variantPlacementRow struct {
	LogoVariantID int64
	model.LogoPlacement
}

// variant_id -> 配置一覧
func (r *PlacementGormRepository) ListByVariantIDs(ctx context.Context, variantIDs []int64) (map[int64][]model.LogoPlacement, error) {
	out := make(map[int64][]model.LogoPlacement, len(variantIDs))
	if len(variantIDs) == 0 {
		return out, nil
	}

	var rows []variantPlacementRow
	if err := r.db.WithContext(ctx).
		Table("logo_variants_placements AS lvp").
		Select("lvp.logo_variant_id, lp.id, lp.name, lp.view, lp.created_at").
		Joins("JOIN logo_placements lp ON lp.id = lvp.logo_placement_id").
		Where("lvp.logo_variant_id IN ?", variantIDs).
		Order("lp.id ASC").
		Scan(&rows).Error; err != nil {
		return nil, translate(err)
	}

	for _, row := range rows {
		out[row.LogoVariantID] = append(out[row.LogoVariantID], row.LogoPlacement)
	}
	return out, nil
}
