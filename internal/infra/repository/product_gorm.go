package repository

import (
	"context"

	"storefront/internal/access"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

var _ repo.ProductRepository = (*ProductGormRepository)(nil)

func (r *ProductGormRepository) Create(ctx context.Context, p *model.Product) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return model.Product{}, translate(err)
	}
	return p, nil
}

// 可視範囲を先に掛けてから条件で絞る
func (r *ProductGormRepository) List(ctx context.Context, vis access.Visibility, f repo.ProductFilter) ([]model.Product, error) {
	q := vis.Apply(r.db.WithContext(ctx).Model(&model.Product{}), "org_id")

	if f.Title != "" {
		q = q.Where("title ILIKE ?", containsPattern(f.Title))
	}
	if f.SKU != "" {
		q = q.Where("sku ILIKE ?", containsPattern(f.SKU))
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}

	var items []model.Product
	if err := q.Order("created_at DESC, id DESC").Find(&items).Error; err != nil {
		return nil, translate(err)
	}
	return items, nil
}

func (r *ProductGormRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return affected(r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", id).
		Updates(fields))
}

func (r *ProductGormRepository) Delete(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Product{}))
}

func (r *ProductGormRepository) ExistsSKU(ctx context.Context, orgID *int64, sku string, excludeID int64) (bool, error) {
	q := r.db.WithContext(ctx).Model(&model.Product{}).Where("sku = ?", sku)
	q = whereOrgEquals(q, "org_id", orgID)
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func (r *ProductGormRepository) CreateImages(ctx context.Context, images []model.ProductImage) error {
	if len(images) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).Create(&images).Error)
}

func (r *ProductGormRepository) ListImages(ctx context.Context, productIDs []int64) ([]model.ProductImage, error) {
	if len(productIDs) == 0 {
		return []model.ProductImage{}, nil
	}
	var images []model.ProductImage
	if err := r.db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Order("id ASC").
		Find(&images).Error; err != nil {
		return nil, translate(err)
	}
	return images, nil
}

func (r *ProductGormRepository) DeleteImagesByURL(ctx context.Context, productID int64, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).
		Where("product_id = ? AND url IN ?", productID, urls).
		Delete(&model.ProductImage{}).Error)
}

func (r *ProductGormRepository) DeleteImagesByProduct(ctx context.Context, productID int64) error {
	return translate(r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&model.ProductImage{}).Error)
}

// 渡されたときだけ丸ごと置き換える
func (r *ProductGormRepository) ReplaceGroupVisibility(ctx context.Context, productID int64, rows []model.GroupProductVisibility) error {
	if err := r.DeleteGroupVisibility(ctx, productID); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		rows[i].ProductID = productID
	}
	return translate(r.db.WithContext(ctx).Create(&rows).Error)
}

func (r *ProductGormRepository) DeleteGroupVisibility(ctx context.Context, productID int64) error {
	return translate(r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&model.GroupProductVisibility{}).Error)
}

func (r *ProductGormRepository) Count(ctx context.Context, f repo.StatsFilter) (int64, error) {
	var count int64
	q := applyStats(r.db.WithContext(ctx).Model(&model.Product{}), f)
	if err := q.Count(&count).Error; err != nil {
		return 0, translate(err)
	}
	return count, nil
}

// 集計用の共通条件
func applyStats(q *gorm.DB, f repo.StatsFilter) *gorm.DB {
	if f.OrgID != nil {
		q = q.Where("org_id = ?", *f.OrgID)
	}
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	return q
}
