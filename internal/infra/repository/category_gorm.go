package repository

import (
	"context"
	"strings"

	"storefront/internal/access"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type categoryGormRepository struct {
	db *gorm.DB
}

// DI
func NewCategoryGormRepository(db *gorm.DB) repo.CategoryRepository {
	return &categoryGormRepository{db: db}
}

func (r *categoryGormRepository) Create(ctx context.Context, c *model.Category) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r *categoryGormRepository) FindByID(ctx context.Context, id int64) (model.Category, error) {
	var c model.Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return model.Category{}, translate(err)
	}
	return c, nil
}

// 同一org内（NULL同士も一致扱い）のタイトル重複
func (r *categoryGormRepository) ExistsTitle(ctx context.Context, orgID *int64, title string, excludeID int64) (bool, error) {
	q := r.db.WithContext(ctx).Model(&model.Category{}).Where("LOWER(title) = LOWER(?)", title)
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

func (r *categoryGormRepository) UpdateTitle(ctx context.Context, id int64, title string) error {
	return affected(r.db.WithContext(ctx).
		Model(&model.Category{}).
		Where("id = ?", id).
		Update("title", title))
}

func (r *categoryGormRepository) List(ctx context.Context, vis access.Visibility, titleLike string) ([]model.Category, error) {
	q := vis.Apply(r.db.WithContext(ctx).Model(&model.Category{}), "org_id")
	if titleLike != "" {
		q = q.Where("title ILIKE ?", containsPattern(titleLike))
	}

	var list []model.Category
	if err := q.Order("title ASC").Find(&list).Error; err != nil {
		return nil, translate(err)
	}
	return list, nil
}

// NULL安全な org_id 一致
func whereOrgEquals(q *gorm.DB, column string, orgID *int64) *gorm.DB {
	if orgID == nil {
		return q.Where(column + " IS NULL")
	}
	return q.Where(column+" = ?", *orgID)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// 部分一致。入力中の % と _ は文字として扱う
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
