package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartItemGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartItemGormRepository(db *gorm.DB) *CartItemGormRepository {
	return &CartItemGormRepository{db: db}
}

var _ repo.CartItemRepository = (*CartItemGormRepository)(nil)

func (r *CartItemGormRepository) Create(ctx context.Context, item *model.CartItem) error {
	return translate(r.db.WithContext(ctx).Create(item).Error)
}

func (r *CartItemGormRepository) FindByID(ctx context.Context, id int64) (model.CartItem, error) {
	var item model.CartItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return model.CartItem{}, translate(err)
	}
	return item, nil
}

// 未注文の明細
func (r *CartItemGormRepository) ListOpenByUser(ctx context.Context, userID int64) ([]model.CartItem, error) {
	var items []model.CartItem
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND consumed = FALSE", userID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, translate(err)
	}
	return items, nil
}

// 同じユーザーの同時チェックアウトはここで直列化される
func (r *CartItemGormRepository) LockOpenByUser(ctx context.Context, userID int64) ([]model.CartItem, error) {
	var items []model.CartItem
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND consumed = FALSE", userID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, translate(err)
	}
	return items, nil
}

// チェックアウト中の行があれば、そのコミットを待ってから読む
func (r *CartItemGormRepository) LockByCustomization(ctx context.Context, customizationID int64) ([]model.CartItem, error) {
	var items []model.CartItem
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("customization_id = ?", customizationID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, translate(err)
	}
	return items, nil
}

func (r *CartItemGormRepository) DeleteOpen(ctx context.Context, userID, id int64) error {
	return affected(r.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND consumed = FALSE", id, userID).
		Delete(&model.CartItem{}))
}

func (r *CartItemGormRepository) DeleteOpenByCustomization(ctx context.Context, customizationID int64) error {
	return translate(r.db.WithContext(ctx).
		Where("customization_id = ? AND consumed = FALSE", customizationID).
		Delete(&model.CartItem{}).Error)
}

// consumed=FALSEの行だけ更新するので二重注文にはならない
func (r *CartItemGormRepository) MarkConsumed(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("id IN ? AND consumed = FALSE", ids).
		Update("consumed", true)
	if res.Error != nil {
		return 0, translate(res.Error)
	}
	return res.RowsAffected, nil
}
