package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type AddressGormRepository struct {
	db *gorm.DB
}

func NewAddressGormRepository(db *gorm.DB) *AddressGormRepository {
	return &AddressGormRepository{db: db}
}

var _ repo.AddressRepository = (*AddressGormRepository)(nil)

func (r *AddressGormRepository) owned(ctx context.Context, userID, addressID int64) *gorm.DB {
	return r.db.WithContext(ctx).Where("id = ? AND user_id = ?", addressID, userID)
}

func (r *AddressGormRepository) Create(ctx context.Context, address *model.Address) error {
	return translate(r.db.WithContext(ctx).Create(address).Error)
}

func (r *AddressGormRepository) ListByUser(ctx context.Context, userID int64) ([]model.Address, error) {
	var list []model.Address
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, id ASC").
		Find(&list).Error; err != nil {
		return nil, translate(err)
	}
	return list, nil
}

func (r *AddressGormRepository) FindOwned(ctx context.Context, userID, addressID int64) (model.Address, error) {
	var a model.Address
	if err := r.owned(ctx, userID, addressID).First(&a).Error; err != nil {
		return model.Address{}, translate(err)
	}
	return a, nil
}

func (r *AddressGormRepository) Update(ctx context.Context, userID int64, address model.Address) error {
	return affected(r.owned(ctx, userID, address.ID).
		Model(&model.Address{}).
		Select("name", "line1", "line2", "city", "state", "postal_code", "country", "phone", "updated_at").
		Updates(address))
}

func (r *AddressGormRepository) Delete(ctx context.Context, userID, addressID int64) error {
	return affected(r.owned(ctx, userID, addressID).Delete(&model.Address{}))
}

// 対象が本人の住所でなければ1行も更新しない
func (r *AddressGormRepository) SetDefault(ctx context.Context, userID, addressID int64) error {
	return affected(r.db.WithContext(ctx).
		Model(&model.Address{}).
		Where("user_id = ?", userID).
		Where("EXISTS (SELECT 1 FROM addresses WHERE id = ? AND user_id = ?)", addressID, userID).
		UpdateColumn("is_default", gorm.Expr("id = ?", addressID)))
}
