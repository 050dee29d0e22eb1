package repository

import (
	"context"

	"storefront/internal/domain/model"
	domainrepo "storefront/internal/repository"

	"gorm.io/gorm"
)

type userGormRepository struct {
	db *gorm.DB
}

// DI
// main.goでこれをnewしてusecaseに注入します。
func NewUserGormRepository(db *gorm.DB) domainrepo.UserRepository {
	return &userGormRepository{db: db}
}

// Create はユーザーを新規作成
func (r *userGormRepository) Create(ctx context.Context, user *model.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

// emailでユーザーを1件取得
func (r *userGormRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// IDでユーザーを1件取得
func (r *userGormRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// ユーザーを更新。
func (r *userGormRepository) Update(ctx context.Context, user *model.User) error {
	return translate(r.db.WithContext(ctx).Save(user).Error)
}

type organizationGormRepository struct {
	db *gorm.DB
}

// DI
func NewOrganizationGormRepository(db *gorm.DB) domainrepo.OrganizationRepository {
	return &organizationGormRepository{db: db}
}

func (r *organizationGormRepository) Create(ctx context.Context, org *model.Organization) error {
	return translate(r.db.WithContext(ctx).Create(org).Error)
}

func (r *organizationGormRepository) FindByID(ctx context.Context, id int64) (model.Organization, error) {
	var o model.Organization
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&o).Error; err != nil {
		return model.Organization{}, translate(err)
	}
	return o, nil
}
