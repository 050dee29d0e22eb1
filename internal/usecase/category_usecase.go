package usecase

import (
	"context"
	"strings"

	"storefront/internal/access"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type CategoryUsecase struct {
	tx repo.TransactionManager
}

// DI
func NewCategoryUsecase(tx repo.TransactionManager) *CategoryUsecase {
	return &CategoryUsecase{tx: tx}
}

// 同じorg（NULLはグローバル）で同名があればConflict
func (u *CategoryUsecase) Create(ctx context.Context, c access.Caller, title string, orgID *int64) (model.Category, error) {
	if err := authorize(c, access.OpManageCategory); err != nil {
		return model.Category{}, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Category{}, validationError("title is required")
	}

	cat := model.Category{
		Title:     title,
		OrgID:     access.TargetOrg(c, orgID),
		CreatedBy: c.UserID,
	}
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		exists, err := r.Categories().ExistsTitle(ctx, cat.OrgID, title, 0)
		if err != nil {
			return txFailure(err)
		}
		if exists {
			return conflict("category already exists")
		}
		return fromRepo(r.Categories().Create(ctx, &cat), "category")
	})
	if err != nil {
		return model.Category{}, txFailure(err)
	}
	return cat, nil
}

func (u *CategoryUsecase) Update(ctx context.Context, c access.Caller, id int64, title string) (model.Category, error) {
	if err := authorize(c, access.OpManageCategory); err != nil {
		return model.Category{}, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Category{}, validationError("title is required")
	}

	var out model.Category
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cat, err := r.Categories().FindByID(ctx, id)
		if err != nil {
			return fromRepo(err, "category")
		}
		if !access.ResolveVisibility(c).CanSee(cat.OrgID) {
			return notFound("category not found")
		}
		if !access.OwnsOrganization(c, cat.OrgID) {
			return forbidden("category belongs to another organization")
		}

		exists, err := r.Categories().ExistsTitle(ctx, cat.OrgID, title, cat.ID)
		if err != nil {
			return txFailure(err)
		}
		if exists {
			return conflict("category already exists")
		}
		if err := r.Categories().UpdateTitle(ctx, cat.ID, title); err != nil {
			return fromRepo(err, "category")
		}
		cat.Title = title
		out = cat
		return nil
	})
	if err != nil {
		return model.Category{}, txFailure(err)
	}
	return out, nil
}

func (u *CategoryUsecase) List(ctx context.Context, c access.Caller, titleLike string) ([]model.Category, error) {
	if err := authorize(c, access.OpViewCatalog); err != nil {
		return nil, err
	}
	var out []model.Category
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		list, err := r.Categories().List(ctx, access.ResolveVisibility(c), strings.TrimSpace(titleLike))
		out = list
		return err
	})
	if err != nil {
		return nil, txFailure(err)
	}
	return nonNil(out), nil
}
