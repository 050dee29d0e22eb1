package usecase

import (
	"context"
	"errors"
	"log/slog"

	"storefront/internal/access"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type CustomizationUsecase struct {
	tx     repo.TransactionManager
	assets AssetStore
	log    *slog.Logger
}

// DI
func NewCustomizationUsecase(tx repo.TransactionManager, assets AssetStore, log *slog.Logger) *CustomizationUsecase {
	return &CustomizationUsecase{tx: tx, assets: assets, log: log}
}

type ComposeInput struct {
	ProductVariantID int64
	LogoVariantID    int64
	PlacementID      int64
	Preview          *FileUpload
}

// 3つの参照を全部確かめてから作る。見つからなかった参照は全部返す
func (u *CustomizationUsecase) Compose(ctx context.Context, c access.Caller, in ComposeInput) (model.Customization, error) {
	if err := authorize(c, access.OpCompose); err != nil {
		return model.Customization{}, err
	}
	if in.ProductVariantID <= 0 || in.LogoVariantID <= 0 || in.PlacementID <= 0 {
		return model.Customization{}, validationError("product_variant_id, logo_variant_id and placement_id are required")
	}

	vis := access.ResolveVisibility(c)
	cz := model.Customization{
		UserID:           c.UserID,
		ProductVariantID: in.ProductVariantID,
		LogoVariantID:    in.LogoVariantID,
		PlacementID:      in.PlacementID,
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var missing []string

		ok, err := productVariantVisible(ctx, r, vis, in.ProductVariantID)
		if err != nil {
			return err
		}
		if !ok {
			missing = append(missing, "product_variant")
		}

		ok, err = logoVariantVisible(ctx, r, vis, in.LogoVariantID)
		if err != nil {
			return err
		}
		if !ok {
			missing = append(missing, "logo_variant")
		}

		if _, err := r.Placements().FindByID(ctx, in.PlacementID); err != nil {
			if !errors.Is(err, repo.ErrNotFound) {
				return txFailure(err)
			}
			missing = append(missing, "placement")
		}

		if len(missing) > 0 {
			return notFound("references not found", missing...)
		}
		if err := r.Customizations().Create(ctx, &cz); err != nil {
			// 確認後に参照先が消されていた
			if errors.Is(err, repo.ErrReferenced) {
				return notFound("references not found")
			}
			return fromRepo(err, "customization")
		}
		return nil
	})
	if err != nil {
		return model.Customization{}, txFailure(err)
	}

	if in.Preview != nil && len(in.Preview.Data) > 0 {
		cz.PreviewAssetRef = u.attachPreview(ctx, cz.ID, *in.Preview)
	}
	return cz, nil
}

// SuperAdminは全件、管理者は自orgのユーザー分、一般ユーザーは自分の分
func (u *CustomizationUsecase) List(ctx context.Context, c access.Caller) ([]model.Customization, error) {
	if err := authorize(c, access.OpCompose); err != nil {
		return nil, err
	}

	f := repo.CustomizationFilter{}
	switch {
	case c.IsSuperAdmin():
	case c.IsStaff() && c.OrgID != nil:
		f.OrgID = c.OrgID
	default:
		f.UserID = &c.UserID
	}

	var out []model.Customization
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		list, err := r.Customizations().List(ctx, f)
		out = list
		return err
	})
	if err != nil {
		return nil, txFailure(err)
	}
	return nonNil(out), nil
}

// 注文済みなら消せない。未注文のカート明細は一緒に消す
func (u *CustomizationUsecase) Delete(ctx context.Context, c access.Caller, id int64) error {
	if err := authorize(c, access.OpDeleteCustomization); err != nil {
		return err
	}

	var preview string
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cz, err := r.Customizations().FindByID(ctx, id)
		if err != nil {
			return fromRepo(err, "customization")
		}
		ok, err := canManageCustomization(ctx, r, c, cz)
		if err != nil {
			return err
		}
		if !ok {
			return notFound("customization not found")
		}

		// 同時チェックアウトと直列化してから注文済みかを見る
		if _, err := r.CartItems().LockByCustomization(ctx, cz.ID); err != nil {
			return txFailure(err)
		}
		ordered, err := r.Customizations().IsOrdered(ctx, cz.ID)
		if err != nil {
			return txFailure(err)
		}
		if ordered {
			return conflict("customization is referenced by an order")
		}

		if err := r.CartItems().DeleteOpenByCustomization(ctx, cz.ID); err != nil {
			return txFailure(err)
		}
		if err := r.Customizations().Delete(ctx, cz.ID); err != nil {
			return fromRepo(err, "customization")
		}
		preview = cz.PreviewAssetRef
		return nil
	})
	if err != nil {
		return txFailure(err)
	}

	deleteAssets(ctx, u.log, u.assets, []string{preview})
	return nil
}

// commit後にプレビューを上げる。失敗してもカスタマイズは残す
func (u *CustomizationUsecase) attachPreview(ctx context.Context, id int64, f FileUpload) string {
	url, err := u.assets.Upload(ctx, folderCustomizations, f.Filename, f.ContentType, f.Data)
	if err != nil {
		logCollaborator(ctx, u.log, "asset.upload", err, slog.Int64("customization_id", id))
		return ""
	}
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		return r.Customizations().SetPreview(ctx, id, url)
	})
	if err != nil {
		logCollaborator(ctx, u.log, "customization.set_preview", err, slog.Int64("customization_id", id))
		deleteAssets(ctx, u.log, u.assets, []string{url})
		return ""
	}
	return url
}

func productVariantVisible(ctx context.Context, r repo.TxRepos, vis access.Visibility, variantID int64) (bool, error) {
	v, err := r.Variants().FindByID(ctx, variantID)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, txFailure(err)
	}
	p, err := r.Products().FindByID(ctx, v.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, txFailure(err)
	}
	return vis.CanSee(p.OrgID), nil
}

func logoVariantVisible(ctx context.Context, r repo.TxRepos, vis access.Visibility, variantID int64) (bool, error) {
	v, err := r.Logos().FindVariant(ctx, variantID)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, txFailure(err)
	}
	l, err := r.Logos().FindByID(ctx, v.LogoID)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, txFailure(err)
	}
	return vis.CanSee(l.OrgID), nil
}

// 作成者本人、SuperAdmin、または作成者と同じorgの管理者
func canManageCustomization(ctx context.Context, r repo.TxRepos, c access.Caller, cz model.Customization) (bool, error) {
	if cz.UserID == c.UserID || c.IsSuperAdmin() {
		return true, nil
	}
	if !c.IsStaff() || c.OrgID == nil {
		return false, nil
	}
	owner, err := r.Users().FindByID(ctx, cz.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, txFailure(err)
	}
	return owner.OrgID != nil && *owner.OrgID == *c.OrgID, nil
}
