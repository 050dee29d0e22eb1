package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"storefront/internal/access"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type LogoUsecase struct {
	tx     repo.TransactionManager
	assets AssetStore
	clock  Clock
	log    *slog.Logger
}

// DI
func NewLogoUsecase(tx repo.TransactionManager, assets AssetStore, clock Clock, log *slog.Logger) *LogoUsecase {
	return &LogoUsecase{tx: tx, assets: assets, clock: clock, log: log}
}

type LogoVariantInput struct {
	Color string
	File  FileUpload
}

type CreateLogoInput struct {
	Title      string
	OrgID      *int64
	Variants   []LogoVariantInput
	Placements []string
}

// アセットはURLが必須なのでTxの前に上げる。失敗したTxの分は消す
func (u *LogoUsecase) CreateLogo(ctx context.Context, c access.Caller, in CreateLogoInput) (model.Logo, error) {
	if err := authorize(c, access.OpManageLogo); err != nil {
		return model.Logo{}, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return model.Logo{}, validationError("title is required")
	}
	if len(in.Variants) == 0 {
		return model.Logo{}, validationError("at least one variant is required")
	}
	for _, v := range in.Variants {
		if err := validateLogoVariant(v); err != nil {
			return model.Logo{}, err
		}
	}
	names := normalizePlacementNames(in.Placements)

	urls, err := uploadAll(ctx, u.log, u.assets, folderLogos, logoFiles(in.Variants))
	if err != nil {
		return model.Logo{}, err
	}

	logo := model.Logo{Title: title, OrgID: access.TargetOrg(c, in.OrgID), CreatedBy: c.UserID}
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if logo.OrgID != nil {
			if _, err := r.Organizations().FindByID(ctx, *logo.OrgID); err != nil {
				return fromRepo(err, "organization")
			}
		}
		if err := r.Logos().Create(ctx, &logo); err != nil {
			return fromRepo(err, "logo")
		}
		for i, vin := range in.Variants {
			v := model.LogoVariant{LogoID: logo.ID, Color: strings.TrimSpace(vin.Color), AssetURL: urls[i]}
			if err := r.Logos().CreateVariant(ctx, &v); err != nil {
				return fromRepo(err, "logo variant")
			}
			if err := linkPlacements(ctx, r, v.ID, names); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		deleteAssets(ctx, u.log, u.assets, urls)
		return model.Logo{}, txFailure(err)
	}

	return u.GetLogo(ctx, c, logo.ID)
}

func (u *LogoUsecase) AddVariant(ctx context.Context, c access.Caller, logoID int64, in LogoVariantInput, placements []string) (model.LogoVariant, error) {
	if err := authorize(c, access.OpManageLogo); err != nil {
		return model.LogoVariant{}, err
	}
	if err := validateLogoVariant(in); err != nil {
		return model.LogoVariant{}, err
	}
	names := normalizePlacementNames(placements)

	urls, err := uploadAll(ctx, u.log, u.assets, folderLogos, []FileUpload{in.File})
	if err != nil {
		return model.LogoVariant{}, err
	}

	v := model.LogoVariant{LogoID: logoID, Color: strings.TrimSpace(in.Color), AssetURL: urls[0]}
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := u.ownedLogo(ctx, r, c, logoID); err != nil {
			return err
		}
		if err := r.Logos().CreateVariant(ctx, &v); err != nil {
			return fromRepo(err, "logo variant")
		}
		if err := linkPlacements(ctx, r, v.ID, names); err != nil {
			return err
		}
		byVariant, err := r.Placements().ListByVariantIDs(ctx, []int64{v.ID})
		if err != nil {
			return txFailure(err)
		}
		v.Placements = nonNil(byVariant[v.ID])
		return nil
	})
	if err != nil {
		deleteAssets(ctx, u.log, u.assets, urls)
		return model.LogoVariant{}, txFailure(err)
	}
	return v, nil
}

// 既にリンク済みの配置は何もしない
func (u *LogoUsecase) AttachPlacements(ctx context.Context, c access.Caller, variantID int64, names []string) ([]model.LogoPlacement, error) {
	if err := authorize(c, access.OpManageLogo); err != nil {
		return nil, err
	}
	names = normalizePlacementNames(names)
	if len(names) == 0 {
		return nil, validationError("placements are required")
	}

	var out []model.LogoPlacement
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := u.ownedVariant(ctx, r, c, variantID); err != nil {
			return err
		}
		if err := linkPlacements(ctx, r, variantID, names); err != nil {
			return err
		}
		byVariant, err := r.Placements().ListByVariantIDs(ctx, []int64{variantID})
		if err != nil {
			return txFailure(err)
		}
		out = byVariant[variantID]
		return nil
	})
	if err != nil {
		return nil, txFailure(err)
	}
	return nonNil(out), nil
}

func (u *LogoUsecase) DetachPlacements(ctx context.Context, c access.Caller, variantID int64) error {
	if err := authorize(c, access.OpManageLogo); err != nil {
		return err
	}
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := u.ownedVariant(ctx, r, c, variantID); err != nil {
			return err
		}
		return txFailure(r.Placements().UnlinkAll(ctx, []int64{variantID}))
	})
	return txFailure(err)
}

func (u *LogoUsecase) ListLogos(ctx context.Context, c access.Caller) ([]model.Logo, error) {
	if err := authorize(c, access.OpViewCatalog); err != nil {
		return nil, err
	}
	var out []model.Logo
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		logos, err := r.Logos().List(ctx, access.ResolveVisibility(c))
		if err != nil {
			return txFailure(err)
		}
		out, err = loadLogoGraph(ctx, r, logos)
		return err
	})
	if err != nil {
		return nil, txFailure(err)
	}
	return out, nil
}

func (u *LogoUsecase) GetLogo(ctx context.Context, c access.Caller, logoID int64) (model.Logo, error) {
	if err := authorize(c, access.OpViewCatalog); err != nil {
		return model.Logo{}, err
	}
	var out model.Logo
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		l, err := visibleLogo(ctx, r, c, logoID)
		if err != nil {
			return err
		}
		list, err := loadLogoGraph(ctx, r, []model.Logo{l})
		if err != nil {
			return err
		}
		out = list[0]
		return nil
	})
	if err != nil {
		return model.Logo{}, txFailure(err)
	}
	return out, nil
}

func (u *LogoUsecase) ListVariantPlacements(ctx context.Context, c access.Caller, variantID int64) ([]model.LogoPlacement, error) {
	if err := authorize(c, access.OpViewCatalog); err != nil {
		return nil, err
	}
	var out []model.LogoPlacement
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		v, err := r.Logos().FindVariant(ctx, variantID)
		if err != nil {
			return fromRepo(err, "logo variant")
		}
		if _, err := visibleLogo(ctx, r, c, v.LogoID); err != nil {
			return err
		}
		byVariant, err := r.Placements().ListByVariantIDs(ctx, []int64{variantID})
		if err != nil {
			return txFailure(err)
		}
		out = byVariant[variantID]
		return nil
	})
	if err != nil {
		return nil, txFailure(err)
	}
	return nonNil(out), nil
}

// リンク → バリアント → ロゴ の順に消す
func (u *LogoUsecase) DeleteLogo(ctx context.Context, c access.Caller, logoID int64) error {
	if err := authorize(c, access.OpManageLogo); err != nil {
		return err
	}

	var orphaned []string
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		l, err := u.ownedLogo(ctx, r, c, logoID)
		if err != nil {
			return err
		}
		variants, err := r.Logos().ListVariants(ctx, []int64{l.ID})
		if err != nil {
			return txFailure(err)
		}
		ids := make([]int64, 0, len(variants))
		for _, v := range variants {
			ids = append(ids, v.ID)
			orphaned = append(orphaned, v.AssetURL)
		}
		if err := deleteLogoVariants(ctx, r, ids); err != nil {
			return err
		}
		if err := r.Logos().Delete(ctx, l.ID); err != nil {
			return fromRepo(err, "logo")
		}
		return writeAudit(ctx, r, u.clock, c.UserID, l.OrgID, model.AuditActionDeleteLogo, model.AuditResourceLogo, formatID(l.ID), l, nil)
	})
	if err != nil {
		return txFailure(err)
	}

	deleteAssets(ctx, u.log, u.assets, orphaned)
	return nil
}

func (u *LogoUsecase) DeleteVariant(ctx context.Context, c access.Caller, variantID int64) error {
	if err := authorize(c, access.OpManageLogo); err != nil {
		return err
	}

	var assetURL string
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		v, err := u.ownedVariant(ctx, r, c, variantID)
		if err != nil {
			return err
		}
		assetURL = v.AssetURL
		return deleteLogoVariants(ctx, r, []int64{v.ID})
	})
	if err != nil {
		return txFailure(err)
	}

	deleteAssets(ctx, u.log, u.assets, []string{assetURL})
	return nil
}

// 見えないロゴはNotFound
func visibleLogo(ctx context.Context, r repo.TxRepos, c access.Caller, logoID int64) (model.Logo, error) {
	l, err := r.Logos().FindByID(ctx, logoID)
	if err != nil {
		return model.Logo{}, fromRepo(err, "logo")
	}
	if !access.ResolveVisibility(c).CanSee(l.OrgID) {
		return model.Logo{}, notFound("logo not found")
	}
	return l, nil
}

func (u *LogoUsecase) ownedLogo(ctx context.Context, r repo.TxRepos, c access.Caller, logoID int64) (model.Logo, error) {
	l, err := visibleLogo(ctx, r, c, logoID)
	if err != nil {
		return model.Logo{}, err
	}
	if !access.OwnsOrganization(c, l.OrgID) {
		return model.Logo{}, forbidden("logo belongs to another organization")
	}
	return l, nil
}

func (u *LogoUsecase) ownedVariant(ctx context.Context, r repo.TxRepos, c access.Caller, variantID int64) (model.LogoVariant, error) {
	v, err := r.Logos().FindVariant(ctx, variantID)
	if err != nil {
		return model.LogoVariant{}, fromRepo(err, "logo variant")
	}
	if _, err := u.ownedLogo(ctx, r, c, v.LogoID); err != nil {
		return model.LogoVariant{}, err
	}
	return v, nil
}

func deleteLogoVariants(ctx context.Context, r repo.TxRepos, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	refs, err := r.Customizations().CountByLogoVariants(ctx, ids)
	if err != nil {
		return txFailure(err)
	}
	if refs > 0 {
		return conflict("logo variant is referenced by customizations")
	}
	if err := r.Placements().UnlinkAll(ctx, ids); err != nil {
		return txFailure(err)
	}
	if err := r.Logos().DeleteVariants(ctx, ids); err != nil {
		return txFailure(err)
	}
	return nil
}

// 名前で配置を探し、無ければviewを判定して作る。リンクは重複させない
func linkPlacements(ctx context.Context, r repo.TxRepos, variantID int64, names []string) error {
	for _, name := range names {
		p, err := r.Placements().FindByName(ctx, name)
		if errors.Is(err, repo.ErrNotFound) {
			p = model.LogoPlacement{Name: name, View: model.ClassifyPlacementView(name)}
			err = r.Placements().Create(ctx, &p)
		}
		if err != nil {
			return fromRepo(err, "placement")
		}

		linked, err := r.Placements().IsLinked(ctx, variantID, p.ID)
		if err != nil {
			return txFailure(err)
		}
		if linked {
			continue
		}
		if err := r.Placements().Link(ctx, variantID, p.ID); err != nil {
			return fromRepo(err, "placement link")
		}
	}
	return nil
}

func loadLogoGraph(ctx context.Context, r repo.TxRepos, logos []model.Logo) ([]model.Logo, error) {
	if len(logos) == 0 {
		return []model.Logo{}, nil
	}
	ids := make([]int64, 0, len(logos))
	for _, l := range logos {
		ids = append(ids, l.ID)
	}

	variants, err := r.Logos().ListVariants(ctx, ids)
	if err != nil {
		return nil, txFailure(err)
	}
	variantIDs := make([]int64, 0, len(variants))
	for _, v := range variants {
		variantIDs = append(variantIDs, v.ID)
	}
	placements, err := r.Placements().ListByVariantIDs(ctx, variantIDs)
	if err != nil {
		return nil, txFailure(err)
	}

	byLogo := map[int64][]model.LogoVariant{}
	for _, v := range variants {
		v.Placements = nonNil(placements[v.ID])
		byLogo[v.LogoID] = append(byLogo[v.LogoID], v)
	}

	out := make([]model.Logo, 0, len(logos))
	for _, l := range logos {
		l.Variants = nonNil(byLogo[l.ID])
		out = append(out, l)
	}
	return out, nil
}

func validateLogoVariant(v LogoVariantInput) error {
	if strings.TrimSpace(v.Color) == "" {
		return validationError("variant color is required")
	}
	if len(v.File.Data) == 0 {
		return validationError("variant file is required")
	}
	return nil
}

// 空白を落として重複を除く（順序は保つ）
func normalizePlacementNames(names []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func logoFiles(vs []LogoVariantInput) []FileUpload {
	files := make([]FileUpload, 0, len(vs))
	for _, v := range vs {
		files = append(files, v.File)
	}
	return files
}
