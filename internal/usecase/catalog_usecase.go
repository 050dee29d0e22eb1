package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"storefront/internal/access"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

type CatalogUsecase struct {
	tx     repo.TransactionManager
	assets AssetStore
	clock  Clock
	log    *slog.Logger
}

// DI
func NewCatalogUsecase(tx repo.TransactionManager, assets AssetStore, clock Clock, log *slog.Logger) *CatalogUsecase {
	return &CatalogUsecase{tx: tx, assets: assets, clock: clock, log: log}
}

type SizeInput struct {
	Size            string
	PriceAdjustment *decimal.Decimal
	StockQuantity   *int64
}

type VariantImageUpload struct {
	Type model.ViewType
	File FileUpload
}

// IDが0なら新規、それ以外は既存バリアントの更新
type VariantInput struct {
	ID     int64
	Color  *string
	SKU    *string
	Sizes  []SizeInput
	Images []VariantImageUpload
}

type GroupVisibilityInput struct {
	GroupID   int64
	IsVisible bool
}

type CreateProductInput struct {
	Title           string
	Description     string
	SKU             string
	CategoryID      int64
	SubCategory     string
	Price           decimal.Decimal
	IsActive        *bool
	OrgID           *int64
	Images          []FileUpload
	Variants        []VariantInput
	GroupVisibility []GroupVisibilityInput
}

// nilのフィールドは変更しない
type UpdateProductInput struct {
	Title             *string
	Description       *string
	SKU               *string
	CategoryID        *int64
	SubCategory       *string
	Price             *decimal.Decimal
	IsActive          *bool
	Images            []FileUpload
	DeletedImageURLs  []string
	Variants          []VariantInput
	DeletedVariantIDs []int64
	GroupVisibility   *[]GroupVisibilityInput
}

type pendingVariantImages struct {
	variantID int64
	images    []VariantImageUpload
}

// 商品作成（バリアント・サイズまで1Tx）
func (u *CatalogUsecase) CreateProduct(ctx context.Context, c access.Caller, in CreateProductInput) (model.Product, error) {
	if err := authorize(c, access.OpCreateProduct); err != nil {
		return model.Product{}, err
	}
	if err := validateCreateProduct(in); err != nil {
		return model.Product{}, err
	}

	orgID := access.TargetOrg(c, in.OrgID)
	vis := access.ResolveVisibility(c)

	isActive := true
	if in.IsActive != nil {
		isActive = *in.IsActive
	}
	p := model.Product{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		SKU:         strings.TrimSpace(in.SKU),
		CategoryID:  in.CategoryID,
		SubCategory: strings.TrimSpace(in.SubCategory),
		Price:       in.Price,
		IsActive:    isActive,
		OrgID:       orgID,
		CreatedBy:   c.UserID,
	}

	var pending []pendingVariantImages

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if orgID != nil {
			if _, err := r.Organizations().FindByID(ctx, *orgID); err != nil {
				return fromRepo(err, "organization")
			}
		}
		if err := checkCategory(ctx, r, vis, in.CategoryID); err != nil {
			return err
		}

		exists, err := r.Products().ExistsSKU(ctx, orgID, p.SKU, 0)
		if err != nil {
			return txFailure(err)
		}
		if exists {
			return conflict("sku already exists")
		}

		if err := r.Products().Create(ctx, &p); err != nil {
			return fromRepo(err, "product")
		}

		for _, vin := range in.Variants {
			// SKUの無いバリアントは作らない
			if vin.SKU == nil || strings.TrimSpace(*vin.SKU) == "" {
				continue
			}
			v := model.ProductVariant{ProductID: p.ID, SKU: strings.TrimSpace(*vin.SKU)}
			if vin.Color != nil {
				v.Color = strings.TrimSpace(*vin.Color)
			}
			if err := r.Variants().Create(ctx, &v); err != nil {
				return fromRepo(err, "variant")
			}
			if err := upsertSizes(ctx, r, v.ID, vin.Sizes, nil); err != nil {
				return err
			}
			if len(vin.Images) > 0 {
				pending = append(pending, pendingVariantImages{variantID: v.ID, images: vin.Images})
			}
		}

		if len(in.GroupVisibility) > 0 {
			if err := r.Products().ReplaceGroupVisibility(ctx, p.ID, toVisibilityRows(in.GroupVisibility)); err != nil {
				return txFailure(err)
			}
		}

		return u.audit(ctx, r, c, model.AuditActionCreateProduct, p, nil, p)
	})
	if err != nil {
		return model.Product{}, txFailure(err)
	}

	u.attachImages(ctx, p.ID, in.Images, pending)

	return u.GetProduct(ctx, c, p.ID)
}

// 存在するフィールドだけ上書きする
func (u *CatalogUsecase) UpdateProduct(ctx context.Context, c access.Caller, productID int64, in UpdateProductInput) (model.Product, error) {
	if err := authorize(c, access.OpUpdateProduct); err != nil {
		return model.Product{}, err
	}
	if productID <= 0 {
		return model.Product{}, validationError("invalid product id")
	}
	fields, err := productPatchFields(in)
	if err != nil {
		return model.Product{}, err
	}
	for _, vin := range in.Variants {
		if err := validateVariant(vin); err != nil {
			return model.Product{}, err
		}
	}

	vis := access.ResolveVisibility(c)
	var pending []pendingVariantImages
	var orphaned []string

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, productID)
		if err != nil {
			return fromRepo(err, "product")
		}
		if !vis.CanSee(p.OrgID) {
			return notFound("product not found")
		}
		if !access.OwnsOrganization(c, p.OrgID) {
			return forbidden("product belongs to another organization")
		}

		if sku, ok := fields["sku"].(string); ok && sku != p.SKU {
			exists, err := r.Products().ExistsSKU(ctx, p.OrgID, sku, p.ID)
			if err != nil {
				return txFailure(err)
			}
			if exists {
				return conflict("sku already exists")
			}
		}
		if catID, ok := fields["category_id"].(int64); ok && catID != p.CategoryID {
			if err := checkCategory(ctx, r, vis, catID); err != nil {
				return err
			}
		}

		if err := r.Products().UpdateFields(ctx, p.ID, fields); err != nil {
			return fromRepo(err, "product")
		}

		existing, err := r.Variants().ListByProductIDs(ctx, []int64{p.ID})
		if err != nil {
			return txFailure(err)
		}
		byID := make(map[int64]model.ProductVariant, len(existing))
		for _, v := range existing {
			byID[v.ID] = v
		}

		if len(in.DeletedVariantIDs) > 0 {
			urls, err := deleteVariants(ctx, r, p.ID, in.DeletedVariantIDs, byID)
			if err != nil {
				return err
			}
			orphaned = append(orphaned, urls...)
		}

		for _, vin := range in.Variants {
			variantID, err := saveVariant(ctx, r, p.ID, vin, byID)
			if err != nil {
				return err
			}
			if variantID != 0 && len(vin.Images) > 0 {
				pending = append(pending, pendingVariantImages{variantID: variantID, images: vin.Images})
			}
		}

		if len(in.DeletedImageURLs) > 0 {
			urls, err := productImageURLs(ctx, r, p.ID, in.DeletedImageURLs)
			if err != nil {
				return err
			}
			if err := r.Products().DeleteImagesByURL(ctx, p.ID, urls); err != nil {
				return txFailure(err)
			}
			orphaned = append(orphaned, urls...)
		}

		if in.GroupVisibility != nil {
			if err := r.Products().ReplaceGroupVisibility(ctx, p.ID, toVisibilityRows(*in.GroupVisibility)); err != nil {
				return txFailure(err)
			}
		}

		return u.audit(ctx, r, c, model.AuditActionUpdateProduct, p, p, fields)
	})
	if err != nil {
		return model.Product{}, txFailure(err)
	}

	deleteAssets(ctx, u.log, u.assets, orphaned)
	u.attachImages(ctx, productID, in.Images, pending)

	return u.GetProduct(ctx, c, productID)
}

// 可視範囲で絞ってから、バリアント・画像・サイズをまとめて取る
func (u *CatalogUsecase) ListProducts(ctx context.Context, c access.Caller, f repo.ProductFilter) ([]model.Product, error) {
	if err := authorize(c, access.OpViewCatalog); err != nil {
		return nil, err
	}
	vis := access.ResolveVisibility(c)

	var out []model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		products, err := r.Products().List(ctx, vis, f)
		if err != nil {
			return txFailure(err)
		}
		out, err = loadProductGraph(ctx, r, products)
		return err
	})
	if err != nil {
		return nil, txFailure(err)
	}
	return out, nil
}

func (u *CatalogUsecase) GetProduct(ctx context.Context, c access.Caller, productID int64) (model.Product, error) {
	if err := authorize(c, access.OpViewCatalog); err != nil {
		return model.Product{}, err
	}
	vis := access.ResolveVisibility(c)

	var out model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, productID)
		if err != nil {
			return fromRepo(err, "product")
		}
		// 見えない商品は存在しない扱い
		if !vis.CanSee(p.OrgID) {
			return notFound("product not found")
		}
		list, err := loadProductGraph(ctx, r, []model.Product{p})
		if err != nil {
			return err
		}
		out = list[0]
		return nil
	})
	if err != nil {
		return model.Product{}, txFailure(err)
	}
	return out, nil
}

// 依存の深い順に消す。外部画像はcommit後にベストエフォートで削除
func (u *CatalogUsecase) DeleteProduct(ctx context.Context, c access.Caller, productID int64) error {
	if err := authorize(c, access.OpDeleteProduct); err != nil {
		return err
	}
	vis := access.ResolveVisibility(c)

	var orphaned []string
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, productID)
		if err != nil {
			return fromRepo(err, "product")
		}
		if !vis.CanSee(p.OrgID) {
			return notFound("product not found")
		}
		if !access.OwnsOrganization(c, p.OrgID) {
			return forbidden("product belongs to another organization")
		}

		variants, err := r.Variants().ListByProductIDs(ctx, []int64{p.ID})
		if err != nil {
			return txFailure(err)
		}
		variantIDs := variantIDsOf(variants)

		refs, err := r.Customizations().CountByProductVariants(ctx, variantIDs)
		if err != nil {
			return txFailure(err)
		}
		if refs > 0 {
			return conflict("product variants are referenced by customizations")
		}

		vImages, err := r.Variants().ListImages(ctx, variantIDs)
		if err != nil {
			return txFailure(err)
		}
		pImages, err := r.Products().ListImages(ctx, []int64{p.ID})
		if err != nil {
			return txFailure(err)
		}

		if err := r.Variants().DeleteImages(ctx, variantIDs); err != nil {
			return txFailure(err)
		}
		if err := r.Variants().DeleteSizes(ctx, variantIDs); err != nil {
			return txFailure(err)
		}
		if err := r.Variants().DeleteByIDs(ctx, p.ID, variantIDs); err != nil {
			return txFailure(err)
		}
		if err := r.Products().DeleteImagesByProduct(ctx, p.ID); err != nil {
			return txFailure(err)
		}
		if err := r.Products().DeleteGroupVisibility(ctx, p.ID); err != nil {
			return txFailure(err)
		}
		if err := r.Products().Delete(ctx, p.ID); err != nil {
			return fromRepo(err, "product")
		}

		for _, img := range vImages {
			orphaned = append(orphaned, img.URL)
		}
		for _, img := range pImages {
			orphaned = append(orphaned, img.URL)
		}

		return u.audit(ctx, r, c, model.AuditActionDeleteProduct, p, p, nil)
	})
	if err != nil {
		return txFailure(err)
	}

	deleteAssets(ctx, u.log, u.assets, orphaned)
	return nil
}

// commit後に画像を上げて行を追加する。失敗はログのみ
func (u *CatalogUsecase) attachImages(ctx context.Context, productID int64, images []FileUpload, pending []pendingVariantImages) {
	if len(images) == 0 && len(pending) == 0 {
		return
	}

	var uploaded []string
	var pRows []model.ProductImage
	for _, f := range images {
		url, err := u.assets.Upload(ctx, folderProducts, f.Filename, f.ContentType, f.Data)
		if err != nil {
			logCollaborator(ctx, u.log, "asset.upload", err, slog.Int64("product_id", productID))
			continue
		}
		uploaded = append(uploaded, url)
		pRows = append(pRows, model.ProductImage{ProductID: productID, URL: url})
	}

	var vRows []model.VariantImage
	for _, pv := range pending {
		for _, img := range pv.images {
			url, err := u.assets.Upload(ctx, folderProducts, img.File.Filename, img.File.ContentType, img.File.Data)
			if err != nil {
				logCollaborator(ctx, u.log, "asset.upload", err, slog.Int64("variant_id", pv.variantID))
				continue
			}
			uploaded = append(uploaded, url)
			vRows = append(vRows, model.VariantImage{VariantID: pv.variantID, URL: url, Type: img.Type})
		}
	}

	if len(uploaded) == 0 {
		return
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Products().CreateImages(ctx, pRows); err != nil {
			return err
		}
		return r.Variants().CreateImages(ctx, vRows)
	})
	if err != nil {
		logCollaborator(ctx, u.log, "product.attach_images", err, slog.Int64("product_id", productID))
		deleteAssets(ctx, u.log, u.assets, uploaded)
	}
}

func (u *CatalogUsecase) audit(ctx context.Context, r repo.TxRepos, c access.Caller, action model.AuditAction, p model.Product, before, after interface{}) error {
	return writeAudit(ctx, r, u.clock, c.UserID, p.OrgID, action, model.AuditResourceProduct, formatID(p.ID), before, after)
}

func validateCreateProduct(in CreateProductInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return validationError("title is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return validationError("description is required")
	}
	if strings.TrimSpace(in.SKU) == "" {
		return validationError("sku is required")
	}
	if in.CategoryID <= 0 {
		return validationError("category is required")
	}
	if !in.Price.IsPositive() {
		return validationError("price must be > 0")
	}
	for _, v := range in.Variants {
		if err := validateVariant(v); err != nil {
			return err
		}
	}
	for _, g := range in.GroupVisibility {
		if g.GroupID <= 0 {
			return validationError("invalid group_id")
		}
	}
	return nil
}

func validateVariant(v VariantInput) error {
	for _, s := range v.Sizes {
		if strings.TrimSpace(s.Size) == "" {
			return validationError("size is required")
		}
		if s.StockQuantity != nil && *s.StockQuantity < 0 {
			return validationError("stock_quantity must be >= 0")
		}
	}
	for _, img := range v.Images {
		if !img.Type.Valid() {
			return validationError("invalid variant image type")
		}
	}
	return nil
}

func productPatchFields(in UpdateProductInput) (map[string]interface{}, error) {
	fields := map[string]interface{}{}
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		if t == "" {
			return nil, validationError("title must not be empty")
		}
		fields["title"] = t
	}
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		if d == "" {
			return nil, validationError("description must not be empty")
		}
		fields["description"] = d
	}
	if in.SKU != nil {
		s := strings.TrimSpace(*in.SKU)
		if s == "" {
			return nil, validationError("sku must not be empty")
		}
		fields["sku"] = s
	}
	if in.CategoryID != nil {
		if *in.CategoryID <= 0 {
			return nil, validationError("invalid category")
		}
		fields["category_id"] = *in.CategoryID
	}
	if in.SubCategory != nil {
		fields["sub_category"] = strings.TrimSpace(*in.SubCategory)
	}
	if in.Price != nil {
		if !in.Price.IsPositive() {
			return nil, validationError("price must be > 0")
		}
		fields["price"] = *in.Price
	}
	if in.IsActive != nil {
		fields["is_active"] = *in.IsActive
	}
	return fields, nil
}

func checkCategory(ctx context.Context, r repo.TxRepos, vis access.Visibility, categoryID int64) error {
	cat, err := r.Categories().FindByID(ctx, categoryID)
	if err != nil {
		return fromRepo(err, "category")
	}
	if !vis.CanSee(cat.OrgID) {
		return notFound("category not found")
	}
	return nil
}

// 既存サイズは渡されたフィールドだけ更新、新規は既定値で作る
func upsertSizes(ctx context.Context, r repo.TxRepos, variantID int64, sizes []SizeInput, existing map[string]bool) error {
	for _, s := range sizes {
		row := model.SizeAttribute{
			VariantID:       variantID,
			Size:            strings.TrimSpace(s.Size),
			PriceAdjustment: decimal.Zero,
		}
		var cols []string
		if s.PriceAdjustment != nil {
			row.PriceAdjustment = *s.PriceAdjustment
			cols = append(cols, "price_adjustment")
		}
		if s.StockQuantity != nil {
			row.StockQuantity = *s.StockQuantity
			cols = append(cols, "stock_quantity")
		}
		if !existing[row.Size] {
			cols = nil
		}
		if err := r.Variants().UpsertSize(ctx, row, cols); err != nil {
			return fromRepo(err, "size")
		}
	}
	return nil
}

// 更新 or 新規。作成しなかった場合は0を返す
func saveVariant(ctx context.Context, r repo.TxRepos, productID int64, vin VariantInput, byID map[int64]model.ProductVariant) (int64, error) {
	if vin.ID == 0 {
		if vin.SKU == nil || strings.TrimSpace(*vin.SKU) == "" {
			return 0, nil
		}
		v := model.ProductVariant{ProductID: productID, SKU: strings.TrimSpace(*vin.SKU)}
		if vin.Color != nil {
			v.Color = strings.TrimSpace(*vin.Color)
		}
		if err := r.Variants().Create(ctx, &v); err != nil {
			return 0, fromRepo(err, "variant")
		}
		return v.ID, upsertSizes(ctx, r, v.ID, vin.Sizes, nil)
	}

	v, ok := byID[vin.ID]
	if !ok {
		return 0, notFound("variant not found")
	}
	changed := false
	if vin.Color != nil {
		v.Color = strings.TrimSpace(*vin.Color)
		changed = true
	}
	if vin.SKU != nil && strings.TrimSpace(*vin.SKU) != "" {
		v.SKU = strings.TrimSpace(*vin.SKU)
		changed = true
	}
	if changed {
		if err := r.Variants().Update(ctx, productID, v); err != nil {
			return 0, fromRepo(err, "variant")
		}
	}

	if len(vin.Sizes) > 0 {
		current, err := r.Variants().ListSizes(ctx, []int64{v.ID})
		if err != nil {
			return 0, txFailure(err)
		}
		existing := make(map[string]bool, len(current))
		for _, s := range current {
			existing[s.Size] = true
		}
		if err := upsertSizes(ctx, r, v.ID, vin.Sizes, existing); err != nil {
			return 0, err
		}
	}
	return v.ID, nil
}

// 画像 → サイズ → バリアントの順で消す。消えた画像URLを返す
func deleteVariants(ctx context.Context, r repo.TxRepos, productID int64, ids []int64, byID map[int64]model.ProductVariant) ([]string, error) {
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, notFound("variant not found")
		}
	}

	refs, err := r.Customizations().CountByProductVariants(ctx, ids)
	if err != nil {
		return nil, txFailure(err)
	}
	if refs > 0 {
		return nil, conflict("variant is referenced by customizations")
	}

	images, err := r.Variants().ListImages(ctx, ids)
	if err != nil {
		return nil, txFailure(err)
	}
	if err := r.Variants().DeleteImages(ctx, ids); err != nil {
		return nil, txFailure(err)
	}
	if err := r.Variants().DeleteSizes(ctx, ids); err != nil {
		return nil, txFailure(err)
	}
	if err := r.Variants().DeleteByIDs(ctx, productID, ids); err != nil {
		return nil, txFailure(err)
	}

	urls := make([]string, 0, len(images))
	for _, img := range images {
		urls = append(urls, img.URL)
	}
	for _, id := range ids {
		delete(byID, id)
	}
	return urls, nil
}

// 4クエリで取ってメモリ上でFKごとにまとめる
func loadProductGraph(ctx context.Context, r repo.TxRepos, products []model.Product) ([]model.Product, error) {
	if len(products) == 0 {
		return []model.Product{}, nil
	}
	ids := make([]int64, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}

	images, err := r.Products().ListImages(ctx, ids)
	if err != nil {
		return nil, txFailure(err)
	}
	variants, err := r.Variants().ListByProductIDs(ctx, ids)
	if err != nil {
		return nil, txFailure(err)
	}
	variantIDs := variantIDsOf(variants)
	vImages, err := r.Variants().ListImages(ctx, variantIDs)
	if err != nil {
		return nil, txFailure(err)
	}
	sizes, err := r.Variants().ListSizes(ctx, variantIDs)
	if err != nil {
		return nil, txFailure(err)
	}

	imagesByVariant := map[int64][]model.VariantImage{}
	for _, img := range vImages {
		imagesByVariant[img.VariantID] = append(imagesByVariant[img.VariantID], img)
	}
	sizesByVariant := map[int64][]model.SizeAttribute{}
	for _, s := range sizes {
		sizesByVariant[s.VariantID] = append(sizesByVariant[s.VariantID], s)
	}
	variantsByProduct := map[int64][]model.ProductVariant{}
	for _, v := range variants {
		v.Images = nonNil(imagesByVariant[v.ID])
		v.Sizes = nonNil(sizesByVariant[v.ID])
		variantsByProduct[v.ProductID] = append(variantsByProduct[v.ProductID], v)
	}
	imagesByProduct := map[int64][]model.ProductImage{}
	for _, img := range images {
		imagesByProduct[img.ProductID] = append(imagesByProduct[img.ProductID], img)
	}

	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		p.Images = nonNil(imagesByProduct[p.ID])
		p.Variants = nonNil(variantsByProduct[p.ID])
		out = append(out, p)
	}
	return out, nil
}

func variantIDsOf(vs []model.ProductVariant) []int64 {
	ids := make([]int64, 0, len(vs))
	for _, v := range vs {
		ids = append(ids, v.ID)
	}
	return ids
}

func toVisibilityRows(in []GroupVisibilityInput) []model.GroupProductVisibility {
	rows := make([]model.GroupProductVisibility, 0, len(in))
	for _, g := range in {
		rows = append(rows, model.GroupProductVisibility{GroupID: g.GroupID, IsVisible: g.IsVisible})
	}
	return rows
}

// JSONで [] を返すため
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// 監査ログ（before/afterはJSON文字列）
func writeAudit(ctx context.Context, r repo.TxRepos, clock Clock, actorID int64, orgID *int64, action model.AuditAction, resType model.AuditResourceType, resID string, before, after interface{}) error {
	entry := model.AuditLog{
		ActorUserID:  actorID,
		Action:       action,
		ResourceType: resType,
		ResourceID:   resID,
		OrgID:        orgID,
		BeforeJSON:   toJSON(before),
		AfterJSON:    toJSON(after),
		CreatedAt:    clock.Now(),
	}
	if err := r.AuditLogs().Create(ctx, &entry); err != nil {
		return txFailure(err)
	}
	return nil
}

func formatID(id int64) string { return strconv.FormatInt(id, 10) }

func toJSON(v interface{}) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// この商品に紐づくURLだけを返す。他の商品の画像が混ざっていればNotFound
func productImageURLs(ctx context.Context, r repo.TxRepos, productID int64, requested []string) ([]string, error) {
	images, err := r.Products().ListImages(ctx, []int64{productID})
	if err != nil {
		return nil, txFailure(err)
	}
	owned := make(map[string]bool, len(images))
	for _, img := range images {
		owned[img.URL] = true
	}

	seen := make(map[string]bool, len(requested))
	var urls, missing []string
	for _, url := range requested {
		if seen[url] {
			continue
		}
		seen[url] = true
		if owned[url] {
			urls = append(urls, url)
		} else {
			missing = append(missing, url)
		}
	}
	if len(missing) > 0 {
		return nil, notFound("product image not found", missing...)
	}
	return urls, nil
}
