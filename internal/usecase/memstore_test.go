package usecase_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"storefront/internal/access"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// テスト用のインメモリストア。
// WithinTxは1本ずつ実行し、エラー時はTx開始前の状態に戻す
type memStore struct {
	mu   sync.Mutex
	st   *memState
	fail map[string]error
	// WithinTxの呼び出し回数
	txCalls int
	// 呼び出し順を見たい操作だけ記録する
	trace []string
}

type memState struct {
	seq            int64
	users          map[int64]model.User
	orgs           map[int64]model.Organization
	categories     map[int64]model.Category
	products       map[int64]model.Product
	productImages  map[int64]model.ProductImage
	variants       map[int64]model.ProductVariant
	variantImages  map[int64]model.VariantImage
	sizes          map[int64]model.SizeAttribute
	groupVis       map[[2]int64]model.GroupProductVisibility
	logos          map[int64]model.Logo
	logoVariants   map[int64]model.LogoVariant
	placements     map[int64]model.LogoPlacement
	links          map[[2]int64]bool
	customizations map[int64]model.Customization
	cartItems      map[int64]model.CartItem
	orders         map[string]model.Order
	notes          map[int64]model.OrderNote
	audits         []model.AuditLog
	addresses      map[int64]model.Address
}

func newMemStore() *memStore {
	return &memStore{
		fail: map[string]error{},
		st: &memState{
			users:          map[int64]model.User{},
			orgs:           map[int64]model.Organization{},
			categories:     map[int64]model.Category{},
			products:       map[int64]model.Product{},
			productImages:  map[int64]model.ProductImage{},
			variants:       map[int64]model.ProductVariant{},
			variantImages:  map[int64]model.VariantImage{},
			sizes:          map[int64]model.SizeAttribute{},
			groupVis:       map[[2]int64]model.GroupProductVisibility{},
			logos:          map[int64]model.Logo{},
			logoVariants:   map[int64]model.LogoVariant{},
			placements:     map[int64]model.LogoPlacement{},
			links:          map[[2]int64]bool{},
			customizations: map[int64]model.Customization{},
			cartItems:      map[int64]model.CartItem{},
			orders:         map[string]model.Order{},
			notes:          map[int64]model.OrderNote{},
			addresses:      map[int64]model.Address{},
		},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (st *memState) clone() *memState {
	return &memState{
		seq:            st.seq,
		users:          cloneMap(st.users),
		orgs:           cloneMap(st.orgs),
		categories:     cloneMap(st.categories),
		products:       cloneMap(st.products),
		productImages:  cloneMap(st.productImages),
		variants:       cloneMap(st.variants),
		variantImages:  cloneMap(st.variantImages),
		sizes:          cloneMap(st.sizes),
		groupVis:       cloneMap(st.groupVis),
		logos:          cloneMap(st.logos),
		logoVariants:   cloneMap(st.logoVariants),
		placements:     cloneMap(st.placements),
		links:          cloneMap(st.links),
		customizations: cloneMap(st.customizations),
		cartItems:      cloneMap(st.cartItems),
		orders:         cloneMap(st.orders),
		notes:          cloneMap(st.notes),
		audits:         append([]model.AuditLog(nil), st.audits...),
		addresses:      cloneMap(st.addresses),
	}
}

func (s *memStore) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.txCalls++
	if err := ctx.Err(); err != nil {
		return err
	}
	backup := s.st.clone()
	if err := fn(memRepos{s}); err != nil {
		s.st = backup
		return err
	}
	return nil
}

// failに登録した操作はエラーを返す
func (s *memStore) check(op string) error {
	return s.fail[op]
}

func (s *memStore) record(op string) {
	s.trace = append(s.trace, op)
}

func (s *memStore) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.trace...)
}

func (s *memStore) nextID() int64 {
	s.st.seq++
	return s.st.seq
}

// テストのseed用（Txの外から直接入れる）
func (s *memStore) seed(fn func(st *memState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.st)
}

func (s *memStore) read(fn func(st *memState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.st)
}

type memRepos struct{ s *memStore }

func (r memRepos) Users() repo.UserRepository                   { return memUsers(r) }
func (r memRepos) Organizations() repo.OrganizationRepository   { return memOrgs(r) }
func (r memRepos) Products() repo.ProductRepository             { return memProducts(r) }
func (r memRepos) Variants() repo.VariantRepository             { return memVariants(r) }
func (r memRepos) Categories() repo.CategoryRepository          { return memCategories(r) }
func (r memRepos) Logos() repo.LogoRepository                   { return memLogos(r) }
func (r memRepos) Placements() repo.PlacementRepository         { return memPlacements(r) }
func (r memRepos) Customizations() repo.CustomizationRepository { return memCustomizations(r) }
func (r memRepos) CartItems() repo.CartItemRepository           { return memCart(r) }
func (r memRepos) Orders() repo.OrderRepository                 { return memOrders(r) }
func (r memRepos) OrderNotes() repo.OrderNoteRepository         { return memNotes(r) }
func (r memRepos) AuditLogs() repo.AuditLogRepository           { return memAudits(r) }
func (r memRepos) Addresses() repo.AddressRepository            { return memAddresses(r) }

func inIDs(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func sameOrg(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func statsMatch(f repo.StatsFilter, orgID *int64, userID int64, createdAt time.Time) bool {
	if f.OrgID != nil && (orgID == nil || *orgID != *f.OrgID) {
		return false
	}
	if f.UserID != nil && userID != *f.UserID {
		return false
	}
	if f.From != nil && createdAt.Before(*f.From) {
		return false
	}
	return true
}

// ---- users / organizations

type memUsers memRepos

func (r memUsers) Create(ctx context.Context, u *model.User) error {
	for _, existing := range r.s.st.users {
		if existing.Email == u.Email {
			return repo.ErrConflict
		}
	}
	u.ID = r.s.nextID()
	r.s.st.users[u.ID] = *u
	return nil
}

func (r memUsers) FindByID(ctx context.Context, id int64) (*model.User, error) {
	u, ok := r.s.st.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &u, nil
}

func (r memUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range r.s.st.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r memUsers) Update(ctx context.Context, u *model.User) error {
	r.s.st.users[u.ID] = *u
	return nil
}

type memOrgs memRepos

func (r memOrgs) Create(ctx context.Context, o *model.Organization) error {
	o.ID = r.s.nextID()
	r.s.st.orgs[o.ID] = *o
	return nil
}

func (r memOrgs) FindByID(ctx context.Context, id int64) (model.Organization, error) {
	o, ok := r.s.st.orgs[id]
	if !ok {
		return model.Organization{}, repo.ErrNotFound
	}
	return o, nil
}

// ---- categories

type memCategories memRepos

func (r memCategories) Create(ctx context.Context, c *model.Category) error {
	c.ID = r.s.nextID()
	r.s.st.categories[c.ID] = *c
	return nil
}

func (r memCategories) FindByID(ctx context.Context, id int64) (model.Category, error) {
	c, ok := r.s.st.categories[id]
	if !ok {
		return model.Category{}, repo.ErrNotFound
	}
	return c, nil
}

func (r memCategories) ExistsTitle(ctx context.Context, orgID *int64, title string, excludeID int64) (bool, error) {
	for _, c := range r.s.st.categories {
		if c.ID != excludeID && sameOrg(c.OrgID, orgID) && strings.EqualFold(c.Title, title) {
			return true, nil
		}
	}
	return false, nil
}

func (r memCategories) UpdateTitle(ctx context.Context, id int64, title string) error {
	c, ok := r.s.st.categories[id]
	if !ok {
		return repo.ErrNotFound
	}
	c.Title = title
	r.s.st.categories[id] = c
	return nil
}

func (r memCategories) List(ctx context.Context, vis access.Visibility, titleLike string) ([]model.Category, error) {
	var out []model.Category
	for _, c := range r.s.st.categories {
		if vis.CanSee(c.OrgID) && strings.Contains(strings.ToLower(c.Title), strings.ToLower(titleLike)) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ---- products

type memProducts memRepos

func (r memProducts) Create(ctx context.Context, p *model.Product) error {
	if err := r.s.check("Products.Create"); err != nil {
		return err
	}
	p.ID = r.s.nextID()
	r.s.st.products[p.ID] = *p
	return nil
}

func (r memProducts) FindByID(ctx context.Context, id int64) (model.Product, error) {
	p, ok := r.s.st.products[id]
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (r memProducts) List(ctx context.Context, vis access.Visibility, f repo.ProductFilter) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.s.st.products {
		if !vis.CanSee(p.OrgID) {
			continue
		}
		if f.Title != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(f.Title)) {
			continue
		}
		if f.SKU != "" && p.SKU != f.SKU {
			continue
		}
		if f.IsActive != nil && p.IsActive != *f.IsActive {
			continue
		}
		if f.CategoryID != nil && p.CategoryID != *f.CategoryID {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r memProducts) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	p, ok := r.s.st.products[id]
	if !ok {
		return repo.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "title":
			p.Title = v.(string)
		case "description":
			p.Description = v.(string)
		case "sku":
			p.SKU = v.(string)
		case "category_id":
			p.CategoryID = v.(int64)
		case "sub_category":
			p.SubCategory = v.(string)
		case "is_active":
			p.IsActive = v.(bool)
		case "price":
			p.Price = v.(decimal.Decimal)
		default:
			return fmt.Errorf("unknown column %s", k)
		}
	}
	r.s.st.products[id] = p
	return nil
}

func (r memProducts) Delete(ctx context.Context, id int64) error {
	if _, ok := r.s.st.products[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.s.st.products, id)
	return nil
}

func (r memProducts) ExistsSKU(ctx context.Context, orgID *int64, sku string, excludeID int64) (bool, error) {
	for _, p := range r.s.st.products {
		if p.ID != excludeID && sameOrg(p.OrgID, orgID) && p.SKU == sku {
			return true, nil
		}
	}
	return false, nil
}

func (r memProducts) CreateImages(ctx context.Context, images []model.ProductImage) error {
	if len(images) > 0 {
		if err := r.s.check("Products.CreateImages"); err != nil {
			return err
		}
	}
	for _, img := range images {
		img.ID = r.s.nextID()
		r.s.st.productImages[img.ID] = img
	}
	return nil
}

func (r memProducts) ListImages(ctx context.Context, productIDs []int64) ([]model.ProductImage, error) {
	var out []model.ProductImage
	for _, img := range r.s.st.productImages {
		if inIDs(productIDs, img.ProductID) {
			out = append(out, img)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memProducts) DeleteImagesByURL(ctx context.Context, productID int64, urls []string) error {
	for id, img := range r.s.st.productImages {
		if img.ProductID != productID {
			continue
		}
		for _, u := range urls {
			if img.URL == u {
				delete(r.s.st.productImages, id)
			}
		}
	}
	return nil
}

func (r memProducts) DeleteImagesByProduct(ctx context.Context, productID int64) error {
	for id, img := range r.s.st.productImages {
		if img.ProductID == productID {
			delete(r.s.st.productImages, id)
		}
	}
	return nil
}

func (r memProducts) ReplaceGroupVisibility(ctx context.Context, productID int64, rows []model.GroupProductVisibility) error {
	_ = r.DeleteGroupVisibility(ctx, productID)
	for _, row := range rows {
		row.ProductID = productID
		r.s.st.groupVis[[2]int64{productID, row.GroupID}] = row
	}
	return nil
}

func (r memProducts) DeleteGroupVisibility(ctx context.Context, productID int64) error {
	for k := range r.s.st.groupVis {
		if k[0] == productID {
			delete(r.s.st.groupVis, k)
		}
	}
	return nil
}

func (r memProducts) Count(ctx context.Context, f repo.StatsFilter) (int64, error) {
	var n int64
	for _, p := range r.s.st.products {
		if statsMatch(f, p.OrgID, p.CreatedBy, p.CreatedAt) {
			n++
		}
	}
	return n, nil
}

// ---- variants

type memVariants memRepos

func (r memVariants) Create(ctx context.Context, v *model.ProductVariant) error {
	v.ID = r.s.nextID()
	r.s.st.variants[v.ID] = *v
	return nil
}

func (r memVariants) FindByID(ctx context.Context, id int64) (model.ProductVariant, error) {
	v, ok := r.s.st.variants[id]
	if !ok {
		return model.ProductVariant{}, repo.ErrNotFound
	}
	return v, nil
}

func (r memVariants) Update(ctx context.Context, productID int64, v model.ProductVariant) error {
	cur, ok := r.s.st.variants[v.ID]
	if !ok || cur.ProductID != productID {
		return repo.ErrNotFound
	}
	cur.Color = v.Color
	cur.SKU = v.SKU
	r.s.st.variants[v.ID] = cur
	return nil
}

func (r memVariants) ListByProductIDs(ctx context.Context, productIDs []int64) ([]model.ProductVariant, error) {
	var out []model.ProductVariant
	for _, v := range r.s.st.variants {
		if inIDs(productIDs, v.ProductID) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memVariants) DeleteByIDs(ctx context.Context, productID int64, ids []int64) error {
	if err := r.s.check("Variants.DeleteByIDs"); err != nil {
		return err
	}
	for _, id := range ids {
		if v, ok := r.s.st.variants[id]; ok && v.ProductID == productID {
			delete(r.s.st.variants, id)
		}
	}
	return nil
}

func (r memVariants) CreateImages(ctx context.Context, images []model.VariantImage) error {
	for _, img := range images {
		img.ID = r.s.nextID()
		r.s.st.variantImages[img.ID] = img
	}
	return nil
}

func (r memVariants) ListImages(ctx context.Context, variantIDs []int64) ([]model.VariantImage, error) {
	var out []model.VariantImage
	for _, img := range r.s.st.variantImages {
		if inIDs(variantIDs, img.VariantID) {
			out = append(out, img)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memVariants) DeleteImages(ctx context.Context, variantIDs []int64) error {
	for id, img := range r.s.st.variantImages {
		if inIDs(variantIDs, img.VariantID) {
			delete(r.s.st.variantImages, id)
		}
	}
	return nil
}

func (r memVariants) UpsertSize(ctx context.Context, s model.SizeAttribute, updateColumns []string) error {
	if err := r.s.check("Variants.UpsertSize"); err != nil {
		return err
	}
	for id, cur := range r.s.st.sizes {
		if cur.VariantID != s.VariantID || cur.Size != s.Size {
			continue
		}
		for _, col := range updateColumns {
			switch col {
			case "price_adjustment":
				cur.PriceAdjustment = s.PriceAdjustment
			case "stock_quantity":
				cur.StockQuantity = s.StockQuantity
			}
		}
		r.s.st.sizes[id] = cur
		return nil
	}
	s.ID = r.s.nextID()
	r.s.st.sizes[s.ID] = s
	return nil
}

func (r memVariants) ListSizes(ctx context.Context, variantIDs []int64) ([]model.SizeAttribute, error) {
	var out []model.SizeAttribute
	for _, s := range r.s.st.sizes {
		if inIDs(variantIDs, s.VariantID) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memVariants) DeleteSizes(ctx context.Context, variantIDs []int64) error {
	for id, s := range r.s.st.sizes {
		if inIDs(variantIDs, s.VariantID) {
			delete(r.s.st.sizes, id)
		}
	}
	return nil
}

// ---- logos / placements

type memLogos memRepos

func (r memLogos) Create(ctx context.Context, l *model.Logo) error {
	l.ID = r.s.nextID()
	r.s.st.logos[l.ID] = *l
	return nil
}

func (r memLogos) FindByID(ctx context.Context, id int64) (model.Logo, error) {
	l, ok := r.s.st.logos[id]
	if !ok {
		return model.Logo{}, repo.ErrNotFound
	}
	return l, nil
}

func (r memLogos) List(ctx context.Context, vis access.Visibility) ([]model.Logo, error) {
	var out []model.Logo
	for _, l := range r.s.st.logos {
		if vis.CanSee(l.OrgID) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r memLogos) Delete(ctx context.Context, id int64) error {
	if _, ok := r.s.st.logos[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.s.st.logos, id)
	return nil
}

func (r memLogos) CreateVariant(ctx context.Context, v *model.LogoVariant) error {
	if err := r.s.check("Logos.CreateVariant"); err != nil {
		return err
	}
	v.ID = r.s.nextID()
	r.s.st.logoVariants[v.ID] = *v
	return nil
}

func (r memLogos) FindVariant(ctx context.Context, id int64) (model.LogoVariant, error) {
	v, ok := r.s.st.logoVariants[id]
	if !ok {
		return model.LogoVariant{}, repo.ErrNotFound
	}
	return v, nil
}

func (r memLogos) ListVariants(ctx context.Context, logoIDs []int64) ([]model.LogoVariant, error) {
	var out []model.LogoVariant
	for _, v := range r.s.st.logoVariants {
		if inIDs(logoIDs, v.LogoID) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memLogos) DeleteVariants(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		delete(r.s.st.logoVariants, id)
	}
	return nil
}

func (r memLogos) Count(ctx context.Context, f repo.StatsFilter) (int64, error) {
	var n int64
	for _, l := range r.s.st.logos {
		if statsMatch(f, l.OrgID, l.CreatedBy, l.CreatedAt) {
			n++
		}
	}
	return n, nil
}

type memPlacements memRepos

func (r memPlacements) FindByName(ctx context.Context, name string) (model.LogoPlacement, error) {
	for _, p := range r.s.st.placements {
		if p.Name == name {
			return p, nil
		}
	}
	return model.LogoPlacement{}, repo.ErrNotFound
}

func (r memPlacements) FindByID(ctx context.Context, id int64) (model.LogoPlacement, error) {
	p, ok := r.s.st.placements[id]
	if !ok {
		return model.LogoPlacement{}, repo.ErrNotFound
	}
	return p, nil
}

func (r memPlacements) Create(ctx context.Context, p *model.LogoPlacement) error {
	if _, err := r.FindByName(ctx, p.Name); err == nil {
		return repo.ErrConflict
	}
	p.ID = r.s.nextID()
	r.s.st.placements[p.ID] = *p
	return nil
}

func (r memPlacements) IsLinked(ctx context.Context, variantID, placementID int64) (bool, error) {
	return r.s.st.links[[2]int64{variantID, placementID}], nil
}

// 複合主キーと同じく重複はConflict
func (r memPlacements) Link(ctx context.Context, variantID, placementID int64) error {
	key := [2]int64{variantID, placementID}
	if r.s.st.links[key] {
		return repo.ErrConflict
	}
	r.s.st.links[key] = true
	return nil
}

func (r memPlacements) UnlinkAll(ctx context.Context, variantIDs []int64) error {
	for k := range r.s.st.links {
		if inIDs(variantIDs, k[0]) {
			delete(r.s.st.links, k)
		}
	}
	return nil
}

func (r memPlacements) ListByVariantIDs(ctx context.Context, variantIDs []int64) (map[int64][]model.LogoPlacement, error) {
	out := map[int64][]model.LogoPlacement{}
	for k := range r.s.st.links {
		if inIDs(variantIDs, k[0]) {
			out[k[0]] = append(out[k[0]], r.s.st.placements[k[1]])
		}
	}
	for _, list := range out {
		sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	}
	return out, nil
}

// ---- customizations

type memCustomizations memRepos

func (r memCustomizations) Create(ctx context.Context, c *model.Customization) error {
	if err := r.s.check("Customizations.Create"); err != nil {
		return err
	}
	c.ID = r.s.nextID()
	r.s.st.customizations[c.ID] = *c
	return nil
}

func (r memCustomizations) FindByID(ctx context.Context, id int64) (model.Customization, error) {
	c, ok := r.s.st.customizations[id]
	if !ok {
		return model.Customization{}, repo.ErrNotFound
	}
	return c, nil
}

func (r memCustomizations) List(ctx context.Context, f repo.CustomizationFilter) ([]model.Customization, error) {
	var out []model.Customization
	for _, c := range r.s.st.customizations {
		if f.UserID != nil && c.UserID != *f.UserID {
			continue
		}
		if f.OrgID != nil {
			owner := r.s.st.users[c.UserID]
			if owner.OrgID == nil || *owner.OrgID != *f.OrgID {
				continue
			}
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r memCustomizations) Delete(ctx context.Context, id int64) error {
	if err := r.s.check("Customizations.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.st.customizations[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.s.st.customizations, id)
	return nil
}

func (r memCustomizations) SetPreview(ctx context.Context, id int64, ref string) error {
	c, ok := r.s.st.customizations[id]
	if !ok {
		return repo.ErrNotFound
	}
	c.PreviewAssetRef = ref
	r.s.st.customizations[id] = c
	return nil
}

func (r memCustomizations) IsOrdered(ctx context.Context, id int64) (bool, error) {
	r.s.record("Customizations.IsOrdered")
	for _, it := range r.s.st.cartItems {
		if it.CustomizationID == id && it.Consumed {
			return true, nil
		}
	}
	return false, nil
}

func (r memCustomizations) CountByProductVariants(ctx context.Context, variantIDs []int64) (int64, error) {
	var n int64
	for _, c := range r.s.st.customizations {
		if inIDs(variantIDs, c.ProductVariantID) {
			n++
		}
	}
	return n, nil
}

func (r memCustomizations) CountByLogoVariants(ctx context.Context, variantIDs []int64) (int64, error) {
	var n int64
	for _, c := range r.s.st.customizations {
		if inIDs(variantIDs, c.LogoVariantID) {
			n++
		}
	}
	return n, nil
}

// ---- cart

type memCart memRepos

func (r memCart) Create(ctx context.Context, item *model.CartItem) error {
	item.ID = r.s.nextID()
	r.s.st.cartItems[item.ID] = *item
	return nil
}

func (r memCart) FindByID(ctx context.Context, id int64) (model.CartItem, error) {
	it, ok := r.s.st.cartItems[id]
	if !ok {
		return model.CartItem{}, repo.ErrNotFound
	}
	return it, nil
}

func (r memCart) ListOpenByUser(ctx context.Context, userID int64) ([]model.CartItem, error) {
	var out []model.CartItem
	for _, it := range r.s.st.cartItems {
		if it.UserID == userID && !it.Consumed {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// WithinTxが直列なのでロックは要らない
func (r memCart) LockOpenByUser(ctx context.Context, userID int64) ([]model.CartItem, error) {
	if err := r.s.check("CartItems.LockOpenByUser"); err != nil {
		return nil, err
	}
	return r.ListOpenByUser(ctx, userID)
}

func (r memCart) LockByCustomization(ctx context.Context, customizationID int64) ([]model.CartItem, error) {
	r.s.record("CartItems.LockByCustomization")
	var out []model.CartItem
	for _, it := range r.s.st.cartItems {
		if it.CustomizationID == customizationID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memCart) DeleteOpen(ctx context.Context, userID, id int64) error {
	it, ok := r.s.st.cartItems[id]
	if !ok || it.UserID != userID || it.Consumed {
		return repo.ErrNotFound
	}
	delete(r.s.st.cartItems, id)
	return nil
}

func (r memCart) DeleteOpenByCustomization(ctx context.Context, customizationID int64) error {
	for id, it := range r.s.st.cartItems {
		if it.CustomizationID == customizationID && !it.Consumed {
			delete(r.s.st.cartItems, id)
		}
	}
	return nil
}

func (r memCart) MarkConsumed(ctx context.Context, ids []int64) (int64, error) {
	if err := r.s.check("CartItems.MarkConsumed"); err != nil {
		return 0, err
	}
	var n int64
	for _, id := range ids {
		it, ok := r.s.st.cartItems[id]
		if !ok || it.Consumed {
			continue
		}
		it.Consumed = true
		r.s.st.cartItems[id] = it
		n++
	}
	return n, nil
}

// ---- orders

type memOrders memRepos

func (r memOrders) Create(ctx context.Context, o *model.Order) error {
	if err := r.s.check("Orders.Create"); err != nil {
		return err
	}
	if _, ok := r.s.st.orders[o.ID]; ok {
		return repo.ErrConflict
	}
	r.s.st.orders[o.ID] = *o
	return nil
}

func (r memOrders) FindByID(ctx context.Context, id string) (model.Order, error) {
	o, ok := r.s.st.orders[id]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (r memOrders) UpdateStatus(ctx context.Context, id string, status model.OrderStatus, at time.Time) error {
	o, ok := r.s.st.orders[id]
	if !ok {
		return repo.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = at
	r.s.st.orders[id] = o
	return nil
}

func (r memOrders) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, int64, error) {
	var all []model.Order
	for _, o := range r.s.st.orders {
		if f.Status != "" && string(o.Status) != f.Status {
			continue
		}
		if f.UserID != nil && o.UserID != *f.UserID {
			continue
		}
		if f.OrgID != nil && (o.OrgID == nil || *o.OrgID != *f.OrgID) {
			continue
		}
		all = append(all, o)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := int64(len(all))
	start := (f.Page - 1) * f.Limit
	if start > len(all) {
		start = len(all)
	}
	end := start + f.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r memOrders) Count(ctx context.Context, f repo.StatsFilter) (int64, error) {
	var n int64
	for _, o := range r.s.st.orders {
		if statsMatch(f, o.OrgID, o.UserID, o.CreatedAt) {
			n++
		}
	}
	return n, nil
}

func (r memOrders) CountByStatus(ctx context.Context, f repo.StatsFilter) (map[model.OrderStatus]int64, error) {
	out := map[model.OrderStatus]int64{}
	for _, o := range r.s.st.orders {
		if statsMatch(f, o.OrgID, o.UserID, o.CreatedAt) {
			out[o.Status]++
		}
	}
	return out, nil
}

var memTrendLayouts = map[string]string{"day": "2006-01-02", "month": "2006-01", "year": "2006"}

func (r memOrders) Trends(ctx context.Context, f repo.StatsFilter, period string) ([]repo.TrendPoint, error) {
	counts := map[string]int64{}
	for _, o := range r.s.st.orders {
		if !statsMatch(f, o.OrgID, o.UserID, o.CreatedAt) {
			continue
		}
		var key string
		if period == "week" {
			y, w := o.CreatedAt.ISOWeek()
			key = fmt.Sprintf("%d-W%02d", y, w)
		} else {
			key = o.CreatedAt.Format(memTrendLayouts[period])
		}
		counts[key]++
	}
	out := make([]repo.TrendPoint, 0, len(counts))
	for k, n := range counts {
		out = append(out, repo.TrendPoint{Period: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out, nil
}

type memNotes memRepos

func (r memNotes) Create(ctx context.Context, n *model.OrderNote) error {
	if err := r.s.check("OrderNotes.Create"); err != nil {
		return err
	}
	n.ID = r.s.nextID()
	r.s.st.notes[n.ID] = *n
	return nil
}

func (r memNotes) ListByOrderID(ctx context.Context, orderID string) ([]model.OrderNote, error) {
	var out []model.OrderNote
	for _, n := range r.s.st.notes {
		if n.OrderID == orderID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memAudits memRepos

func (r memAudits) Create(ctx context.Context, l *model.AuditLog) error {
	l.ID = r.s.nextID()
	r.s.st.audits = append(r.s.st.audits, *l)
	return nil
}

func (r memAudits) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	var out []model.AuditLog
	for _, l := range r.s.st.audits {
		switch {
		case f.ActorUserID != nil && l.ActorUserID != *f.ActorUserID,
			f.OrgID != nil && (l.OrgID == nil || *l.OrgID != *f.OrgID),
			len(f.Actions) > 0 && !containsAction(f.Actions, l.Action),
			f.ResourceType != nil && l.ResourceType != *f.ResourceType,
			f.ResourceID != nil && l.ResourceID != *f.ResourceID,
			f.From != nil && l.CreatedAt.Before(*f.From),
			f.To != nil && l.CreatedAt.After(*f.To),
			f.BeforeID > 0 && l.ID >= f.BeforeID:
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func containsAction(list []model.AuditAction, a model.AuditAction) bool {
	for _, x := range list {
		if x == a {
			return true
		}
	}
	return false
}

// ---- addresses

type memAddresses memRepos

func (r memAddresses) Create(ctx context.Context, a *model.Address) error {
	if err := r.s.check("Addresses.Create"); err != nil {
		return err
	}
	a.ID = r.s.nextID()
	r.s.st.addresses[a.ID] = *a
	return nil
}

func (r memAddresses) ListByUser(ctx context.Context, userID int64) ([]model.Address, error) {
	var out []model.Address
	for _, a := range r.s.st.addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r memAddresses) FindOwned(ctx context.Context, userID, id int64) (model.Address, error) {
	a, ok := r.s.st.addresses[id]
	if !ok || a.UserID != userID {
		return model.Address{}, repo.ErrNotFound
	}
	return a, nil
}

func (r memAddresses) Update(ctx context.Context, userID int64, a model.Address) error {
	cur, err := r.FindOwned(ctx, userID, a.ID)
	if err != nil {
		return err
	}
	a.UserID = cur.UserID
	a.IsDefault = cur.IsDefault
	a.CreatedAt = cur.CreatedAt
	r.s.st.addresses[a.ID] = a
	return nil
}

// 注文が参照している住所は外部キーで消せない
func (r memAddresses) Delete(ctx context.Context, userID, id int64) error {
	if _, err := r.FindOwned(ctx, userID, id); err != nil {
		return err
	}
	for _, o := range r.s.st.orders {
		if o.ShippingAddressID == id || o.BillingAddressID == id {
			return fmt.Errorf("delete address: %w", repo.ErrReferenced)
		}
	}
	delete(r.s.st.addresses, id)
	return nil
}

func (r memAddresses) SetDefault(ctx context.Context, userID, addressID int64) error {
	if _, err := r.FindOwned(ctx, userID, addressID); err != nil {
		return err
	}
	for id, a := range r.s.st.addresses {
		if a.UserID == userID {
			a.IsDefault = id == addressID
			r.s.st.addresses[id] = a
		}
	}
	return nil
}
