package usecase_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"storefront/internal/access"
	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mock / Fake
// =====================

type AssetStoreMock struct{ mock.Mock }

func (m *AssetStoreMock) Upload(ctx context.Context, folder, filename, contentType string, body []byte) (string, error) {
	args := m.Called(ctx, folder, filename, contentType, body)
	return args.String(0), args.Error(1)
}

func (m *AssetStoreMock) Delete(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

type NotifierMock struct{ mock.Mock }

func (m *NotifierMock) Send(ctx context.Context, to, subject, html string) error {
	args := m.Called(ctx, to, subject, html)
	return args.Error(0)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// order-1, order-2 ... を返す
type seqIDs struct{ n int64 }

func (g *seqIDs) NewID() string {
	return fmt.Sprintf("order-%d", atomic.AddInt64(&g.n, 1))
}

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustDecimal(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := mustDecimal(s)
	return &d
}

func i64(v int64) *int64 { return &v }

func strPtr(s string) *string { return &s }

func superAdmin() access.Caller {
	return access.Caller{UserID: 1, Role: model.RoleSuperAdmin}
}

func adminOf(userID, orgID int64) access.Caller {
	return access.Caller{UserID: userID, Role: model.RoleAdmin, OrgID: i64(orgID)}
}

func managerOf(userID, orgID int64) access.Caller {
	return access.Caller{UserID: userID, Role: model.RoleManager, OrgID: i64(orgID)}
}

func userOf(userID, orgID int64) access.Caller {
	return access.Caller{UserID: userID, Role: model.RoleUser, OrgID: i64(orgID)}
}

// =====================
// Seed
// =====================

// org 10 / 20 と、それぞれのユーザー、カテゴリを入れる
type fixture struct {
	store *memStore

	orgA, orgB       int64
	adminA, managerA int64
	userA, userB     int64
	categoryA        int64
	categoryGlobal   int64
}

func newFixture() *fixture {
	f := &fixture{store: newMemStore(), orgA: 10, orgB: 20,
		adminA: 100, managerA: 101, userA: 102, userB: 200,
		categoryA: 300, categoryGlobal: 301}

	f.store.seed(func(st *memState) {
		st.seq = 1000
		st.orgs[f.orgA] = model.Organization{ID: f.orgA, Title: "Acme"}
		st.orgs[f.orgB] = model.Organization{ID: f.orgB, Title: "Globex"}

		st.users[f.adminA] = model.User{ID: f.adminA, Email: "admin@acme.test", Role: model.RoleAdmin, OrgID: i64(f.orgA), IsActive: true}
		st.users[f.managerA] = model.User{ID: f.managerA, Email: "manager@acme.test", Role: model.RoleManager, OrgID: i64(f.orgA), IsActive: true}
		st.users[f.userA] = model.User{ID: f.userA, Email: "buyer@acme.test", Role: model.RoleUser, OrgID: i64(f.orgA), IsActive: true}
		st.users[f.userB] = model.User{ID: f.userB, Email: "buyer@globex.test", Role: model.RoleUser, OrgID: i64(f.orgB), IsActive: true}

		st.categories[f.categoryA] = model.Category{ID: f.categoryA, Title: "Apparel", OrgID: i64(f.orgA)}
		st.categories[f.categoryGlobal] = model.Category{ID: f.categoryGlobal, Title: "Drinkware"}
	})
	return f
}

// 商品1つ・バリアント1つ・ロゴ1つ・配置1つを直接入れて、それぞれのIDを返す
type catalogSeed struct {
	productID, variantID, logoID, logoVariantID, placementID int64
}

func (f *fixture) seedCatalog(orgID *int64, price string) catalogSeed {
	var s catalogSeed
	f.store.seed(func(st *memState) {
		st.seq++
		s.productID = st.seq
		st.products[s.productID] = model.Product{ID: s.productID, Title: "Tee", Description: "cotton", SKU: fmt.Sprintf("TEE-%d", s.productID),
			CategoryID: f.categoryGlobal, Price: mustDecimal(price), IsActive: true, OrgID: orgID, CreatedBy: 1, CreatedAt: testNow}
		st.seq++
		s.variantID = st.seq
		st.variants[s.variantID] = model.ProductVariant{ID: s.variantID, ProductID: s.productID, Color: "Black", SKU: "TEE-BLK"}
		st.seq++
		s.logoID = st.seq
		st.logos[s.logoID] = model.Logo{ID: s.logoID, Title: "Wordmark", OrgID: orgID, CreatedBy: 1, CreatedAt: testNow}
		st.seq++
		s.logoVariantID = st.seq
		st.logoVariants[s.logoVariantID] = model.LogoVariant{ID: s.logoVariantID, LogoID: s.logoID, Color: "White", AssetURL: "https://cdn.test/logos/w.png"}
		st.seq++
		s.placementID = st.seq
		st.placements[s.placementID] = model.LogoPlacement{ID: s.placementID, Name: "Left Chest", View: model.ClassifyPlacementView("Left Chest")}
	})
	return s
}

func (f *fixture) seedCustomization(userID int64, s catalogSeed) int64 {
	var id int64
	f.store.seed(func(st *memState) {
		st.seq++
		id = st.seq
		st.customizations[id] = model.Customization{ID: id, UserID: userID, ProductVariantID: s.variantID,
			LogoVariantID: s.logoVariantID, PlacementID: s.placementID, CreatedAt: testNow}
	})
	return id
}

func (f *fixture) seedAddress(userID int64) int64 {
	var id int64
	f.store.seed(func(st *memState) {
		st.seq++
		id = st.seq
		st.addresses[id] = model.Address{ID: id, UserID: userID, Name: "Receiver", Line1: "1-2-3 Chuo",
			City: "Tokyo", PostalCode: "100-0001", Country: "JP", CreatedAt: testNow, UpdatedAt: testNow}
	})
	return id
}
