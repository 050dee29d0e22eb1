package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/handler"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"
	auth "storefront/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 全部のTxを同じエラーで失敗させる
type failingTx struct{ err error }

func (f failingTx) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return f.err
}

func newTestServer(t *testing.T) (*echo.Echo, *auth.JWTIssuer) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	tx := failingTx{err: repo.ErrLockTimeout}
	issuer := auth.NewJWTIssuer("test-secret", time.Hour)

	catalog := usecase.NewCatalogUsecase(tx, nil, nil, log)
	categories := usecase.NewCategoryUsecase(tx)
	h := Handlers{
		Auth:          handler.NewAuthHandler(nil, nil),
		Product:       handler.NewProductHandler(catalog, categories),
		AdminProduct:  handler.NewAdminProductHandler(catalog, categories),
		Logo:          handler.NewLogoHandler(usecase.NewLogoUsecase(tx, nil, nil, log)),
		Customization: handler.NewCustomizationHandler(usecase.NewCustomizationUsecase(tx, nil, log)),
		Cart:          handler.NewCartHandler(usecase.NewCartUsecase(tx)),
		Order:         handler.NewOrderHandler(usecase.NewOrderUsecase(tx, nil, nil, nil, log)),
		AdminOrder:    handler.NewAdminOrderHandler(usecase.NewAdminOrderUsecase(tx, nil, nil, log), usecase.NewSummaryUsecase(tx, nil)),
		Address:       handler.NewAddressHandler(usecase.NewAddressUsecase(tx, nil)),
	}
	cfg := config.Config{FEURL: "https://shop.example.com"}
	return New(cfg, log, issuer, h), issuer
}

func get(e *echo.Echo, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestServer_Healthz(t *testing.T) {
	e, _ := newTestServer(t)

	rec := get(e, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestServer_RequiresToken(t *testing.T) {
	e, _ := newTestServer(t)

	for _, p := range []string{"/cart", "/orders", "/products", "/logos", "/addresses", "/admin/summary"} {
		assert.Equal(t, http.StatusUnauthorized, get(e, p, "").Code, p)
	}
}

func TestServer_AdminIsStaffOnly(t *testing.T) {
	e, issuer := newTestServer(t)
	org := int64(10)
	userTok, _, err := issuer.Issue(model.User{ID: 5, Role: model.RoleUser, OrgID: &org}, time.Now())
	require.NoError(t, err)
	adminTok, _, err := issuer.Issue(model.User{ID: 1, Role: model.RoleAdmin, OrgID: &org}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, get(e, "/admin/summary", userTok).Code)
	// 通過後はTxが失敗する
	assert.Equal(t, http.StatusServiceUnavailable, get(e, "/admin/summary", adminTok).Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(e, "/cart", userTok).Code)
}

func TestServer_CORS(t *testing.T) {
	e, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/cart", nil)
	req.Header.Set(echo.HeaderOrigin, "https://shop.example.com")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodGet)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, "https://shop.example.com", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestAllowedOrigins(t *testing.T) {
	assert.Equal(t, []string{"*"}, allowedOrigins(""))
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, allowedOrigins(" https://a.test, https://b.test ,"))
}
