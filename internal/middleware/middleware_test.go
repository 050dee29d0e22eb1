package middleware_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/access"
	"storefront/internal/domain/model"
	"storefront/internal/logging"
	"storefront/internal/middleware"
	auth "storefront/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =====================
// helper
// =====================

const secret = "test-secret"

type mwErrorResponse struct {
	Error string `json:"error"`
}

type mwCallerResponse struct {
	UserID int64      `json:"user_id"`
	Role   model.Role `json:"role"`
	OrgID  *int64     `json:"org_id"`
}

func issue(t *testing.T, u model.User) string {
	t.Helper()
	tok, _, err := auth.NewJWTIssuer(secret, time.Hour).Issue(u, time.Now())
	require.NoError(t, err)
	return tok
}

func newEcho(mws ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		caller, ok := middleware.CallerFrom(c)
		if !ok {
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.JSON(http.StatusOK, mwCallerResponse{UserID: caller.UserID, Role: caller.Role, OrgID: caller.OrgID})
	}, mws...)
	return e
}

func do(e *echo.Echo, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// =====================
// AuthJWT
// =====================

func TestAuthJWT_OK_SetsCaller(t *testing.T) {
	org := int64(10)
	e := newEcho(middleware.AuthJWT(auth.NewJWTIssuer(secret, time.Hour)))
	tok := issue(t, model.User{ID: 7, Role: model.RoleManager, OrgID: &org})

	rec := do(e, "Bearer "+tok)

	require.Equal(t, http.StatusOK, rec.Code)
	var body mwCallerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(7), body.UserID)
	assert.Equal(t, model.RoleManager, body.Role)
	require.NotNil(t, body.OrgID)
	assert.Equal(t, org, *body.OrgID)
}

func TestAuthJWT_Rejects(t *testing.T) {
	e := newEcho(middleware.AuthJWT(auth.NewJWTIssuer(secret, time.Hour)))
	valid := issue(t, model.User{ID: 7, Role: model.RoleUser})
	other, _, err := auth.NewJWTIssuer("other-secret", time.Hour).Issue(model.User{ID: 7, Role: model.RoleUser}, time.Now())
	require.NoError(t, err)

	cases := map[string]string{
		"missing header":  "",
		"not bearer":      "Basic " + valid,
		"empty token":     "Bearer   ",
		"garbage":         "Bearer not.a.jwt",
		"wrong signature": "Bearer " + other,
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			rec := do(e, h)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			var body mwErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "unauthorized", body.Error)
		})
	}
}

func TestAuthJWT_BearerIsCaseInsensitive(t *testing.T) {
	e := newEcho(middleware.AuthJWT(auth.NewJWTIssuer(secret, time.Hour)))

	rec := do(e, "bearer "+issue(t, model.User{ID: 3, Role: model.RoleUser}))

	assert.Equal(t, http.StatusOK, rec.Code)
}

// =====================
// StaffGuard / RequireOperation
// =====================

func TestStaffGuard(t *testing.T) {
	e := newEcho(middleware.AuthJWT(auth.NewJWTIssuer(secret, time.Hour)), middleware.StaffGuard())

	rec := do(e, "Bearer "+issue(t, model.User{ID: 1, Role: model.RoleUser}))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "admin only")

	for _, r := range []model.Role{model.RoleSuperAdmin, model.RoleAdmin, model.RoleManager} {
		rec = do(e, "Bearer "+issue(t, model.User{ID: 1, Role: r}))
		assert.Equal(t, http.StatusOK, rec.Code, r)
	}
}

func TestStaffGuard_WithoutCaller(t *testing.T) {
	e := newEcho(middleware.StaffGuard())

	rec := do(e, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireOperation(t *testing.T) {
	e := newEcho(middleware.AuthJWT(auth.NewJWTIssuer(secret, time.Hour)), middleware.RequireOperation(access.OpDeleteProduct))

	rec := do(e, "Bearer "+issue(t, model.User{ID: 1, Role: model.RoleManager}))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(e, "Bearer "+issue(t, model.User{ID: 1, Role: model.RoleAdmin}))
	assert.Equal(t, http.StatusOK, rec.Code)
}

// =====================
// RequestLogger
// =====================

func TestRequestLogger_WritesOneLine(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewWithWriter(&buf, "info")
	e := echo.New()
	e.Use(middleware.RequestLogger(log))
	e.GET("/missing", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "request", line["msg"])
	assert.Equal(t, "/missing", line["uri"])
	assert.EqualValues(t, 404, line["status"])
}
