package handler

import (
	"net/http"

	"storefront/internal/domain/model"
	auth "storefront/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	loginUC      *auth.LoginUsecase      // ログインusecase
	createUserUC *auth.CreateUserUsecase // ユーザー作成usecase
}

// DIコンストラクタ
func NewAuthHandler(loginUC *auth.LoginUsecase, createUserUC *auth.CreateUserUsecase) *AuthHandler {
	return &AuthHandler{loginUC: loginUC, createUserUC: createUserUC}
}

// /auth/login のリクエストボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// /admin/users のリクエストボディ。
type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	OrgID    *int64 `json:"org_id"`
}

type meResponse struct {
	UserID int64      `json:"user_id"`
	Role   model.Role `json:"role"`
	OrgID  *int64     `json:"org_id"`
}

// 公開ルート
func (h *AuthHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/auth/login", h.login)
}

// 認証済みルート
func (h *AuthHandler) RegisterAuthedRoutes(g *echo.Group) {
	g.GET("/auth/me", h.me)
}

// 管理ルート
func (h *AuthHandler) RegisterAdminRoutes(g *echo.Group) {
	g.POST("/users", h.createUser)
}

// POST /auth/login
func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.loginUC.Execute(c.Request().Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// GET /auth/me
func (h *AuthHandler) me(c echo.Context) error {
	caller, ok := callerOf(c)
	if !ok {
		return unauthorized(c)
	}
	return c.JSON(http.StatusOK, meResponse{UserID: caller.UserID, Role: caller.Role, OrgID: caller.OrgID})
}

// POST /admin/users
func (h *AuthHandler) createUser(c echo.Context) error {
	caller, ok := callerOf(c)
	if !ok {
		return unauthorized(c)
	}

	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	user, err := h.createUserUC.Execute(c.Request().Context(), caller, auth.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     model.Role(req.Role),
		OrgID:    req.OrgID,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, user)
}
