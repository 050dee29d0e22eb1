package server

import (
	"net/http"

	"storefront/internal/handler"
	"storefront/internal/middleware"

	"github.com/labstack/echo/v4"
)

// main で組み立てたハンドラ一式
type Handlers struct {
	Auth          *handler.AuthHandler
	Product       *handler.ProductHandler
	AdminProduct  *handler.AdminProductHandler
	Logo          *handler.LogoHandler
	Customization *handler.CustomizationHandler
	Cart          *handler.CartHandler
	Order         *handler.OrderHandler
	AdminOrder    *handler.AdminOrderHandler
	Address       *handler.AddressHandler
}

// 公開 → 認証済み → /admin（staffのみ）の順に登録
func RegisterRoutes(e *echo.Echo, parser middleware.TokenParser, h Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	h.Auth.RegisterRoutes(e)

	authed := e.Group("")
	authed.Use(middleware.AuthJWT(parser))
	h.Auth.RegisterAuthedRoutes(authed)
	h.Product.RegisterRoutes(authed)
	h.Logo.RegisterRoutes(authed)
	h.Customization.RegisterRoutes(authed)
	h.Cart.RegisterRoutes(authed)
	h.Order.RegisterRoutes(authed)
	h.Address.RegisterRoutes(authed)

	admin := e.Group("/admin")
	admin.Use(middleware.AuthJWT(parser))
	admin.Use(middleware.StaffGuard())
	h.Auth.RegisterAdminRoutes(admin)
	h.AdminProduct.RegisterRoutes(admin)
	h.Logo.RegisterAdminRoutes(admin)
	h.AdminOrder.RegisterRoutes(admin)
}
