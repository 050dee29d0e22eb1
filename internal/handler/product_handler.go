package handler

import (
	"net/http"

	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 商品・カテゴリの参照API（全ロール）
type ProductHandler struct {
	catalog    *usecase.CatalogUsecase
	categories *usecase.CategoryUsecase
}

// DI
func NewProductHandler(catalog *usecase.CatalogUsecase, categories *usecase.CategoryUsecase) *ProductHandler {
	return &ProductHandler{catalog: catalog, categories: categories}
}

// 参照ルートを登録
func (h *ProductHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/products", h.list)
	g.GET("/products/:id", h.detail)
	g.GET("/categories", h.listCategories)
}

// GET /products?title=&sku=&category_id=&is_active=
func (h *ProductHandler) list(c echo.Context) error {
	caller, ok := callerOf(c)
	if !ok {
		return unauthorized(c)
	}

	categoryID, err := queryInt64(c, "category_id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	isActive, err := queryBool(c, "is_active")
	if err != nil {
		return badRequest(c, err.Error())
	}

	out, err := h.catalog.ListProducts(c.Request().Context(), caller, repo.ProductFilter{
		Title:      c.QueryParam("title"),
		SKU:        c.QueryParam("sku"),
		IsActive:   isActive,
		CategoryID: categoryID,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// GET /products/:id
func (h *ProductHandler) detail(c echo.Context) error {
	caller, ok := callerOf(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := h.catalog.GetProduct(c.Request().Context(), caller, id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// GET /categories?title=
func (h *ProductHandler) listCategories(c echo.Context) error {
	caller, ok := callerOf(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.categories.List(c.Request().Context(), caller, c.QueryParam("title"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
