package handler

import (
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// multipartのファイルフィールド
const (
	fieldProductImages = "productImages"
	// variant-<index>-<view>
	fieldVariantPrefix = "variant-"
)

// variantsフィールドの1要素
type variantRequest struct {
	ID    int64         `json:"id"`
	Color *string       `json:"color"`
	SKU   *string       `json:"sku"`
	Sizes []sizeRequest `json:"sizes"`
}

type sizeRequest struct {
	Name       string           `json:"name"`
	Adjustment *decimal.Decimal `json:"adjustment"`
	Stock      *int64           `json:"stock"`
}

type groupVisibilityRequest struct {
	GroupID   int64 `json:"group_id"`
	IsVisible bool  `json:"is_visible"`
}

type categoryRequest struct {
	Title string `json:"title"`
	OrgID *int64 `json:"org_id"`
}

// /admin/products と /admin/categories をまとめる
type AdminProductHandler struct {
	catalog    *usecase.CatalogUsecase
	categories *usecase.CategoryUsecase
}

// DI
func NewAdminProductHandler(catalog *usecase.CatalogUsecase, categories *usecase.CategoryUsecase) *AdminProductHandler {
	return &AdminProductHandler{catalog: catalog, categories: categories}
}

// adminを登録
func (h *AdminProductHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/products", h.createProduct)
	g.PATCH("/products/:id", h.updateProduct)
	g.DELETE("/products/:id", h.deleteProduct)

	g.POST("/categories", h.createCategory)
	g.PATCH("/categories/:id", h.updateCategory)
}

// POST /admin/products (multipart)
func (h *AdminProductHandler) createProduct(c echo.Context) error {
	caller, ok := callerOf(c)
	if !ok {
		return unauthorized(c)
	}

	params, err := c.FormParams()
	if err != nil {
		return badRequest(c, "invalid body")
	}

	in := usecase.CreateProductInput{
		Title:       params.Get("title"),
		Description: params.Get("description"),
		SKU:         params.Get("sku"),
		SubCategory: params.Get("sub_category"),
	}
	if in.CategoryID, err = formInt64(params, "category_id"); err != nil {
		return badRequest(c, err.Error())
	}
	if v := params.Get("price"); v != "" {
		if in.Price, err = decimal.NewFromString(v); err != nil {
			return badRequest(c, "invalid price")
		}
	}
	if in.IsActive, err = formBoolPtr(params, "is_active"); err != nil {
		return badRequest(c, err.Error())
	}
	if in.OrgID, err = formInt64Ptr(params, "org_id"); err != nil {
		return badRequest(c, err.Error())
	}

	var variants []variantRequest
	if _, err := formJSON(c, "variants", &variants); err != nil {
		return badRequest(c, err.Error())
	}
	var groups []groupVisibilityRequest
	if _, err := formJSON(c, "group_visibility", &groups); err != nil {
		return badRequest(c, err.Error())
	}

	form := multipartForm(c)
	if in.Images, err = productImages(form); err != nil {
		return badRequest(c, err.Error())
	}
	if in.Variants, err = variantInputs(form, variants); err != nil {
		return badRequest(c, err.Error())
	}
	in.GroupVisibility = groupInputs(groups)

	p, err := h.catalog.CreateProduct(c.Request().Context(), caller, in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, p)
}

// PATCH /admin/products/:id (multipart)。送られたフィールドだけ変える
func (h *AdminProductHandler) updateProduct(c echo.Context) error {
	caller, ok := callerOf(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	params, err := c.FormParams()
	if err != nil {
		return badRequest(c, "invalid body")
	}

	var in usecase.UpdateProductInput
	in.Title = formStringPtr(params, "title")
	in.Description = formStringPtr(params, "description")
	in.SKU = formStringPtr(params, "sku")
	in.SubCategory = formStringPtr(params, "sub_category")
	if in.CategoryID, err = formInt64Ptr(params, "category_id"); err != nil {
		return badRequest(c, err.Error())
	}
	if v := formStringPtr(params, "price"); v != nil {
		price, err := decimal.NewFromString(*v)
		if err != nil {
			return badRequest(c, "invalid price")
		}
		in.Price = &price
	}
	if in.IsActive, err = formBoolPtr(params, "is_active"); err != nil {
		return badRequest(c, err.Error())
	}

	var variants []variantRequest
	if _, err := formJSON(c, "variants", &variants); err != nil {
		return badRequest(c, err.Error())
	}
	if _, err := formJSON(c, "deleted_images", &in.DeletedImageURLs); err != nil {
		return badRequest(c, err.Error())
	}
	if _, err := formJSON(c, "deleted_variants", &in.DeletedVariantIDs); err != nil {
		return badRequest(c, err.Error())
	}
	var groups []groupVisibilityRequest
	sent, err := formJSON(c, "group_visibility", &groups)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if sent {
		g := groupInputs(groups)
		in.GroupVisibility = &g
	}

	form := multipartForm(c)
	if in.Images, err = productImages(form); err != nil {
		return badRequest(c, err.Error())
	}
	if in.Variants, err = variantInputs(form, variants); err != nil {
		return badRequest(c, err.Error())
	}

	p, err := h.catalog.UpdateProduct(c.Request().Context(), caller, id, in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}

// DELETE /admin/products/:id
func (h *AdminProductHandler) deleteProduct(c echo.Context) error {
	caller, ok := callerOf(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	if err := h.catalog.DeleteProduct(c.Request().Context(), caller, id); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

// POST /admin/categories
func (h *AdminProductHandler) createCategory(c echo.Context) error {
	caller, ok := callerOf(c)
	if !ok {
		return unauthorized(c)
	}

	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	cat, err := h.categories.Create(c.Request().Context(), caller, req.Title, req.OrgID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, cat)
}

// PATCH /admin/categories/:id
func (h *AdminProductHandler) updateCategory(c echo.Context) error {
	caller, ok := callerOf(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	cat, err := h.categories.Update(c.Request().Context(), caller, id, req.Title)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, cat)
}

// ------- multipart helper -------

func productImages(form *multipart.Form) ([]usecase.FileUpload, error) {
	if form == nil {
		return nil, nil
	}
	return readUploads(form.File[fieldProductImages])
}

// variant-<i>-<view> のファイルをi番目のバリアントに付ける。viewが無ければfront
func variantInputs(form *multipart.Form, reqs []variantRequest) ([]usecase.VariantInput, error) {
	out := make([]usecase.VariantInput, 0, len(reqs))
	for _, v := range reqs {
		vin := usecase.VariantInput{ID: v.ID, Color: v.Color, SKU: v.SKU}
		for _, s := range v.Sizes {
			vin.Sizes = append(vin.Sizes, usecase.SizeInput{
				Size:            s.Name,
				PriceAdjustment: s.Adjustment,
				StockQuantity:   s.Stock,
			})
		}
		out = append(out, vin)
	}
	if form == nil {
		return out, nil
	}

	// キー順で処理する
	keys := make([]string, 0, len(form.File))
	for k := range form.File {
		if strings.HasPrefix(k, fieldVariantPrefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		idx, view, err := parseVariantField(k)
		if err != nil {
			return nil, err
		}
		if idx >= len(out) {
			return nil, &fieldError{field: k, msg: "no such variant"}
		}
		files, err := readUploads(form.File[k])
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			out[idx].Images = append(out[idx].Images, usecase.VariantImageUpload{Type: view, File: f})
		}
	}
	return out, nil
}

func parseVariantField(name string) (int, model.ViewType, error) {
	parts := strings.SplitN(strings.TrimPrefix(name, fieldVariantPrefix), "-", 2)
	idx, err := strconv.Atoi(parts[0])
	if err != nil || idx < 0 {
		return 0, "", &fieldError{field: name, msg: "invalid variant index"}
	}
	view := model.ViewFront
	if len(parts) == 2 && parts[1] != "" {
		view = model.ViewType(parts[1])
	}
	return idx, view, nil
}

func groupInputs(reqs []groupVisibilityRequest) []usecase.GroupVisibilityInput {
	out := make([]usecase.GroupVisibilityInput, 0, len(reqs))
	for _, g := range reqs {
		out = append(out, usecase.GroupVisibilityInput{GroupID: g.GroupID, IsVisible: g.IsVisible})
	}
	return out
}

type fieldError struct {
	field string
	msg   string
}

func (e *fieldError) Error() string { return e.field + ": " + e.msg }

// ------- form value helper -------

func formStringPtr(params url.Values, name string) *string {
	vs, ok := params[name]
	if !ok || len(vs) == 0 {
		return nil
	}
	v := vs[0]
	return &v
}

func formInt64(params url.Values, name string) (int64, error) {
	p, err := formInt64Ptr(params, name)
	if err != nil || p == nil {
		return 0, err
	}
	return *p, nil
}

func formInt64Ptr(params url.Values, name string) (*int64, error) {
	v := params.Get(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, &fieldError{field: name, msg: "must be an integer"}
	}
	return &n, nil
}

func formBoolPtr(params url.Values, name string) (*bool, error) {
	v := params.Get(name)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, &fieldError{field: name, msg: "must be a boolean"}
	}
	return &b, nil
}
