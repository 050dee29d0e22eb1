package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type CustomizationHandler struct {
	uc *usecase.CustomizationUsecase
}

func NewCustomizationHandler(uc *usecase.CustomizationUsecase) *CustomizationHandler {
	return &CustomizationHandler{uc: uc}
}

func (h *CustomizationHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/customizations", h.compose)
	g.GET("/customizations", h.list)
	g.DELETE("/customizations/:id", h.delete)
}

// POST /customizations (multipart: product_variant_id, logo_variant_id, placement_id, preview)
func (h *CustomizationHandler) compose(c echo.Context) error {
	caller, ok := callerOf(c)
	if !ok {
		return unauthorized(c)
	}

	params, err := c.FormParams()
	if err != nil {
		return badRequest(c, "invalid body")
	}
	var in usecase.ComposeInput
	if in.ProductVariantID, err = formInt64(params, "product_variant_id"); err != nil {
		return badRequest(c, err.Error())
	}
	if in.LogoVariantID, err = formInt64(params, "logo_variant_id"); err != nil {
		return badRequest(c, err.Error())
	}
	if in.PlacementID, err = formInt64(params, "placement_id"); err != nil {
		return badRequest(c, err.Error())
	}

	// プレビューは任意
	if fh, err := c.FormFile("preview"); err == nil {
		f, err := readUpload(fh)
		if err != nil {
			return badRequest(c, err.Error())
		}
		in.Preview = &f
	}

	out, err := h.uc.Compose(c.Request().Context(), caller, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *CustomizationHandler) list(c echo.Context) error {
	caller, ok := callerOf(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.List(c.Request().Context(), caller)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CustomizationHandler) delete(c echo.Context) error {
	caller, ok := callerOf(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	if err := h.uc.Delete(c.Request().Context(), caller, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}
