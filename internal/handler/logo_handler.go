package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type placementsRequest struct {
	Placements []string `json:"placements"`
}

// /logos の参照と /admin/logos の管理
type LogoHandler struct {
	uc *usecase.LogoUsecase
}

func NewLogoHandler(uc *usecase.LogoUsecase) *LogoHandler {
	return &LogoHandler{uc: uc}
}

func (h *LogoHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/logos", h.list)
	g.GET("/logos/:id", h.detail)
	g.GET("/logo-variants/:id/placements", h.listPlacements)
}

func (h *LogoHandler) RegisterAdminRoutes(g *echo.Group) {
	g.POST("/logos", h.create)
	g.DELETE("/logos/:id", h.deleteLogo)
	g.POST("/logos/:id/variants", h.addVariant)
	g.DELETE("/logo-variants/:id", h.deleteVariant)
	g.POST("/logo-variants/:id/placements", h.attachPlacements)
	g.DELETE("/logo-variants/:id/placements", h.detachPlacements)
}

func (h *LogoHandler) list(c echo.Context) error {
	caller, ok := callerOf(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.ListLogos(c.Request().Context(), caller)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LogoHandler) detail(c echo.Context) error {
	caller, ok := callerOf(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.GetLogo(c.Request().Context(), caller, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LogoHandler) listPlacements(c echo.Context) error {
	caller, ok := callerOf(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.ListVariantPlacements(c.Request().Context(), caller, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// POST /admin/logos (multipart)
// logos: ファイル群、colors: JSON配列（ファイルと同じ順）、placements: JSON配列
func (h *LogoHandler) create(c echo.Context) error {
	caller, ok := callerOf(c)
	if !ok {
		return unauthorized(c)
	}

	params, err := c.FormParams()
	if err != nil {
		return badRequest(c, "invalid body")
	}
	orgID, err := formInt64Ptr(params, "org_id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var colors []string
	if _, err := formJSON(c, "colors", &colors); err != nil {
		return badRequest(c, err.Error())
	}
	var placements []string
	if _, err := formJSON(c, "placements", &placements); err != nil {
		return badRequest(c, err.Error())
	}

	var files []usecase.FileUpload
	if form := multipartForm(c); form != nil {
		if files, err = readUploads(form.File["logos"]); err != nil {
			return badRequest(c, err.Error())
		}
	}
	if len(files) != len(colors) {
		return badRequest(c, "number of logo files does not match number of colors")
	}

	variants := make([]usecase.LogoVariantInput, 0, len(files))
	for i, f := range files {
		variants = append(variants, usecase.LogoVariantInput{Color: colors[i], File: f})
	}

	logo, err := h.uc.CreateLogo(c.Request().Context(), caller, usecase.CreateLogoInput{
		Title:      params.Get("title"),
		OrgID:      orgID,
		Variants:   variants,
		Placements: placements,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, logo)
}

// POST /admin/logos/:id/variants (multipart: logo, color, placements)
func (h *LogoHandler) addVariant(c echo.Context) error {
	caller, ok := callerOf(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	fh, err := c.FormFile("logo")
	if err != nil {
		return badRequest(c, "logo file is required")
	}
	file, err := readUpload(fh)
	if err != nil {
		return badRequest(c, err.Error())
	}
	var placements []string
	if _, err := formJSON(c, "placements", &placements); err != nil {
		return badRequest(c, err.Error())
	}

	v, err := h.uc.AddVariant(c.Request().Context(), caller, id, usecase.LogoVariantInput{
		Color: c.FormValue("color"),
		File:  file,
	}, placements)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, v)
}

// POST /admin/logo-variants/:id/placements 何度呼んでも同じ結果
func (h *LogoHandler) attachPlacements(c echo.Context) error {
	caller, ok := callerOf(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	var req placementsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.AttachPlacements(c.Request().Context(), caller, id, req.Placements)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LogoHandler) detachPlacements(c echo.Context) error {
	caller, ok := callerOf(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	if err := h.uc.DetachPlacements(c.Request().Context(), caller, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "placements removed"})
}

func (h *LogoHandler) deleteLogo(c echo.Context) error {
	caller, ok := callerOf(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	if err := h.uc.DeleteLogo(c.Request().Context(), caller, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

func (h *LogoHandler) deleteVariant(c echo.Context) error {
	caller, ok := callerOf(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	if err := h.uc.DeleteVariant(c.Request().Context(), caller, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}
