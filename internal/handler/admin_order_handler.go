package handler

import (
	"net/http"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 注文ステータス・監査ログ・集計
type AdminOrderHandler struct {
	uc      *usecase.AdminOrderUsecase
	summary *usecase.SummaryUsecase
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase, summary *usecase.SummaryUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc, summary: summary}
}

type OrderStatusUpdateRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

func (h *AdminOrderHandler) RegisterRoutes(g *echo.Group) {
	g.PUT("/orders/:id/status", h.updateStatus)
	g.GET("/audit-logs", h.auditLogs)
	g.GET("/summary", h.getSummary)
}

func (h *AdminOrderHandler) updateStatus(c echo.Context) error {
	caller, ok := callerOf(c)
	if !ok {
		return unauthorized(c)
	}
	orderID := c.Param("id")
	if orderID == "" {
		return badRequest(c, "invalid id")
	}

	var req OrderStatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	order, err := h.uc.UpdateStatus(c.Request().Context(), caller, orderID, usecase.UpdateStatusInput{
		Status: model.OrderStatus(req.Status),
		Note:   req.Note,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, order)
}

// GET /admin/audit-logs?actor_user_id=&org_id=&action=A,B&resource_type=&resource_id=&from=&to=&before_id=&limit=
func (h *AdminOrderHandler) auditLogs(c echo.Context) error {
	caller, ok := callerOf(c)
	if !ok {
		return unauthorized(c)
	}

	var f repo.AuditLogFilter
	var err error
	if f.ActorUserID, err = queryInt64(c, "actor_user_id"); err != nil {
		return badRequest(c, err.Error())
	}
	if f.OrgID, err = queryInt64(c, "org_id"); err != nil {
		return badRequest(c, err.Error())
	}
	for _, v := range strings.Split(c.QueryParam("action"), ",") {
		if v = strings.TrimSpace(v); v != "" {
			f.Actions = append(f.Actions, model.AuditAction(v))
		}
	}
	if v := c.QueryParam("resource_type"); v != "" {
		rt := model.AuditResourceType(v)
		f.ResourceType = &rt
	}
	if v := c.QueryParam("resource_id"); v != "" {
		f.ResourceID = &v
	}
	if f.From, err = queryTime(c, "from"); err != nil {
		return badRequest(c, err.Error())
	}
	if f.To, err = queryTime(c, "to"); err != nil {
		return badRequest(c, err.Error())
	}
	before, err := queryInt64(c, "before_id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if before != nil {
		f.BeforeID = *before
	}
	if f.Limit, err = queryInt(c, "limit", 50); err != nil {
		return badRequest(c, err.Error())
	}

	out, err := h.uc.ListAuditLogs(c.Request().Context(), caller, f)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// GET /admin/summary?org_id=&timeframe=&period=
func (h *AdminOrderHandler) getSummary(c echo.Context) error {
	caller, ok := callerOf(c)
	if !ok {
		return unauthorized(c)
	}

	orgID, err := queryInt64(c, "org_id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	out, err := h.summary.Summary(c.Request().Context(), caller, usecase.SummaryQuery{
		OrgID:     orgID,
		Timeframe: c.QueryParam("timeframe"),
		Period:    c.QueryParam("period"),
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
