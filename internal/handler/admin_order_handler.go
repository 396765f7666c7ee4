package handler

import (
	"net/http"
	"strconv"
	"time"

	"bookstore/internal/config"
	"bookstore/internal/domain/model"
	"bookstore/internal/middleware"
	"bookstore/internal/repository"
	"bookstore/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminOrderHandler struct {
	uc *usecase.AdminOrderUsecase
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc}
}

// 注文の状態はwebhookだけが変える。管理画面は参照のみ
func (h *AdminOrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	admin := e.Group("/admin")
	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.TokenVersionGuard(userRepo))
	admin.Use(middleware.AdminRoleGuard())

	admin.GET("/orders", h.list)
	admin.GET("/dashboard", h.dashboard)
	admin.GET("/audit-logs", h.auditLogs)
}

func (h *AdminOrderHandler) list(c echo.Context) error {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
	}

	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
	}

	userID, err := queryInt64Ptr(c, "user_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user_id"})
	}

	fromPtr, err := queryTimePtr(c, "from")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid from"})
	}

	toPtr, err := queryTimePtr(c, "to")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid to"})
	}

	out, err := h.uc.List(c.Request().Context(), repository.AdminOrderListFilter{
		Page:   page,
		Limit:  limit,
		Status: c.QueryParam("status"),
		UserID: userID,
		From:   fromPtr,
		To:     toPtr,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) dashboard(c echo.Context) error {
	out, err := h.uc.Dashboard(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ?actor_user_id=&action=&resource_type=&resource_id=&from=&to=&limit=&offset=
func (h *AdminOrderHandler) auditLogs(c echo.Context) error {
	var f repository.AuditLogFilter
	var err error

	if f.ActorUserID, err = queryInt64Ptr(c, "actor_user_id"); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid actor_user_id"})
	}
	if f.ResourceID, err = queryInt64Ptr(c, "resource_id"); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid resource_id"})
	}
	if v := c.QueryParam("action"); v != "" {
		a := model.AuditAction(v)
		f.Action = &a
	}
	if v := c.QueryParam("resource_type"); v != "" {
		rt := model.AuditResourceType(v)
		f.ResourceType = &rt
	}
	if f.CreatedFrom, err = queryTimePtr(c, "from"); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid from"})
	}
	if f.CreatedTo, err = queryTimePtr(c, "to"); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid to"})
	}

	var ok bool
	if f.Limit, ok = queryInt(c, "limit", 0); !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
	}
	if f.Offset, ok = queryInt(c, "offset", 0); !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid offset"})
	}

	out, err := h.uc.ListAuditLogs(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func queryInt64Ptr(c echo.Context, name string) (*int64, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// RFC3339
func queryTimePtr(c echo.Context, name string) (*time.Time, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	tm, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}
