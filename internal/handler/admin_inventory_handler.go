package handler

import (
	"net/http"
	"strconv"
	"time"

	"heelwa/internal/config"
	"heelwa/internal/middleware"
	"heelwa/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin/stock と /admin/inventory-log のHTTP（店員専用）。
type AdminInventoryHandler struct {
	invUC    *usecase.InventoryUsecase
	ledgerUC *usecase.LedgerUsecase
}

// DI
func NewAdminInventoryHandler(invUC *usecase.InventoryUsecase, ledgerUC *usecase.LedgerUsecase) *AdminInventoryHandler {
	return &AdminInventoryHandler{invUC: invUC, ledgerUC: ledgerUC}
}

type RestockRequest struct {
	Quantity int64 `json:"quantity"`
}

type AdjustStockRequest struct {
	Delta int64 `json:"delta"`
}

// /admin/stock, /admin/inventory-log を登録（ADMINのみ）
func (h *AdminInventoryHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/admin")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.AdminRoleGuard())

	g.GET("/stock", h.stockOverview)
	g.POST("/variants/:id/restock", h.restock)
	g.POST("/variants/:id/adjust", h.adjust)

	g.GET("/inventory-log", h.ledger)
	g.GET("/inventory-log/consistency/:id", h.consistency)
}

func (h *AdminInventoryHandler) stockOverview(c echo.Context) error {
	cashierID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.invUC.StockOverview(c.Request().Context(), cashierID, usecase.StockOverviewInput{
		Q:        c.QueryParam("q"),
		LowFirst: c.QueryParam("sort") == "low",
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AdminInventoryHandler) restock(c echo.Context) error {
	cashierID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	variantID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req RestockRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.invUC.Restock(c.Request().Context(), cashierID, variantID, req.Quantity); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "stock updated"})
}

func (h *AdminInventoryHandler) adjust(c echo.Context) error {
	cashierID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	variantID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req AdjustStockRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.invUC.Adjust(c.Request().Context(), cashierID, variantID, req.Delta); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "stock updated"})
}

func (h *AdminInventoryHandler) ledger(c echo.Context) error {
	cashierID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	in := usecase.LedgerListInput{
		ChangeType: c.QueryParam("change_type"),
	}

	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid from"})
		}
		in.From = &t
	}

	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid to"})
		}
		in.To = &t
	}

	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		in.Limit = l
	}

	if v := c.QueryParam("offset"); v != "" {
		o, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid offset"})
		}
		in.Offset = o
	}

	out, err := h.ledgerUC.List(c.Request().Context(), cashierID, in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AdminInventoryHandler) consistency(c echo.Context) error {
	cashierID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	variantID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.ledgerUC.CheckConsistency(c.Request().Context(), cashierID, variantID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
