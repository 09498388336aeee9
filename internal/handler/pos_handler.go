package handler

import (
	"net/http"
	"strconv"

	"heelwa/internal/config"
	"heelwa/internal/middleware"
	"heelwa/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin/pos のHTTP（店員専用）。
// 顧客選択 → Keep明細の確認 → 販売確定/解除 の流れ。
type PosHandler struct {
	posUC  *usecase.PosUsecase
	keepUC *usecase.KeepUsecase
}

// DI
func NewPosHandler(posUC *usecase.PosUsecase, keepUC *usecase.KeepUsecase) *PosHandler {
	return &PosHandler{posUC: posUC, keepUC: keepUC}
}

type AddToKeepRequest struct {
	CustomerID int64 `json:"customer_id"`
	VariantID  int64 `json:"variant_id"`
	Quantity   int64 `json:"quantity"`
}

type FinalizeSaleRequest struct {
	CustomerID    int64   `json:"customer_id"`
	CartItemIDs   []int64 `json:"cart_item_ids"`
	PaymentMethod string  `json:"payment_method"`
}

type ReleaseManyRequest struct {
	CartItemIDs []int64 `json:"cart_item_ids"`
}

// /admin/pos 配下を登録（ADMINのみ）
func (h *PosHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/admin/pos")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.AdminRoleGuard())

	g.GET("/customers", h.listCustomers)
	g.GET("/customers/:id/keeps", h.customerKeeps)
	g.POST("/keeps", h.addToKeep)
	g.POST("/keeps/:id/release", h.releaseKeep)
	g.POST("/keeps/release", h.releaseMany)
	g.POST("/sales", h.finalizeSale)
}

func (h *PosHandler) listCustomers(c echo.Context) error {
	cashierID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.posUC.ListCustomers(c.Request().Context(), cashierID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *PosHandler) customerKeeps(c echo.Context) error {
	cashierID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	customerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.posUC.CustomerKeeps(c.Request().Context(), cashierID, customerID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *PosHandler) addToKeep(c echo.Context) error {
	cashierID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req AddToKeepRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.posUC.AddToKeep(c.Request().Context(), cashierID, usecase.AddToKeepInput{
		CustomerID: req.CustomerID,
		VariantID:  req.VariantID,
		Quantity:   req.Quantity,
	}); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, SuccessResponse{Message: "item kept"})
}

func (h *PosHandler) releaseKeep(c echo.Context) error {
	cashierID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.keepUC.Release(c.Request().Context(), cashierID, itemID); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "keep released"})
}

func (h *PosHandler) releaseMany(c echo.Context) error {
	cashierID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req ReleaseManyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.keepUC.ReleaseMany(c.Request().Context(), cashierID, req.CartItemIDs)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *PosHandler) finalizeSale(c echo.Context) error {
	cashierID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req FinalizeSaleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.posUC.FinalizeSale(c.Request().Context(), cashierID, usecase.FinalizeSaleInput{
		CustomerID:    req.CustomerID,
		CartItemIDs:   req.CartItemIDs,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}
