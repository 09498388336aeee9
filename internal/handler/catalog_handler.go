package handler

import (
	"net/http"
	"strconv"

	"heelwa/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /variants の公開API
type CatalogHandler struct {
	uc *usecase.CatalogUsecase
}

// DI
func NewCatalogHandler(uc *usecase.CatalogUsecase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

// 公開カタログのルートを登録
func (h *CatalogHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/variants", h.search)
	e.GET("/variants/:id", h.detail)
}

func (h *CatalogHandler) search(c echo.Context) error {
	q := c.QueryParam("q")

	// limit（default 10）
	limit := 10
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	out, err := h.uc.SearchVariants(c.Request().Context(), q, limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.GetVariant(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
