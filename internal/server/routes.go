package server

import (
	"heelwa/internal/config"
	"heelwa/internal/handler"

	"github.com/labstack/echo/v4"
)

// Handlersはルート登録に必要なハンドラ一式
type Handlers struct {
	Auth           *handler.AuthHandler
	Catalog        *handler.CatalogHandler
	Cart           *handler.CartHandler
	Pos            *handler.PosHandler
	AdminInventory *handler.AdminInventoryHandler
}

// 全ルートを登録する
func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers) {
	h.Auth.RegisterRoutes(e)
	h.Catalog.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e, cfg)
	h.Pos.RegisterRoutes(e, cfg)
	h.AdminInventory.RegisterRoutes(e, cfg)
}
