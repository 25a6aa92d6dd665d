package server

import (
	"app/internal/config"
	"app/internal/handler"

	"github.com/labstack/echo/v4"
)

// Handlersはルーティングに渡す依存をまとめたもの
type Handlers struct {
	Auth   *handler.AuthHandler
	Deal   *handler.DealHandler
	Cart   *handler.CartHandler
	Order  *handler.OrderHandler
	Vendor *handler.VendorHandler
}

// Startはechoを組み立てて待ち受ける
func Start(addr string, cfg config.Config, h Handlers) error {
	e := echo.New()
	e.HideBanner = true

	RegisterRoutes(e, cfg, h)

	return e.Start(addr)
}
