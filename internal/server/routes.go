package server

import (
	"app/internal/config"
	"app/internal/handler"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, cfg config.Config, productH *handler.ProductHandler, fileH *handler.FileHandler) {
	productH.RegisterRoutes(e)
	fileH.RegisterRoutes(e)

	// アセット配信。/files/* は旧クライアント互換のエイリアス。
	e.Static("/uploads", cfg.UploadDir)
	e.Static("/files", cfg.UploadDir)
}
