package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"app/internal/config"
	"app/internal/handler"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// New はルーティング済みのechoを組み立てる。
func New(cfg config.Config, productH *handler.ProductHandler, fileH *handler.FileHandler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(requestLogger())
	e.Use(corsFromConfig(cfg))

	// multipart本体の上限。画像上限＋フォーム分の余裕。
	e.Use(middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
		Limit: bodyLimit(cfg.MaxUploadBytes),
	}))

	RegisterRoutes(e, cfg, productH, fileH)

	return e
}

// corsFromConfig はFE_URL（カンマ区切り）を許可リストにする。未設定なら全許可。
func corsFromConfig(cfg config.Config) echo.MiddlewareFunc {
	if cfg.FEURL == "" {
		return middleware.CORS()
	}

	origins := []string{}
	for _, o := range strings.Split(cfg.FEURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	})
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				slog.Error("request", "method", v.Method, "uri", v.URI, "status", v.Status, "err", v.Error)
				return nil
			}
			slog.Info("request", "method", v.Method, "uri", v.URI, "status", v.Status)
			return nil
		},
	})
}

// echoのBodyLimitは素のバイト数文字列も受け付ける
func bodyLimit(maxUploadBytes int64) string {
	const formOverhead = 1 << 20
	return strconv.FormatInt(maxUploadBytes+formOverhead, 10)
}
