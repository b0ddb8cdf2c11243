package handler

import (
	"net/http"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// GET / のバナー
type BannerResponse struct {
	Message string `json:"message"`
	Storage string `json:"storage"`
}

// /files とルートバナー
type FileHandler struct {
	up      *usecase.UploadUsecase
	storage string // 稼働中のバックエンド名（file / redis / mongo / postgres）
}

// DI
func NewFileHandler(up *usecase.UploadUsecase, storage string) *FileHandler {
	return &FileHandler{up: up, storage: storage}
}

func (h *FileHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.banner)
	e.GET("/files", h.listFiles)
}

func (h *FileHandler) banner(c echo.Context) error {
	return c.JSON(http.StatusOK, BannerResponse{
		Message: "Product API Server",
		Storage: h.storage,
	})
}

func (h *FileHandler) listFiles(c echo.Context) error {
	assets, err := h.up.ListAssets(requestBaseURL(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, assets)
}
