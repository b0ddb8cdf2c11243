package handler

import (
	"net/http"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// requestBaseURL は受信リクエストのscheme+hostから公開ベースURLを導出する。
// PUBLIC_BASE_URLが設定されていればusecase側がそちらを優先する。
func requestBaseURL(c echo.Context) string {
	return c.Scheme() + "://" + c.Request().Host
}

// /products のCRUD
type ProductHandler struct {
	uc *usecase.ProductUsecase
	up *usecase.UploadUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase, up *usecase.UploadUsecase) *ProductHandler {
	return &ProductHandler{uc: uc, up: up}
}

// 商品ルートを登録
func (h *ProductHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/products", h.list)
	e.GET("/products/:id", h.detail)
	e.POST("/products", h.create)
	e.PUT("/products/:id", h.update)
	e.DELETE("/products/:id", h.remove)
}

func (h *ProductHandler) list(c echo.Context) error {
	products, err := h.uc.ListProducts(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) detail(c echo.Context) error {
	p, err := h.uc.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) create(c echo.Context) error {
	// multipart: title, price, category, messages, image(file)
	fh, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "image file is required"})
	}

	imageURL, err := h.up.SaveImage(fh, requestBaseURL(c))
	if err != nil {
		return writeError(c, err)
	}

	p, err := h.uc.CreateProduct(c.Request().Context(), usecase.CreateProductInput{
		Title:    c.FormValue("title"),
		Price:    c.FormValue("price"),
		Category: c.FormValue("category"),
		Messages: c.FormValue("messages"),
		ImageURL: imageURL,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) update(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid form body"})
	}

	// フォームに現れたキーだけをマージ対象にする（idは除外）
	var in usecase.UpdateProductInput
	if vs, ok := form["title"]; ok && len(vs) > 0 {
		in.Title = &vs[0]
	}
	if vs, ok := form["price"]; ok && len(vs) > 0 {
		in.Price = &vs[0]
	}
	if vs, ok := form["category"]; ok && len(vs) > 0 {
		in.Category = &vs[0]
	}
	if vs, ok := form["messages"]; ok && len(vs) > 0 {
		in.Messages = &vs[0]
	}
	in.ExistingImage = c.FormValue("existingImage")

	// 画像は任意。付いていれば保存して差し替え。
	if fh, err := c.FormFile("image"); err == nil {
		imageURL, err := h.up.SaveImage(fh, requestBaseURL(c))
		if err != nil {
			return writeError(c, err)
		}
		in.ImageURL = imageURL
	}

	p, err := h.uc.UpdateProduct(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) remove(c echo.Context) error {
	// 確認用に削除した1件を返す
	p, err := h.uc.DeleteProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}
