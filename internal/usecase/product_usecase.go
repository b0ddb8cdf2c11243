package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// エラー種別（ハンドラはCodeを見ずStatusだけで応答を組み立てても良い）
const (
	CodeValidation      = "validation_error"
	CodeNotFound        = "not_found"
	CodePayloadTooLarge = "payload_too_large"
	CodeDuplicateID     = "duplicate_id"
	CodeStorage         = "storage_error"
)

type HTTPError struct {
	Status  int
	Code    string
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

func NewHTTPError(status int, code string, message string) error {
	return &HTTPError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// ProductUsecase は商品CRUDの本体。
// ストアはload-all/replace-allなので、変更系はmuのWriteロックで
// load→mutate→saveの区間を直列化する。読み取りはReadロックで並行可。
type ProductUsecase struct {
	store repo.ProductStore
	mu    sync.RWMutex
}

// DI
func NewProductUsecase(store repo.ProductStore) *ProductUsecase {
	return &ProductUsecase{store: store}
}

type CreateProductInput struct {
	Title    string
	Price    string
	Category string
	Messages string
	ImageURL string
}

// 更新はフォームに現れたキーだけをマージする（nil＝未指定は保持）。
type UpdateProductInput struct {
	Title    *string
	Price    *string
	Category *string
	Messages *string

	// 本リクエストで新しくアップロードされた画像のURL。空なら未アップロード。
	ImageURL string
	// クライアントが「既存画像をそのまま使う」と明示した場合の値。
	ExistingImage string
}

func (u *ProductUsecase) ListProducts(ctx context.Context) ([]model.Product, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	products, err := u.store.Load(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, CodeStorage, "storage error")
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}

func (u *ProductUsecase) GetProduct(ctx context.Context, id string) (model.Product, error) {
	if id == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "product id is required")
	}

	u.mu.RLock()
	defer u.mu.RUnlock()

	products, err := u.store.Load(ctx)
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, CodeStorage, "storage error")
	}

	// 先頭一致（idは文字列比較。数値との暗黙変換はしない）
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Product{}, NewHTTPError(http.StatusNotFound, CodeNotFound, "product not found")
}

func (u *ProductUsecase) CreateProduct(ctx context.Context, in CreateProductInput) (model.Product, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "product title and price are required")
	}
	price := strings.TrimSpace(in.Price)
	if price == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "product title and price are required")
	}
	if _, err := strconv.ParseFloat(price, 64); err != nil {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "price must be a number")
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	products, err := u.store.Load(ctx)
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, CodeStorage, "storage error")
	}

	newID := nextID(products)
	for _, p := range products {
		if p.ID == newID {
			// 正しい生成器なら起きない。起きたら生成側の欠陥。
			return model.Product{}, NewHTTPError(http.StatusInternalServerError, CodeDuplicateID, "generated id already exists")
		}
	}

	created := model.Product{
		ID:       newID,
		Title:    title,
		Price:    price,
		Category: in.Category,
		Messages: in.Messages,
		Image:    in.ImageURL,
	}

	products = append(products, created)
	if err := u.store.Save(ctx, products); err != nil {
		// 保存失敗を成功として返さない
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, CodeStorage, "storage error")
	}
	return created, nil
}

func (u *ProductUsecase) UpdateProduct(ctx context.Context, id string, in UpdateProductInput) (model.Product, error) {
	if id == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "product id is required")
	}
	if in.Price != nil {
		price := strings.TrimSpace(*in.Price)
		if price == "" {
			return model.Product{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "price must be a number")
		}
		if _, err := strconv.ParseFloat(price, 64); err != nil {
			return model.Product{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "price must be a number")
		}
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	products, err := u.store.Load(ctx)
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, CodeStorage, "storage error")
	}

	idx := -1
	for i, p := range products {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.Product{}, NewHTTPError(http.StatusNotFound, CodeNotFound, "product not found")
	}

	// ホワイトリストだけを浅くマージ。idはボディに何が来ても元の値に戻す。
	merged := products[idx]
	if in.Title != nil {
		merged.Title = *in.Title
	}
	if in.Price != nil {
		merged.Price = strings.TrimSpace(*in.Price)
	}
	if in.Category != nil {
		merged.Category = *in.Category
	}
	if in.Messages != nil {
		merged.Messages = *in.Messages
	}
	switch {
	case in.ImageURL != "":
		merged.Image = in.ImageURL
	case in.ExistingImage != "":
		merged.Image = in.ExistingImage
	}
	merged.ID = id

	products[idx] = merged
	if err := u.store.Save(ctx, products); err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, CodeStorage, "storage error")
	}
	return merged, nil
}

// 削除した1件を確認用に返す。
func (u *ProductUsecase) DeleteProduct(ctx context.Context, id string) (model.Product, error) {
	if id == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, CodeValidation, "product id is required")
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	products, err := u.store.Load(ctx)
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, CodeStorage, "storage error")
	}

	idx := -1
	for i, p := range products {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.Product{}, NewHTTPError(http.StatusNotFound, CodeNotFound, "product not found")
	}

	removed := products[idx]
	products = append(products[:idx], products[idx+1:]...)
	if err := u.store.Save(ctx, products); err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, CodeStorage, "storage error")
	}
	return removed, nil
}

// nextID は数値としての最大id+1を文字列で返す。空なら"1"。
// 数値として読めないidは最大値の計算から除外する。
func nextID(products []model.Product) string {
	max := int64(0)
	for _, p := range products {
		n, err := strconv.ParseInt(p.ID, 10, 64)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return strconv.FormatInt(max+1, 10)
}
