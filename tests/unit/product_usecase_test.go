package unit

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"app/internal/domain/model"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// Mocks
// =====================

type ProductStoreMock struct{ mock.Mock }

func (m *ProductStoreMock) Load(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductStoreMock) Save(ctx context.Context, products []model.Product) error {
	args := m.Called(ctx, products)
	return args.Error(0)
}

// 状態を持つ簡易ストア（削除→取得などの連続操作と並行テスト用）
type memStore struct {
	mu       sync.Mutex
	products []model.Product
	saveErr  error
}

func (s *memStore) Load(context.Context) ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

func (s *memStore) Save(_ context.Context, products []model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.products = make([]model.Product, len(products))
	copy(s.products, products)
	return nil
}

func assertHTTPError(t *testing.T, err error, status int, code string) {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok, "expected HTTPError, got %v", err)
	assert.Equal(t, status, he.Status)
	assert.Equal(t, code, he.Code)
}

func strPtr(s string) *string { return &s }

// =====================
// Create
// =====================

// 空コレクションからの作成でid "1" と入力フィールドの完全な写しが返ること
func TestProductUsecase_Create_EmptyCollectionAssignsOne(t *testing.T) {
	ctx := context.Background()
	st := &memStore{}
	uc := usecase.NewProductUsecase(st)

	created, err := uc.CreateProduct(ctx, usecase.CreateProductInput{
		Title:    "Lamp",
		Price:    "10",
		Category: "Home",
		Messages: "desc",
		ImageURL: "http://host/uploads/123.png",
	})
	require.NoError(t, err)

	assert.Equal(t, model.Product{
		ID:       "1",
		Title:    "Lamp",
		Price:    "10",
		Category: "Home",
		Messages: "desc",
		Image:    "http://host/uploads/123.png",
	}, created)

	stored, _ := st.Load(ctx)
	assert.Equal(t, []model.Product{created}, stored)
}

// idは数値最大+1。歯抜け（1,3）でも4になる
func TestProductUsecase_Create_IDIsMaxPlusOne(t *testing.T) {
	ctx := context.Background()
	st := &memStore{products: []model.Product{
		{ID: "1", Title: "a", Price: "1"},
		{ID: "3", Title: "b", Price: "2"},
	}}
	uc := usecase.NewProductUsecase(st)

	created, err := uc.CreateProduct(ctx, usecase.CreateProductInput{Title: "c", Price: "3"})
	require.NoError(t, err)
	assert.Equal(t, "4", created.ID)
}

func TestProductUsecase_Create_MissingTitle(t *testing.T) {
	uc := usecase.NewProductUsecase(new(ProductStoreMock))

	_, err := uc.CreateProduct(context.Background(), usecase.CreateProductInput{Title: " ", Price: "10"})
	assertHTTPError(t, err, http.StatusBadRequest, usecase.CodeValidation)
}

func TestProductUsecase_Create_MissingPrice(t *testing.T) {
	uc := usecase.NewProductUsecase(new(ProductStoreMock))

	_, err := uc.CreateProduct(context.Background(), usecase.CreateProductInput{Title: "Lamp"})
	assertHTTPError(t, err, http.StatusBadRequest, usecase.CodeValidation)
}

func TestProductUsecase_Create_PriceMustParse(t *testing.T) {
	uc := usecase.NewProductUsecase(new(ProductStoreMock))

	_, err := uc.CreateProduct(context.Background(), usecase.CreateProductInput{Title: "Lamp", Price: "ten"})
	assertHTTPError(t, err, http.StatusBadRequest, usecase.CodeValidation)
}

// 保存失敗を成功として返さないこと
func TestProductUsecase_Create_SaveFailureIsStorageError(t *testing.T) {
	st := new(ProductStoreMock)
	uc := usecase.NewProductUsecase(st)

	st.On("Load", mock.Anything).Return([]model.Product{}, nil)
	st.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	_, err := uc.CreateProduct(context.Background(), usecase.CreateProductInput{Title: "Lamp", Price: "10"})
	assertHTTPError(t, err, http.StatusInternalServerError, usecase.CodeStorage)

	st.AssertExpectations(t)
}

func TestProductUsecase_Create_LoadFailureIsStorageError(t *testing.T) {
	st := new(ProductStoreMock)
	uc := usecase.NewProductUsecase(st)

	st.On("Load", mock.Anything).Return(nil, errors.New("io error"))

	_, err := uc.CreateProduct(context.Background(), usecase.CreateProductInput{Title: "Lamp", Price: "10"})
	assertHTTPError(t, err, http.StatusInternalServerError, usecase.CodeStorage)
}

// =====================
// Get / List
// =====================

func TestProductUsecase_Get_NotFound(t *testing.T) {
	st := &memStore{products: []model.Product{{ID: "1", Title: "a", Price: "1"}}}
	uc := usecase.NewProductUsecase(st)

	_, err := uc.GetProduct(context.Background(), "99")
	assertHTTPError(t, err, http.StatusNotFound, usecase.CodeNotFound)
}

// idは文字列比較。"01"と"1"は別物
func TestProductUsecase_Get_NoNumericCoercion(t *testing.T) {
	st := &memStore{products: []model.Product{{ID: "1", Title: "a", Price: "1"}}}
	uc := usecase.NewProductUsecase(st)

	_, err := uc.GetProduct(context.Background(), "01")
	assertHTTPError(t, err, http.StatusNotFound, usecase.CodeNotFound)

	p, err := uc.GetProduct(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "1", p.ID)
}

func TestProductUsecase_List_ReturnsStoreAsIs(t *testing.T) {
	items := []model.Product{{ID: "1"}, {ID: "2"}}
	st := &memStore{products: items}
	uc := usecase.NewProductUsecase(st)

	out, err := uc.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, items, out)
}

func TestProductUsecase_List_StoreFailure(t *testing.T) {
	st := new(ProductStoreMock)
	st.On("Load", mock.Anything).Return(nil, errors.New("io error"))
	uc := usecase.NewProductUsecase(st)

	_, err := uc.ListProducts(context.Background())
	assertHTTPError(t, err, http.StatusInternalServerError, usecase.CodeStorage)
}

// =====================
// Update
// =====================

// priceだけの更新で他フィールド（id・imageを含む）が変わらないこと
func TestProductUsecase_Update_PartialMergeKeepsOtherFields(t *testing.T) {
	ctx := context.Background()
	st := &memStore{products: []model.Product{{
		ID: "1", Title: "Lamp", Price: "10", Category: "Home", Messages: "desc",
		Image: "http://host/uploads/123.png",
	}}}
	uc := usecase.NewProductUsecase(st)

	updated, err := uc.UpdateProduct(ctx, "1", usecase.UpdateProductInput{Price: strPtr("20")})
	require.NoError(t, err)

	assert.Equal(t, "1", updated.ID)
	assert.Equal(t, "Lamp", updated.Title)
	assert.Equal(t, "20", updated.Price)
	assert.Equal(t, "Home", updated.Category)
	assert.Equal(t, "desc", updated.Messages)
	assert.Equal(t, "http://host/uploads/123.png", updated.Image)
}

func TestProductUsecase_Update_NotFound(t *testing.T) {
	st := &memStore{}
	uc := usecase.NewProductUsecase(st)

	_, err := uc.UpdateProduct(context.Background(), "99", usecase.UpdateProductInput{Title: strPtr("X")})
	assertHTTPError(t, err, http.StatusNotFound, usecase.CodeNotFound)
}

func TestProductUsecase_Update_NewImageReplaces(t *testing.T) {
	st := &memStore{products: []model.Product{{ID: "1", Title: "a", Price: "1", Image: "old"}}}
	uc := usecase.NewProductUsecase(st)

	updated, err := uc.UpdateProduct(context.Background(), "1", usecase.UpdateProductInput{
		ImageURL: "http://host/uploads/new.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://host/uploads/new.png", updated.Image)
}

// existingImageはそのままの値で使う
func TestProductUsecase_Update_ExistingImagePassThrough(t *testing.T) {
	st := &memStore{products: []model.Product{{ID: "1", Title: "a", Price: "1", Image: "old"}}}
	uc := usecase.NewProductUsecase(st)

	updated, err := uc.UpdateProduct(context.Background(), "1", usecase.UpdateProductInput{
		ExistingImage: "http://host/uploads/keep.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://host/uploads/keep.png", updated.Image)
}

func TestProductUsecase_Update_InvalidPrice(t *testing.T) {
	st := &memStore{products: []model.Product{{ID: "1", Title: "a", Price: "1"}}}
	uc := usecase.NewProductUsecase(st)

	_, err := uc.UpdateProduct(context.Background(), "1", usecase.UpdateProductInput{Price: strPtr("abc")})
	assertHTTPError(t, err, http.StatusBadRequest, usecase.CodeValidation)
}

func TestProductUsecase_Update_SaveFailure(t *testing.T) {
	st := new(ProductStoreMock)
	uc := usecase.NewProductUsecase(st)

	st.On("Load", mock.Anything).Return([]model.Product{{ID: "1", Title: "a", Price: "1"}}, nil)
	st.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	_, err := uc.UpdateProduct(context.Background(), "1", usecase.UpdateProductInput{Title: strPtr("b")})
	assertHTTPError(t, err, http.StatusInternalServerError, usecase.CodeStorage)
}

// =====================
// Delete
// =====================

// 削除した1件が返り、以後の取得はnot found
func TestProductUsecase_Delete_ReturnsRemovedThenNotFound(t *testing.T) {
	ctx := context.Background()
	st := &memStore{products: []model.Product{
		{ID: "1", Title: "a", Price: "1"},
		{ID: "2", Title: "b", Price: "2"},
	}}
	uc := usecase.NewProductUsecase(st)

	removed, err := uc.DeleteProduct(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "1", removed.ID)
	assert.Equal(t, "a", removed.Title)

	_, err = uc.GetProduct(ctx, "1")
	assertHTTPError(t, err, http.StatusNotFound, usecase.CodeNotFound)

	remaining, err := uc.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "2", remaining[0].ID)
}

func TestProductUsecase_Delete_NotFound(t *testing.T) {
	uc := usecase.NewProductUsecase(&memStore{})

	_, err := uc.DeleteProduct(context.Background(), "99")
	assertHTTPError(t, err, http.StatusNotFound, usecase.CodeNotFound)
}

// =====================
// 並行作成（lost update防止）
// =====================

// 2つのcreateが重なっても両方のレコードが残ること
func TestProductUsecase_ConcurrentCreates_NoLostUpdate(t *testing.T) {
	ctx := context.Background()
	st := &memStore{}
	uc := usecase.NewProductUsecase(st)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.CreateProduct(ctx, usecase.CreateProductInput{Title: "p", Price: "1"})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	stored, err := st.Load(ctx)
	require.NoError(t, err)
	require.Len(t, stored, n)

	seen := map[string]bool{}
	for _, p := range stored {
		assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
	}
}
