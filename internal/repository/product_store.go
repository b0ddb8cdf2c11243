package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// 商品コレクションの永続化（全件読み・全件書き）だけを約束。
// Saveは保存済み状態を丸ごと置き換える。部分更新のプリミティブは持たない。
type ProductStore interface {
	Load(ctx context.Context) ([]model.Product, error)
	Save(ctx context.Context, products []model.Product) error
}
