package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"app/internal/domain/model"
)

// FileStore はJSONファイル1枚に全件を保存する。
// 既存のproducts.jsonと互換（2スペースインデントの配列）。
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load はファイル全体をパースして返す。
// ファイル欠如・パース失敗は致命ではなく、空のコレクション扱いにする。
func (s *FileStore) Load(_ context.Context) ([]model.Product, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		slog.Warn("products file not found, starting empty", "path", s.path)
		return []model.Product{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", s.path, err)
	}

	var products []model.Product
	if err := json.Unmarshal(data, &products); err != nil {
		slog.Warn("products file is not valid JSON, starting empty", "path", s.path, "err", err)
		return []model.Product{}, nil
	}
	return products, nil
}

// Save は全件を整形JSONで書き出す。
// 同一ディレクトリの一時ファイルに書いてからrenameし、途中状態を見せない。
func (s *FileStore) Save(_ context.Context, products []model.Product) error {
	if products == nil {
		products = []model.Product{}
	}

	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal products: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create data dir %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".products-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %q: %w", s.path, err)
	}
	return nil
}
