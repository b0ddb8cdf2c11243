package usecase

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UploadPathPrefix は配信用URLの固定プレフィックス。
const UploadPathPrefix = "/uploads"

// アップロード済みファイル1件（GET /files用）
type Asset struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// UploadUsecase は画像1枚をアセットディレクトリへ保存して配信URLを返す。
// ファイル名はタイムスタンプだけだと同一ミリ秒の並行アップロードで衝突するため、
// uuid由来のサフィックスを足して衝突耐性を持たせる。
type UploadUsecase struct {
	dir      string
	maxBytes int64
	baseURL  string // 空ならリクエスト由来のscheme+hostを使う
}

func NewUploadUsecase(dir string, maxBytes int64, baseURL string) (*UploadUsecase, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir %q: %w", dir, err)
	}
	return &UploadUsecase{
		dir:      dir,
		maxBytes: maxBytes,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// SaveImage はmultipartの画像1枚を保存し、取得用URLを返す。
// サイズ上限はバイトを書き出す前にヘッダで判定する。
func (u *UploadUsecase) SaveImage(fh *multipart.FileHeader, requestBase string) (string, error) {
	if fh == nil {
		return "", NewHTTPError(http.StatusBadRequest, CodeValidation, "image file is required")
	}
	if fh.Size > u.maxBytes {
		return "", NewHTTPError(http.StatusRequestEntityTooLarge, CodePayloadTooLarge,
			fmt.Sprintf("file exceeds %d bytes", u.maxBytes))
	}

	src, err := fh.Open()
	if err != nil {
		return "", NewHTTPError(http.StatusInternalServerError, CodeStorage, "failed to read upload")
	}
	defer src.Close()

	name := u.newFilename(fh.Filename)
	dest := filepath.Join(u.dir, name)

	// O_EXCL: 万一同名が生成されても上書きはしない
	dst, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", NewHTTPError(http.StatusInternalServerError, CodeStorage, "failed to store upload")
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dest)
		return "", NewHTTPError(http.StatusInternalServerError, CodeStorage, "failed to store upload")
	}
	if err := dst.Close(); err != nil {
		os.Remove(dest)
		return "", NewHTTPError(http.StatusInternalServerError, CodeStorage, "failed to store upload")
	}

	return u.base(requestBase) + UploadPathPrefix + "/" + name, nil
}

// ListAssets はアセットディレクトリの一覧を{name, url}で返す。
func (u *UploadUsecase) ListAssets(requestBase string) ([]Asset, error) {
	entries, err := os.ReadDir(u.dir)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, CodeStorage, "failed to read directory")
	}

	base := u.base(requestBase)
	assets := make([]Asset, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		assets = append(assets, Asset{
			Name: e.Name(),
			URL:  base + UploadPathPrefix + "/" + e.Name(),
		})
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Name < assets[j].Name })
	return assets, nil
}

func (u *UploadUsecase) base(requestBase string) string {
	if u.baseURL != "" {
		return u.baseURL
	}
	return strings.TrimRight(requestBase, "/")
}

// <unixミリ秒>-<uuid先頭8桁><元の拡張子>
func (u *UploadUsecase) newFilename(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), suffix, ext)
}
