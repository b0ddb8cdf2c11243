package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

type TestClient struct {
	BaseURL string
	HTTP    *http.Client
}

// BASE_URL未設定ならスキップ（起動済みサーバーに対するテスト）
func NewTestClient(t *testing.T) *TestClient {
	t.Helper()

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		t.Skip("BASE_URL not set; e2e tests need a running server")
	}

	return &TestClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type Product struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Price    string `json:"price"`
	Category string `json:"category"`
	Messages string `json:"messages"`
	Image    string `json:"image"`
}

type Asset struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (c *TestClient) do(ctx context.Context, t *testing.T, method, path string, body io.Reader, contentType string) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		t.Fatalf("http.NewRequest failed: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body failed: %v", err)
	}
	return resp, b
}

// 商品フォーム（任意で画像つき）のmultipartボディ
func productForm(t *testing.T, fields map[string]string, imageName string, imageBytes []byte) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField failed: %v", err)
		}
	}
	if imageName != "" {
		fw, err := mw.CreateFormFile("image", imageName)
		if err != nil {
			t.Fatalf("CreateFormFile failed: %v", err)
		}
		if _, err := fw.Write(imageBytes); err != nil {
			t.Fatalf("write image failed: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer failed: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func requireStatus(t *testing.T, resp *http.Response, want int, body []byte) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("status want=%d got=%d body=%s", want, resp.StatusCode, string(body))
	}
}

func mustDecodeProduct(t *testing.T, body []byte) Product {
	t.Helper()
	var v Product
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("json.Unmarshal(Product) failed: %v body=%s", err, string(body))
	}
	return v
}

func mustDecodeProducts(t *testing.T, body []byte) []Product {
	t.Helper()
	var v []Product
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("json.Unmarshal([]Product) failed: %v body=%s", err, string(body))
	}
	return v
}
