package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"fortune-canvas-server/modules/common/config"
)

// Client - Supabase Storage HTTP 클라이언트
type Client struct {
	baseURL    string
	serviceKey string
	publicBase string
	httpClient *http.Client
}

// NewClient - Storage 클라이언트 생성 (Supabase 미설정 시 nil)
func NewClient(cfg *config.Config) *Client {
	if !cfg.SupabaseEnabled() {
		return nil
	}

	publicBase := cfg.SupabaseStorageBaseURL
	if publicBase == "" {
		publicBase = strings.TrimRight(cfg.SupabaseURL, "/") + "/storage/v1/object/public/"
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.SupabaseURL, "/"),
		serviceKey: cfg.SupabaseServiceKey,
		publicBase: publicBase,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Upload - bucket/path에 업로드하고 공개 URL 반환
func (c *Client) Upload(ctx context.Context, bucket, path, contentType string, data []byte) (string, error) {
	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, bucket, path)

	zap.S().Infof("📤 Uploading to storage: %s/%s (%d bytes)", bucket, path, len(data))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(body))
	}

	publicURL := c.PublicURL(bucket, path)
	zap.S().Infof("✅ Uploaded: %s", publicURL)
	return publicURL, nil
}

// PublicURL - 공개 버킷 객체 URL
func (c *Client) PublicURL(bucket, path string) string {
	return strings.TrimRight(c.publicBase, "/") + "/" + bucket + "/" + path
}
