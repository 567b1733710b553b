package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/auth"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"fortune-canvas-server/modules/common/config"
)

// Client - genai 클라이언트 래퍼
// 호출 간격만 조절하며 실패한 호출을 다시 시도하지 않는다.
type Client struct {
	genai   *genai.Client
	limiter *rate.Limiter
	timeout time.Duration
}

// Options - 클라이언트 생성 옵션
type Options struct {
	Backend     string
	APIKey      string
	Project     string
	Location    string
	Credentials *auth.Credentials
	CallEvery   time.Duration
	Timeout     time.Duration
}

// NewClient - Gemini API 또는 Vertex AI 백엔드 클라이언트 생성
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	cc := &genai.ClientConfig{}
	switch opts.Backend {
	case "", config.BackendGemini:
		if opts.APIKey == "" {
			return nil, fmt.Errorf("gemini api key is empty")
		}
		cc.APIKey = opts.APIKey
		cc.Backend = genai.BackendGeminiAPI
	case config.BackendVertex:
		if opts.Project == "" {
			return nil, fmt.Errorf("vertex project is empty")
		}
		cc.Project = opts.Project
		cc.Location = opts.Location
		cc.Credentials = opts.Credentials
		cc.Backend = genai.BackendVertexAI
	default:
		return nil, fmt.Errorf("unknown backend: %q", opts.Backend)
	}

	gc, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	limit := rate.Inf
	if opts.CallEvery > 0 {
		limit = rate.Every(opts.CallEvery)
	}

	zap.S().Infof("✅ [Gemini] Client initialized (backend: %v)", cc.Backend)
	return &Client{
		genai:   gc,
		limiter: rate.NewLimiter(limit, 2),
		timeout: opts.Timeout,
	}, nil
}

// GenerateJSON - JSON 모드 텍스트 생성. 응답 본문 텍스트를 그대로 반환
func (c *Client) GenerateJSON(ctx context.Context, model, prompt, system string, schema *genai.Schema) (string, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
		Temperature:      float32Ptr(0.9),
	}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{genai.NewPartFromText(system)}}
	}

	result, err := c.call(ctx, model, prompt, cfg)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("empty text response from %s", model)
	}

	zap.S().Infof("✅ [Gemini] Text generated: %d chars", len(text))
	return text, nil
}

// GenerateImage - 이미지 생성. 인라인 이미지가 없으면 (nil, nil)
func (c *Client) GenerateImage(ctx context.Context, model, prompt, aspectRatio string) (*genai.Blob, error) {
	cfg := &genai.GenerateContentConfig{
		ImageConfig: &genai.ImageConfig{
			AspectRatio: aspectRatio,
		},
		Temperature: float32Ptr(0.7),
	}

	result, err := c.call(ctx, model, prompt, cfg)
	if err != nil {
		return nil, err
	}

	blob := ExtractInlineImage(result)
	if blob == nil {
		zap.S().Warn("⚠️  [Gemini] No inline image in response")
		return nil, nil
	}

	zap.S().Infof("✅ [Gemini] Image generated: %d bytes (%s)", len(blob.Data), blob.MIMEType)
	return blob, nil
}

func (c *Client) call(ctx context.Context, model, prompt string, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	zap.S().Infof("📤 [Gemini] Calling %s (prompt: %s)", model, truncateString(prompt, 50))

	content := genai.NewContentFromText(prompt, genai.RoleUser)

	result, err := c.genai.Models.GenerateContent(ctx, model, []*genai.Content{content}, cfg)
	if err != nil {
		zap.S().Errorf("❌ [Gemini] %s API error: %v", model, err)
		return nil, fmt.Errorf("gemini %s: %w", model, err)
	}
	return result, nil
}

// ExtractInlineImage - 응답 후보 중 첫 번째 인라인 이미지
func ExtractInlineImage(result *genai.GenerateContentResponse) *genai.Blob {
	if result == nil {
		return nil
	}
	for _, candidate := range result.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData
			}
		}
	}
	return nil
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}

func float32Ptr(f float32) *float32 {
	return &f
}
