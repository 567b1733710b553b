package fallback

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	DefaultBaseURL = "https://picsum.photos/seed"
	DefaultSize    = 400
)

// Resolver - 초상화 생성 실패 시 사용할 대체 이미지 주소 생성기
// 같은 seed는 항상 같은 주소를 돌려준다.
type Resolver struct {
	BaseURL string
	Size    int
}

// NewResolver - 빈 값은 기본값으로 대체
func NewResolver(baseURL string, size int) *Resolver {
	baseURL = strings.TrimRight(SafeString(baseURL, DefaultBaseURL), "/")
	if size <= 0 {
		size = DefaultSize
	}
	return &Resolver{BaseURL: baseURL, Size: size}
}

// Resolve - seed(프로필 이름)로 대체 이미지 주소 생성
func (r *Resolver) Resolve(seed string) string {
	return fmt.Sprintf("%s/%s/%d/%d", r.BaseURL, url.PathEscape(seed), r.Size, r.Size)
}

// SafeString returns a trimmed string or the provided fallback.
func SafeString(value interface{}, fallback string) string {
	if s, ok := value.(string); ok {
		s = strings.TrimSpace(s)
		if s != "" {
			return s
		}
	}
	return fallback
}
