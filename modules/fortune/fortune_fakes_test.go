package fortune

import (
	"context"
	"sync"
	"time"

	"fortune-canvas-server/modules/common/fallback"
)

const validFortuneJSON = `{
  "wealth": "재물이 모이는 해입니다. 투자는 신중하십시오. 수입이 늘어납니다.",
  "love": "새로운 인연이 찾아옵니다. 사랑은 가까이에 있습니다. 연인과의 대화가 중요합니다.",
  "health": "건강을 돌보십시오. 수면이 부족합니다. 가벼운 운동을 권합니다.",
  "advice": "바람을 거스르는 연이 가장 높이 난다."
}`

// fakeGenerator - 호출 순서와 요청을 기록하는 가짜 생성기
type fakeGenerator struct {
	mu sync.Mutex

	text    string
	textErr error
	image   *InlineImage
	imgErr  error

	// 텍스트 호출을 block이 닫힐 때까지 붙잡아 둔다
	block     chan struct{}
	// ignoreCtx면 취소와 무관하게 block만 기다린다 (늦게 도착하는 응답)
	ignoreCtx bool

	calls    []RequestKind
	requests []GenerationRequest
}

func (f *fakeGenerator) GenerateText(ctx context.Context, req GenerationRequest) (string, error) {
	f.record(req)
	if f.block != nil && f.ignoreCtx {
		<-f.block
	} else if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.text, f.textErr
}

func (f *fakeGenerator) GenerateImage(ctx context.Context, req GenerationRequest) (*InlineImage, error) {
	f.record(req)
	return f.image, f.imgErr
}

func (f *fakeGenerator) record(req GenerationRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req.Kind)
	f.requests = append(f.requests, req)
}

func (f *fakeGenerator) Calls() []RequestKind {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RequestKind, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeGenerator) Requests() []GenerationRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]GenerationRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

func completeProfile() Profile {
	return Profile{
		Name:      "민준",
		Gender:    GenderMale,
		BirthDate: time.Date(1995, 3, 14, 0, 0, 0, 0, time.UTC),
		Appearance: Appearance{
			HairStyle:   "short_neat",
			EyeStyle:    "cat_eye",
			OutfitStyle: "modern_chic",
		},
	}
}

func newTestService(gen Generator, mode Mode) *Service {
	catalog := DefaultCatalog()
	return NewService(
		gen,
		NewRequestBuilder(catalog, DefaultBackgrounds()),
		NewMoodClassifier(DefaultKeywords()),
		fallback.NewResolver("", 0),
		mode,
	)
}

func strPtr(s string) *string { return &s }
