package fortune

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fortune-canvas-server/modules/common/cancel"
	"fortune-canvas-server/modules/common/config"
	"fortune-canvas-server/modules/common/fallback"
	"fortune-canvas-server/modules/common/metrics"
	"fortune-canvas-server/modules/common/utils"
)

// Generator - 외부 생성 서비스
type Generator interface {
	// GenerateText - 응답 본문 텍스트 반환
	GenerateText(ctx context.Context, req GenerationRequest) (string, error)
	// GenerateImage - 인라인 이미지 반환. 이미지가 없으면 (nil, nil)
	GenerateImage(ctx context.Context, req GenerationRequest) (*InlineImage, error)
}

// Mode - 생성 순서
type Mode string

const (
	// ModeSequential - 텍스트 → 분위기 → 이미지 (기본)
	ModeSequential Mode = config.GenerationModeSequential
	// ModeParallel - 텍스트와 이미지를 동시에. 분위기 배경을 쓰지 않는다.
	ModeParallel Mode = config.GenerationModeParallel
)

// Service - 운세 생성 오케스트레이터
type Service struct {
	generator  Generator
	builder    *RequestBuilder
	classifier *MoodClassifier
	resolver   *fallback.Resolver
	mode       Mode
}

// NewService - 구성요소 주입. mode가 비어 있으면 순차 모드
func NewService(gen Generator, builder *RequestBuilder, classifier *MoodClassifier, resolver *fallback.Resolver, mode Mode) *Service {
	if mode == "" {
		mode = ModeSequential
	}
	return &Service{
		generator:  gen,
		builder:    builder,
		classifier: classifier,
		resolver:   resolver,
		mode:       mode,
	}
}

func (s *Service) Mode() Mode { return s.mode }

// Generate - 프로필 하나로 결과물 생성
// 텍스트 단계 실패는 *GenerationError, 이미지 단계 실패는 대체 이미지로 흡수한다.
func (s *Service) Generate(ctx context.Context, p Profile) (*Artifact, error) {
	start := time.Now()

	var (
		art *Artifact
		err error
	)
	if s.mode == ModeParallel {
		art, err = s.generateParallel(ctx, p)
	} else {
		art, err = s.generateSequential(ctx, p)
	}

	metrics.GenerationDuration.WithLabelValues(string(s.mode)).Observe(time.Since(start).Seconds())
	metrics.GenerationTotal.WithLabelValues(string(s.mode), generationStatus(err)).Inc()
	return art, err
}

func (s *Service) generateSequential(ctx context.Context, p Profile) (*Artifact, error) {
	zap.S().Infof("🔮 [Fortune] Generating for %s (sequential)", p.Name)

	// 1-2. 텍스트
	result, err := s.fortuneText(ctx, p)
	if err != nil {
		return nil, err
	}

	// 3. 분위기
	mood := s.classifier.Classify(result)
	metrics.MoodTotal.WithLabelValues(string(mood.Category)).Inc()
	zap.S().Infof("🎭 [Fortune] Mood: %s (score %d)", mood.Category, mood.Score)

	// 4-6. 이미지
	if cancel.CheckBeforeStage(ctx, "image") {
		return nil, ErrActivationClosed
	}
	portrait := s.portrait(ctx, p, mood.Category)

	return &Artifact{Fortune: *result, Mood: mood, Portrait: portrait}, nil
}

func (s *Service) generateParallel(ctx context.Context, p Profile) (*Artifact, error) {
	zap.S().Infof("🔮 [Fortune] Generating for %s (parallel)", p.Name)

	var (
		result   *FortuneResult
		portrait Portrait
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		r, err := s.fortuneText(egCtx, p)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	eg.Go(func() error {
		// 이미지 실패는 대체 이미지로 흡수하므로 오류를 반환하지 않는다
		portrait = s.portrait(egCtx, p, MoodNeutral)
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ErrActivationClosed
	}

	return &Artifact{Fortune: *result, Mood: Mood{Category: MoodNeutral}, Portrait: portrait}, nil
}

// fortuneText - 텍스트 요청 → 호출 → 파싱/검증
func (s *Service) fortuneText(ctx context.Context, p Profile) (*FortuneResult, error) {
	req, err := s.builder.BuildTextRequest(p)
	if err != nil {
		return nil, &GenerationError{Stage: StageBuild, Err: err}
	}
	if cancel.CheckBeforeStage(ctx, "text") {
		return nil, ErrActivationClosed
	}

	body, err := s.generator.GenerateText(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrActivationClosed
		}
		zap.S().Errorf("❌ [Fortune] Text request failed: %v", err)
		return nil, &GenerationError{Stage: StageRequest, Err: err}
	}

	result, err := ParseFortune(body)
	if err != nil {
		zap.S().Errorf("❌ [Fortune] Invalid fortune response: %v", err)
		return nil, err
	}
	return result, nil
}

// portrait - 이미지 요청. 실패하거나 인라인 데이터가 없으면 대체 이미지
func (s *Service) portrait(ctx context.Context, p Profile, mood MoodCategory) Portrait {
	img, err := s.requestImage(ctx, p, mood)
	if err != nil {
		var imgErr *ImageError
		reason := "error"
		if errors.As(err, &imgErr) {
			reason = imgErr.Reason
		}
		metrics.ImageFallbackTotal.WithLabelValues(reason).Inc()
		zap.S().Warnf("⚠️  [Fortune] %v, using placeholder", err)
		return Portrait{URL: s.resolver.Resolve(p.Name), Placeholder: true}
	}

	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return Portrait{
		URL:      utils.DataURL(mime, img.Data),
		Data:     img.Data,
		MIMEType: mime,
	}
}

func (s *Service) requestImage(ctx context.Context, p Profile, mood MoodCategory) (*InlineImage, error) {
	req, err := s.builder.BuildImageRequest(p, mood)
	if err != nil {
		return nil, &ImageError{Reason: "build", Err: err}
	}
	img, err := s.generator.GenerateImage(ctx, req)
	if err != nil {
		return nil, &ImageError{Reason: "error", Err: err}
	}
	if img == nil || len(img.Data) == 0 {
		return nil, &ImageError{Reason: "no_inline_data"}
	}
	return img, nil
}

func generationStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrActivationClosed):
		return "closed"
	default:
		return "generation_error"
	}
}
