package export

import (
	"context"
	"errors"
	"fmt"
	"image/color"

	"go.uber.org/zap"

	"fortune-canvas-server/modules/common/cancel"
	"fortune-canvas-server/modules/common/metrics"
)

// Outcome - 내보내기 최종 결과
type Outcome string

const (
	OutcomeSharedFile Outcome = "shared_file"
	OutcomeDownloaded Outcome = "downloaded"
	OutcomeSharedText Outcome = "shared_text"
	OutcomeCopied     Outcome = "copied"
	OutcomeCancelled  Outcome = "cancelled"
	OutcomeFailed     Outcome = "failed"
	// OutcomeAborted - 결과가 폐기되어 중간에 멈춤 (알림 없음)
	OutcomeAborted    Outcome = "aborted"
)

// Stage - 내보내기 체인 단계
type Stage string

const (
	StageRasterize Stage = "rasterize"
	StageEncode    Stage = "encode"
	StageShareFile Stage = "share_file"
	StageDownload  Stage = "download"
	StageShareText Stage = "share_text"
	StageClipboard Stage = "clipboard"
)

// StageError - 체인의 한 단계 실패. 다음 단계로 넘어가며 흡수된다
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Result - Export 호출 결과. 호출자에게 오류를 되돌리지 않는다
type Result struct {
	Outcome Outcome
	Blob    *Blob
	Errors  []*StageError
}

// DefaultBackground - 래스터화 배경 (불투명)
var DefaultBackground = color.RGBA{R: 0x1a, G: 0x14, B: 0x2e, A: 0xff}

// Pipeline - 파일 공유 → 다운로드 → 텍스트 공유/클립보드 → 알림 순서의 내보내기 체인
type Pipeline struct {
	rasterizer Rasterizer
	encoder    Encoder
	scale      int
	background color.Color
}

// NewPipeline - scale이 1 미만이면 2배로
func NewPipeline(rasterizer Rasterizer, encoder Encoder, scale int) *Pipeline {
	if scale < 1 {
		scale = 2
	}
	return &Pipeline{
		rasterizer: rasterizer,
		encoder:    encoder,
		scale:      scale,
		background: DefaultBackground,
	}
}

// Export - 체인을 순서대로 시도하고 처음 성공한 경로에서 멈춘다
// 모든 경로가 실패하면 Notifier로 정확히 한 번 알린다.
func (p *Pipeline) Export(ctx context.Context, v View, caps Capabilities) Result {
	res := p.run(ctx, v, caps)
	metrics.ExportTotal.WithLabelValues(string(res.Outcome)).Inc()
	zap.S().Infof("📤 [Export] %s finished: outcome=%s, failures=%d", v.Profile.Name, res.Outcome, len(res.Errors))
	return res
}

func (p *Pipeline) run(ctx context.Context, v View, caps Capabilities) Result {
	var res Result
	fail := func(stage Stage, err error) {
		zap.S().Warnf("⚠️ [Export] %s failed: %v", stage, err)
		res.Errors = append(res.Errors, &StageError{Stage: stage, Err: err})
	}
	// ctx가 끝났으면 남은 단계와 알림을 건너뛴다
	aborted := func(stage Stage) bool {
		if !cancel.CheckBeforeStage(ctx, string(stage)) {
			return false
		}
		res.Outcome = OutcomeAborted
		res.Errors = append(res.Errors, &StageError{Stage: stage, Err: ctx.Err()})
		return true
	}

	if aborted(StageRasterize) {
		return res
	}
	if blob, stage, err := p.capture(ctx, v); err != nil {
		fail(stage, err)
	} else {
		res.Blob = &blob
		fileName := FileName(v.Profile.Name, blob.Ext)

		// 1) 파일 첨부 공유
		if aborted(StageShareFile) {
			return res
		}
		if caps.Files == nil || !caps.Files.CanShareFile(ctx, blob) {
			fail(StageShareFile, ErrUnsupported)
		} else {
			err := guard(func() error {
				return caps.Files.ShareFile(ctx, FileShare{
					View:     v,
					Blob:     blob,
					FileName: fileName,
					Title:    Title(v.Profile.Name),
					Text:     Summary(v),
				})
			})
			switch {
			case err == nil:
				res.Outcome = OutcomeSharedFile
				return res
			case errors.Is(err, ErrCancelled):
				res.Outcome = OutcomeCancelled
				return res
			default:
				fail(StageShareFile, err)
			}
		}

		// 2) 파일 다운로드
		if aborted(StageDownload) {
			return res
		}
		if caps.Download == nil {
			fail(StageDownload, ErrUnsupported)
		} else if err := guard(func() error { return caps.Download.Download(ctx, blob, fileName) }); err != nil {
			fail(StageDownload, err)
		} else {
			res.Outcome = OutcomeDownloaded
			return res
		}
	}

	// 3) 텍스트 공유, 안 되면 클립보드
	if aborted(StageShareText) {
		return res
	}
	if caps.Text == nil || !caps.Text.CanShareText(ctx) {
		fail(StageShareText, ErrUnsupported)
	} else {
		err := guard(func() error { return caps.Text.ShareText(ctx, Title(v.Profile.Name), Summary(v)) })
		switch {
		case err == nil:
			res.Outcome = OutcomeSharedText
			return res
		case errors.Is(err, ErrCancelled):
			res.Outcome = OutcomeCancelled
			return res
		default:
			fail(StageShareText, err)
		}
	}

	if aborted(StageClipboard) {
		return res
	}
	if caps.Clipboard == nil {
		fail(StageClipboard, ErrUnsupported)
	} else if err := guard(func() error { return caps.Clipboard.WriteText(ctx, ClipboardText(v)) }); err != nil {
		fail(StageClipboard, err)
	} else {
		res.Outcome = OutcomeCopied
		return res
	}

	// 4) 전부 실패
	if cancel.CheckBeforeStage(ctx, "notify") {
		res.Outcome = OutcomeAborted
		return res
	}
	res.Outcome = OutcomeFailed
	if caps.Notifier != nil {
		_ = guard(func() error {
			caps.Notifier.Notify(ctx, FailureNotice)
			return nil
		})
	}
	return res
}

// capture - 래스터화 후 인코딩
func (p *Pipeline) capture(ctx context.Context, v View) (Blob, Stage, error) {
	if p.rasterizer == nil {
		return Blob{}, StageRasterize, ErrUnsupported
	}
	img, err := p.rasterizer.Rasterize(ctx, v, p.scale, p.background)
	if err != nil {
		return Blob{}, StageRasterize, err
	}
	if p.encoder == nil {
		return Blob{}, StageEncode, ErrUnsupported
	}
	blob, err := p.encoder.Encode(img)
	if err != nil {
		return Blob{}, StageEncode, err
	}
	if len(blob.Data) == 0 {
		return Blob{}, StageEncode, errors.New("encoder returned empty blob")
	}
	return blob, "", nil
}

// guard - 플랫폼 기능 호출의 panic을 오류로 바꾼다
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
