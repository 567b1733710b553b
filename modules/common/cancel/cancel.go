package cancel

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Token - 활성화(activation) 1회의 생존 토큰
// Close 이후 도착한 결과는 상태에 반영하면 안 된다.
type Token struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
}

// NewToken - parent에 묶인 새 토큰 생성
func NewToken(parent context.Context) *Token {
	ctx, cancel := context.WithCancel(parent)
	return &Token{
		id:     uuid.NewString(),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (t *Token) ID() string { return t.id }

// Context - 토큰 수명과 같은 context (외부 호출에 전달)
func (t *Token) Context() context.Context { return t.ctx }

// Alive - 아직 유효한 활성화인지
func (t *Token) Alive() bool {
	return t.ctx.Err() == nil
}

// Close - 토큰 무효화 (여러 번 호출해도 안전)
func (t *Token) Close() {
	t.cancel()
}

// CheckBeforeStage - 단계 시작 전 취소 체크. 취소됐으면 true
func CheckBeforeStage(ctx context.Context, stage string) bool {
	if ctx.Err() == nil {
		return false
	}
	zap.S().Infof("🛑 Activation closed, skipping stage %s", stage)
	return true
}

// CheckBeforeApply - 결과 반영 전 취소 체크. 취소됐으면 true (결과 폐기)
func CheckBeforeApply(t *Token) bool {
	if t.Alive() {
		return false
	}
	zap.S().Infof("🗑️  Activation %s closed, discarding late result", t.id)
	return true
}
