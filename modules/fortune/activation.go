package fortune

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"fortune-canvas-server/modules/common/cancel"
	"fortune-canvas-server/modules/common/metrics"
)

// Status - 결과 단계 상태
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
	StatusClosed  Status = "closed"
)

// Snapshot - 활성화 상태 조회용 사본
type Snapshot struct {
	ID       string
	Profile  Profile
	Status   Status
	Artifact *Artifact
	Err      error
}

// Activation - 결과 단계 진입 1회에 해당하는 생성 세션
// 모든 상태 변경은 잠금 안에서 토큰 생존 여부를 확인한 뒤에만 일어난다.
type Activation struct {
	token     *cancel.Token
	profile   Profile
	startOnce sync.Once

	mu        sync.Mutex
	status    Status
	artifact  *Artifact
	err       error
	exporting bool
	done      chan struct{}
}

// Activate - 새 활성화를 만들고 백그라운드에서 생성 시작
// notify는 상태가 확정될 때 잠금 안에서 한 번 호출되므로 블로킹하면 안 된다.
func (s *Service) Activate(parent context.Context, p Profile, notify func(Snapshot)) *Activation {
	a := s.NewActivation(parent, p)
	s.Start(a, notify)
	return a
}

// NewActivation - 생성을 시작하지 않은 활성화 (ID를 먼저 알려야 할 때)
func (s *Service) NewActivation(parent context.Context, p Profile) *Activation {
	return &Activation{
		token:   cancel.NewToken(parent),
		profile: p,
		status:  StatusLoading,
		done:    make(chan struct{}),
	}
}

// Start - 백그라운드 생성 시작. 두 번째 호출부터는 무시
func (s *Service) Start(a *Activation, notify func(Snapshot)) {
	a.startOnce.Do(func() {
		zap.S().Infof("🚀 [Fortune] Activation %s started for %s", a.token.ID(), a.profile.Name)

		go func() {
			defer close(a.done)
			art, err := s.Generate(a.token.Context(), a.profile)
			a.finish(art, err, notify)
		}()
	})
}

func (a *Activation) finish(art *Artifact, err error, notify func(Snapshot)) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if cancel.CheckBeforeApply(a.token) || errors.Is(err, ErrActivationClosed) {
		metrics.DiscardedResultsTotal.Inc()
		return
	}

	if err != nil {
		a.status = StatusFailed
		a.err = err
	} else {
		a.status = StatusReady
		a.artifact = art
	}

	if notify != nil {
		notify(a.snapshotLocked())
	}
}

// ID - 토큰 ID
func (a *Activation) ID() string { return a.token.ID() }

// Context - 활성화 수명과 같은 context. Close되면 끝난다
func (a *Activation) Context() context.Context { return a.token.Context() }

// Snapshot - 현재 상태
func (a *Activation) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *Activation) snapshotLocked() Snapshot {
	return Snapshot{
		ID:       a.token.ID(),
		Profile:  a.profile,
		Status:   a.status,
		Artifact: a.artifact,
		Err:      a.err,
	}
}

// Close - 활성화 종료. 이후 도착하는 결과는 버린다.
func (a *Activation) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.status == StatusClosed {
		return
	}
	a.token.Close()
	a.status = StatusClosed
	zap.S().Infof("🔒 [Fortune] Activation %s closed", a.token.ID())
}

// Done - 생성 고루틴 종료 신호
func (a *Activation) Done() <-chan struct{} { return a.done }

// BeginExport - 결과가 준비됐고 진행 중인 내보내기가 없을 때만 true
func (a *Activation) BeginExport() (Snapshot, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.status != StatusReady || a.exporting || !a.token.Alive() {
		return Snapshot{}, false
	}
	a.exporting = true
	return a.snapshotLocked(), true
}

// EndExport - 내보내기 종료 표시
func (a *Activation) EndExport() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.exporting = false
}
