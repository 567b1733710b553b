package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"fortune-canvas-server/modules/export"
	"fortune-canvas-server/modules/fortune"
)

var errNoClient = errors.New("no client attached")

// Deps - 세션이 공유하는 서비스
type Deps struct {
	Service           *fortune.Service
	Catalog           *fortune.Catalog
	Pipeline          *export.Pipeline
	Store             *export.BlobStore
	Linker            *ShareLinker
	CapabilityTimeout time.Duration
}

// Session - 세션 ID 하나에 대응하는 운세 마법사
// 재접속하면 같은 마법사와 결과를 이어서 쓴다.
type Session struct {
	id     string
	deps   *Deps
	wizard *fortune.Wizard
	bridge *Bridge

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.RWMutex
	client       Sender
	activation   *fortune.Activation
	createdAt    time.Time
	lastActivity time.Time
}

func NewSession(id string, deps *Deps) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	now := time.Now()
	s := &Session{
		id:           id,
		deps:         deps,
		wizard:       fortune.NewWizard(deps.Catalog),
		ctx:          ctx,
		cancel:       cancel,
		createdAt:    now,
		lastActivity: now,
	}
	s.bridge = NewBridge(id, s.send, deps.CapabilityTimeout, deps.Store, deps.Linker)
	return s
}

func (s *Session) ID() string { return s.id }

// Attach - 송신 채널 연결. 이전 연결을 돌려준다
func (s *Session) Attach(c Sender) Sender {
	s.mu.Lock()
	prev := s.client
	s.client = c
	s.lastActivity = time.Now()
	s.mu.Unlock()

	s.resume()
	return prev
}

// Detach - c가 현재 연결일 때만 해제
func (s *Session) Detach(c Sender) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == c {
		s.client = nil
		s.lastActivity = time.Now()
	}
}

// Connected - 연결된 클라이언트가 있는지
func (s *Session) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client != nil
}

// Close - 세션 종료 (진행 중인 생성도 종료)
func (s *Session) Close() {
	s.cancel()
	if a := s.swapActivation(nil); a != nil {
		a.Close()
	}
}

func (s *Session) send(msg OutboundMessage) error {
	s.mu.RLock()
	c := s.client
	s.mu.RUnlock()
	if c == nil {
		return errNoClient
	}
	msg.SessionID = s.id
	return c.Send(msg)
}

func (s *Session) swapActivation(next *fortune.Activation) *fortune.Activation {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.activation
	s.activation = next
	return prev
}

func (s *Session) currentActivation() *fortune.Activation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activation
}

// resume - 재접속 시 현재 단계와 결과를 다시 보낸다
func (s *Session) resume() {
	s.sendStep()
	if a := s.currentActivation(); a != nil {
		snap := a.Snapshot()
		if snap.Status == fortune.StatusLoading {
			_ = s.send(OutboundMessage{Type: TypeLoading, ActivationID: snap.ID})
			return
		}
		s.sendSnapshot(snap)
	}
}

// Handle - 수신 메시지 처리
func (s *Session) Handle(msg InboundMessage) {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()

	switch msg.Type {
	case TypeStart:
		s.transition(s.wizard.Start())

	case TypeSubmitProfile:
		var payload fortune.ProfilePayload
		if msg.Profile != nil {
			payload = *msg.Profile
		}
		update, err := payload.ToUpdate()
		if err != nil {
			s.transition(err)
			return
		}
		s.transition(s.wizard.SubmitProfile(update))

	case TypeSubmitAppearance:
		var payload fortune.AppearancePayload
		if msg.Appearance != nil {
			payload = *msg.Appearance
		}
		s.submitAppearance(payload.ToUpdate())

	case TypeBack:
		s.transition(s.wizard.Back())

	case TypeRestart:
		s.restart()

	case TypeExport:
		s.startExport()

	case TypeCapabilities:
		if msg.Capabilities != nil {
			s.bridge.SetCapabilities(*msg.Capabilities)
		}

	case TypeCapabilityResult:
		s.bridge.Resolve(msg)

	default:
		zap.S().Warnf("⚠️ [Session %s] Unknown message type: %q", s.id, msg.Type)
		_ = s.send(OutboundMessage{Type: TypeError, ErrorCode: CodeInvalidMessage, ErrorMessage: "unknown message type"})
	}
}

// transition - 단계 이동 결과 전송
func (s *Session) transition(err error) {
	var ve *fortune.ValidationError
	switch {
	case err == nil:
		s.sendStep()
	case errors.As(err, &ve):
		_ = s.send(OutboundMessage{Type: TypeValidation, Field: ve.Field, Reason: ve.Reason})
	case errors.Is(err, fortune.ErrInvalidTransition):
		step, _ := s.wizard.Snapshot()
		_ = s.send(OutboundMessage{Type: TypeError, ErrorCode: CodeInvalidTransition, Step: step.String()})
	default:
		zap.S().Errorf("❌ [Session %s] Transition failed: %v", s.id, err)
		_ = s.send(OutboundMessage{Type: TypeError, ErrorCode: CodeInvalidMessage, ErrorMessage: err.Error()})
	}
}

func (s *Session) sendStep() {
	step, profile := s.wizard.Snapshot()
	view := profile.View()
	_ = s.send(OutboundMessage{Type: TypeStep, Step: step.String(), Profile: &view})
}

// submitAppearance - 결과 단계 진입 시 새 활성화를 만든다
func (s *Session) submitAppearance(update fortune.AppearanceUpdate) {
	profile, err := s.wizard.SubmitAppearance(update)
	if err != nil {
		s.transition(err)
		return
	}

	a := s.deps.Service.NewActivation(s.ctx, profile)
	if prev := s.swapActivation(a); prev != nil {
		prev.Close()
	}

	// loading이 result보다 먼저 나가도록 생성은 알린 뒤에 시작
	s.sendStep()
	_ = s.send(OutboundMessage{Type: TypeLoading, ActivationID: a.ID()})
	s.deps.Service.Start(a, s.sendSnapshot)
}

// sendSnapshot - 확정된 활성화 상태 전송 (활성화 잠금 안에서 호출될 수 있음)
func (s *Session) sendSnapshot(snap fortune.Snapshot) {
	switch snap.Status {
	case fortune.StatusReady:
		art := snap.Artifact
		_ = s.send(OutboundMessage{
			Type:         TypeResult,
			ActivationID: snap.ID,
			Fortune:      &art.Fortune,
			Mood:         &art.Mood,
			Portrait:     &art.Portrait,
		})
	case fortune.StatusFailed:
		_ = s.send(OutboundMessage{
			Type:         TypeError,
			ActivationID: snap.ID,
			ErrorCode:    CodeGenerationFailed,
			ErrorMessage: fortune.UserMessage,
		})
	}
}

func (s *Session) restart() {
	if a := s.swapActivation(nil); a != nil {
		a.Close()
	}
	s.wizard.Restart()
	s.sendStep()
}

// startExport - 결과 화면 내보내기. 응답 대기 때문에 별도 고루틴에서 실행
func (s *Session) startExport() {
	a := s.currentActivation()
	if a == nil {
		_ = s.send(OutboundMessage{Type: TypeError, ErrorCode: CodeNotReady})
		return
	}
	snap, ok := a.BeginExport()
	if !ok {
		code := CodeNotReady
		if a.Snapshot().Status == fortune.StatusReady {
			code = CodeExportBusy
		}
		_ = s.send(OutboundMessage{Type: TypeError, ErrorCode: code})
		return
	}

	// 활성화가 닫히면(restart, 새 결과) 내보내기도 멈춘다
	go func() {
		defer a.EndExport()
		ctx := a.Context()
		v := export.View{Profile: snap.Profile, Artifact: *snap.Artifact}
		res := s.deps.Pipeline.Export(ctx, v, s.bridge.Capabilities())
		if ctx.Err() != nil {
			return
		}
		_ = s.send(OutboundMessage{Type: TypeExportResult, ActivationID: snap.ID, Outcome: string(res.Outcome)})
	}()
}

// Info - 세션 상태 요약
func (s *Session) Info() map[string]interface{} {
	step, profile := s.wizard.Snapshot()
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := map[string]interface{}{
		"sessionId":    s.id,
		"connected":    s.client != nil,
		"step":         step.String(),
		"name":         profile.Name,
		"createdAt":    s.createdAt,
		"lastActivity": s.lastActivity,
		"age":          time.Since(s.createdAt).String(),
		"inactive":     time.Since(s.lastActivity).String(),
	}
	if s.activation != nil {
		info["activationId"] = s.activation.ID()
	}
	return info
}
