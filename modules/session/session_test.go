package session

import (
	"context"
	"testing"
	"time"

	"fortune-canvas-server/modules/common/fallback"
	"fortune-canvas-server/modules/export"
	"fortune-canvas-server/modules/fortune"
)

const fortuneJSON = `{"wealth":"재물이 모입니다.","love":"새로운 인연과 사랑이 찾아옵니다.","health":"휴식이 필요합니다.","advice":"천천히 가도 늦지 않다."}`

// stubGenerator - 고정 응답 생성기. gate가 있으면 닫힐 때까지 텍스트 응답을 붙잡는다
type stubGenerator struct {
	text string
	gate chan struct{}
}

func (g *stubGenerator) GenerateText(ctx context.Context, _ fortune.GenerationRequest) (string, error) {
	if g.gate != nil {
		<-g.gate
	}
	return g.text, nil
}

func (g *stubGenerator) GenerateImage(context.Context, fortune.GenerationRequest) (*fortune.InlineImage, error) {
	return nil, nil
}

// fakeSender - 보낸 메시지를 채널로 모은다
type fakeSender struct {
	ch chan OutboundMessage
}

func newFakeSender() *fakeSender {
	return &fakeSender{ch: make(chan OutboundMessage, 64)}
}

func (f *fakeSender) Send(msg OutboundMessage) error {
	f.ch <- msg
	return nil
}

func (f *fakeSender) expect(t *testing.T, msgType string) OutboundMessage {
	t.Helper()
	select {
	case msg := <-f.ch:
		if msg.Type != msgType {
			t.Fatalf("message type = %q (%+v), want %q", msg.Type, msg, msgType)
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %q", msgType)
		return OutboundMessage{}
	}
}

func (f *fakeSender) expectNone(t *testing.T, wait time.Duration) {
	t.Helper()
	select {
	case msg := <-f.ch:
		t.Fatalf("unexpected message %+v", msg)
	case <-time.After(wait):
	}
}

func newTestDeps(gen fortune.Generator) *Deps {
	catalog := fortune.DefaultCatalog()
	svc := fortune.NewService(
		gen,
		fortune.NewRequestBuilder(catalog, fortune.DefaultBackgrounds()),
		fortune.NewMoodClassifier(fortune.DefaultKeywords()),
		// 닿지 않는 주소라 래스터화 중 대체 이미지 다운로드가 바로 실패한다
		fallback.NewResolver("http://127.0.0.1:1/seed", 0),
		fortune.ModeSequential,
	)
	rasterizer, err := export.NewCardRasterizer(nil, nil)
	if err != nil {
		panic(err)
	}
	return &Deps{
		Service:           svc,
		Catalog:           catalog,
		Pipeline:          export.NewPipeline(rasterizer, export.PNGEncoder{}, 1),
		Store:             export.NewBlobStore(time.Minute),
		CapabilityTimeout: time.Second,
	}
}

func profileMsg(name string) InboundMessage {
	gender, date := "male", "1995-03-14"
	return InboundMessage{Type: TypeSubmitProfile, Profile: &fortune.ProfilePayload{Name: &name, Gender: &gender, BirthDate: &date}}
}

func appearanceMsg() InboundMessage {
	hair, eye, outfit := "short_neat", "cat_eye", "modern_chic"
	return InboundMessage{Type: TypeSubmitAppearance, Appearance: &fortune.AppearancePayload{HairStyle: &hair, EyeStyle: &eye, OutfitStyle: &outfit}}
}

// toResult - Landing에서 Result까지 진행하고 결과 메시지를 기다린다
func toResult(t *testing.T, s *Session, out *fakeSender) OutboundMessage {
	t.Helper()
	s.Handle(InboundMessage{Type: TypeStart})
	out.expect(t, TypeStep)
	s.Handle(profileMsg("민준"))
	out.expect(t, TypeStep)
	s.Handle(appearanceMsg())
	if step := out.expect(t, TypeStep); step.Step != "result" {
		t.Fatalf("step = %q, want result", step.Step)
	}
	loading := out.expect(t, TypeLoading)
	res := out.expect(t, TypeResult)
	if loading.ActivationID == "" || loading.ActivationID != res.ActivationID {
		t.Fatalf("loading activation = %q, result activation = %q", loading.ActivationID, res.ActivationID)
	}
	return res
}

func TestSessionWizardFlow(t *testing.T) {
	t.Run("결과까지 진행", func(t *testing.T) {
		out := newFakeSender()
		s := NewSession("s-1", newTestDeps(&stubGenerator{text: fortuneJSON}))
		s.Attach(out)
		if step := out.expect(t, TypeStep); step.Step != "landing" {
			t.Fatalf("initial step = %q", step.Step)
		}

		res := toResult(t, s, out)
		if res.Fortune == nil || res.Fortune.Advice != "천천히 가도 늦지 않다." {
			t.Errorf("fortune = %+v", res.Fortune)
		}
		if res.Portrait == nil || !res.Portrait.Placeholder {
			t.Errorf("portrait = %+v, want placeholder", res.Portrait)
		}
		if res.ActivationID == "" || res.SessionID != "s-1" {
			t.Errorf("ids = %q / %q", res.ActivationID, res.SessionID)
		}
	})

	t.Run("검증 실패는 단계 유지", func(t *testing.T) {
		out := newFakeSender()
		s := NewSession("s-2", newTestDeps(&stubGenerator{text: fortuneJSON}))
		s.Attach(out)
		out.expect(t, TypeStep)

		s.Handle(InboundMessage{Type: TypeStart})
		out.expect(t, TypeStep)
		s.Handle(profileMsg("   "))
		if v := out.expect(t, TypeValidation); v.Field != "name" {
			t.Errorf("field = %q, want name", v.Field)
		}
		if step, _ := s.wizard.Snapshot(); step != fortune.StepProfileInput {
			t.Errorf("step = %v, want profile_input", step)
		}
	})

	t.Run("잘못된 전이", func(t *testing.T) {
		out := newFakeSender()
		s := NewSession("s-3", newTestDeps(&stubGenerator{text: fortuneJSON}))
		s.Attach(out)
		out.expect(t, TypeStep)

		s.Handle(InboundMessage{Type: TypeBack})
		if e := out.expect(t, TypeError); e.ErrorCode != CodeInvalidTransition || e.Step != "landing" {
			t.Errorf("error = %+v", e)
		}
	})

	t.Run("생성 실패는 사용자 문구", func(t *testing.T) {
		out := newFakeSender()
		s := NewSession("s-4", newTestDeps(&stubGenerator{text: "not json"}))
		s.Attach(out)
		out.expect(t, TypeStep)

		s.Handle(InboundMessage{Type: TypeStart})
		out.expect(t, TypeStep)
		s.Handle(profileMsg("민준"))
		out.expect(t, TypeStep)
		s.Handle(appearanceMsg())
		out.expect(t, TypeStep)
		out.expect(t, TypeLoading)
		if e := out.expect(t, TypeError); e.ErrorCode != CodeGenerationFailed || e.ErrorMessage != fortune.UserMessage {
			t.Errorf("error = %+v", e)
		}
	})
}

func TestSessionRestartDiscardsLateResult(t *testing.T) {
	gen := &stubGenerator{text: fortuneJSON, gate: make(chan struct{})}
	out := newFakeSender()
	s := NewSession("s-5", newTestDeps(gen))
	s.Attach(out)
	out.expect(t, TypeStep)

	s.Handle(InboundMessage{Type: TypeStart})
	out.expect(t, TypeStep)
	s.Handle(profileMsg("민준"))
	out.expect(t, TypeStep)
	s.Handle(appearanceMsg())
	out.expect(t, TypeStep)
	out.expect(t, TypeLoading)

	a := s.currentActivation()
	s.Handle(InboundMessage{Type: TypeRestart})
	if step := out.expect(t, TypeStep); step.Step != "landing" || step.Profile.Name != "" {
		t.Fatalf("after restart = %+v", step)
	}

	close(gen.gate)
	<-a.Done()
	out.expectNone(t, 100*time.Millisecond)
}

func TestSessionResumeOnReconnect(t *testing.T) {
	first := newFakeSender()
	s := NewSession("s-6", newTestDeps(&stubGenerator{text: fortuneJSON}))
	s.Attach(first)
	first.expect(t, TypeStep)
	toResult(t, s, first)

	s.Detach(first)
	second := newFakeSender()
	if prev := s.Attach(second); prev != nil {
		t.Error("Attach() returned a detached sender")
	}
	if step := second.expect(t, TypeStep); step.Step != "result" {
		t.Errorf("resumed step = %q", step.Step)
	}
	second.expect(t, TypeResult)
}

func TestSessionExport(t *testing.T) {
	t.Run("다운로드 요청에 응답", func(t *testing.T) {
		out := newFakeSender()
		s := NewSession("s-7", newTestDeps(&stubGenerator{text: fortuneJSON}))
		s.Attach(out)
		out.expect(t, TypeStep)
		toResult(t, s, out)

		s.Handle(InboundMessage{Type: TypeCapabilities, Capabilities: &CapabilitySet{Download: true}})
		s.Handle(InboundMessage{Type: TypeExport})

		req := out.expect(t, TypeDownload)
		if req.RequestID == "" || req.FileName != "민준_2026_운명.png" || req.URL == "" {
			t.Fatalf("download request = %+v", req)
		}
		s.Handle(InboundMessage{Type: TypeCapabilityResult, RequestID: req.RequestID, OK: true})

		if res := out.expect(t, TypeExportResult); res.Outcome != string(export.OutcomeDownloaded) {
			t.Errorf("outcome = %q", res.Outcome)
		}
	})

	t.Run("기능이 없으면 알림 한 번", func(t *testing.T) {
		out := newFakeSender()
		s := NewSession("s-8", newTestDeps(&stubGenerator{text: fortuneJSON}))
		s.Attach(out)
		out.expect(t, TypeStep)
		toResult(t, s, out)

		s.Handle(InboundMessage{Type: TypeExport})
		if n := out.expect(t, TypeNotice); n.Message != export.FailureNotice {
			t.Errorf("notice = %q", n.Message)
		}
		if res := out.expect(t, TypeExportResult); res.Outcome != string(export.OutcomeFailed) {
			t.Errorf("outcome = %q", res.Outcome)
		}
	})

	t.Run("다시 하기는 진행 중인 내보내기를 멈춤", func(t *testing.T) {
		out := newFakeSender()
		s := NewSession("s-10", newTestDeps(&stubGenerator{text: fortuneJSON}))
		s.Attach(out)
		out.expect(t, TypeStep)
		toResult(t, s, out)

		s.Handle(InboundMessage{Type: TypeCapabilities, Capabilities: &CapabilitySet{Download: true, TextShare: true, Clipboard: true}})
		a := s.currentActivation()
		s.Handle(InboundMessage{Type: TypeExport})
		req := out.expect(t, TypeDownload)

		s.Handle(InboundMessage{Type: TypeRestart})
		if step := out.expect(t, TypeStep); step.Step != "landing" {
			t.Fatalf("after restart = %+v", step)
		}

		// 늦게 온 응답은 버려지고 이후 단계 요청도 없다
		s.Handle(InboundMessage{Type: TypeCapabilityResult, RequestID: req.RequestID, Unsupported: true})
		out.expectNone(t, 200*time.Millisecond)
		if _, ok := a.BeginExport(); ok {
			t.Error("export allowed on closed activation")
		}
		if n := s.bridge.Pending(); n != 0 {
			t.Errorf("pending capability requests = %d, want 0", n)
		}
	})

	t.Run("결과 전에는 거부", func(t *testing.T) {
		out := newFakeSender()
		s := NewSession("s-9", newTestDeps(&stubGenerator{text: fortuneJSON}))
		s.Attach(out)
		out.expect(t, TypeStep)

		s.Handle(InboundMessage{Type: TypeExport})
		if e := out.expect(t, TypeError); e.ErrorCode != CodeNotReady {
			t.Errorf("error = %+v", e)
		}
	})
}
