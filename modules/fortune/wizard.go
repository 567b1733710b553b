package fortune

import (
	"sync"
)

// Step - 위저드 단계
type Step int

const (
	StepLanding Step = iota
	StepProfileInput
	StepAppearanceInput
	StepResult
)

func (s Step) String() string {
	switch s {
	case StepLanding:
		return "landing"
	case StepProfileInput:
		return "profile_input"
	case StepAppearanceInput:
		return "appearance_input"
	case StepResult:
		return "result"
	}
	return "unknown"
}

// Wizard - 단계 상태 기계
// 인접한 단계 이동만 공개하며 결과 단계는 프로필이 완전할 때만 진입한다.
type Wizard struct {
	mu      sync.Mutex
	catalog *Catalog
	step    Step
	profile Profile
}

// NewWizard - Landing 단계, 빈 프로필로 시작
func NewWizard(catalog *Catalog) *Wizard {
	return &Wizard{catalog: catalog}
}

// Step - 현재 단계
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Profile - 현재 프로필 사본
func (w *Wizard) Profile() Profile {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.profile
}

// Snapshot - 단계와 프로필을 함께 조회
func (w *Wizard) Snapshot() (Step, Profile) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step, w.profile
}

// Start - Landing → ProfileInput
func (w *Wizard) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepLanding {
		return ErrInvalidTransition
	}
	w.step = StepProfileInput
	return nil
}

// SubmitProfile - ProfileInput → AppearanceInput
// 검증 실패 시 단계와 프로필 모두 그대로 둔다.
func (w *Wizard) SubmitProfile(update ProfileUpdate) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepProfileInput {
		return ErrInvalidTransition
	}
	next := update.apply(w.profile)
	if err := next.ValidatePersonal(); err != nil {
		return err
	}
	w.profile = next
	w.step = StepAppearanceInput
	return nil
}

// SubmitAppearance - AppearanceInput → Result
// 전체 프로필 조건을 만족하면 병합된 프로필을 반환한다.
func (w *Wizard) SubmitAppearance(update AppearanceUpdate) (Profile, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepAppearanceInput {
		return Profile{}, ErrInvalidTransition
	}
	next := update.apply(w.profile)
	if err := next.Validate(w.catalog); err != nil {
		return Profile{}, err
	}
	w.profile = next
	w.step = StepResult
	return next, nil
}

// Back - AppearanceInput → ProfileInput (입력값 유지)
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepAppearanceInput {
		return ErrInvalidTransition
	}
	w.step = StepProfileInput
	return nil
}

// Restart - 어느 단계에서든 Landing으로, 프로필 초기화
func (w *Wizard) Restart() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.step = StepLanding
	w.profile = Profile{}
}
