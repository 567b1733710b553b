package fortune

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition - 현재 단계에서 허용되지 않는 이동
	ErrInvalidTransition = errors.New("invalid step transition")
	// ErrActivationClosed - 활성화가 끝나 진행을 멈춤
	ErrActivationClosed = errors.New("activation closed")
)

// ValidationError - 단계 전환 시 프로필 불완전
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// BuildError - 요청 생성에 필요한 필드 누락
type BuildError struct {
	Kind  RequestKind
	Field string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("cannot build %s request: missing %s", e.Kind, e.Field)
}

// 텍스트 단계 실패 지점
const (
	StageBuild   = "build"
	StageRequest = "request"
	StageParse   = "parse"
	StageSchema  = "schema"
)

// GenerationError - 텍스트 단계 실패 (치명적, 결과 없음)
type GenerationError struct {
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("fortune generation failed at %s: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ImageError - 이미지 단계 실패 (대체 이미지로 흡수)
type ImageError struct {
	Reason string
	Err    error
}

func (e *ImageError) Error() string {
	if e.Err == nil {
		return "portrait generation failed: " + e.Reason
	}
	return fmt.Sprintf("portrait generation failed: %s: %v", e.Reason, e.Err)
}

func (e *ImageError) Unwrap() error { return e.Err }

// UserMessage - 사용자에게 보여줄 오류 문구
const UserMessage = "운명의 주파수를 맞추지 못했습니다. 잠시 후 다시 시도하십시오."
