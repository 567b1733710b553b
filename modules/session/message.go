package session

import (
	"fortune-canvas-server/modules/fortune"
)

// 수신 메시지 타입
const (
	TypeStart            = "start"
	TypeSubmitProfile    = "submit_profile"
	TypeSubmitAppearance = "submit_appearance"
	TypeBack             = "back"
	TypeRestart          = "restart"
	TypeExport           = "export"
	TypeCapabilities     = "capabilities"
	TypeCapabilityResult = "capability_result"
)

// 송신 메시지 타입
const (
	TypeStep         = "step"
	TypeValidation   = "validation"
	TypeLoading      = "loading"
	TypeResult       = "result"
	TypeError        = "error"
	TypeExportResult = "export_result"

	// 클라이언트 플랫폼 기능 요청
	TypeShareFile      = "share_file"
	TypeShareText      = "share_text"
	TypeDownload       = "download"
	TypeClipboardWrite = "clipboard_write"
	TypeNotice         = "notice"
)

// 오류 코드
const (
	CodeInvalidMessage    = "invalid_message"
	CodeInvalidTransition = "invalid_transition"
	CodeGenerationFailed  = "generation_failed"
	CodeNotReady          = "result_not_ready"
	CodeExportBusy        = "export_in_progress"
)

// CapabilitySet - 클라이언트가 알려주는 플랫폼 기능 지원 여부
type CapabilitySet struct {
	FileShare bool     `json:"fileShare"`
	FileTypes []string `json:"fileTypes,omitempty"`
	TextShare bool     `json:"textShare"`
	Clipboard bool     `json:"clipboard"`
	Download  bool     `json:"download"`
}

// InboundMessage - 클라이언트 → 서버
type InboundMessage struct {
	Type       string                     `json:"type"`
	Profile    *fortune.ProfilePayload    `json:"profile,omitempty"`
	Appearance *fortune.AppearancePayload `json:"appearance,omitempty"`

	// capabilities
	Capabilities *CapabilitySet `json:"capabilities,omitempty"`

	// capability_result
	RequestID   string `json:"requestId,omitempty"`
	OK          bool   `json:"ok,omitempty"`
	Cancelled   bool   `json:"cancelled,omitempty"`
	Unsupported bool   `json:"unsupported,omitempty"`
	Error       string `json:"error,omitempty"`
}

// OutboundMessage - 서버 → 클라이언트
type OutboundMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`

	Step    string               `json:"step,omitempty"`
	Profile *fortune.ProfileView `json:"profile,omitempty"`

	// validation / error
	Field        string `json:"field,omitempty"`
	Reason       string `json:"reason,omitempty"`
	ErrorCode    string `json:"errorCode,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`

	// loading / result
	ActivationID string                 `json:"activationId,omitempty"`
	Fortune      *fortune.FortuneResult `json:"fortune,omitempty"`
	Mood         *fortune.Mood          `json:"mood,omitempty"`
	Portrait     *fortune.Portrait      `json:"portrait,omitempty"`

	// export
	Outcome string `json:"outcome,omitempty"`

	// 플랫폼 기능 요청
	RequestID string `json:"requestId,omitempty"`
	Title     string `json:"title,omitempty"`
	Text      string `json:"text,omitempty"`
	FileName  string `json:"fileName,omitempty"`
	URL       string `json:"url,omitempty"`
	ShareURL  string `json:"shareUrl,omitempty"`
	MIMEType  string `json:"mimeType,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Sender - 세션에 연결된 송신 채널
type Sender interface {
	Send(msg OutboundMessage) error
}
