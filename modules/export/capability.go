package export

import (
	"context"
	"errors"
	"image"
	"image/color"

	"fortune-canvas-server/modules/fortune"
)

var (
	// ErrUnsupported - 플랫폼이 해당 기능을 지원하지 않음
	ErrUnsupported = errors.New("capability unsupported")
	// ErrCancelled - 사용자가 공유 시트를 닫음 (오류 아님)
	ErrCancelled = errors.New("share cancelled by user")
)

// View - 내보낼 결과 화면
type View struct {
	Profile  fortune.Profile
	Artifact fortune.Artifact
}

// Blob - 인코딩된 이미지 바이너리
type Blob struct {
	Data     []byte
	MIMEType string
	Ext      string
}

// FileShare - 파일 첨부 공유 요청
type FileShare struct {
	View     View
	Blob     Blob
	FileName string
	Title    string
	Text     string
}

// Rasterizer - 결과 화면을 비트맵으로
type Rasterizer interface {
	Rasterize(ctx context.Context, v View, scale int, background color.Color) (image.Image, error)
}

// Encoder - 비트맵을 바이너리로
type Encoder interface {
	Encode(img image.Image) (Blob, error)
}

// FileSharer - 파일 첨부 네이티브 공유
type FileSharer interface {
	CanShareFile(ctx context.Context, b Blob) bool
	ShareFile(ctx context.Context, req FileShare) error
}

// Downloader - 로컬 파일 다운로드
type Downloader interface {
	Download(ctx context.Context, b Blob, fileName string) error
}

// TextSharer - 텍스트 전용 네이티브 공유
type TextSharer interface {
	CanShareText(ctx context.Context) bool
	ShareText(ctx context.Context, title, text string) error
}

// Clipboard - 클립보드 쓰기
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// Notifier - 사용자 알림 (실패 안내)
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// Capabilities - 세션마다 주입되는 플랫폼 기능 묶음. nil 필드는 미지원으로 취급
type Capabilities struct {
	Files     FileSharer
	Download  Downloader
	Text      TextSharer
	Clipboard Clipboard
	Notifier  Notifier
}
