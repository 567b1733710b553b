package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fortune-canvas-server/modules/export"
)

// ErrCapabilityTimeout - 클라이언트가 제한 시간 안에 응답하지 않음
var ErrCapabilityTimeout = errors.New("capability request timed out")

// Bridge - 내보내기 플랫폼 기능을 WebSocket 요청/응답으로 클라이언트에 위임
// 요청마다 uuid를 붙이고 capability_result로 돌아오는 응답을 기다린다.
type Bridge struct {
	sessionID string
	send      func(OutboundMessage) error
	timeout   time.Duration
	store     *export.BlobStore
	linker    *ShareLinker

	mu      sync.Mutex
	caps    CapabilitySet
	pending map[string]chan InboundMessage
}

func NewBridge(sessionID string, send func(OutboundMessage) error, timeout time.Duration, store *export.BlobStore, linker *ShareLinker) *Bridge {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Bridge{
		sessionID: sessionID,
		send:      send,
		timeout:   timeout,
		store:     store,
		linker:    linker,
		pending:   make(map[string]chan InboundMessage),
	}
}

// SetCapabilities - capabilities 메시지 반영
func (b *Bridge) SetCapabilities(c CapabilitySet) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.caps = c
	zap.S().Infof("🧩 [Session %s] Capabilities: file=%v text=%v clipboard=%v download=%v",
		b.sessionID, c.FileShare, c.TextShare, c.Clipboard, c.Download)
}

func (b *Bridge) capabilities() CapabilitySet {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.caps
}

// Capabilities - 파이프라인에 넘길 기능 묶음
func (b *Bridge) Capabilities() export.Capabilities {
	return export.Capabilities{Files: b, Download: b, Text: b, Clipboard: b, Notifier: b}
}

// Resolve - capability_result를 대기 중인 요청에 전달. 모르는 ID면 false
func (b *Bridge) Resolve(reply InboundMessage) bool {
	b.mu.Lock()
	ch, ok := b.pending[reply.RequestID]
	if ok {
		delete(b.pending, reply.RequestID)
	}
	b.mu.Unlock()

	if !ok {
		zap.S().Warnf("⚠️ [Session %s] Unknown capability reply: %s", b.sessionID, reply.RequestID)
		return false
	}
	ch <- reply
	return true
}

// Pending - 응답 대기 중인 요청 수
func (b *Bridge) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// call - 요청을 보내고 응답 또는 타임아웃까지 대기
func (b *Bridge) call(ctx context.Context, msg OutboundMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id := uuid.New().String()
	msg.RequestID = id
	ch := make(chan InboundMessage, 1)

	b.mu.Lock()
	b.pending[id] = ch
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.pending, id)
		b.mu.Unlock()
	}()

	if err := b.send(msg); err != nil {
		return fmt.Errorf("send %s: %w", msg.Type, err)
	}

	timer := time.NewTimer(b.timeout)
	defer timer.Stop()

	select {
	case reply := <-ch:
		switch {
		case reply.OK:
			return nil
		case reply.Cancelled:
			return export.ErrCancelled
		case reply.Unsupported:
			return export.ErrUnsupported
		case reply.Error != "":
			return errors.New(reply.Error)
		default:
			return fmt.Errorf("%s failed", msg.Type)
		}
	case <-timer.C:
		return ErrCapabilityTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bridge) CanShareFile(_ context.Context, blob export.Blob) bool {
	c := b.capabilities()
	if !c.FileShare {
		return false
	}
	if len(c.FileTypes) == 0 {
		return true
	}
	for _, t := range c.FileTypes {
		if t == blob.MIMEType {
			return true
		}
	}
	return false
}

// ShareFile - blob을 다운로드 저장소에 올리고 공유 시트 요청
func (b *Bridge) ShareFile(ctx context.Context, req export.FileShare) error {
	if b.store == nil {
		return export.ErrUnsupported
	}
	id := b.store.Put(req.Blob, req.FileName)

	msg := OutboundMessage{
		Type:     TypeShareFile,
		Title:    req.Title,
		Text:     req.Text,
		FileName: req.FileName,
		URL:      export.DownloadPath(id),
		MIMEType: req.Blob.MIMEType,
	}
	if link, err := b.linker.Link(ctx, b.sessionID, req.View, req.Blob, req.FileName); err != nil {
		zap.S().Warnf("⚠️ [Session %s] Share link unavailable: %v", b.sessionID, err)
	} else {
		msg.ShareURL = link
	}
	return b.call(ctx, msg)
}

func (b *Bridge) Download(ctx context.Context, blob export.Blob, fileName string) error {
	if !b.capabilities().Download || b.store == nil {
		return export.ErrUnsupported
	}
	id := b.store.Put(blob, fileName)
	return b.call(ctx, OutboundMessage{
		Type:     TypeDownload,
		FileName: fileName,
		URL:      export.DownloadPath(id),
		MIMEType: blob.MIMEType,
	})
}

func (b *Bridge) CanShareText(context.Context) bool {
	return b.capabilities().TextShare
}

func (b *Bridge) ShareText(ctx context.Context, title, text string) error {
	return b.call(ctx, OutboundMessage{Type: TypeShareText, Title: title, Text: text})
}

func (b *Bridge) WriteText(ctx context.Context, text string) error {
	if !b.capabilities().Clipboard {
		return export.ErrUnsupported
	}
	return b.call(ctx, OutboundMessage{Type: TypeClipboardWrite, Text: text})
}

// Notify - 응답을 기다리지 않는 알림
func (b *Bridge) Notify(_ context.Context, message string) {
	if err := b.send(OutboundMessage{Type: TypeNotice, Message: message}); err != nil {
		zap.S().Warnf("⚠️ [Session %s] Failed to send notice: %v", b.sessionID, err)
	}
}
