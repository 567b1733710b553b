package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fortune-canvas-server/modules/common/database"
	"fortune-canvas-server/modules/common/storage"
	"fortune-canvas-server/modules/export"
)

// Uploader - 공개 URL을 돌려주는 객체 저장소
type Uploader interface {
	Upload(ctx context.Context, bucket, path, contentType string, data []byte) (string, error)
}

// ShareRecorder - 공유 기록 저장소
type ShareRecorder interface {
	InsertShare(record database.ShareRecord) error
}

// ShareLinker - 공유 이미지를 Supabase Storage에 올리고 fortune_shares에 기록
// nil이면 공유 링크 없이 동작한다.
type ShareLinker struct {
	uploader Uploader
	recorder ShareRecorder
	bucket   string
}

// NewShareLinker - storage가 없으면 nil
func NewShareLinker(st *storage.Client, db *database.Client, bucket string) *ShareLinker {
	if st == nil {
		return nil
	}
	l := &ShareLinker{uploader: st, bucket: bucket}
	if db != nil {
		l.recorder = db
	}
	return l
}

// Link - 업로드 후 공개 URL. 기록 실패는 링크를 막지 않는다
func (l *ShareLinker) Link(ctx context.Context, sessionID string, v export.View, b export.Blob, fileName string) (string, error) {
	if l == nil || l.uploader == nil {
		return "", nil
	}

	id := uuid.New().String()
	path := fmt.Sprintf("%s/%s.%s", sessionID, id, b.Ext)
	url, err := l.uploader.Upload(ctx, l.bucket, path, b.MIMEType, b.Data)
	if err != nil {
		return "", err
	}

	if l.recorder != nil {
		record := database.ShareRecord{
			ID:        id,
			SessionID: sessionID,
			Name:      v.Profile.Name,
			Mood:      string(v.Artifact.Mood.Category),
			URL:       url,
			MIMEType:  b.MIMEType,
			CreatedAt: time.Now().UTC(),
		}
		if err := l.recorder.InsertShare(record); err != nil {
			zap.S().Warnf("⚠️ [Share] Failed to record %s (%s): %v", id, fileName, err)
		}
	}
	return url, nil
}
