package export

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// storedBlob - 다운로드 대기 중인 내보내기 결과
type storedBlob struct {
	Blob     Blob
	FileName string
}

// BlobStore - 다운로드 링크용 메모리 저장소 (TTL 후 자동 만료)
type BlobStore struct {
	cache *cache.Cache
}

func NewBlobStore(ttl time.Duration) *BlobStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &BlobStore{cache: cache.New(ttl, ttl*2)}
}

// Put - 저장 후 ID 반환
func (s *BlobStore) Put(b Blob, fileName string) string {
	id := uuid.New().String()
	s.cache.SetDefault(id, storedBlob{Blob: b, FileName: fileName})
	zap.S().Debugf("💾 [Export] Stored blob %s (%d bytes)", id, len(b.Data))
	return id
}

// Get - 만료됐거나 없으면 false
func (s *BlobStore) Get(id string) (Blob, string, bool) {
	v, ok := s.cache.Get(id)
	if !ok {
		return Blob{}, "", false
	}
	sb := v.(storedBlob)
	return sb.Blob, sb.FileName, true
}

// Count - 현재 보관 중인 개수
func (s *BlobStore) Count() int {
	return s.cache.ItemCount()
}

// DownloadPath - 저장된 blob의 다운로드 경로
func DownloadPath(id string) string {
	return "/api/fortune/exports/" + id
}

// HandleDownload - GET /api/fortune/exports/{id}
func (s *BlobStore) HandleDownload(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	b, fileName, ok := s.Get(id)
	if !ok {
		http.Error(w, "export not found or expired", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", b.MIMEType)
	w.Header().Set("Content-Length", strconv.Itoa(len(b.Data)))
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"export.%s\"; filename*=UTF-8''%s", b.Ext, url.PathEscape(fileName)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(b.Data); err != nil {
		zap.S().Warnf("⚠️ [Export] Failed to write download %s: %v", id, err)
	}
}
