package fortune

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestHandleCatalog(t *testing.T) {
	h := NewHandler(nil, DefaultCatalog(), nil)
	rec := httptest.NewRecorder()
	h.HandleCatalog(rec, httptest.NewRequest(http.MethodGet, "/api/fortune/catalog", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string][]Option
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, kind := range []string{"hair", "eye", "outfit"} {
		if len(body[kind]) != 8 {
			t.Errorf("%s options = %d, want 8", kind, len(body[kind]))
		}
	}
}

func TestHandleGenerate(t *testing.T) {
	post := func(h *Handler, body string) (*httptest.ResponseRecorder, GenerateResponse) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/fortune/generate", bytes.NewBufferString(body))
		h.HandleGenerate(rec, req)
		var resp GenerateResponse
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		return rec, resp
	}

	const complete = `{
		"sessionId": "s-1",
		"profile": {"name": "민준", "gender": "male", "birthDate": "1995-03-14"},
		"appearance": {"hairStyle": "short_neat", "eyeStyle": "cat_eye", "outfitStyle": "modern_chic"}
	}`

	t.Run("성공", func(t *testing.T) {
		gen := &fakeGenerator{text: validFortuneJSON, image: &InlineImage{Data: []byte{1}, MIMEType: "image/png"}}
		h := NewHandler(newTestService(gen, ModeSequential), DefaultCatalog(), NewGuestLimiter(nil, 3, 0))

		rec, resp := post(h, complete)
		if rec.Code != http.StatusOK || !resp.Success {
			t.Fatalf("status = %d, resp = %+v", rec.Code, resp)
		}
		if resp.Fortune == nil || resp.Fortune.Advice == "" || resp.Mood.Category != MoodLove {
			t.Errorf("resp = %+v", resp)
		}
		if resp.Profile.DisplayName != "민준 군" {
			t.Errorf("DisplayName = %q", resp.Profile.DisplayName)
		}
	})

	t.Run("세션 ID 누락", func(t *testing.T) {
		h := NewHandler(newTestService(&fakeGenerator{}, ModeSequential), DefaultCatalog(), nil)
		rec, resp := post(h, `{"profile":{}}`)
		if rec.Code != http.StatusBadRequest || resp.ErrorCode != ErrCodeInvalidRequest {
			t.Errorf("status = %d, resp = %+v", rec.Code, resp)
		}
	})

	t.Run("불완전한 프로필", func(t *testing.T) {
		gen := &fakeGenerator{text: validFortuneJSON}
		h := NewHandler(newTestService(gen, ModeSequential), DefaultCatalog(), nil)
		rec, resp := post(h, `{"sessionId":"s","profile":{"name":"a","gender":"male","birthDate":"1990-01-01"},"appearance":{"eyeStyle":"cat_eye"}}`)
		if rec.Code != http.StatusBadRequest || resp.Field != "appearance.hairStyle" {
			t.Errorf("status = %d, resp = %+v", rec.Code, resp)
		}
		if len(gen.Calls()) != 0 {
			t.Error("generator called for invalid profile")
		}
	})

	t.Run("날짜 형식 오류", func(t *testing.T) {
		h := NewHandler(newTestService(&fakeGenerator{}, ModeSequential), DefaultCatalog(), nil)
		_, resp := post(h, `{"sessionId":"s","profile":{"name":"a","gender":"male","birthDate":"14/03/1995"}}`)
		if resp.Field != "birthDate" {
			t.Errorf("resp = %+v, want birthDate field error", resp)
		}
	})

	t.Run("생성 실패는 사용자 문구", func(t *testing.T) {
		h := NewHandler(newTestService(&fakeGenerator{text: "garbage"}, ModeSequential), DefaultCatalog(), nil)
		rec, resp := post(h, complete)
		if rec.Code != http.StatusBadGateway || resp.ErrorMessage != UserMessage {
			t.Errorf("status = %d, resp = %+v", rec.Code, resp)
		}
	})
}

func TestGuestLimiterWithoutRedis(t *testing.T) {
	l := NewGuestLimiter(nil, 2, 0)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, allowed, err := l.Reserve(ctx, "s"); err != nil || !allowed {
			t.Fatalf("Reserve() allowed=%v err=%v, want unlimited", allowed, err)
		}
	}
	if err := l.Release(ctx, "s"); err != nil {
		t.Errorf("Release() error = %v", err)
	}

	var nilLimiter *GuestLimiter
	if _, allowed, _ := nilLimiter.Reserve(ctx, "s"); !allowed {
		t.Error("nil limiter blocks generation")
	}
}

// REDIS_TEST_ADDR가 있을 때만 실제 Redis로 원자성 확인
func TestGuestLimiterConcurrentReserve(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	ctx := context.Background()
	session := "test-" + strconv.FormatInt(time.Now().UnixNano(), 10)
	defer rdb.Del(ctx, guestKey(session))

	const limit = 3
	l := NewGuestLimiter(rdb, limit, time.Minute)

	var wg sync.WaitGroup
	var granted int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, allowed, err := l.Reserve(ctx, session); err == nil && allowed {
				atomic.AddInt32(&granted, 1)
			}
		}()
	}
	wg.Wait()

	if granted != limit {
		t.Errorf("granted = %d, want %d", granted, limit)
	}

	t.Run("반환하면 다시 예약 가능", func(t *testing.T) {
		if err := l.Release(ctx, session); err != nil {
			t.Fatalf("Release() error = %v", err)
		}
		usage, allowed, err := l.Reserve(ctx, session)
		if err != nil || !allowed || usage.UsedCount != limit {
			t.Errorf("Reserve() = %+v, %v, %v", usage, allowed, err)
		}
	})
}
