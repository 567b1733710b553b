package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
)

func TestManagerCleanup(t *testing.T) {
	m := NewManager(newTestDeps(&stubGenerator{text: fortuneJSON}))

	connected := m.GetOrCreate("connected")
	connected.Attach(newFakeSender())
	idle := m.GetOrCreate("idle")
	m.GetOrCreate("fresh")

	if m.GetOrCreate("idle") != idle {
		t.Fatal("GetOrCreate() created a duplicate session")
	}

	idle.mu.Lock()
	idle.lastActivity = time.Now().Add(-10 * time.Minute)
	idle.mu.Unlock()

	if n := m.CleanupEmptySessions(); n != 1 {
		t.Errorf("CleanupEmptySessions() = %d, want 1", n)
	}
	if m.Get("idle") != nil || m.Get("fresh") == nil || m.Get("connected") == nil {
		t.Error("wrong sessions removed")
	}

	connected.mu.Lock()
	connected.createdAt = time.Now().Add(-25 * time.Hour)
	connected.mu.Unlock()
	if n := m.CleanupExpiredSessions(); n != 1 || m.Get("connected") != nil {
		t.Errorf("CleanupExpiredSessions() = %d", n)
	}
	select {
	case <-connected.ctx.Done():
	default:
		t.Error("removed session context not cancelled")
	}
}

func TestManagerHandlers(t *testing.T) {
	m := NewManager(newTestDeps(&stubGenerator{text: fortuneJSON}))
	m.GetOrCreate("abc")

	router := mux.NewRouter()
	router.HandleFunc("/session/{sessionId}", m.HandleSessionInfo).Methods("GET")
	router.HandleFunc("/metrics/sessions", m.HandleMetrics).Methods("GET")

	t.Run("세션 정보", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/session/abc", nil))
		var body map[string]interface{}
		_ = json.Unmarshal(rec.Body.Bytes(), &body)
		if rec.Code != http.StatusOK || body["step"] != "landing" {
			t.Errorf("status = %d, body = %v", rec.Code, body)
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/session/zzz", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("missing session status = %d", rec.Code)
		}
	})

	t.Run("세션 통계", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics/sessions", nil))
		var body struct {
			Server struct {
				ActiveSessions int `json:"activeSessions"`
			} `json:"server"`
			Sessions []map[string]interface{} `json:"sessions"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Server.ActiveSessions != 1 || len(body.Sessions) != 1 {
			t.Errorf("body = %+v", body)
		}
	})

	t.Run("세션 파라미터 누락", func(t *testing.T) {
		rec := httptest.NewRecorder()
		m.HandleWebSocket(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d", rec.Code)
		}
	})
}
