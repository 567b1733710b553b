package session

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"fortune-canvas-server/modules/common/metrics"
)

// 정리 기준
const (
	emptyGrace        = 5 * time.Minute
	expiredThreshold  = 24 * time.Hour
	inactiveThreshold = 2 * time.Hour
)

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// 개발용 - 모든 origin 허용
		return true
	},
}

// ServerMetrics - 서버 누적 통계
type ServerMetrics struct {
	TotalSessions    int       `json:"totalSessions"`
	ActiveSessions   int       `json:"activeSessions"`
	TotalConnections int       `json:"totalConnections"`
	StartTime        time.Time `json:"startTime"`
	mutex            sync.RWMutex
}

// Manager - 세션 관리
type Manager struct {
	deps     *Deps
	sessions map[string]*Session
	mutex    sync.RWMutex
	metrics  *ServerMetrics
}

func NewManager(deps *Deps) *Manager {
	return &Manager{
		deps:     deps,
		sessions: make(map[string]*Session),
		metrics:  &ServerMetrics{StartTime: time.Now()},
	}
}

// GetOrCreate - 세션 가져오기 또는 생성
func (m *Manager) GetOrCreate(sessionID string) *Session {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		session = NewSession(sessionID, m.deps)
		m.sessions[sessionID] = session

		m.metrics.mutex.Lock()
		m.metrics.TotalSessions++
		m.metrics.ActiveSessions++
		total, active := m.metrics.TotalSessions, m.metrics.ActiveSessions
		m.metrics.mutex.Unlock()
		metrics.ActiveSessions.Inc()

		zap.S().Infof("✅ Created new session: %s (Total: %d, Active: %d)", sessionID, total, active)
	}
	return session
}

// Get - 없으면 nil
func (m *Manager) Get(sessionID string) *Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.sessions[sessionID]
}

func (m *Manager) remove(sessionID string, session *Session) {
	delete(m.sessions, sessionID)
	session.Close()

	m.metrics.mutex.Lock()
	m.metrics.ActiveSessions--
	m.metrics.mutex.Unlock()
	metrics.ActiveSessions.Dec()
}

// CleanupEmptySessions - 연결이 끊긴 채 유예 시간이 지난 세션 정리
func (m *Manager) CleanupEmptySessions() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	cleaned := 0
	for sessionID, session := range m.sessions {
		session.mu.RLock()
		isEmpty := session.client == nil && time.Since(session.lastActivity) > emptyGrace
		session.mu.RUnlock()

		if isEmpty {
			m.remove(sessionID, session)
			cleaned++
			zap.S().Infof("🧹 Cleaned up empty session: %s", sessionID)
		}
	}

	if cleaned > 0 {
		zap.S().Infof("🗑️  Cleaned up %d empty sessions (Active: %d)", cleaned, len(m.sessions))
	}
	return cleaned
}

// CleanupExpiredSessions - 24시간 지난 세션, 2시간 이상 비활성인 빈 세션 정리
func (m *Manager) CleanupExpiredSessions() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	now := time.Now()
	cleaned := 0
	for sessionID, session := range m.sessions {
		session.mu.RLock()
		isExpired := now.Sub(session.createdAt) > expiredThreshold
		isInactive := now.Sub(session.lastActivity) > inactiveThreshold && session.client == nil
		client := session.client
		age, idle := now.Sub(session.createdAt), now.Sub(session.lastActivity)
		session.mu.RUnlock()

		if !isExpired && !isInactive {
			continue
		}

		if c, ok := client.(*Client); ok {
			zap.S().Infof("🔌 Disconnecting client from expired session %s", sessionID)
			c.Close()
		}
		m.remove(sessionID, session)
		cleaned++

		reason := "expired"
		if isInactive {
			reason = "inactive"
		}
		zap.S().Infof("⏰ Cleaned up %s session: %s (Age: %v, Inactive: %v)", reason, sessionID, age, idle)
	}

	if cleaned > 0 {
		zap.S().Infof("🧼 Cleaned up %d expired/inactive sessions (Active: %d)", cleaned, len(m.sessions))
	}
	return cleaned
}

// StartCleanupRoutine - 정기적 정리 작업 시작
func (m *Manager) StartCleanupRoutine(ctx context.Context) {
	// 5분마다 빈 세션 정리
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.CleanupEmptySessions()
			case <-ctx.Done():
				return
			}
		}
	}()

	// 30분마다 만료된 세션 정리
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.CleanupExpiredSessions()
			case <-ctx.Done():
				return
			}
		}
	}()

	zap.S().Info("🔄 Started session cleanup routines (Empty: 5min, Expired: 30min)")
}

// HandleWebSocket - /ws?session={id}
func (m *Manager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "missing session parameter", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Warnf("WebSocket upgrade failed: %v", err)
		return
	}

	client := newClient(conn, sessionID)
	session := m.GetOrCreate(sessionID)

	m.metrics.mutex.Lock()
	m.metrics.TotalConnections++
	connections := m.metrics.TotalConnections
	m.metrics.mutex.Unlock()

	zap.S().Infof("🔍 New WebSocket connection - Session: %s (Total Connections: %d)", sessionID, connections)

	go client.writePump()

	// 같은 세션의 이전 연결은 끊는다
	if prev, ok := session.Attach(client).(*Client); ok && prev != nil {
		zap.S().Infof("👋 Replacing previous connection in session %s", sessionID)
		prev.Close()
	}

	go client.readPump(session, func() {
		session.Detach(client)
		zap.S().Infof("👋 Client left session %s", sessionID)
	})
}

// HandleSessionInfo - GET /session/{sessionId}
func (m *Manager) HandleSessionInfo(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	session := m.Get(sessionID)
	if session == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Session not found"})
		return
	}
	writeJSON(w, http.StatusOK, session.Info())
}

// HandleMetrics - GET /metrics/sessions
func (m *Manager) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	m.metrics.mutex.RLock()
	startTime := m.metrics.StartTime
	totalSessions := m.metrics.TotalSessions
	activeSessions := m.metrics.ActiveSessions
	totalConnections := m.metrics.TotalConnections
	m.metrics.mutex.RUnlock()

	m.mutex.RLock()
	sessionDetails := make([]map[string]interface{}, 0, len(m.sessions))
	connected := 0
	for _, session := range m.sessions {
		if session.Connected() {
			connected++
		}
		sessionDetails = append(sessionDetails, session.Info())
	}
	m.mutex.RUnlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"server": map[string]interface{}{
			"uptime":           time.Since(startTime).String(),
			"startTime":        startTime,
			"totalSessions":    totalSessions,
			"activeSessions":   activeSessions,
			"totalConnections": totalConnections,
			"currentClients":   connected,
		},
		"sessions": sessionDetails,
	})
}

// HandleForceCleanup - POST /admin/cleanup
func (m *Manager) HandleForceCleanup(w http.ResponseWriter, r *http.Request) {
	empty := m.CleanupEmptySessions()
	expired := m.CleanupExpiredSessions()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "Cleanup completed",
		"empty":   empty,
		"expired": expired,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Warnf("⚠️ Failed to encode response: %v", err)
	}
}
