package fortune

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Error codes
const (
	ErrCodeGuestLimitReached = "GUEST_LIMIT_REACHED"
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeGenerationFailed  = "GENERATION_FAILED"
)

// GenerateRequest - POST /api/fortune/generate 요청
type GenerateRequest struct {
	SessionID  string            `json:"sessionId"`
	Profile    ProfilePayload    `json:"profile"`
	Appearance AppearancePayload `json:"appearance"`
}

// GenerateResponse - 1회성 생성 응답
type GenerateResponse struct {
	Success      bool           `json:"success"`
	Profile      *ProfileView   `json:"profile,omitempty"`
	Fortune      *FortuneResult `json:"fortune,omitempty"`
	Mood         *Mood          `json:"mood,omitempty"`
	Portrait     *Portrait      `json:"portrait,omitempty"`
	ErrorMessage string         `json:"errorMessage,omitempty"`
	ErrorCode    string         `json:"errorCode,omitempty"`
	Field        string         `json:"field,omitempty"`
	UsedCount    int            `json:"usedCount,omitempty"`
	MaxCount     int            `json:"maxCount,omitempty"`
	LimitReached bool           `json:"limitReached,omitempty"`
}

type Handler struct {
	service *Service
	catalog *Catalog
	limiter *GuestLimiter
}

func NewHandler(service *Service, catalog *Catalog, limiter *GuestLimiter) *Handler {
	return &Handler{service: service, catalog: catalog, limiter: limiter}
}

// HandleCatalog - GET /api/fortune/catalog
func (h *Handler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]Option{
		string(TraitHair):   h.catalog.Options(TraitHair),
		string(TraitEye):    h.catalog.Options(TraitEye),
		string(TraitOutfit): h.catalog.Options(TraitOutfit),
	})
}

// HandleGenerate - POST /api/fortune/generate
// 위저드 없이 완성된 프로필로 한 번에 생성 (비회원 횟수 제한)
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		zap.S().Warnf("❌ [Fortune] Invalid request: %v", err)
		writeJSON(w, http.StatusBadRequest, GenerateResponse{
			ErrorMessage: "Invalid request format",
			ErrorCode:    ErrCodeInvalidRequest,
		})
		return
	}

	if strings.TrimSpace(req.SessionID) == "" {
		writeJSON(w, http.StatusBadRequest, GenerateResponse{
			ErrorMessage: "Session ID is required",
			ErrorCode:    ErrCodeInvalidRequest,
		})
		return
	}

	update, err := req.Profile.ToUpdate()
	if err != nil {
		writeValidation(w, err)
		return
	}
	profile := req.Appearance.ToUpdate().apply(update.apply(Profile{}))
	if err := profile.Validate(h.catalog); err != nil {
		writeValidation(w, err)
		return
	}

	ctx := r.Context()

	// 비회원 제한 예약 (Redis 오류 시에는 제한 없이 진행)
	usage, allowed, err := h.limiter.Reserve(ctx, req.SessionID)
	reserved := err == nil && allowed && h.limiter.Enabled()
	if err != nil {
		zap.S().Warnf("⚠️ [Fortune] Failed to reserve guest usage: %v", err)
	} else if !allowed {
		zap.S().Infof("🚫 [Fortune] Guest limit reached: session=%s, count=%d", req.SessionID, usage.UsedCount)
		writeJSON(w, http.StatusTooManyRequests, GenerateResponse{
			ErrorMessage: "무료 생성 횟수를 모두 사용했습니다.",
			ErrorCode:    ErrCodeGuestLimitReached,
			UsedCount:    usage.UsedCount,
			MaxCount:     h.limiter.limit,
			LimitReached: true,
		})
		return
	}

	art, err := h.service.Generate(ctx, profile)
	if err != nil {
		zap.S().Errorf("❌ [Fortune] Generation failed: %v", err)
		if reserved {
			// 요청이 끊겼어도 반환은 해야 한다
			_ = h.limiter.Release(context.WithoutCancel(ctx), req.SessionID)
		}
		writeJSON(w, http.StatusBadGateway, GenerateResponse{
			ErrorMessage: UserMessage,
			ErrorCode:    ErrCodeGenerationFailed,
		})
		return
	}

	view := profile.View()
	resp := GenerateResponse{
		Success:  true,
		Profile:  &view,
		Fortune:  &art.Fortune,
		Mood:     &art.Mood,
		Portrait: &art.Portrait,
	}
	if reserved {
		resp.UsedCount = usage.UsedCount
		resp.MaxCount = h.limiter.limit
		resp.LimitReached = usage.UsedCount >= h.limiter.limit
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeValidation(w http.ResponseWriter, err error) {
	resp := GenerateResponse{ErrorMessage: err.Error(), ErrorCode: ErrCodeInvalidRequest}
	var ve *ValidationError
	if errors.As(err, &ve) {
		resp.ErrorMessage = ve.Reason
		resp.Field = ve.Field
	}
	writeJSON(w, http.StatusBadRequest, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Warnf("⚠️ [Fortune] Failed to write response: %v", err)
	}
}
