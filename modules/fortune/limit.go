package fortune

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// GuestUsage - 비회원 생성 사용량
type GuestUsage struct {
	SessionID string `json:"sessionId"`
	UsedCount int    `json:"usedCount"`
}

// reserveScript - 제한 안이면 1 증가, 넘으면 되돌림. {사용량, 허용 여부}
// 첫 증가에서만 TTL을 건다.
var reserveScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
if n > tonumber(ARGV[1]) then
	redis.call("DECR", KEYS[1])
	return {n - 1, 0}
end
return {n, 1}
`)

// GuestLimiter - Redis 기반 비회원 생성 횟수 제한
type GuestLimiter struct {
	redis *redis.Client
	limit int
	ttl   time.Duration
}

// NewGuestLimiter - rdb가 nil이면 제한 없음
func NewGuestLimiter(rdb *redis.Client, limit int, ttl time.Duration) *GuestLimiter {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &GuestLimiter{redis: rdb, limit: limit, ttl: ttl}
}

// Enabled - 실제로 제한을 적용하는지
func (l *GuestLimiter) Enabled() bool {
	return l != nil && l.redis != nil && l.limit > 0
}

func guestKey(sessionID string) string {
	return fmt.Sprintf("guest:fortune:%s", sessionID)
}

// Reserve - 생성 전에 한 번을 원자적으로 예약
// 허용되지 않으면 사용량은 그대로다. 동시 요청도 limit을 넘지 못한다.
func (l *GuestLimiter) Reserve(ctx context.Context, sessionID string) (*GuestUsage, bool, error) {
	if !l.Enabled() {
		// Redis 없으면 제한 없음 (개발 환경)
		return &GuestUsage{SessionID: sessionID}, true, nil
	}

	res, err := reserveScript.Run(ctx, l.redis, []string{guestKey(sessionID)}, l.limit, l.ttl.Milliseconds()).Int64Slice()
	if err != nil {
		zap.S().Warnf("⚠️ [Fortune] Redis error: %v", err)
		return nil, false, err
	}
	if len(res) != 2 {
		return nil, false, fmt.Errorf("unexpected reserve result: %v", res)
	}

	usage := &GuestUsage{SessionID: sessionID, UsedCount: int(res[0])}
	allowed := res[1] == 1
	if allowed {
		zap.S().Infof("📊 [Fortune] Guest usage reserved: session=%s, count=%d/%d", sessionID, usage.UsedCount, l.limit)
	}
	return usage, allowed, nil
}

// Release - 생성 실패 시 예약 반환
func (l *GuestLimiter) Release(ctx context.Context, sessionID string) error {
	if !l.Enabled() {
		return nil
	}
	n, err := l.redis.Decr(ctx, guestKey(sessionID)).Result()
	if err != nil {
		zap.S().Warnf("⚠️ [Fortune] Failed to release guest usage: %v", err)
		return err
	}
	if n < 0 {
		l.redis.Del(ctx, guestKey(sessionID))
	}
	return nil
}
