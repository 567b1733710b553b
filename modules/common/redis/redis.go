package redis

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"fortune-canvas-server/modules/common/config"
)

// Connect - Redis 연결 생성 (REDIS_HOST 미설정 또는 실패 시 nil)
func Connect(cfg *config.Config) *redis.Client {
	if !cfg.RedisEnabled() {
		zap.S().Info("⚠️  REDIS_HOST not set, guest limit disabled")
		return nil
	}

	zap.S().Infof("🔌 Connecting to Redis: %s", cfg.GetRedisAddr())

	var tlsConfig *tls.Config
	if cfg.RedisUseTLS {
		tlsConfig = &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: true, // Render.com Redis용
		}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Username:     cfg.RedisUsername,
		Password:     cfg.RedisPassword,
		TLSConfig:    tlsConfig,
		DB:           0,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		zap.S().Errorf("❌ Redis ping failed: %v", err)
		_ = rdb.Close()
		return nil
	}

	zap.S().Info("✅ Redis connected")
	return rdb
}
