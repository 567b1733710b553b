package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var once sync.Once

// Init - 전역 zap 로거 초기화 (debug=true면 컬러 콘솔 출력)
func Init(debug bool) {
	once.Do(func() {
		var cfg zap.Config
		if debug {
			cfg = zap.NewDevelopmentConfig()
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		} else {
			cfg = zap.NewProductionConfig()
			cfg.Sampling = nil
		}
		cfg.EncoderConfig.TimeKey = "T"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

		l, err := cfg.Build()
		if err != nil {
			// 설정 실패 시 기본 프로덕션 로거
			l = zap.NewExample()
		}
		zap.ReplaceGlobals(l)
	})

	zap.S().Info("✅ Logger initialized")
}

// Sync - 버퍼 비우기 (종료 시 호출)
func Sync() {
	_ = zap.L().Sync()
}
