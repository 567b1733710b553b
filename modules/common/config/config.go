package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// 생성 백엔드
const (
	BackendGemini = "gemini"
	BackendVertex = "vertex"
)

// 생성 모드
const (
	GenerationModeSequential = "sequential"
	GenerationModeParallel   = "parallel"
)

// Config 구조체 - 모든 환경변수를 담음
type Config struct {
	// Redis (비어 있으면 비회원 제한 비활성화)
	RedisHost     string
	RedisPort     string
	RedisUsername string
	RedisPassword string
	RedisUseTLS   bool

	// Supabase (비어 있으면 공유 링크 비활성화)
	SupabaseURL            string
	SupabaseServiceKey     string
	SupabaseStorageBaseURL string
	SupabaseShareBucket    string

	// Gemini API (GEMINI_BACKEND=vertex 이면 Vertex AI)
	GeminiBackend    string
	GeminiAPIKey     string
	GeminiTextModel  string
	GeminiImageModel string
	GeminiCallEvery  time.Duration
	GeminiTimeout    time.Duration

	// Vertex AI
	VertexProject         string
	VertexLocation        string
	VertexCredentialsJSON string
	VertexCredentialsPath string

	// Fortune
	GenerationMode     string
	PlaceholderBaseURL string
	PlaceholderSize    int
	GuestLimit         int
	GuestLimitTTL      time.Duration

	// Export
	ExportScale       int
	ExportQuality     float32
	ExportTTL         time.Duration
	ExportFontPath    string
	CapabilityTimeout time.Duration

	// Server
	Port  string
	Debug bool
}

var globalConfig *Config

// LoadConfig - 환경변수 로드
func LoadConfig() (*Config, error) {
	// .env 파일 로드 (있으면)
	if err := godotenv.Load(); err != nil {
		zap.S().Info("⚠️  .env file not found, using environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	globalConfig = &Config{
		RedisHost:     v.GetString("REDIS_HOST"),
		RedisPort:     v.GetString("REDIS_PORT"),
		RedisUsername: v.GetString("REDIS_USERNAME"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisUseTLS:   v.GetBool("REDIS_USE_TLS"),

		SupabaseURL:            v.GetString("SUPABASE_URL"),
		SupabaseServiceKey:     v.GetString("SUPABASE_SERVICE_KEY"),
		SupabaseStorageBaseURL: v.GetString("SUPABASE_STORAGE_BASE_URL"),
		SupabaseShareBucket:    v.GetString("SUPABASE_SHARE_BUCKET"),

		GeminiBackend:    strings.ToLower(v.GetString("GEMINI_BACKEND")),
		GeminiAPIKey:     v.GetString("GEMINI_API_KEY"),
		GeminiTextModel:  v.GetString("GEMINI_TEXT_MODEL"),
		GeminiImageModel: v.GetString("GEMINI_IMAGE_MODEL"),
		GeminiCallEvery:  v.GetDuration("GEMINI_CALL_INTERVAL"),
		GeminiTimeout:    v.GetDuration("GEMINI_TIMEOUT"),

		VertexProject:         v.GetString("VERTEXAI_PROJECT"),
		VertexLocation:        v.GetString("VERTEXAI_LOCATION"),
		VertexCredentialsJSON: v.GetString("VERTEXAI_CREDENTIALS_JSON"),
		VertexCredentialsPath: v.GetString("VERTEXAI_CREDENTIALS_PATH"),

		GenerationMode:     strings.ToLower(v.GetString("GENERATION_MODE")),
		PlaceholderBaseURL: v.GetString("PLACEHOLDER_BASE_URL"),
		PlaceholderSize:    v.GetInt("PLACEHOLDER_SIZE"),
		GuestLimit:         v.GetInt("FORTUNE_GUEST_LIMIT"),
		GuestLimitTTL:      v.GetDuration("FORTUNE_GUEST_LIMIT_TTL"),

		ExportScale:       v.GetInt("EXPORT_SCALE"),
		ExportQuality:     float32(v.GetFloat64("EXPORT_QUALITY")),
		ExportTTL:         v.GetDuration("EXPORT_TTL"),
		ExportFontPath:    v.GetString("EXPORT_FONT_PATH"),
		CapabilityTimeout: v.GetDuration("CAPABILITY_TIMEOUT"),

		Port:  v.GetString("PORT"),
		Debug: v.GetBool("DEBUG"),
	}

	// 필수 환경변수 검증
	if err := globalConfig.validate(); err != nil {
		return nil, err
	}

	zap.S().Info("✅ Configuration loaded successfully")
	zap.S().Infof("   Redis: %s (TLS: %v)", globalConfig.GetRedisAddr(), globalConfig.RedisUseTLS)
	zap.S().Infof("   Supabase: %s", globalConfig.SupabaseURL)
	zap.S().Infof("   Gemini: text=%s image=%s mode=%s",
		globalConfig.GeminiTextModel, globalConfig.GeminiImageModel, globalConfig.GenerationMode)

	return globalConfig, nil
}

// GetConfig - 로드된 설정 가져오기
func GetConfig() *Config {
	if globalConfig == nil {
		zap.S().Fatal("❌ Config not loaded. Call LoadConfig() first.")
	}
	return globalConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_USE_TLS", true)
	v.SetDefault("SUPABASE_SHARE_BUCKET", "fortune-shares")

	v.SetDefault("GEMINI_BACKEND", BackendGemini)
	v.SetDefault("VERTEXAI_LOCATION", "us-central1")
	v.SetDefault("GEMINI_TEXT_MODEL", "gemini-3-flash-preview")
	v.SetDefault("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image")
	v.SetDefault("GEMINI_CALL_INTERVAL", "500ms")
	v.SetDefault("GEMINI_TIMEOUT", "90s")

	v.SetDefault("GENERATION_MODE", GenerationModeSequential)
	v.SetDefault("PLACEHOLDER_BASE_URL", "https://picsum.photos/seed")
	v.SetDefault("PLACEHOLDER_SIZE", 400)
	v.SetDefault("FORTUNE_GUEST_LIMIT", 3)
	v.SetDefault("FORTUNE_GUEST_LIMIT_TTL", "24h")

	v.SetDefault("EXPORT_SCALE", 2)
	v.SetDefault("EXPORT_QUALITY", 90)
	v.SetDefault("EXPORT_TTL", "10m")
	v.SetDefault("CAPABILITY_TIMEOUT", "60s")

	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBUG", false)
}

// validate - 필수 환경변수 검증
func (c *Config) validate() error {
	switch c.GeminiBackend {
	case BackendGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required")
		}
	case BackendVertex:
		if c.VertexProject == "" {
			return fmt.Errorf("VERTEXAI_PROJECT is required when GEMINI_BACKEND=vertex")
		}
	default:
		return fmt.Errorf("GEMINI_BACKEND must be %q or %q, got %q", BackendGemini, BackendVertex, c.GeminiBackend)
	}
	if c.GenerationMode != GenerationModeSequential && c.GenerationMode != GenerationModeParallel {
		return fmt.Errorf("GENERATION_MODE must be %q or %q, got %q",
			GenerationModeSequential, GenerationModeParallel, c.GenerationMode)
	}
	if c.ExportScale < 1 {
		return fmt.Errorf("EXPORT_SCALE must be >= 1")
	}
	if c.SupabaseURL != "" && c.SupabaseServiceKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_KEY is required when SUPABASE_URL is set")
	}
	return nil
}

// GetRedisAddr - Redis 연결 문자열 생성
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// RedisEnabled - Redis 설정 여부
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

// SupabaseEnabled - Supabase 설정 여부
func (c *Config) SupabaseEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseServiceKey != ""
}
