package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"fortune-canvas-server/modules/common/config"
	"fortune-canvas-server/modules/common/database"
	"fortune-canvas-server/modules/common/fallback"
	"fortune-canvas-server/modules/common/gemini"
	"fortune-canvas-server/modules/common/logger"
	"fortune-canvas-server/modules/common/redis"
	"fortune-canvas-server/modules/common/storage"
	"fortune-canvas-server/modules/common/vertexai"
	"fortune-canvas-server/modules/export"
	"fortune-canvas-server/modules/fortune"
	"fortune-canvas-server/modules/session"
)

// CORS 헤더 추가
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// 헬스 체크 엔드포인트
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "fortune-canvas-server",
	})
}

func main() {
	debug, _ := strconv.ParseBool(os.Getenv("DEBUG"))
	logger.Init(debug)
	defer logger.Sync()

	// 환경변수 로드
	cfg, err := config.LoadConfig()
	if err != nil {
		zap.S().Fatalf("❌ Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Gemini (Vertex AI 백엔드면 서비스 계정 자격 증명 사용)
	opts := gemini.Options{
		Backend:   cfg.GeminiBackend,
		APIKey:    cfg.GeminiAPIKey,
		Project:   cfg.VertexProject,
		Location:  cfg.VertexLocation,
		CallEvery: cfg.GeminiCallEvery,
		Timeout:   cfg.GeminiTimeout,
	}
	if cfg.GeminiBackend == config.BackendVertex {
		creds, err := vertexai.LoadCredentials(cfg.VertexCredentialsJSON, cfg.VertexCredentialsPath)
		if err != nil {
			zap.S().Fatalf("❌ Failed to load Vertex AI credentials: %v", err)
		}
		opts.Credentials = creds
	}
	geminiClient, err := gemini.NewClient(ctx, opts)
	if err != nil {
		zap.S().Fatalf("❌ Failed to create Gemini client: %v", err)
	}

	// 운세 생성
	catalog := fortune.DefaultCatalog()
	service := fortune.NewService(
		fortune.NewGeminiGenerator(geminiClient, cfg.GeminiTextModel, cfg.GeminiImageModel),
		fortune.NewRequestBuilder(catalog, fortune.DefaultBackgrounds()),
		fortune.NewMoodClassifier(fortune.DefaultKeywords()),
		fallback.NewResolver(cfg.PlaceholderBaseURL, cfg.PlaceholderSize),
		fortune.Mode(cfg.GenerationMode),
	)

	// 비회원 제한 (Redis 없으면 비활성화)
	rdb := redis.Connect(cfg)
	if rdb != nil {
		defer rdb.Close()
	}
	fortuneHandler := fortune.NewHandler(service, catalog, fortune.NewGuestLimiter(rdb, cfg.GuestLimit, cfg.GuestLimitTTL))

	// 내보내기
	store := export.NewBlobStore(cfg.ExportTTL)
	if cfg.ExportFontPath == "" {
		zap.S().Warn("⚠️ EXPORT_FONT_PATH not set, card text uses the built-in Latin font")
	}
	cardFont, err := export.LoadFont(cfg.ExportFontPath)
	if err != nil {
		zap.S().Fatalf("❌ Failed to load card font: %v", err)
	}
	rasterizer, err := export.NewCardRasterizer(nil, cardFont)
	if err != nil {
		zap.S().Fatalf("❌ Failed to create card rasterizer: %v", err)
	}
	pipeline := export.NewPipeline(
		rasterizer,
		export.WebPEncoder{Quality: cfg.ExportQuality},
		cfg.ExportScale,
	)

	// 세션
	sessions := session.NewManager(&session.Deps{
		Service:           service,
		Catalog:           catalog,
		Pipeline:          pipeline,
		Store:             store,
		Linker:            session.NewShareLinker(storage.NewClient(cfg), database.NewClient(cfg), cfg.SupabaseShareBucket),
		CapabilityTimeout: cfg.CapabilityTimeout,
	})
	sessions.StartCleanupRoutine(ctx)

	// 라우터 설정
	r := mux.NewRouter()
	r.Use(enableCORS)

	r.HandleFunc("/", healthCheck).Methods("GET")
	r.HandleFunc("/health", healthCheck).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/metrics/sessions", sessions.HandleMetrics).Methods("GET")
	r.HandleFunc("/ws", sessions.HandleWebSocket)
	r.HandleFunc("/session/{sessionId}", sessions.HandleSessionInfo).Methods("GET")
	r.HandleFunc("/admin/cleanup", sessions.HandleForceCleanup).Methods("POST")

	api := r.PathPrefix("/api/fortune").Subrouter()
	api.HandleFunc("/catalog", fortuneHandler.HandleCatalog).Methods("GET")
	api.HandleFunc("/generate", fortuneHandler.HandleGenerate).Methods("POST", "OPTIONS")
	api.HandleFunc("/exports/{id}", store.HandleDownload).Methods("GET")

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	zap.S().Infof("🚀 Fortune Canvas Server starting on port %s (mode: %s)", cfg.Port, service.Mode())
	zap.S().Infof("📡 WebSocket endpoint: ws://localhost:%s/ws?session={id}", cfg.Port)
	zap.S().Infof("❤️  Health check: http://localhost:%s/health", cfg.Port)
	zap.S().Infof("📊 Metrics: http://localhost:%s/metrics", cfg.Port)
	zap.S().Infof("🧹 Admin cleanup: http://localhost:%s/admin/cleanup", cfg.Port)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		zap.S().Info("🛑 Shutting down server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zap.S().Warnf("⚠️ Shutdown error: %v", err)
		}
	}()

	// 서버 시작
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		zap.S().Fatalf("Server failed to start: %v", err)
	}
}
