package main

import (
	"context"
	"database/sql"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/voxbridge/internal/artifacts"
	"github.com/Vovarama1992/voxbridge/internal/config"
	"github.com/Vovarama1992/voxbridge/internal/delivery"
	"github.com/Vovarama1992/voxbridge/internal/domain"
	"github.com/Vovarama1992/voxbridge/internal/error_notificator"
	"github.com/Vovarama1992/voxbridge/internal/infra"
	"github.com/Vovarama1992/voxbridge/internal/pipeline"
	"github.com/Vovarama1992/voxbridge/internal/ports"
	"github.com/Vovarama1992/voxbridge/internal/speech"
	"github.com/Vovarama1992/voxbridge/internal/translation"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {

	// =========================================================================
	// ENV / CONFIG
	// =========================================================================

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	baseLogger, _ := zap.NewProduction()
	defer baseLogger.Sync()
	zl := logger.NewZapLogger(baseLogger.Sugar())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// =========================================================================
	// ERROR NOTIFICATION
	// =========================================================================

	var errInfra error_notificator.Notificator = error_notificator.LogInfra{}
	if cfg.TelegramAlertToken != "" && cfg.TelegramAlertChatID != 0 {
		tg, err := error_notificator.NewTelegramInfra(cfg.TelegramAlertToken, cfg.TelegramAlertChatID)
		if err != nil {
			log.Printf("telegram alerts disabled: %v", err)
		} else {
			errInfra = tg
		}
	}
	errService := error_notificator.NewService(errInfra)

	// =========================================================================
	// DB (optional)
	// =========================================================================

	var translationRepo ports.TranslationRepo
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer db.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err != nil {
			log.Fatalf("db ping failed: %v", err)
		}

		repo := infra.NewTranslationRepo(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatalf("db schema: %v", err)
		}
		translationRepo = repo
	}

	historyService := domain.NewHistoryService(translationRepo, errService)

	// =========================================================================
	// ARTIFACT STORE
	// =========================================================================

	var storeOpts []artifacts.Option
	if cfg.S3.Enabled() {
		s3Client, err := infra.NewS3Client(ctx, infra.S3Config{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Insecure:  cfg.S3.Insecure,
		})
		if err != nil {
			log.Fatalf("failed to init s3: %v", err)
		}
		storeOpts = append(storeOpts, artifacts.WithMirror(domain.NewAudioMirror(s3Client)))
	}

	store, err := artifacts.NewStore(cfg.AudioDir, storeOpts...)
	if err != nil {
		log.Fatalf("audio dir: %v", err)
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("upload dir: %v", err)
	}

	// =========================================================================
	// CLIENTS (STT / MT / TTS)
	// =========================================================================

	stt := speech.NewLazyTranscriber(func() (speech.Transcriber, error) {
		if cfg.STTProvider == "deepgram" {
			return speech.NewDeepgramClient(cfg.DeepgramKey, "")
		}
		return speech.NewWhisperClient(cfg.OpenAIKey, cfg.WhisperModel, cfg.OpenAIBaseURL)
	})

	var tts speech.Synthesizer
	if cfg.TTSProvider == "elevenlabs" {
		tts, err = speech.NewElevenLabsClient(cfg.ElevenLabsKey, cfg.ElevenLabsVoice, cfg.ElevenLabsModel, "")
		if err != nil {
			log.Fatalf("elevenlabs: %v", err)
		}
	} else {
		tts = speech.NewGTranslateTTS("")
	}

	hfClient, err := translation.NewHFClient(cfg.HFToken, cfg.HFModelURL)
	if err != nil {
		log.Fatalf("translation: %v", err)
	}

	// =========================================================================
	// DOMAIN SERVICES
	// =========================================================================

	speechService := speech.NewService(stt, tts)
	translationService := translation.NewService(hfClient)
	authService := domain.NewAuthService(cfg.AuthSecret)

	orchestrator := pipeline.NewOrchestrator(
		speechService,
		translationService,
		speechService,
		store,
		historyService,
		errService,
		cfg.UploadDir,
	)

	// =========================================================================
	// HTTP ROUTER
	// =========================================================================

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	translateHandler := delivery.NewTranslateHandler(orchestrator, zl, cfg.PipelineTimeout, cfg.MaxUploadBytes, cfg.PublicBaseURL)
	audioHandler := delivery.NewAudioHandler(store, zl)
	historyHandler := delivery.NewHistoryHandler(historyService, zl)

	delivery.RegisterRoutes(
		r,
		translateHandler,
		audioHandler,
		historyHandler,
		authService,
		cfg.RateLimitPerMin,
	)

	r.With(httputil.RecoverMiddleware).Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("pong"))
	})

	// =========================================================================
	// BACKGROUND JOBS
	// =========================================================================

	if cfg.ArtifactMaxAge > 0 {
		go store.RunSweeper(ctx, cfg.ArtifactSweepInterval, cfg.ArtifactMaxAge)
	}

	// =========================================================================
	// START SERVER
	// =========================================================================

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}

	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "listening at " + srv.Addr,
		Service: "voxbridge",
	})

	// in-flight pipeline runs may still be recording history when Shutdown returns
	if err := serve(ctx, srv, ln, cfg.PipelineTimeout+15*time.Second); err != nil {
		log.Fatalf("server error: %v", err)
	}

	historyService.Wait()
}
