package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Lovecoded2024/timejournal/internal/app"
	"github.com/Lovecoded2024/timejournal/internal/config"
	"github.com/Lovecoded2024/timejournal/internal/server"
	"github.com/Lovecoded2024/timejournal/internal/util"
	"github.com/Lovecoded2024/timejournal/pkg/minimax"
	"github.com/Lovecoded2024/timejournal/pkg/storage"
	"github.com/Lovecoded2024/timejournal/pkg/store"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	sessionTTL, err := config.ParseDurationOr(cfg.SessionTTL, 7*24*time.Hour)
	if err != nil {
		log.Fatalf("failed to parse session TTL: %v", err)
	}
	presignTTL, err := config.ParseDurationOr(cfg.PresignTTL, time.Hour)
	if err != nil {
		log.Fatalf("failed to parse presign TTL: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	st, err := store.NewGormStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to init database: %v", err)
	}

	var tokens store.TokenStore
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		tokens = store.NewRedisTokenStore(client, sessionTTL)
	} else {
		tokens = store.NewJWTTokenStore(cfg.JWTSecret, sessionTTL)
	}

	var objects storage.ObjectStore
	if cfg.MinioEndpoint != "" {
		objects, err = storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Fatalf("failed to init object storage: %v", err)
		}
	} else {
		slog.Warn("minio not configured, uploads are kept in memory")
		objects = storage.NewMemoryObjectStore()
	}

	ai := minimax.NewClient(cfg.MinimaxBaseURL, cfg.MinimaxAPIKey)
	if cfg.MinimaxChatModel != "" {
		ai.SetChatModel(cfg.MinimaxChatModel)
	}

	appCore := app.New(st, tokens, objects, ai, app.Config{
		AnalyzeConcurrency: cfg.AnalyzeConcurrency,
		PresignTTL:         presignTTL,
		TTSVoice:           cfg.MinimaxTTSVoice,
	})

	httpServer, err := server.New(server.Config{
		App:                      appCore,
		RedisAddr:                cfg.RedisAddr,
		RedisPassword:            cfg.RedisPassword,
		SignupRateLimitPerMinute: cfg.SignupRateLimitPerMinute,
		LoginRateLimitPerMinute:  cfg.LoginRateLimitPerMinute,
		MaxUploadBytes:           cfg.MaxUploadBytes,
		AllowedExtensions:        cfg.AllowedExtensions,
		TrustedProxyCIDRs:        cfg.TrustedProxyCIDRs,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
