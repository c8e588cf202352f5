package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"cathshield/internal/alert"
	"cathshield/internal/capture"
	"cathshield/internal/config"
	"cathshield/internal/patient"
	"cathshield/internal/platform/database"
	"cathshield/internal/platform/httpx"
	"cathshield/internal/platform/telegram"
	"cathshield/internal/report"
	"cathshield/internal/resource"
	"cathshield/internal/speech"
	"cathshield/internal/vision"
	"cathshield/internal/ward"
	"cathshield/internal/workflow"
)

func runServer(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	// 1. Infrastructure
	db, err := database.Open(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info("Connected to database")

	if cfg.AutoMigrate {
		if err := database.Migrate(cfg.MigrationsPath, cfg.DatabaseURL, log); err != nil {
			return err
		}
	}

	sessions := sessionStore(ctx, cfg, log)

	// 2. Clients
	tg := telegram.NewClient(cfg.TelegramToken)
	var (
		notifier alert.Notifier
		sender   report.DocumentSender
	)
	if cfg.NotificationsEnabled() {
		notifier, sender = tg, tg
	} else {
		log.Warn("Telegram is not configured, critical alerts and reports will not be pushed")
	}
	classifier := vision.NewClient(cfg.VisionURL, cfg.VisionAPIKey)
	synth := speech.NewClient(cfg.SpeechURL)

	// 3. Services
	alertSvc := alert.NewService(alert.NewRepository(db), notifier, cfg.TelegramChatID, log)
	patientRepo := patient.NewRepository(db)
	patientSvc := patient.NewService(patientRepo, synth, log)
	resourceSvc := resource.NewService(resource.NewRepository(db), alertSvc, cfg.DefaultWardID, log)
	reportSvc := report.NewService(sender, cfg.TelegramChatID, fontPaths(cfg))
	wardSvc := ward.NewService(ward.NewRepository(db), alertSvc, resourceSvc, reportSvc, cfg.DefaultWardID, log)
	captureSvc := capture.NewService(capture.NewRepository(db), patientRepo, classifier, alertSvc, log)
	workflowSvc := workflow.NewService(sessions, log)

	// 4. Router
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httpx.RequestLogger(log))
	r.Use(httpx.CORS)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		patient.RegisterRoutes(r, patient.NewHandler(patientSvc))
		capture.RegisterRoutes(r, capture.NewHandler(captureSvc))
		alert.RegisterRoutes(r, alert.NewHandler(alertSvc))
		resource.RegisterRoutes(r, resource.NewHandler(resourceSvc))
		ward.RegisterRoutes(r, ward.NewHandler(wardSvc))
		workflow.RegisterRoutes(r, workflow.NewHandler(workflowSvc))
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("Server stopped")
	return nil
}

// sessionStore uses redis when it answers and keeps sessions in process
// otherwise.
func sessionStore(ctx context.Context, cfg *config.Config, log *zap.Logger) workflow.Store {
	if cfg.RedisAddr == "" {
		log.Warn("REDIS_ADDR is empty, workflow sessions are kept in memory")
		return workflow.NewMemoryStore()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis unreachable, workflow sessions are kept in memory",
			zap.String("addr", cfg.RedisAddr),
			zap.Error(err),
		)
		_ = client.Close()
		return workflow.NewMemoryStore()
	}

	log.Info("Connected to redis", zap.String("addr", cfg.RedisAddr))
	return workflow.NewRedisStore(client, cfg.SessionKeyPrefix, cfg.SessionTTL(), log)
}

func fontPaths(cfg *config.Config) []string {
	if cfg.ReportFontPath == "" {
		return report.DefaultFontPaths
	}
	return append([]string{cfg.ReportFontPath}, report.DefaultFontPaths...)
}
