// cmd/api/main.go
// Matchmaking API server

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/imadgeboyega/matchmaking-backend/internal/access"
	"github.com/imadgeboyega/matchmaking-backend/internal/admin"
	"github.com/imadgeboyega/matchmaking-backend/internal/auth"
	"github.com/imadgeboyega/matchmaking-backend/internal/block"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/database"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/logger"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/middleware"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/retry"
	"github.com/imadgeboyega/matchmaking-backend/internal/config"
	"github.com/imadgeboyega/matchmaking-backend/internal/interest"
	"github.com/imadgeboyega/matchmaking-backend/internal/messaging"
	"github.com/imadgeboyega/matchmaking-backend/internal/notification"
	"github.com/imadgeboyega/matchmaking-backend/internal/profile"
	"github.com/imadgeboyega/matchmaking-backend/internal/storage"
	"github.com/imadgeboyega/matchmaking-backend/internal/support"
	"github.com/imadgeboyega/matchmaking-backend/internal/users"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

var startTime = time.Now()

func main() {
	// 1. Load environment and configuration
	envErr := godotenv.Load()
	cfg := config.Load()

	// 2. Logger
	log := logger.Build(logger.Config{
		Level:       cfg.LogLevel,
		Encoding:    cfg.LogEncoding,
		Development: cfg.IsDevelopment(),
	})
	defer log.Sync()
	logger.ReplaceGlobal(log)

	if envErr != nil {
		log.Info("no .env file found, using environment variables")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}
	log.Info("configuration loaded",
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.Port),
		zap.Bool("use_s3", cfg.UseS3))

	ctx := context.Background()

	// 3. Database
	db, err := database.NewPostgresDBFromURL(ctx, cfg.DatabaseURL, database.DefaultPool())
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	log.Info("database connected")

	// 4. Migrations
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// 5. Redis session store
	redisClient, err := database.NewRedisClientFromURL(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("redis connected")

	// 6. Media storage
	media, err := newMediaStore(cfg)
	if err != nil {
		log.Fatal("failed to initialize media storage", zap.Error(err))
	}

	// 7. Outbound notices
	notifier, err := newNotifier(cfg)
	if err != nil {
		log.Fatal("failed to initialize notification providers", zap.Error(err))
	}
	log.Info("notification providers ready",
		zap.String("email", cfg.EmailProvider),
		zap.String("sms", cfg.SMSProvider))

	// 8. Services
	policy := retry.Policy{
		MaxAttempts: cfg.RetryMaxAttempts,
		BaseDelay:   cfg.RetryBaseDelay,
		MaxDelay:    cfg.RetryMaxDelay,
	}
	app := newApp(cfg, db, redisClient, media, notifier, policy)

	if err := app.admins.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal("failed to ensure admin account", zap.Error(err))
	}

	// 9. Routes
	router := app.routes()
	if !cfg.UseS3 {
		router.PathPrefix("/uploads/").Handler(
			http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.LocalUploadDir))))
	}
	router.Use(middleware.RequestID, middleware.Logging, middleware.Metrics)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", middleware.RequestIDHeader},
		AllowCredentials: true,
	})

	// 10. HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      corsHandler.Handler(router),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr), zap.String("base_url", cfg.BaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received")

	// in-flight long-polls get up to one poll timeout to finish
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.PollTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	log.Info("server exited")
}

// app holds the wired handlers for every feature
type app struct {
	mw        *auth.Middleware
	auth      *auth.Handler
	interests *interest.Handler
	messages  *messaging.Handler
	blocks    *block.Handler
	notices   *notification.Handler
	support   *support.Handler
	profiles  *profile.Handler
	admin     *admin.Handler
	admins    *admin.Service
}

func newApp(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, media storage.MediaStore, notifier *notification.Notifier, policy retry.Policy) *app {
	sessions := auth.NewSessions(auth.NewRedisStore(redisClient), auth.SessionConfig{
		Secret:     cfg.SessionSecret,
		CookieName: cfg.SessionCookieName,
		MaxAge:     cfg.SessionMaxAge,
		Secure:     cfg.IsProduction(),
	})
	mw := auth.NewMiddleware(sessions)

	userRepo := users.NewPostgresRepository(db)
	messageRepo := messaging.NewPostgresRepository(db)
	reportRepo := block.NewPostgresRepository(db)
	gate := access.NewGate(userRepo, policy)

	messagingService := messaging.NewService(messageRepo, userRepo, gate, media, policy, messaging.Config{
		Poll:          messaging.PollConfig{Timeout: cfg.PollTimeout, Interval: cfg.PollInterval},
		MaxUploadSize: cfg.MaxUploadSize,
	})
	adminService := admin.NewService(admin.NewPostgresRepository(db), userRepo, reportRepo, media, notifier, policy, cfg.BCryptCost)

	return &app{
		mw:        mw,
		auth:      auth.NewHandler(auth.NewService(userRepo, media, policy, cfg.BCryptCost, cfg.MaxUploadSize), sessions, mw, cfg.MaxUploadSize),
		interests: interest.NewHandler(interest.NewService(userRepo, policy)),
		messages:  messaging.NewHandler(messagingService, cfg.MaxUploadSize),
		blocks:    block.NewHandler(block.NewService(userRepo, reportRepo, policy)),
		notices:   notification.NewHandler(notification.NewService(userRepo, messagingService, policy), sessions),
		support:   support.NewHandler(support.NewService(support.NewPostgresRepository(db), userRepo, notifier, policy)),
		profiles:  profile.NewHandler(profile.NewService(userRepo, media, policy, cfg.MaxUploadSize), cfg.MaxUploadSize),
		admin:     admin.NewHandler(adminService, sessions, mw),
		admins:    adminService,
	}
}

func (a *app) routes() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	a.auth.RegisterRoutes(router)
	profile.RegisterRoutes(router, a.profiles, a.mw)
	interest.RegisterRoutes(router, a.interests, a.mw)
	messaging.RegisterRoutes(router, a.messages, a.mw)
	block.RegisterRoutes(router, a.blocks, a.mw)
	a.notices.RegisterRoutes(router, a.mw)
	support.RegisterRoutes(router, a.support, a.mw)
	a.admin.RegisterRoutes(router)

	return router
}

func newMediaStore(cfg *config.Config) (storage.MediaStore, error) {
	if cfg.UseS3 {
		s3Store, err := storage.NewS3Store(cfg.S3BucketName, cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		return s3Store, nil
	}
	if err := os.MkdirAll(cfg.LocalUploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return storage.NewLocalStore(cfg.LocalUploadDir, cfg.BaseURL), nil
}

func newNotifier(cfg *config.Config) (*notification.Notifier, error) {
	providers := notification.ProviderConfig{
		EmailProvider:    cfg.EmailProvider,
		EmailFrom:        cfg.EmailFrom,
		EmailFromName:    "Matchmaking",
		SendGridAPIKey:   cfg.SendGridAPIKey,
		SMTPHost:         cfg.SMTPHost,
		SMTPPort:         cfg.SMTPPort,
		SMTPUser:         cfg.SMTPUser,
		SMTPPassword:     cfg.SMTPPassword,
		SMSProvider:      cfg.SMSProvider,
		TwilioAccountSID: cfg.TwilioAccountSID,
		TwilioAuthToken:  cfg.TwilioAuthToken,
		TwilioFromNumber: cfg.TwilioFromNumber,
	}
	email, err := notification.NewEmailSender(providers)
	if err != nil {
		return nil, err
	}
	sms, err := notification.NewSMSSender(providers)
	if err != nil {
		return nil, err
	}
	return notification.NewNotifier(email, sms, cfg.SupportInbox), nil
}

// healthCheck returns server health status
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().Unix(),
		"uptime": time.Since(startTime).String(),
	})
}
