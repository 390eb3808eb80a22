package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"

	"github.com/studymate/auth-backend/internal/cache"
	"github.com/studymate/auth-backend/internal/config"
	"github.com/studymate/auth-backend/internal/database"
	"github.com/studymate/auth-backend/internal/dto"
	"github.com/studymate/auth-backend/internal/handlers"
	"github.com/studymate/auth-backend/internal/jobs"
	"github.com/studymate/auth-backend/internal/logging"
	"github.com/studymate/auth-backend/internal/mail"
	"github.com/studymate/auth-backend/internal/middleware"
	"github.com/studymate/auth-backend/internal/repository"
	"github.com/studymate/auth-backend/internal/routes"
	"github.com/studymate/auth-backend/internal/services"
)

func main() {
	logging.Setup(os.Getenv("LOG_LEVEL"))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	// LOG_LEVEL may come from .env, which is only read by Load.
	stdout := logging.Setup(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Database
	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	systemLogs := repository.NewSystemLogRepository(db)
	pgLogHandler := logging.NewPGHandler(systemLogs)
	slog.SetDefault(slog.New(logging.NewMultiHandler(stdout, pgLogHandler)))

	// Redis is optional: without it revocations are read from Postgres only and
	// rate limits are kept per instance.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = cache.Connect(context.Background(), cache.DefaultConfig(cfg.RedisURL))
		if err != nil {
			slog.Warn("redis unavailable, continuing without cache", "error", err)
			redisClient = nil
		}
	}

	// Repositories
	users := repository.NewUserRepository(db)
	socials := repository.NewSocialAccountRepository(db)
	codes := repository.NewVerificationCodeRepository(db)
	invalidTokens := repository.NewInvalidTokenRepository(db)

	// Services
	tokens, err := services.NewTokenIssuer(services.TokenIssuerConfig{
		AccessSecret:  cfg.JWTSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.JWTAccessExpiry,
		RefreshTTL:    cfg.JWTRefreshExpiry,
	})
	if err != nil {
		slog.Error("token issuer setup failed", "error", err)
		os.Exit(1)
	}

	var revokedCache services.RevocationCache
	if redisClient != nil {
		revokedCache = cache.NewRevokedTokens(redisClient)
	}
	revocations := services.NewRevocationList(invalidTokens, revokedCache)

	sender, err := newMailSender(cfg)
	if err != nil {
		slog.Error("mail sender setup failed", "error", err)
		os.Exit(1)
	}

	verification := services.NewVerificationService(codes, users, sender, cfg.VerificationCodeTTL)
	sessions := services.NewSessionService(
		users,
		services.NewPasswordHasher(cfg.BcryptCost),
		tokens,
		revocations,
		verification,
		services.SessionServiceConfig{RotateRefresh: cfg.RotateRefresh},
	)
	oauth := services.NewOAuthService(users, socials, sessions, oauthAdapters(cfg)...)

	// Background cleanup
	cleanup := jobs.NewCleanup(cfg.CleanupInterval,
		jobs.Sweep{Name: "invalid_tokens", Store: invalidTokens},
		jobs.Sweep{Name: "verification_codes", Store: codes},
		jobs.Sweep{Name: "system_logs", Store: systemLogs, Retention: cfg.LogRetention},
	)
	jobsCtx, stopJobs := context.WithCancel(context.Background())
	var jobsWG sync.WaitGroup
	jobsWG.Add(1)
	go func() {
		defer jobsWG.Done()
		cleanup.Run(jobsCtx)
	}()

	// Handlers
	var redisProbe handlers.Probe
	if redisClient != nil {
		redisProbe = cache.Healthcheck(redisClient)
	}
	h := routes.Handlers{
		Auth:   handlers.NewAuthHandler(sessions, oauth, verification),
		User:   handlers.NewUserHandler(sessions),
		Health: handlers.NewHealthHandler(func(ctx context.Context) error {
			return database.Ping(ctx, db)
		}, redisProbe),
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "studymate-auth",
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(cfg.CORSOrigins))
	app.Use(middleware.SecurityHeaders())

	opts := routes.Options{
		Protected:     middleware.JWTProtected(tokens.AccessSecret(), revocations),
		APIRateLimit:  cfg.APIRateLimit,
		AuthRateLimit: cfg.AuthRateLimit,
	}
	if redisClient != nil {
		opts.LimiterStorage = cache.NewStorage(redisClient, "ratelimit:")
	}
	routes.Setup(app, h, opts)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	stopJobs()
	jobsWG.Wait()
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}
	if err := database.Close(db); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}

func newMailSender(cfg *config.Config) (mail.Sender, error) {
	switch cfg.MailDriver {
	case "postmark":
		return mail.NewPostmarkSender(mail.PostmarkConfig{
			ServerToken:  cfg.PostmarkServerToken,
			AccountToken: cfg.PostmarkAccountToken,
			From:         cfg.MailFrom,
		})
	case "log":
		slog.Warn("MAIL_DRIVER=log: verification codes are written to the log, not mailed")
		return mail.NewLogSender(slog.Default()), nil
	default:
		return nil, errors.New("unknown mail driver " + cfg.MailDriver)
	}
}

func oauthAdapters(cfg *config.Config) []services.ProviderAdapter {
	var adapters []services.ProviderAdapter
	if cfg.NaverEnabled() {
		adapters = append(adapters, services.NewNaverAdapter(services.NaverConfig{
			ClientID:     cfg.NaverClientID,
			ClientSecret: cfg.NaverClientSecret,
			RedirectURL:  cfg.NaverRedirectURI,
		}))
	}
	if cfg.KakaoEnabled() {
		adapters = append(adapters, services.NewKakaoAdapter(services.KakaoConfig{
			ClientID:     cfg.KakaoClientID,
			ClientSecret: cfg.KakaoClientSecret,
			RedirectURL:  cfg.KakaoRedirectURI,
		}))
	}
	for _, a := range adapters {
		slog.Info("oauth provider enabled", "provider", a.ProviderID())
	}
	return adapters
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "서버 오류가 발생했습니다."
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= fiber.StatusInternalServerError {
		slog.Error("unhandled server error",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.Locals("requestid"),
			"error", err.Error(),
		)
		message = "서버 오류가 발생했습니다."
	}

	return c.Status(code).JSON(dto.ErrorResponse{Message: message})
}
