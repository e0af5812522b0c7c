// Package main initializes and starts the portfolio API server, setting up
// configuration, logging, database and Redis connections, repositories,
// services, the contact mailer, handlers, and optional TLS.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/portfolio-api/internal/auth"
	"github.com/atinyakov/portfolio-api/internal/blacklist"
	"github.com/atinyakov/portfolio-api/internal/certgen"
	"github.com/atinyakov/portfolio-api/internal/config"
	"github.com/atinyakov/portfolio-api/internal/db"
	"github.com/atinyakov/portfolio-api/internal/logger"
	"github.com/atinyakov/portfolio-api/internal/mailer"
	"github.com/atinyakov/portfolio-api/internal/middleware"
	"github.com/atinyakov/portfolio-api/internal/models"
	"github.com/atinyakov/portfolio-api/internal/repository"
	"github.com/atinyakov/portfolio-api/internal/server/handler/http"
	"github.com/atinyakov/portfolio-api/internal/service"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// shutdownTimeout bounds the graceful drain of in-flight requests.
const shutdownTimeout = 10 * time.Second

func main() {
	// Parse command-line, config file and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize PostgreSQL connection and apply migrations.
	postgresDB, err := db.InitPostgres(ctx, options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer func() { _ = postgresDB.Close() }()

	// Pick the token revocation store.
	var (
		revoked     service.Blacklist
		redisClient redis.UniversalClient
	)
	if options.RedisURL != "" {
		client, err := blacklist.Connect(ctx, options.RedisURL)
		if err != nil {
			zapLogger.Fatal("cannot connect to redis", zap.Error(err))
		}
		defer func() { _ = client.Close() }()
		redisClient = client
		revoked = blacklist.NewRedisStore(client)
		zapLogger.Info("using redis token blacklist")
	} else {
		store := blacklist.NewMemoryStore()
		blacklist.StartSweeper(ctx, store, options.BlacklistSweepInterval, zapLogger)
		revoked = store
		zapLogger.Info("using in-memory token blacklist")
	}

	tokens, err := auth.NewTokenManager([]byte(options.JWTSecret), options.JWTTTL)
	if err != nil {
		zapLogger.Fatal("cannot init token manager", zap.Error(err))
	}

	// Initialize repositories.
	userRepo := repository.NewPostgresUserRepository(postgresDB)
	profileRepo := repository.NewPostgresProfileRepository(postgresDB)
	resumeRepo := repository.NewPostgresResumeRepository(postgresDB)
	projectRepo := repository.NewPostgresProjectRepository(postgresDB)
	contactRepo := repository.NewPostgresContactRepository(postgresDB)

	// Initialize the contact mailer.
	sender, err := mailer.NewSMTPSender(options.MailService, options.MailHost, options.MailPort, zapLogger)
	if err != nil {
		zapLogger.Fatal("cannot init mailer", zap.Error(err))
	}
	templates, err := mailer.NewRenderer(options.TemplateDir)
	if err != nil {
		zapLogger.Fatal("cannot load email templates", zap.Error(err))
	}

	// Initialize business-logic services.
	authService := service.NewAuthService(userRepo, auth.NewBcryptHasher(auth.DefaultCost), tokens, revoked)
	profileService := service.NewProfileService(profileRepo)
	resumeService := service.NewResumeService(profileRepo, resumeRepo)
	projectService := service.NewProjectService(profileRepo, projectRepo)
	contactService := service.NewContactService(profileRepo, contactRepo, sender, templates, service.ContactConfig{
		Primary:              models.EmailCredentials{Email: options.NoReplyEmail, Passcode: options.NoReplyPasscode},
		Secondary:            models.EmailCredentials{Email: options.NoReplyEmailSecondary, Passcode: options.NoReplyPasscodeSecondary},
		PersistOnSendFailure: options.PersistContactOnSendFailure,
	})

	if options.AdminEmail != "" {
		if err := authService.EnsureAdmin(ctx, options.AdminEmail, options.AdminPassword, "Admin", "Admin"); err != nil {
			zapLogger.Fatal("cannot seed admin account", zap.Error(err))
		}
	}

	// Build the router with middleware and routes.
	router, err := http.NewRouter(http.Handlers{
		Auth:     &http.AuthHandler{AuthService: authService, Log: zapLogger},
		Profiles: &http.ProfileHandler{ProfileService: profileService, Log: zapLogger},
		Resumes:  &http.ResumeHandler{ResumeService: resumeService, Log: zapLogger},
		Projects: &http.ProjectHandler{ProjectService: projectService, Log: zapLogger},
		Contact:  &http.ContactHandler{ContactService: contactService, Log: zapLogger},
		Health:   &http.HealthHandler{DB: postgresDB, Redis: redisClient},
	}, middleware.NewGuard(authService, zapLogger), http.RouterOptions{
		BasePath:         options.BasePath,
		OpenSignup:       options.SignupMode == config.SignupOpen,
		CORSOrigins:      options.CORSOrigins,
		IsDevelopment:    options.IsDevelopment(),
		RateLimitLogin:   options.RateLimitLogin,
		RateLimitContact: options.RateLimitContact,
	}, zapLogger)
	if err != nil {
		zapLogger.Fatal("cannot build router", zap.Error(err))
	}

	server := &nethttp.Server{
		Addr:              options.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	useTLS := options.TLSCert != ""
	if useTLS {
		// Load server TLS certificate and key.
		server.TLSConfig, err = certgen.LoadServerTLS(options.TLSCert, options.TLSKey)
		if err != nil {
			zapLogger.Fatal("failed to load server TLS cert/key", zap.Error(err))
		}
	}

	serveErr := make(chan error, 1)
	go func() {
		zapLogger.Info("starting server",
			zap.String("addr", options.Address),
			zap.String("base_path", options.BasePath),
			zap.Bool("tls", useTLS),
			zap.String("signup_mode", options.SignupMode),
		)
		if useTLS {
			serveErr <- server.ListenAndServeTLS("", "")
		} else {
			serveErr <- server.ListenAndServe()
		}
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, nethttp.ErrServerClosed) {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		zapLogger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}
