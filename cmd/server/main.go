package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"userauth/docs"
	"userauth/internal/auth"
	"userauth/internal/cache"
	"userauth/internal/config"
	"userauth/internal/db"
	"userauth/internal/handler"
	"userauth/internal/logger"
	"userauth/internal/repository"
	"userauth/internal/router"
	"userauth/internal/service"
)

// @title User Auth API
// @version 1.0
// @description User accounts with bearer-token login and logout.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("server", "info").Fatal().Err(err).Msg("load config")
	}
	log := logger.New("server", cfg.LogLevel)

	gormDB, err := db.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database init")
	}

	if cfg.ResetDB {
		log.Warn().Msg("RESET_DB=true detected, dropping all tables")
	}
	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(context.Background()); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, user cache disabled")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	tokenRepo := repository.NewAuthTokenRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.SecretKeyBase)
	issuer := auth.NewTokenIssuer(jwtService, tokenRepo)

	// Initialize services
	userService := service.NewUserService(userRepo, cacheClient)
	sessionService := service.NewSessionService(userRepo, issuer)

	var gateOpts []auth.GateOption
	if cfg.VerifySignature {
		gateOpts = append(gateOpts, auth.WithSignatureVerification(jwtService))
	}
	gate := auth.NewGate(tokenRepo, userRepo, gateOpts...)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, log, router.Handlers{
		Users:    handler.NewUserHandler(userService, sessionService),
		Sessions: handler.NewSessionHandler(sessionService),
		Home:     handler.NewHomeHandler(),
	}, gate)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.ServerPort
	go func() {
		log.Info().Str("addr", addr).Str("swagger", "/swagger/index.html").Msg("server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server start")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	log.Info().Msg("server stopped")
}
