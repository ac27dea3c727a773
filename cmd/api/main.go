package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/cagmc/jwtauth/internal/authz"
	"github.com/cagmc/jwtauth/internal/config"
	"github.com/cagmc/jwtauth/internal/events"
	"github.com/cagmc/jwtauth/internal/httpserver"
	"github.com/cagmc/jwtauth/internal/metrics"
	authmw "github.com/cagmc/jwtauth/internal/middleware"
	"github.com/cagmc/jwtauth/internal/repo"
	"github.com/cagmc/jwtauth/internal/service"
	"github.com/cagmc/jwtauth/internal/token"
	pkgdb "github.com/cagmc/jwtauth/pkg/db"
	"github.com/cagmc/jwtauth/pkg/logging"
	loggingmw "github.com/cagmc/jwtauth/pkg/middleware/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(initCtx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		cancel()
		log.Fatalf("db init error: %v", err)
	}
	store := repo.New(db)
	if cfg.Database.Seed {
		err = store.Seed(initCtx)
	} else {
		err = store.Migrate(initCtx)
	}
	cancel()
	if err != nil {
		log.Fatalf("db schema error: %v", err)
	}

	clock := time.Now
	issuer, err := token.NewIssuer(token.Options{
		Secret:           []byte(cfg.JWT.Secret),
		Issuer:           cfg.JWT.Issuer,
		Audience:         cfg.JWT.Audience,
		RefreshTokenSize: cfg.JWT.RefreshTokenSize,
		Now:              clock,
	})
	if err != nil {
		log.Fatalf("token issuer: %v", err)
	}

	publisher, err := events.New(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		log.Fatalf("kafka: %v", err)
	}

	m := metrics.New(cfg.ServiceName)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Server.IdleTimeout = 60 * time.Second

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))
	if len(cfg.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.CORSOrigins,
			AllowCredentials: true,
		}))
	}

	var csrf *authmw.CSRFOptions
	if cfg.CSRF.Enabled {
		csrf = &authmw.CSRFOptions{
			CookieName:    cfg.CSRF.CookieName,
			HeaderName:    cfg.CSRF.Header,
			SessionCookie: cfg.Cookie.Name,
			Domain:        cfg.Cookie.Domain,
			Secure:        cfg.Cookie.Secure,
		}
	}

	httpserver.Register(e, &httpserver.Deps{
		AccountHandler: &httpserver.AccountHTTP{
			Svc: &service.AccountService{
				Store:      store,
				Tokens:     issuer,
				Events:     publisher,
				Metrics:    m,
				AccessTTL:  cfg.JWT.AccessTTL,
				RefreshTTL: cfg.JWT.RefreshTTL,
				CookieTTL:  cfg.Cookie.TTL,
				Now:        clock,
			},
			Cookie: httpserver.CookieOptions{
				Name:   cfg.Cookie.Name,
				Domain: cfg.Cookie.Domain,
				Secure: cfg.Cookie.Secure,
			},
		},
		MagicalHandler: &httpserver.MagicalObjectHTTP{Svc: &service.MagicalObjectService{Store: store}},
		Tokens:         issuer,
		Authorizer:     &authmw.Authorizer{Evaluator: authz.NewEvaluator(), Metrics: m},
		Metrics:        m,
		CSRF:           csrf,
		Ready:          func(ctx context.Context) error { return pkgdb.Ping(ctx, db) },
	})

	go func() {
		logger.Info("http_server_started", "addr", cfg.HTTPAddr)
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("echo start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting_down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("echo_shutdown_failed", "error", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Error("kafka_close_failed", "error", err)
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Error("db_close_failed", "error", err)
	}

	logger.Info("shutdown_complete")
}
