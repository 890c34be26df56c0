package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Skotchmaster/product_api/internal/config"
	"github.com/Skotchmaster/product_api/internal/db"
	"github.com/Skotchmaster/product_api/internal/events"
	"github.com/Skotchmaster/product_api/internal/httpserver"
	"github.com/Skotchmaster/product_api/internal/logging"
	loggingmw "github.com/Skotchmaster/product_api/internal/middleware/logging"
	"github.com/Skotchmaster/product_api/internal/repo"
	"github.com/Skotchmaster/product_api/internal/search"
	"github.com/Skotchmaster/product_api/internal/security"
	"github.com/Skotchmaster/product_api/internal/service"
)

func serveCommand(opts *config.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the product catalog API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, *opts)
		},
	}
}

func runServe(cmd *cobra.Command, opts config.Options) (runErr error) {
	cfg, err := config.LoadWith(opts)
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Log.Level)
	slog.SetDefault(logger)
	ctx := logging.IntoContext(cmd.Context(), logger)

	logger.Info("configuration loaded",
		"environment", cfg.App.Environment,
		"database_driver", cfg.Database.Driver,
		"database_url", config.MaskURL(cfg.Database.URL),
		"elasticsearch_url", config.MaskURL(cfg.Elasticsearch.URL),
		"kafka_brokers", cfg.Kafka.Brokers,
	)

	gdb, err := db.Open(ctx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			runErr = errors.Join(runErr, err)
		}
	}()

	users, err := security.DefaultUsers()
	if err != nil {
		return err
	}
	userStore, err := security.NewUserStore(users...)
	if err != nil {
		return err
	}

	secret := []byte(cfg.Security.Session.Secret)
	if len(secret) == 0 {
		if secret, err = security.NewRandomSecret(); err != nil {
			return fmt.Errorf("generate session secret: %w", err)
		}
		logger.Warn("session secret not configured, sessions will not survive a restart")
	}
	sessions := security.NewSessions(secret, cfg.Security.Session.TTL, cfg.Security.Cookie.Secure)

	var publisher events.Publisher = events.Noop{}
	if brokers := cfg.Kafka.BrokerList(); len(brokers) > 0 {
		producer, err := events.NewProducer(brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		defer func() {
			if err := producer.Close(); err != nil {
				runErr = errors.Join(runErr, err)
			}
		}()
		publisher = producer
	}

	r := &repo.GormRepo{DB: gdb}
	svc := &service.CatalogService{Repo: r, Search: r, Events: publisher}
	if cfg.Elasticsearch.URL != "" {
		es, err := search.NewClient(ctx, cfg.Elasticsearch)
		if err != nil {
			return err
		}
		svc.Search = es
		svc.Index = es
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	deps := &httpserver.Deps{
		CatalogHandler: &httpserver.CatalogHTTP{Svc: svc},
		InfoHandler:    &httpserver.InfoHTTP{App: cfg.App, DB: cfg.DB},
		AuthHandler:    &httpserver.AuthHTTP{Users: userStore, Sessions: sessions},
		HealthHandler:  &httpserver.HealthHTTP{DB: gdb},
		Gate:           &security.Gate{Users: userStore, Sessions: sessions, Rules: security.DefaultRules()},
		SecureCookies:  cfg.Security.Cookie.Secure,
	}
	if cfg.Console.Enabled {
		deps.ConsoleHandler = &httpserver.ConsoleHTTP{DB: gdb}
	}
	httpserver.Register(e, deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           e,
		ReadTimeout:       cfg.Server.Timeout.Read,
		WriteTimeout:      cfg.Server.Timeout.Write,
		IdleTimeout:       cfg.Server.Timeout.Idle,
		ReadHeaderTimeout: cfg.Server.Timeout.ReadHeader,
	}

	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		logger.Info("starting server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	grp.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Shutdown.Timeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := grp.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
