package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/minhngocdo/herbamart-storefront/api/routes"
	"github.com/minhngocdo/herbamart-storefront/internal/auth"
	"github.com/minhngocdo/herbamart-storefront/internal/cart"
	"github.com/minhngocdo/herbamart-storefront/internal/catalog"
	"github.com/minhngocdo/herbamart-storefront/pkg/config"
	"github.com/minhngocdo/herbamart-storefront/pkg/logger"
	"github.com/minhngocdo/herbamart-storefront/pkg/metrics"
	pkgredis "github.com/minhngocdo/herbamart-storefront/pkg/redis"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

const shutdownGrace = 15 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}

	logg := logger.New(logger.Options{
		ServiceName: "herbamart-storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := pkgredis.New(ctx, cfg.Redis)
	if err != nil {
		logg.Error(ctx, "connecting to redis", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	cartStorage, err := cart.NewRedisStorage(redisClient)
	if err != nil {
		logg.Error(ctx, "building cart storage", err)
		os.Exit(1)
	}

	cartStore, err := cart.NewStore(cartStorage, logg, metrics.NewCartMetrics(prometheus.DefaultRegisterer))
	if err != nil {
		logg.Error(ctx, "building cart store", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{JWT: cfg.JWT, Password: cfg.Password})
	if err != nil {
		logg.Error(ctx, "building auth service", err)
		os.Exit(1)
	}

	catalogClient, err := catalog.NewClient(cfg.Upstream, logg)
	if err != nil {
		logg.Error(ctx, "building catalog client", err)
		os.Exit(1)
	}

	handler := routes.New(routes.Params{
		Config:      cfg,
		Logger:      logg,
		Redis:       redisClient,
		CartStore:   cartStore,
		AuthService: authService,
		Catalog:     catalogClient,
		GateMetrics: metrics.NewGateMetrics(prometheus.DefaultRegisterer),
	})

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(logg.WithField(ctx, "port", cfg.App.Port), "server.listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "server.failed", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "server.shutting_down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "server.shutdown_failed", err)
		}
	}
}
