package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"detailgen/internal/appstate"
	"detailgen/internal/export"
	"detailgen/internal/http/handlers"
	httpapi "detailgen/internal/http/httpapi"
	"detailgen/internal/infra"
	"detailgen/internal/infra/geoip"
	"detailgen/internal/store/kv"
	"detailgen/internal/studio"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	backend, closeBackend, err := kv.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
	}
	defer closeBackend()

	state := appstate.New(appstate.Options{KV: backend, Logger: &logger})
	if err := state.Load(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to load app state")
	}

	var routerOpts httpapi.Options
	resolver, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		routerOpts.Locator = resolver
		defer resolver.Close()
	}

	providerClient := &http.Client{Timeout: cfg.GenAITimeout}
	svc := studio.NewService(studio.Options{
		Settings: state,
		History:  state,
		Defaults: studio.Defaults{
			GeminiAPIKey:  cfg.GeminiAPIKey,
			GeminiBaseURL: cfg.GeminiBaseURL,
			OpenAIAPIKey:  cfg.OpenAIAPIKey,
			OpenAIBaseURL: cfg.OpenAIBaseURL,
			OpenAIModel:   cfg.OpenAIModel,
		},
		HTTPClient:  providerClient,
		Logger:      &logger,
		Concurrency: cfg.ImageConcurrency,
	})
	exporter := export.New(export.Options{
		HTTPClient: &http.Client{Timeout: time.Minute},
		Logger:     &logger,
	})

	app := handlers.NewApp(cfg, &logger, state, svc, exporter)
	router := httpapi.NewRouter(app, routerOpts)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().
			Str("addr", server.Addr()).
			Str("store", cfg.StoreDriver).
			Str("provider", string(state.Settings().APIProvider)).
			Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
