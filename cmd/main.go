package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"
	_ "time/tzdata"

	"activity_service/internal/api"
	"activity_service/internal/config"
	"activity_service/internal/core"
	"activity_service/internal/domain/repository"
	"activity_service/internal/infrastructure/geocode"
	"activity_service/internal/infrastructure/httpx"
	"activity_service/internal/infrastructure/weather"
	"activity_service/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logger := logging.Logger()

	clientWithTimeout := func(timeout time.Duration) *http.Client {
		return httpx.NewClient(httpx.Options{
			Timeout:      timeout,
			RetryMax:     cfg.HTTP.RetryMax,
			RetryWaitMin: cfg.HTTP.RetryWaitMin,
			RetryWaitMax: cfg.HTTP.RetryWaitMax,
			UserAgent:    cfg.HTTP.UserAgent,
		}, logger)
	}

	// Инициализация репозиториев
	overpassRepo := repository.NewOverpassRepository(repository.OverpassSettings{
		Endpoint:         cfg.Overpass.URL,
		MaxParallel:      cfg.Overpass.MaxParallel,
		MinInterval:      cfg.Overpass.MinInterval,
		FailureThreshold: cfg.Overpass.FailureThreshold,
		BreakerTimeout:   cfg.Overpass.BreakerTimeout,
	}, clientWithTimeout(cfg.Overpass.Timeout), logger)

	var roads core.RoadProvider = overpassRepo
	if cfg.Roads.Source == "postgis" {
		postgisRepo, err := repository.NewPostGISRoadRepository(cfg.Roads.PostgresURL)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to connect to postgis")
		}
		defer postgisRepo.Close()
		roads = postgisRepo
	}

	var owm *weather.OWMClient
	if cfg.Weather.OWMAPIKey != "" {
		owm = weather.NewOWMClient(cfg.Weather.OWMURL, cfg.Weather.OWMAPIKey, clientWithTimeout(cfg.Weather.Timeout))
	}
	weatherProvider := weather.NewProvider(owm, logger)

	var (
		geocoder   core.Geocoder
		tzResolver core.TimezoneResolver
	)
	switch cfg.Geocode.Provider {
	case "google":
		google, err := geocode.NewGoogleGeocoder(cfg.Geocode.MapsAPIKey, clientWithTimeout(cfg.Geocode.Timeout))
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to create google geocoder")
		}
		geocoder = google
		tzResolver = google
	default:
		geocoder = geocode.NewNominatimGeocoder(cfg.Geocode.NominatimURL, clientWithTimeout(cfg.Geocode.Timeout))
	}

	// Создание сервиса рекомендаций
	service := core.NewRecommendationService(
		overpassRepo,
		roads,
		weatherProvider,
		geocoder,
		tzResolver,
		core.ServiceConfig{
			DefaultRadiusKm: cfg.Search.DefaultRadiusKm,
			MinRadiusKm:     cfg.Search.MinRadiusKm,
			MaxRadiusKm:     cfg.Search.MaxRadiusKm,
			DefaultLimit:    cfg.Search.DefaultLimit,
			MaxLimit:        cfg.Search.MaxLimit,
			DefaultTimezone: cfg.Search.DefaultTimezone,
		},
		logger,
	)

	// Настройка HTTP-обработчиков
	handler := api.NewHandler(service, logger)
	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      api.NewRouter(handler, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Запуск сервера
	errCh := make(chan error, 1)
	go func() {
		logging.Info().
			Str("addr", server.Addr).
			Str("roads", cfg.Roads.Source).
			Str("geocoder", cfg.Geocode.Provider).
			Bool("owm", owm != nil).
			Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logging.Error().Err(err).Msg("server failed")
		}
	case <-ctx.Done():
		logging.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}
}
