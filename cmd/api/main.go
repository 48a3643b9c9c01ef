package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"ave-shopify-connector/internal/application"
	apiinfra "ave-shopify-connector/internal/infrastructure/api"
	"ave-shopify-connector/internal/infrastructure/crm"
	"ave-shopify-connector/internal/infrastructure/metrics"
	shopifyinfra "ave-shopify-connector/internal/infrastructure/shopify"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("⚠️  Warning: .env file not found")
	}

	crmBaseURL := os.Getenv("CRM_BASE_URL")
	if crmBaseURL == "" {
		crmBaseURL = crm.DefaultBaseURL
	}

	apiVersion := os.Getenv("SHOPIFY_API_VERSION")
	if apiVersion == "" {
		apiVersion = shopifyinfra.DefaultAPIVersion
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	concurrency := application.DefaultFanOutConcurrency
	if raw := os.Getenv("FANOUT_CONCURRENCY"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			logger.Fatal().Str("value", raw).Msg("FANOUT_CONCURRENCY must be a positive integer")
		}
		concurrency = parsed
	}

	gateway := crm.NewGateway(crmBaseURL, crm.NewHTTPClient(nil, logger), logger)
	storeClient := shopifyinfra.NewClient(apiVersion, nil, logger)
	collector := metrics.NewCollector(prometheus.DefaultRegisterer)

	productService := application.NewProductService(gateway, storeClient, collector, logger, concurrency)
	orderService := application.NewOrderService(gateway, storeClient, collector, logger, concurrency)

	server := apiinfra.NewServer(productService, orderService, logger)

	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().
			Str("port", port).
			Str("crm", crmBaseURL).
			Str("shopifyApiVersion", apiVersion).
			Int("fanoutConcurrency", concurrency).
			Msg("🚀 Ave Shopify connector listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
