// Package app contains the application setup for the inventory service.
package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/inventory/internal/product/config"
	"github.com/abgdnv/inventory/internal/product/handler"
	"github.com/abgdnv/inventory/internal/product/notify"
	"github.com/abgdnv/inventory/internal/product/service"
	"github.com/abgdnv/inventory/internal/product/store"
	"github.com/abgdnv/inventory/pkg/server"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
)

type Dependencies struct {
	Store          store.ProductStore
	ProductService service.ProductService
	Health         *health.Server
	Logger         *slog.Logger
	// MetricsHandler serves the Prometheus scrape endpoint when metrics are enabled.
	MetricsHandler http.Handler
	MetricsPath    string
}

// SetupDependencies builds the store, registers the logging and metrics listeners and wraps it in the service.
func SetupDependencies(productStore store.ProductStore, meter metric.Meter, logger *slog.Logger) (*Dependencies, error) {
	productStore.Subscribe(notify.LoggingListener(logger))
	metricsListener, err := notify.MetricsListener(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to set up metrics listener: %w", err)
	}
	productStore.Subscribe(metricsListener)

	return &Dependencies{
		Store:          productStore,
		ProductService: service.NewService(productStore, logger),
		Health:         health.NewServer(),
		Logger:         logger,
	}, nil
}

// SetupHttpHandler initializes the routes and middleware for the inventory service.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the inventory service.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := handler.NewHandler(deps.ProductService, deps.Logger)
	productHandler.RegisterRoutes(mux)
	if deps.MetricsHandler != nil {
		mux.Handle(deps.MetricsPath, deps.MetricsHandler)
	}
}

// SetupHttpServer creates and configures an HTTP server for the inventory service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, "inventory", mux)
}

// SetupGrpcServer initializes the gRPC server exposing the health service.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) *grpc.Server {
	return server.NewGRPCServer(deps.Logger, reflectionEnabled, server.WithHealth(deps.Health))
}
