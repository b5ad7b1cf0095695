package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"valuation-service/internal/adapters/artifactstore"
	"valuation-service/internal/adapters/rest"
	"valuation-service/internal/configs"
	"valuation-service/internal/contextkeys"
	"valuation-service/internal/core/domain"
	"valuation-service/internal/core/port"
	"valuation-service/internal/core/usecase"

	"github.com/fluent/fluent-logger-golang/fluent"
)

// App is the valuation HTTP service.
type App struct {
	config    *configs.AppConfig
	apiServer *rest.Server
	handler   http.Handler
	model     *domain.TrainedModel

	logger       port.LoggerPort
	fluentClient *fluent.Fluent
}

func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}
	return NewAppWithConfig(appConfig)
}

// NewAppWithConfig fails when the API keys are unusable or when no trained
// artifact can be loaded.
func NewAppWithConfig(appConfig *configs.AppConfig) (*App, error) {
	baseLogger, fluentClient, err := newBaseLogger(appConfig)
	if err != nil {
		return nil, err
	}
	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})

	fail := func(msg string, err error) (*App, error) {
		appLogger.Error(msg, err, nil)
		if fluentClient != nil {
			fluentClient.Close()
		}
		return nil, fmt.Errorf("%s: %w", msg, err)
	}

	apiKeys, err := domain.ParseAPIKeys(appConfig.Auth.APIKeys)
	if err != nil {
		return fail("failed to load API keys", err)
	}
	appLogger.Info("API key registry loaded", port.Fields{"keys": apiKeys.Len()})

	store := artifactstore.NewFileStore(appConfig.Artifact.Path)
	loadCtx := contextkeys.ContextWithLogger(context.Background(), baseLogger)
	model, err := store.Load(loadCtx)
	if err != nil {
		return fail("failed to load model artifact", err)
	}
	appLogger.Info("Model artifact loaded", port.Fields{
		"location":   store.Location(),
		"model_id":   model.ID.String(),
		"trained_at": model.TrainedAt.Format(time.RFC3339),
		"target":     model.Target,
	})

	predictUC, err := usecase.NewPredictPriceUseCase(model)
	if err != nil {
		return fail("failed to create prediction use case", err)
	}

	handlers := rest.NewValuationHandlers(predictUC, predictUC.ModelID(), rest.NewMetrics())
	router := rest.NewRouter(handlers, apiKeys, appConfig.Rest.CORSAllowedOrigins, baseLogger)

	return &App{
		config:       appConfig,
		apiServer:    rest.NewServer(appConfig.Rest.Port, router, baseLogger),
		handler:      router,
		model:        model,
		logger:       appLogger,
		fluentClient: fluentClient,
	}, nil
}

// Handler exposes the router, mainly for in-process tests.
func (a *App) Handler() http.Handler { return a.handler }

// Run serves until SIGINT/SIGTERM or a server failure.
func (a *App) Run() error {
	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.apiServer.Stop(shutdownCtx); err != nil {
			a.logger.Error("Error during API server shutdown", err, nil)
		}

		a.logger.Info("Application shut down gracefully.", nil)

		if a.fluentClient != nil {
			if err := a.fluentClient.Close(); err != nil {
				fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
			}
		}
	}()

	a.logger.Info("Application is starting...", port.Fields{"model_id": a.model.ID.String()})

	serverErrors := make(chan error, 1)
	go func() {
		if err := a.apiServer.Start(); err != nil {
			serverErrors <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	a.logger.Info("Application running. Waiting for signals or server error...", port.Fields{"port": a.config.Rest.Port})
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
		return nil
	case err := <-serverErrors:
		a.logger.Error("HTTP server failed, shutting down", err, nil)
		return err
	}
}
