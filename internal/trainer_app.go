package internal

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"valuation-service/internal/adapters/artifactstore"
	"valuation-service/internal/adapters/csvsource"
	"valuation-service/internal/adapters/oracle"
	"valuation-service/internal/adapters/postgres"
	rabbitmq_adapter "valuation-service/internal/adapters/rabbitmq"
	"valuation-service/internal/configs"
	"valuation-service/internal/constants"
	"valuation-service/internal/contextkeys"
	"valuation-service/internal/core/domain"
	"valuation-service/internal/core/port"
	"valuation-service/internal/core/port/usecases_port"
	"valuation-service/internal/core/usecase"
	pgclient "valuation-service/pkg/postgres"
	"valuation-service/pkg/rabbitmq/rabbitmq_common"
	"valuation-service/pkg/rabbitmq/rabbitmq_producer"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/google/uuid"
	"golang.org/x/term"
)

// TrainerApp runs one load, train, evaluate and publish cycle.
type TrainerApp struct {
	config *configs.AppConfig

	loadUC     usecases_port.LoadDataUseCasePort
	trainUC    usecases_port.TrainModelUseCasePort
	evaluateUC usecases_port.EvaluateModelUseCasePort
	reporter   port.TrainingReporterPort

	connManager   *rabbitmq_common.ConnectionManager
	eventProducer *rabbitmq_producer.Publisher

	baseLogger   port.LoggerPort
	logger       port.LoggerPort
	fluentClient *fluent.Fluent
}

func NewTrainerApp() (*TrainerApp, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}
	if appConfig.Database.Enabled && appConfig.Database.Password == "" {
		if err := promptPassword(&appConfig.Database); err != nil {
			return nil, err
		}
	}
	return NewTrainerAppWithConfig(appConfig)
}

// promptPassword asks for DB_PASSWORD on an interactive terminal; elsewhere
// the connector reports the missing password itself.
func promptPassword(db *configs.DatabaseConfig) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil
	}
	fmt.Fprintf(os.Stderr, "Password for %s@%s: ", db.User, db.Host)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to read database password: %w", err)
	}
	db.Password = strings.TrimRight(string(secret), "\r\n")
	return nil
}

func NewTrainerAppWithConfig(appConfig *configs.AppConfig) (*TrainerApp, error) {
	baseLogger, fluentClient, err := newBaseLogger(appConfig)
	if err != nil {
		return nil, err
	}
	appLogger := baseLogger.WithFields(port.Fields{"component": "trainer"})

	a := &TrainerApp{
		config:       appConfig,
		baseLogger:   baseLogger,
		logger:       appLogger,
		fluentClient: fluentClient,
	}

	var connector port.DatasetConnectorPort
	if appConfig.Database.Enabled {
		connector = newDatasetConnector(appConfig.Database)
		appLogger.Info("Training data source: database", port.Fields{
			"driver": appConfig.Database.Driver, "host": appConfig.Database.Host, "database": appConfig.Database.Name,
		})
	} else {
		appLogger.Info("Training data source: csv files", nil)
	}

	a.loadUC = usecase.NewLoadDataUseCase(csvsource.NewReader(), connector)
	a.trainUC = usecase.NewTrainModelUseCase(
		artifactstore.NewFileStore(appConfig.Artifact.Path),
		usecase.TrainingSettings{
			Params:    appConfig.Model.Params(),
			Remainder: appConfig.Model.Remainder,
			Encoder:   appConfig.Model.EncoderOptions(),
		},
	)
	a.evaluateUC = usecase.NewEvaluateModelUseCase()

	if appConfig.RabbitMQ.Enabled {
		if err := a.initReporter(); err != nil {
			// the report is optional, training goes on without it
			appLogger.Error("Training reports disabled", err, nil)
		}
	}

	return a, nil
}

func newDatasetConnector(db configs.DatabaseConfig) port.DatasetConnectorPort {
	if db.Driver == configs.DriverOracle {
		return oracle.NewDatasetConnector(oracle.Config{
			Host:     db.Host,
			Port:     db.Port,
			Service:  db.Name,
			User:     db.User,
			Password: db.Password,
		})
	}
	return postgres.NewDatasetConnector(pgclient.Config{
		User:           db.User,
		Password:       db.Password,
		Host:           db.Host,
		Port:           strconv.Itoa(db.Port),
		Database:       db.Name,
		SSLMode:        db.SSLMode,
		MaxConns:       2,
		ConnectTimeout: 10 * time.Second,
	})
}

func (a *TrainerApp) initReporter() error {
	connManager, err := rabbitmq_common.NewConnectionManager(
		rabbitmq_common.Config{URL: a.config.RabbitMQ.URL},
		rabbitmq_adapter.NewPkgLoggerBridge(a.baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"})),
	)
	if err != nil {
		return fmt.Errorf("failed to create connection manager: %w", err)
	}

	producer, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
		ExchangeName:             constants.ExchangeValuationEvents,
		ExchangeType:             constants.ExchangeValuationEventsType,
		DurableExchange:          true,
		DeclareExchangeIfMissing: true,
		Logger:                   rabbitmq_adapter.NewPkgLoggerBridge(a.baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})),
	}, connManager)
	if err != nil {
		connManager.Close()
		return fmt.Errorf("failed to create event producer: %w", err)
	}

	reporter, err := rabbitmq_adapter.NewModelTrainedPublisher(producer, constants.RoutingKeyModelTrained)
	if err != nil {
		producer.Close()
		connManager.Close()
		return err
	}

	a.connManager = connManager
	a.eventProducer = producer
	a.reporter = reporter
	a.logger.Info("RabbitMQ training reporter initialized", port.Fields{"exchange": constants.ExchangeValuationEvents})
	return nil
}

// Train loads both tables, fits and persists the pipeline, scores it on the
// test table and publishes the report when a reporter is configured.
func (a *TrainerApp) Train(ctx context.Context) (*domain.TrainedModel, *domain.EvaluationReport, error) {
	traceID := uuid.New().String()
	runLogger := a.baseLogger.WithFields(port.Fields{"trace_id": traceID})
	ctx = contextkeys.ContextWithLogger(ctx, runLogger)
	ctx = contextkeys.ContextWithTraceID(ctx, traceID)

	train, test, err := a.loadUC.Execute(ctx, usecases_port.LoadDataRequest{
		TrainPath:  a.config.Training.TrainPath,
		TestPath:   a.config.Training.TestPath,
		TrainQuery: a.config.Training.TrainQuery,
		TestQuery:  a.config.Training.TestQuery,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("load data: %w", err)
	}

	model, err := a.trainUC.Execute(ctx, train, a.config.Training.Target)
	if err != nil {
		return nil, nil, fmt.Errorf("train model: %w", err)
	}

	report, err := a.evaluateUC.Execute(ctx, model, test)
	if err != nil {
		return model, nil, fmt.Errorf("evaluate model: %w", err)
	}

	if a.reporter != nil {
		if err := a.reporter.ReportModelTrained(ctx, model, report); err != nil {
			runLogger.Error("Failed to publish training report", err, nil)
		}
	}
	return model, report, nil
}

func (a *TrainerApp) Run() error {
	defer a.Close()

	a.logger.Info("Training run started", nil)
	model, report, err := a.Train(context.Background())
	if err != nil {
		a.logger.Error("Training run failed", err, nil)
		return err
	}

	a.logger.Info("Training run finished", port.Fields{
		"model_id": model.ID.String(),
		"artifact": a.config.Artifact.Path,
		"rmse":     report.RMSE,
		"mape":     report.MAPE,
		"mae":      report.MAE,
	})
	fmt.Printf("RMSE: %.4f\nMAPE: %.4f\nMAE: %.4f\n", report.RMSE, report.MAPE, report.MAE)
	return nil
}

func (a *TrainerApp) Close() {
	if a.eventProducer != nil {
		if err := a.eventProducer.Close(); err != nil {
			a.logger.Error("Error closing event producer", err, nil)
		}
	}
	if a.connManager != nil {
		if err := a.connManager.Close(); err != nil {
			a.logger.Error("Error closing RabbitMQ connection", err, nil)
		}
	}
	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
		}
	}
}
