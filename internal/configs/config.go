package configs

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"valuation-service/pkg/ml/boosting"
	"valuation-service/pkg/ml/encoding"
	"valuation-service/pkg/ml/pipeline"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverOracle   = "oracle"
)

type RESTConfig struct {
	Port               string
	CORSAllowedOrigins []string
}

type ArtifactConfig struct {
	Path string
}

type AuthConfig struct {
	// APIKeys is the raw "key:identity,..." list; parsed by the service at start.
	APIKeys string
}

type TrainingConfig struct {
	TrainPath  string
	TestPath   string
	Target     string
	TrainQuery string
	TestQuery  string
}

type DatabaseConfig struct {
	Enabled  bool
	Driver   string
	User     string
	Password string
	Host     string
	Port     int
	Name     string
	SSLMode  string
}

// ModelConfig holds the hyperparameters of the valuation pipeline.
type ModelConfig struct {
	LearningRate    float64
	NEstimators     int
	MaxDepth        int
	Loss            string
	MinSamplesSplit int
	MinSamplesLeaf  int
	Remainder       string

	EncoderMinSamplesLeaf int
	EncoderSmoothing      float64
}

type RabbitMQConfig struct {
	Enabled bool
	URL     string
}

type StdoutLogConfig struct {
	Level string
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string
}

// AppConfig is shared by the trainer and the valuation service.
type AppConfig struct {
	AppName      string
	Rest         RESTConfig
	Artifact     ArtifactConfig
	Auth         AuthConfig
	Training     TrainingConfig
	Database     DatabaseConfig
	Model        ModelConfig
	RabbitMQ     RabbitMQConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
}

// DefaultModelConfig is the configuration the production model is trained with.
func DefaultModelConfig() ModelConfig {
	p := boosting.DefaultParams()
	enc := encoding.DefaultOptions()
	return ModelConfig{
		LearningRate:          p.LearningRate,
		NEstimators:           p.NEstimators,
		MaxDepth:              p.MaxDepth,
		Loss:                  string(p.Loss),
		MinSamplesSplit:       p.MinSamplesSplit,
		MinSamplesLeaf:        p.MinSamplesLeaf,
		Remainder:             string(pipeline.RemainderDrop),
		EncoderMinSamplesLeaf: enc.MinSamplesLeaf,
		EncoderSmoothing:      enc.Smoothing,
	}
}

func (m ModelConfig) Params() boosting.Params {
	return boosting.Params{
		LearningRate:    m.LearningRate,
		NEstimators:     m.NEstimators,
		MaxDepth:        m.MaxDepth,
		Loss:            boosting.Loss(strings.ToLower(strings.TrimSpace(m.Loss))),
		MinSamplesSplit: m.MinSamplesSplit,
		MinSamplesLeaf:  m.MinSamplesLeaf,
	}
}

func (m ModelConfig) EncoderOptions() encoding.Options {
	return encoding.Options{MinSamplesLeaf: m.EncoderMinSamplesLeaf, Smoothing: m.EncoderSmoothing}
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath...)
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		log.Printf("Info: could not load .env file (path: %v): %v. Using process environment.\n", envPath, err)
	}

	cfg := &AppConfig{}

	cfg.AppName = getEnvAsString("APP_NAME", "valuation-service")

	cfg.Rest.Port = getEnvAsString("PORT", "8000")
	cfg.Rest.CORSAllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"})

	cfg.Artifact.Path = getEnvAsString("ARTIFACT_PATH", "property_valuation_pipeline.gob")
	if cfg.Artifact.Path == "" {
		return nil, fmt.Errorf("ARTIFACT_PATH must not be empty")
	}

	cfg.Auth.APIKeys = os.Getenv("API_KEYS")

	cfg.Training.TrainPath = getEnvAsString("TRAIN_PATH", "data/train.csv")
	cfg.Training.TestPath = getEnvAsString("TEST_PATH", "data/test.csv")
	cfg.Training.Target = getEnvAsString("TARGET_COLUMN", "price")
	cfg.Training.TrainQuery = os.Getenv("TRAIN_QUERY")
	cfg.Training.TestQuery = os.Getenv("TEST_QUERY")

	cfg.Database.Enabled = getEnvAsBool("DB_ENABLED", false)
	if cfg.Database.Enabled {
		cfg.Database.Driver = strings.ToLower(getEnvAsString("DB_DRIVER", DriverPostgres))
		defaultPort := 5432
		switch cfg.Database.Driver {
		case DriverPostgres:
		case DriverOracle:
			defaultPort = 1521
		default:
			return nil, fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverOracle, cfg.Database.Driver)
		}
		cfg.Database.User = os.Getenv("DB_USER")
		cfg.Database.Password = os.Getenv("DB_PASSWORD")
		cfg.Database.Host = os.Getenv("DB_HOST")
		cfg.Database.Port = getEnvAsInt("DB_PORT", defaultPort)
		cfg.Database.Name = os.Getenv("DB_NAME")
		cfg.Database.SSLMode = getEnvAsString("DB_SSLMODE", "disable")
	}

	def := DefaultModelConfig()
	cfg.Model = ModelConfig{
		LearningRate:          getEnvAsFloat("MODEL_LEARNING_RATE", def.LearningRate),
		NEstimators:           getEnvAsInt("MODEL_N_ESTIMATORS", def.NEstimators),
		MaxDepth:              getEnvAsInt("MODEL_MAX_DEPTH", def.MaxDepth),
		Loss:                  getEnvAsString("MODEL_LOSS", def.Loss),
		MinSamplesSplit:       def.MinSamplesSplit,
		MinSamplesLeaf:        def.MinSamplesLeaf,
		Remainder:             getEnvAsString("MODEL_REMAINDER", def.Remainder),
		EncoderMinSamplesLeaf: getEnvAsInt("ENCODER_MIN_SAMPLES_LEAF", def.EncoderMinSamplesLeaf),
		EncoderSmoothing:      getEnvAsFloat("ENCODER_SMOOTHING", def.EncoderSmoothing),
	}

	cfg.RabbitMQ.Enabled = getEnvAsBool("RABBITMQ_ENABLED", false)
	if cfg.RabbitMQ.Enabled {
		cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
		if cfg.RabbitMQ.URL == "" {
			return nil, fmt.Errorf("RABBITMQ_URL environment variable is required when RABBITMQ_ENABLED is true")
		}
	}

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}
		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "info")

	return cfg, nil
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt falls back to defaultValue, with a warning, when the variable is not an int.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(strings.TrimSpace(valueStr))
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(valueStr), 64)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as float: %v. Using default value: %g\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(strings.TrimSpace(valStr))
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}

// getEnvAsList splits a comma separated variable, dropping empty items.
func getEnvAsList(key string, defaultValue []string) []string {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(valStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
