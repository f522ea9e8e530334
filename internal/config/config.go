package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendDynamoDB = "dynamodb"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	Store   StoreConfig
	Email   EmailConfig
	AWS     AWSConfig
	HTTP    HTTPConfig
	Log     LogConfig
	Metrics MetricsConfig
}

type StoreConfig struct {
	Backend          string
	OrdersTable      string
	IdempotencyTable string
	MongoURL         string
	DBName           string
	MongoCollection  string
	PostgresDSN      string
	AutoMigrate      bool
}

type EmailConfig struct {
	ResendAPIKey string
	Sender       string
	QueueURL     string
	Timeout      time.Duration
}

type AWSConfig struct {
	Region           string
	EndpointOverride string
}

type HTTPConfig struct {
	Addr        string
	RunLocal    bool
	CORSOrigins []string
}

type LogConfig struct {
	Level string
	Env   string
}

type MetricsConfig struct {
	Namespace string
}

// Load reads an optional .env file, then the environment.
func Load(envFiles ...string) (Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load(envFiles...)

	cfg := Config{
		Store: StoreConfig{
			Backend:          strings.ToLower(getEnv("STORE_BACKEND", BackendDynamoDB)),
			OrdersTable:      getEnv("ORDERS_TABLE", "orders"),
			IdempotencyTable: getEnv("IDEMPOTENCY_TABLE", ""),
			MongoURL:         getEnv("MONGO_URL", "mongodb://localhost:27017"),
			DBName:           getEnv("DB_NAME", "kashmkari"),
			MongoCollection:  getEnv("MONGO_COLLECTION", "orders"),
			PostgresDSN:      getEnv("PG_DSN", ""),
			AutoMigrate:      getEnvAsBool("AUTO_MIGRATE", false),
		},
		Email: EmailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			Sender:       getEnv("SENDER_EMAIL", "onboarding@resend.dev"),
			QueueURL:     getEnv("EMAIL_QUEUE_URL", ""),
			Timeout:      getEnvAsDuration("EMAIL_TIMEOUT", 10*time.Second),
		},
		AWS: AWSConfig{
			Region:           getEnv("AWS_REGION", "us-east-1"),
			EndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		},
		HTTP: HTTPConfig{
			Addr:        getEnv("HTTP_ADDR", ":8080"),
			RunLocal:    getEnvAsBool("RUN_LOCAL", false),
			CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"*"}),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			Env:   getEnv("ENV", "production"),
		},
		Metrics: MetricsConfig{
			Namespace: getEnv("METRICS_NAMESPACE", ""),
		},
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Store.Backend {
	case BackendDynamoDB, BackendMemory:
	case BackendMongo:
		if c.Store.MongoURL == "" {
			return fmt.Errorf("MONGO_URL is required for the %s backend", BackendMongo)
		}
	case BackendPostgres:
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("PG_DSN is required for the %s backend", BackendPostgres)
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
