package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppName                       string `envconfig:"APP_NAME" default:"freundebuch-api"`
	Port                          int    `envconfig:"PORT" default:"3004"`
	LogLevel                      string `envconfig:"LOG_LEVEL" default:"info"`
	PrettyLogs                    bool   `envconfig:"PRETTY_LOGS" default:"false"`
	HttpServerWriteTimeoutSeconds int    `envconfig:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" default:"10"`
	HttpServerReadTimeoutSeconds  int    `envconfig:"HTTP_SERVER_READ_TIMEOUT_SECONDS" default:"10"`
	HttpServerIdleTimeoutSeconds  int    `envconfig:"HTTP_SERVER_IDLE_TIMEOUT_SECONDS" default:"10"`
	StartupMaxAttempts            int    `envconfig:"STARTUP_MAX_ATTEMPTS" default:"5"`

	// PostgreSQL
	DatabaseDriver                string        `envconfig:"DB_DRIVER" default:"postgres"`
	DatabaseHost                  string        `envconfig:"DB_HOST" default:""`
	DatabasePort                  string        `envconfig:"DB_PORT" default:"5432"`
	DatabaseUserName              string        `envconfig:"DB_USER_NAME" default:""`
	DatabasePassword              string        `envconfig:"DB_PASSWORD" default:""`
	DatabaseName                  string        `envconfig:"DB_NAME" default:"freundebuch"`
	DatabaseSSLMode               string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DatabaseMaxOpenConns          int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	DatabaseMaxIdleConns          int           `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`
	DatabaseConnMaxLifetime       time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"10s"`
	DatabaseMigrationFolderPath   string        `envconfig:"DB_MIGRATION_FOLDER_PATH" default:"db/pg"`
	DatabaseMigrationVersion      int           `envconfig:"DB_MIGRATION_VERSION" default:"0"`
	DatabaseMigrationForce        int           `envconfig:"DB_MIGRATION_FORCE" default:"0"`
	DatabaseMigrationAutoRollback bool          `envconfig:"DB_MIGRATION_AUTO_ROLLBACK" default:"true"`

	// Redis (network graph cache)
	RedisEnabled    bool          `envconfig:"REDIS_ENABLED" default:"false"`
	RedisHost       string        `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort       int           `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword   string        `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB         int           `envconfig:"REDIS_DB" default:"0"`
	NetworkCacheTTL time.Duration `envconfig:"NETWORK_CACHE_TTL" default:"60s"`

	// Kafka (domain events)
	KafkaEnabled      bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	KafkaBrokers      []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaOutputTopic  string   `envconfig:"KAFKA_OUTPUT_TOPIC" default:"freundebuch-events"`
	KafkaBatchSize    int      `envconfig:"KAFKA_BATCH_SIZE" default:"100"`
	KafkaBatchTimeout int      `envconfig:"KAFKA_BATCH_TIMEOUT_MS" default:"100"`
	KafkaRequiredAcks int      `envconfig:"KAFKA_REQUIRED_ACKS" default:"1"`
	KafkaCompression  string   `envconfig:"KAFKA_COMPRESSION" default:"snappy"`

	// Graph database mirror (Memgraph/Neo4j over bolt)
	GraphDBEnabled  bool   `envconfig:"GRAPH_DB_ENABLED" default:"false"`
	GraphDBHost     string `envconfig:"GRAPH_DB_HOST" default:"localhost"`
	GraphDBPort     int    `envconfig:"GRAPH_DB_PORT" default:"7687"`
	GraphDBUser     string `envconfig:"GRAPH_DB_USER" default:""`
	GraphDBPassword string `envconfig:"GRAPH_DB_PASSWORD" default:""`

	// Auth
	AuthEnabled   bool   `envconfig:"AUTH_ENABLED" default:"false"`
	AuthIssuerURL string `envconfig:"AUTH_ISSUER_URL" default:""`
	AuthClientID  string `envconfig:"AUTH_CLIENT_ID" default:""`

	// Tracing
	TracingEnabled      bool   `envconfig:"TRACING_ENABLED" default:"false"`
	TracingOTLPEndpoint string `envconfig:"TRACING_OTLP_ENDPOINT" default:"localhost:4317"`
	TracingOTLPProtocol string `envconfig:"TRACING_OTLP_PROTOCOL" default:"grpc"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
