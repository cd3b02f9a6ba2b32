// Package config provides configuration structures and validation for the application.
// It handles environment-based configuration for all major components including
// server settings, database connections, message queues, and the matching
// engine's calibration constants.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds the complete application configuration with settings for all components.
// Each field represents a major subsystem's configuration (e.g., HTTP server, databases,
// message queues, matching calibration) and is validated during application startup.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Kafka       KafkaConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Matching    MatchingConfig
	Embedding   EmbeddingConfig
	WorkerPool  WorkerPoolConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// KafkaConfig contains Kafka configuration
type KafkaConfig struct {
	Brokers           string
	RunRequestTopic   string // Topic carrying matching-run requests
	OutcomeTopic      string // Topic carrying match outcomes for notification delivery
	NumPartitions     int    // Number of partitions for topics
	ReplicationFactor int    // Replication factor for topics
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	StartOffset       int64
	DLQTopic          string // Topic for Dead Letter Queue
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string        // Database connection string
	MaxConns        int32         // Maximum number of open connections
	MinConns        int32         // Maximum number of idle connections
	ConnMaxLifetime time.Duration // Maximum lifetime of a connection
	ConnMaxIdleTime time.Duration // Maximum idle time of a connection
	MigrationsPath  string        // Path to migration files
}

// MongoDBConfig contains MongoDB configuration
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// MatchingConfig contains the matching engine's calibration constants.
// The cut-point thresholds are calibrated against the combined score the
// weights produce; changing one side usually requires re-tuning the other.
type MatchingConfig struct {
	AutoMatchThreshold    float64       // Combined score at or above which a pair is committed without review
	SuggestThreshold      float64       // Combined score at or above which a suggestion is persisted
	AmountWeight          float64       // Weight of the amount sub-score in the combined score
	CurrencyWeight        float64       // Weight of the currency sub-score
	DateWeight            float64       // Weight of the date-proximity sub-score
	SemanticWeight        float64       // Weight of the embedding-similarity sub-score
	AmountTolerance       float64       // Relative amount difference beyond which the amount score is zero
	CurrencyMismatchScore float64       // Score granted when both currencies are present but differ
	DateWindowDays        int           // Day offset beyond which the date score is zero
	ReverseBatchSize      int           // Documents evaluated per concurrent batch in the reverse pass
	RunTimeout            time.Duration // Overall duration budget for a single matching run
}

// EmbeddingConfig contains embedding provider configuration
type EmbeddingConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration // Per-lookup timeout
}

// WorkerPoolConfig contains worker pool configuration
type WorkerPoolConfig struct {
	Size int // Maximum number of workers in the pool
}

// validate performs comprehensive validation of all configuration values,
// ensuring they meet minimum requirements and logical constraints
func (c *Config) validate() error {
	var validationErrors []string

	// Validate Server config
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	// Validate Kafka config
	if len(c.Kafka.Brokers) == 0 {
		validationErrors = append(validationErrors, "KAFKA_BROKERS is required")
	}
	if c.Kafka.RunRequestTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_RUN_REQUEST_TOPIC is required")
	}
	if c.Kafka.OutcomeTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_OUTCOME_TOPIC is required")
	}
	if c.Kafka.ConsumerGroup == "" {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_GROUP is required")
	}
	if c.Kafka.MinBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MIN_BYTES must be greater than 0")
	}
	if c.Kafka.MaxBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_BYTES must be greater than 0")
	}
	if c.Kafka.MaxWait <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_WAIT must be greater than 0")
	}
	if c.Kafka.DLQTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_DLQ_TOPIC is required")
	}

	// Validate PostgreSQL config
	if c.Postgres.URL == "" {
		validationErrors = append(validationErrors, "POSTGRES_URL is required")
	}
	if c.Postgres.MaxConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if c.Postgres.MinConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if c.Postgres.ConnMaxLifetime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if c.Postgres.ConnMaxIdleTime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Validate MongoDB config
	if c.MongoDB.URI == "" {
		validationErrors = append(validationErrors, "MONGO_URI is required")
	}
	if c.MongoDB.Database == "" {
		validationErrors = append(validationErrors, "MONGO_DATABASE is required")
	}
	if c.MongoDB.Timeout <= 0 {
		validationErrors = append(validationErrors, "MONGO_TIMEOUT must be greater than 0")
	}
	if c.MongoDB.MaxPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MinPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MIN_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MaxConnIdleTime <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Validate Matching config
	if c.Matching.AutoMatchThreshold <= 0 || c.Matching.AutoMatchThreshold > 1 {
		validationErrors = append(validationErrors, "MATCHING_AUTO_MATCH_THRESHOLD must be in (0, 1]")
	}
	if c.Matching.SuggestThreshold <= 0 || c.Matching.SuggestThreshold > 1 {
		validationErrors = append(validationErrors, "MATCHING_SUGGEST_THRESHOLD must be in (0, 1]")
	}
	if c.Matching.SuggestThreshold >= c.Matching.AutoMatchThreshold {
		validationErrors = append(validationErrors, "MATCHING_SUGGEST_THRESHOLD must be below MATCHING_AUTO_MATCH_THRESHOLD")
	}
	if c.Matching.AmountWeight < 0 || c.Matching.CurrencyWeight < 0 || c.Matching.DateWeight < 0 || c.Matching.SemanticWeight < 0 {
		validationErrors = append(validationErrors, "matching weights must not be negative")
	}
	if c.Matching.AmountWeight+c.Matching.CurrencyWeight+c.Matching.DateWeight+c.Matching.SemanticWeight <= 0 {
		validationErrors = append(validationErrors, "matching weights must sum to a positive value")
	}
	if c.Matching.AmountTolerance <= 0 {
		validationErrors = append(validationErrors, "MATCHING_AMOUNT_TOLERANCE must be greater than 0")
	}
	if c.Matching.CurrencyMismatchScore < 0 || c.Matching.CurrencyMismatchScore >= 1 {
		validationErrors = append(validationErrors, "MATCHING_CURRENCY_MISMATCH_SCORE must be in [0, 1)")
	}
	if c.Matching.DateWindowDays <= 0 {
		validationErrors = append(validationErrors, "MATCHING_DATE_WINDOW_DAYS must be greater than 0")
	}
	if c.Matching.ReverseBatchSize <= 0 {
		validationErrors = append(validationErrors, "MATCHING_REVERSE_BATCH_SIZE must be greater than 0")
	}
	if c.Matching.RunTimeout <= 0 {
		validationErrors = append(validationErrors, "MATCHING_RUN_TIMEOUT must be greater than 0")
	}

	// Validate Embedding config
	if c.Embedding.Model == "" {
		validationErrors = append(validationErrors, "EMBEDDING_MODEL is required")
	}
	if c.Embedding.Timeout <= 0 {
		validationErrors = append(validationErrors, "EMBEDDING_TIMEOUT must be greater than 0")
	}

	// Validate WorkerPool config
	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
