package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_HappyPath(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	tempConfigsSubDir := filepath.Join(tempDir, "configs")
	err = os.Mkdir(tempConfigsSubDir, 0755)
	require.NoError(t, err)

	testAppName := "TestApp"
	testPort := 9090
	testLogLevel := "debug"
	testKafkaBrokers := "kafka1:9092,kafka2:9092"

	envContent := fmt.Sprintf(
		"APP_NAME=%s\nSERVER_PORT=%d\nLOG_LEVEL=%s\nKAFKA_BROKERS=%s\n",
		testAppName, testPort, testLogLevel, testKafkaBrokers,
	)
	envFilePath := filepath.Join(tempConfigsSubDir, "test_happy.env")
	err = os.WriteFile(envFilePath, []byte(envContent), 0644)
	require.NoError(t, err)

	originalWD, err := os.Getwd()
	require.NoError(t, err)
	defer func() {
		_ = os.Chdir(originalWD)
	}()

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	cfg, err := LoadConfig("test_happy")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, testAppName, cfg.Application.Name)
	assert.Equal(t, testPort, cfg.Server.Port)
	assert.Equal(t, testLogLevel, cfg.Logging.Level)
	assert.Equal(t, testKafkaBrokers, cfg.Kafka.Brokers)

	assert.Equal(t, "development", cfg.Application.Env)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "matching_run_requests", cfg.Kafka.RunRequestTopic)
	assert.Equal(t, "match_outcomes", cfg.Kafka.OutcomeTopic)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, 10, cfg.WorkerPool.Size)

	// The documented calibration baseline
	assert.Equal(t, 0.85, cfg.Matching.AutoMatchThreshold)
	assert.Equal(t, 0.60, cfg.Matching.SuggestThreshold)
	assert.Equal(t, 0.35, cfg.Matching.AmountWeight)
	assert.Equal(t, 30, cfg.Matching.DateWindowDays)
	assert.Equal(t, 2*time.Minute, cfg.Matching.RunTimeout)

	cfgWithName, err := LoadConfigWithName("configs/test_happy") // Viper will look for configs/test_happy.env
	require.NoError(t, err)
	require.NotNil(t, cfgWithName)
	assert.Equal(t, testAppName, cfgWithName.Application.Name)

	// Test LoadConfigWithNameAndType
	cfgWithNameAndType, err := LoadConfigWithNameAndType("configs/test_happy", "env")
	require.NoError(t, err)
	require.NotNil(t, cfgWithNameAndType)
	assert.Equal(t, testAppName, cfgWithNameAndType.Application.Name)
}

func defaultTestConfig() *Config {
	v := viper.New()
	setDefaults(v)
	return &Config{
		Application: ApplicationConfig{Env: v.GetString("APP_ENV"), Name: v.GetString("APP_NAME")},
		Logging:     LoggingConfig{Level: v.GetString("LOG_LEVEL")},
		Server: ServerConfig{
			Port:            v.GetInt("SERVER_PORT"),
			ShutdownTimeout: v.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
			ReadTimeout:     v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("SERVER_WRITE_TIMEOUT"),
			IdleTimeout:     v.GetDuration("SERVER_IDLE_TIMEOUT"),
		},
		Kafka: KafkaConfig{
			Brokers:           v.GetString("KAFKA_BROKERS"),
			RunRequestTopic:   v.GetString("KAFKA_RUN_REQUEST_TOPIC"),
			OutcomeTopic:      v.GetString("KAFKA_OUTCOME_TOPIC"),
			NumPartitions:     v.GetInt("KAFKA_NUM_PARTITIONS"),
			ReplicationFactor: v.GetInt("KAFKA_REPLICATION_FACTOR"),
			ConsumerGroup:     v.GetString("KAFKA_CONSUMER_GROUP"),
			MinBytes:          v.GetInt("KAFKA_CONSUMER_MIN_BYTES"),
			MaxBytes:          v.GetInt("KAFKA_CONSUMER_MAX_BYTES"),
			MaxWait:           v.GetDuration("KAFKA_CONSUMER_MAX_WAIT"),
			StartOffset:       v.GetInt64("KAFKA_CONSUMER_START_OFFSET"),
			DLQTopic:          v.GetString("KAFKA_DLQ_TOPIC"),
		},
		Postgres: PostgresConfig{
			URL:             v.GetString("POSTGRES_URL"),
			MaxConns:        int32(v.GetInt("POSTGRES_MAX_CONNS")),
			MinConns:        int32(v.GetInt("POSTGRES_MIN_CONNS")),
			ConnMaxLifetime: v.GetDuration("POSTGRES_MAX_CONN_LIFETIME"),
			ConnMaxIdleTime: v.GetDuration("POSTGRES_MAX_CONN_IDLE_TIME"),
			MigrationsPath:  v.GetString("POSTGRES_MIGRATIONS_PATH"),
		},
		MongoDB: MongoDBConfig{
			URI:             v.GetString("MONGO_URI"),
			Database:        v.GetString("MONGO_DATABASE"),
			Timeout:         v.GetDuration("MONGO_TIMEOUT"),
			MaxPoolSize:     uint64(v.GetInt("MONGO_MAX_POOL_SIZE")),
			MinPoolSize:     uint64(v.GetInt("MONGO_MIN_POOL_SIZE")),
			MaxConnIdleTime: v.GetDuration("MONGO_MAX_CONN_IDLE_TIME"),
		},
		Matching: MatchingConfig{
			AutoMatchThreshold:    v.GetFloat64("MATCHING_AUTO_MATCH_THRESHOLD"),
			SuggestThreshold:      v.GetFloat64("MATCHING_SUGGEST_THRESHOLD"),
			AmountWeight:          v.GetFloat64("MATCHING_AMOUNT_WEIGHT"),
			CurrencyWeight:        v.GetFloat64("MATCHING_CURRENCY_WEIGHT"),
			DateWeight:            v.GetFloat64("MATCHING_DATE_WEIGHT"),
			SemanticWeight:        v.GetFloat64("MATCHING_SEMANTIC_WEIGHT"),
			AmountTolerance:       v.GetFloat64("MATCHING_AMOUNT_TOLERANCE"),
			CurrencyMismatchScore: v.GetFloat64("MATCHING_CURRENCY_MISMATCH_SCORE"),
			DateWindowDays:        v.GetInt("MATCHING_DATE_WINDOW_DAYS"),
			ReverseBatchSize:      v.GetInt("MATCHING_REVERSE_BATCH_SIZE"),
			RunTimeout:            v.GetDuration("MATCHING_RUN_TIMEOUT"),
		},
		Embedding: EmbeddingConfig{
			APIKey:  v.GetString("EMBEDDING_API_KEY"),
			BaseURL: v.GetString("EMBEDDING_BASE_URL"),
			Model:   v.GetString("EMBEDDING_MODEL"),
			Timeout: v.GetDuration("EMBEDDING_TIMEOUT"),
		},
		WorkerPool: WorkerPoolConfig{
			Size: v.GetInt("WORKER_POOL_SIZE"),
		},
	}
}

func TestConfig_Validate_HappyPath(t *testing.T) {
	cfg := defaultTestConfig()
	err := cfg.validate()
	assert.NoError(t, err, "Default config should be valid")
}

func TestConfig_Validate_Failures(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(cfg *Config)
		errorHas string
	}{
		{
			name:     "suggest threshold at or above auto threshold",
			mutate:   func(cfg *Config) { cfg.Matching.SuggestThreshold = cfg.Matching.AutoMatchThreshold },
			errorHas: "MATCHING_SUGGEST_THRESHOLD must be below MATCHING_AUTO_MATCH_THRESHOLD",
		},
		{
			name: "all weights zero",
			mutate: func(cfg *Config) {
				cfg.Matching.AmountWeight = 0
				cfg.Matching.CurrencyWeight = 0
				cfg.Matching.DateWeight = 0
				cfg.Matching.SemanticWeight = 0
			},
			errorHas: "matching weights must sum to a positive value",
		},
		{
			name:     "negative weight",
			mutate:   func(cfg *Config) { cfg.Matching.DateWeight = -0.1 },
			errorHas: "matching weights must not be negative",
		},
		{
			name:     "zero date window",
			mutate:   func(cfg *Config) { cfg.Matching.DateWindowDays = 0 },
			errorHas: "MATCHING_DATE_WINDOW_DAYS must be greater than 0",
		},
		{
			name:     "missing postgres url",
			mutate:   func(cfg *Config) { cfg.Postgres.URL = "" },
			errorHas: "POSTGRES_URL is required",
		},
		{
			name:     "missing run request topic",
			mutate:   func(cfg *Config) { cfg.Kafka.RunRequestTopic = "" },
			errorHas: "KAFKA_RUN_REQUEST_TOPIC is required",
		},
		{
			name:     "zero worker pool",
			mutate:   func(cfg *Config) { cfg.WorkerPool.Size = 0 },
			errorHas: "WORKER_POOL_SIZE must be greater than 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultTestConfig()
			tt.mutate(cfg)

			err := cfg.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorHas)
		})
	}
}
