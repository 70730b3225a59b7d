package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config contains the complete configuration for a Mnemo client.
//
// It includes settings for:
//   - Storage backend (authoritative relational store)
//   - Embedding provider (for vector generation, optional)
//   - Vector index (for similarity search, optional)
//   - Cleanup policy (cold-memory eviction thresholds)
//
// The embedder and vector index are optional: without them the client
// still works, storing memories without embeddings and answering
// searches from the relational store.
//
// Example:
//
//	config := &core.Config{
//	    Storage: core.StorageConfig{
//	        Provider: "sqlite",
//	        Config: map[string]interface{}{
//	            "db_path": "./memories.db",
//	        },
//	    },
//	    Embedder: core.EmbedderConfig{
//	        Provider: "openai",
//	        APIKey:   "sk-...",
//	        Model:    "text-embedding-3-small",
//	    },
//	}
type Config struct {
	// Storage contains storage backend configuration.
	Storage StorageConfig `json:"storage"`

	// Embedder contains embedding provider configuration.
	Embedder EmbedderConfig `json:"embedder"`

	// VectorIndex contains vector index configuration.
	VectorIndex VectorIndexConfig `json:"vector_index"`

	// Cleanup contains cold-memory eviction configuration.
	Cleanup CleanupConfig `json:"cleanup"`
}

// StorageConfig contains configuration for the storage backend.
//
// Supported providers: sqlite, postgres, mysql
//
// Example:
//
//	storeConfig := core.StorageConfig{
//	    Provider: "sqlite",
//	    Config: map[string]interface{}{
//	        "db_path":    "./memories.db",
//	        "table_name": "memories",
//	    },
//	}
type StorageConfig struct {
	// Provider is the storage backend name (sqlite, postgres, mysql).
	Provider string `json:"provider"`

	// Config contains provider-specific configuration.
	// For SQLite: db_path, table_name
	// For PostgreSQL: host, port, user, password, db_name, table_name, ssl_mode
	// For MySQL: host, port, user, password, db_name, table_name
	Config map[string]interface{} `json:"config"`
}

// EmbedderConfig contains configuration for the embedding provider.
//
// Supported providers: openai, none
//
// Provider "none" disables embedding generation: memories are stored
// without vectors and searches use the relational path.
type EmbedderConfig struct {
	// Provider is the embedding provider name (openai, none).
	Provider string `json:"provider"`

	// APIKey is the API key for the embedding provider.
	APIKey string `json:"api_key"`

	// Model is the embedding model name (e.g., "text-embedding-3-small").
	Model string `json:"model"`

	// BaseURL is the base URL for the API (optional, uses provider default if empty).
	BaseURL string `json:"base_url,omitempty"`

	// Dimensions is the dimension of the embedding vectors (e.g., 1536).
	Dimensions int `json:"dimensions,omitempty"`
}

// VectorIndexConfig contains configuration for the vector index.
//
// Supported providers: pinecone, none
//
// Provider "none" disables the vector index: searches use the
// relational path and create operations skip the index upsert.
type VectorIndexConfig struct {
	// Provider is the vector index provider name (pinecone, none).
	Provider string `json:"provider"`

	// APIKey is the API key for the vector index provider.
	APIKey string `json:"api_key"`

	// Index is the index name (resolved to a host via the controller
	// API when BaseURL is empty).
	Index string `json:"index"`

	// BaseURL is the data-plane base URL (optional).
	BaseURL string `json:"base_url,omitempty"`

	// Namespace is the index namespace to operate in (optional).
	Namespace string `json:"namespace,omitempty"`

	// Dimensions is the dimension of indexed vectors (e.g., 1536).
	Dimensions int `json:"dimensions,omitempty"`
}

// CleanupConfig contains configuration for cold-memory eviction.
//
// Cleanup deactivates memories that are expired, or that are both
// older than MaxAgeDays and colder than MinHeatScore.
type CleanupConfig struct {
	// MaxAgeDays is the age threshold in days. Default: 30
	MaxAgeDays int `json:"max_age_days"`

	// MinHeatScore is the heat threshold. Default: 0.3
	MinHeatScore float64 `json:"min_heat_score"`

	// BatchSize caps how many memories one run deactivates. Default: 100
	BatchSize int `json:"batch_size"`

	// Schedule is the cron schedule for the background janitor
	// (five-field cron syntax). Default: "0 * * * *" (hourly)
	Schedule string `json:"schedule,omitempty"`
}

// LoadConfigFromEnv loads configuration from environment variables.
//
// The function:
//  1. Searches for .env or .env.example files (up to 5 directory levels up)
//  2. Loads environment variables from the found file
//  3. Parses environment variables into a Config struct
//
// Supported environment variables:
//   - DATABASE_PROVIDER (sqlite, postgres, mysql)
//   - SQLITE_PATH, SQLITE_TABLE
//   - POSTGRES_HOST, POSTGRES_PORT, POSTGRES_USER, POSTGRES_PASSWORD, etc.
//   - MYSQL_HOST, MYSQL_PORT, MYSQL_USER, MYSQL_PASSWORD, etc.
//   - EMBEDDING_PROVIDER, EMBEDDING_API_KEY, EMBEDDING_MODEL, EMBEDDING_BASE_URL
//   - PINECONE_API_KEY, PINECONE_INDEX, PINECONE_BASE_URL, PINECONE_NAMESPACE
//   - CLEANUP_MAX_AGE_DAYS, CLEANUP_MIN_HEAT_SCORE, CLEANUP_BATCH_SIZE, CLEANUP_SCHEDULE
//
// When EMBEDDING_API_KEY is unset the embedder provider defaults to
// "none"; likewise PINECONE_API_KEY for the vector index. The client
// then runs in relational-only mode.
//
// Returns a Config instance, or an error if loading fails.
//
// Example:
//
//	config, err := core.LoadConfigFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
func LoadConfigFromEnv() (*Config, error) {
	// Use FindEnvFile to locate .env file (supports upward search)
	envPath, found := FindEnvFile()
	if found {
		_ = godotenv.Load(envPath)
	} else {
		// If not found, try loading from current directory (godotenv default behavior)
		_ = godotenv.Load()
	}

	provider := getEnvOrDefault("DATABASE_PROVIDER", "sqlite")

	// Build different configurations based on provider
	storageConfig := make(map[string]interface{})

	switch provider {
	case "sqlite":
		storageConfig = map[string]interface{}{
			"db_path":    getEnvOrDefault("SQLITE_PATH", "./mnemo.db"),
			"table_name": getEnvOrDefault("SQLITE_TABLE", "memories"),
		}
	case "postgres":
		port, _ := strconv.Atoi(getEnvOrDefault("POSTGRES_PORT", "5432"))

		storageConfig = map[string]interface{}{
			"host":       getEnvOrDefault("POSTGRES_HOST", "localhost"),
			"port":       port,
			"user":       getEnvOrDefault("POSTGRES_USER", "postgres"),
			"password":   os.Getenv("POSTGRES_PASSWORD"),
			"db_name":    getEnvOrDefault("POSTGRES_DATABASE", "mnemo"),
			"table_name": getEnvOrDefault("POSTGRES_TABLE", "memories"),
			"ssl_mode":   getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
		}
	case "mysql":
		port, _ := strconv.Atoi(getEnvOrDefault("MYSQL_PORT", "3306"))

		storageConfig = map[string]interface{}{
			"host":       getEnvOrDefault("MYSQL_HOST", "127.0.0.1"),
			"port":       port,
			"user":       getEnvOrDefault("MYSQL_USER", "root"),
			"password":   os.Getenv("MYSQL_PASSWORD"),
			"db_name":    getEnvOrDefault("MYSQL_DATABASE", "mnemo"),
			"table_name": getEnvOrDefault("MYSQL_TABLE", "memories"),
		}
	}

	// Embedding provider defaults to "none" unless an API key is present.
	embedderAPIKey := os.Getenv("EMBEDDING_API_KEY")
	embedderDefault := "none"
	if embedderAPIKey != "" {
		embedderDefault = "openai"
	}
	embedderProvider := getEnvOrDefault("EMBEDDING_PROVIDER", embedderDefault)

	embedderModel := os.Getenv("EMBEDDING_MODEL")
	embedderBaseURL := os.Getenv("EMBEDDING_BASE_URL")
	if embedderProvider == "openai" {
		if embedderBaseURL == "" {
			embedderBaseURL = os.Getenv("OPENAI_EMBEDDING_BASE_URL")
		}
		if embedderModel == "" {
			embedderModel = "text-embedding-3-small"
		}
	}
	embedderDims, _ := strconv.Atoi(getEnvOrDefault("EMBEDDING_DIMENSIONS", "1536"))

	// Vector index defaults to "none" unless an API key is present.
	pineconeAPIKey := os.Getenv("PINECONE_API_KEY")
	indexDefault := "none"
	if pineconeAPIKey != "" {
		indexDefault = "pinecone"
	}
	indexProvider := getEnvOrDefault("VECTOR_INDEX_PROVIDER", indexDefault)
	indexDims, _ := strconv.Atoi(getEnvOrDefault("PINECONE_DIMENSIONS", "1536"))

	maxAgeDays, _ := strconv.Atoi(getEnvOrDefault("CLEANUP_MAX_AGE_DAYS", strconv.Itoa(DefaultCleanupMaxAgeDays)))
	minHeat, _ := strconv.ParseFloat(getEnvOrDefault("CLEANUP_MIN_HEAT_SCORE", "0.3"), 64)
	batchSize, _ := strconv.Atoi(getEnvOrDefault("CLEANUP_BATCH_SIZE", strconv.Itoa(DefaultCleanupBatchSize)))

	config := &Config{
		Storage: StorageConfig{
			Provider: provider,
			Config:   storageConfig,
		},
		Embedder: EmbedderConfig{
			Provider:   embedderProvider,
			APIKey:     embedderAPIKey,
			Model:      embedderModel,
			BaseURL:    embedderBaseURL,
			Dimensions: embedderDims,
		},
		VectorIndex: VectorIndexConfig{
			Provider:   indexProvider,
			APIKey:     pineconeAPIKey,
			Index:      os.Getenv("PINECONE_INDEX"),
			BaseURL:    os.Getenv("PINECONE_BASE_URL"),
			Namespace:  os.Getenv("PINECONE_NAMESPACE"),
			Dimensions: indexDims,
		},
		Cleanup: CleanupConfig{
			MaxAgeDays:   maxAgeDays,
			MinHeatScore: minHeat,
			BatchSize:    batchSize,
			Schedule:     getEnvOrDefault("CLEANUP_SCHEDULE", "0 * * * *"),
		},
	}

	return config, nil
}

// LoadConfigFromEnvFile loads configuration from a specific .env file.
//
// Parameters:
//   - envPath: Path to the .env file
//
// Returns a Config instance, or an error if loading fails.
func LoadConfigFromEnvFile(envPath string) (*Config, error) {
	if err := godotenv.Load(envPath); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return LoadConfigFromEnv()
}

// LoadConfigFromJSON loads configuration from a JSON file.
//
// Parameters:
//   - path: Path to the JSON configuration file
//
// Returns a Config instance, or an error if loading or parsing fails.
func LoadConfigFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewMemoryError("LoadConfigFromJSON", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, NewMemoryError("LoadConfigFromJSON", err)
	}

	return &config, nil
}

// Validate validates the configuration.
//
// Checks that required fields are set:
//   - Storage provider must be specified
//
// Empty embedder and vector index providers are normalized to "none".
//
// Returns an error if validation fails, nil otherwise.
func (c *Config) Validate() error {
	if c.Storage.Provider == "" {
		return NewMemoryError("Validate", ErrInvalidConfig)
	}
	if c.Embedder.Provider == "" {
		c.Embedder.Provider = "none"
	}
	if c.VectorIndex.Provider == "" {
		c.VectorIndex.Provider = "none"
	}
	return nil
}

// getEnvOrDefault gets an environment variable or returns the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FindEnvFile searches for .env or .env.example files.
//
// The search:
//  1. Checks the current directory
//  2. Searches up to 5 directory levels up
//  3. Returns the first .env or .env.example file found
//
// Returns:
//   - path: Path to the found file (empty if not found)
//   - found: True if a file was found, false otherwise
func FindEnvFile() (string, bool) {
	// First check the current directory
	if _, err := os.Stat(".env"); err == nil {
		return ".env", true
	}
	if _, err := os.Stat(".env.example"); err == nil {
		return ".env.example", true
	}

	// Check project root directory (search upward)
	dir, _ := os.Getwd()
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		envExamplePath := filepath.Join(dir, ".env.example")

		if _, err := os.Stat(envPath); err == nil {
			return envPath, true
		}
		if _, err := os.Stat(envExamplePath); err == nil {
			return envExamplePath, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", false
}
