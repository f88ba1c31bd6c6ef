package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Qdrant   QdrantConfig
	Gemini   GeminiConfig
	Worker   WorkerConfig
	Matching MatchingConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	VectorSize uint64
}

type GeminiConfig struct {
	APIKey     string
	Model      string
	EmbedModel string
}

// Enabled reports whether the Gemini backed similarity methods can be used.
func (g GeminiConfig) Enabled() bool {
	return g.APIKey != ""
}

type WorkerConfig struct {
	Concurrency       int
	QueueSize         int
	PollInterval      time.Duration
	RetryMaxAttempts  int
	RetryInitialDelay time.Duration
}

// MatchingConfig holds the scoring policy and the bulk run limits.
type MatchingConfig struct {
	BulkConcurrency  int
	CandidateTimeout time.Duration

	ConfidenceStep        float64
	MinFallbackConfidence float64
	PenaltyPerWeight      float64
	MaxPenalty            float64
	KeywordFuzzyThreshold float64

	SimilarityRPS   float64
	SimilarityBurst int
	ChunkSize       int
	ChunkOverlap    int

	SearchLimit int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "talent_matcher"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", "http://localhost:6333"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "talent_matcher_embeddings"),
			VectorSize: uint64(getEnvAsInt64("QDRANT_VECTOR_SIZE", 768)),
		},
		Gemini: GeminiConfig{
			APIKey:     getEnv("GEMINI_API_KEY", ""),
			Model:      getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			EmbedModel: getEnv("GEMINI_EMBED_MODEL", "text-embedding-004"),
		},
		Worker: WorkerConfig{
			Concurrency:       getEnvAsInt("WORKER_CONCURRENCY", 2),
			QueueSize:         getEnvAsInt("WORKER_QUEUE_SIZE", 100),
			PollInterval:      getEnvAsDuration("WORKER_POLL_INTERVAL", "10s"),
			RetryMaxAttempts:  getEnvAsInt("RETRY_MAX_ATTEMPTS", 3),
			RetryInitialDelay: getEnvAsDuration("RETRY_INITIAL_DELAY", "2s"),
		},
		Matching: MatchingConfig{
			BulkConcurrency:       getEnvAsInt("MATCH_BULK_CONCURRENCY", 8),
			CandidateTimeout:      getEnvAsDuration("MATCH_CANDIDATE_TIMEOUT", "30s"),
			ConfidenceStep:        getEnvAsFloat("MATCH_CONFIDENCE_STEP", 15),
			MinFallbackConfidence: getEnvAsFloat("MATCH_MIN_FALLBACK_CONFIDENCE", 40),
			PenaltyPerWeight:      getEnvAsFloat("MATCH_PENALTY_PER_WEIGHT", 5),
			MaxPenalty:            getEnvAsFloat("MATCH_MAX_PENALTY", 100),
			KeywordFuzzyThreshold: getEnvAsFloat("MATCH_KEYWORD_FUZZY_THRESHOLD", 88),
			SimilarityRPS:         getEnvAsFloat("MATCH_SIMILARITY_RPS", 5),
			SimilarityBurst:       getEnvAsInt("MATCH_SIMILARITY_BURST", 5),
			ChunkSize:             getEnvAsInt("MATCH_CHUNK_SIZE", 1000),
			ChunkOverlap:          getEnvAsInt("MATCH_CHUNK_OVERLAP", 100),
			SearchLimit:           getEnvAsInt("MATCH_SEARCH_LIMIT", 100),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
