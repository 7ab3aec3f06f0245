package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port      string
	DBPath    string
	UploadDir string

	ChunkSize    int
	ChunkOverlap int
	Workers      int

	EmbEndpoint  string
	EmbAPIKey    string
	EmbModel     string
	EmbDimension int

	QdrantURL        string
	QdrantAPIKey     string
	QdrantCollection string

	LLMEndpoint string
	LLMAPIKey   string
	LLMModel    string
	Temperature float64
	MaxTokens   int

	TopK          int
	HistoryWindow int

	FileTimeout    time.Duration
	ServiceTimeout time.Duration

	CORSOrigins []string
}

func Load() AppConfig {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("[cfg] No .env file found or error loading: %v", err)
	}

	get := func(k, def string) string {
		if v := os.Getenv(k); v != "" {
			return v
		}
		return def
	}
	getInt := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Printf("[cfg] %s=%q is not an int, using %d", k, v, def)
		}
		return def
	}
	getFloat := func(k string, def float64) float64 {
		if v := os.Getenv(k); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
			log.Printf("[cfg] %s=%q is not a float, using %g", k, v, def)
		}
		return def
	}

	cfg := AppConfig{
		Port:      get("PORT", "8080"),
		DBPath:    get("DB_PATH", "ragchat.db"),
		UploadDir: get("UPLOAD_DIR", "uploads"),

		ChunkSize:    getInt("CHUNK_SIZE", 1500),
		ChunkOverlap: getInt("CHUNK_OVERLAP", 300),
		Workers:      getInt("INGEST_WORKERS", 2),

		EmbEndpoint:  get("EMB_ENDPOINT", ""),
		EmbAPIKey:    get("EMB_API_KEY", ""),
		EmbModel:     get("EMB_MODEL", "text-embedding-3-small"),
		EmbDimension: getInt("EMB_DIMENSION", 384),

		QdrantURL:        get("QDRANT_URL", ""),
		QdrantAPIKey:     get("QDRANT_API_KEY", ""),
		QdrantCollection: get("QDRANT_COLLECTION", "ragchat-chunks"),

		LLMEndpoint: get("LLM_ENDPOINT", ""),
		LLMAPIKey:   get("LLM_API_KEY", ""),
		LLMModel:    get("LLM_MODEL", "gpt-4o-mini"),
		Temperature: getFloat("LLM_TEMPERATURE", 0.4),
		MaxTokens:   getInt("LLM_MAX_TOKENS", 1000),

		TopK:          getInt("RETRIEVAL_TOP_K", 5),
		HistoryWindow: getInt("CHAT_HISTORY_WINDOW", 4),

		FileTimeout:    time.Duration(getInt("FILE_TIMEOUT_SEC", 120)) * time.Second,
		ServiceTimeout: time.Duration(getInt("SERVICE_TIMEOUT_SEC", 30)) * time.Second,

		CORSOrigins: []string{get("CORS_ORIGINS", "*")},
	}

	log.Printf("[cfg] port=%s db=%s uploads=%s chunk=%d/%d workers=%d emb=%s dim=%d qdrant=%s llm=%s model=%s",
		cfg.Port, cfg.DBPath, cfg.UploadDir, cfg.ChunkSize, cfg.ChunkOverlap, cfg.Workers,
		orMock(cfg.EmbEndpoint), cfg.EmbDimension, orMock(cfg.QdrantURL), orMock(cfg.LLMEndpoint), cfg.LLMModel)
	return cfg
}

func orMock(endpoint string) string {
	if endpoint == "" {
		return "(mock)"
	}
	return endpoint
}
