package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Rag      RagConfig
	Tools    ToolsConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini string
	SerpApi      string
	IngestTopic  string // Fragment ingestion topic
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "gemini" or "ollama"
	LLMModel          string // e.g. "gemini-2.0-flash", "llama3"
}

type RagConfig struct {
	MaxHistory      int     // Conversation turns kept per session
	TopK            int     // Fragments handed to the synthesizer
	FetchK          int     // Candidates fetched before diversity rerank
	DiversityLambda float64 // MMR relevance/diversity balance
}

type ToolsConfig struct {
	HTTPTimeoutSeconds int // Per-call budget for outbound tool requests
	SearchCacheSize    int // LRU entries for web search results
	PageCacheSize      int // LRU entries for visited webpages
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/assistant.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GEMINI_API_KEY", ""),
			SerpApi:      getEnv("SERPAPI_API_KEY", ""),
			IngestTopic:  getEnv("INGEST_FRAGMENT_TOPIC_NAME", "INGEST_FRAGMENT"),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:          getEnv("LLM_MODEL", "gemini-2.0-flash"),
		},
		Rag: RagConfig{
			MaxHistory:      getEnvAsInt("RAG_MAX_HISTORY", 5),
			TopK:            getEnvAsInt("RAG_TOP_K", 3),
			FetchK:          getEnvAsInt("RAG_FETCH_K", 10),
			DiversityLambda: getEnvAsFloat("RAG_DIVERSITY_LAMBDA", 0.5),
		},
		Tools: ToolsConfig{
			HTTPTimeoutSeconds: getEnvAsInt("TOOL_HTTP_TIMEOUT_SECONDS", 20),
			SearchCacheSize:    getEnvAsInt("TOOL_SEARCH_CACHE_SIZE", 100),
			PageCacheSize:      getEnvAsInt("TOOL_PAGE_CACHE_SIZE", 50),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
