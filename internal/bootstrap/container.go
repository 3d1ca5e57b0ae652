package bootstrap

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"afcon-assistant-be/internal/config"
	"afcon-assistant-be/internal/controller"
	"afcon-assistant-be/internal/pkg/logger"
	"afcon-assistant-be/internal/repository/implementation"
	"afcon-assistant-be/internal/repository/memory"
	"afcon-assistant-be/internal/service"
	"afcon-assistant-be/pkg/embedding"
	"afcon-assistant-be/pkg/events"
	"afcon-assistant-be/pkg/llm/factory"
	"afcon-assistant-be/pkg/rag"
	"afcon-assistant-be/pkg/rag/classifier"
	"afcon-assistant-be/pkg/rag/response"
	"afcon-assistant-be/pkg/rag/retriever"
	"afcon-assistant-be/pkg/rag/schema"
	"afcon-assistant-be/pkg/rag/sqlagent"
	"afcon-assistant-be/pkg/rag/sqlexec"
	"afcon-assistant-be/pkg/store"
	"afcon-assistant-be/pkg/tools"

	pktNats "afcon-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController   controller.IChatController
	IngestController controller.IIngestController
	HealthController controller.IHealthController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Tool registry, exposed for the agent loop and diagnostics
	ToolRegistry *tools.Registry

	// System logger, exposed so main can Sync on shutdown
	SysLogger logger.ILogger

	// NATS analytics subscriber, exposed so main can Close on shutdown
	NatsSubscriber *pktNats.Subscriber
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	ragLogger := log.New(os.Stdout, "[RAG] ", log.LstdFlags)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		sysLogger.Info("bootstrap", "Using Embedding Provider: OLLAMA", map[string]any{"model": cfg.Ai.OllamaModel})
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		sysLogger.Info("bootstrap", "Using Embedding Provider: GEMINI", nil)
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	sysLogger.Info("bootstrap", "Using LLM Provider", map[string]any{"provider": cfg.Ai.LLMProvider, "model": cfg.Ai.LLMModel})

	// 4. Repositories
	fragmentRepo := implementation.NewFragmentRepository(db)
	sessionRepo := memory.NewSessionRepository()

	// 5. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	// Durable analytics consumer over the same stream the publisher writes to.
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		natsSub = nil
	}
	if natsSub != nil {
		err := natsSub.Subscribe("assistant.>", "assistant-analytics", func(ctx context.Context, event events.Event) error {
			sysLogger.Info("analytics", "Conversation event received", event.Payload())
			return nil
		})
		if err != nil {
			log.Printf("[WARN] Failed to subscribe to analytics events: %v", err)
		}
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	redisUp := true
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		redisUp = false
	}

	// 6. Retrieval Pipeline
	ragRetriever := retriever.NewRetriever(
		embeddingProvider,
		fragmentRepo,
		ragLogger,
		cfg.Rag.TopK,
		cfg.Rag.FetchK,
		cfg.Rag.DiversityLambda,
	)
	orchestrator := rag.NewOrchestrator(
		classifier.NewClassifier(llmProvider, ragLogger),
		schema.NewIntrospector(db),
		sqlagent.NewAgent(llmProvider, ragLogger),
		sqlexec.NewExecutor(db, ragLogger),
		ragRetriever,
		response.NewGenerator(llmProvider, ragLogger),
		ragLogger,
	)

	// 7. External Tool Layer
	toolClient := &http.Client{Timeout: time.Duration(cfg.Tools.HTTPTimeoutSeconds) * time.Second}
	searchCache := newToolCache(cfg.Tools.SearchCacheSize, rdb, redisUp, "tools:search:", ragLogger)
	pageCache := newToolCache(cfg.Tools.PageCacheSize, rdb, redisUp, "tools:page:", ragLogger)

	knowledgeSearch := func(ctx context.Context, query string) (string, error) {
		fragments, err := ragRetriever.Retrieve(ctx, query)
		if err != nil {
			return "", err
		}
		if len(fragments) == 0 {
			return "No information found.", nil
		}
		out := ""
		for _, f := range fragments {
			out += f.Content + "\n\n"
		}
		return out, nil
	}

	// Local search runs the full hybrid pipeline per category, with a
	// throwaway session so tool calls never pollute conversation history.
	hybridSearch := func(ctx context.Context, query string) (string, error) {
		scratch := store.NewSession(uuid.New().String(), cfg.Rag.MaxHistory)
		envelope, err := orchestrator.ProcessQuery(ctx, scratch, rag.Question{Text: query})
		if err != nil {
			return "", err
		}
		return envelope.Answer, nil
	}

	toolRegistry := tools.NewRegistry(
		tools.NewKnowledgeBaseTool(knowledgeSearch, ragLogger),
		tools.NewLocalSearchTool(hybridSearch, ragLogger),
		tools.NewWeatherTool(toolClient, ragLogger).Tool(),
		tools.NewWebSearchTool(cfg.Keys.SerpApi, toolClient, searchCache, ragLogger).Tool(),
		tools.NewWebpageTool(toolClient, pageCache, ragLogger).Tool(),
		tools.NewProcessResponseTool(),
		tools.NewFinalAnswerTool(),
	)

	// 8. Services
	publisherService := service.NewPublisherService(cfg.Keys.IngestTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.IngestTopic,
		fragmentRepo,
		embeddingProvider,
	)
	assistantService := service.NewAssistantService(
		orchestrator,
		sessionRepo,
		natsPub,
		cfg.Rag.MaxHistory,
	)

	return &Container{
		ChatController:   controller.NewChatController(assistantService),
		IngestController: controller.NewIngestController(publisherService),
		HealthController: controller.NewHealthController(db, toolRegistry),
		ConsumerService:  consumerService,
		ToolRegistry:     toolRegistry,
		SysLogger:        sysLogger,
		NatsSubscriber:   natsSub,
	}
}

// newToolCache layers redis behind the local LRU when redis is reachable.
func newToolCache(capacity int, rdb *redis.Client, redisUp bool, prefix string, logger *log.Logger) tools.Cache {
	local := tools.NewLRUCache(capacity)
	if !redisUp {
		return local
	}
	return tools.NewTieredCache(local, rdb, prefix, 24*time.Hour, logger)
}
