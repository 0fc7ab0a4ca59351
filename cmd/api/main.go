package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"github.com/redis/go-redis/v9"

	"aireas/internal/agent"
	"aireas/internal/config"
	"aireas/internal/convstore"
	"aireas/internal/extract"
	"aireas/internal/http"
	"aireas/internal/ingest"
	"aireas/internal/llm"
	"aireas/internal/query"
	"aireas/internal/retriever"
	"aireas/internal/storage"
	"aireas/internal/tools"
	"aireas/internal/vectorstore"
)

// payloadIndexFields are the metadata fields filtered searches rely on.
var payloadIndexFields = []string{
	"metadata.pdf_id",
	"metadata.associated_user",
	"metadata.associated_conversation_id",
}

// defaultRetrievalLimit is the passage count used when a question does not
// ask for a specific number.
const defaultRetrievalLimit = 4

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	ctx := context.Background()

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()
	documentRepo := storage.NewSQLiteDocumentRepo(db)
	slog.Info("Database initialized", "path", cfg.DBPath)

	// Initialize Redis conversation store
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Invalid Redis URL: %v", err)
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	conversations, err := convstore.NewRedisStore(redisClient)
	if err != nil {
		log.Fatalf("Failed to create conversation store: %v", err)
	}
	slog.Info("Conversation store initialized")

	// Initialize Qdrant vector store
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL, cfg.QdrantAPIKey)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}
	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}
	for _, field := range payloadIndexFields {
		if err := vectorStore.EnsurePayloadIndex(ctx, cfg.QdrantCollection, field); err != nil {
			log.Fatalf("Failed to ensure payload index on %s: %v", field, err)
		}
	}
	slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)

	// Create LLM and embedding clients
	llmClient, err := llm.NewClient(ctx, cfg.GeminiAPIKey, cfg.ChatModelName)
	if err != nil {
		log.Fatalf("Failed to create LLM client: %v", err)
	}
	defer func() {
		_ = llmClient.Close()
	}()

	embedder, err := llm.NewEmbeddingsClient(llmClient.Raw(), cfg.EmbeddingModel, cfg.QdrantVectorSize)
	if err != nil {
		log.Fatalf("Failed to create embeddings client: %v", err)
	}

	// Create ingestion pipeline
	chunker, err := ingest.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		log.Fatalf("Failed to create chunker: %v", err)
	}
	pipeline, err := ingest.NewPipeline(
		chunker,
		extract.NewPDFExtractor(),
		embedder,
		vectorStore,
		documentRepo,
		cfg.QdrantCollection,
		cfg.UploadDir,
	)
	if err != nil {
		log.Fatalf("Failed to create ingestion pipeline: %v", err)
	}
	slog.Info("Ingestion pipeline initialized", "upload_dir", cfg.UploadDir, "chunk_size", cfg.ChunkSize, "chunk_overlap", cfg.ChunkOverlap)

	// Create query processor and retriever
	processor, err := query.NewProcessor(llmClient)
	if err != nil {
		log.Fatalf("Failed to create query processor: %v", err)
	}
	selfQuery, err := retriever.NewSelfQueryRetriever(llmClient, embedder, vectorStore, cfg.QdrantCollection, defaultRetrievalLimit)
	if err != nil {
		log.Fatalf("Failed to create retriever: %v", err)
	}

	// Create the agent engine
	engine, err := agent.NewEngine(llm.NewToolChat(llmClient), agent.NewCheckpointStore(), cfg.MaxHistoryTokens)
	if err != nil {
		log.Fatalf("Failed to create agent engine: %v", err)
	}

	// Shared tools offered in every chat session
	extraTools := []tools.Tool{tools.NewArxivTool()}
	if cfg.TavilyAPIKey != "" {
		tavily, err := tools.NewTavilyTool(cfg.TavilyAPIKey)
		if err != nil {
			log.Fatalf("Failed to create Tavily tool: %v", err)
		}
		extraTools = append(extraTools, tavily)
	} else {
		slog.Warn("TAVILY_API_KEY not set, web search disabled")
	}
	slog.Info("Agent engine initialized", "shared_tools", len(extraTools))

	// Create router with dependencies
	deps := &http.Deps{
		Pipeline:       pipeline,
		Processor:      processor,
		Retriever:      selfQuery,
		Engine:         engine,
		Conversations:  conversations,
		Documents:      documentRepo,
		TopicLLM:       llmClient,
		ExtraTools:     extraTools,
		VectorStore:    vectorStore,
		RedisClient:    redisClient,
		CollectionName: cfg.QdrantCollection,
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
