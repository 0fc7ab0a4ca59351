package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"aireas/internal/agent"
	"aireas/internal/convstore"
	"aireas/internal/handlers"
	"aireas/internal/ingest"
	"aireas/internal/query"
	"aireas/internal/retriever"
	"aireas/internal/storage"
	"aireas/internal/tools"
	"aireas/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Pipeline       *ingest.Pipeline
	Processor      *query.Processor
	Retriever      *retriever.SelfQueryRetriever
	Engine         *agent.Engine
	Conversations  convstore.Store
	Documents      storage.DocumentRepo
	TopicLLM       convstore.Generator
	ExtraTools     []tools.Tool
	VectorStore    vectorstore.VectorStore
	RedisClient    *redis.Client
	CollectionName string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	uploadHandler := handlers.NewUploadHandler(deps.Pipeline, deps.Conversations)
	retrieveHandler := handlers.NewRetrieveHandler(deps.Processor, deps.Retriever)
	conversationHandler := handlers.NewConversationHandler(deps.Conversations, deps.Documents)
	chatHandler := handlers.NewChatHandler(deps.Engine, deps.Conversations, deps.TopicLLM, deps.Retriever, deps.ExtraTools)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore, deps.RedisClient, deps.CollectionName)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", healthHandler)
		r.Method(http.MethodPost, "/upload", uploadHandler)
		r.Method(http.MethodPost, "/retrieve", retrieveHandler)

		r.Route("/conversations", func(r chi.Router) {
			r.Post("/", conversationHandler.Create)
			r.Get("/", conversationHandler.List)
			r.Route("/{conversationID}", func(r chi.Router) {
				r.Get("/", conversationHandler.Get)
				r.Delete("/", conversationHandler.Delete)
				r.Get("/documents", conversationHandler.Documents)
				r.Method(http.MethodGet, "/chat", chatHandler)
			})
		})
	})

	return r
}
