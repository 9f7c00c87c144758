// Route registration and go-chi router setup.
// Public routes (/health, /auth/*) vs JWT-protected routes (/api/v1/*).
package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/naviai/naviai/internal/api/handlers"
	apmiddleware "github.com/naviai/naviai/internal/api/middleware"
	domainauth "github.com/naviai/naviai/internal/domain/auth"
	"github.com/naviai/naviai/internal/domain/chat"
	"github.com/naviai/naviai/internal/domain/conversation"
	"github.com/naviai/naviai/internal/domain/knowledge"
	"github.com/naviai/naviai/internal/domain/speech"
	"github.com/naviai/naviai/internal/domain/video"
	"github.com/naviai/naviai/internal/domain/vision"
	"github.com/naviai/naviai/internal/infra/config"
	"github.com/naviai/naviai/internal/infra/llm"
)

// NewRouter creates and configures a new chi router with all routes.
// The adapter registry and config are built once in main and shared here.
func NewRouter(db *sql.DB, registry *llm.Registry, cfg config.Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (runs on all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// ===== PUBLIC ROUTES (no auth required) =====

	// Health check — unauthenticated, used by load balancers and health probes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	// Auth endpoints — public, no JWT required
	authService := domainauth.NewService(db)
	authHandler := handlers.NewAuthHandler(authService)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register) // POST /auth/register
		r.Post("/login", authHandler.Login)       // POST /auth/login
	})

	// ===== PROTECTED ROUTES (JWT required via AuthMiddleware) =====

	// All /api/v1/* routes require a valid Bearer JWT token.
	// AuthMiddleware validates the token and injects UserID into context.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apmiddleware.AuthMiddleware)

		// Shared app services for protected APIs
		conversations := conversation.NewService(db)
		searcher := knowledge.NewSearcher(db)
		videos := video.NewService(db)
		orchestrator := chat.NewOrchestrator(conversations, searcher, videos, registry, cfg)
		visionService := vision.NewService(registry, videos, cfg)
		speechService := speech.NewService(cfg.OpenAIAPIKey)

		chatHandler := handlers.NewChatHandler(orchestrator, authService)
		visionHandler := handlers.NewVisionHandler(visionService, authService)
		conversationHandler := handlers.NewConversationHandler(conversations)
		knowledgeHandler := handlers.NewKnowledgeHandler(searcher)
		videoHandler := handlers.NewVideoHandler(videos)
		speechHandler := handlers.NewSpeechHandler(speechService, authService)
		providerHandler := handlers.NewProviderHandler(registry, cfg.LLMProvider)

		r.Post("/chat", chatHandler.Chat) // POST /api/v1/chat

		r.Route("/vision", func(r chi.Router) {
			r.Post("/analyze", visionHandler.Analyze) // POST /api/v1/vision/analyze
		})

		r.Route("/conversations", func(r chi.Router) {
			r.Get("/", conversationHandler.List)                  // GET /api/v1/conversations
			r.Get("/{id}/messages", conversationHandler.Messages) // GET /api/v1/conversations/{id}/messages
			r.Delete("/{id}", conversationHandler.Delete)         // DELETE /api/v1/conversations/{id}
		})

		r.Route("/knowledge", func(r chi.Router) {
			r.Get("/search", knowledgeHandler.Search) // GET /api/v1/knowledge/search
		})

		r.Route("/videos", func(r chi.Router) {
			r.Get("/trusted", videoHandler.Search) // GET /api/v1/videos/trusted
		})

		r.Route("/stt", func(r chi.Router) {
			r.Post("/transcribe", speechHandler.Transcribe) // POST /api/v1/stt/transcribe
		})

		r.Route("/tts", func(r chi.Router) {
			r.Post("/speak", speechHandler.Speak) // POST /api/v1/tts/speak
		})

		r.Route("/llm", func(r chi.Router) {
			r.Get("/providers", providerHandler.List) // GET /api/v1/llm/providers
		})
	})

	return r
}
