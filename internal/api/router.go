package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"lingotutor/internal/api/handlers"
	"lingotutor/internal/api/middleware"
	"lingotutor/internal/chat"
	"lingotutor/internal/config"
	"lingotutor/internal/conversation"
	"lingotutor/internal/correction"
	"lingotutor/internal/llm"
	"lingotutor/internal/storage"
	"lingotutor/internal/stt"
	"lingotutor/internal/transcribe"
	"lingotutor/internal/tts"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	redis *redis.Client
	cfg   *config.Config
	llmGW llm.Gateway
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		redis: rdb,
		cfg:   cfg,
		llmGW: llm.NewGateway(cfg.LLM),
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{rt.cfg.App.FrontendURL, "http://localhost:3000", "http://localhost:5173"}))

	rl := middleware.NewRateLimiter(100, 200)
	r.Use(rl.Limit)

	// Health endpoints
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Services
	repo := conversation.NewRepository(rt.db)
	engine := correction.NewEngine(rt.llmGW, rt.cfg.LLM.DefaultProvider, rt.cfg.LLM.DefaultModel, rt.cfg.App.DevMode)

	transcribeSvc := transcribe.NewService(
		newSTTProvider(rt.cfg.STT),
		engine,
		repo,
		newAudioStore(rt.cfg.Storage),
		time.Duration(rt.cfg.STT.TimeoutSeconds)*time.Second,
		rt.cfg.App.DevMode,
	)
	chatSvc := chat.NewService(rt.llmGW, repo, rt.cfg.LLM.DefaultProvider, rt.cfg.LLM.DefaultModel)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		sttH := handlers.NewSTTHandler(transcribeSvc, rt.cfg.STT)
		r.Route("/stt", func(r chi.Router) {
			r.Post("/transcribe", sttH.Transcribe)
			r.Get("/languages", sttH.Languages)
			r.Get("/models", sttH.Models)
		})

		convH := handlers.NewConversationHandler(repo)
		r.Route("/conversations", func(r chi.Router) {
			r.Post("/", convH.Create)
			r.Get("/", convH.List)
			r.Get("/{id}", convH.Get)
			r.Delete("/{id}", convH.Delete)
			r.Get("/{id}/messages", convH.Messages)
		})

		chatH := handlers.NewChatHandler(chatSvc)
		r.Post("/chat", chatH.Send)

		ttsH := handlers.NewTTSHandler(rt.newTTSProvider())
		r.Post("/tts/synthesize", ttsH.Synthesize)
	})

	return r
}

func newSTTProvider(cfg config.STTConfig) stt.Provider {
	if cfg.Backend == "local" {
		return stt.NewLocalSTT(stt.LocalSTTConfig{BaseURL: cfg.LocalBaseURL})
	}
	return stt.NewOpenAISTT(stt.OpenAISTTConfig{
		APIKey:  cfg.OpenAIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
	})
}

func (rt *Router) newTTSProvider() tts.Provider {
	var p tts.Provider
	if rt.cfg.TTS.Backend == "local" {
		p = tts.NewLocalTTS(tts.LocalTTSConfig{
			PiperBinPath: rt.cfg.TTS.LocalBinPath,
			ModelPath:    rt.cfg.TTS.LocalModel,
		})
	} else {
		p = tts.NewOpenAITTS(tts.OpenAITTSConfig{
			APIKey:  rt.cfg.TTS.OpenAIKey,
			BaseURL: rt.cfg.TTS.OpenAIBaseURL,
			Model:   rt.cfg.TTS.OpenAIModel,
		})
	}
	if rt.redis != nil {
		p = tts.NewCachedProvider(p, rt.redis, time.Duration(rt.cfg.TTS.CacheTTLHours)*time.Hour)
	}
	return p
}

func newAudioStore(cfg config.StorageConfig) storage.Store {
	if cfg.Backend == "supabase" && cfg.SupabaseURL != "" {
		return storage.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey, cfg.Bucket)
	}
	return storage.NewLocalStore(cfg.LocalDir)
}
