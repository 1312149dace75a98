// Package server wires the router, handlers and dependencies, and owns the
// listen/shutdown lifecycle. It is the composition root: every service and
// repository is constructed here, in one place.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/colaunch/colaunch-server/internal/ai"
	"github.com/colaunch/colaunch-server/internal/auth"
	"github.com/colaunch/colaunch-server/internal/config"
	"github.com/colaunch/colaunch-server/internal/handler"
	"github.com/colaunch/colaunch-server/internal/legacy"
	"github.com/colaunch/colaunch-server/internal/middleware"
	"github.com/colaunch/colaunch-server/internal/repository"
	sqliteRepo "github.com/colaunch/colaunch-server/internal/repository/sqlite"
	"github.com/colaunch/colaunch-server/internal/service"
	"github.com/colaunch/colaunch-server/internal/storage"
	"github.com/colaunch/colaunch-server/internal/voice"
)

// Server holds the router and the resources it must release on shutdown.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New builds the full dependency chain: DB and AI client at the bottom,
// services in the middle, handlers and routes on top.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	cfg := s.cfg

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	google := auth.NewGoogleProvider(cfg.Auth.GoogleClientID, cfg.Auth.GoogleSecret, cfg.Auth.CallbackURL)

	aiClient := ai.NewClient(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Timeout)

	mediaStore, err := storage.NewMediaStore(cfg.Media.Dir, cfg.Server.BaseURL)
	if err != nil {
		return fmt.Errorf("creating media store: %w", err)
	}

	// Services. The single sqlite DB implements every repository interface.
	ideaService := service.NewIdeaService(s.db, s.db, s.logger)
	offerService := service.NewOfferService(s.db, s.db, s.logger)
	notifier := service.NewWebhookNotifier(s.db, cfg.AI.Timeout, s.logger)
	dealService := service.NewDealService(s.db, s.db, s.db, notifier, s.logger)
	userService := service.NewUserService(s.db, s.logger)
	webhookService := service.NewWebhookService(s.db, auth.NewSecretService(), s.logger)
	vectorizeService := service.NewVectorizeService(s.db, s.db, aiClient, cfg.AI.EmbeddingModel, s.logger)

	interpreter := voice.NewInterpreter(aiClient, cfg.AI.ChatModel)
	pipeline := voice.NewPipeline(voice.PipelineConfig{
		ChatModel:           cfg.AI.ChatModel,
		EmbeddingModel:      cfg.AI.EmbeddingModel,
		AudioModel:          cfg.AI.AudioModel,
		StepTimeout:         cfg.AI.Timeout,
		SimilarityThreshold: cfg.Search.SimilarityThreshold,
		MatchCount:          cfg.Search.MatchCount,
	}, interpreter, aiClient, aiClient, s.db, s.db, s.logger)

	// Handlers.
	ideaHandler := handler.NewIdeaHandler(ideaService, vectorizeService, pipeline, s.logger)
	offerHandler := handler.NewOfferHandler(offerService, s.logger)
	dealHandler := handler.NewDealHandler(dealService, s.logger)
	authHandler := handler.NewAuthHandler(google, tokens, userService, cfg.Auth.DashboardURL, s.logger)
	webhookHandler := handler.NewWebhookHandler(webhookService, s.logger)
	mediaHandler := handler.NewMediaHandler(mediaStore, s.logger)
	voiceHandler := handler.NewVoiceHandler(pipeline, s.logger)

	// Uploaded media is served straight from disk.
	fileServer := http.FileServer(http.Dir(mediaStore.Dir()))
	s.router.Handle("/media/*", http.StripPrefix("/media/", fileServer))

	s.router.Route("/auth", func(r chi.Router) {
		r.Get("/google/login", authHandler.HandleGoogleLogin)
		r.Get("/google/callback", authHandler.HandleGoogleCallback)
		r.Post("/logout", authHandler.HandleLogout)
	})

	s.router.Route("/api", func(r chi.Router) {
		// Public reads. Optional auth so signed-in users are identified.
		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuth(tokens))

			r.Get("/ideas", ideaHandler.HandleList)
			r.Get("/ideas/{id}", ideaHandler.HandleGet)
			r.Get("/ideas/{id}/offer", offerHandler.HandleGetByIdea)
			r.Post("/ideas/search/vector", ideaHandler.HandleVectorSearch)
			r.Post("/ideas/search/voice", ideaHandler.HandleVoiceSearch)
			r.Get("/offers/{id}", offerHandler.HandleGet)
			r.Get("/deals/{id}", dealHandler.HandleGet)
			r.Post("/webhooks/{id}/verify", webhookHandler.HandleVerify)
		})

		// Authenticated routes.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/me", authHandler.HandleMe)
			r.Put("/me", authHandler.HandleUpdateMe)

			r.Get("/ideas/mine", ideaHandler.HandleListMine)
			r.Post("/ideas", ideaHandler.HandleCreate)
			r.Put("/ideas/{id}", ideaHandler.HandleUpdate)
			r.Delete("/ideas/{id}", ideaHandler.HandleDelete)
			r.Post("/ideas/{id}/upvote", ideaHandler.HandleVote(repository.VoteUp))
			r.Post("/ideas/{id}/downvote", ideaHandler.HandleVote(repository.VoteDown))
			r.Post("/ideas/{id}/media", ideaHandler.HandleAttachMedia)
			r.Post("/ideas/{id}/reindex", ideaHandler.HandleReindexOne)
			r.Post("/ideas/reindex", ideaHandler.HandleReindexAll)

			r.Post("/offers", offerHandler.HandleCreate)
			r.Get("/offers/mine", offerHandler.HandleListMine)
			r.Put("/offers/{id}", offerHandler.HandleUpdate)
			r.Delete("/offers/{id}", offerHandler.HandleDelete)

			r.Post("/deals", dealHandler.HandleCreate)
			r.Get("/deals/mine", dealHandler.HandleListMine)
			r.Put("/deals/{id}/status", dealHandler.HandleSetStatus)

			r.Post("/webhooks", webhookHandler.HandleCreate)
			r.Get("/webhooks", webhookHandler.HandleList)
			r.Put("/webhooks/{id}/active", webhookHandler.HandleSetActive)
			r.Delete("/webhooks/{id}", webhookHandler.HandleDelete)

			r.Post("/media", mediaHandler.HandleUpload)

			r.Post("/voice/start", voiceHandler.HandleStart)
			r.Post("/voice/transcript", voiceHandler.HandleTranscript)
			r.Post("/voice/stop", voiceHandler.HandleStop)
			r.Post("/voice/cancel", voiceHandler.HandleCancel)
		})

		if cfg.Legacy.Enabled {
			var ledger legacy.Mirrorer
			if cfg.Legacy.LedgerBaseURL != "" {
				ledger = legacy.NewLedgerClient(cfg.Legacy.LedgerBaseURL, cfg.AI.Timeout)
			}
			legacyHandler := handler.NewLegacyHandler(legacy.NewService(mediaStore, ledger, s.logger), s.logger)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAuth(tokens))
				r.Post("/legacy/games", legacyHandler.HandleRegisterGame)
				r.Post("/legacy/tokens", legacyHandler.HandleRegisterToken)
				r.Post("/legacy/collections", legacyHandler.HandleRegisterCollection)
				r.Post("/legacy/nfts", legacyHandler.HandleRegisterNFT)
			})
		}
	})

	return nil
}

// Start runs the server until SIGINT/SIGTERM, then drains in-flight
// requests for up to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // voice uploads and AI calls can be slow
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", slog.Int("port", s.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		s.logger.Info("shutting down", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}
