// Package server wires the whole application: gateway, cache, session
// registry, handlers, middleware, and routes. It is the composition
// root; nothing below it knows how the pieces fit together.
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

	"github.com/chymezy/decentra-client/internal/auth"
	cachesqlite "github.com/chymezy/decentra-client/internal/cache/sqlite"
	"github.com/chymezy/decentra-client/internal/feed"
	"github.com/chymezy/decentra-client/internal/guard"
	"github.com/chymezy/decentra-client/internal/handler"
	"github.com/chymezy/decentra-client/internal/middleware"
	"github.com/chymezy/decentra-client/internal/privacy"
	"github.com/chymezy/decentra-client/internal/remote/httpapi"
	"github.com/chymezy/decentra-client/internal/session"
	"github.com/chymezy/decentra-client/internal/social"
)

// Config holds everything the server needs from the environment.
type Config struct {
	Port       int
	RemoteHost string // base URL of the backend, e.g. https://api.decentra.network
	JWTSecret  string
	CachePath  string // profile cache database; empty disables the cache

	OAuthClientID     string
	OAuthClientSecret string
	OAuthAuthURL      string
	OAuthTokenURL     string
	OAuthCallbackURL  string

	SecureCookies bool
	IdleTimeout   time.Duration
}

// Server owns the router and the resources that need closing on
// shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	cache  *cachesqlite.ProfileCache
}

// New assembles the full dependency chain. Each layer receives only the
// interfaces it needs: the feed engine sees the gateway and the cache,
// handlers see the engine and the session registry, and so on.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	if cfg.RemoteHost == "" {
		return nil, fmt.Errorf("server: remote host is required")
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	var cache *cachesqlite.ProfileCache
	if cfg.CachePath != "" {
		cache, err = cachesqlite.New(cfg.CachePath, cachesqlite.DefaultTTL)
		if err != nil {
			return nil, fmt.Errorf("server: opening profile cache: %w", err)
		}
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		cache:  cache,
	}
	if err := s.setupRoutes(tokens); err != nil {
		if cache != nil {
			cache.Close()
		}
		return nil, fmt.Errorf("server: setting up routes: %w", err)
	}
	return s, nil
}

func (s *Server) setupRoutes(tokens *auth.TokenService) error {
	gateway := httpapi.New(s.config.RemoteHost)

	pseudo, err := privacy.New()
	if err != nil {
		return err
	}

	// One session manager per identity. The factory logs sign-ins, with
	// identities digested for the privacy-sensitive modes.
	var managerOpts []session.Option
	if s.config.IdleTimeout > 0 {
		managerOpts = append(managerOpts, session.WithIdleTimeout(s.config.IdleTimeout))
	}
	registry := session.NewRegistry(func(identity string, mode session.PrivacyMode) *session.Manager {
		attr := slog.String("identity", identity)
		if mode.Pseudonymize() {
			attr = pseudo.Attr("identity", identity)
		}
		s.logger.Info("session manager created", slog.String("mode", string(mode)), attr)
		return session.NewManager(auth.NewStaticProvider(identity), gateway, s.logger, managerOpts...)
	})

	limiter := guard.NewRateLimiter(guard.DefaultRateLimitWindow)

	var profileCache feed.ProfileCache
	if s.cache != nil {
		profileCache = s.cache
	}
	engine := feed.NewEngine(gateway, profileCache, limiter, s.logger)
	toggler := social.NewToggler(gateway, limiter, s.logger)

	provider := auth.NewOAuthProvider(
		s.config.OAuthClientID,
		s.config.OAuthClientSecret,
		s.config.OAuthAuthURL,
		s.config.OAuthTokenURL,
		s.config.OAuthCallbackURL,
	)

	authHandler := handler.NewAuthHandler(provider, tokens, registry, s.logger, s.config.SecureCookies)
	feedHandler := handler.NewFeedHandler(engine, registry, s.logger)
	socialHandler := handler.NewSocialHandler(toggler, registry, s.logger)
	profileHandler := handler.NewProfileHandler(gateway, profileCache, registry, s.logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger, pseudo))

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := gateway.HealthCheck(r.Context()); err != nil {
			http.Error(w, `{"status":"degraded"}`, http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	s.router.Route("/auth", func(r chi.Router) {
		r.Get("/login", authHandler.HandleLogin)
		r.Get("/callback", authHandler.HandleCallback)
		r.With(auth.OptionalSession(tokens)).Post("/logout", authHandler.HandleLogout)
	})

	s.router.Route("/api", func(r chi.Router) {
		// Public reads: a session is used if present, never required.
		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalSession(tokens))
			r.Get("/session", authHandler.HandleSession)
			r.Get("/users/{id}", profileHandler.HandleGetProfile)
			r.Get("/users/{id}/posts", feedHandler.HandleUserPosts)
			r.Get("/users/{id}/followers", profileHandler.HandleFollowers)
			r.Get("/users/{id}/following", profileHandler.HandleFollowing)
			r.Get("/usernames/{username}", profileHandler.HandleCheckUsername)
			r.Get("/posts/{id}", feedHandler.HandleGetPost)
			r.Get("/posts/{id}/comments", feedHandler.HandleGetComments)
			r.Get("/stats", profileHandler.HandlePlatformStats)
		})

		// Everything else needs a live session.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireSession(tokens))
			r.Get("/feed", feedHandler.HandleSocialFeed)
			r.Get("/feed/me", feedHandler.HandleUserFeed)
			r.Post("/posts", feedHandler.HandleCreatePost)
			r.Post("/posts/{id}/comments", feedHandler.HandleAddComment)
			r.Post("/posts/{id}/like", socialHandler.HandleToggleLike)
			r.Post("/users/{id}/follow", socialHandler.HandleToggleFollow)
			r.Get("/users/{id}/follow", profileHandler.HandleIsFollowing)
			r.Get("/profile", profileHandler.HandleMyProfile)
			r.Post("/profile", profileHandler.HandleCreateProfile)
			r.Put("/profile", profileHandler.HandleUpdateProfile)
			r.Get("/follow-requests", profileHandler.HandlePendingRequests)
			r.Post("/follow-requests/{id}/approve", profileHandler.HandleApproveRequest)
			r.Post("/follow-requests/{id}/reject", profileHandler.HandleRejectRequest)
		})
	})

	return nil
}

// Start runs the server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests, and
// close the cache so its WAL is flushed.
func (s *Server) Start() error {
	if s.cache != nil {
		defer s.cache.Close()
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", slog.Int("port", s.config.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		s.logger.Info("shutting down", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: graceful shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
