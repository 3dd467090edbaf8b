// Command server runs the HTTP frontend for the social network client.
// Configuration comes from environment variables; see the getenv calls
// below for the full list.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/chymezy/decentra-client/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
		port = p
	}

	remoteHost := getenv("REMOTE_HOST", "http://localhost:4943")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Error("JWT_SECRET is required; generate one with: openssl rand -hex 32")
		os.Exit(1)
	}

	cachePath := getenv("CACHE_PATH", "data/profile-cache.db")
	if cachePath != "" {
		if err := os.MkdirAll(filepath.Dir(cachePath), 0755); err != nil {
			logger.Error("failed to create cache directory",
				slog.String("dir", filepath.Dir(cachePath)),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	idleTimeout := time.Duration(0)
	if v := os.Getenv("SESSION_IDLE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			logger.Error("invalid SESSION_IDLE_TIMEOUT", slog.String("value", v))
			os.Exit(1)
		}
		idleTimeout = d
	}

	cfg := server.Config{
		Port:       port,
		RemoteHost: remoteHost,
		JWTSecret:  jwtSecret,
		CachePath:  cachePath,

		OAuthClientID:     os.Getenv("OAUTH_CLIENT_ID"),
		OAuthClientSecret: os.Getenv("OAUTH_CLIENT_SECRET"),
		OAuthAuthURL:      getenv("OAUTH_AUTH_URL", "https://identity.decentra.network/authorize"),
		OAuthTokenURL:     getenv("OAUTH_TOKEN_URL", "https://identity.decentra.network/token"),
		OAuthCallbackURL:  getenv("OAUTH_CALLBACK_URL", fmt.Sprintf("http://localhost:%d/auth/callback", port)),

		SecureCookies: os.Getenv("INSECURE_COOKIES") == "",
		IdleTimeout:   idleTimeout,
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// getenv returns the environment value or a default.
func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
