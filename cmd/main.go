// Command wruf runs the image scoring and reputation service.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wrufbot/wruf/internal/adapters/fetch"
	"github.com/wrufbot/wruf/internal/adapters/http/api"
	"github.com/wrufbot/wruf/internal/adapters/oracle"
	"github.com/wrufbot/wruf/internal/adapters/store"
	session "github.com/wrufbot/wruf/internal/app"
	"github.com/wrufbot/wruf/internal/config"
	"github.com/wrufbot/wruf/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 120 * time.Second // must cover a full oracle round trip
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel))
		_ = logger.SetLevelString("info")
	}

	st, err := newStore(ctx, cfg)
	if err != nil {
		log.Error(ctx, "failed to open store", logger.Error(err))
		return
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Error(ctx, "store close failed", logger.Error(err))
		}
	}()

	oracleOpts := []oracle.Option{oracle.WithModel(cfg.GeminiModel)}
	if cfg.RubricPrompt != "" {
		oracleOpts = append(oracleOpts, oracle.WithPrompt(cfg.RubricPrompt))
	}
	scorer, err := oracle.NewGemini(ctx, cfg.GeminiAPIKey, oracleOpts...)
	if err != nil {
		log.Error(ctx, "failed to create oracle", logger.Error(err))
		return
	}

	fetcher := fetch.New(
		fetch.WithTimeout(time.Duration(cfg.FetchTimeoutMS)*time.Millisecond),
		fetch.WithMaxBytes(cfg.MaxContentBytes),
	)
	defer fetcher.Close()

	svc := session.New(st, scorer,
		session.WithAllowDuplicate(cfg.AllowDuplicate),
		session.WithMediaTypes(cfg.MediaTypes),
		session.WithLogger(log.Named("session")),
	)

	mux := http.NewServeMux()
	apiServer := api.NewServer(svc, fetcher, api.ServerConfig{
		MaxLeaderboardLimit: cfg.MaxLeaderboardLimit,
		AdminToken:          cfg.AdminToken,
	})
	apiServer.Register(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.Bool("allowDuplicate", cfg.AllowDuplicate),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
}

// newStore selects the Redis backend when configured, in-memory otherwise.
func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.RedisURL != "" {
		return store.NewRedisStore(ctx, cfg.RedisURL)
	}
	return store.NewMemoryStore(), nil
}
