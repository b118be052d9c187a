package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/justsurfingit/brand-theme-generator/internal/browser"
	"github.com/justsurfingit/brand-theme-generator/internal/config"
	"github.com/justsurfingit/brand-theme-generator/internal/database"
	"github.com/justsurfingit/brand-theme-generator/internal/extractor"
	"github.com/justsurfingit/brand-theme-generator/internal/handlers"
	"github.com/justsurfingit/brand-theme-generator/internal/logger"
	"github.com/justsurfingit/brand-theme-generator/internal/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Configuration and logging
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(logger.Options{Level: cfg.LogLevel, HumanReadable: cfg.LogPretty})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Optional persistence
	var (
		store   handlers.TemplateRepository
		matcher handlers.CompanyResolver
	)
	if cfg.PersistenceEnabled() {
		db, err := database.Connect(cfg.DatabaseURL, log)
		if err != nil {
			return err
		}
		defer func() {
			if err := database.Close(db); err != nil {
				log.Warn().Err(err).Msg("closing database failed")
			}
		}()
		templateStore := services.NewTemplateStore(db)
		store = templateStore
		matcher = services.NewMatcherService(templateStore)
	} else {
		log.Warn().Msg("DATABASE_URL not set, generated templates will not be stored")
	}

	// 3. Render pool, extractor and models
	pool := browser.NewPool(
		browser.ChromeLauncher(cfg.Pool.ChromePath),
		browser.PoolConfig{MaxPages: cfg.Pool.MaxPages, RetireAfter: cfg.Pool.RetireAfter},
		log,
	)
	defer pool.Shutdown()

	exCfg := extractor.DefaultConfig()
	exCfg.NavTimeout = cfg.Pool.NavTimeout
	var styles services.StyleExtractor = extractor.New(pool, exCfg, log)
	if cfg.Cache.Enabled() {
		styles = services.NewCachedExtractor(styles, cfg.Cache.Size, cfg.Cache.TTL, log)
	}

	llm, err := services.NewLLMServiceFromConfig(ctx, cfg.LLM, log)
	if err != nil {
		return err
	}
	pipeline := services.NewPipeline(styles, llm, log)

	// 4. HTTP
	if cfg.LogLevel != "debug" && cfg.LogLevel != "trace" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(handlers.RouterConfig{
		APIKeys:     cfg.APIKeys,
		CORSOrigins: cfg.CORSOrigins,
		Templates:   handlers.NewTemplateHandler(pipeline, store, matcher, log),
		Pool:        pool,
		Log:         log,
	})
	if !cfg.AuthEnabled() {
		log.Warn().Msg("API_KEYS not set, generation endpoint is unauthenticated")
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return serve(ctx, srv, log)
}

// serve runs srv until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, srv *http.Server, log zerolog.Logger) error {
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
