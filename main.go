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

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	assistantx "github.com/tanpawarit/Chative-Policy-Gateway/agent/agents/assistant"
	gatewayx "github.com/tanpawarit/Chative-Policy-Gateway/agent/agents/gateway"
	apix "github.com/tanpawarit/Chative-Policy-Gateway/agent/api"
	contractx "github.com/tanpawarit/Chative-Policy-Gateway/agent/contract"
	directoryx "github.com/tanpawarit/Chative-Policy-Gateway/agent/directory"
	llmx "github.com/tanpawarit/Chative-Policy-Gateway/agent/llm"
	statex "github.com/tanpawarit/Chative-Policy-Gateway/agent/state"
	toolx "github.com/tanpawarit/Chative-Policy-Gateway/agent/tool"
	configx "github.com/tanpawarit/Chative-Policy-Gateway/pkg/config"
	_ "github.com/tanpawarit/Chative-Policy-Gateway/pkg/logger/autoload"
	ollamax "github.com/tanpawarit/Chative-Policy-Gateway/pkg/ollama"
)

type AppConfig struct {
	Addr              string        `envconfig:"ADDR" default:":8080"`
	RequestTimeout    time.Duration `envconfig:"REQUEST_TIMEOUT" default:"120s"`
	ShutdownTimeout   time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"30"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
	PlatformName      string        `envconfig:"PLATFORM_NAME" default:"eBay"`
	GuestFallback     bool          `envconfig:"GUEST_FALLBACK" default:"false"`
	SessionTTL        time.Duration `envconfig:"SESSION_TTL" default:"0s"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		log.Fatal().Err(err).Msg("gateway stopped")
	}
	log.Info().Msg("gateway stopped")
}

func run(ctx context.Context) error {
	appCfg := configx.MustNew[AppConfig]("")
	llmCfg := configx.MustNew[llmx.Config]("")
	searchCfg := configx.MustNew[toolx.SearchConfig]("SEARCH")
	dirCfg := configx.MustNew[directoryx.PostgresConfig]("")

	directory, readiness, closeDirectory, err := openDirectory(ctx, *dirCfg)
	if err != nil {
		return err
	}
	defer closeDirectory()

	searcher, err := toolx.NewDuckDuckGo(*searchCfg)
	if err != nil {
		return fmt.Errorf("create search tool: %w", err)
	}

	registry, err := assistantx.NewRegistry(ctx, *llmCfg, searcher, appCfg.PlatformName)
	if err != nil {
		return fmt.Errorf("create assistants: %w", err)
	}

	store := statex.NewMemoryStore(statex.WithTTL(appCfg.SessionTTL))
	gw, err := gatewayx.New(store, registry, directory, gatewayx.Config{
		Platform:      appCfg.PlatformName,
		GuestFallback: appCfg.GuestFallback,
	})
	if err != nil {
		return fmt.Errorf("create gateway: %w", err)
	}

	var limiter *apix.RateLimiter
	if appCfg.RateLimitRequests > 0 && appCfg.RateLimitWindow > 0 {
		limiter = apix.NewRateLimiter(appCfg.RateLimitRequests, appCfg.RateLimitWindow)
		defer limiter.Close()
	}

	probe := ollamax.NewProbe(llmCfg.OllamaFor(contractx.AgentTypeAuthenticated))
	readiness = append(readiness, probe)

	handler := apix.NewHandler(gw, readiness, limiter, apix.Config{RequestTimeout: appCfg.RequestTimeout})
	srv := &http.Server{
		Addr:              appCfg.Addr,
		Handler:           handler.Router(log.Logger),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().
			Str("addr", srv.Addr).
			Str("platform", appCfg.PlatformName).
			Str("model", probe.Model()).
			Bool("guest_fallback", appCfg.GuestFallback).
			Msg("gateway listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), appCfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// openDirectory selects Postgres when DIRECTORY_DSN is set and falls back to
// the compiled-in table otherwise.
func openDirectory(ctx context.Context, cfg directoryx.PostgresConfig) (contractx.Directory, apix.Checks, func(), error) {
	if cfg.DSN == "" {
		log.Info().Int("entries", len(directoryx.DefaultEntries)).Msg("using static credential directory")
		return directoryx.Default(), nil, func() {}, nil
	}

	pg, err := directoryx.NewPostgres(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open directory: %w", err)
	}
	closeFn := func() {
		if err := pg.Close(); err != nil {
			log.Warn().Err(err).Msg("close directory")
		}
	}

	if err := pg.Ping(ctx); err != nil {
		closeFn()
		return nil, nil, nil, err
	}
	if cfg.Seed {
		if err := pg.Seed(ctx, directoryx.DefaultEntries...); err != nil {
			closeFn()
			return nil, nil, nil, err
		}
		log.Info().Int("entries", len(directoryx.DefaultEntries)).Msg("seeded credential directory")
	}

	log.Info().Msg("using postgres credential directory")
	return pg, apix.Checks{pg}, closeFn, nil
}
