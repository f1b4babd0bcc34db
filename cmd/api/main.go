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

	"github.com/joho/godotenv"

	"github.com/zhouzirui/scribe/backend/internal/config"
	"github.com/zhouzirui/scribe/backend/internal/handler"
	"github.com/zhouzirui/scribe/backend/internal/logger"
	"github.com/zhouzirui/scribe/backend/internal/metrics"
	"github.com/zhouzirui/scribe/backend/internal/service/ai"
	"github.com/zhouzirui/scribe/backend/internal/service/billing"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return 1
	}

	log, err := logger.New(logger.Config{Level: cfg.Logging.Level, Development: cfg.Logging.Development})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()
	log = log.With(logger.String("service", "scribe"))

	if envErr != nil {
		log.Warn("no .env file loaded, using process environment only", logger.Error(envErr))
	}

	m := metrics.New()
	deps := handler.Dependencies{Logger: log, Metrics: m}

	if generator := newContentService(ctx, cfg.AI, log, m); generator != nil {
		deps.Generator = generator
	}
	if checkoutSvc := newBillingService(cfg.Billing, log, m); checkoutSvc != nil {
		deps.Checkout = checkoutSvc
	}

	router, err := handler.NewRouter(deps)
	if err != nil {
		log.Error("failed to build router", logger.Error(err))
		return 1
	}

	if err := startServer(ctx, cfg.Server, router, log); err != nil {
		log.Error("server error", logger.Error(err))
		return 1
	}
	log.Info("server stopped")
	return 0
}

// newContentService returns nil when the provider is not configured so the
// generation routes answer 503 instead of failing startup.
func newContentService(ctx context.Context, cfg config.AIConfig, log logger.Logger, m *metrics.Metrics) *ai.Service {
	if !cfg.Enabled() {
		log.Warn("text generation provider not configured, /generate disabled", logger.String("provider", cfg.Provider))
		return nil
	}

	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		log.Warn("failed to create chat model, /generate disabled", logger.Error(err))
		return nil
	}

	svc, err := ai.NewService(ctx, chatModel, cfg.Provider, log, m)
	if err != nil {
		log.Warn("failed to initialize content service, /generate disabled", logger.Error(err))
		return nil
	}

	log.Info("content service initialized", logger.String("provider", cfg.Provider), logger.String("model", cfg.Model))
	return svc
}

func newBillingService(cfg config.BillingConfig, log logger.Logger, m *metrics.Metrics) *billing.Service {
	if !cfg.Enabled() {
		log.Warn("STRIPE_SECRET_KEY not set, checkout disabled")
		return nil
	}

	sessions, err := billing.NewStripeSessions(cfg.SecretKey, nil)
	if err != nil {
		log.Warn("failed to create stripe client, checkout disabled", logger.Error(err))
		return nil
	}

	svc, err := billing.NewService(sessions, billing.Options{SuccessURL: cfg.SuccessURL, CancelURL: cfg.CancelURL}, log, m)
	if err != nil {
		log.Warn("failed to initialize billing service, checkout disabled", logger.Error(err))
		return nil
	}

	log.Info("billing service initialized")
	return svc
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, log logger.Logger) error {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info("scribe backend listening", logger.String("addr", serverCfg.Addr))
	return runServer(ctx, srv)
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
