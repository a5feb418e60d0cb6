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

	"github.com/BerylCAtieno/destiny-match/internal/analysis"
	"github.com/BerylCAtieno/destiny-match/internal/config"
	"github.com/BerylCAtieno/destiny-match/internal/logging"
	"github.com/BerylCAtieno/destiny-match/internal/payment"
	"github.com/BerylCAtieno/destiny-match/internal/session"
	"github.com/BerylCAtieno/destiny-match/internal/web"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var (
	configPath string
	addrFlag   string
	debugFlag  bool
)

var rootCmd = &cobra.Command{
	Use:          "destinymatch",
	Short:        "Serve DestinyMatch compatibility readings",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.Flags().StringVar(&addrFlag, "addr", "", "listen address, overrides config and PORT")
	rootCmd.Flags().BoolVar(&debugFlag, "debug", false, "enable debug logging and gin debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addrFlag != "" {
		cfg.Addr = addrFlag
	}
	if debugFlag {
		cfg.Debug = true
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	analyzer, closeAnalyzer, err := newAnalyzer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeAnalyzer()

	store := session.NewStore(analyzer, cfg.SessionTTL, logger)
	provider := payment.NewPayPal(payment.PayPalConfig{
		ClientID:     cfg.PayPal.ClientID,
		ClientSecret: cfg.PayPal.ClientSecret,
		BaseURL:      cfg.PayPal.BaseURL,
		Timeout:      cfg.PayPal.Timeout,
	}, logger)

	handler := web.NewHandler(web.Options{
		Store:    store,
		Provider: provider,
		Gate: payment.GateConfig{
			Order: payment.Order{
				Amount:      cfg.Checkout.Price,
				Currency:    cfg.Checkout.Currency,
				Description: cfg.Checkout.Description,
			},
			PollInterval: cfg.PayPal.PollInterval,
			ReadyTimeout: cfg.PayPal.ReadyTimeout,
		},
		PayPalClientID: cfg.PayPal.ClientID,
		AnalysisReady:  cfg.AnalysisConfigured(),
		SecureCookie:   cfg.SecureCookie,
	}, logger)

	router, err := web.NewRouter(handler)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: cors.New(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost},
			AllowedHeaders:   []string{"Content-Type", "Accept"},
			AllowCredentials: true,
		}).Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("DestinyMatch starting", zap.String("addr", cfg.Addr), zap.Bool("analysis_configured", cfg.AnalysisConfigured()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return store.Run(gctx, cfg.SweepInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newAnalyzer returns the Gemini client, or a stand-in that refuses every
// request when no key is configured so the landing page can say so.
func newAnalyzer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (analysis.Analyzer, func(), error) {
	if !cfg.AnalysisConfigured() {
		logger.Warn("GEMINI_API_KEY is not set; readings are disabled")
		return analysis.Unconfigured{}, func() {}, nil
	}

	client, err := analysis.NewGeminiClient(ctx, analysis.Options{
		APIKey:      cfg.Gemini.APIKey,
		Model:       cfg.Gemini.Model,
		Temperature: cfg.Gemini.Temperature,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("create gemini client: %w", err)
	}
	return client, func() {
		if err := client.Close(); err != nil {
			logger.Warn("close gemini client", zap.Error(err))
		}
	}, nil
}
