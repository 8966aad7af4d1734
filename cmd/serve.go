// File: cmd/serve.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/xkilldash9x/accountforge/internal/api"
	"github.com/xkilldash9x/accountforge/internal/browser"
	"github.com/xkilldash9x/accountforge/internal/config"
	"github.com/xkilldash9x/accountforge/internal/observability"
	"github.com/xkilldash9x/accountforge/internal/orchestrator"
	"github.com/xkilldash9x/accountforge/internal/payment"
	"github.com/xkilldash9x/accountforge/internal/proxy"
	"go.uber.org/zap"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the account creation HTTP service.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return runServer(cmd.Context(), cfg)
		},
	}
}

// runServer assembles the pipeline and serves until the context is cancelled.
func runServer(ctx context.Context, cfg *config.Config) error {
	logger := observability.GetLogger()

	verifier := payment.NewFacilitatorClient(cfg.Payment.FacilitatorURL, cfg.Payment.VerifyTimeout, logger)
	allocator := proxy.NewPoolAllocator(cfg.Proxy)
	client := browser.NewClient(cfg.Browser.BaseURL, cfg.Browser.InternalKey, cfg.Browser.CommandTimeout, logger)

	orch := orchestrator.New(
		verifier,
		allocator,
		client,
		nil, // time-seeded generator
		orchestrator.DefaultFlowSelectors(),
		cfg.Signup.URL,
		orchestrator.Settings{
			PayTo:           cfg.Payment.PayTo,
			PriceUSD:        cfg.Payment.PriceUSD,
			Network:         cfg.Payment.Network,
			DefaultCountry:  cfg.Proxy.DefaultCountry,
			SessionDuration: cfg.Browser.SessionDuration,
			HasInternalKey:  cfg.Browser.InternalKey != "",
		},
		logger,
	)

	handlers := api.NewHandlers(orch, cfg.Payment, logger)
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.NewRouter(handlers),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening.", zap.String("addr", cfg.Server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received, draining connections.")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	}
}
