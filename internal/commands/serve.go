package commands

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
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spendtrack-dev/spendtrack/internal/approval"
	"github.com/spendtrack-dev/spendtrack/internal/config"
	"github.com/spendtrack-dev/spendtrack/internal/expense"
	"github.com/spendtrack-dev/spendtrack/internal/httpapi"
	"github.com/spendtrack-dev/spendtrack/internal/ledger"
	"github.com/spendtrack-dev/spendtrack/internal/logging"
	"github.com/spendtrack-dev/spendtrack/internal/model"
	"github.com/spendtrack-dev/spendtrack/internal/store"
)

const shutdownGrace = 10 * time.Second

func newServeCommand() *cobra.Command {
	var configPath string
	var debug bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the spendtrack HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, debug)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "spendtrack.yaml", "path to config file")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")

	return cmd
}

func runServe(configPath string, debug bool) error {
	// .env is optional; real env vars win over it.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addr := os.Getenv("SPENDTRACK_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if path := os.Getenv("SPENDTRACK_DB"); path != "" {
		cfg.Storage.Path = path
	}

	log, err := logging.New(debug)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	st, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Error("closing store", zap.Error(err))
		}
	}()

	if err := provisionBudgets(st, cfg.Budgets); err != nil {
		return err
	}
	log.Info("store ready", zap.String("path", cfg.Storage.Path), zap.Strings("budgets", cfg.Budgets))

	ledgerSvc := ledger.NewService(st, log)
	expenseSvc := expense.NewService(st, log, expense.Options{
		MaxCurrencies:   cfg.Rules.MaxCurrencies,
		ReferencePrefix: cfg.Reference.Prefix,
		ReferenceStart:  cfg.Reference.Start,
	})
	coordinator := approval.NewCoordinator(st, log)
	api := httpapi.NewServer(ledgerSvc, expenseSvc, coordinator, st, log)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: api.Handler(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// provisionBudgets creates one empty budget per configured kind if it
// does not already exist. Budgets live for the application's lifetime
// and are only ever mutated through the ledger.
func provisionBudgets(st *store.Store, kinds []string) error {
	return st.Update(func(tx *store.Tx) error {
		for _, k := range kinds {
			kind, ok := model.ParseBudgetKind(k)
			if !ok {
				return fmt.Errorf("unknown budget kind in config: %q", k)
			}
			if err := tx.EnsureBudget(kind); err != nil {
				return err
			}
		}
		return nil
	})
}
