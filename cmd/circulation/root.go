package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-circulation-go/circulation/app"
	"github.com/AntonStoeckl/library-circulation-go/circulation/shell/config"
	"github.com/AntonStoeckl/library-circulation-go/ledgerstore/oteladapters"
)

const commandTimeout = 30 * time.Second

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "circulation",
		Short:         "Library circulation: requests, loans, returns and fines",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newRequestCommand(),
		newIssueCommand(),
		newReturnCommand(),
		newSettleCommand(),
		newFinesCommand(),
		newOverdueCommand(),
		newAuditCommand(),
		newUserCommand(),
		newBookCommand(),
		newMemberCommand(),
		newTokenCommand(),
	)

	return root
}

// runtime is everything a one-shot command needs. Close releases it.
type runtime struct {
	cfg      config.Config
	ledger   *config.Ledger
	handlers *app.HandlerBundle
	closers  []func() error
}

func (r *runtime) Close() error {
	var err error

	for i := len(r.closers) - 1; i >= 0; i-- {
		err = errors.Join(err, r.closers[i]())
	}

	return err
}

// openRuntime loads the environment, opens the ledger and builds the handlers.
// Nil fields in obs mean no metrics or tracing; the logger defaults to warnings on stderr.
func openRuntime(ctx context.Context, obs config.Observability) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	policy, err := cfg.FinePolicy()
	if err != nil {
		return nil, err
	}

	if obs.Logger == nil {
		obs.Logger = oteladapters.NewSlogBridgeLoggerWithHandler(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}

	rt := &runtime{cfg: cfg}

	ledger, err := config.OpenLedger(ctx, cfg, obs)
	if err != nil {
		return nil, err
	}
	rt.ledger = ledger
	rt.closers = append(rt.closers, ledger.Close)

	locker, closeLocker := config.NewLocker(cfg)
	rt.closers = append(rt.closers, closeLocker)

	rt.handlers, err = app.NewHandlerBundle(ledger.Store, app.Settings{
		Locker:           locker,
		Rules:            cfg.CheckoutRules(),
		Policy:           policy,
		MetricsCollector: obs.Metrics,
		TracingCollector: obs.Tracing,
		ContextualLogger: obs.Logger,
	})
	if err != nil {
		return nil, errors.Join(err, rt.Close())
	}

	return rt, nil
}

// withRuntime runs fn against a fresh runtime under the command timeout.
func withRuntime(cmd *cobra.Command, fn func(ctx context.Context, rt *runtime) error) (err error) {
	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	rt, err := openRuntime(ctx, config.Observability{})
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, rt.Close())
	}()

	return fn(ctx, rt)
}
