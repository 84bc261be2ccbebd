package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-circulation-go/circulation/shell/config"
	"github.com/AntonStoeckl/library-circulation-go/ledgerstore/postgresengine"
)

// ErrStatusNeedsPostgres is returned by "migrate status" for non-postgres drivers.
var ErrStatusNeedsPostgres = errors.New("migration status is only available for the postgres driver")

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Bring the ledger schema up to date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, func(_ context.Context, rt *runtime) error {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "ledger schema is up to date (%s)\n", rt.cfg.LedgerDriver)
				return err
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the applied postgres migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if cfg.LedgerDriver != config.DriverPostgres {
				return ErrStatusNeedsPostgres
			}

			db, err := config.PostgresSQLDBConfig(cmd.Context(), cfg.PostgresDSN)
			if err != nil {
				return err
			}

			return errors.Join(postgresengine.MigrationStatus(cmd.Context(), db), db.Close())
		},
	})

	return cmd
}
