package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bookstore/internal/infra/db"
	"bookstore/internal/server"

	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var autoMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gdb, err := loadAndConnect()
			if err != nil {
				return err
			}

			if autoMigrate {
				if err := db.Migrate(gdb); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
			}

			// SIGINT/SIGTERMで止める
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			e := server.New(cfg, gdb, nil)
			return server.Start(ctx, e, cfg.Addr())
		},
	}

	cmd.Flags().BoolVar(&autoMigrate, "migrate", false, "run migrations before starting")

	return cmd
}
