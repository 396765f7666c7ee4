package main

import (
	"fmt"

	"bookstore/internal/infra/db"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gdb, err := loadAndConnect()
			if err != nil {
				return err
			}

			if err := db.Migrate(gdb); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "migration completed")
			return nil
		},
	}
}
