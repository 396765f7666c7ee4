package main

import (
	"fmt"

	infraRepo "bookstore/internal/infra/repository"
	"bookstore/internal/seed"

	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed [catalog.yaml]",
		Short: "Load books and formats from a YAML catalog",
		Long: `Load books and formats from a YAML catalog.

Books whose slug already exists are skipped, so the command can be run
repeatedly.

Example:
  bookstore seed catalog.example.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := seed.LoadFile(args[0])
			if err != nil {
				return err
			}

			_, gdb, err := loadAndConnect()
			if err != nil {
				return err
			}

			res, err := seed.Apply(cmd.Context(), infraRepo.NewTxManagerGorm(gdb), catalog)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created %d books, skipped %d\n", res.Created, res.Skipped)
			return nil
		},
	}

	return cmd
}
