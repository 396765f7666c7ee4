package main

import (
	"fmt"
	"os"

	"bookstore/internal/config"
	"bookstore/internal/infra/db"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var Version = "dev"

// .envの場所
var envFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "bookstore",
		Short:         "Bookstore backend (catalog, checkout, payment webhook, downloads)",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(createAdminCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// 設定を読んでDBに繋ぐ
func loadAndConnect() (config.Config, *gorm.DB, error) {
	config.LoadDotEnv(envFile)

	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}

	gdb, err := db.Connect(cfg)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("connect database: %w", err)
	}
	return cfg, gdb, nil
}
