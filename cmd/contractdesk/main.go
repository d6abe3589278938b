// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for contractdesk. The serve command runs
// the JSON API; the remaining commands work on local files or the database
// without starting a server.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"contractdesk/internal/config"
)

var (
	envFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "contractdesk",
	Short: "Contract templates, placeholders and document generation",
	Long: `contractdesk stores contract templates, discovers their <placeholder>
fields and generates populated contracts as HTML or DOCX.

Configuration is read from the environment, optionally seeded from a .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(envFile); err != nil {
			return err
		}
		setupLogger(os.Getenv("APP_ENV"), verbose)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd, migrateCmd, fieldsCmd, renderCmd)
}

// setupLogger installs the default slog logger: JSON in production, text
// everywhere else.
func setupLogger(env string, debug bool) {
	level := slog.LevelInfo
	if debug || env == "" || env == "development" {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if env == "production" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
