// Package cmd defines the CLI commands for the presstracker executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/prerna1001/pharma-press-tracker/internal/app"
	"github.com/prerna1001/pharma-press-tracker/internal/config"
)

var cfgFile string

type appKeyType string

const appKey appKeyType = "app"

// newRootCmd creates and configures the root command. Application
// services are built once in PersistentPreRunE and handed to
// subcommands through the command context.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presstracker",
		Short: "Scrapes pharmaceutical press releases and serves a search API.",
		Long: `presstracker collects press releases from configured pharmaceutical
company newsrooms, stores them in PostgreSQL, indexes them in
Elasticsearch, and exposes a query API over the collected records.`,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			application, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, application))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if application, ok := cmd.Context().Value(appKey).(*app.App); ok && application != nil {
				application.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	cmd.AddCommand(newRefreshCmd(), newServeCmd())
	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func resolveApp(ctx context.Context) (*app.App, error) {
	application, ok := ctx.Value(appKey).(*app.App)
	if !ok || application == nil {
		return nil, errors.New("application services not initialized")
	}
	return application, nil
}
