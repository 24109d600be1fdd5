package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eventdesk/server/internal/config"
)

var (
	// Global flags
	configPath string
	logLevel   string
	logFormat  string

	rootCmd = &cobra.Command{
		Use:   "server",
		Short: "eventdesk server - event catalogue backend",
		Long: `eventdesk server keeps the event catalogue edited by staff and serves
the currently visible events to customers holding an access token.

Besides the HTTP server it carries the administrative commands used to
manage customers, access tokens, the tag vocabulary and the schema.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		// No subcommand starts the server.
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveCmd.RunE(cmd, args)
		},
	}
)

// Execute is called by main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (env vars take precedence)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error) (default: info)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (json, console) (default: json)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(healthcheckCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(customersCmd)
	rootCmd.AddCommand(accessTokenCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(accountsCmd)
	rootCmd.AddCommand(addressesCmd)
}

// loadConfig reads --config and the environment, then applies the logging
// flags on top.
func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return config.Config{}, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	return cfg, nil
}
