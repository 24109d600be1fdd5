package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eventdesk/server/internal/storage/postgres"
)

var migrateDownSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
	Long: `Apply or roll back schema migrations.

The schema is embedded in the binary. Set DATABASE_MIGRATIONS_PATH (or
database.migrations_path) to run migrations from a directory instead.`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		if err := postgres.MigrateUp(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
			return err
		}
		return printMigrationVersion(cmd, cfg.Database.URL, cfg.Database.MigrationsPath)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back applied migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if migrateDownSteps <= 0 {
			return fmt.Errorf("--steps must be greater than zero")
		}
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		if err := postgres.MigrateDown(cfg.Database.URL, cfg.Database.MigrationsPath, migrateDownSteps); err != nil {
			return err
		}
		return printMigrationVersion(cmd, cfg.Database.URL, cfg.Database.MigrationsPath)
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the applied schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		return printMigrationVersion(cmd, cfg.Database.URL, cfg.Database.MigrationsPath)
	},
}

func init() {
	migrateDownCmd.Flags().IntVar(&migrateDownSteps, "steps", 1, "number of migrations to roll back")

	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
}

func printMigrationVersion(cmd *cobra.Command, databaseURL, migrationsPath string) error {
	version, dirty, err := postgres.MigrationVersion(databaseURL, migrationsPath)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if dirty {
		fmt.Fprintf(out, "schema version %d (dirty)\n", version)
		return nil
	}
	fmt.Fprintf(out, "schema version %d\n", version)
	return nil
}
