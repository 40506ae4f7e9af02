package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/logisq/xyronq/internal/core/config"
	"github.com/logisq/xyronq/internal/core/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE:  runMigrate,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	RunE:  runMigrateStatus,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}

func resolveDatabaseURL() (string, error) {
	if dbURL != "" {
		return dbURL, nil
	}
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	return cfg.DatabaseURL, nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	url, err := resolveDatabaseURL()
	if err != nil {
		return err
	}
	database, err := db.Open(url)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	if err := db.MigrateUp(database); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	fmt.Println("migrations applied")
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	url, err := resolveDatabaseURL()
	if err != nil {
		return err
	}
	database, err := db.Open(url)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	statuses, err := db.MigrateStatus(database)
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}

	for _, status := range statuses {
		state := "pending"
		if status.Applied {
			state = fmt.Sprintf("applied at %s", status.AppliedAt)
		}
		fmt.Printf("%-40s %s\n", status.ID, state)
	}
	return nil
}
