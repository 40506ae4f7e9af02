package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/logisq/xyronq/internal/core/db"
	"github.com/logisq/xyronq/internal/seed"
	"github.com/logisq/xyronq/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace all data with the demo decision configuration",
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
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
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	st, err := store.New(database)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}

	if err := seed.Apply(context.Background(), st); err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}
	fmt.Println("seed complete")
	return nil
}
