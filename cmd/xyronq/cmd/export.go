package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/logisq/xyronq/internal/codegen"
	"github.com/logisq/xyronq/internal/core/db"
	"github.com/logisq/xyronq/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write generated C# contracts to a directory",
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().String("out", "contracts", "output directory")
}

func runExport(cmd *cobra.Command, args []string) error {
	outDir, _ := cmd.Flags().GetString("out")

	url, err := resolveDatabaseURL()
	if err != nil {
		return err
	}
	database, err := db.Open(url)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	st, err := store.New(database)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}

	domains, err := st.ListDomainGraphs(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load domains: %w", err)
	}

	out := codegen.GenerateAll(domains, time.Now().UTC())
	for _, warning := range out.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}

	for path, content := range out.Files {
		target := filepath.Join(outDir, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Dir(target), err)
		}
		if err := os.WriteFile(target, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
	}

	fmt.Printf("wrote %d files to %s\n", len(out.Files), outDir)
	return nil
}
