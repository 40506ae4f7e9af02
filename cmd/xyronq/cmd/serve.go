package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/logisq/xyronq/internal/core/api"
	"github.com/logisq/xyronq/internal/core/config"
	"github.com/logisq/xyronq/internal/core/db"
	"github.com/logisq/xyronq/internal/core/server"
	"github.com/logisq/xyronq/internal/manifest"
	"github.com/logisq/xyronq/internal/schema"
	"github.com/logisq/xyronq/internal/store"
)

const Version = "0.1.0"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the decision configuration HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("host", "0.0.0.0", "HTTP server host")
	serveCmd.Flags().Int("port", 8080, "HTTP server port")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("host") {
		host, _ := cmd.Flags().GetString("host")
		cfg.Host = host
	}
	if cmd.Flags().Changed("port") {
		port, _ := cmd.Flags().GetInt("port")
		cfg.Port = port
	}
	if dbURL != "" {
		cfg.DatabaseURL = dbURL
	}

	database, err := db.Open(cfg.DatabaseURL)
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

	schemas, err := schema.NewService(ctx, st)
	if err != nil {
		return fmt.Errorf("failed to load validation schema: %w", err)
	}

	importer := manifest.NewImporter(st, schemas)

	service, err := api.NewService(st, schemas, importer, logger)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	httpServer, err := server.NewHTTPServer(cfg, service)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("starting XyronQ API",
		zap.String("version", Version),
		zap.String("addr", httpServer.Addr()))

	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
		logger.Info("shutting down gracefully")
		return httpServer.Shutdown(ctx)
	}
}
