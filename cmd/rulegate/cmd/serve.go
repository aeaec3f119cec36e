package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rulegate/rulegate/internal/core/api"
	"github.com/rulegate/rulegate/internal/core/auth"
	"github.com/rulegate/rulegate/internal/core/config"
	"github.com/rulegate/rulegate/internal/core/db"
	"github.com/rulegate/rulegate/internal/core/logging"
	"github.com/rulegate/rulegate/internal/core/server"
	"github.com/rulegate/rulegate/internal/registry"
)

const Version = "0.1.0"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP rule API service",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("host", "0.0.0.0", "HTTP server host")
	serveCmd.Flags().Int("port", 8080, "HTTP server port")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	log, err := logging.New(os.Stdout, level, logFormat)
	if err != nil {
		return err
	}

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

	if dbURL == "" {
		return fmt.Errorf("--db-url required")
	}
	database, err := db.Open(dbURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	var migrationID string
	checkQuery := `SELECT migration_id FROM migrations WHERE migration_id = '001_initial_schema.sql'`
	err = database.Get(&migrationID, database.Rebind(checkQuery))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("migration 001_initial_schema not applied - run 'rulegate migrate' first")
		}
		return fmt.Errorf("failed to check migrations: %w", err)
	}

	queries, err := db.LoadQueries(database)
	if err != nil {
		return fmt.Errorf("failed to load queries: %w", err)
	}

	secrets, err := config.HMACSecrets()
	if err != nil {
		return fmt.Errorf("failed to load HMAC secrets: %w", err)
	}
	if len(secrets) == 0 {
		return fmt.Errorf("no HMAC secrets configured (set RG_HMAC_SECRET environment variable)")
	}

	authenticator := auth.NewAuthenticator(secrets, queries)

	store := db.NewStore(queries)
	reg := registry.New()
	if err := store.LoadRegistry(reg); err != nil {
		return fmt.Errorf("failed to load stored rule sets: %w", err)
	}

	service, err := api.NewRuleAPIService(store, reg, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	httpServer, err := server.NewHTTPServer(cfg, service, authenticator)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	log.Info("starting rule API",
		"version", Version,
		"host", cfg.Host,
		"port", cfg.Port,
		"namespaces", len(reg.Namespaces()))
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
		log.Info("shutting down gracefully")
		return httpServer.Shutdown(ctx)
	}
}
