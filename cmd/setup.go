package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/fishstation/internal/repositories"
	"github.com/desertthunder/fishstation/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes the example config when none exists and prepares the configured playlist store.
//
// A sqlite store is created and migrated; with --rollback its latest migration is undone instead.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.logger.Info("config file created", "path", configPath)
		}
		config = shared.DefaultConfig()
	}
	config.ApplyEnv()

	if _, err := config.ActiveStation(); err != nil {
		return err
	}

	storage := config.Storage
	if storage.Backend != repositories.BackendSQLite {
		r.logger.Info("playlists are stored as a document", "path", storage.Path)
		r.writePlain("✓ setup complete, playlists will be saved to %s\n", storage.Path)
		return nil
	}

	r.logger.Info("initializing database", "path", storage.Path)
	db, err := shared.NewDatabase(storage.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	if cmd.Bool("rollback") {
		r.logger.Info("rolling back latest migration")
		if err := shared.RollbackMigration(db); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
		r.writePlain("✓ rolled back latest migration of %s\n", storage.Path)
		return nil
	}

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", storage.Path)
	r.writePlain("✓ setup complete, playlists will be saved to %s\n", storage.Path)
	return nil
}
