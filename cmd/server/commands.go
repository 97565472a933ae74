package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trackii-backend/internal/auth"
	"trackii-backend/internal/config"
	"trackii-backend/internal/database"
	"trackii-backend/internal/logging"
	"trackii-backend/internal/models"
	"trackii-backend/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// commandContext is filled by the root command before any subcommand runs.
type commandContext struct {
	cfg    *config.Config
	logger *zap.Logger
}

func (c *commandContext) openDB() (*gorm.DB, error) {
	if c.cfg.UsesDefaultDSN() {
		c.logger.Warn("DATABASE_DSN not set, using local default")
	}
	return database.Open(c.cfg, c.logger)
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	root := &cobra.Command{
		Use:           "trackii",
		Short:         "Scan registration backend for shop-floor work orders",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			ctx.cfg = cfg
			ctx.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if ctx.logger != nil {
				_ = ctx.logger.Sync()
			}
		},
	}

	root.AddCommand(newServeCommand(ctx))
	root.AddCommand(newMigrateCommand(ctx))
	root.AddCommand(newSeedCommand(ctx))
	root.AddCommand(newTokenCommand(ctx))
	return root
}

func newServeCommand(ctx *commandContext) *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.openDB()
			if err != nil {
				return err
			}
			if !skipMigrate {
				if err := database.Migrate(db); err != nil {
					return err
				}
			}

			app := server.New(ctx.cfg, db, ctx.logger)

			sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				ctx.logger.Info("Server listening", zap.String("port", ctx.cfg.HTTPPort))
				errCh <- app.Listen(":" + ctx.cfg.HTTPPort)
			}()

			select {
			case err := <-errCh:
				return err
			case <-sigCtx.Done():
			}

			ctx.logger.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := app.ShutdownWithContext(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not run schema migrations on startup")
	return cmd
}

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.openDB()
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			ctx.logger.Info("Schema up to date")
			return nil
		},
	}
}

func newSeedCommand(ctx *commandContext) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load reference data (routes, products, users, devices, error codes) from YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return errors.New("--file is required")
			}
			data, err := database.LoadSeedFile(file)
			if err != nil {
				return err
			}
			db, err := ctx.openDB()
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			if err := database.Seed(db, data); err != nil {
				return err
			}
			ctx.logger.Info("Seed loaded",
				zap.String("file", file),
				zap.Int("routes", len(data.Routes)),
				zap.Int("products", len(data.Products)),
				zap.Int("devices", len(data.Devices)),
			)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the seed YAML file")
	return cmd
}

func newTokenCommand(ctx *commandContext) *cobra.Command {
	var username, deviceUID string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a user, optionally bound to a scanner device",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return errors.New("--user is required")
			}
			db, err := ctx.openDB()
			if err != nil {
				return err
			}

			var user models.User
			if err := db.Where("username = ? AND active = ?", username, true).First(&user).Error; err != nil {
				return fmt.Errorf("active user %q not found: %w", username, err)
			}

			var device *models.Device
			if deviceUID != "" {
				device = &models.Device{}
				if err := db.Where("device_uid = ? AND active = ?", deviceUID, true).First(device).Error; err != nil {
					return fmt.Errorf("active device %q not found: %w", deviceUID, err)
				}
				if device.UserID == nil || *device.UserID != user.ID {
					return fmt.Errorf("device %q is not registered to %s", deviceUID, username)
				}
			}

			token, err := auth.GenerateToken(ctx.cfg.JWTSecret, &user, device, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "user", "u", "", "Username")
	cmd.Flags().StringVarP(&deviceUID, "device", "d", "", "Device UID the token is bound to")
	cmd.Flags().DurationVar(&ttl, "ttl", auth.DefaultTokenTTL, "Token lifetime")
	return cmd
}
