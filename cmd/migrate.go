package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/Shivanand-hulikatti/event-rsvp/internal/config"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/database"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage the postgres schema.",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply all pending migrations.",
				Action: func(c *cli.Context) error {
					cfg, err := config.Load()
					if err != nil {
						return err
					}
					return migrateUp(c.Context, cfg, setupLogger(cfg.LogLevel, cfg.LogFormat))
				},
			},
			{
				Name:  "down",
				Usage: "Roll back migrations.",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "steps", Value: 1, Usage: "Number of migrations to roll back."},
				},
				Action: func(c *cli.Context) error {
					cfg, err := config.Load()
					if err != nil {
						return err
					}
					if cfg.StoreDriver != config.DriverPostgres {
						return fmt.Errorf("migrations only apply to the postgres driver")
					}
					logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
					pool, err := database.NewPool(c.Context, cfg.DB, logger)
					if err != nil {
						return err
					}
					defer pool.Close()
					db := database.OpenDB(pool)
					defer db.Close()

					if err := database.MigrateDown(db, cfg.DB.DBName, c.Int("steps")); err != nil {
						return err
					}
					logger.Info("migrations rolled back", "steps", c.Int("steps"))
					return nil
				},
			},
		},
	}
}

func migrateUp(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if cfg.StoreDriver != config.DriverPostgres {
		return fmt.Errorf("migrations only apply to the postgres driver")
	}
	pool, err := database.NewPool(ctx, cfg.DB, logger)
	if err != nil {
		return err
	}
	defer pool.Close()
	db := database.OpenDB(pool)
	defer db.Close()

	if err := database.MigrateUp(db, cfg.DB.DBName); err != nil {
		return err
	}
	logger.Info("migrations applied")
	return nil
}
