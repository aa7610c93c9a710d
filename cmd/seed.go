package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/Shivanand-hulikatti/event-rsvp/internal/apperr"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/config"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/model"
)

const seedPassword = "password123"

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Fill the store with fake users and events.",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "users", Value: 10, Usage: "Number of users to create."},
			&cli.IntFlag{Name: "events", Value: 25, Usage: "Number of events to create."},
			&cli.IntFlag{Name: "workers", Value: 8, Usage: "Concurrent store writers."},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
			if cfg.StoreDriver == config.DriverMemory {
				return errors.New("seeding the memory driver has no lasting effect")
			}
			if c.Int("users") < 1 {
				return errors.New("--users must be at least 1")
			}
			workers := max(c.Int("workers"), 1)

			store, closeStore, err := openStore(c.Context, cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()
			svcs, err := newServices(store, cfg, logger)
			if err != nil {
				return err
			}

			faker := gofakeit.New(0)
			regs := make([]model.RegisterRequest, c.Int("users"))
			for i := range regs {
				regs[i] = model.RegisterRequest{
					Name:     faker.Name(),
					Email:    fmt.Sprintf("%d.%s", i, strings.ToLower(faker.Email())),
					Password: seedPassword,
				}
			}

			userIDs := make([]string, len(regs))
			g, ctx := errgroup.WithContext(c.Context)
			g.SetLimit(workers)
			for i, req := range regs {
				i, req := i, req
				g.Go(func() error {
					res, err := svcs.users.Register(ctx, req)
					if err != nil {
						return fmt.Errorf("register %s: %w", req.Email, err)
					}
					userIDs[i] = res.User.ID
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			logger.Info("users seeded", "count", len(userIDs), "password", seedPassword)

			type seedEvent struct {
				creator string
				req     model.CreateEventRequest
			}
			events := make([]seedEvent, c.Int("events"))
			for i := range events {
				events[i] = seedEvent{
					creator: userIDs[faker.IntRange(0, len(userIDs)-1)],
					req: model.CreateEventRequest{
						Title:       faker.LoremIpsumSentence(4),
						Description: faker.LoremIpsumSentence(15),
						Date:        faker.FutureDate(),
						Location:    faker.City(),
						Capacity:    faker.IntRange(1, 50),
						Image:       "/uploads/placeholder.png",
						Category:    string(model.Categories[faker.IntRange(0, len(model.Categories)-1)]),
					},
				}
			}

			g, ctx = errgroup.WithContext(c.Context)
			g.SetLimit(workers)
			for _, ev := range events {
				ev := ev
				g.Go(func() error {
					_, err := svcs.events.Create(ctx, ev.creator, ev.req)
					if apperr.CodeOf(err) == apperr.CodeValidation {
						logger.Warn("skip generated event", "error", err)
						return nil
					}
					return err
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			logger.Info("events seeded", "count", len(events))
			return nil
		},
	}
}
