//go:build integration

package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/event-rsvp/internal/apperr"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/config"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/database"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/model"
)

var itStore *Postgres

func TestMain(m *testing.M) {
	os.Exit(runIntegration(m))
}

func runIntegration(m *testing.M) int {
	dpool, err := dockertest.NewPool("")
	if err != nil {
		log.Printf("could not connect to docker: %s", err)
		return 1
	}

	cfg := config.Postgres{
		Host: "localhost", User: "user", Password: "password", DBName: "test_db", SSLMode: "disable", MaxConns: 30,
	}
	resource, err := dpool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "15",
		Env: []string{
			"POSTGRES_USER=" + cfg.User,
			"POSTGRES_PASSWORD=" + cfg.Password,
			"POSTGRES_DB=" + cfg.DBName,
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
	})
	if err != nil {
		log.Printf("could not start postgres: %s", err)
		return 1
	}
	defer func() {
		if err := dpool.Purge(resource); err != nil {
			log.Printf("could not purge postgres: %s", err)
		}
	}()
	cfg.Port = resource.GetPort("5432/tcp")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var pool *pgxpool.Pool
	if err := dpool.Retry(func() error {
		var err error
		pool, err = database.NewPool(context.Background(), cfg, logger)
		return err
	}); err != nil {
		log.Printf("could not connect to postgres: %s", err)
		return 1
	}
	defer pool.Close()

	db := database.OpenDB(pool)
	if err := database.MigrateUp(db, cfg.DBName); err != nil {
		log.Printf("migrate: %s", err)
		return 1
	}
	// The migrator closes the handle it was given.
	itStore = NewPostgres(database.OpenDB(pool))
	return m.Run()
}

func seedUsers(t *testing.T, n int) []string {
	t.Helper()
	faker := gofakeit.New(0)
	ids := make([]string, n)
	for i := range ids {
		ids[i] = uuid.NewString()
		require.NoError(t, itStore.CreateUser(context.Background(), &model.User{
			ID:        ids[i],
			Name:      faker.Name(),
			Email:     fmt.Sprintf("%s@example.com", ids[i]),
			CreatedAt: time.Now().UTC(),
		}))
	}
	return ids
}

func seedEvent(t *testing.T, creator string, capacity int) *model.Event {
	t.Helper()
	faker := gofakeit.New(0)
	now := time.Now().UTC()
	e := &model.Event{
		ID:            uuid.NewString(),
		CreatorID:     creator,
		Title:         faker.LoremIpsumSentence(4),
		Description:   faker.LoremIpsumSentence(15),
		Date:          faker.FutureDate().UTC(),
		Location:      faker.City(),
		Category:      model.CategoryOther,
		Capacity:      capacity,
		Image:         "/uploads/x.png",
		Attendees:     model.UserSet{},
		Collaborators: model.UserSet{},
		Likes:         model.UserSet{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, itStore.CreateEvent(context.Background(), e))
	return e
}

func TestIntegrationConcurrentJoins(t *testing.T) {
	const capacity, joiners = 10, 60
	users := seedUsers(t, joiners+1)
	ev := seedEvent(t, users[0], capacity)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		refused int
	)
	for _, id := range users[1:] {
		id := id
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := itStore.JoinIfRoom(context.Background(), ev.ID, id)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrConditionFailed):
				refused++
			default:
				t.Errorf("join: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, capacity, ok)
	assert.Equal(t, joiners-capacity, refused)

	got, err := itStore.GetEvent(context.Background(), ev.ID)
	require.NoError(t, err)
	assert.Len(t, got.Attendees, capacity)
	assert.Equal(t, got.Attendees.Normalize(), got.Attendees)
}

func TestIntegrationRepeatJoinAndLeave(t *testing.T) {
	ctx := context.Background()
	users := seedUsers(t, 2)
	ev := seedEvent(t, users[0], 2)

	_, err := itStore.JoinIfRoom(ctx, ev.ID, users[1])
	require.NoError(t, err)
	_, err = itStore.JoinIfRoom(ctx, ev.ID, users[1])
	assert.ErrorIs(t, err, ErrConditionFailed)

	got, err := itStore.RemoveAttendee(ctx, ev.ID, users[1])
	require.NoError(t, err)
	assert.Empty(t, got.Attendees)

	got, err = itStore.RemoveAttendee(ctx, ev.ID, users[1])
	require.NoError(t, err)
	assert.Empty(t, got.Attendees)
}

func TestIntegrationCapacityGuard(t *testing.T) {
	ctx := context.Background()
	users := seedUsers(t, 3)
	ev := seedEvent(t, users[0], 3)
	for _, id := range users[1:] {
		_, err := itStore.JoinIfRoom(ctx, ev.ID, id)
		require.NoError(t, err)
	}

	one := 1
	_, err := itStore.UpdateEvent(ctx, ev.ID, model.EventPatch{Capacity: &one})
	assert.ErrorIs(t, err, ErrConditionFailed)

	_, err = itStore.GetEvent(ctx, "not-a-uuid")
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestIntegrationCommentsCascade(t *testing.T) {
	ctx := context.Background()
	users := seedUsers(t, 1)
	ev := seedEvent(t, users[0], 1)
	require.NoError(t, itStore.CreateComment(ctx, &model.Comment{
		ID: uuid.NewString(), EventID: ev.ID, UserID: users[0], Text: "hello", CreatedAt: time.Now().UTC(),
	}))

	list, err := itStore.ListComments(ctx, ev.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, itStore.DeleteEvent(ctx, ev.ID))
	list, err = itStore.ListComments(ctx, ev.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

