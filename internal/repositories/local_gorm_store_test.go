package repositories_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikgithub05/travel-buddy/internal/database"
	"github.com/nikgithub05/travel-buddy/internal/models"
	"github.com/nikgithub05/travel-buddy/internal/repositories"
)

// newLocalStore opens a private in-memory SQLite database for one test.
func newLocalStore(t *testing.T) *repositories.GORMLocalStore {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	store := repositories.NewGORMLocalStore(db)
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func ts(t *testing.T, s string) models.Timestamp {
	t.Helper()
	v, err := models.ParseTimestamp(s)
	require.NoError(t, err)
	return v
}

func TestGORMLocalStore_InsertAndListUsers(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()

	user := &models.User{
		Username:     "alice",
		Email:        "a@x.com",
		Phone:        "H1",
		PasswordHash: "hash",
		CreatedAt:    ts(t, "2024-01-02 03:04:05"),
	}
	require.NoError(t, store.InsertUser(ctx, user))
	assert.NotZero(t, user.ID)

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "2024-01-02 03:04:05", users[0].CreatedAt.String())

	got, err := store.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)
}

func TestGORMLocalStore_DuplicateKey(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertUser(ctx, &models.User{Username: "alice", Email: "a@x.com", Phone: "H1", PasswordHash: "h", CreatedAt: ts(t, "2024-01-02 03:04:05")}))

	dupes := []*models.User{
		{Username: "alice", Email: "b@x.com", Phone: "H2", PasswordHash: "h", CreatedAt: ts(t, "2024-01-02 03:04:06")},
		{Username: "bob", Email: "a@x.com", Phone: "H3", PasswordHash: "h", CreatedAt: ts(t, "2024-01-02 03:04:06")},
		{Username: "carol", Email: "c@x.com", Phone: "H1", PasswordHash: "h", CreatedAt: ts(t, "2024-01-02 03:04:06")},
	}
	for _, u := range dupes {
		err := store.InsertUser(ctx, u)
		assert.ErrorIs(t, err, repositories.ErrDuplicateKey, u.Username)
	}
}

func TestGORMLocalStore_UserExistsMatchesEmailOrPhone(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()
	require.NoError(t, store.InsertUser(ctx, &models.User{Username: "alice", Email: "a@x.com", Phone: "H1", PasswordHash: "h", CreatedAt: ts(t, "2024-01-02 03:04:05")}))

	for _, tc := range []struct {
		email, phone string
		want         bool
	}{
		{"a@x.com", "other", true},
		{"other@x.com", "H1", true},
		{"other@x.com", "other", false},
	} {
		got, err := store.UserExists(ctx, tc.email, tc.phone)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%s/%s", tc.email, tc.phone)
	}
}

func TestGORMLocalStore_GetUserByEmailNotFound(t *testing.T) {
	store := newLocalStore(t)
	_, err := store.GetUserByEmail(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestGORMLocalStore_Preferences(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()

	older := &models.TripPreference{UserID: 1, Destination: "Lisbon", StartDate: "2024-06-01", EndDate: "2024-06-05", Budget: 1200.5, Activities: models.Activities{"food, wine", "surf"}, GroupSize: 2, CreatedAt: ts(t, "2024-05-01 10:00:00")}
	newer := &models.TripPreference{UserID: 1, Destination: "Porto", StartDate: "2024-07-01", EndDate: "2024-07-03", Budget: 800, Activities: models.Activities{"museums"}, GroupSize: 1, CreatedAt: ts(t, "2024-05-02 09:00:00")}
	other := &models.TripPreference{UserID: 2, Destination: "Rome", StartDate: "2024-07-01", EndDate: "2024-07-03", Budget: 500, Activities: models.Activities{"food"}, GroupSize: 3, CreatedAt: ts(t, "2024-05-03 09:00:00")}
	for _, p := range []*models.TripPreference{older, newer, other} {
		require.NoError(t, store.InsertPreference(ctx, p))
	}

	latest, err := store.LatestPreference(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "Porto", latest.Destination)

	exists, err := store.PreferenceExists(ctx, 1, ts(t, "2024-05-01 10:00:00"))
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.PreferenceExists(ctx, 2, ts(t, "2024-05-01 10:00:00"))
	require.NoError(t, err)
	assert.False(t, exists)

	all, err := store.ListPreferences(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, models.Activities{"food, wine", "surf"}, all[0].Activities)

	none, err := store.LatestPreference(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestGORMLocalStore_SameSecondPreferencesBothKept(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()
	at := ts(t, "2024-05-01 10:00:00")

	require.NoError(t, store.InsertPreference(ctx, &models.TripPreference{UserID: 1, Destination: "First", StartDate: "2024-06-01", EndDate: "2024-06-02", Budget: 1, Activities: models.Activities{"a"}, GroupSize: 1, CreatedAt: at}))
	require.NoError(t, store.InsertPreference(ctx, &models.TripPreference{UserID: 1, Destination: "Second", StartDate: "2024-06-01", EndDate: "2024-06-02", Budget: 1, Activities: models.Activities{"a"}, GroupSize: 1, CreatedAt: at}))

	all, err := store.ListPreferences(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	latest, err := store.LatestPreference(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Second", latest.Destination)
}

func TestGORMLocalStore_ConcurrentWriters(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- store.InsertUser(ctx, &models.User{
				Username:     fmt.Sprintf("user%d", i),
				Email:        fmt.Sprintf("u%d@x.com", i),
				Phone:        fmt.Sprintf("P%d", i),
				PasswordHash: "h",
				CreatedAt:    models.NewTimestamp(base.Add(time.Duration(i) * time.Second)),
			})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 20)
}

func TestGORMLocalStore_InsertLogEntry(t *testing.T) {
	store := newLocalStore(t)
	entry := &models.LogEntry{Message: "User alice registered", Level: models.LogLevelInfo, Timestamp: ts(t, "2024-05-01 10:00:00")}
	require.NoError(t, store.InsertLogEntry(context.Background(), entry))
	assert.NotZero(t, entry.ID)
}
