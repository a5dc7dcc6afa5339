package services_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nikgithub05/travel-buddy/internal/database"
	"github.com/nikgithub05/travel-buddy/internal/logging"
	"github.com/nikgithub05/travel-buddy/internal/repositories"
	"github.com/nikgithub05/travel-buddy/internal/services"
)

const testPhoneKey = "test-phone-key"

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

func newDigester(t *testing.T) *services.PhoneDigester {
	t.Helper()
	d, err := services.NewPhoneDigester(testPhoneKey)
	require.NoError(t, err)
	return d
}

func newCoordinator(t *testing.T, local repositories.LocalStore, remote repositories.RemoteStore) *services.DualWriteCoordinator {
	t.Helper()
	return services.NewDualWriteCoordinator(local, remote, services.NewBcryptHasher(bcrypt.MinCost), newDigester(t), logging.NewNop())
}

func fixedClock(s string) func() time.Time {
	t, err := time.Parse(time.DateTime, s)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

type publishedEvent struct {
	RoutingKey string
	Body       []byte
}

// recordingPublisher keeps every published event in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(routingKey string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{RoutingKey: routingKey, Body: body})
	return nil
}

func (p *recordingPublisher) Events() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}

func signupInput(n int) services.SignupInput {
	return services.SignupInput{
		Username: fmt.Sprintf("user%d", n),
		Email:    fmt.Sprintf("user%d@x.com", n),
		Phone:    fmt.Sprintf("+3519100000%02d", n),
		Password: "secret-password",
	}
}

func preferenceInput(userID uint, destination string) services.PreferenceInput {
	return services.PreferenceInput{
		UserID:      userID,
		Destination: destination,
		StartDate:   "2024-06-01",
		EndDate:     "2024-06-03",
		Budget:      1500.25,
		Activities:  []string{"hiking", "museums"},
		GroupSize:   2,
	}
}
