package repositories

import (
	"context"

	"github.com/nikgithub05/travel-buddy/internal/models"
)

// LocalStore is the embedded relational copy of accounts and preferences.
// Every method is a single statement; there is no transaction spanning calls.
type LocalStore interface {
	InsertUser(ctx context.Context, user *models.User) error
	// UserExists matches on email or phone digest.
	UserExists(ctx context.Context, email, phone string) (bool, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	InsertPreference(ctx context.Context, pref *models.TripPreference) error
	PreferenceExists(ctx context.Context, userID uint, createdAt models.Timestamp) (bool, error)
	ListPreferences(ctx context.Context) ([]models.TripPreference, error)
	// LatestPreference returns nil when the user has saved nothing.
	LatestPreference(ctx context.Context, userID uint) (*models.TripPreference, error)

	InsertLogEntry(ctx context.Context, entry *models.LogEntry) error
}
