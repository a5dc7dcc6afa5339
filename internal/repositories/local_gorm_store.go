package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/nikgithub05/travel-buddy/internal/models"
)

// GORMLocalStore is a GORM implementation of LocalStore.
type GORMLocalStore struct {
	db *gorm.DB
}

// NewGORMLocalStore creates a new instance of GORMLocalStore.
func NewGORMLocalStore(db *gorm.DB) *GORMLocalStore {
	return &GORMLocalStore{
		db: db,
	}
}

// Migrate creates or updates the users, trip_preferences and log_entries tables.
func (r *GORMLocalStore) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&models.User{}, &models.TripPreference{}, &models.LogEntry{}); err != nil {
		return fmt.Errorf("failed to migrate local store: %w", err)
	}
	return nil
}

// InsertUser stores a new user. A unique violation on username, email or
// phone is reported as ErrDuplicateKey.
func (r *GORMLocalStore) InsertUser(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("%w: user %s", ErrDuplicateKey, user.Email)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *GORMLocalStore) UserExists(ctx context.Context, email, phone string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ? OR phone = ?", email, phone).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check user %s: %w", email, err)
	}
	return count > 0, nil
}

// GetUserByEmail retrieves a user by their email from the database.
func (r *GORMLocalStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user with email %s", ErrNotFound, email)
		}
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	return &user, nil
}

func (r *GORMLocalStore) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *GORMLocalStore) InsertPreference(ctx context.Context, pref *models.TripPreference) error {
	if err := r.db.WithContext(ctx).Create(pref).Error; err != nil {
		return fmt.Errorf("failed to create trip preference for user %d: %w", pref.UserID, err)
	}
	return nil
}

func (r *GORMLocalStore) PreferenceExists(ctx context.Context, userID uint, createdAt models.Timestamp) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TripPreference{}).
		Where("user_id = ? AND created_at = ?", userID, createdAt).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check trip preference %d_%s: %w", userID, createdAt, err)
	}
	return count > 0, nil
}

func (r *GORMLocalStore) ListPreferences(ctx context.Context) ([]models.TripPreference, error) {
	var prefs []models.TripPreference
	if err := r.db.WithContext(ctx).Order("id").Find(&prefs).Error; err != nil {
		return nil, fmt.Errorf("failed to list trip preferences: %w", err)
	}
	return prefs, nil
}

// LatestPreference breaks same-second ties by insertion order.
func (r *GORMLocalStore) LatestPreference(ctx context.Context, userID uint) (*models.TripPreference, error) {
	var pref models.TripPreference
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		First(&pref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest trip preference for user %d: %w", userID, err)
	}
	return &pref, nil
}

func (r *GORMLocalStore) InsertLogEntry(ctx context.Context, entry *models.LogEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create log entry: %w", err)
	}
	return nil
}
