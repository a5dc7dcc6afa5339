package repositories

import (
	"context"
	"fmt"
	"strconv"

	"github.com/nikgithub05/travel-buddy/internal/models"
)

// Remote collection names.
const (
	UsersCollection       = "users"
	PreferencesCollection = "tripPreferences"
	LogsCollection        = "logs"
)

// RemoteStore is the networked document copy of accounts and preferences.
// Users are keyed by email, preferences by "{userId}_{createdAt}". Inserts
// have set semantics: writing an existing key replaces the document.
//
// Connectivity and server failures wrap ErrRemoteUnavailable; an empty
// result is not an error. A listing that meets undecodable documents still
// returns the decodable records, together with a *SkippedDocumentsError.
type RemoteStore interface {
	InsertUser(ctx context.Context, user *models.User) error
	UserExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	InsertPreference(ctx context.Context, pref *models.TripPreference) error
	PreferenceExists(ctx context.Context, userID uint, createdAt models.Timestamp) (bool, error)
	ListPreferences(ctx context.Context) ([]models.TripPreference, error)
	// LatestPreferenceForUser returns nil when the user has saved nothing.
	LatestPreferenceForUser(ctx context.Context, userID uint) (*models.TripPreference, error)

	InsertLogEntry(ctx context.Context, entry *models.LogEntry) error
}

// PreferenceKey is the remote document key of a preference.
func PreferenceKey(userID uint, createdAt models.Timestamp) string {
	return models.TripPreference{UserID: userID, CreatedAt: createdAt}.NaturalKey()
}

// UserDocument is the remote representation of a user.
type UserDocument struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	CreatedAt string `json:"created_at"`
}

func NewUserDocument(u *models.User) UserDocument {
	return UserDocument{
		Username:  u.Username,
		Email:     u.Email,
		Phone:     u.Phone,
		Password:  u.PasswordHash,
		CreatedAt: u.CreatedAt.String(),
	}
}

// User converts the document back; the local surrogate ID stays zero.
func (d UserDocument) User() (models.User, error) {
	createdAt, err := models.ParseTimestamp(d.CreatedAt)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: user document %s: %w", ErrMalformedDocument, d.Email, err)
	}
	return models.User{
		Username:     d.Username,
		Email:        d.Email,
		Phone:        d.Phone,
		PasswordHash: d.Password,
		CreatedAt:    createdAt,
	}, nil
}

func (d UserDocument) fields() map[string]any {
	return map[string]any{
		"username":   d.Username,
		"email":      d.Email,
		"phone":      d.Phone,
		"password":   d.Password,
		"created_at": d.CreatedAt,
	}
}

// PreferenceDocument is the remote representation of a trip preference.
// Budget travels as text and activities as the delimited encoding.
type PreferenceDocument struct {
	UserID      uint   `json:"user_id"`
	Destination string `json:"destination"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Budget      string `json:"budget"`
	Activities  string `json:"activities"`
	GroupSize   int    `json:"group_size"`
	CreatedAt   string `json:"created_at"`
}

func NewPreferenceDocument(p *models.TripPreference) PreferenceDocument {
	return PreferenceDocument{
		UserID:      p.UserID,
		Destination: p.Destination,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Budget:      strconv.FormatFloat(p.Budget, 'f', -1, 64),
		Activities:  p.Activities.Encode(),
		GroupSize:   p.GroupSize,
		CreatedAt:   p.CreatedAt.String(),
	}
}

// Key is the document key "{userId}_{createdAt}".
func (d PreferenceDocument) Key() string {
	return fmt.Sprintf("%d_%s", d.UserID, d.CreatedAt)
}

func (d PreferenceDocument) TripPreference() (models.TripPreference, error) {
	createdAt, err := models.ParseTimestamp(d.CreatedAt)
	if err != nil {
		return models.TripPreference{}, fmt.Errorf("%w: preference document %s: %w", ErrMalformedDocument, d.Key(), err)
	}
	budget, err := strconv.ParseFloat(d.Budget, 64)
	if err != nil {
		return models.TripPreference{}, fmt.Errorf("%w: preference document %s: invalid budget %q: %w", ErrMalformedDocument, d.Key(), d.Budget, err)
	}
	activities, err := models.DecodeActivities(d.Activities)
	if err != nil {
		return models.TripPreference{}, fmt.Errorf("%w: preference document %s: %w", ErrMalformedDocument, d.Key(), err)
	}
	return models.TripPreference{
		UserID:      d.UserID,
		Destination: d.Destination,
		StartDate:   d.StartDate,
		EndDate:     d.EndDate,
		Budget:      budget,
		Activities:  activities,
		GroupSize:   d.GroupSize,
		CreatedAt:   createdAt,
	}, nil
}

func (d PreferenceDocument) fields() map[string]any {
	return map[string]any{
		"user_id":     d.UserID,
		"destination": d.Destination,
		"start_date":  d.StartDate,
		"end_date":    d.EndDate,
		"budget":      d.Budget,
		"activities":  d.Activities,
		"group_size":  d.GroupSize,
		"created_at":  d.CreatedAt,
	}
}

func logEntryFields(e *models.LogEntry) map[string]any {
	return map[string]any{
		"message":   e.Message,
		"level":     e.Level,
		"timestamp": e.Timestamp.String(),
	}
}

func remoteUnavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrRemoteUnavailable, op, err)
}
