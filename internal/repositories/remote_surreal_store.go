package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	surrealdb "github.com/surrealdb/surrealdb.go"

	"github.com/nikgithub05/travel-buddy/internal/models"
)

// SurrealConfig holds the SurrealDB connection settings.
type SurrealConfig struct {
	URL       string
	Namespace string
	Database  string
	Username  string
	Password  string
}

// SurrealRemoteStore implements RemoteStore on SurrealDB. Documents live in
// the users, tripPreferences and logs tables with record ids built from the
// natural keys, so writing an existing key replaces the record.
//
// All values are passed as query parameters; record ids go through
// type::thing so emails and timestamps need no escaping.
type SurrealRemoteStore struct {
	db *surrealdb.DB
}

const (
	upsertDocumentQuery = "UPSERT type::thing($tb, $key) CONTENT $doc RETURN NONE"
	userExistsQuery     = "SELECT email FROM users WHERE email = $email OR phone = $phone LIMIT 1"
	listUsersQuery      = "SELECT * OMIT id FROM users ORDER BY email"
	preferenceQuery     = "SELECT user_id FROM type::thing($tb, $key)"
	listPrefsQuery      = "SELECT * OMIT id FROM tripPreferences ORDER BY user_id, created_at"
	latestPrefQuery     = "SELECT * OMIT id FROM tripPreferences WHERE user_id = $user_id ORDER BY created_at DESC LIMIT 1"
)

// NewSurrealRemoteStore connects, signs in when credentials are set and
// selects the namespace and database.
func NewSurrealRemoteStore(ctx context.Context, cfg SurrealConfig) (*SurrealRemoteStore, error) {
	db, err := surrealdb.FromEndpointURLString(ctx, cfg.URL)
	if err != nil {
		return nil, remoteUnavailable("connect", err)
	}

	if cfg.Username != "" && cfg.Password != "" {
		if _, err := db.SignIn(ctx, surrealdb.Auth{
			Username: cfg.Username,
			Password: cfg.Password,
		}); err != nil {
			db.Close(ctx)
			return nil, fmt.Errorf("failed to authenticate to SurrealDB: %w", err)
		}
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to use %s/%s: %w", cfg.Namespace, cfg.Database, err)
	}

	return &SurrealRemoteStore{db: db}, nil
}

// Close closes the connection.
func (s *SurrealRemoteStore) Close(ctx context.Context) error {
	return s.db.Close(ctx)
}

func (s *SurrealRemoteStore) upsert(ctx context.Context, op, table, key string, doc map[string]any) error {
	_, err := surrealdb.Query[any](ctx, s.db, upsertDocumentQuery, map[string]any{
		"tb":  table,
		"key": key,
		"doc": doc,
	})
	if err != nil {
		return remoteUnavailable(op, err)
	}
	return nil
}

func (s *SurrealRemoteStore) InsertUser(ctx context.Context, user *models.User) error {
	doc := NewUserDocument(user)
	return s.upsert(ctx, "insert user", UsersCollection, doc.Email, doc.fields())
}

func (s *SurrealRemoteStore) UserExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error) {
	rows, err := firstResult[UserDocument](ctx, s.db, userExistsQuery, map[string]any{
		"email": email,
		"phone": phone,
	})
	if err != nil {
		return false, remoteUnavailable("check user", err)
	}
	return len(rows) > 0, nil
}

func (s *SurrealRemoteStore) ListUsers(ctx context.Context) ([]models.User, error) {
	docs, err := firstResult[UserDocument](ctx, s.db, listUsersQuery, nil)
	if err != nil {
		return nil, remoteUnavailable("list users", err)
	}
	return decodeAll(docs, UserDocument.User)
}

func (s *SurrealRemoteStore) InsertPreference(ctx context.Context, pref *models.TripPreference) error {
	doc := NewPreferenceDocument(pref)
	return s.upsert(ctx, "insert trip preference", PreferencesCollection, doc.Key(), doc.fields())
}

func (s *SurrealRemoteStore) PreferenceExists(ctx context.Context, userID uint, createdAt models.Timestamp) (bool, error) {
	rows, err := firstResult[PreferenceDocument](ctx, s.db, preferenceQuery, map[string]any{
		"tb":  PreferencesCollection,
		"key": PreferenceKey(userID, createdAt),
	})
	if err != nil {
		return false, remoteUnavailable("check trip preference", err)
	}
	return len(rows) > 0, nil
}

func (s *SurrealRemoteStore) ListPreferences(ctx context.Context) ([]models.TripPreference, error) {
	docs, err := firstResult[PreferenceDocument](ctx, s.db, listPrefsQuery, nil)
	if err != nil {
		return nil, remoteUnavailable("list trip preferences", err)
	}
	return decodeAll(docs, PreferenceDocument.TripPreference)
}

func (s *SurrealRemoteStore) LatestPreferenceForUser(ctx context.Context, userID uint) (*models.TripPreference, error) {
	docs, err := firstResult[PreferenceDocument](ctx, s.db, latestPrefQuery, map[string]any{
		"user_id": userID,
	})
	if err != nil {
		return nil, remoteUnavailable("latest trip preference", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	pref, err := docs[0].TripPreference()
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

func (s *SurrealRemoteStore) InsertLogEntry(ctx context.Context, entry *models.LogEntry) error {
	return s.upsert(ctx, "insert log entry", LogsCollection, uuid.NewString(), logEntryFields(entry))
}

// firstResult runs a single-statement query and returns its rows.
func firstResult[T any](ctx context.Context, db *surrealdb.DB, query string, vars map[string]any) ([]T, error) {
	res, err := surrealdb.Query[[]T](ctx, db, query, vars)
	if err != nil {
		return nil, err
	}
	if res == nil || len(*res) == 0 {
		return nil, nil
	}
	return (*res)[0].Result, nil
}
