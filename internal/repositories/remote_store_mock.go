package repositories

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/nikgithub05/travel-buddy/internal/models"
)

var errMockOffline = errors.New("mock remote store is offline")

// MockRemoteStore is an in-memory implementation of RemoteStore. It keeps
// documents exactly as a document store would (keyed maps of documents) and
// can be switched offline to simulate connectivity loss.
type MockRemoteStore struct {
	users       map[string]UserDocument
	preferences map[string]PreferenceDocument
	logs        map[string]map[string]any
	offline     bool
	mu          sync.RWMutex
}

// NewMockRemoteStore creates a new instance of MockRemoteStore.
func NewMockRemoteStore() *MockRemoteStore {
	return &MockRemoteStore{
		users:       make(map[string]UserDocument),
		preferences: make(map[string]PreferenceDocument),
		logs:        make(map[string]map[string]any),
	}
}

// SetOffline makes every subsequent call fail with ErrRemoteUnavailable.
func (r *MockRemoteStore) SetOffline(offline bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offline = offline
}

func (r *MockRemoteStore) InsertUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.offline {
		return remoteUnavailable("insert user", errMockOffline)
	}
	r.users[user.Email] = NewUserDocument(user)
	return nil
}

func (r *MockRemoteStore) UserExistsByEmailOrPhone(_ context.Context, email, phone string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.offline {
		return false, remoteUnavailable("check user", errMockOffline)
	}
	if _, ok := r.users[email]; ok {
		return true, nil
	}
	for _, doc := range r.users {
		if doc.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

func (r *MockRemoteStore) ListUsers(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.offline {
		return nil, remoteUnavailable("list users", errMockOffline)
	}
	keys := make([]string, 0, len(r.users))
	for k := range r.users {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	docs := make([]UserDocument, 0, len(keys))
	for _, k := range keys {
		docs = append(docs, r.users[k])
	}
	return decodeAll(docs, UserDocument.User)
}

// PutUserDocument stores a raw document as written by another client.
func (r *MockRemoteStore) PutUserDocument(doc UserDocument) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[doc.Email] = doc
}

// UserDocument returns the stored document under an email key.
func (r *MockRemoteStore) UserDocument(email string) (UserDocument, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.users[email]
	return doc, ok
}

func (r *MockRemoteStore) InsertPreference(_ context.Context, pref *models.TripPreference) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.offline {
		return remoteUnavailable("insert trip preference", errMockOffline)
	}
	doc := NewPreferenceDocument(pref)
	r.preferences[doc.Key()] = doc
	return nil
}

func (r *MockRemoteStore) PreferenceExists(_ context.Context, userID uint, createdAt models.Timestamp) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.offline {
		return false, remoteUnavailable("check trip preference", errMockOffline)
	}
	_, ok := r.preferences[PreferenceKey(userID, createdAt)]
	return ok, nil
}

func (r *MockRemoteStore) ListPreferences(_ context.Context) ([]models.TripPreference, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.offline {
		return nil, remoteUnavailable("list trip preferences", errMockOffline)
	}
	keys := make([]string, 0, len(r.preferences))
	for k := range r.preferences {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	docs := make([]PreferenceDocument, 0, len(keys))
	for _, k := range keys {
		docs = append(docs, r.preferences[k])
	}
	return decodeAll(docs, PreferenceDocument.TripPreference)
}

// PutPreferenceDocument stores a raw document as written by another client.
func (r *MockRemoteStore) PutPreferenceDocument(doc PreferenceDocument) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.preferences[doc.Key()] = doc
}

// PreferenceDocument returns the stored document under a preference key.
func (r *MockRemoteStore) PreferenceDocument(key string) (PreferenceDocument, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.preferences[key]
	return doc, ok
}

func (r *MockRemoteStore) LatestPreferenceForUser(_ context.Context, userID uint) (*models.TripPreference, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.offline {
		return nil, remoteUnavailable("latest trip preference", errMockOffline)
	}
	var latest *PreferenceDocument
	for k := range r.preferences {
		doc := r.preferences[k]
		if doc.UserID != userID {
			continue
		}
		if latest == nil || doc.CreatedAt > latest.CreatedAt {
			latest = &doc
		}
	}
	if latest == nil {
		return nil, nil
	}
	pref, err := latest.TripPreference()
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

func (r *MockRemoteStore) InsertLogEntry(_ context.Context, entry *models.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.offline {
		return remoteUnavailable("insert log entry", errMockOffline)
	}
	r.logs[uuid.NewString()] = logEntryFields(entry)
	return nil
}

// Counts reports the number of user, preference and log documents.
func (r *MockRemoteStore) Counts() (users, preferences, logs int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users), len(r.preferences), len(r.logs)
}
