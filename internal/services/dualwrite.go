package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nikgithub05/travel-buddy/internal/logging"
	"github.com/nikgithub05/travel-buddy/internal/models"
	"github.com/nikgithub05/travel-buddy/internal/repositories"
)

// Routing keys of published events.
const (
	EventUserCreated      = "user.created"
	EventPreferencesSaved = "preferences.saved"
	EventSyncCompleted    = "sync.completed"
)

// EventPublisher fans write and sync notifications out to a broker.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// DualWriteError reports a create that did not reach both stores. A nil
// side succeeded. Nothing is rolled back: a local-only record is pushed by
// the next reconciliation cycle.
type DualWriteError struct {
	Op     string
	Local  error
	Remote error
}

func (e *DualWriteError) Error() string {
	switch {
	case e.Local != nil && e.Remote != nil:
		return fmt.Sprintf("%s failed in both stores: local: %v; remote: %v", e.Op, e.Local, e.Remote)
	case e.Local != nil:
		return fmt.Sprintf("%s failed in local store: %v", e.Op, e.Local)
	default:
		return fmt.Sprintf("%s failed in remote store: %v", e.Op, e.Remote)
	}
}

func (e *DualWriteError) Unwrap() []error {
	var errs []error
	for _, err := range []error{e.Local, e.Remote} {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// SignupInput is a new account request. Password is plaintext here only.
type SignupInput struct {
	Username string `json:"username" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Phone    string `json:"phone" validate:"required,max=32"`
	Password string `json:"password" validate:"required,max=72"`
}

// PreferenceInput is one set of trip parameters to save.
type PreferenceInput struct {
	UserID      uint     `json:"user_id" validate:"required"`
	Destination string   `json:"destination" validate:"required,max=255"`
	StartDate   string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string   `json:"end_date" validate:"required,datetime=2006-01-02"`
	Budget      float64  `json:"budget" validate:"required,gt=0"`
	Activities  []string `json:"activities" validate:"required,min=1,dive,required,activity"`
	GroupSize   int      `json:"group_size" validate:"required,gte=1"`
}

// DualWriteCoordinator creates users and preferences in the local store
// and then the remote store, without a shared transaction.
type DualWriteCoordinator struct {
	local     repositories.LocalStore
	remote    repositories.RemoteStore
	hasher    CredentialHasher
	phones    *PhoneDigester
	validate  *validator.Validate
	publisher EventPublisher
	logger    logging.Logger
	now       func() time.Time
}

// NewDualWriteCoordinator creates a new DualWriteCoordinator.
func NewDualWriteCoordinator(
	local repositories.LocalStore,
	remote repositories.RemoteStore,
	hasher CredentialHasher,
	phones *PhoneDigester,
	logger logging.Logger,
) *DualWriteCoordinator {
	return &DualWriteCoordinator{
		local:    local,
		remote:   remote,
		hasher:   hasher,
		phones:   phones,
		validate: newValidator(),
		logger:   logger,
		now:      time.Now,
	}
}

// WithPublisher enables event publishing after each create.
func (c *DualWriteCoordinator) WithPublisher(p EventPublisher) *DualWriteCoordinator {
	c.publisher = p
	return c
}

// WithClock replaces time.Now as the source of CreatedAt stamps.
func (c *DualWriteCoordinator) WithClock(now func() time.Time) *DualWriteCoordinator {
	c.now = now
	return c
}

// CreateUser registers an account in both stores. The password is hashed
// and the phone digested once, so both copies carry identical values.
//
// An existing email or phone in either store yields ErrDuplicateKey before
// anything is written. An unreachable remote store does not block the
// check; the remote write then fails and the user is pushed later.
func (c *DualWriteCoordinator) CreateUser(ctx context.Context, in SignupInput) (*models.User, error) {
	if err := validateInput(c.validate, in); err != nil {
		return nil, err
	}

	phone := c.phones.Digest(in.Phone)
	if err := c.checkUserAbsent(ctx, in.Email, phone); err != nil {
		return nil, err
	}

	hash, err := c.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		Phone:        phone,
		PasswordHash: hash,
		CreatedAt:    models.NewTimestamp(c.now()),
	}

	localErr := c.local.InsertUser(ctx, user)
	if errors.Is(localErr, repositories.ErrDuplicateKey) {
		// lost a race with a concurrent signup or an in-flight pull
		return nil, localErr
	}
	remoteErr := c.remote.InsertUser(ctx, user)

	if localErr != nil || remoteErr != nil {
		dwErr := &DualWriteError{Op: "create user " + user.Email, Local: localErr, Remote: remoteErr}
		c.logger.Error(ctx, "dual write failed", "email", user.Email, "error", dwErr)
		c.writeLog(ctx, models.LogLevelError, dwErr.Error())
		return nil, dwErr
	}

	c.logger.Info(ctx, "user registered", "email", user.Email, "user_id", user.ID)
	c.writeLog(ctx, models.LogLevelInfo, fmt.Sprintf("User %s registered", user.Username))
	c.publish(ctx, EventUserCreated, user)
	return user, nil
}

func (c *DualWriteCoordinator) checkUserAbsent(ctx context.Context, email, phone string) error {
	exists, err := c.local.UserExists(ctx, email, phone)
	if err != nil {
		return fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: user %s", repositories.ErrDuplicateKey, email)
	}

	exists, err = c.remote.UserExistsByEmailOrPhone(ctx, email, phone)
	switch {
	case errors.Is(err, repositories.ErrRemoteUnavailable):
		c.logger.Warn(ctx, "remote existence check skipped", "email", email, "error", err)
	case err != nil:
		return fmt.Errorf("failed to check existing user: %w", err)
	case exists:
		return fmt.Errorf("%w: user %s", repositories.ErrDuplicateKey, email)
	}
	return nil
}

// SavePreferences stores a new preference row in both stores, stamped with
// the current second. Two saves for one user within the same second share
// a natural key: both rows stay local, the remote document keeps the last.
func (c *DualWriteCoordinator) SavePreferences(ctx context.Context, in PreferenceInput) (*models.TripPreference, error) {
	if err := validateInput(c.validate, in); err != nil {
		return nil, err
	}
	if in.EndDate < in.StartDate {
		return nil, &ValidationError{Fields: map[string]string{"end_date": "must not be before start_date"}}
	}

	pref := &models.TripPreference{
		UserID:      in.UserID,
		Destination: in.Destination,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Budget:      in.Budget,
		Activities:  models.Activities(in.Activities),
		GroupSize:   in.GroupSize,
		CreatedAt:   models.NewTimestamp(c.now()),
	}

	localErr := c.local.InsertPreference(ctx, pref)
	remoteErr := c.remote.InsertPreference(ctx, pref)

	if localErr != nil || remoteErr != nil {
		dwErr := &DualWriteError{Op: "save trip preference " + pref.NaturalKey(), Local: localErr, Remote: remoteErr}
		c.logger.Error(ctx, "dual write failed", "user_id", pref.UserID, "error", dwErr)
		c.writeLog(ctx, models.LogLevelError, dwErr.Error())
		return nil, dwErr
	}

	c.logger.Info(ctx, "trip preferences saved", "user_id", pref.UserID, "key", pref.NaturalKey())
	c.writeLog(ctx, models.LogLevelInfo, fmt.Sprintf("Trip preferences saved for user %d", pref.UserID))
	c.publish(ctx, EventPreferencesSaved, pref)
	return pref, nil
}

// writeLog dual-writes an audit line; failures are only logged.
func (c *DualWriteCoordinator) writeLog(ctx context.Context, level, msg string) {
	entry := &models.LogEntry{Message: msg, Level: level, Timestamp: models.NewTimestamp(c.now())}
	if err := c.local.InsertLogEntry(ctx, entry); err != nil {
		c.logger.Warn(ctx, "failed to write local log entry", "error", err)
	}
	if err := c.remote.InsertLogEntry(ctx, entry); err != nil {
		c.logger.Warn(ctx, "failed to write remote log entry", "error", err)
	}
}

func (c *DualWriteCoordinator) publish(ctx context.Context, routingKey string, v any) {
	publishEvent(ctx, c.publisher, c.logger, routingKey, v)
}

func publishEvent(ctx context.Context, p EventPublisher, logger logging.Logger, routingKey string, v any) {
	if p == nil {
		return
	}
	body, err := json.Marshal(v)
	if err != nil {
		logger.Warn(ctx, "failed to encode event", "routing_key", routingKey, "error", err)
		return
	}
	if err := p.Publish(routingKey, body); err != nil {
		logger.Warn(ctx, "failed to publish event", "routing_key", routingKey, "error", err)
	}
}
