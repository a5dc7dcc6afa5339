package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nikgithub05/travel-buddy/internal/logging"
	"github.com/nikgithub05/travel-buddy/internal/models"
	"github.com/nikgithub05/travel-buddy/internal/repositories"
)

// PassResult counts what one reconciliation pass did.
type PassResult struct {
	Copied int
	Failed int
}

// CycleReport summarizes one reconciliation cycle.
type CycleReport struct {
	CycleID           string        `json:"cycle_id"`
	StartedAt         time.Time     `json:"started_at"`
	Duration          time.Duration `json:"duration"`
	PushedUsers       int           `json:"pushed_users"`
	PushedPreferences int           `json:"pushed_preferences"`
	PulledUsers       int           `json:"pulled_users"`
	PulledPreferences int           `json:"pulled_preferences"`
	Errors            int           `json:"errors"`
}

// ReconciliationEngine copies records missing on one side to the other.
// It only inserts: a record present in both stores is never compared or
// updated, so running a cycle again copies nothing new.
type ReconciliationEngine struct {
	local  repositories.LocalStore
	remote repositories.RemoteStore
	logger logging.Logger
	now    func() time.Time
}

// NewReconciliationEngine creates a new ReconciliationEngine.
func NewReconciliationEngine(local repositories.LocalStore, remote repositories.RemoteStore, logger logging.Logger) *ReconciliationEngine {
	return &ReconciliationEngine{
		local:  local,
		remote: remote,
		logger: logger,
		now:    time.Now,
	}
}

// RunCycle runs push users, push preferences, pull users and pull
// preferences in that order. A failing pass does not stop the next one.
func (e *ReconciliationEngine) RunCycle(ctx context.Context) CycleReport {
	report := CycleReport{CycleID: uuid.NewString(), StartedAt: e.now()}
	log := e.logger.With("cycle_id", report.CycleID)

	pushedUsers := e.pushUsers(ctx, log)
	pushedPrefs := e.pushPreferences(ctx, log)
	pulledUsers := e.pullUsers(ctx, log)
	pulledPrefs := e.pullPreferences(ctx, log)

	report.PushedUsers = pushedUsers.Copied
	report.PushedPreferences = pushedPrefs.Copied
	report.PulledUsers = pulledUsers.Copied
	report.PulledPreferences = pulledPrefs.Copied
	report.Errors = pushedUsers.Failed + pushedPrefs.Failed + pulledUsers.Failed + pulledPrefs.Failed
	report.Duration = e.now().Sub(report.StartedAt)

	log.Info(ctx, "sync cycle finished",
		"pushed_users", report.PushedUsers,
		"pushed_preferences", report.PushedPreferences,
		"pulled_users", report.PulledUsers,
		"pulled_preferences", report.PulledPreferences,
		"errors", report.Errors,
		"duration", report.Duration,
	)
	return report
}

// PushUsers copies local users without a remote match on email or phone.
func (e *ReconciliationEngine) PushUsers(ctx context.Context) PassResult {
	return e.pushUsers(ctx, e.logger)
}

// PushPreferences copies local preferences without a remote (userId, createdAt) match.
func (e *ReconciliationEngine) PushPreferences(ctx context.Context) PassResult {
	return e.pushPreferences(ctx, e.logger)
}

// PullUsers copies remote users without a local match on email or phone.
func (e *ReconciliationEngine) PullUsers(ctx context.Context) PassResult {
	return e.pullUsers(ctx, e.logger)
}

// PullPreferences copies remote preferences without a local (userId, createdAt) match.
func (e *ReconciliationEngine) PullPreferences(ctx context.Context) PassResult {
	return e.pullPreferences(ctx, e.logger)
}

func (e *ReconciliationEngine) pushUsers(ctx context.Context, log logging.Logger) PassResult {
	return copyMissing(ctx, log.With("pass", "push_users"),
		e.local.ListUsers,
		func(ctx context.Context, u models.User) (bool, error) {
			return e.remote.UserExistsByEmailOrPhone(ctx, u.Email, u.Phone)
		},
		func(ctx context.Context, u *models.User) error {
			return e.remote.InsertUser(ctx, u)
		},
		func(u models.User) string { return u.Email },
	)
}

func (e *ReconciliationEngine) pushPreferences(ctx context.Context, log logging.Logger) PassResult {
	return copyMissing(ctx, log.With("pass", "push_preferences"),
		e.local.ListPreferences,
		func(ctx context.Context, p models.TripPreference) (bool, error) {
			return e.remote.PreferenceExists(ctx, p.UserID, p.CreatedAt)
		},
		func(ctx context.Context, p *models.TripPreference) error {
			return e.remote.InsertPreference(ctx, p)
		},
		models.TripPreference.NaturalKey,
	)
}

func (e *ReconciliationEngine) pullUsers(ctx context.Context, log logging.Logger) PassResult {
	return copyMissing(ctx, log.With("pass", "pull_users"),
		e.remote.ListUsers,
		func(ctx context.Context, u models.User) (bool, error) {
			return e.local.UserExists(ctx, u.Email, u.Phone)
		},
		func(ctx context.Context, u *models.User) error {
			u.ID = 0
			return e.local.InsertUser(ctx, u)
		},
		func(u models.User) string { return u.Email },
	)
}

func (e *ReconciliationEngine) pullPreferences(ctx context.Context, log logging.Logger) PassResult {
	return copyMissing(ctx, log.With("pass", "pull_preferences"),
		e.remote.ListPreferences,
		func(ctx context.Context, p models.TripPreference) (bool, error) {
			return e.local.PreferenceExists(ctx, p.UserID, p.CreatedAt)
		},
		func(ctx context.Context, p *models.TripPreference) error {
			p.ID = 0
			return e.local.InsertPreference(ctx, p)
		},
		models.TripPreference.NaturalKey,
	)
}

// copyMissing inserts every listed record the destination does not have.
// A listing failure ends the pass; undecodable source documents and
// per-record failures are logged, counted and skipped. ErrDuplicateKey
// only means "already present" when the existence check now agrees;
// otherwise the record collides with a different one and counts as failed.
func copyMissing[T any](
	ctx context.Context,
	log logging.Logger,
	list func(context.Context) ([]T, error),
	exists func(context.Context, T) (bool, error),
	insert func(context.Context, *T) error,
	key func(T) string,
) PassResult {
	var res PassResult

	records, err := list(ctx)
	if err != nil {
		var skipped *repositories.SkippedDocumentsError
		if !errors.As(err, &skipped) {
			log.Error(ctx, "listing failed, pass skipped", "error", err)
			res.Failed++
			return res
		}
		for _, docErr := range skipped.Errs {
			log.Warn(ctx, "undecodable document skipped", "error", docErr)
		}
		res.Failed += len(skipped.Errs)
	}

	for i := range records {
		rec := records[i]
		k := key(rec)

		found, err := exists(ctx, rec)
		if err != nil {
			log.Warn(ctx, "existence check failed", "key", k, "error", err)
			res.Failed++
			continue
		}
		if found {
			continue
		}

		if err := insert(ctx, &rec); err != nil {
			if errors.Is(err, repositories.ErrDuplicateKey) {
				if present, _ := exists(ctx, rec); present {
					log.Debug(ctx, "record already present", "key", k)
					continue
				}
				log.Warn(ctx, "record collides with a different one", "key", k, "error", err)
				res.Failed++
				continue
			}
			log.Warn(ctx, "copy failed", "key", k, "error", err)
			res.Failed++
			continue
		}
		log.Debug(ctx, "record copied", "key", k)
		res.Copied++
	}
	return res
}
