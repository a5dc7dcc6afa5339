package services

import (
	"context"
	"fmt"

	"github.com/nikgithub05/travel-buddy/internal/logging"
	"github.com/nikgithub05/travel-buddy/internal/models"
	"github.com/nikgithub05/travel-buddy/internal/repositories"
)

// ItineraryResult is the outcome of GenerateItinerary. When GenerationErr
// is set the preferences were saved but no itinerary could be built.
type ItineraryResult struct {
	Preference    *models.TripPreference
	Itinerary     *models.Itinerary
	GenerationErr error
}

// PreferenceService handles trip preference writes and reads.
type PreferenceService struct {
	local     repositories.LocalStore
	remote    repositories.RemoteStore
	writer    *DualWriteCoordinator
	generator ItineraryGenerator
	logger    logging.Logger
}

// NewPreferenceService creates a new PreferenceService.
func NewPreferenceService(
	local repositories.LocalStore,
	remote repositories.RemoteStore,
	writer *DualWriteCoordinator,
	generator ItineraryGenerator,
	logger logging.Logger,
) *PreferenceService {
	return &PreferenceService{
		local:     local,
		remote:    remote,
		writer:    writer,
		generator: generator,
		logger:    logger,
	}
}

func (s *PreferenceService) Save(ctx context.Context, in PreferenceInput) (*models.TripPreference, error) {
	return s.writer.SavePreferences(ctx, in)
}

// Latest returns the user's current preferences. The remote store is read
// first; when it is unreachable or has nothing yet the local copy answers.
func (s *PreferenceService) Latest(ctx context.Context, userID uint) (*models.TripPreference, error) {
	pref, err := s.remote.LatestPreferenceForUser(ctx, userID)
	if err != nil {
		s.logger.Warn(ctx, "remote read failed, using local store", "user_id", userID, "error", err)
	}
	if pref != nil {
		return pref, nil
	}

	pref, err = s.local.LatestPreference(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get trip preferences: %w", err)
	}
	if pref == nil {
		return nil, fmt.Errorf("%w: trip preferences for user %d", repositories.ErrNotFound, userID)
	}
	return pref, nil
}

// GenerateItinerary saves the preferences and then builds an itinerary.
// A failed save is returned as an error; a failed generation is reported
// in the result alongside the saved preferences.
func (s *PreferenceService) GenerateItinerary(ctx context.Context, in PreferenceInput) (*ItineraryResult, error) {
	pref, err := s.writer.SavePreferences(ctx, in)
	if err != nil {
		return nil, err
	}

	result := &ItineraryResult{Preference: pref}
	days, err := s.generator.Generate(ctx, *pref)
	if err != nil {
		s.logger.Warn(ctx, "itinerary generation failed", "user_id", pref.UserID, "error", err)
		result.GenerationErr = err
		return result, nil
	}

	result.Itinerary = &models.Itinerary{
		Destination: pref.Destination,
		StartDate:   pref.StartDate,
		EndDate:     pref.EndDate,
		Budget:      pref.Budget,
		GroupSize:   pref.GroupSize,
		Activities:  pref.Activities,
		Days:        days,
	}
	return result, nil
}

// IsPartial reports a saved-but-not-generated outcome.
func (r *ItineraryResult) IsPartial() bool {
	return r.GenerationErr != nil
}
