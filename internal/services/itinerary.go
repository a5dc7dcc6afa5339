package services

import (
	"context"
	"fmt"
	"time"

	"github.com/nikgithub05/travel-buddy/internal/models"
)

// ItineraryGenerator turns trip parameters into day plans.
type ItineraryGenerator interface {
	Generate(ctx context.Context, pref models.TripPreference) ([]models.DayPlan, error)
}

// ItineraryGeneratorFunc adapts a function to ItineraryGenerator.
type ItineraryGeneratorFunc func(ctx context.Context, pref models.TripPreference) ([]models.DayPlan, error)

func (f ItineraryGeneratorFunc) Generate(ctx context.Context, pref models.TripPreference) ([]models.DayPlan, error) {
	return f(ctx, pref)
}

const defaultMaxItineraryDays = 30

// DayPlanGenerator builds one plan per calendar day, filling morning,
// afternoon and evening slots by cycling through the requested activities.
type DayPlanGenerator struct {
	MaxDays int
}

func (g DayPlanGenerator) Generate(ctx context.Context, pref models.TripPreference) ([]models.DayPlan, error) {
	start, err := time.Parse(models.DateLayout, pref.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", pref.StartDate, err)
	}
	end, err := time.Parse(models.DateLayout, pref.EndDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", pref.EndDate, err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end date %s is before start date %s", pref.EndDate, pref.StartDate)
	}
	if len(pref.Activities) == 0 {
		return nil, fmt.Errorf("no activities to plan for %s", pref.Destination)
	}

	maxDays := g.MaxDays
	if maxDays <= 0 {
		maxDays = defaultMaxItineraryDays
	}
	days := int(end.Sub(start).Hours()/24) + 1
	if days > maxDays {
		return nil, fmt.Errorf("trip of %d days exceeds the %d day limit", days, maxDays)
	}

	activity := func(slot int) string {
		return fmt.Sprintf("%s in %s", pref.Activities[slot%len(pref.Activities)], pref.Destination)
	}

	plans := make([]models.DayPlan, 0, days)
	for d := 0; d < days; d++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		plans = append(plans, models.DayPlan{
			Day:       d + 1,
			Date:      start.AddDate(0, 0, d).Format(models.DateLayout),
			Morning:   activity(d * 3),
			Afternoon: activity(d*3 + 1),
			Evening:   activity(d*3 + 2),
		})
	}
	return plans, nil
}
