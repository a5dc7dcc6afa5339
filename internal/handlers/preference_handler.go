package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nikgithub05/travel-buddy/internal/logging"
	"github.com/nikgithub05/travel-buddy/internal/middleware"
	"github.com/nikgithub05/travel-buddy/internal/services"
)

// PreferenceHandler handles HTTP requests for trip preferences and itineraries.
type PreferenceHandler struct {
	service *services.PreferenceService
	logger  logging.Logger
}

// NewPreferenceHandler creates a new PreferenceHandler.
func NewPreferenceHandler(service *services.PreferenceService, logger logging.Logger) *PreferenceHandler {
	return &PreferenceHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the preference routes. The router must be
// behind middleware.AuthRequired.
func (h *PreferenceHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/save-trip-preferences", h.HandleSave)
	router.Get("/trip-preferences/:user_id", h.HandleGetLatest)
	router.Post("/generate-itinerary", h.HandleGenerateItinerary)
}

// parseInput reads the body and binds it to the authenticated user. A
// body naming another user is rejected. When ok is false the response has
// already been written and err is the result of writing it.
func (h *PreferenceHandler) parseInput(c *fiber.Ctx) (in services.PreferenceInput, ok bool, err error) {
	if err := c.BodyParser(&in); err != nil {
		return in, false, badBody(c, err)
	}
	userID, _ := middleware.UserID(c)
	if in.UserID == 0 {
		in.UserID = userID
	}
	if in.UserID != userID {
		return in, false, c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Cannot save preferences for another user",
		})
	}
	return in, true, nil
}

// HandleSave stores a new set of trip preferences.
func (h *PreferenceHandler) HandleSave(c *fiber.Ctx) error {
	in, ok, err := h.parseInput(c)
	if !ok {
		return err
	}

	pref, err := h.service.Save(c.UserContext(), in)
	if err != nil {
		h.logger.Warn(c.UserContext(), "save preferences failed", "user_id", in.UserID, "error", err)
		return writeError(c, "Failed to save preferences", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Preferences saved successfully",
		"preferences": pref,
	})
}

// HandleGetLatest returns the user's current trip preferences.
func (h *PreferenceHandler) HandleGetLatest(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("user_id")
	if err != nil || userID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid user id",
		})
	}
	if owner, _ := middleware.UserID(c); uint(userID) != owner {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Cannot read preferences of another user",
		})
	}

	pref, err := h.service.Latest(c.UserContext(), uint(userID))
	if err != nil {
		return writeError(c, "No preferences found for this user", err)
	}
	return c.JSON(pref)
}

// HandleGenerateItinerary saves the preferences and returns an itinerary.
// When only generation fails the saved preferences come back with 207.
func (h *PreferenceHandler) HandleGenerateItinerary(c *fiber.Ctx) error {
	in, ok, err := h.parseInput(c)
	if !ok {
		return err
	}

	result, err := h.service.GenerateItinerary(c.UserContext(), in)
	if err != nil {
		h.logger.Warn(c.UserContext(), "save preferences failed", "user_id", in.UserID, "error", err)
		return writeError(c, "Failed to save preferences", err)
	}
	if result.IsPartial() {
		return c.Status(fiber.StatusMultiStatus).JSON(fiber.Map{
			"message":     "Preferences saved, but itinerary generation failed",
			"error":       result.GenerationErr.Error(),
			"preferences": result.Preference,
		})
	}
	return c.JSON(result.Itinerary)
}
