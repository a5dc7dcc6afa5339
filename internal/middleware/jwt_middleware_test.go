package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikgithub05/travel-buddy/internal/logging"
)

type stubValidator map[string]jwt.MapClaims

func (s stubValidator) ValidateToken(token string) (jwt.MapClaims, error) {
	claims, ok := s[token]
	if !ok {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func newTestApp() *fiber.App {
	validator := stubValidator{
		"good":   {"user_id": float64(7), "username": "alice"},
		"no-uid": {"username": "bob"},
	}
	app := fiber.New()
	app.Get("/me", AuthRequired(validator, logging.NewNop()), func(c *fiber.Ctx) error {
		id, ok := UserID(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.JSON(fiber.Map{"user_id": id})
	})
	return app
}

func TestAuthRequired(t *testing.T) {
	app := newTestApp()

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Basic good", fiber.StatusUnauthorized},
		{"invalid token", "Bearer bad", fiber.StatusUnauthorized},
		{"no user id", "Bearer no-uid", fiber.StatusUnauthorized},
		{"valid", "Bearer good", fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
