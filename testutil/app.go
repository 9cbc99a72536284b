package testutil

import (
	"os"
	"testing"
	"time"

	"github.com/okothmichael/tutor_marketplace/routes"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// NewApp builds a fiber app with the full route table, matching the
// server configuration in cmd/api.
func NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		CaseSensitive: true,
		StrictRouting: true,
	})

	routes.AuthRoutes(app)
	routes.UserRoutes(app)
	routes.TutorRoutes(app)
	routes.BookingRoutes(app)
	routes.ReviewRoutes(app)
	routes.CategoryRoutes(app)
	routes.AdminRoutes(app)
	routes.ErrorRoutes(app)
	routes.UploadRoutes(app)

	return app
}

// MintToken signs a JWT the way the login handler does.
func MintToken(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	require.NoError(t, err)
	return signed
}
