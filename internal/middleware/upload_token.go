package middleware

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/verinova/onboarding/internal/presign"
)

// UploadToken guards presigned upload routes: the "token" query parameter
// must be a valid signature for the :object route parameter.
func UploadToken(signer *presign.Signer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Query("token")
		if token == "" {
			return fiber.NewError(http.StatusForbidden, "missing upload token")
		}
		if err := signer.Verify(token, c.Params("object")); err != nil {
			return fiber.NewError(http.StatusForbidden, "invalid upload token")
		}
		return c.Next()
	}
}
