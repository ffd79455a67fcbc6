package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/verinova/onboarding/internal/uploads"
)

// RegisterUploadRoutes wires presigned document uploads.
func RegisterUploadRoutes(r fiber.Router, h *uploads.Handler, tokenGuard fiber.Handler) {
	r.Post("/generate-upload-url", h.GenerateURL)
	r.Put("/uploads/:object", tokenGuard, h.Put)
	r.Get("/uploads/:object", h.Get)
}
