package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/verinova/onboarding/internal/identity"
)

// RegisterIdentityRoutes wires the signup and login endpoints the app calls.
func RegisterIdentityRoutes(r fiber.Router, h *identity.Handler, signupGuards []fiber.Handler, loginLimiter fiber.Handler) {
	r.Post("/signup", append(signupGuards, h.Signup)...)
	r.Post("/login", loginLimiter, h.Login)
}
