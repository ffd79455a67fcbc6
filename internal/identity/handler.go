package identity

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/verinova/onboarding/internal/profile"
)

// Handler exposes the signup and login endpoints consumed by the app.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs an identity HTTP handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type loginRequest struct {
	Mobile string `json:"mobile"`
	MPIN   string `json:"mpin"`
}

type loginResponse struct {
	User profile.UserProfile `json:"user"`
}

// Signup registers the posted profile. The app treats only 200 as success.
func (h *Handler) Signup(c *fiber.Ctx) error {
	var req profile.UserProfile
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	account, err := h.service.Register(c.UserContext(), req)
	switch {
	case errors.Is(err, ErrAccountExists):
		return fiber.NewError(http.StatusConflict, "mobile number already registered")
	case errors.Is(err, ErrInvalidInput):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case err != nil:
		return err
	}
	if h.logger != nil {
		h.logger.Info("account registered", slog.String("account_id", account.ID), slog.String("mobile", profile.MaskMobile(account.Mobile)))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"id": account.ID, "mobile": account.Mobile})
}

// Login verifies the MPIN and returns the stored profile.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	account, err := h.service.Authenticate(c.UserContext(), req.Mobile, req.MPIN)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return fiber.NewError(http.StatusUnauthorized, err.Error())
		}
		return err
	}
	return c.Status(http.StatusOK).JSON(loginResponse{User: account.Profile(req.MPIN)})
}
