package uploads

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/verinova/onboarding/internal/presign"
	"github.com/verinova/onboarding/internal/storage"
)

var contentTypes = map[string]string{
	"pdf":  "application/pdf",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
}

// Handler issues presigned document URLs and stores what is PUT to them.
type Handler struct {
	signer    *presign.Signer
	blobs     storage.Store
	publicURL string
	logger    *slog.Logger
}

// NewHandler builds an upload handler. publicURL is the externally visible
// origin that presigned URLs are built on.
func NewHandler(signer *presign.Signer, blobs storage.Store, publicURL string, logger *slog.Logger) *Handler {
	return &Handler{
		signer:    signer,
		blobs:     blobs,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger,
	}
}

type uploadURLRequest struct {
	ImgExtension string `json:"imgExtension"`
}

// GenerateURL answers POST /generate-upload-url with {url}.
func (h *Handler) GenerateURL(c *fiber.Ctx) error {
	var req uploadURLRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	ext := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(req.ImgExtension)), ".")
	if _, ok := contentTypes[ext]; !ok {
		return fiber.NewError(http.StatusBadRequest, "unsupported file extension")
	}

	object := uuid.NewString() + "." + ext
	token, exp, err := h.signer.Sign(object)
	if err != nil {
		return err
	}
	target := h.publicURL + "/uploads/" + object + "?token=" + url.QueryEscape(token)
	h.logger.Debug("upload url issued", slog.String("object", object), slog.Time("expires_at", exp))
	return c.JSON(fiber.Map{"url": target})
}

// Put stores the request body under the object name. The route must be
// guarded by middleware.UploadToken.
func (h *Handler) Put(c *fiber.Ctx) error {
	object := c.Params("object")
	if _, ok := contentTypeFor(object); !ok {
		return fiber.NewError(http.StatusBadRequest, "unsupported file extension")
	}
	body := c.Body()
	if len(body) == 0 {
		return fiber.NewError(http.StatusBadRequest, "empty upload")
	}
	if err := h.blobs.Set(c.UserContext(), object, body); err != nil {
		h.logger.Error("store upload", slog.String("object", object), slog.Any("error", err))
		return fiber.NewError(http.StatusInternalServerError, "could not store upload")
	}
	h.logger.Info("document uploaded", slog.String("object", object), slog.Int("bytes", len(body)))
	return c.SendStatus(http.StatusOK)
}

// Get serves a stored document.
func (h *Handler) Get(c *fiber.Ctx) error {
	object := c.Params("object")
	ct, ok := contentTypeFor(object)
	if !ok {
		return fiber.NewError(http.StatusNotFound, "not found")
	}
	data, err := h.blobs.Get(c.UserContext(), object)
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrInvalidKey):
		return fiber.NewError(http.StatusNotFound, "not found")
	case err != nil:
		return err
	}
	c.Set(fiber.HeaderContentType, ct)
	return c.Send(data)
}

func contentTypeFor(object string) (string, bool) {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(object)), ".")
	ct, ok := contentTypes[ext]
	return ct, ok
}
