package api

import (
	"context"
	"strconv"
	"strings"

	"portal-service/internal/model"
	"portal-service/internal/s3"
	"portal-service/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type FotoPresigner interface {
	GeneratePresignedUploadURL(ctx context.Context, objectKey string) (string, error)
	PublicURL(objectKey string) string
}

type UsuarioHandler struct {
	usuarioService service.UsuarioService
	validate       *validator.Validate
	presigner      FotoPresigner
}

// NewUsuarioHandler accepts a nil presigner; upload URLs are then unavailable.
func NewUsuarioHandler(usuarioService service.UsuarioService, presigner FotoPresigner) *UsuarioHandler {
	return &UsuarioHandler{
		usuarioService: usuarioService,
		validate:       NewValidator(),
		presigner:      presigner,
	}
}

type UpdateProfileRequest struct {
	Nombre   *string `json:"nombre,omitempty" validate:"omitnil,min=1,max=100"`
	Apellido *string `json:"apellido,omitempty" validate:"omitnil,min=1,max=100"`
	Correo   *string `json:"correo,omitempty" validate:"omitnil,email,max=255"`
	Foto     *string `json:"foto,omitempty" validate:"omitnil,foto"`
}

type UpdatePhotoRequest struct {
	Foto    string `json:"foto" validate:"omitempty,foto"`
	FotoURL string `json:"fotoUrl" validate:"-"`
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	return &trimmed
}

func (h *UsuarioHandler) ListUsuarios(c *fiber.Ctx) error {
	usuarios, err := h.usuarioService.List(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}

	response := make([]UsuarioResponse, 0, len(usuarios))
	for i := range usuarios {
		response = append(response, NewUsuarioResponse(&usuarios[i]))
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

func (h *UsuarioHandler) DeleteUsuario(c *fiber.Ctx) error {
	claims, err := ClaimsFromContext(c)
	if err != nil {
		return respondMessage(c, fiber.StatusUnauthorized, "Invalid user claims")
	}

	targetID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || targetID <= 0 {
		return respondMessage(c, fiber.StatusBadRequest, "Invalid user ID format")
	}

	if err := h.usuarioService.Delete(c.UserContext(), claims.UsuarioID, targetID); err != nil {
		return respondServiceError(c, err)
	}

	return respondMessage(c, fiber.StatusOK, "User deleted successfully")
}

func (h *UsuarioHandler) GetProfile(c *fiber.Ctx) error {
	claims, err := ClaimsFromContext(c)
	if err != nil {
		return respondMessage(c, fiber.StatusUnauthorized, "Invalid user claims")
	}

	usuario, err := h.usuarioService.GetProfile(c.UserContext(), claims.UsuarioID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(UserEnvelope{User: NewUsuarioResponse(usuario)})
}

func (h *UsuarioHandler) UpdateProfile(c *fiber.Ctx) error {
	claims, err := ClaimsFromContext(c)
	if err != nil {
		return respondMessage(c, fiber.StatusUnauthorized, "Invalid user claims")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return respondMessage(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}
	req.Nombre = trimPtr(req.Nombre)
	req.Apellido = trimPtr(req.Apellido)
	req.Correo = trimPtr(req.Correo)
	req.Foto = trimPtr(req.Foto)

	if err := h.validate.Struct(&req); err != nil {
		return respondValidationError(c, err, "Invalid input")
	}

	usuario, err := h.usuarioService.UpdateProfile(c.UserContext(), claims.UsuarioID, model.UsuarioUpdate{
		Nombre:   req.Nombre,
		Apellido: req.Apellido,
		Correo:   req.Correo,
		Foto:     req.Foto,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(UserEnvelope{User: NewUsuarioResponse(usuario)})
}

func (h *UsuarioHandler) UpdatePhoto(c *fiber.Ctx) error {
	claims, err := ClaimsFromContext(c)
	if err != nil {
		return respondMessage(c, fiber.StatusUnauthorized, "Invalid user claims")
	}

	var req UpdatePhotoRequest
	if err := c.BodyParser(&req); err != nil {
		return respondMessage(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}
	if req.Foto == "" {
		req.Foto = req.FotoURL
	}
	req.Foto = strings.TrimSpace(req.Foto)

	if err := h.validate.Struct(&req); err != nil {
		return respondValidationError(c, err, "Photo is required")
	}

	usuario, err := h.usuarioService.UpdatePhoto(c.UserContext(), claims.UsuarioID, req.Foto)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(UserEnvelope{User: NewUsuarioResponse(usuario)})
}

func (h *UsuarioHandler) GetPhotoUploadURL(c *fiber.Ctx) error {
	claims, err := ClaimsFromContext(c)
	if err != nil {
		return respondMessage(c, fiber.StatusUnauthorized, "Invalid user claims")
	}

	if h.presigner == nil {
		return respondMessage(c, fiber.StatusServiceUnavailable, "Photo uploads are not configured")
	}

	objectKey := s3.FotoObjectKey(claims.UsuarioID)

	uploadURL, err := h.presigner.GeneratePresignedUploadURL(c.UserContext(), objectKey)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"upload_url":      uploadURL,
		"final_image_url": h.presigner.PublicURL(objectKey),
	})
}
