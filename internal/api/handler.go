package api

import (
	"strings"
	"time"

	"portal-service/internal/model"
	"portal-service/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService service.AuthService
	validate    *validator.Validate
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    NewValidator(),
	}
}

type RegisterRequest struct {
	Nombre   string `json:"nombre" validate:"required,max=100"`
	Apellido string `json:"apellido" validate:"required,max=100"`
	Correo   string `json:"correo" validate:"required,email,max=255"`
	Clave    string `json:"clave" validate:"required,min=6,bcryptmax"`
	// Older clients post the English key names.
	Email    string `json:"email" validate:"-"`
	Password string `json:"password" validate:"-"`
}

func (r *RegisterRequest) normalize() {
	if r.Correo == "" {
		r.Correo = r.Email
	}
	if r.Clave == "" {
		r.Clave = r.Password
	}
	r.Nombre = strings.TrimSpace(r.Nombre)
	r.Apellido = strings.TrimSpace(r.Apellido)
	r.Correo = strings.TrimSpace(r.Correo)
}

type LoginRequest struct {
	Correo   string `json:"correo" validate:"required"`
	Clave    string `json:"clave" validate:"required"`
	Email    string `json:"email" validate:"-"`
	Password string `json:"password" validate:"-"`
}

func (r *LoginRequest) normalize() {
	if r.Correo == "" {
		r.Correo = r.Email
	}
	if r.Clave == "" {
		r.Clave = r.Password
	}
	r.Correo = strings.TrimSpace(r.Correo)
}

type UsuarioResponse struct {
	ID            int64     `json:"id"`
	Nombre        string    `json:"nombre"`
	Apellido      string    `json:"apellido"`
	Correo        string    `json:"correo"`
	Rol           string    `json:"rol"`
	Foto          *string   `json:"foto"`
	FechaRegistro time.Time `json:"fecha_registro"`
}

func NewUsuarioResponse(u *model.Usuario) UsuarioResponse {
	return UsuarioResponse{
		ID:            u.ID,
		Nombre:        u.Nombre,
		Apellido:      u.Apellido,
		Correo:        u.Correo,
		Rol:           u.Rol,
		Foto:          u.Foto,
		FechaRegistro: u.FechaRegistro,
	}
}

type AuthResponse struct {
	Token string          `json:"token"`
	User  UsuarioResponse `json:"user"`
}

type UserEnvelope struct {
	User UsuarioResponse `json:"user"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var request RegisterRequest

	if err := c.BodyParser(&request); err != nil {
		return respondMessage(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}
	request.normalize()

	if err := h.validate.Struct(&request); err != nil {
		return respondValidationError(c, err, "All fields are required")
	}

	usuario, token, err := h.authService.Register(c.UserContext(), service.RegisterInput{
		Nombre:   request.Nombre,
		Apellido: request.Apellido,
		Correo:   request.Correo,
		Clave:    request.Clave,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(AuthResponse{
		Token: token,
		User:  NewUsuarioResponse(usuario),
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var request LoginRequest

	if err := c.BodyParser(&request); err != nil {
		return respondMessage(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}
	request.normalize()

	if err := h.validate.Struct(&request); err != nil {
		return respondValidationError(c, err, "Email and password are required")
	}

	usuario, token, err := h.authService.Login(c.UserContext(), request.Correo, request.Clave)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(AuthResponse{
		Token: token,
		User:  NewUsuarioResponse(usuario),
	})
}
