package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"portal-service/internal/events"
	"portal-service/internal/model"
	"portal-service/internal/password"
	"portal-service/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrDuplicateEmail     = repository.ErrDuplicateEmail
	ErrNotFound           = repository.ErrNotFound
	ErrPasswordTooLong    = password.ErrTooLong
)

type TokenIssuer interface {
	IssueToken(usuario *model.Usuario) (string, error)
}

type RegisterInput struct {
	Nombre   string
	Apellido string
	Correo   string
	Clave    string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*model.Usuario, string, error)
	Login(ctx context.Context, correo, clave string) (*model.Usuario, string, error)
	EnsureAdmin(ctx context.Context, clave string) (bool, error)
}

type authService struct {
	usuarioRepo repository.UsuarioRepository
	tokens      TokenIssuer
	publisher   events.EventPublisher
}

func NewAuthService(usuarioRepo repository.UsuarioRepository, tokens TokenIssuer, publisher events.EventPublisher) AuthService {
	return &authService{
		usuarioRepo: usuarioRepo,
		tokens:      tokens,
		publisher:   publisher,
	}
}

func NormalizeCorreo(correo string) string {
	return strings.ToLower(strings.TrimSpace(correo))
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*model.Usuario, string, error) {
	hashed, err := password.Hash(input.Clave)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	usuario := &model.Usuario{
		Nombre:    strings.TrimSpace(input.Nombre),
		Apellido:  strings.TrimSpace(input.Apellido),
		Correo:    NormalizeCorreo(input.Correo),
		ClaveHash: hashed,
		Rol:       model.RolEstudiante,
	}

	newID, err := s.usuarioRepo.Create(ctx, usuario)
	if err != nil {
		return nil, "", err
	}
	usuario.ID = newID

	token, err := s.tokens.IssueToken(usuario)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	if err := s.publisher.PublishUsuarioRegistered(usuario); err != nil {
		slog.WarnContext(ctx, "Failed to publish usuario registered event", "usuario_id", usuario.ID, "error", err)
	}

	return usuario, token, nil
}

func (s *authService) Login(ctx context.Context, correo, clave string) (*model.Usuario, string, error) {
	usuario, err := s.usuarioRepo.FindByEmail(ctx, NormalizeCorreo(correo))
	if err != nil {
		return nil, "", err
	}
	if usuario == nil {
		password.VerifyNone(clave)
		return nil, "", ErrInvalidCredentials
	}

	ok, err := password.Verify(clave, usuario.ClaveHash)
	if err != nil {
		return nil, "", fmt.Errorf("verify password for usuario %d: %w", usuario.ID, err)
	}
	if !ok {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.IssueToken(usuario)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	return usuario, token, nil
}

// EnsureAdmin creates the admin@admin.com account when it does not exist yet.
func (s *authService) EnsureAdmin(ctx context.Context, clave string) (bool, error) {
	existing, err := s.usuarioRepo.FindByEmail(ctx, model.AdminCorreo)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	hashed, err := password.Hash(clave)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}

	_, err = s.usuarioRepo.Create(ctx, &model.Usuario{
		Nombre:    "Admin",
		Apellido:  "User",
		Correo:    model.AdminCorreo,
		ClaveHash: hashed,
		Rol:       model.RolAdmin,
	})
	if err != nil {
		// another replica seeded it first
		if errors.Is(err, ErrDuplicateEmail) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}
