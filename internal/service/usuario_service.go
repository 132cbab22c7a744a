package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"portal-service/internal/events"
	"portal-service/internal/model"
	"portal-service/internal/repository"
)

var (
	ErrSelfDelete   = errors.New("an admin cannot delete their own account")
	ErrMissingPhoto = errors.New("foto is required")
	// ErrAdminCorreoLocked keeps the seeded admin findable by EnsureAdmin.
	ErrAdminCorreoLocked = errors.New("the admin correo cannot be changed")
)

type UsuarioService interface {
	List(ctx context.Context) ([]model.Usuario, error)
	Delete(ctx context.Context, actorID, targetID int64) error
	GetProfile(ctx context.Context, id int64) (*model.Usuario, error)
	UpdateProfile(ctx context.Context, id int64, update model.UsuarioUpdate) (*model.Usuario, error)
	UpdatePhoto(ctx context.Context, id int64, foto string) (*model.Usuario, error)
}

type usuarioService struct {
	usuarioRepo repository.UsuarioRepository
	publisher   events.EventPublisher
}

func NewUsuarioService(usuarioRepo repository.UsuarioRepository, publisher events.EventPublisher) UsuarioService {
	return &usuarioService{usuarioRepo: usuarioRepo, publisher: publisher}
}

func (s *usuarioService) List(ctx context.Context) ([]model.Usuario, error) {
	return s.usuarioRepo.ListAll(ctx)
}

func (s *usuarioService) Delete(ctx context.Context, actorID, targetID int64) error {
	if actorID == targetID {
		return ErrSelfDelete
	}

	deleted, err := s.usuarioRepo.Delete(ctx, targetID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrNotFound
	}

	if err := s.publisher.PublishUsuarioDeleted(targetID, actorID); err != nil {
		slog.WarnContext(ctx, "Failed to publish usuario deleted event", "usuario_id", targetID, "error", err)
	}

	return nil
}

func (s *usuarioService) GetProfile(ctx context.Context, id int64) (*model.Usuario, error) {
	usuario, err := s.usuarioRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if usuario == nil {
		return nil, ErrNotFound
	}

	return usuario, nil
}

func (s *usuarioService) UpdateProfile(ctx context.Context, id int64, update model.UsuarioUpdate) (*model.Usuario, error) {
	if update.Correo != nil {
		correo := NormalizeCorreo(*update.Correo)
		update.Correo = &correo

		current, err := s.GetProfile(ctx, id)
		if err != nil {
			return nil, err
		}
		if current.Correo == model.AdminCorreo && correo != model.AdminCorreo {
			return nil, ErrAdminCorreoLocked
		}

		taken, err := s.usuarioRepo.ExistsEmailForOther(ctx, correo, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrDuplicateEmail
		}
	}

	if update.IsEmpty() {
		return s.GetProfile(ctx, id)
	}

	return s.apply(ctx, id, update)
}

func (s *usuarioService) UpdatePhoto(ctx context.Context, id int64, foto string) (*model.Usuario, error) {
	foto = strings.TrimSpace(foto)
	if foto == "" {
		return nil, ErrMissingPhoto
	}

	return s.apply(ctx, id, model.UsuarioUpdate{Foto: &foto})
}

func (s *usuarioService) apply(ctx context.Context, id int64, update model.UsuarioUpdate) (*model.Usuario, error) {
	if err := s.usuarioRepo.Update(ctx, id, update); err != nil {
		return nil, err
	}

	usuario, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.publisher.PublishUsuarioUpdated(usuario); err != nil {
		slog.WarnContext(ctx, "Failed to publish usuario updated event", "usuario_id", id, "error", err)
	}

	return usuario, nil
}
