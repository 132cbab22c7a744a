package service_test

import (
	"context"
	"testing"

	"portal-service/internal/model"
	"portal-service/internal/repository/repositorytest"
	"portal-service/internal/service"

	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, repo *repositorytest.MemoryRepository, correo, rol string) int64 {
	t.Helper()
	id, err := repo.Create(context.Background(), &model.Usuario{
		Nombre: "Nombre", Apellido: "Apellido", Correo: correo, ClaveHash: "hash", Rol: rol,
	})
	require.NoError(t, err)
	return id
}

func strPtr(s string) *string { return &s }

func TestUsuarioService_Delete(t *testing.T) {
	repo := newFakeRepo()
	pub := &recordingPublisher{}
	svc := service.NewUsuarioService(repo, pub)

	admin := seed(t, repo, model.AdminCorreo, model.RolAdmin)
	target := seed(t, repo, "ana@x.com", model.RolEstudiante)

	require.ErrorIs(t, svc.Delete(context.Background(), admin, admin), service.ErrSelfDelete)
	require.NoError(t, svc.Delete(context.Background(), admin, target))
	require.ErrorIs(t, svc.Delete(context.Background(), admin, target), service.ErrNotFound)
	require.ErrorIs(t, svc.Delete(context.Background(), admin, 999), service.ErrNotFound)
	require.Equal(t, []int64{target}, pub.deleted)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, admin, list[0].ID)
}

func TestUsuarioService_GetProfile_NotFound(t *testing.T) {
	svc := service.NewUsuarioService(newFakeRepo(), &recordingPublisher{})

	_, err := svc.GetProfile(context.Background(), 5)
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestUsuarioService_UpdateProfile_RoundTrip(t *testing.T) {
	repo := newFakeRepo()
	pub := &recordingPublisher{}
	svc := service.NewUsuarioService(repo, pub)
	id := seed(t, repo, "ana@x.com", model.RolEstudiante)

	updated, err := svc.UpdateProfile(context.Background(), id, model.UsuarioUpdate{Nombre: strPtr("Ana Maria")})
	require.NoError(t, err)
	require.Equal(t, "Ana Maria", updated.Nombre)

	found, err := svc.GetProfile(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, "Ana Maria", found.Nombre)
	require.Equal(t, "Apellido", found.Apellido)
	require.Equal(t, "ana@x.com", found.Correo)
	require.Nil(t, found.Foto)
	require.Equal(t, model.RolEstudiante, found.Rol)
	require.Equal(t, []int64{id}, pub.updated)
}

func TestUsuarioService_UpdateProfile_CorreoConflict(t *testing.T) {
	repo := newFakeRepo()
	svc := service.NewUsuarioService(repo, &recordingPublisher{})
	seed(t, repo, "taken@x.com", model.RolEstudiante)
	id := seed(t, repo, "ana@x.com", model.RolEstudiante)

	_, err := svc.UpdateProfile(context.Background(), id, model.UsuarioUpdate{Correo: strPtr("Taken@X.com")})
	require.ErrorIs(t, err, service.ErrDuplicateEmail)
	require.Equal(t, "ana@x.com", stored(t, repo, id).Correo)
}

func TestUsuarioService_UpdateProfile_SameCorreoAllowed(t *testing.T) {
	repo := newFakeRepo()
	svc := service.NewUsuarioService(repo, &recordingPublisher{})
	id := seed(t, repo, "ana@x.com", model.RolEstudiante)

	updated, err := svc.UpdateProfile(context.Background(), id, model.UsuarioUpdate{Correo: strPtr("ana@x.com")})
	require.NoError(t, err)
	require.Equal(t, "ana@x.com", updated.Correo)
}

func TestUsuarioService_UpdateProfile_Empty(t *testing.T) {
	repo := newFakeRepo()
	pub := &recordingPublisher{}
	svc := service.NewUsuarioService(repo, pub)
	id := seed(t, repo, "ana@x.com", model.RolEstudiante)

	u, err := svc.UpdateProfile(context.Background(), id, model.UsuarioUpdate{})
	require.NoError(t, err)
	require.Equal(t, id, u.ID)
	require.Empty(t, pub.updated)
}

func TestUsuarioService_UpdatePhoto(t *testing.T) {
	repo := newFakeRepo()
	svc := service.NewUsuarioService(repo, &recordingPublisher{})
	id := seed(t, repo, "ana@x.com", model.RolEstudiante)

	_, err := svc.UpdatePhoto(context.Background(), id, "   ")
	require.ErrorIs(t, err, service.ErrMissingPhoto)

	u, err := svc.UpdatePhoto(context.Background(), id, "https://cdn.example.com/ana.jpg")
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/ana.jpg", *u.Foto)
	require.Equal(t, "Nombre", u.Nombre)

	_, err = svc.UpdatePhoto(context.Background(), 999, "https://cdn.example.com/x.jpg")
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestUsuarioService_UpdateProfile_AdminCorreoLocked(t *testing.T) {
	repo := newFakeRepo()
	pub := &recordingPublisher{}
	svc := service.NewUsuarioService(repo, pub)
	admin := seed(t, repo, model.AdminCorreo, model.RolAdmin)

	_, err := svc.UpdateProfile(context.Background(), admin, model.UsuarioUpdate{Correo: strPtr("boss@x.com")})
	require.ErrorIs(t, err, service.ErrAdminCorreoLocked)
	require.Equal(t, model.AdminCorreo, stored(t, repo, admin).Correo)
	require.Empty(t, pub.updated)

	u, err := svc.UpdateProfile(context.Background(), admin, model.UsuarioUpdate{
		Correo: strPtr(" ADMIN@admin.com "), Nombre: strPtr("Root"),
	})
	require.NoError(t, err)
	require.Equal(t, model.AdminCorreo, u.Correo)
	require.Equal(t, "Root", u.Nombre)
}
