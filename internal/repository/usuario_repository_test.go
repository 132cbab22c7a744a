package repository_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"portal-service/internal/model"
	repo "portal-service/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

var usuarioColumns = []string{"id", "nombre", "apellido", "correo", "rol", "foto", "fecha_registro", "fecha_actualizacion"}

func newMockRepo(t *testing.T) (repo.UsuarioRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return repo.NewPostgresUsuarioRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func strPtr(s string) *string { return &s }

func TestPostgresUsuarioRepository_Create(t *testing.T) {
	r, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO usuarios (nombre, apellido, correo, clave, rol, foto) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, fecha_registro, fecha_actualizacion`)).
		WithArgs("Ana", "Lopez", "ana@x.com", "hash", model.RolEstudiante, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "fecha_registro", "fecha_actualizacion"}).AddRow(7, now, now))

	usuario := &model.Usuario{
		Nombre: "Ana", Apellido: "Lopez", Correo: "ana@x.com", ClaveHash: "hash", Rol: model.RolEstudiante,
	}
	id, err := r.Create(context.Background(), usuario)
	require.NoError(t, err)
	require.Equal(t, int64(7), id)
	require.WithinDuration(t, now, usuario.FechaRegistro, time.Second)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUsuarioRepository_Create_DuplicateEmail(t *testing.T) {
	r, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO usuarios`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "usuarios_correo_key"})

	_, err := r.Create(context.Background(), &model.Usuario{Correo: "ana@x.com", Rol: model.RolEstudiante})
	require.ErrorIs(t, err, repo.ErrDuplicateEmail)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUsuarioRepository_FindByEmail_Success(t *testing.T) {
	r, mock := newMockRepo(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "nombre", "apellido", "correo", "clave", "rol", "foto", "fecha_registro", "fecha_actualizacion"}).
		AddRow(3, "Ana", "Lopez", "ana@x.com", "hash", model.RolEstudiante, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, nombre, apellido, correo, clave, rol, foto, fecha_registro, fecha_actualizacion FROM usuarios WHERE correo = $1`)).
		WithArgs("ana@x.com").WillReturnRows(rows)

	u, err := r.FindByEmail(context.Background(), "ana@x.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	require.Equal(t, int64(3), u.ID)
	require.Equal(t, "hash", u.ClaveHash)
	require.Nil(t, u.Foto)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUsuarioRepository_FindByEmail_NotFound(t *testing.T) {
	r, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM usuarios WHERE correo = $1`)).
		WithArgs("nobody@x.com").WillReturnError(sql.ErrNoRows)

	u, err := r.FindByEmail(context.Background(), "nobody@x.com")
	require.NoError(t, err)
	require.Nil(t, u)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUsuarioRepository_FindByID_NoRows(t *testing.T) {
	r, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, nombre, apellido, correo, rol, foto, fecha_registro, fecha_actualizacion FROM usuarios WHERE id = $1`)).
		WithArgs(int64(9)).WillReturnError(sql.ErrNoRows)

	u, err := r.FindByID(context.Background(), 9)
	require.NoError(t, err)
	require.Nil(t, u)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUsuarioRepository_FindByID_Error(t *testing.T) {
	r, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM usuarios WHERE id = $1`)).
		WithArgs(sqlmock.AnyArg()).WillReturnError(sql.ErrConnDone)

	_, err := r.FindByID(context.Background(), 1)
	require.ErrorIs(t, err, sql.ErrConnDone)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUsuarioRepository_ListAll(t *testing.T) {
	r, mock := newMockRepo(t)

	now := time.Now()
	rows := sqlmock.NewRows(usuarioColumns).
		AddRow(1, "Admin", "User", model.AdminCorreo, model.RolAdmin, nil, now, now).
		AddRow(2, "Ana", "Lopez", "ana@x.com", model.RolEstudiante, "https://img/x.jpg", now, now)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, nombre, apellido, correo, rol, foto, fecha_registro, fecha_actualizacion FROM usuarios ORDER BY id`)).
		WillReturnRows(rows)

	list, err := r.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, model.RolAdmin, list[0].Rol)
	require.Empty(t, list[0].ClaveHash)
	require.Equal(t, "https://img/x.jpg", *list[1].Foto)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUsuarioRepository_ListAll_Empty(t *testing.T) {
	r, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM usuarios ORDER BY id`)).
		WillReturnRows(sqlmock.NewRows(usuarioColumns))

	list, err := r.ListAll(context.Background())
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Empty(t, list)
}

func TestPostgresUsuarioRepository_ExistsEmailForOther(t *testing.T) {
	r, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM usuarios WHERE correo = $1 AND id <> $2)`)).
		WithArgs("ana@x.com", int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := r.ExistsEmailForOther(context.Background(), "ana@x.com", 4)
	require.NoError(t, err)
	require.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUsuarioRepository_Update_OnlyProvidedFields(t *testing.T) {
	r, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE usuarios SET nombre = $1, correo = $2, fecha_actualizacion = now() WHERE id = $3`)).
		WithArgs("Ana Maria", "ana.maria@x.com", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := r.Update(context.Background(), 5, model.UsuarioUpdate{
		Nombre: strPtr("Ana Maria"),
		Correo: strPtr("ana.maria@x.com"),
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUsuarioRepository_Update_Empty(t *testing.T) {
	r, mock := newMockRepo(t)

	require.NoError(t, r.Update(context.Background(), 5, model.UsuarioUpdate{}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUsuarioRepository_Update_NotFound(t *testing.T) {
	r, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE usuarios SET foto = $1, fecha_actualizacion = now() WHERE id = $2`)).
		WithArgs("https://img/x.jpg", int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := r.Update(context.Background(), 99, model.UsuarioUpdate{Foto: strPtr("https://img/x.jpg")})
	require.ErrorIs(t, err, repo.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUsuarioRepository_Update_DuplicateEmail(t *testing.T) {
	r, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE usuarios SET correo = $1`)).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := r.Update(context.Background(), 5, model.UsuarioUpdate{Correo: strPtr("taken@x.com")})
	require.ErrorIs(t, err, repo.ErrDuplicateEmail)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUsuarioRepository_Delete(t *testing.T) {
	r, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM usuarios WHERE id = $1`)).
		WithArgs(int64(8)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM usuarios WHERE id = $1`)).
		WithArgs(int64(9)).WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := r.Delete(context.Background(), 8)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	n, err = r.Delete(context.Background(), 9)
	require.NoError(t, err)
	require.Equal(t, int64(0), n)

	require.NoError(t, mock.ExpectationsWereMet())
}
