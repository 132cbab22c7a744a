package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"portal-service/internal/model"
)

var (
	ErrDuplicateEmail = errors.New("correo already registered")
	ErrNotFound       = errors.New("usuario not found")
)

const uniqueViolation = "23505"

type UsuarioRepository interface {
	// Create inserts usuario, fills its timestamps and returns the new id.
	Create(ctx context.Context, usuario *model.Usuario) (int64, error)
	FindByEmail(ctx context.Context, correo string) (*model.Usuario, error)
	FindByID(ctx context.Context, id int64) (*model.Usuario, error)
	ListAll(ctx context.Context) ([]model.Usuario, error)
	ExistsEmailForOther(ctx context.Context, correo string, id int64) (bool, error)
	Update(ctx context.Context, id int64, update model.UsuarioUpdate) error
	Delete(ctx context.Context, id int64) (int64, error)
}

type postgresUsuarioRepository struct {
	db *sqlx.DB
}

func NewPostgresUsuarioRepository(db *sqlx.DB) UsuarioRepository {
	return &postgresUsuarioRepository{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (r *postgresUsuarioRepository) Create(ctx context.Context, usuario *model.Usuario) (int64, error) {
	query := `INSERT INTO usuarios (nombre, apellido, correo, clave, rol, foto) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, fecha_registro, fecha_actualizacion`
	var newID int64
	err := r.db.QueryRowxContext(ctx, query,
		usuario.Nombre, usuario.Apellido, usuario.Correo, usuario.ClaveHash, usuario.Rol, usuario.Foto,
	).Scan(&newID, &usuario.FechaRegistro, &usuario.FechaActualizacion)

	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateEmail
		}
		return 0, fmt.Errorf("insert usuario: %w", err)
	}

	return newID, nil
}

// FindByEmail is the only lookup that loads the password hash.
func (r *postgresUsuarioRepository) FindByEmail(ctx context.Context, correo string) (*model.Usuario, error) {
	var usuario model.Usuario
	query := `SELECT id, nombre, apellido, correo, clave, rol, foto, fecha_registro, fecha_actualizacion FROM usuarios WHERE correo = $1`
	err := r.db.GetContext(ctx, &usuario, query, correo)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find usuario by correo: %w", err)
	}

	return &usuario, nil
}

func (r *postgresUsuarioRepository) FindByID(ctx context.Context, id int64) (*model.Usuario, error) {
	var usuario model.Usuario
	query := `SELECT id, nombre, apellido, correo, rol, foto, fecha_registro, fecha_actualizacion FROM usuarios WHERE id = $1`
	err := r.db.GetContext(ctx, &usuario, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find usuario by id: %w", err)
	}

	return &usuario, nil
}

func (r *postgresUsuarioRepository) ListAll(ctx context.Context) ([]model.Usuario, error) {
	usuarios := []model.Usuario{}
	query := `SELECT id, nombre, apellido, correo, rol, foto, fecha_registro, fecha_actualizacion FROM usuarios ORDER BY id`

	if err := r.db.SelectContext(ctx, &usuarios, query); err != nil {
		return nil, fmt.Errorf("list usuarios: %w", err)
	}

	return usuarios, nil
}

func (r *postgresUsuarioRepository) ExistsEmailForOther(ctx context.Context, correo string, id int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM usuarios WHERE correo = $1 AND id <> $2)`

	if err := r.db.GetContext(ctx, &exists, query, correo, id); err != nil {
		return false, fmt.Errorf("check correo uniqueness: %w", err)
	}

	return exists, nil
}

func (r *postgresUsuarioRepository) Update(ctx context.Context, id int64, update model.UsuarioUpdate) error {
	var setClauses []string
	var args []interface{}
	argID := 1

	add := func(column string, value *string) {
		if value == nil {
			return
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argID))
		args = append(args, *value)
		argID++
	}

	add("nombre", update.Nombre)
	add("apellido", update.Apellido)
	add("correo", update.Correo)
	add("foto", update.Foto)

	if len(setClauses) == 0 {
		return nil
	}

	setClauses = append(setClauses, "fecha_actualizacion = now()")
	query := fmt.Sprintf("UPDATE usuarios SET %s WHERE id = $%d", strings.Join(setClauses, ", "), argID)
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("update usuario: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update usuario: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *postgresUsuarioRepository) Delete(ctx context.Context, id int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM usuarios WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete usuario: %w", err)
	}

	return result.RowsAffected()
}
