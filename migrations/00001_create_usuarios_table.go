package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateUsuariosTable, downCreateUsuariosTable)
}

func upCreateUsuariosTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE usuarios (
	  id BIGSERIAL PRIMARY KEY,
	  nombre VARCHAR(100) NOT NULL,
	  apellido VARCHAR(100) NOT NULL,
	  correo VARCHAR(255) NOT NULL,
	  clave VARCHAR(255) NOT NULL,
	  rol VARCHAR(20) NOT NULL DEFAULT 'estudiante',
	  foto TEXT,
	  fecha_registro TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	  fecha_actualizacion TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	  CONSTRAINT usuarios_correo_key UNIQUE (correo),
	  CONSTRAINT check_rol CHECK (rol IN ('admin', 'estudiante', 'invitado'))
	);
	`

	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}

func downCreateUsuariosTable(ctx context.Context, tx *sql.Tx) error {
	query := `DROP TABLE IF EXISTS usuarios;`
	_, err := tx.ExecContext(ctx, query)
	if err != nil {
		return err
	}
	return nil
}
