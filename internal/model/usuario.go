package model

import "time"

const (
	RolAdmin      = "admin"
	RolEstudiante = "estudiante"
	RolInvitado   = "invitado"
)

// AdminCorreo is the login of the account seeded at startup.
const AdminCorreo = "admin@admin.com"

type Usuario struct {
	ID                 int64     `db:"id" json:"id"`
	Nombre             string    `db:"nombre" json:"nombre"`
	Apellido           string    `db:"apellido" json:"apellido"`
	Correo             string    `db:"correo" json:"correo"`
	ClaveHash          string    `db:"clave" json:"-"`
	Rol                string    `db:"rol" json:"rol"`
	Foto               *string   `db:"foto" json:"foto"`
	FechaRegistro      time.Time `db:"fecha_registro" json:"fecha_registro"`
	FechaActualizacion time.Time `db:"fecha_actualizacion" json:"fecha_actualizacion"`
}

// UsuarioUpdate carries the fields a profile edit may change. Nil fields are left untouched.
type UsuarioUpdate struct {
	Nombre   *string
	Apellido *string
	Correo   *string
	Foto     *string
}

func (u UsuarioUpdate) IsEmpty() bool {
	return u.Nombre == nil && u.Apellido == nil && u.Correo == nil && u.Foto == nil
}

func IsValidRol(rol string) bool {
	switch rol {
	case RolAdmin, RolEstudiante, RolInvitado:
		return true
	}
	return false
}
