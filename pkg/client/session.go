package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"portal-service/internal/model"
)

var ErrNoSession = errors.New("no stored session")

type User struct {
	ID            int64     `json:"id"`
	Nombre        string    `json:"nombre"`
	Apellido      string    `json:"apellido"`
	Correo        string    `json:"correo"`
	Rol           string    `json:"rol"`
	Foto          *string   `json:"foto"`
	FechaRegistro time.Time `json:"fecha_registro"`
}

// Session is what the client remembers between runs. Guest sessions carry no token.
type Session struct {
	Token string `json:"token,omitempty"`
	User  User   `json:"user"`
}

// GuestSession returns a local-only session. The server keeps no record of guests.
func GuestSession(nombre string) *Session {
	nombre = strings.TrimSpace(nombre)
	if nombre == "" {
		nombre = "Invitado"
	}

	return &Session{
		User: User{
			Nombre:        nombre,
			Rol:           model.RolInvitado,
			FechaRegistro: time.Now().UTC(),
		},
	}
}

func (s *Session) IsGuest() bool {
	return s.User.Rol == model.RolInvitado
}

func (s *Session) IsAdmin() bool {
	return s.User.Rol == model.RolAdmin
}

func (s *Session) bearer() (string, error) {
	if s == nil {
		return "", ErrNoSession
	}
	if s.IsGuest() || s.Token == "" {
		return "", ErrGuestSession
	}
	return s.Token, nil
}

// SessionStore persists a single session.
type SessionStore interface {
	Load() (*Session, error)
	Save(s *Session) error
	Clear() error
}

// FileStore keeps the session as one JSON document on disk.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

var _ SessionStore = (*FileStore)(nil)

func (f *FileStore) Load() (*Session, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoSession
		}
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", f.Path, err)
	}
	return &s, nil
}

// Save replaces the stored document atomically.
func (f *FileStore) Save(s *Session) error {
	if s == nil {
		return f.Clear()
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), f.Path)
}

func (f *FileStore) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
