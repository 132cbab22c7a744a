// Package repositorytest provides an in-memory UsuarioRepository for tests.
package repositorytest

import (
	"context"
	"sort"
	"sync"
	"time"

	"portal-service/internal/model"
	"portal-service/internal/repository"
)

type MemoryRepository struct {
	mu       sync.Mutex
	nextID   int64
	usuarios map[int64]model.Usuario

	// Err, when set, is returned by every operation.
	Err error
}

var _ repository.UsuarioRepository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{nextID: 1, usuarios: map[int64]model.Usuario{}}
}

func (r *MemoryRepository) Create(_ context.Context, u *model.Usuario) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	for _, existing := range r.usuarios {
		if existing.Correo == u.Correo {
			return 0, repository.ErrDuplicateEmail
		}
	}
	now := time.Now().UTC()
	u.FechaRegistro = now
	u.FechaActualizacion = now
	stored := *u
	stored.ID = r.nextID
	r.usuarios[stored.ID] = stored
	r.nextID++
	return stored.ID, nil
}

func (r *MemoryRepository) FindByEmail(_ context.Context, correo string) (*model.Usuario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, u := range r.usuarios {
		if u.Correo == correo {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id int64) (*model.Usuario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	u, ok := r.usuarios[id]
	if !ok {
		return nil, nil
	}
	u.ClaveHash = ""
	return &u, nil
}

func (r *MemoryRepository) ListAll(_ context.Context) ([]model.Usuario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	list := []model.Usuario{}
	for _, u := range r.usuarios {
		u.ClaveHash = ""
		list = append(list, u)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *MemoryRepository) ExistsEmailForOther(_ context.Context, correo string, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return false, r.Err
	}
	for _, u := range r.usuarios {
		if u.Correo == correo && u.ID != id {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepository) Update(_ context.Context, id int64, update model.UsuarioUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	u, ok := r.usuarios[id]
	if !ok {
		return repository.ErrNotFound
	}
	if update.Correo != nil {
		for _, other := range r.usuarios {
			if other.ID != id && other.Correo == *update.Correo {
				return repository.ErrDuplicateEmail
			}
		}
		u.Correo = *update.Correo
	}
	if update.Nombre != nil {
		u.Nombre = *update.Nombre
	}
	if update.Apellido != nil {
		u.Apellido = *update.Apellido
	}
	if update.Foto != nil {
		foto := *update.Foto
		u.Foto = &foto
	}
	u.FechaActualizacion = time.Now().UTC()
	r.usuarios[id] = u
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	if _, ok := r.usuarios[id]; !ok {
		return 0, nil
	}
	delete(r.usuarios, id)
	return 1, nil
}

// Stored returns the raw row, password hash included.
func (r *MemoryRepository) Stored(id int64) (model.Usuario, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.usuarios[id]
	return u, ok
}

func (r *MemoryRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.usuarios)
}
