package database

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"tempo/models"
)

// UserRepository maps rows of the users table. Users are soft-deleted:
// every read filters on deleted = 0 and Delete only sets the flag.
type UserRepository struct{}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

type CreateUser struct {
	Email     string
	Name      string
	AvatarURL string
	Timezone  string
}

type UpdateUser struct {
	Email     *string
	Name      *string
	AvatarURL *string
	Timezone  *string
}

const userColumns = `id, email, name, avatar_url, timezone, created_at, updated_at`

func scanUser(s rowScanner) (*models.User, error) {
	var u models.User
	err := s.Scan(&u.ID, &u.Email, &u.Name, &u.AvatarURL, &u.Timezone, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindByID(h DBTX, id string) (*models.User, error) {
	user, err := scanUser(h.QueryRow(`
		SELECT `+userColumns+` FROM users WHERE id = ? AND deleted = 0
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

func (r *UserRepository) FindByEmail(h DBTX, email string) (*models.User, error) {
	user, err := scanUser(h.QueryRow(`
		SELECT `+userColumns+` FROM users WHERE email = ? AND deleted = 0
	`, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

func (r *UserRepository) Create(h DBTX, input CreateUser) (*models.User, error) {
	id := uuid.New().String()
	now := time.Now().UTC()
	timezone := input.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	_, err := h.Exec(`
		INSERT INTO users (id, email, name, avatar_url, timezone, deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?)
	`, id, input.Email, input.Name, input.AvatarURL, timezone, now, now)
	if err != nil {
		return nil, err
	}

	user, err := r.FindByID(h, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrCreateFailed
	}
	return user, nil
}

// Upsert mirrors an externally-owned identity (the auth backend's user)
// into the local users table, keyed by the backend's id. The backend is
// authoritative: re-asserting an identity clears a local soft delete.
func (r *UserRepository) Upsert(h DBTX, user *models.User) (*models.User, error) {
	now := time.Now().UTC()
	timezone := user.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	_, err := h.Exec(`
		INSERT INTO users (id, email, name, avatar_url, timezone, deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			name = excluded.name,
			avatar_url = excluded.avatar_url,
			deleted = 0,
			updated_at = excluded.updated_at
	`, user.ID, user.Email, user.Name, user.AvatarURL, timezone, now, now)
	if err != nil {
		return nil, err
	}

	persisted, err := r.FindByID(h, user.ID)
	if err != nil {
		return nil, err
	}
	if persisted == nil {
		return nil, ErrCreateFailed
	}
	return persisted, nil
}

func (r *UserRepository) Update(h DBTX, id string, upd UpdateUser) (*models.User, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if upd.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *upd.Email)
	}
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.AvatarURL != nil {
		sets = append(sets, "avatar_url = ?")
		args = append(args, *upd.AvatarURL)
	}
	if upd.Timezone != nil {
		sets = append(sets, "timezone = ?")
		args = append(args, *upd.Timezone)
	}
	args = append(args, id)

	res, err := h.Exec(`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ? AND deleted = 0`, args...)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, ErrNotFound
	}

	user, err := r.FindByID(h, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

func (r *UserRepository) Delete(h DBTX, id string) error {
	res, err := h.Exec(`
		UPDATE users SET deleted = 1, updated_at = ? WHERE id = ? AND deleted = 0
	`, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}
