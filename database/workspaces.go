package database

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"tempo/models"
)

// WorkspaceRepository maps rows of the workspaces table (soft-deleted).
type WorkspaceRepository struct{}

func NewWorkspaceRepository() *WorkspaceRepository {
	return &WorkspaceRepository{}
}

type CreateWorkspace struct {
	OwnerID     string
	Name        string
	Description string
}

type UpdateWorkspace struct {
	Name        *string
	Description *string
}

const workspaceColumns = `id, owner_id, name, description, created_at, updated_at`

func scanWorkspace(s rowScanner) (*models.Workspace, error) {
	var w models.Workspace
	err := s.Scan(&w.ID, &w.OwnerID, &w.Name, &w.Description, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WorkspaceRepository) FindByID(h DBTX, id string) (*models.Workspace, error) {
	ws, err := scanWorkspace(h.QueryRow(`
		SELECT `+workspaceColumns+` FROM workspaces WHERE id = ? AND deleted = 0
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return ws, err
}

func (r *WorkspaceRepository) FindByOwnerID(h DBTX, ownerID string) ([]models.Workspace, error) {
	rows, err := h.Query(`
		SELECT `+workspaceColumns+`
		FROM workspaces
		WHERE owner_id = ? AND deleted = 0
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workspaces := make([]models.Workspace, 0)
	for rows.Next() {
		ws, err := scanWorkspace(rows)
		if err != nil {
			return nil, err
		}
		workspaces = append(workspaces, *ws)
	}

	return workspaces, rows.Err()
}

func (r *WorkspaceRepository) Create(h DBTX, input CreateWorkspace) (*models.Workspace, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := h.Exec(`
		INSERT INTO workspaces (id, owner_id, name, description, deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, ?, ?)
	`, id, input.OwnerID, input.Name, input.Description, now, now)
	if err != nil {
		return nil, err
	}

	ws, err := r.FindByID(h, id)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		return nil, ErrCreateFailed
	}
	return ws, nil
}

func (r *WorkspaceRepository) Update(h DBTX, id string, upd UpdateWorkspace) (*models.Workspace, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *upd.Description)
	}
	args = append(args, id)

	res, err := h.Exec(`UPDATE workspaces SET `+strings.Join(sets, ", ")+` WHERE id = ? AND deleted = 0`, args...)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, ErrNotFound
	}

	ws, err := r.FindByID(h, id)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		return nil, ErrNotFound
	}
	return ws, nil
}

func (r *WorkspaceRepository) Delete(h DBTX, id string) error {
	res, err := h.Exec(`
		UPDATE workspaces SET deleted = 1, updated_at = ? WHERE id = ? AND deleted = 0
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

func (r *WorkspaceRepository) CountByOwner(h DBTX, ownerID string) (int, error) {
	var count int
	err := h.QueryRow(`
		SELECT COUNT(*) FROM workspaces WHERE owner_id = ? AND deleted = 0
	`, ownerID).Scan(&count)
	return count, err
}
