package database

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"tempo/models"
)

// ProjectRepository maps rows of the projects table (soft-deleted).
type ProjectRepository struct{}

func NewProjectRepository() *ProjectRepository {
	return &ProjectRepository{}
}

type CreateProject struct {
	WorkspaceID string
	UserID      string
	Name        string
	Description string
	Color       string
}

type UpdateProject struct {
	Name        *string
	Description *string
	Color       *string
	Completion  *int
}

const projectColumns = `id, workspace_id, user_id, name, description, color, completion, created_at, updated_at`

func scanProject(s rowScanner) (*models.Project, error) {
	var p models.Project
	err := s.Scan(&p.ID, &p.WorkspaceID, &p.UserID, &p.Name, &p.Description,
		&p.Color, &p.Completion, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) FindByID(h DBTX, id string) (*models.Project, error) {
	p, err := scanProject(h.QueryRow(`
		SELECT `+projectColumns+` FROM projects WHERE id = ? AND deleted = 0
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (r *ProjectRepository) FindByWorkspaceID(h DBTX, workspaceID string) ([]models.Project, error) {
	rows, err := h.Query(`
		SELECT `+projectColumns+`
		FROM projects
		WHERE workspace_id = ? AND deleted = 0
		ORDER BY created_at DESC
	`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectProjects(rows)
}

func (r *ProjectRepository) FindByUserID(h DBTX, userID string) ([]models.Project, error) {
	rows, err := h.Query(`
		SELECT `+projectColumns+`
		FROM projects
		WHERE user_id = ? AND deleted = 0
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectProjects(rows)
}

func collectProjects(rows *sql.Rows) ([]models.Project, error) {
	projects := make([]models.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func (r *ProjectRepository) Create(h DBTX, input CreateProject) (*models.Project, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := h.Exec(`
		INSERT INTO projects (id, workspace_id, user_id, name, description, color, completion, deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, 0, ?, ?)
	`, id, input.WorkspaceID, input.UserID, input.Name, input.Description, input.Color, now, now)
	if err != nil {
		return nil, err
	}

	p, err := r.FindByID(h, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrCreateFailed
	}
	return p, nil
}

func (r *ProjectRepository) Update(h DBTX, id string, upd UpdateProject) (*models.Project, error) {
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
	if upd.Color != nil {
		sets = append(sets, "color = ?")
		args = append(args, *upd.Color)
	}
	if upd.Completion != nil {
		sets = append(sets, "completion = ?")
		args = append(args, *upd.Completion)
	}
	args = append(args, id)

	res, err := h.Exec(`UPDATE projects SET `+strings.Join(sets, ", ")+` WHERE id = ? AND deleted = 0`, args...)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, ErrNotFound
	}

	p, err := r.FindByID(h, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (r *ProjectRepository) Delete(h DBTX, id string) error {
	res, err := h.Exec(`
		UPDATE projects SET deleted = 1, updated_at = ? WHERE id = ? AND deleted = 0
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

func (r *ProjectRepository) CountByWorkspace(h DBTX, workspaceID string) (int, error) {
	var count int
	err := h.QueryRow(`
		SELECT COUNT(*) FROM projects WHERE workspace_id = ? AND deleted = 0
	`, workspaceID).Scan(&count)
	return count, err
}
