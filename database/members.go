package database

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"tempo/models"
)

// WorkspaceMemberRepository maps rows of workspace_members. Membership is
// hard-deleted; the (workspace_id, user_id) pair is unique.
type WorkspaceMemberRepository struct{}

func NewWorkspaceMemberRepository() *WorkspaceMemberRepository {
	return &WorkspaceMemberRepository{}
}

type CreateWorkspaceMember struct {
	WorkspaceID string
	UserID      string
	Role        string
}

const memberColumns = `id, workspace_id, user_id, role, created_at, updated_at`

func scanMember(s rowScanner) (*models.WorkspaceMember, error) {
	var m models.WorkspaceMember
	err := s.Scan(&m.ID, &m.WorkspaceID, &m.UserID, &m.Role, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *WorkspaceMemberRepository) FindByID(h DBTX, id string) (*models.WorkspaceMember, error) {
	m, err := scanMember(h.QueryRow(`
		SELECT `+memberColumns+` FROM workspace_members WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

func (r *WorkspaceMemberRepository) FindByWorkspaceID(h DBTX, workspaceID string) ([]models.WorkspaceMember, error) {
	rows, err := h.Query(`
		SELECT `+memberColumns+`
		FROM workspace_members
		WHERE workspace_id = ?
		ORDER BY created_at ASC
	`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]models.WorkspaceMember, 0)
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, *m)
	}

	return members, rows.Err()
}

func (r *WorkspaceMemberRepository) FindByUserID(h DBTX, userID string) ([]models.WorkspaceMember, error) {
	rows, err := h.Query(`
		SELECT `+memberColumns+`
		FROM workspace_members
		WHERE user_id = ?
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]models.WorkspaceMember, 0)
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, *m)
	}

	return members, rows.Err()
}

func (r *WorkspaceMemberRepository) Create(h DBTX, input CreateWorkspaceMember) (*models.WorkspaceMember, error) {
	id := uuid.New().String()
	now := time.Now().UTC()
	role := input.Role
	if role == "" {
		role = "member"
	}

	_, err := h.Exec(`
		INSERT INTO workspace_members (id, workspace_id, user_id, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, input.WorkspaceID, input.UserID, role, now, now)
	if err != nil {
		return nil, err
	}

	m, err := r.FindByID(h, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrCreateFailed
	}
	return m, nil
}

func (r *WorkspaceMemberRepository) Delete(h DBTX, id string) error {
	res, err := h.Exec(`DELETE FROM workspace_members WHERE id = ?`, id)
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

func (r *WorkspaceMemberRepository) CountByWorkspace(h DBTX, workspaceID string) (int, error) {
	var count int
	err := h.QueryRow(`
		SELECT COUNT(*) FROM workspace_members WHERE workspace_id = ?
	`, workspaceID).Scan(&count)
	return count, err
}
