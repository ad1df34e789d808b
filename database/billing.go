package database

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"tempo/models"
)

// RoleRepository maps rows of the roles table (hard-deleted). A NULL
// limit column means unlimited.
type RoleRepository struct{}

func NewRoleRepository() *RoleRepository {
	return &RoleRepository{}
}

type CreateRole struct {
	Name               string
	PriceCents         int
	MaxWorkspaces      *int
	MaxProjects        *int
	MaxTasksPerProject *int
	CanUseIntegrations bool
	CanExport          bool
}

type roleRow struct {
	id                 string
	name               string
	priceCents         int
	maxWorkspaces      sql.NullInt64
	maxProjects        sql.NullInt64
	maxTasksPerProject sql.NullInt64
	canUseIntegrations int
	canExport          int
	createdAt          time.Time
	updatedAt          time.Time
}

func (rr roleRow) toDomain() *models.Role {
	return &models.Role{
		ID:                 rr.id,
		Name:               rr.name,
		PriceCents:         rr.priceCents,
		MaxWorkspaces:      nullableLimit(rr.maxWorkspaces),
		MaxProjects:        nullableLimit(rr.maxProjects),
		MaxTasksPerProject: nullableLimit(rr.maxTasksPerProject),
		CanUseIntegrations: rr.canUseIntegrations == 1,
		CanExport:          rr.canExport == 1,
		CreatedAt:          rr.createdAt,
		UpdatedAt:          rr.updatedAt,
	}
}

func nullableLimit(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullableInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

const roleColumns = `id, name, price_cents, max_workspaces, max_projects, max_tasks_per_project, can_use_integrations, can_export, created_at, updated_at`

func scanRole(s rowScanner) (*models.Role, error) {
	var rr roleRow
	err := s.Scan(&rr.id, &rr.name, &rr.priceCents, &rr.maxWorkspaces, &rr.maxProjects,
		&rr.maxTasksPerProject, &rr.canUseIntegrations, &rr.canExport, &rr.createdAt, &rr.updatedAt)
	if err != nil {
		return nil, err
	}
	return rr.toDomain(), nil
}

func (r *RoleRepository) FindByID(h DBTX, id string) (*models.Role, error) {
	role, err := scanRole(h.QueryRow(`
		SELECT `+roleColumns+` FROM roles WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return role, err
}

func (r *RoleRepository) FindByName(h DBTX, name string) (*models.Role, error) {
	role, err := scanRole(h.QueryRow(`
		SELECT `+roleColumns+` FROM roles WHERE name = ?
	`, name))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return role, err
}

func (r *RoleRepository) FindAll(h DBTX) ([]models.Role, error) {
	rows, err := h.Query(`
		SELECT ` + roleColumns + ` FROM roles ORDER BY price_cents ASC, name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := make([]models.Role, 0)
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, *role)
	}

	return roles, rows.Err()
}

func (r *RoleRepository) Create(h DBTX, input CreateRole) (*models.Role, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := h.Exec(`
		INSERT INTO roles (id, name, price_cents, max_workspaces, max_projects, max_tasks_per_project, can_use_integrations, can_export, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, input.Name, input.PriceCents, nullableInt(input.MaxWorkspaces), nullableInt(input.MaxProjects),
		nullableInt(input.MaxTasksPerProject), boolToInt(input.CanUseIntegrations), boolToInt(input.CanExport), now, now)
	if err != nil {
		return nil, err
	}

	role, err := r.FindByID(h, id)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, ErrCreateFailed
	}
	return role, nil
}

func (r *RoleRepository) Delete(h DBTX, id string) error {
	res, err := h.Exec(`DELETE FROM roles WHERE id = ?`, id)
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

// SubscriptionRepository maps user_subscriptions and its append-only
// subscription_history audit log. The UNIQUE constraint on user_id keeps
// a user at exactly one active subscription.
type SubscriptionRepository struct{}

func NewSubscriptionRepository() *SubscriptionRepository {
	return &SubscriptionRepository{}
}

type CreateSubscription struct {
	UserID    string
	RoleID    string
	StartedAt time.Time
	ExpiresAt *time.Time
}

type subscriptionRow struct {
	id        string
	userID    string
	roleID    string
	startedAt time.Time
	expiresAt sql.NullTime
	createdAt time.Time
	updatedAt time.Time
}

func (sr subscriptionRow) toDomain() *models.UserSubscription {
	sub := &models.UserSubscription{
		ID:        sr.id,
		UserID:    sr.userID,
		RoleID:    sr.roleID,
		StartedAt: sr.startedAt,
		CreatedAt: sr.createdAt,
		UpdatedAt: sr.updatedAt,
	}
	if sr.expiresAt.Valid {
		expiresAt := sr.expiresAt.Time
		sub.ExpiresAt = &expiresAt
	}
	return sub
}

const subscriptionColumns = `id, user_id, role_id, started_at, expires_at, created_at, updated_at`

func scanSubscription(s rowScanner) (*models.UserSubscription, error) {
	var sr subscriptionRow
	err := s.Scan(&sr.id, &sr.userID, &sr.roleID, &sr.startedAt, &sr.expiresAt, &sr.createdAt, &sr.updatedAt)
	if err != nil {
		return nil, err
	}
	return sr.toDomain(), nil
}

func (r *SubscriptionRepository) FindByID(h DBTX, id string) (*models.UserSubscription, error) {
	sub, err := scanSubscription(h.QueryRow(`
		SELECT `+subscriptionColumns+` FROM user_subscriptions WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return sub, err
}

func (r *SubscriptionRepository) FindByUserID(h DBTX, userID string) (*models.UserSubscription, error) {
	sub, err := scanSubscription(h.QueryRow(`
		SELECT `+subscriptionColumns+` FROM user_subscriptions WHERE user_id = ?
	`, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return sub, err
}

func (r *SubscriptionRepository) Create(h DBTX, input CreateSubscription) (*models.UserSubscription, error) {
	id := uuid.New().String()
	now := time.Now().UTC()
	startedAt := input.StartedAt
	if startedAt.IsZero() {
		startedAt = now
	}

	_, err := h.Exec(`
		INSERT INTO user_subscriptions (id, user_id, role_id, started_at, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, input.UserID, input.RoleID, startedAt.UTC(), nullTime(input.ExpiresAt), now, now)
	if err != nil {
		return nil, err
	}

	sub, err := r.FindByID(h, id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrCreateFailed
	}
	return sub, nil
}

// ChangeRole moves the user's active subscription to a new role and
// appends a history row recording the transition. Two statements; pass a
// *sql.Tx to make them atomic.
func (r *SubscriptionRepository) ChangeRole(h DBTX, userID, roleID string, priceCents int) (*models.UserSubscription, error) {
	sub, err := r.FindByUserID(h, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrNotFound
	}

	now := time.Now().UTC()
	if _, err := h.Exec(`
		UPDATE user_subscriptions SET role_id = ?, started_at = ?, updated_at = ? WHERE user_id = ?
	`, roleID, now, now, userID); err != nil {
		return nil, err
	}

	previous := sub.RoleID
	if _, err := h.Exec(`
		INSERT INTO subscription_history (id, user_id, role_id, previous_role_id, price_cents, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, uuid.New().String(), userID, roleID, previous, priceCents, now); err != nil {
		return nil, err
	}

	return r.FindByUserID(h, userID)
}

func (r *SubscriptionRepository) Delete(h DBTX, id string) error {
	res, err := h.Exec(`DELETE FROM user_subscriptions WHERE id = ?`, id)
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

type historyRow struct {
	id             string
	userID         string
	roleID         string
	previousRoleID sql.NullString
	priceCents     int
	createdAt      time.Time
}

func (hr historyRow) toDomain() *models.SubscriptionHistory {
	entry := &models.SubscriptionHistory{
		ID:         hr.id,
		UserID:     hr.userID,
		RoleID:     hr.roleID,
		PriceCents: hr.priceCents,
		CreatedAt:  hr.createdAt,
	}
	if hr.previousRoleID.Valid {
		entry.PreviousRoleID = &hr.previousRoleID.String
	}
	return entry
}

// History returns the user's subscription audit log, newest first.
func (r *SubscriptionRepository) History(h DBTX, userID string, limit int) ([]models.SubscriptionHistory, error) {
	rows, err := h.Query(`
		SELECT id, user_id, role_id, previous_role_id, price_cents, created_at
		FROM subscription_history
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make([]models.SubscriptionHistory, 0)
	for rows.Next() {
		var hr historyRow
		if err := rows.Scan(&hr.id, &hr.userID, &hr.roleID, &hr.previousRoleID, &hr.priceCents, &hr.createdAt); err != nil {
			return nil, err
		}
		history = append(history, *hr.toDomain())
	}

	return history, rows.Err()
}
