package models

import "time"

// Role describes a subscription tier. Nil limits mean unlimited.
type Role struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	PriceCents         int       `json:"price_cents"`
	MaxWorkspaces      *int      `json:"max_workspaces"`
	MaxProjects        *int      `json:"max_projects"`
	MaxTasksPerProject *int      `json:"max_tasks_per_project"`
	CanUseIntegrations bool      `json:"can_use_integrations"`
	CanExport          bool      `json:"can_export"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// UserSubscription is the single active subscription of a user.
type UserSubscription struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	RoleID    string     `json:"role_id"`
	StartedAt time.Time  `json:"started_at"`
	ExpiresAt *time.Time `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// SubscriptionHistory is an append-only audit record of role changes.
type SubscriptionHistory struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	RoleID         string    `json:"role_id"`
	PreviousRoleID *string   `json:"previous_role_id"`
	PriceCents     int       `json:"price_cents"`
	CreatedAt      time.Time `json:"created_at"`
}
