package models

import "time"

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url"`
	Timezone  string    `json:"timezone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserPreferences is keyed by user id; exactly one row per user.
type UserPreferences struct {
	UserID               string    `json:"user_id"`
	Theme                string    `json:"theme"`
	WeekStart            int       `json:"weekStart"`
	Timezone             string    `json:"timezone"`
	DateFormat           string    `json:"dateFormat"`
	PomodoroMinutes      int       `json:"pomodoroMinutes"`
	NotificationsEnabled bool      `json:"notificationsEnabled"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}
