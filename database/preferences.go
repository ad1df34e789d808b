package database

import (
	"database/sql"
	"strings"
	"time"

	"tempo/models"
)

// UserPreferencesRepository maps rows of user_preferences. The primary
// key is the user id: one row per user, no generated id.
type UserPreferencesRepository struct{}

func NewUserPreferencesRepository() *UserPreferencesRepository {
	return &UserPreferencesRepository{}
}

type CreateUserPreferences struct {
	UserID               string
	Theme                string
	WeekStart            int
	Timezone             string
	DateFormat           string
	PomodoroMinutes      int
	NotificationsEnabled bool
}

type UpdateUserPreferences struct {
	Theme                *string
	WeekStart            *int
	Timezone             *string
	DateFormat           *string
	PomodoroMinutes      *int
	NotificationsEnabled *bool
}

const preferencesColumns = `user_id, theme, week_start, timezone, date_format, pomodoro_minutes, notifications_enabled, created_at, updated_at`

func scanPreferences(s rowScanner) (*models.UserPreferences, error) {
	var p models.UserPreferences
	var notifications int
	err := s.Scan(&p.UserID, &p.Theme, &p.WeekStart, &p.Timezone, &p.DateFormat,
		&p.PomodoroMinutes, &notifications, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.NotificationsEnabled = notifications == 1
	return &p, nil
}

func (r *UserPreferencesRepository) FindByUserID(h DBTX, userID string) (*models.UserPreferences, error) {
	prefs, err := scanPreferences(h.QueryRow(`
		SELECT `+preferencesColumns+` FROM user_preferences WHERE user_id = ?
	`, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return prefs, err
}

func (r *UserPreferencesRepository) Create(h DBTX, input CreateUserPreferences) (*models.UserPreferences, error) {
	now := time.Now().UTC()

	theme := input.Theme
	if theme == "" {
		theme = "dark"
	}
	timezone := input.Timezone
	if timezone == "" {
		timezone = "UTC"
	}
	dateFormat := input.DateFormat
	if dateFormat == "" {
		dateFormat = "DD-MM-YY"
	}
	pomodoro := input.PomodoroMinutes
	if pomodoro == 0 {
		pomodoro = 25
	}

	_, err := h.Exec(`
		INSERT INTO user_preferences (user_id, theme, week_start, timezone, date_format, pomodoro_minutes, notifications_enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, input.UserID, theme, input.WeekStart, timezone, dateFormat, pomodoro,
		boolToInt(input.NotificationsEnabled), now, now)
	if err != nil {
		return nil, err
	}

	prefs, err := r.FindByUserID(h, input.UserID)
	if err != nil {
		return nil, err
	}
	if prefs == nil {
		return nil, ErrCreateFailed
	}
	return prefs, nil
}

func (r *UserPreferencesRepository) Update(h DBTX, userID string, upd UpdateUserPreferences) (*models.UserPreferences, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if upd.Theme != nil {
		sets = append(sets, "theme = ?")
		args = append(args, *upd.Theme)
	}
	if upd.WeekStart != nil {
		sets = append(sets, "week_start = ?")
		args = append(args, *upd.WeekStart)
	}
	if upd.Timezone != nil {
		sets = append(sets, "timezone = ?")
		args = append(args, *upd.Timezone)
	}
	if upd.DateFormat != nil {
		sets = append(sets, "date_format = ?")
		args = append(args, *upd.DateFormat)
	}
	if upd.PomodoroMinutes != nil {
		sets = append(sets, "pomodoro_minutes = ?")
		args = append(args, *upd.PomodoroMinutes)
	}
	if upd.NotificationsEnabled != nil {
		sets = append(sets, "notifications_enabled = ?")
		args = append(args, boolToInt(*upd.NotificationsEnabled))
	}
	args = append(args, userID)

	res, err := h.Exec(`UPDATE user_preferences SET `+strings.Join(sets, ", ")+` WHERE user_id = ?`, args...)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, ErrNotFound
	}

	prefs, err := r.FindByUserID(h, userID)
	if err != nil {
		return nil, err
	}
	if prefs == nil {
		return nil, ErrNotFound
	}
	return prefs, nil
}

func (r *UserPreferencesRepository) Delete(h DBTX, userID string) error {
	res, err := h.Exec(`DELETE FROM user_preferences WHERE user_id = ?`, userID)
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

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
