package models

import "time"

type CreateWorkspaceRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=500"`
}

type UpdateWorkspaceRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

type CreateProjectRequest struct {
	WorkspaceID string `json:"workspace_id" validate:"required"`
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=500"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Color       *string `json:"color" validate:"omitempty,hexcolor"`
	Completion  *int    `json:"completion" validate:"omitempty,min=0,max=100"`
}

type CreateTaskRequest struct {
	ProjectID    string     `json:"project_id" validate:"required"`
	ParentTaskID *string    `json:"parent_task_id"`
	TaskTypeID   *string    `json:"task_type_id"`
	Title        string     `json:"title" validate:"required,min=1,max=200"`
	Description  string     `json:"description" validate:"max=2000"`
	Priority     int        `json:"priority" validate:"min=0,max=3"`
	DueAt        *time.Time `json:"due_at"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	Status      *string    `json:"status" validate:"omitempty,taskstatus"`
	Priority    *int       `json:"priority" validate:"omitempty,min=0,max=3"`
	Progress    *int       `json:"progress" validate:"omitempty,min=0,max=100"`
	TaskTypeID  *string    `json:"task_type_id"`
	DueAt       *time.Time `json:"due_at"`
}

type CreateTaskTypeRequest struct {
	WorkspaceID *string `json:"workspace_id"`
	Name        string  `json:"name" validate:"required,min=1,max=50"`
	Icon        string  `json:"icon" validate:"max=50"`
	Color       string  `json:"color" validate:"omitempty,hexcolor"`
}

type ReorderTaskTypesRequest struct {
	OrderedIDs []string `json:"ordered_ids" validate:"required,min=1,dive,required"`
}

type StartTimerRequest struct {
	TaskID string `json:"task_id" validate:"required"`
}

type UpdatePreferencesRequest struct {
	Theme                *string `json:"theme" validate:"omitempty,theme"`
	WeekStart            *int    `json:"week_start" validate:"omitempty,min=0,max=6"`
	Timezone             *string `json:"timezone" validate:"omitempty,timezone"`
	DateFormat           *string `json:"date_format" validate:"omitempty,dateformat"`
	PomodoroMinutes      *int    `json:"pomodoro_minutes" validate:"omitempty,min=5,max=180"`
	NotificationsEnabled *bool   `json:"notifications_enabled"`
}

type SummaryRangeRequest struct {
	From string `json:"from" validate:"required,summarydate"`
	To   string `json:"to" validate:"required,summarydate"`
}
