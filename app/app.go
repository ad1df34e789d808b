package app

import (
	"log/slog"

	"tempo/database"
	"tempo/services"
	"tempo/validator"
)

// App holds all application dependencies
// This struct is the central point for dependency injection
type App struct {
	DB         *database.DB
	Auth       *services.AuthService
	Tasks      *services.TaskService
	Timer      *services.TimerService
	Workspaces *database.WorkspaceRepository
	Members    *database.WorkspaceMemberRepository
	Projects   *database.ProjectRepository
	TaskTypes  *database.TaskTypeRepository
	Prefs      *database.UserPreferencesRepository
	Summaries  *database.DailySummaryRepository
	Validator  *validator.Validator
	Logger     *slog.Logger
}

// New creates a new App instance with all dependencies
func New(db *database.DB, authService *services.AuthService, logger *slog.Logger) *App {
	return &App{
		DB:         db,
		Auth:       authService,
		Tasks:      services.NewTaskService(db),
		Timer:      services.NewTimerService(db),
		Workspaces: database.NewWorkspaceRepository(),
		Members:    database.NewWorkspaceMemberRepository(),
		Projects:   database.NewProjectRepository(),
		TaskTypes:  database.NewTaskTypeRepository(),
		Prefs:      database.NewUserPreferencesRepository(),
		Summaries:  database.NewDailySummaryRepository(),
		Validator:  validator.New(),
		Logger:     logger,
	}
}
