package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"tempo/app"
	"tempo/auth"
	"tempo/config"
	"tempo/database"
	"tempo/handlers"
	"tempo/middleware"
	"tempo/remote"
	"tempo/services"
	"tempo/sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	config.Load()

	logger := setupLogger()
	slog.SetDefault(logger)

	// Initialize SQLite database
	db, err := database.New(config.AppConfig.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database initialized", "path", config.AppConfig.DBPath)

	// Hosted auth backend
	authClient := auth.NewClient(config.AppConfig.BackendURL, config.AppConfig.BackendAPIKey)
	provider := auth.NewBackendProvider(authClient)
	authService := services.NewAuthService(provider, db)

	a := app.New(db, authService, logger)

	// Background sync: the worker drains the outbox into the backend's
	// row-level REST interface using the current session's bearer token
	store := remote.NewRESTStore(config.AppConfig.BackendURL, config.AppConfig.BackendAPIKey, sessionToken(provider))
	connector := sync.NewConnector(provider, store, config.AppConfig.BackendURL)
	queue := database.NewOutboxQueue(db)
	syncWorker := sync.NewWorker(connector, queue, config.AppConfig.SyncInterval)
	syncWorker.Start()
	logger.Info("sync worker started", "interval", config.AppConfig.SyncInterval)

	fiberApp := fiber.New(fiber.Config{
		ReadTimeout:           time.Second * 10,
		WriteTimeout:          time.Second * 10,
		IdleTimeout:           time.Second * 30,
		DisableStartupMessage: config.AppConfig.Env == "production",
		ErrorHandler:          customErrorHandler(logger),
		ReadBufferSize:        8192,
	})

	fiberApp.Use(
		recover.New(),
		middleware.StructuredLogger(logger),
		middleware.Security(),
		cors.New(cors.Config{
			AllowOrigins:     config.AppConfig.CORSOrigins,
			AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
			AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
			AllowCredentials: false,
			MaxAge:           86400,
		}),
		limiter.New(limiter.Config{
			Max:        200,
			Expiration: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "Rate limit exceeded",
				})
			},
		}),
	)

	fiberApp.Get("/health", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"status": "ok"}) })

	fiberApp.Post("/api/auth/login", handlers.Login(a))
	fiberApp.Post("/api/auth/logout", handlers.Logout(a))

	api := fiberApp.Group("/api", middleware.AuthRequired(authService), limiter.New(limiter.Config{
		Max:        100,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			if userID, ok := c.Locals("userID").(string); ok {
				return "user:" + userID
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Rate limit exceeded for your account",
			})
		},
	}))

	api.Get("/auth/me", handlers.Me(a))

	api.Get("/workspaces", handlers.ListWorkspaces(a))
	api.Post("/workspaces", handlers.CreateWorkspace(a))
	api.Get("/workspaces/:id", handlers.GetWorkspace(a))
	api.Put("/workspaces/:id", handlers.UpdateWorkspace(a))
	api.Delete("/workspaces/:id", handlers.DeleteWorkspace(a))
	api.Get("/workspaces/:id/members", handlers.ListWorkspaceMembers(a))

	api.Get("/projects", handlers.ListProjects(a))
	api.Post("/projects", handlers.CreateProject(a))
	api.Get("/projects/:id", handlers.GetProject(a))
	api.Put("/projects/:id", handlers.UpdateProject(a))
	api.Delete("/projects/:id", handlers.DeleteProject(a))

	api.Get("/tasks", handlers.ListTasks(a))
	api.Post("/tasks", handlers.CreateTask(a))
	api.Get("/tasks/:id", handlers.GetTask(a))
	api.Put("/tasks/:id", handlers.UpdateTask(a))
	api.Delete("/tasks/:id", handlers.DeleteTask(a))
	api.Get("/tasks/:id/subtasks", handlers.ListSubtasks(a))

	api.Get("/task-types", handlers.ListTaskTypes(a))
	api.Post("/task-types", handlers.CreateTaskType(a))
	api.Delete("/task-types/:id", handlers.DeleteTaskType(a))
	api.Put("/task-types/:id/default", handlers.SetDefaultTaskType(a))
	api.Put("/task-types/reorder", handlers.ReorderTaskTypes(a))

	api.Get("/preferences", handlers.GetPreferences(a))
	api.Put("/preferences", handlers.UpdatePreferences(a))

	api.Get("/summaries", handlers.ListSummaries(a))

	api.Post("/timer/start", handlers.StartTimer(a))
	api.Post("/timer/stop", handlers.StopTimer(a))
	api.Get("/timer/status", handlers.TimerStatus(a))
	api.Get("/timer/entries", handlers.ListTimeEntries(a))

	logger.Info("starting server", "port", config.AppConfig.Port, "env", config.AppConfig.Env)

	go func() {
		if err := fiberApp.Listen(":" + config.AppConfig.Port); err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server gracefully")

	syncWorker.Stop()
	logger.Info("sync worker stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := fiberApp.ShutdownWithContext(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}

// sessionToken adapts the auth provider into the remote store's token
// source. CurrentSession refreshes expired tokens before returning.
func sessionToken(provider auth.Provider) remote.TokenFunc {
	return func(ctx context.Context) (string, error) {
		session, err := provider.CurrentSession(ctx)
		if err != nil {
			return "", err
		}
		if session == nil {
			return "", errors.New("not signed in")
		}
		return session.AccessToken, nil
	}
}

func customErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
		}

		if code >= 500 {
			logger.Error("unhandled error",
				"method", c.Method(),
				"path", c.Path(),
				"error", err,
			)
		}

		return c.Status(code).JSON(fiber.Map{"error": err.Error()})
	}
}

func setupLogger() *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level:     getLogLevel(),
		AddSource: config.AppConfig.Env == "development",
	}

	if config.AppConfig.Env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func getLogLevel() slog.Level {
	level := config.GetEnv("LOG_LEVEL", "info")
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
