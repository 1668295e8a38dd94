package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/ytakahashi/todo-web/internal/config"
	"github.com/ytakahashi/todo-web/internal/database"
	"github.com/ytakahashi/todo-web/internal/handlers"
	"github.com/ytakahashi/todo-web/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", "err", err)
	}

	log.SetDefault(log.NewWithOptions(os.Stderr, log.Options{
		Level:           parseLogLevel(cfg.LogLevel),
		Formatter:       parseLogFormatter(cfg.LogFormat),
		ReportTimestamp: true,
		Prefix:          "todo",
	}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal("failed to open store", "backend", cfg.StorageBackend, "err", err)
	}
	defer closeStore()

	todoService := services.NewTodoService(store)

	renderer, err := handlers.NewTemplateRenderer()
	if err != nil {
		log.Fatal("failed to parse templates", "err", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.New().String() },
	}))
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	handlers.NewTodoHandler(todoService).Register(e)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	if cfg.LineEnabled() {
		bot, err := messaging_api.NewMessagingApiAPI(cfg.LineChannelToken)
		if err != nil {
			log.Fatal("failed to create LINE bot client", "err", err)
		}
		webhookHandler := handlers.NewWebhookHandler(bot, todoService, cfg.LineChannelSecret)
		e.POST("/webhook", webhookHandler.HandleWebhook)
		log.Info("LINE webhook enabled", "path", "/webhook")
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "backend", cfg.StorageBackend)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "err", err)
	}
}

// openStore builds the configured backend and a func releasing it.
func openStore(ctx context.Context, cfg *config.Config) (services.Store, func(), error) {
	switch cfg.StorageBackend {
	case config.BackendFirestore:
		fs, err := services.NewFirestoreStore(ctx, cfg.GoogleCloudProject, cfg.FirestoreCollection)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {
			if err := fs.Close(); err != nil {
				log.Warn("failed to close Firestore client", "err", err)
			}
		}, nil

	case config.BackendPostgres:
		db, err := database.New(ctx, cfg.DatabaseURI)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Info("database migrations completed")
		return services.NewPostgresStore(db), db.Close, nil

	default:
		log.Info("using file storage", "path", cfg.DataFile)
		return services.NewFileStore(cfg.DataFile), func() {}, nil
	}
}

func parseLogLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func parseLogFormatter(format string) log.Formatter {
	switch format {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}
