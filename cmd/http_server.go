package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/incidentops/incident-management/internal"
	"github.com/incidentops/incident-management/internal/auth"
	authPostgres "github.com/incidentops/incident-management/internal/auth/postgres"
	"github.com/incidentops/incident-management/internal/core/events"
	"github.com/incidentops/incident-management/internal/engineer"
	engineerPostgres "github.com/incidentops/incident-management/internal/engineer/postgres"
	"github.com/incidentops/incident-management/internal/incident"
	incidentPostgres "github.com/incidentops/incident-management/internal/incident/postgres"
	"github.com/incidentops/incident-management/internal/notification"
	"github.com/incidentops/incident-management/internal/part"
	partPostgres "github.com/incidentops/incident-management/internal/part/postgres"
	"github.com/incidentops/incident-management/internal/transport/rest"
	"github.com/incidentops/incident-management/internal/user"
	userPostgres "github.com/incidentops/incident-management/internal/user/postgres"
	"github.com/incidentops/incident-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	GormDB *gorm.DB
	Router chi.Router
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	cfg, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(cfg.Env, cfg.Logging.Level)
	lg := logger.L()

	db, gormDB, err := initDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	eventBus := events.NewEventBus(lg)

	authRepo := authPostgres.NewRepository(gormDB)
	codec := auth.NewCookieCodec(cfg.Security.SecretKey)
	authService := auth.NewService(authRepo, authRepo, codec, cfg.Security.SessionTTL, cfg.Security.BCryptCost, lg)

	userRepo := userPostgres.NewUserRepository(gormDB)
	userService := user.NewService(userRepo, cfg.Security.BCryptCost, lg)

	partRepo := partPostgres.NewPartRepository(gormDB)
	partService := part.NewService(partRepo, eventBus, lg)

	engineerRepo := engineerPostgres.NewEngineerRepository(gormDB)
	engineerService := engineer.NewService(engineerRepo, lg)

	incidentRepo := incidentPostgres.NewIncidentRepository(gormDB)
	incidentService := incident.NewService(incidentRepo, partService, engineerService, eventBus, cfg.App.IncidentsPerPage, lg)

	notifier := notification.NewNotifier(cfg.Mail, cfg.App.AdminEmail, userService, lg)
	notifier.Register(eventBus)

	handlers := rest.Handlers{
		Auth:     auth.NewHandler(authService),
		User:     user.NewHandler(userService),
		Incident: incident.NewHandler(incidentService),
		Part:     part.NewHandler(partService),
		Engineer: engineer.NewHandler(engineerService),
		Health:   rest.NewHealthHandler(db, lg),
		RBAC:     auth.NewRBACAuthorization(lg),
	}

	router := rest.NewRouter(cfg, handlers, lg)

	return &Dependencies{
		Config: cfg,
		DB:     db,
		GormDB: gormDB,
		Router: router,
		Logger: lg,
	}, nil
}

// initDB opens one pgx connection pool and layers both handles on top
// of it: sqlx for health checks and raw queries, gorm for the
// repositories.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, *gorm.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: dbConn.DB}), &gorm.Config{})
	if err != nil {
		_ = dbConn.Close()
		return nil, nil, fmt.Errorf("failed to open gorm over db connection: %w", err)
	}

	return dbConn, gormDB, nil
}
