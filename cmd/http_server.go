package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/invoice-management/internal"
	"github.com/frahmantamala/invoice-management/internal/auth"
	authPostgres "github.com/frahmantamala/invoice-management/internal/auth/postgres"
	"github.com/frahmantamala/invoice-management/internal/category"
	categoryPostgres "github.com/frahmantamala/invoice-management/internal/category/postgres"
	"github.com/frahmantamala/invoice-management/internal/core/events"
	"github.com/frahmantamala/invoice-management/internal/invoice"
	invoicePostgres "github.com/frahmantamala/invoice-management/internal/invoice/postgres"
	"github.com/frahmantamala/invoice-management/internal/notification"
	notificationPostgres "github.com/frahmantamala/invoice-management/internal/notification/postgres"
	"github.com/frahmantamala/invoice-management/internal/settings"
	settingsPostgres "github.com/frahmantamala/invoice-management/internal/settings/postgres"
	"github.com/frahmantamala/invoice-management/internal/transport"
	"github.com/frahmantamala/invoice-management/internal/transport/rest"
	"github.com/frahmantamala/invoice-management/internal/transport/swagger"
	"github.com/frahmantamala/invoice-management/internal/user"
	userPostgres "github.com/frahmantamala/invoice-management/internal/user/postgres"
	"github.com/frahmantamala/invoice-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
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
	Config   *internal.Config
	DB       *sqlx.DB
	GormDB   *gorm.DB
	EventBus *events.EventBus
	Router   *chi.Mux
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

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
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := internal.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		// let in-flight notification fan-out finish before the pool goes away
		deps.EventBus.Wait()
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	slogger := logger.LoggerWrapper()

	if config.API.SpecPath != "" {
		ctx, cancel := internal.WithTimeout(context.Background(), 0)
		_, err := swagger.LoadSpec(ctx, config.API.SpecPath)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("failed to load openapi document: %w", err)
		}
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	bus := events.NewEventBus(slogger)
	base := transport.NewBaseHandler(slogger)

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.JWTAccessSecret,
		config.Security.JWTRefreshSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authPostgres.NewRepository(gormDB), tokenGen, config.Security.BCryptCost, slogger)

	settingsService := settings.NewService(settingsPostgres.NewSettingsRepository(gormDB), slogger)
	categoryService := category.NewService(categoryPostgres.NewCategoryRepository(gormDB), slogger)
	notificationService := notification.NewService(notificationPostgres.NewNotificationRepository(gormDB), slogger)
	notification.NewEventHandler(notificationService, slogger).RegisterEventHandlers(bus)

	invoiceService := invoice.NewService(
		invoicePostgres.NewInvoiceRepository(gormDB),
		invoicePostgres.NewInvoiceQueries(db),
		settingsService,
		categoryService,
		bus,
		slogger,
	)
	userService := user.NewService(userPostgres.NewUserRepository(gormDB, db), slogger)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, rest.Handlers{
		Auth:         auth.NewHandler(authService),
		User:         user.NewHandler(base, userService),
		Invoice:      invoice.NewHandler(base, invoiceService),
		Settings:     settings.NewHandler(base, settingsService),
		Notification: notification.NewHandler(base, notificationService),
		Category:     category.NewHandler(base, categoryService),
	}, rest.Options{
		OpenAPIPath:    config.API.SpecPath,
		AllowedOrigins: config.Server.AllowedOrigins,
	}, slogger)

	return &Dependencies{
		Config:   config,
		DB:       db,
		GormDB:   gormDB,
		EventBus: bus,
		Router:   router,
		Logger:   slogger,
	}, nil
}

// initDB opens the shared pgx pool; gorm and the sqlx read queries both sit on it.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
}
