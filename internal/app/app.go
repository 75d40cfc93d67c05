package app

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/HoangThiencm/autoreport/internal/config"
	"github.com/HoangThiencm/autoreport/internal/delivery/httpd"
	"github.com/HoangThiencm/autoreport/internal/notifier"
	"github.com/HoangThiencm/autoreport/internal/repository"
	"github.com/HoangThiencm/autoreport/internal/service"
	"github.com/HoangThiencm/autoreport/internal/service/integration"
)

type App struct {
	server  *http.Server
	logger  zerolog.Logger
	config  *config.Config
	db      *sql.DB
	sweeper notifier.Sweeper
	events  integration.EventPublisher
}

func New(cfg *config.Config, log zerolog.Logger, db *sql.DB) (*App, error) {
	baseRepo := repository.NewPostgresRepository(db, log)
	schoolRepo := repository.NewSchoolRepository(db, log)
	periodRepo := repository.NewPeriodRepository(db, log)
	taskRepo := repository.NewTaskRepository(db, log)
	assignmentRepo := repository.NewAssignmentRepository(db, log)
	submissionRepo := repository.NewSubmissionRepository(db, log)
	reminderRepo := repository.NewReminderRepository(db, log)
	maintenanceRepo := repository.NewMaintenanceRepository(db, log)

	blobStore, err := integration.NewMinioBlobStore(integration.BlobConfig{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		UseSSL:    cfg.Storage.UseSSL,
		Timeout:   cfg.Storage.Timeout,
	}, log)
	if err != nil {
		return nil, err
	}

	// The broker is optional: submission tracking keeps working when the
	// exchange is unreachable, events are simply not published.
	events, err := integration.NewEventPublisher(
		cfg.RabbitMQ.URL,
		cfg.RabbitMQ.Exchange,
		cfg.RabbitMQ.SubmissionRouting,
		cfg.RabbitMQ.OverdueRouting,
		log,
	)
	if err != nil {
		log.Warn().Err(err).Msg("RabbitMQ unavailable, continuing without event publishing")
		events = nil
	}

	var mailNotifier integration.Notifier
	if cfg.Mail.APIKey != "" {
		mailNotifier = integration.NewSendgridNotifier(integration.MailConfig{
			APIKey:    cfg.Mail.APIKey,
			FromName:  cfg.Mail.FromName,
			FromEmail: cfg.Mail.FromEmail,
		}, log)
	} else {
		log.Warn().Msg("No mail API key configured, overdue reports go to the log only")
		mailNotifier = integration.NewConsoleNotifier(log)
	}

	location, err := time.LoadLocation(cfg.Compliance.Timezone)
	if err != nil {
		log.Warn().Err(err).Str("timezone", cfg.Compliance.Timezone).Msg("Unknown timezone, falling back to UTC")
		location = time.UTC
	}

	schoolService := service.NewSchoolService(schoolRepo, log)
	periodService := service.NewPeriodService(periodRepo, blobStore, log)
	taskService := service.NewTaskService(taskRepo, periodRepo, schoolRepo, assignmentRepo, submissionRepo, reminderRepo, log)
	submissionService := service.NewSubmissionService(submissionRepo, taskRepo, schoolRepo, events, log)
	statusService := service.NewStatusService(taskRepo, schoolRepo, assignmentRepo, submissionRepo, log)
	reminderService := service.NewReminderService(statusService, reminderRepo, log)
	complianceService := service.NewComplianceService(taskRepo, schoolRepo, assignmentRepo, submissionRepo, location, log)
	statsService := service.NewStatsService(taskRepo, schoolRepo, periodRepo, log)
	maintenanceService := service.NewMaintenanceService(maintenanceRepo, cfg.Admin.ResetPassword, log)

	sweeper := notifier.NewSweeper(
		taskService,
		statusService,
		mailNotifier,
		events,
		cfg.Sweep.AdminEmail,
		cfg.Sweep.Interval,
		log,
	)

	handler := httpd.NewHandler(
		schoolService,
		periodService,
		taskService,
		submissionService,
		statusService,
		reminderService,
		complianceService,
		statsService,
		maintenanceService,
		blobStore,
		baseRepo,
		log,
	)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	handler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		server:  server,
		logger:  log,
		config:  cfg,
		db:      db,
		sweeper: sweeper,
		events:  events,
	}, nil
}

func (a *App) Run() error {
	if a.config.Sweep.Enabled {
		if err := a.sweeper.Start(context.Background()); err != nil {
			a.logger.Error().Err(err).Msg("Failed to start deadline sweeper")
			return err
		}
	}

	a.logger.Info().Msgf("Starting autoreport service on %s", a.config.Server.Address)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Shutting down autoreport service...")

	if a.config.Sweep.Enabled {
		if err := a.sweeper.Stop(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to stop deadline sweeper")
		}
	}

	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close event publisher")
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error().Err(err).Msg("Failed to shutdown HTTP server")
		return err
	}

	a.logger.Info().Msg("Autoreport service stopped")
	return nil
}
