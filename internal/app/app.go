package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"admissions-service/internal/application"
	"admissions-service/internal/auth"
	"admissions-service/internal/config"
	"admissions-service/internal/contact"
	"admissions-service/internal/db"
	"admissions-service/internal/health"
	"admissions-service/internal/logger"
	"admissions-service/internal/metrics"
	"admissions-service/internal/middleware"
	"admissions-service/internal/notify"
	"admissions-service/internal/session"
	"admissions-service/internal/user"

	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
)

type App struct {
	config   *config.Config
	router   chi.Router
	server   *http.Server
	logger   *slog.Logger
	database *bun.DB
	sessions session.Store
	producer notify.Publisher
}

func New() *App {
	slogLogger := logger.NewWithServiceContext(ServiceName, Version)

	// Set as default logger so slog.Info() uses the same handler
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	slogLogger.Info("config loaded", "env", cfg.Env)

	app := &App{
		config: cfg,
		router: chi.NewRouter(),
		logger: slogLogger,
	}

	app.database = db.New(cfg.Database)

	ctx := context.Background()
	if err := db.RunMigrations(ctx, app.database,
		(*application.Application)(nil),
		(*contact.Contact)(nil),
		(*user.User)(nil),
	); err != nil {
		log.Fatal("failed to run migrations:", err)
	}

	m, err := metrics.New(otel.Meter(ServiceName))
	if err != nil {
		slogLogger.Warn("failed to initialize metrics", "error", err)
		m = metrics.NewMock()
	}

	// Session store: redis when configured, in-process otherwise
	if cfg.Redis.Addr != "" {
		store, err := session.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("failed to connect session store:", err)
		}
		app.sessions = store
		slogLogger.Info("redis session store initialized", "addr", cfg.Redis.Addr)
	} else {
		app.sessions = session.NewMemoryStore()
		slogLogger.Warn("redis not configured, using in-memory session store")
	}

	// NATS producer is best-effort; the service degrades without it
	if cfg.NATS.URL != "" {
		producer, err := notify.NewProducer(cfg.NATS.URL, cfg.NATS.Subject, slogLogger)
		if err != nil {
			slogLogger.Warn("failed to initialize NATS producer", "error", err)
		} else {
			app.producer = producer
		}
	}

	mailer := notify.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)

	sessionTTL := time.Duration(cfg.Session.TTLHours) * time.Hour
	cookies := auth.CookieSettings{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.CookieSecure,
		TTL:    sessionTTL,
	}

	app.router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	healthHandler := health.NewHandler()
	healthHandler.RegisterRoutes(app.router)

	applicationRepo := application.NewRepository(app.database)
	applicationService := application.NewService(applicationRepo, mailer, app.producer, cfg.SMTP.AdminEmail, slogLogger)
	applicationHandler := application.NewHandler(applicationService, slogLogger, m)
	applicationHandler.RegisterRoutes(app.router)

	contactRepo := contact.NewRepository(app.database)
	contactService := contact.NewService(contactRepo)
	contactHandler := contact.NewHandler(contactService, slogLogger, m)
	contactHandler.RegisterRoutes(app.router)

	userRepo := user.NewRepository(app.database)
	userService := user.NewService(userRepo, applicationRepo, contactRepo, app.sessions, sessionTTL)
	userHandler := user.NewHandler(userService, cookies, slogLogger, m)
	userHandler.RegisterPublicRoutes(app.router)

	// Admin-only routes sit behind the session middleware plus the guard.
	app.router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(app.sessions, cookies.Name, slogLogger))
		r.Use(auth.RequireAdmin(slogLogger))
		userHandler.RegisterAdminRoutes(r)
	})

	slogLogger.Info("application initialized successfully")

	return app
}

func (a *App) Run() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Warn("failed to close producer", "error", err)
		}
	}
	if a.sessions != nil {
		if err := a.sessions.Close(); err != nil {
			a.logger.Warn("failed to close session store", "error", err)
		}
	}
	db.Close(a.database)

	return a.server.Shutdown(ctx)
}
