package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"taskverse/internal/cache"
	"taskverse/internal/config"
	"taskverse/internal/database"
	"taskverse/internal/handlers"
	"taskverse/internal/pdf"
	"taskverse/internal/repositories"
	"taskverse/internal/routes"
	"taskverse/internal/services"
)

// App owns the server's long-lived resources.
type App struct {
	cfg        *config.Config
	db         *database.DB
	redis      *redis.Client
	router     *gin.Engine
	dispatcher *services.ReminderDispatcher
}

// New connects storage, runs migrations and wires services and routes.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}

	// === DB ===
	db, err := database.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	a.db = db
	if !cfg.Database.SkipMigrations {
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}

	// === Cache (optional) ===
	var listCache services.TaskListCache
	if cfg.Redis.Addr != "" {
		rdb, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Printf("[app][warn] redis %s unavailable, list cache disabled: %v", cfg.Redis.Addr, err)
		} else {
			a.redis = rdb
			listCache = cache.NewTaskCache(rdb, "taskverse:", cfg.Redis.TTL)
		}
	}

	// === Repos ===
	taskRepo := repositories.NewTaskRepository(db)
	userRepo := repositories.NewUserRepository(db)

	// === Services ===
	authService := services.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	taskService := services.NewTaskService(taskRepo, listCache, cfg.Auth.OwnershipEnforced())
	reportService := services.NewReportService(taskService, pdf.NewTaskReportGenerator(cfg.Reports.FontPath))

	var notifiers []services.ReminderNotifier
	var welcome services.WelcomeSender
	var resetMailer services.ResetMailer
	if cfg.Email.Enabled() {
		emails := services.NewEmailService(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FromEmail,
		)
		welcome = emails
		resetMailer = emails
		notifiers = append(notifiers, services.EmailNotifier{Emails: emails})
	}
	if cfg.Telegram.BotToken != "" {
		tg, err := services.NewTelegramService(cfg.Telegram.BotToken, cfg.Telegram.Debug)
		if err != nil {
			log.Printf("[app][warn] telegram disabled: %v", err)
		} else {
			notifiers = append(notifiers, tg)
		}
	}
	userService := services.NewUserService(userRepo, authService, welcome)
	resetService := services.NewPasswordResetService(userRepo, repositories.NewPasswordResetRepository(db), resetMailer, authService)

	var oauth services.OAuthService
	if cfg.Google.Enabled() {
		oauth = services.NewGoogleOAuthService(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)
	}

	if !cfg.Reminders.Disabled {
		a.dispatcher = services.NewReminderDispatcher(taskRepo, userRepo, cfg.Reminders.PollInterval, cfg.Reminders.BatchSize, notifiers...)
	}

	// === Handlers ===
	taskHandler := handlers.NewTaskHandler(taskService, reportService, cfg.API.StrictNotFound)
	authHandler := handlers.NewAuthHandler(userService, resetService, oauth)

	// === Gin ===
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.CORSOrigins,
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Type", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}))
	routes.SetupRoutes(router, authService, db, taskHandler, authHandler)
	a.router = router

	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

// Run serves HTTP and dispatches reminders until ctx is cancelled, then
// shuts the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:      a.router,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("[app] HTTP server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Printf("[app] shutting down")
		return server.Shutdown(shutdownCtx)
	})
	if a.dispatcher != nil {
		g.Go(func() error { return a.dispatcher.Run(gctx) })
	}
	return g.Wait()
}

// Close releases storage connections.
func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
