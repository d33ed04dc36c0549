package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/b4platform/b4-backend/api/routes"
	"github.com/b4platform/b4-backend/internal/auth"
	"github.com/b4platform/b4-backend/internal/dashboard"
	"github.com/b4platform/b4-backend/internal/documents"
	"github.com/b4platform/b4-backend/internal/ideas"
	"github.com/b4platform/b4-backend/internal/journeys"
	"github.com/b4platform/b4-backend/internal/notifications"
	"github.com/b4platform/b4-backend/internal/onboarding"
	"github.com/b4platform/b4-backend/internal/resume"
	"github.com/b4platform/b4-backend/internal/reviews"
	"github.com/b4platform/b4-backend/internal/trainings"
	"github.com/b4platform/b4-backend/internal/users"
	"github.com/b4platform/b4-backend/pkg/auth/session"
	"github.com/b4platform/b4-backend/pkg/config"
	"github.com/b4platform/b4-backend/pkg/db"
	"github.com/b4platform/b4-backend/pkg/logger"
	"github.com/b4platform/b4-backend/pkg/migrate"
	"github.com/b4platform/b4-backend/pkg/outbox"
	"github.com/b4platform/b4-backend/pkg/redis"
	"github.com/b4platform/b4-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap gcs", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	svcs, err := buildServices(cfg, logg, dbClient, redisClient, gcsClient, sessionManager)
	if err != nil {
		logg.Error(context.Background(), "failed to build services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		// BigQuery is only reached through the analytics worker, so the api
		// readiness probe skips it.
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, gcsClient, nil, sessionManager, svcs),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func buildServices(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	gcsClient *gcs.Client,
	sessionManager *session.Manager,
) (routes.Services, error) {
	gormDB := dbClient.DB()
	publisher := outbox.NewService(outbox.NewRepository(gormDB), logg)

	usersRepo := users.NewRepository(gormDB)
	onboardingRepo := onboarding.NewRepository(gormDB)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		RoleRepo:       usersRepo,
		OnboardingRepo: onboardingRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		return routes.Services{}, err
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		TxRunner:       dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return routes.Services{}, err
	}

	adminRegisterService, err := auth.NewAdminRegisterService(auth.AdminRegisterServiceParams{
		TxRunner:       dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return routes.Services{}, err
	}

	usersService, err := users.NewService(usersRepo, dbClient, publisher, sessionManager, redisClient, logg)
	if err != nil {
		return routes.Services{}, err
	}

	onboardingService, err := onboarding.NewService(onboardingRepo, dbClient, publisher, nil, logg)
	if err != nil {
		return routes.Services{}, err
	}

	journeysService, err := journeys.NewService(journeys.NewRepository(gormDB), dbClient, publisher, logg)
	if err != nil {
		return routes.Services{}, err
	}

	ideasService, err := ideas.NewService(ideas.NewRepository(gormDB), dbClient, publisher, nil, logg)
	if err != nil {
		return routes.Services{}, err
	}

	trainingsService, err := trainings.NewService(trainings.NewRepository(gormDB), dbClient, publisher, logg)
	if err != nil {
		return routes.Services{}, err
	}

	reviewsService, err := reviews.NewService(reviews.NewRepository(gormDB), dbClient, publisher, logg)
	if err != nil {
		return routes.Services{}, err
	}

	dashboardService, err := dashboard.NewService(dashboard.NewRepository(gormDB), logg)
	if err != nil {
		return routes.Services{}, err
	}

	notificationsService, err := notifications.NewService(notifications.NewRepository(gormDB))
	if err != nil {
		return routes.Services{}, err
	}

	documentsService, err := documents.NewService(
		documents.NewRepository(gormDB),
		gcsClient,
		cfg.GCS.BucketName,
		cfg.GCS.UploadURLExpiry,
		cfg.GCS.DownloadURLExpiry,
		logg,
	)
	if err != nil {
		return routes.Services{}, err
	}

	resumeService, err := resume.NewService(resume.NewRepository(gormDB), logg)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:          authService,
		Register:      registerService,
		AdminRegister: adminRegisterService,
		Users:         usersService,
		Onboarding:    onboardingService,
		Journeys:      journeysService,
		Ideas:         ideasService,
		Trainings:     trainingsService,
		Reviews:       reviewsService,
		Dashboard:     dashboardService,
		Notifications: notificationsService,
		Documents:     documentsService,
		Resume:        resumeService,
	}, nil
}
