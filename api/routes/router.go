package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/b4platform/b4-backend/api/controllers"
	"github.com/b4platform/b4-backend/api/middleware"
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
	"github.com/b4platform/b4-backend/pkg/bigquery"
	"github.com/b4platform/b4-backend/pkg/config"
	"github.com/b4platform/b4-backend/pkg/db"
	"github.com/b4platform/b4-backend/pkg/enums"
	"github.com/b4platform/b4-backend/pkg/logger"
	"github.com/b4platform/b4-backend/pkg/redis"
	"github.com/b4platform/b4-backend/pkg/storage/gcs"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Services groups the domain services mounted by the router.
type Services struct {
	Auth          auth.Service
	Register      auth.RegisterService
	AdminRegister auth.AdminRegisterService
	Users         users.Service
	Onboarding    onboarding.Service
	Journeys      journeys.Service
	Ideas         ideas.Service
	Trainings     trainings.Service
	Reviews       reviews.Service
	Dashboard     dashboard.Service
	Notifications notifications.Service
	Documents     documents.Service
	Resume        resume.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gcsClient gcs.Pinger,
	bigqueryClient bigquery.Pinger,
	sessions sessionManager,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient, gcsClient, bigqueryClient))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Post("/validate", controllers.PublicValidate(logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(svcs.Register, svcs.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(sessions, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(sessions, cfg.JWT, logg))
	})

	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		if !cfg.App.IsProd() {
			r.Post("/register", controllers.AdminAuthRegister(svcs.AdminRegister, svcs.Auth, cfg, logg))
		}
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AdminAuthLogin(svcs.Auth, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1/onboarding", func(r chi.Router) {
			r.Get("/", controllers.GetOnboarding(svcs.Onboarding, logg))
			r.Post("/path", controllers.ChooseOnboardingPath(svcs.Onboarding, logg))
			r.Post("/steps/{step}", controllers.SaveOnboardingStep(svcs.Onboarding, logg))
			r.Post("/submit", controllers.SubmitOnboarding(svcs.Onboarding, logg))
		})

		r.Route("/v1/journeys", func(r chi.Router) {
			r.Post("/", controllers.CreateJourney(svcs.Journeys, logg))
			r.Get("/", controllers.ListJourneys(svcs.Journeys, logg))
			r.Get("/{journeyId}", controllers.GetJourney(svcs.Journeys, logg))
			r.Put("/{journeyId}/phases/{phase}", controllers.SaveJourneyPhase(svcs.Journeys, logg))
			r.Post("/{journeyId}/phases/{phase}/complete", controllers.CompleteJourneyPhase(svcs.Journeys, logg))
			r.Post("/{journeyId}/submit", controllers.SubmitJourney(svcs.Journeys, logg))
		})

		r.Route("/v1/ideas", func(r chi.Router) {
			r.Post("/", controllers.CreateIdea(svcs.Ideas, logg))
			r.Get("/", controllers.BrowseIdeas(svcs.Ideas, logg))
			r.Get("/mine", controllers.ListMyIdeas(svcs.Ideas, logg))
			r.Get("/applications/mine", controllers.ListMyApplications(svcs.Ideas, logg))
			r.Post("/applications/{applicationId}/decision", controllers.DecideIdeaApplication(svcs.Ideas, logg))
			r.Get("/{ideaId}", controllers.GetIdea(svcs.Ideas, logg))
			r.Patch("/{ideaId}", controllers.UpdateIdea(svcs.Ideas, logg))
			r.Delete("/{ideaId}", controllers.ArchiveIdea(svcs.Ideas, logg))
			r.Post("/{ideaId}/applications", controllers.ApplyToIdea(svcs.Ideas, logg))
			r.Get("/{ideaId}/applications", controllers.ListIdeaApplications(svcs.Ideas, logg))
			r.Get("/{ideaId}/episodes/{episode}", controllers.GetIdeaEpisode(svcs.Ideas, logg))
			r.Put("/{ideaId}/episodes/{episode}/phases/{phase}", controllers.SaveIdeaEpisodePhase(svcs.Ideas, logg))
			r.Post("/{ideaId}/episodes/{episode}/phases/{phase}/complete", controllers.CompleteIdeaEpisodePhase(svcs.Ideas, logg))
		})

		r.Route("/v1/trainings", func(r chi.Router) {
			r.Post("/", controllers.SubmitTraining(svcs.Trainings, logg))
			r.Get("/", controllers.ListApprovedTrainings(svcs.Trainings, logg))
			r.Get("/mine", controllers.ListMyTrainings(svcs.Trainings, logg))
		})

		r.Route("/v1/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(svcs.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(svcs.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(svcs.Notifications, logg))
		})

		r.Route("/v1/documents", func(r chi.Router) {
			r.Get("/", controllers.ListDocuments(svcs.Documents, logg))
			r.Post("/presign", controllers.PresignDocument(svcs.Documents, logg))
			r.Post("/{documentId}/confirm", controllers.ConfirmDocument(svcs.Documents, logg))
			r.Get("/{documentId}/url", controllers.DocumentReadURL(svcs.Documents, logg))
			r.Delete("/{documentId}", controllers.DeleteDocument(svcs.Documents, logg))
		})

		r.Route("/v1/profile", func(r chi.Router) {
			r.Get("/", controllers.GetProfile(svcs.Users, logg))
			r.Put("/", controllers.UpdateProfile(svcs.Users, logg))
			r.Get("/resume.pdf", controllers.ExportResume(svcs.Resume, logg))
			r.Get("/track-record.pdf", controllers.ExportTrackRecord(svcs.Resume, logg))
		})

		r.Delete("/v1/account", controllers.DeleteAccount(svcs.Users, logg))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.RequireRole(string(enums.PlatformRoleAdmin), logg))
		r.Use(middleware.RequirePlatformRoles(svcs.Users, logg, enums.PlatformRoleAdmin))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/ping", controllers.AdminPing())

		r.Route("/v1/dashboard", func(r chi.Router) {
			r.Get("/", controllers.AdminDashboard(svcs.Dashboard, logg))
		})

		r.Route("/v1/reviews", func(r chi.Router) {
			r.Get("/pending", controllers.AdminPendingReviews(svcs.Reviews, logg))
			r.Post("/onboarding/{userId}/decision", controllers.AdminDecideOnboarding(svcs.Reviews, logg))
			r.Post("/journeys/{journeyId}/decision", controllers.AdminDecideJourney(svcs.Reviews, logg))
			r.Post("/ideas/{ideaId}/decision", controllers.AdminDecideIdea(svcs.Reviews, logg))
			r.Post("/trainings/{trainingId}/decision", controllers.AdminDecideTraining(svcs.Reviews, logg))
		})

		r.Route("/v1/notifications", func(r chi.Router) {
			r.Get("/", controllers.AdminListNotifications(svcs.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.AdminMarkNotificationRead(svcs.Notifications, logg))
			r.Post("/read-all", controllers.AdminMarkAllNotificationsRead(svcs.Notifications, logg))
		})
	})

	return r
}
