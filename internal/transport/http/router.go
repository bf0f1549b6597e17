package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/easymotion-api/internal/application/account"
	"github.com/easymotion-api/internal/application/auth"
	"github.com/easymotion-api/internal/application/category"
	"github.com/easymotion-api/internal/application/course"
	"github.com/easymotion-api/internal/application/image"
	"github.com/easymotion-api/internal/application/notification"
	"github.com/easymotion-api/internal/application/session"
	"github.com/easymotion-api/internal/application/subscription"
	"github.com/easymotion-api/internal/application/user"
	"github.com/easymotion-api/internal/config"
	"github.com/easymotion-api/internal/domain"
	"github.com/easymotion-api/internal/transport/http/handler"
	appmiddleware "github.com/easymotion-api/internal/transport/http/middleware"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10, applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	accounts := account.NewManager(deps.UserRepo)

	sessionSvc := session.NewService(session.ServiceDeps{
		Accounts:        accounts,
		SessionRepo:     deps.SessionRepo,
		Mailer:          deps.Mailer,
		SMSSender:       deps.SMSSender,
		JWTProvider:     deps.JWTProvider,
		RefreshTokenDur: cfg.RefreshTokenDur,
	})
	userSvc := user.NewService(user.ServiceDeps{
		Accounts:    accounts,
		UserRepo:    deps.UserRepo,
		SessionRepo: deps.SessionRepo,
	})
	authSvc := auth.NewService(accounts, deps.Mailer)
	courseSvc := course.NewService(course.ServiceDeps{
		CourseRepo:       deps.CourseRepo,
		CategoryRepo:     deps.CategoryRepo,
		SubscriptionRepo: deps.SubscriptionRepo,
	})
	subscriptionSvc := subscription.NewService(subscription.ServiceDeps{
		SubscriptionRepo: deps.SubscriptionRepo,
		CourseRepo:       deps.CourseRepo,
		Accounts:         accounts,
		NotificationRepo: deps.NotificationRepo,
	})
	categorySvc := category.NewService(deps.CategoryRepo)
	notifSvc := notification.NewService(deps.NotificationRepo)
	imageSvc := image.NewService(deps.S3Store, deps.ImageRepo, deps.CourseRepo)

	sessionH := handler.NewSessionHandler(sessionSvc)
	userH := handler.NewUserHandler(userSvc)
	pwH := handler.NewPasswordRecoveryHandler(authSvc)
	emailH := handler.NewEmailConfirmHandler(authSvc)
	courseH := handler.NewCourseHandler(courseSvc)
	subH := handler.NewSubscriptionHandler(subscriptionSvc)
	categoryH := handler.NewCategoryHandler(categorySvc)
	notifH := handler.NewNotificationHandler(notifSvc)
	imageH := handler.NewImageHandler(imageSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health", handler.Health)
		r.With(sensitiveRL.Limit).Post("/sessions", sessionH.Login)
		r.With(sensitiveRL.Limit).Post("/sessions/validate-otp", sessionH.ValidateOTP)
		r.Post("/sessions/refresh", sessionH.Refresh)
		r.With(sensitiveRL.Limit).Post("/users", userH.Register)
		r.With(sensitiveRL.Limit).Post("/password-recovery", pwH.Request)
		r.With(sensitiveRL.Limit).Post("/password-recovery/confirm", pwH.Confirm)

		r.Get("/courses", courseH.List)
		r.Get("/courses/{id}", courseH.Get)
		r.Get("/courses/{id}/images", imageH.ListByCourse)
		r.Get("/categories", categoryH.List)
		r.Get("/categories/{id}", categoryH.Get)
		r.Get("/images/{id}", imageH.Download)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/sessions/current", sessionH.GetCurrent)
			r.Delete("/sessions/current", sessionH.Logout)

			r.Get("/users/{id}", userH.Get)
			r.Put("/users/{id}", userH.Update)
			r.Delete("/users/{id}", userH.Delete)
			r.Post("/users/change-password", userH.ChangePassword)
			r.Put("/users/two-factor", userH.SetTwoFactor)

			r.Post("/confirm-email", emailH.Request)
			r.Post("/confirm-email/confirm", emailH.Confirm)

			r.Post("/courses/{id}/subscriptions", subH.Subscribe)
			r.Delete("/courses/{id}/subscriptions", subH.Unsubscribe)
			r.Get("/subscriptions", subH.ListMine)

			r.Get("/notifications", notifH.ListUnread)
			r.Get("/notifications/{id}", notifH.Get)
			r.Put("/notifications/{id}", notifH.MarkAsRead)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/users", userH.List)
				r.Put("/users/{id}/email", emailH.SetEmail)
				r.Put("/users/{id}/password", pwH.SetPassword)

				r.Post("/courses", courseH.Create)
				r.Put("/courses/{id}", courseH.Update)
				r.Delete("/courses/{id}", courseH.Delete)
				r.Get("/courses/{id}/subscriptions", subH.ListByCourse)
				r.Post("/courses/{id}/images", imageH.Upload)
				r.Delete("/images/{id}", imageH.Delete)

				r.Post("/categories", categoryH.Create)
				r.Put("/categories/{id}", categoryH.Update)
				r.Delete("/categories/{id}", categoryH.Delete)
			})
		})
	})

	return r
}
