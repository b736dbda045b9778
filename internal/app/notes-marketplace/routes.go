package notesmarketplace

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/notes-marketplace/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/notes-marketplace/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/notes-marketplace/internal/http/handlers/health"
	"github.com/magabrotheeeer/notes-marketplace/internal/http/handlers/note/access"
	"github.com/magabrotheeeer/notes-marketplace/internal/http/handlers/note/approve"
	"github.com/magabrotheeeer/notes-marketplace/internal/http/handlers/note/create"
	"github.com/magabrotheeeer/notes-marketplace/internal/http/handlers/note/download"
	"github.com/magabrotheeeer/notes-marketplace/internal/http/handlers/note/history"
	"github.com/magabrotheeeer/notes-marketplace/internal/http/handlers/note/list"
	"github.com/magabrotheeeer/notes-marketplace/internal/http/handlers/note/read"
	"github.com/magabrotheeeer/notes-marketplace/internal/http/handlers/note/reject"
	"github.com/magabrotheeeer/notes-marketplace/internal/http/handlers/note/submit"
	"github.com/magabrotheeeer/notes-marketplace/internal/http/handlers/subscription/subscribe"
	"github.com/magabrotheeeer/notes-marketplace/internal/http/handlers/subscription/trial"
	"github.com/magabrotheeeer/notes-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/notes-marketplace/internal/paymentprovider"
	accessservice "github.com/magabrotheeeer/notes-marketplace/internal/services/access"
	authservice "github.com/magabrotheeeer/notes-marketplace/internal/services/auth"
	catalogservice "github.com/magabrotheeeer/notes-marketplace/internal/services/catalog"
	ledgerservice "github.com/magabrotheeeer/notes-marketplace/internal/services/ledger"
	lifecycleservice "github.com/magabrotheeeer/notes-marketplace/internal/services/lifecycle"
	reviewservice "github.com/magabrotheeeer/notes-marketplace/internal/services/review"
	"github.com/magabrotheeeer/notes-marketplace/internal/storage/repository"
)

// Services объединяет бизнес-сервисы, необходимые маршрутам.
type Services struct {
	Auth      *authservice.AuthService
	Lifecycle *lifecycleservice.LifecycleService
	Review    *reviewservice.ReviewService
	Ledger    *ledgerservice.LedgerService
	Access    *accessservice.AccessService
	Catalog   *catalogservice.CatalogService
	Payments  *paymentprovider.Client
	DB        *repository.Storage
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, svc.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, svc.Auth).ServeHTTP)
		r.Get("/health", health.New(logger, svc.DB).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(svc.Auth, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Post("/notes", create.New(logger, svc.Lifecycle).ServeHTTP)
			r.Get("/notes", list.New(logger, svc.Catalog).ServeHTTP)
			r.Get("/notes/{id}", read.New(logger, svc.Catalog).ServeHTTP)
			r.Post("/notes/{id}/submit", submit.New(logger, svc.Lifecycle).ServeHTTP)
			r.Post("/notes/{id}/approve", approve.New(logger, svc.Review).ServeHTTP)
			r.Post("/notes/{id}/reject", reject.New(logger, svc.Review).ServeHTTP)
			r.Get("/notes/{id}/rejections", history.New(logger, svc.Lifecycle).ServeHTTP)
			r.Get("/notes/{id}/access", access.New(logger, svc.Access).ServeHTTP)
			r.Post("/notes/{id}/download", download.New(logger, svc.Access).ServeHTTP)

			r.Post("/subscriptions/trial", trial.New(logger, svc.Ledger).ServeHTTP)
			r.Post("/subscriptions", subscribe.New(logger, svc.Ledger, svc.Payments).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
