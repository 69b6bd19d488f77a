// Маршруты приложения: открытая часть (регистрация, выдача токена,
// здоровье), защищённая группа за JWT и служебные точки.
package app

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/moodme/moodme-backend/internal/http/handlers/auth/me"
	"github.com/moodme/moodme-backend/internal/http/handlers/auth/signup"
	"github.com/moodme/moodme-backend/internal/http/handlers/auth/token"
	"github.com/moodme/moodme-backend/internal/http/handlers/health"
	"github.com/moodme/moodme-backend/internal/http/handlers/model/create"
	"github.com/moodme/moodme-backend/internal/http/handlers/model/info"
	"github.com/moodme/moodme-backend/internal/http/handlers/model/list"
	"github.com/moodme/moodme-backend/internal/http/handlers/model/remove"
	"github.com/moodme/moodme-backend/internal/http/middlewarectx"
	authservice "github.com/moodme/moodme-backend/internal/services/auth"
	modelservice "github.com/moodme/moodme-backend/internal/services/model"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, version string,
	authService *authservice.AuthService, modelService *modelservice.ModelService) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	// Открытые конечные точки
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", signup.New(logger, authService).ServeHTTP)
		r.Post("/token", token.New(logger, authService).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Get("/me", me.New(logger).ServeHTTP)
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health.New(logger, version).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Route("/v1/ai", func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Get("/models", list.New(logger, modelService).ServeHTTP)
			r.Post("/models", create.New(logger, modelService).ServeHTTP)
			r.Get("/models/{name}", info.New(logger, modelService).ServeHTTP)
			r.Delete("/models/{name}", remove.New(logger, modelService).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
