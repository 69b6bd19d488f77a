// Package middlewarectx содержит HTTP middleware для проверки bearer-токенов
// и ограничения частоты запросов.
//
// JWTMiddleware проверяет наличие и валидность JWT в заголовке Authorization,
// разрешает его в существующего пользователя через сервис аутентификации
// и кладёт публичное представление пользователя в контекст запроса.
//
// В случае ошибки проверки возвращает HTTP 401 Unauthorized.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/moodme/moodme-backend/internal/errs"
	"github.com/moodme/moodme-backend/internal/http/response"
	"github.com/moodme/moodme-backend/internal/lib/sl"
	"github.com/moodme/moodme-backend/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// CurrentUser — ключ для публичного представления пользователя в контексте.
	CurrentUser Key = "current_user"
)

// Service описывает интерфейс сервиса для разрешения токена в пользователя.
type Service interface {
	GetCurrentUser(ctx context.Context, token string) (*models.User, error)
}

// UserFromContext возвращает текущего пользователя из контекста запроса.
func UserFromContext(ctx context.Context) (models.UserView, bool) {
	view, ok := ctx.Value(CurrentUser).(models.UserView)
	return view, ok
}

// JWTMiddleware возвращает HTTP middleware, который проверяет JWT
// в заголовке Authorization.
//
// Если токен валиден, добавляет пользователя в контекст запроса,
// иначе возвращает ошибку с HTTP статусом 401 Unauthorized.
func JWTMiddleware(authService Service, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			authHeader := r.Header.Get("Authorization")

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			user, err := authService.GetCurrentUser(r.Context(), tokenStr)
			if err != nil {
				// Недоступность хранилища не делает живой токен невалидным.
				if !errors.Is(err, errs.ErrInvalidCredentials) {
					log.Error("failed to resolve current user", sl.Err(err))
					w.WriteHeader(http.StatusInternalServerError)
					render.JSON(w, r, response.Error("internal service error"))
					return
				}
				log.Error("invalid or expired token", sl.Err(err))
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}
			ctx := context.WithValue(r.Context(), CurrentUser, user.View())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
