// Package token реализует HTTP-обработчик выдачи токена доступа.
//
// Учётные данные принимаются из form-данных (username = email, password),
// как того требует OAuth2 password flow. При успешной проверке возвращается
// подписанный bearer-токен; неверные учётные данные дают 400 без уточнения,
// что именно не совпало.
package token

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/moodme/moodme-backend/internal/http/response"
	"github.com/moodme/moodme-backend/internal/lib/sl"
	"github.com/moodme/moodme-backend/internal/models"
)

// Handler обрабатывает HTTP-запросы выдачи токена.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики аутентификации.
type Service interface {
	// Authenticate возвращает (nil, nil), если email неизвестен
	// или пароль не подошёл.
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	CreateAccessToken(user *models.User) (string, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.token"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := r.ParseForm(); err != nil {
		log.Error("failed to parse form", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid form data"))
		return
	}

	email := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		log.Error("missing credentials in form")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("username and password are required"))
		return
	}

	user, err := h.service.Authenticate(r.Context(), email, password)
	if err != nil {
		log.Error("authentication failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}
	if user == nil {
		log.Info("invalid credentials")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("incorrect email or password"))
		return
	}

	accessToken, err := h.service.CreateAccessToken(user)
	if err != nil {
		log.Error("failed to create access token", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to create access token"))
		return
	}

	log.Info("token issued")
	render.JSON(w, r, map[string]any{
		"access_token": accessToken,
		"token_type":   "bearer",
	})
}
