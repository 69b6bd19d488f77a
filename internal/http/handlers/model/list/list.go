// Package list реализует HTTP-обработчик списка зарегистрированных моделей.
package list

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

// Handler обрабатывает HTTP-запросы списка моделей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка моделей.
type Service interface {
	List(ctx context.Context) ([]*models.AiModel, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.model.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	items, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list models", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list models"))
		return
	}

	views := make([]models.ModelView, 0, len(items))
	for _, m := range items {
		views = append(views, m.View())
	}

	log.Info("list models", slog.Int("count", len(views)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"list_count": len(views),
		"models":     views,
	}))
}
