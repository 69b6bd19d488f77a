// Package info реализует HTTP-обработчик получения модели по имени.
package info

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/moodme/moodme-backend/internal/errs"
	"github.com/moodme/moodme-backend/internal/http/response"
	"github.com/moodme/moodme-backend/internal/lib/sl"
	"github.com/moodme/moodme-backend/internal/models"
)

// Handler обрабатывает HTTP-запросы информации о модели.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения модели.
type Service interface {
	GetInfo(ctx context.Context, name string) (*models.AiModel, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.model.info"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	name := chi.URLParam(r, "name")
	if name == "" {
		log.Error("missing model name")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing model name"))
		return
	}

	model, err := h.service.GetInfo(r.Context(), name)
	if err != nil {
		if errors.Is(err, errs.ErrModelNotFound) {
			log.Info("model not found", slog.String("name", name))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("model not found"))
			return
		}
		log.Error("failed to get model info", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to get model info"))
		return
	}

	render.JSON(w, r, response.OKWithData(model.View()))
}
