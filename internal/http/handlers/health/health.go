// Package health реализует HTTP-обработчик проверки работоспособности.
package health

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/moodme/moodme-backend/internal/http/response"
)

// Handler обрабатывает HTTP-запросы проверки состояния сервиса.
type Handler struct {
	log       *slog.Logger
	version   string
	startedAt time.Time
}

// New создает новый Handler. Аптайм считается от момента создания.
func New(log *slog.Logger, version string) *Handler {
	return &Handler{
		log:       log,
		version:   version,
		startedAt: time.Now(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.startedAt).String(),
		"version":   h.version,
	}))
}
