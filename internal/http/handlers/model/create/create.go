// Package create реализует HTTP-обработчик регистрации новой модели.
//
// Handler принимает multipart-форму с метаданными модели и файлом
// артефакта, валидирует их и вызывает бизнес-логику, которая загружает
// артефакт в объектное хранилище и фиксирует запись реестра.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/moodme/moodme-backend/internal/errs"
	"github.com/moodme/moodme-backend/internal/http/response"
	"github.com/moodme/moodme-backend/internal/lib/sl"
	"github.com/moodme/moodme-backend/internal/models"
)

// maxArtifactSize ограничивает размер multipart-запроса.
const maxArtifactSize = 512 << 20 // 512 MiB

// Handler обрабатывает HTTP-запросы регистрации моделей.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики регистрации модели.
type Service interface {
	Create(ctx context.Context, req models.DummyCreateModel, artifact []byte) (*models.AiModel, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.model.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := r.ParseMultipartForm(maxArtifactSize); err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid multipart form"))
		return
	}

	req := models.DummyCreateModel{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
		URLOrPath:   r.PostFormValue("url_or_path"),
		Version:     r.PostFormValue("version"),
	}
	if detailsRaw := r.PostFormValue("details"); detailsRaw != "" {
		if err := json.Unmarshal([]byte(detailsRaw), &req.Details); err != nil {
			log.Error("failed to decode details", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid details json"))
			return
		}
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		log.Error("missing artifact file", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("artifact file is required"))
		return
	}
	defer func() {
		_ = file.Close()
	}()

	artifact, err := io.ReadAll(file)
	if err != nil {
		log.Error("failed to read artifact file", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to read artifact file"))
		return
	}

	model, err := h.service.Create(r.Context(), req, artifact)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrInvalidLocation):
			log.Error("invalid url_or_path", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid path or url"))
		case errors.Is(err, errs.ErrDuplicateVersion):
			log.Error("duplicate model version", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("model version already exists"))
		case errors.Is(err, errs.ErrArtifactUpload):
			log.Error("artifact upload failed", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("artifact upload failed"))
		default:
			log.Error("failed to create model", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to create model"))
		}
		return
	}

	log.Info("model created",
		slog.String("name", model.Name), slog.String("version", model.Version))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(model.View()))
}
