package info

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/moodme/moodme-backend/internal/errs"
	"github.com/moodme/moodme-backend/internal/models"
)

// Мок сервиса чтения модели
type ModelServiceMock struct {
	mock.Mock
}

func (m *ModelServiceMock) GetInfo(ctx context.Context, name string) (*models.AiModel, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AiModel), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestInfoHandler_ServeHTTP(t *testing.T) {
	stored := &models.AiModel{
		UID:       "uid-1",
		Name:      "classifier",
		Version:   "1.0.0",
		URLOrPath: "https://x.com/a.zip",
	}

	tests := []struct {
		name           string
		modelName      string
		mockModel      *models.AiModel
		mockErr        error
		wantStatusCode int
		wantError      string
	}{
		{
			name:           "existing model",
			modelName:      "classifier",
			mockModel:      stored,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "unknown model",
			modelName:      "missing",
			mockErr:        errs.ErrModelNotFound,
			wantStatusCode: http.StatusNotFound,
			wantError:      "model not found",
		},
		{
			name:           "service error",
			modelName:      "classifier",
			mockErr:        errors.New("db error"),
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "failed to get model info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ModelServiceMock)
			serviceMock.On("GetInfo", mock.Anything, tt.modelName).
				Return(tt.mockModel, tt.mockErr).Once()

			handler := New(newNoopLogger(), serviceMock)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/ai/models/"+tt.modelName, nil)

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("name", tt.modelName)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			ctx = context.WithValue(ctx, middleware.RequestIDKey, "reqid123")
			req = req.WithContext(ctx)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err := json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, "uid-1", data["uid"])
				assert.Equal(t, "classifier", data["name"])
				assert.Equal(t, "1.0.0", data["version"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
