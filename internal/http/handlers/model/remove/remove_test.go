package remove

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
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
)

// Мок сервиса удаления моделей
type ModelServiceMock struct {
	mock.Mock
}

func (m *ModelServiceMock) Delete(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRemoveHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		modelName      string
		mockErr        error
		wantStatusCode int
		wantError      string
	}{
		{
			name:           "successful delete",
			modelName:      "classifier",
			wantStatusCode: http.StatusNoContent,
		},
		{
			name:           "unknown model",
			modelName:      "missing",
			mockErr:        fmt.Errorf("services.model.Delete: %w", errs.ErrModelNotFound),
			wantStatusCode: http.StatusNotFound,
			wantError:      "model not found",
		},
		{
			name:           "service error",
			modelName:      "classifier",
			mockErr:        errors.New("db error"),
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "failed to delete model",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ModelServiceMock)
			serviceMock.On("Delete", mock.Anything, tt.modelName).Return(tt.mockErr).Once()

			handler := New(newNoopLogger(), serviceMock)

			req := httptest.NewRequest(http.MethodDelete, "/api/v1/ai/models/"+tt.modelName, nil)

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("name", tt.modelName)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			ctx = context.WithValue(ctx, middleware.RequestIDKey, "reqid123")
			req = req.WithContext(ctx)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			if tt.wantError != "" {
				var got map[string]any
				err := json.NewDecoder(rec.Body).Decode(&got)
				assert.NoError(t, err)
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				assert.Empty(t, rec.Body.String())
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
