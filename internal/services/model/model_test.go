package services_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/moodme/moodme-backend/internal/errs"
	"github.com/moodme/moodme-backend/internal/models"
	services "github.com/moodme/moodme-backend/internal/services/model"
)

// Мок для ModelRepository
type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) CreateModel(ctx context.Context, model models.AiModel) (string, error) {
	args := m.Called(ctx, model)
	return args.String(0), args.Error(1)
}

func (m *RepoMock) GetModelByNameVersion(ctx context.Context, name, version string) (*models.AiModel, error) {
	args := m.Called(ctx, name, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AiModel), args.Error(1)
}

func (m *RepoMock) GetModelByName(ctx context.Context, name string) (*models.AiModel, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AiModel), args.Error(1)
}

func (m *RepoMock) ListModels(ctx context.Context) ([]*models.AiModel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AiModel), args.Error(1)
}

func (m *RepoMock) DeleteModelByName(ctx context.Context, name string) ([]string, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// Мок для ArtifactStore
type ArtifactStoreMock struct {
	mock.Mock
}

func (m *ArtifactStoreMock) Upload(ctx context.Context, key string, artifact []byte) error {
	return m.Called(ctx, key, artifact).Error(0)
}

func (m *ArtifactStoreMock) Remove(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

// Мок для Cache
type CacheMock struct {
	mock.Mock
}

func (m *CacheMock) Get(ctx context.Context, key string, result any) (bool, error) {
	args := m.Called(ctx, key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}

func (m *CacheMock) Invalidate(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newService(repo *RepoMock, store *ArtifactStoreMock, cache *CacheMock) *services.ModelService {
	return services.NewModelService(repo, store, cache, newNoopLogger(), 30*time.Second)
}

func TestModelService_List(t *testing.T) {
	stored := []*models.AiModel{
		{UID: "uid-1", Name: "classifier", Version: "0.0.1"},
		{UID: "uid-2", Name: "ranker", Version: "1.2.0"},
	}

	t.Run("cache miss falls back to repository", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		cache.On("Get", mock.Anything, "models:list", mock.Anything).Return(false, nil).Once()
		repo.On("ListModels", mock.Anything).Return(stored, nil).Once()
		cache.On("Set", mock.Anything, "models:list", stored, time.Hour).Return(nil).Once()

		svc := newService(repo, new(ArtifactStoreMock), cache)

		got, err := svc.List(context.Background())
		require.NoError(t, err)
		assert.Len(t, got, 2)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("cache error is not fatal", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		cache.On("Get", mock.Anything, "models:list", mock.Anything).
			Return(false, errors.New("redis down")).Once()
		repo.On("ListModels", mock.Anything).Return(stored, nil).Once()
		cache.On("Set", mock.Anything, "models:list", stored, time.Hour).
			Return(errors.New("redis down")).Once()

		svc := newService(repo, new(ArtifactStoreMock), cache)

		got, err := svc.List(context.Background())
		require.NoError(t, err)
		assert.Len(t, got, 2)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})
}

func TestModelService_GetInfo(t *testing.T) {
	stored := &models.AiModel{UID: "uid-1", Name: "classifier", Version: "0.0.2"}

	tests := []struct {
		name       string
		setupMocks func(r *RepoMock, c *CacheMock)
		wantErr    error
	}{
		{
			name: "cache miss falls back to repository",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				c.On("Get", mock.Anything, "model:classifier", mock.Anything).Return(false, nil).Once()
				r.On("GetModelByName", mock.Anything, "classifier").Return(stored, nil).Once()
				c.On("Set", mock.Anything, "model:classifier", stored, time.Hour).Return(nil).Once()
			},
		},
		{
			name: "cache error is not fatal",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				c.On("Get", mock.Anything, "model:classifier", mock.Anything).
					Return(false, errors.New("redis down")).Once()
				r.On("GetModelByName", mock.Anything, "classifier").Return(stored, nil).Once()
				c.On("Set", mock.Anything, "model:classifier", stored, time.Hour).
					Return(errors.New("redis down")).Once()
			},
		},
		{
			name: "unknown model",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				c.On("Get", mock.Anything, "model:classifier", mock.Anything).Return(false, nil).Once()
				r.On("GetModelByName", mock.Anything, "classifier").
					Return(nil, errs.ErrModelNotFound).Once()
			},
			wantErr: errs.ErrModelNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			tt.setupMocks(repo, cache)
			svc := newService(repo, new(ArtifactStoreMock), cache)

			got, err := svc.GetInfo(context.Background(), "classifier")
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "uid-1", got.UID)
			}

			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestModelService_GetInfo_CacheReceivesRequestContext(t *testing.T) {
	type ctxKey string
	const requestKey ctxKey = "request_id"
	ctx := context.WithValue(context.Background(), requestKey, "reqid123")

	stored := &models.AiModel{UID: "uid-1", Name: "classifier"}
	sameCtx := mock.MatchedBy(func(c context.Context) bool {
		return c.Value(requestKey) == "reqid123"
	})

	repo := new(RepoMock)
	cache := new(CacheMock)
	cache.On("Get", sameCtx, "model:classifier", mock.Anything).Return(false, nil).Once()
	repo.On("GetModelByName", mock.Anything, "classifier").Return(stored, nil).Once()
	cache.On("Set", sameCtx, "model:classifier", stored, time.Hour).Return(nil).Once()

	svc := newService(repo, new(ArtifactStoreMock), cache)

	_, err := svc.GetInfo(ctx, "classifier")
	require.NoError(t, err)
	cache.AssertExpectations(t)
}

func TestModelService_Create(t *testing.T) {
	artifact := []byte("artifact bytes")
	digest := sha256.Sum256(artifact)
	wantSHA := hex.EncodeToString(digest[:])

	req := models.DummyCreateModel{
		Name:        "classifier",
		Description: "image classifier",
		URLOrPath:   "https://models.example.com/classifier.zip",
		Version:     "1.0.0",
	}
	wantKey := "classifier-1.0.0.zip"

	tests := []struct {
		name       string
		req        models.DummyCreateModel
		setupMocks func(r *RepoMock, s *ArtifactStoreMock, c *CacheMock)
		wantErr    error
	}{
		{
			name: "successful create uploads before insert",
			req:  req,
			setupMocks: func(r *RepoMock, s *ArtifactStoreMock, c *CacheMock) {
				r.On("GetModelByNameVersion", mock.Anything, "classifier", "1.0.0").
					Return(nil, errs.ErrModelNotFound).Once()
				s.On("Upload", mock.Anything, wantKey, artifact).Return(nil).Once()
				r.On("CreateModel", mock.Anything, mock.MatchedBy(func(model models.AiModel) bool {
					return model.Name == "classifier" &&
						model.Version == "1.0.0" &&
						model.SHA256 == wantSHA
				})).Return("uid-1", nil).Once()
				c.On("Invalidate", mock.Anything, "model:classifier").Return(nil).Once()
				c.On("Invalidate", mock.Anything, "models:list").Return(nil).Once()
			},
		},
		{
			name: "empty version gets default",
			req: models.DummyCreateModel{
				Name:      "classifier",
				URLOrPath: "https://models.example.com/classifier.zip",
			},
			setupMocks: func(r *RepoMock, s *ArtifactStoreMock, c *CacheMock) {
				r.On("GetModelByNameVersion", mock.Anything, "classifier", models.DefaultModelVersion).
					Return(nil, errs.ErrModelNotFound).Once()
				s.On("Upload", mock.Anything, "classifier-0.0.1.zip", artifact).Return(nil).Once()
				r.On("CreateModel", mock.Anything, mock.MatchedBy(func(model models.AiModel) bool {
					return model.Version == models.DefaultModelVersion
				})).Return("uid-1", nil).Once()
				c.On("Invalidate", mock.Anything, "model:classifier").Return(nil).Once()
				c.On("Invalidate", mock.Anything, "models:list").Return(nil).Once()
			},
		},
		{
			name: "invalid location rejected before any work",
			req: models.DummyCreateModel{
				Name:      "classifier",
				URLOrPath: "not a url and not a path",
				Version:   "1.0.0",
			},
			setupMocks: func(r *RepoMock, s *ArtifactStoreMock, c *CacheMock) {},
			wantErr:    errs.ErrInvalidLocation,
		},
		{
			name: "duplicate version rejected before upload",
			req:  req,
			setupMocks: func(r *RepoMock, s *ArtifactStoreMock, c *CacheMock) {
				r.On("GetModelByNameVersion", mock.Anything, "classifier", "1.0.0").
					Return(&models.AiModel{UID: "existing"}, nil).Once()
			},
			wantErr: errs.ErrDuplicateVersion,
		},
		{
			name: "upload failure leaves registry untouched",
			req:  req,
			setupMocks: func(r *RepoMock, s *ArtifactStoreMock, c *CacheMock) {
				r.On("GetModelByNameVersion", mock.Anything, "classifier", "1.0.0").
					Return(nil, errs.ErrModelNotFound).Once()
				s.On("Upload", mock.Anything, wantKey, artifact).
					Return(errors.New("connection reset")).Once()
			},
			wantErr: errs.ErrArtifactUpload,
		},
		{
			name: "insert failure removes uploaded artifact",
			req:  req,
			setupMocks: func(r *RepoMock, s *ArtifactStoreMock, c *CacheMock) {
				r.On("GetModelByNameVersion", mock.Anything, "classifier", "1.0.0").
					Return(nil, errs.ErrModelNotFound).Once()
				s.On("Upload", mock.Anything, wantKey, artifact).Return(nil).Once()
				r.On("CreateModel", mock.Anything, mock.Anything).
					Return("", errs.ErrDuplicateVersion).Once()
				s.On("Remove", mock.Anything, wantKey).Return(nil).Once()
			},
			wantErr: errs.ErrDuplicateVersion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			store := new(ArtifactStoreMock)
			cache := new(CacheMock)
			tt.setupMocks(repo, store, cache)
			svc := newService(repo, store, cache)

			got, err := svc.Create(context.Background(), tt.req, artifact)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "uid-1", got.UID)
				assert.Equal(t, wantSHA, got.SHA256)
			}

			repo.AssertExpectations(t)
			store.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestModelService_Delete(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(r *RepoMock, s *ArtifactStoreMock, c *CacheMock)
		wantErr    error
	}{
		{
			name: "deletes all versions with artifacts",
			setupMocks: func(r *RepoMock, s *ArtifactStoreMock, c *CacheMock) {
				c.On("Invalidate", mock.Anything, "model:classifier").Return(nil).Once()
				c.On("Invalidate", mock.Anything, "models:list").Return(nil).Once()
				r.On("DeleteModelByName", mock.Anything, "classifier").
					Return([]string{"classifier-0.0.1.zip", "classifier-1.0.0.zip"}, nil).Once()
				s.On("Remove", mock.Anything, "classifier-0.0.1.zip").Return(nil).Once()
				s.On("Remove", mock.Anything, "classifier-1.0.0.zip").Return(nil).Once()
			},
		},
		{
			name: "artifact removal failure does not abort delete",
			setupMocks: func(r *RepoMock, s *ArtifactStoreMock, c *CacheMock) {
				c.On("Invalidate", mock.Anything, "model:classifier").Return(nil).Once()
				c.On("Invalidate", mock.Anything, "models:list").Return(nil).Once()
				r.On("DeleteModelByName", mock.Anything, "classifier").
					Return([]string{"classifier-0.0.1.zip"}, nil).Once()
				s.On("Remove", mock.Anything, "classifier-0.0.1.zip").
					Return(errors.New("object storage unavailable")).Once()
			},
		},
		{
			name: "unknown model",
			setupMocks: func(r *RepoMock, s *ArtifactStoreMock, c *CacheMock) {
				c.On("Invalidate", mock.Anything, "model:classifier").Return(nil).Once()
				c.On("Invalidate", mock.Anything, "models:list").Return(nil).Once()
				r.On("DeleteModelByName", mock.Anything, "classifier").
					Return(nil, errs.ErrModelNotFound).Once()
			},
			wantErr: errs.ErrModelNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			store := new(ArtifactStoreMock)
			cache := new(CacheMock)
			tt.setupMocks(repo, store, cache)
			svc := newService(repo, store, cache)

			err := svc.Delete(context.Background(), "classifier")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			repo.AssertExpectations(t)
			store.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}
