// Package services содержит бизнес-логику реестра AI-моделей:
// координацию записей реестра с загрузкой артефактов и кеширование чтений.
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/moodme/moodme-backend/internal/errs"
	"github.com/moodme/moodme-backend/internal/lib/location"
	"github.com/moodme/moodme-backend/internal/lib/sl"
	"github.com/moodme/moodme-backend/internal/models"
)

// ModelRepository определяет методы для работы с реестром моделей в хранилище.
type ModelRepository interface {
	// CreateModel вставляет запись и возвращает её UID.
	// Возвращает errs.ErrDuplicateVersion при нарушении уникальности (name, version).
	CreateModel(ctx context.Context, model models.AiModel) (string, error)
	// GetModelByNameVersion возвращает модель по точной паре (name, version).
	GetModelByNameVersion(ctx context.Context, name, version string) (*models.AiModel, error)
	// GetModelByName возвращает модель по имени, самая свежая по created_at.
	GetModelByName(ctx context.Context, name string) (*models.AiModel, error)
	// ListModels возвращает все неудалённые модели в стабильном порядке.
	ListModels(ctx context.Context) ([]*models.AiModel, error)
	// DeleteModelByName удаляет все версии модели и возвращает ключи их артефактов.
	DeleteModelByName(ctx context.Context, name string) ([]string, error)
}

// ArtifactStore описывает объектное хранилище бинарных артефактов.
type ArtifactStore interface {
	Upload(ctx context.Context, key string, artifact []byte) error
	Remove(ctx context.Context, key string) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(ctx context.Context, key string) error
}

// ModelService реализует бизнес-логику реестра моделей: запись в реестр
// строго после успешной загрузки артефакта, никакого частичного состояния.
type ModelService struct {
	repo          ModelRepository
	artifacts     ArtifactStore
	cache         Cache
	log           *slog.Logger
	uploadTimeout time.Duration
}

// NewModelService создает новый экземпляр ModelService.
func NewModelService(repo ModelRepository, artifacts ArtifactStore, cache Cache, log *slog.Logger, uploadTimeout time.Duration) *ModelService {
	return &ModelService{
		repo:          repo,
		artifacts:     artifacts,
		cache:         cache,
		log:           log,
		uploadTimeout: uploadTimeout,
	}
}

// listCacheKey ключ кеша для полного списка моделей.
const listCacheKey = "models:list"

// List возвращает все неудалённые модели, используя кеш или репозиторий.
func (s *ModelService) List(ctx context.Context) ([]*models.AiModel, error) {
	var result []*models.AiModel
	found, err := s.cache.Get(ctx, listCacheKey, &result)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("key", listCacheKey), sl.Err(err))
	}
	if found {
		return result, nil
	}

	result, err = s.repo.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, listCacheKey, result, time.Hour); err != nil {
		s.log.Warn("failed to cache model list", slog.String("key", listCacheKey), sl.Err(err))
	}
	return result, nil
}

// GetInfo возвращает модель по имени, используя кеш или репозиторий.
// Если версий с одним именем несколько, выигрывает самая свежая по created_at.
func (s *ModelService) GetInfo(ctx context.Context, name string) (*models.AiModel, error) {
	var result *models.AiModel
	cacheKey := fmt.Sprintf("model:%s", name)
	found, err := s.cache.Get(ctx, cacheKey, &result)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("key", cacheKey), sl.Err(err))
	}
	if found {
		return result, nil
	}

	result, err = s.repo.GetModelByName(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, result, time.Hour); err != nil {
		s.log.Warn("failed to cache model", slog.String("key", cacheKey), sl.Err(err))
	}
	return result, nil
}

// Create регистрирует новую модель: проверяет происхождение артефакта,
// уникальность пары (name, version), загружает артефакт в объектное
// хранилище и только затем фиксирует запись реестра. При ошибке загрузки
// запись не создаётся; при ошибке вставки уже загруженный объект
// удаляется компенсирующим запросом.
func (s *ModelService) Create(ctx context.Context, req models.DummyCreateModel, artifact []byte) (*models.AiModel, error) {
	const op = "services.model.Create"

	if !location.IsValid(req.URLOrPath) {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrInvalidLocation)
	}

	version := req.Version
	if version == "" {
		version = models.DefaultModelVersion
	}

	if _, err := s.repo.GetModelByNameVersion(ctx, req.Name, version); err == nil {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrDuplicateVersion)
	} else if !errors.Is(err, errs.ErrModelNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	digest := sha256.Sum256(artifact)
	model := models.AiModel{
		Name:        req.Name,
		Version:     version,
		Description: req.Description,
		URLOrPath:   req.URLOrPath,
		Details:     req.Details,
		SHA256:      hex.EncodeToString(digest[:]),
	}
	key := model.ArtifactKey()

	uploadCtx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()
	if err := s.artifacts.Upload(uploadCtx, key, artifact); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, errs.ErrArtifactUpload, err)
	}

	uid, err := s.repo.CreateModel(ctx, model)
	if err != nil {
		// Запись не состоялась: убираем уже загруженный объект,
		// чтобы не плодить сирот в хранилище.
		if removeErr := s.artifacts.Remove(context.WithoutCancel(ctx), key); removeErr != nil {
			s.log.Error("failed to remove orphaned artifact",
				slog.String("key", key), sl.Err(removeErr))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	model.UID = uid
	model.CreatedAt = time.Now().UTC()

	s.log.Info("registered new model",
		slog.String("uid", uid),
		slog.String("name", model.Name),
		slog.String("version", model.Version))

	s.invalidateCache(ctx, model.Name)

	return &model, nil
}

// Delete удаляет все версии модели по имени вместе с их артефактами.
// Возвращает errs.ErrModelNotFound, если модели нет. Ошибка удаления
// объекта из хранилища логируется, но не отменяет удаление записи.
func (s *ModelService) Delete(ctx context.Context, name string) error {
	const op = "services.model.Delete"

	s.invalidateCache(ctx, name)

	keys, err := s.repo.DeleteModelByName(ctx, name)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, key := range keys {
		if err := s.artifacts.Remove(ctx, key); err != nil {
			s.log.Error("failed to remove artifact for deleted model",
				slog.String("key", key), sl.Err(err))
		}
	}

	s.log.Info("deleted model", slog.String("name", name), slog.Int("versions", len(keys)))
	return nil
}

// invalidateCache сбрасывает кеш модели и список целиком.
func (s *ModelService) invalidateCache(ctx context.Context, name string) {
	for _, key := range []string{fmt.Sprintf("model:%s", name), listCacheKey} {
		if err := s.cache.Invalidate(ctx, key); err != nil {
			s.log.Warn("failed to invalidate cache", slog.String("key", key), sl.Err(err))
		}
	}
}
