package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/moodme/moodme-backend/internal/errs"
	"github.com/moodme/moodme-backend/internal/models"
)

// CreateModel вставляет новую запись реестра моделей и возвращает её UID.
// Нарушение уникальности пары (name, version) транслируется
// в errs.ErrDuplicateVersion.
func (s *Storage) CreateModel(ctx context.Context, model models.AiModel) (string, error) {
	const op = "storage.CreateModel"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	details, err := json.Marshal(model.Details)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var newUID string
	query := `INSERT INTO ai_models (name, version, description, url_or_path, details, sha256)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		model.Name, model.Version, model.Description, model.URLOrPath,
		details, model.SHA256).Scan(&newUID); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%s: %w", op, errs.ErrDuplicateVersion)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetModelByNameVersion возвращает неудалённую модель по точной паре
// (name, version) или errs.ErrModelNotFound.
func (s *Storage) GetModelByNameVersion(ctx context.Context, name, version string) (*models.AiModel, error) {
	const op = "storage.GetModelByNameVersion"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, name, version, description, url_or_path, details, sha256,
			      created_at, updated_at, deleted_at, is_deleted
			  FROM ai_models
			  WHERE name = $1 AND version = $2 AND is_deleted = FALSE`
	row := s.DB.QueryRowContext(ctx, query, name, version)
	return scanModel(row, op)
}

// GetModelByName возвращает неудалённую модель по имени. Если записей
// с одним именем несколько, выигрывает самая свежая по created_at
// (при равенстве — старшая версия по строковому сравнению).
// Возвращает errs.ErrModelNotFound, если записей нет.
func (s *Storage) GetModelByName(ctx context.Context, name string) (*models.AiModel, error) {
	const op = "storage.GetModelByName"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, name, version, description, url_or_path, details, sha256,
			      created_at, updated_at, deleted_at, is_deleted
			  FROM ai_models
			  WHERE name = $1 AND is_deleted = FALSE
			  ORDER BY created_at DESC, version DESC
			  LIMIT 1`
	row := s.DB.QueryRowContext(ctx, query, name)
	return scanModel(row, op)
}

// ListModels возвращает все неудалённые модели в стабильном порядке.
func (s *Storage) ListModels(ctx context.Context) ([]*models.AiModel, error) {
	const op = "storage.ListModels"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, name, version, description, url_or_path, details, sha256,
			      created_at, updated_at, deleted_at, is_deleted
			  FROM ai_models
			  WHERE is_deleted = FALSE
			  ORDER BY created_at, uid`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.AiModel
	for rows.Next() {
		item, err := scanModel(rows, op)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// DeleteModelByName удаляет все неудалённые версии модели по имени
// (жёсткое удаление) и возвращает ключи артефактов удалённых записей.
// Мягко удалённые записи невидимы и здесь, как и на путях чтения.
// Возвращает errs.ErrModelNotFound, если видимых записей нет.
func (s *Storage) DeleteModelByName(ctx context.Context, name string) ([]string, error) {
	const op = "storage.DeleteModelByName"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM ai_models WHERE name = $1 AND is_deleted = FALSE RETURNING name, version`
	rows, err := s.DB.QueryContext(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var keys []string
	for rows.Next() {
		var n, v string
		if err = rows.Scan(&n, &v); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		keys = append(keys, models.ArtifactKey(n, v))
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrModelNotFound)
	}
	return keys, nil
}

// rowScanner объединяет *sql.Row и *sql.Rows для scanModel.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanModel(row rowScanner, op string) (*models.AiModel, error) {
	m := &models.AiModel{}
	var description, sha sql.NullString
	var deletedAt sql.NullTime
	var details []byte

	if err := row.Scan(&m.UID, &m.Name, &m.Version, &description, &m.URLOrPath,
		&details, &sha, &m.CreatedAt, &m.UpdatedAt, &deletedAt, &m.IsDeleted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, errs.ErrModelNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	m.Description = description.String
	m.SHA256 = sha.String
	if deletedAt.Valid {
		m.DeletedAt = &deletedAt.Time
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &m.Details); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return m, nil
}
