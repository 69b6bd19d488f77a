package models

import "time"

// DefaultModelVersion версия модели по умолчанию, если клиент её не указал.
const DefaultModelVersion = "0.0.1"

// AiModel представляет запись реестра версионированных AI-моделей.
// Бинарный артефакт хранится в объектном хранилище под ключом,
// производным от пары (Name, Version).
type AiModel struct {
	UID         string            // Уникальный идентификатор записи
	Name        string            // Имя модели, уникально только вместе с версией
	Version     string            // Семантическая версия, по умолчанию "0.0.1"
	Description string            // Описание модели
	URLOrPath   string            // Происхождение артефакта: путь или URL
	Details     map[string]string // Произвольные метаданные модели
	SHA256      string            // Хэш содержимого загруженного артефакта
	CreatedAt   time.Time         // Дата создания записи
	UpdatedAt   time.Time         // Дата последнего обновления
	DeletedAt   *time.Time        // Дата мягкого удаления
	IsDeleted   bool              // Флаг мягкого удаления
}

// ArtifactKey возвращает ключ объекта артефакта в хранилище.
func (m *AiModel) ArtifactKey() string {
	return ArtifactKey(m.Name, m.Version)
}

// ArtifactKey строит ключ объекта в хранилище по имени и версии модели.
func ArtifactKey(name, version string) string {
	return name + "-" + version + ".zip"
}

// ModelView представляет публичное представление модели.
type ModelView struct {
	UID         string            `json:"uid"`
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Description string            `json:"description,omitempty"`
	URLOrPath   string            `json:"url_or_path"`
	Details     map[string]string `json:"details,omitempty"`
	SHA256      string            `json:"sha256,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// View возвращает публичное представление модели.
func (m *AiModel) View() ModelView {
	return ModelView{
		UID:         m.UID,
		Name:        m.Name,
		Version:     m.Version,
		Description: m.Description,
		URLOrPath:   m.URLOrPath,
		Details:     m.Details,
		SHA256:      m.SHA256,
		CreatedAt:   m.CreatedAt,
	}
}

// DummyCreateModel используется для приёма данных из multipart-формы,
// прежде чем конвертировать их в AiModel. Details приходит строкой JSON.
type DummyCreateModel struct {
	Name        string            `json:"name" validate:"required,max=255"`    // Имя модели
	Description string            `json:"description" validate:"omitempty"`    // Описание
	URLOrPath   string            `json:"url_or_path" validate:"required"`     // Происхождение артефакта
	Version     string            `json:"version" validate:"omitempty"`        // Версия, по умолчанию "0.0.1"
	Details     map[string]string `json:"details,omitempty" validate:"omitempty"` // Метаданные
}
