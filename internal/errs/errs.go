// Package errs определяет доменные ошибки сервисов аутентификации
// и реестра моделей. Все ошибки восстановимы на уровне HTTP
// и транслируются обработчиками в коды 4xx.
package errs

import "errors"

var (
	// ErrDuplicateUser — пользователь с таким email уже существует.
	ErrDuplicateUser = errors.New("user with this email already exists")
	// ErrUserNotFound — пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials — токен невалиден, просрочен или subject не найден.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateVersion — модель с такой парой (name, version) уже существует.
	ErrDuplicateVersion = errors.New("model version already exists")
	// ErrInvalidLocation — url_or_path не является путём или корректным URL.
	ErrInvalidLocation = errors.New("invalid path or url")
	// ErrModelNotFound — модель не найдена.
	ErrModelNotFound = errors.New("model not found")
	// ErrArtifactUpload — загрузка артефакта в объектное хранилище не удалась.
	ErrArtifactUpload = errors.New("artifact upload failed")
)
