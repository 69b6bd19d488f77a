// Package models содержит доменные структуры пользователя и AI-модели,
// а также вспомогательные типы для приёма данных из внешних источников
// (JSON-запросы, multipart-формы).
package models

import "time"

// User представляет зарегистрированного пользователя системы.
// PasswordHash может быть nil только для федеративных учётных записей.
type User struct {
	UID          string     // Уникальный идентификатор пользователя
	Email        string     // Электронная почта, ключ для входа
	FirstName    string     // Имя (опционально)
	LastName     string     // Фамилия (опционально)
	PasswordHash *string    // bcrypt-хэш пароля, nil для федеративного входа
	CreatedAt    time.Time  // Дата создания записи
	UpdatedAt    time.Time  // Дата последнего обновления
	DeletedAt    *time.Time // Дата мягкого удаления
	IsDeleted    bool       // Флаг мягкого удаления
}

// UserView представляет публичное представление пользователя,
// возвращаемое наружу и встраиваемое в JWT. Хэш пароля сюда не попадает.
type UserView struct {
	UID       string `json:"uid"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// View возвращает публичное представление пользователя.
func (u *User) View() UserView {
	return UserView{
		UID:       u.UID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// DummyCreateUser используется для приёма данных регистрации из JSON-запроса,
// прежде чем конвертировать их в User.
type DummyCreateUser struct {
	FirstName string `json:"first_name,omitempty" validate:"omitempty,max=255"` // Имя (опционально)
	LastName  string `json:"last_name,omitempty" validate:"omitempty,max=255"`  // Фамилия (опционально)
	Email     string `json:"email" validate:"required,email"`                   // Электронная почта
	Password  string `json:"password" validate:"required,min=6"`                // Пароль (минимум 6 символов)
}
