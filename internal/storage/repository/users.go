package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/moodme/moodme-backend/internal/errs"
	"github.com/moodme/moodme-backend/internal/models"
)

// CreateUser сохраняет нового пользователя в базу данных и возвращает его UID.
// Нарушение уникальности email транслируется в errs.ErrDuplicateUser.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (email, first_name, last_name, hashed_password)
			  VALUES ($1, $2, $3, $4)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.FirstName, user.LastName, user.PasswordHash).Scan(&newUID); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%s: %w", op, errs.ErrDuplicateUser)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUserByEmail возвращает неудалённого пользователя по email.
// Возвращает errs.ErrUserNotFound, если пользователь отсутствует.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, first_name, last_name, hashed_password,
			      created_at, updated_at, deleted_at, is_deleted
			  FROM users
			  WHERE email = $1 AND is_deleted = FALSE`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, email)

	var firstName, lastName, passwordHash sql.NullString
	var deletedAt sql.NullTime
	if err := row.Scan(&u.UID, &u.Email, &firstName, &lastName, &passwordHash,
		&u.CreatedAt, &u.UpdatedAt, &deletedAt, &u.IsDeleted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, errs.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	u.FirstName = firstName.String
	u.LastName = lastName.String
	if passwordHash.Valid {
		u.PasswordHash = &passwordHash.String
	}
	if deletedAt.Valid {
		u.DeletedAt = &deletedAt.Time
	}
	return u, nil
}

// DeleteUserByEmail удаляет пользователя по email (жёсткое удаление).
// Возвращает errs.ErrUserNotFound, если пользователь отсутствует.
func (s *Storage) DeleteUserByEmail(ctx context.Context, email string) error {
	const op = "storage.DeleteUserByEmail"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM users WHERE email = $1`
	result, err := s.DB.ExecContext(ctx, query, email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, errs.ErrUserNotFound)
	}
	return nil
}
