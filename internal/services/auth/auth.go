// Package services содержит логику бизнес-уровня для работы
// с пользователями и аутентификацией.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/moodme/moodme-backend/internal/errs"
	"github.com/moodme/moodme-backend/internal/lib/jwt"
	"github.com/moodme/moodme-backend/internal/lib/password"
	"github.com/moodme/moodme-backend/internal/lib/sl"
	"github.com/moodme/moodme-backend/internal/models"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает его UID.
	// Возвращает errs.ErrDuplicateUser при нарушении уникальности email.
	CreateUser(ctx context.Context, user models.User) (string, error)

	// GetUserByEmail возвращает пользователя по email
	// или errs.ErrUserNotFound, если он не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// DeleteUserByEmail удаляет пользователя по email
	// или возвращает errs.ErrUserNotFound.
	DeleteUserByEmail(ctx context.Context, email string) error
}

// FederatedProvider описывает внешнего поставщика идентичности,
// к которому GetCurrentUser обращается, если локальная проверка
// токена не прошла. Реализации подключаются при сборке приложения.
type FederatedProvider interface {
	// Name возвращает имя провайдера для логирования.
	Name() string
	// ResolveUser пытается сопоставить токен пользователю провайдера.
	ResolveUser(ctx context.Context, token string) (*models.User, error)
}

// AuthService отвечает за регистрацию, проверку учётных данных
// и выпуск/валидацию JWT.
type AuthService struct {
	users     UserRepository
	jwtMaker  jwt.Maker
	federated []FederatedProvider
	log       *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService. Список федеративных
// провайдеров может быть пустым.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, log *slog.Logger, federated ...FederatedProvider) *AuthService {
	return &AuthService{
		users:     users,
		jwtMaker:  jwtMaker,
		federated: federated,
		log:       log,
	}
}

// Register создает нового пользователя с хэшированием пароля.
// Открытый пароль не сохраняется и не логируется. Возвращает
// errs.ErrDuplicateUser, если неудалённый пользователь с таким email
// уже существует: быстрая предварительная проверка плюс трансляция
// нарушения уникального индекса закрывают конкурентные регистрации.
func (s *AuthService) Register(ctx context.Context, req models.DummyCreateUser) (*models.User, error) {
	const op = "services.auth.Register"

	if _, err := s.users.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrDuplicateUser)
	} else if !errors.Is(err, errs.ErrUserNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user := models.User{
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: &hashed,
	}

	uid, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.UID = uid

	s.log.Info("registered new user", slog.String("uid", uid))
	return &user, nil
}

// DeleteUser удаляет пользователя по email. Возвращает
// errs.ErrUserNotFound, если такого пользователя нет.
func (s *AuthService) DeleteUser(ctx context.Context, email string) error {
	const op = "services.auth.DeleteUser"

	if err := s.users.DeleteUserByEmail(ctx, email); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("deleted user")
	return nil
}

// Authenticate проверяет пароль пользователя. Возвращает (nil, nil) —
// не ошибку — если email неизвестен или пароль не подошёл; ошибки
// уровня хранилища пробрасываются как есть.
func (s *AuthService) Authenticate(ctx context.Context, email, rawPassword string) (*models.User, error) {
	const op = "services.auth.Authenticate"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errs.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// У федеративных учётных записей нет локального пароля.
	if user.PasswordHash == nil {
		return nil, nil
	}
	if err := password.CompareHash(*user.PasswordHash, rawPassword); err != nil {
		return nil, nil
	}
	return user, nil
}

// CreateAccessToken выпускает подписанный токен доступа для пользователя.
func (s *AuthService) CreateAccessToken(user *models.User) (string, error) {
	const op = "services.auth.CreateAccessToken"

	token, err := s.jwtMaker.GenerateToken(user)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// GetCurrentUser проверяет токен и возвращает соответствующего пользователя.
// Если подпись невалидна, токен просрочен или subject не находится среди
// существующих пользователей, по очереди опрашиваются федеративные
// провайдеры; если и они не дали результата — errs.ErrInvalidCredentials.
func (s *AuthService) GetCurrentUser(ctx context.Context, token string) (*models.User, error) {
	const op = "services.auth.GetCurrentUser"

	claims, err := s.jwtMaker.ParseToken(token)
	if err == nil {
		user, lookupErr := s.users.GetUserByEmail(ctx, claims.Subject)
		if lookupErr == nil {
			return user, nil
		}
		if !errors.Is(lookupErr, errs.ErrUserNotFound) {
			return nil, fmt.Errorf("%s: %w", op, lookupErr)
		}
	}

	for _, provider := range s.federated {
		user, fedErr := provider.ResolveUser(ctx, token)
		if fedErr == nil && user != nil {
			return user, nil
		}
		if fedErr != nil {
			s.log.Debug("federated fallback failed",
				slog.String("provider", provider.Name()), sl.Err(fedErr))
		}
	}

	return nil, fmt.Errorf("%s: %w", op, errs.ErrInvalidCredentials)
}
