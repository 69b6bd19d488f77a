// Package jwt реализует выпуск и парсинг JWT токенов доступа.
//
// Maker определяет интерфейс для создания и проверки токенов.
// MakerImpl — конкретная реализация с симметричным секретным ключом (HS256)
// и сроком жизни токена из конфигурации.
package jwt

import (
	"time"

	"github.com/moodme/moodme-backend/internal/models"
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	// GenerateToken выпускает токен для пользователя: subject = email,
	// в claims попадает публичное представление пользователя без хэша пароля.
	GenerateToken(user *models.User) (string, error)
	// ParseToken проверяет подпись и срок действия, возвращает claims.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
