// Пакет вспомогательных функций
package utils

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
)

const (
	charset   = "0123456789abcdefghijklmnopqrstuvwxyz" // base36
	KeyLength = 6                                      // длина короткого ключа по умолчанию
)

// GenerateShortKey формирует ключ короткой ссылки длиной n из алфавита base36.
// Генератор некриптографический, уникальность только вероятностная (36^6).
func GenerateShortKey(n int) string {
	if n <= 0 {
		n = KeyLength
	}
	shortKey := make([]byte, n)
	for i := range shortKey {
		shortKey[i] = charset[rand.Intn(len(charset))]
	}
	return string(shortKey)
}

// GenerateUserID ИД пользователя, отдельная роль от коротких ключей
func GenerateUserID() string {
	return uuid.NewString()
}

// GenerateVisitorID ИД посетителя для журнала переходов
func GenerateVisitorID() string {
	return uuid.NewString()
}

// NormalizeURL дописывает http:// если ссылка начинается не с него.
// Проверка наивная: https:// сохраняется, остальные схемы не разбираются.
func NormalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return ""
	}
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return fmt.Sprint("http://", u)
}

// GetFullURL создает полноценную ссылку из адреса и короткого ключа
func GetFullURL(baseURL string, result string) string {
	return fmt.Sprint(strings.TrimSuffix(baseURL, "/"), "/u/", result)
}
