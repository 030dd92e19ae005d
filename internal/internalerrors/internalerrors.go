// Пакет описания внутренних ошибок приложения
package internalerrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("key not found")                       // Ключ не найден или ссылка не принадлежит пользователю
	ErrKeyAlreadyExists = errors.New("key already exists")                  // Не удалось подобрать свободный короткий ключ
	ErrEmptyURL         = errors.New("empty url")                           // Пустая оригинальная ссылка
	ErrForbidden        = errors.New("link belongs to another user")        // Ссылка существует, но чужая
	ErrUserTypeError    = errors.New("user type error")                     // Ошибка получения данных пользователя из контекста
	ErrUserNotFound     = errors.New("user not found error")                // Ошибка наличия пользователя
	ErrEmailTaken       = errors.New("email already registered")            // Email уже занят
	ErrEmptyCredentials = errors.New("email and password must not be blank") // Пустые учетные данные
	ErrBadCredentials   = errors.New("bad email or password")               // Неверная пара email/пароль
	ErrUnauthenticated  = errors.New("no valid session")                    // Нет действующей сессии
)

// ConflictError тип внутренней ошибки конфликта по email
type ConflictError struct {
	Err   error
	Email string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("conflict: email already registered: %v", e.Email)
}

func (e ConflictError) Unwrap() error {
	return e.Err
}

// NewConflictError оборачивает ErrEmailTaken с указанием email
func NewConflictError(email string) error {
	return &ConflictError{Err: ErrEmailTaken, Email: email}
}
