// Package entity описывает объекты справочника коротких ссылок.
package entity

import "time"

// User зарегистрированный пользователь. Пароль хранится только в виде хеша.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Link связка короткого кода и оригинальной ссылки.
// Пустой OwnerID означает ссылку без владельца (демо-данные).
type Link struct {
	ShortCode      string
	LongURL        string
	OwnerID        string
	CreatedAt      time.Time
	TotalVisits    int
	UniqueVisitors int
}

// Visit запись журнала переходов, только добавляется.
type Visit struct {
	ShortCode string
	VisitorID string
	Timestamp time.Time
}
