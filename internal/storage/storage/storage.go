// Package storage описывает справочник коротких ссылок.
package storage

import (
	"context"

	"github.com/SversusN/tinyapp/internal/entity"
)

// Storage справочник пользователей, ссылок и журнала переходов.
// Каждый вызов атомарен относительно остальных.
type Storage interface {
	CreateLink(ctx context.Context, longURL string, ownerID string) (entity.Link, error)
	PutLink(ctx context.Context, link entity.Link) error
	GetLink(ctx context.Context, shortCode string) (entity.Link, error)
	GetLinkForOwner(ctx context.Context, shortCode string, ownerID string) (entity.Link, error)
	ListLinksForOwner(ctx context.Context, ownerID string) ([]entity.Link, error)
	UpdateLink(ctx context.Context, shortCode string, ownerID string, newLongURL string) error
	DeleteLink(ctx context.Context, shortCode string, ownerID string) error
	Snapshot(ctx context.Context) (map[string]entity.Link, error)

	RecordVisit(ctx context.Context, shortCode string, visitorID string, firstVisit bool) (entity.Link, error)
	ListVisits(ctx context.Context, shortCode string) ([]entity.Visit, error)

	UserStorage

	Stats(ctx context.Context) (links int, users int, visits int, err error)
}

// UserStorage учетные записи
type UserStorage interface {
	CreateUser(ctx context.Context, email string, passwordHash string) (entity.User, error)
	FindUserByEmail(ctx context.Context, email string) (entity.User, error)
	FindUserByID(ctx context.Context, id string) (entity.User, error)
}

// Pinger хранилище, умеющее проверять свою доступность
type Pinger interface {
	Ping(ctx context.Context) error
}

// DemoLinks ссылки без владельца для первого запуска
var DemoLinks = []entity.Link{
	{ShortCode: "b2xVn2", LongURL: "http://www.lighthouselabs.ca"},
	{ShortCode: "9sm5xK", LongURL: "http://www.google.com"},
}

// Seed заливает демо-ссылки в хранилище
func Seed(ctx context.Context, s Storage) error {
	for _, l := range DemoLinks {
		if err := s.PutLink(ctx, l); err != nil {
			return err
		}
	}
	return nil
}
