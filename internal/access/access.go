// Package access правила владения ссылками. Функции чистые и работают
// над снимком данных, полученным из хранилища.
package access

import (
	"github.com/SversusN/tinyapp/internal/entity"
	"github.com/SversusN/tinyapp/internal/internalerrors"
)

// Owns проверяет, что ссылка принадлежит пользователю.
// Ссылки без владельца не принадлежат никому.
func Owns(userID string, link entity.Link) bool {
	return userID != "" && link.OwnerID == userID
}

// OwnedBy отбирает ссылки пользователя с сохранением порядка.
func OwnedBy(links []entity.Link, userID string) []entity.Link {
	out := make([]entity.Link, 0)
	for _, l := range links {
		if Owns(userID, l) {
			out = append(out, l)
		}
	}
	return out
}

// Authorize nil для владельца, иначе ErrForbidden.
func Authorize(userID string, link entity.Link) error {
	if !Owns(userID, link) {
		return internalerrors.ErrForbidden
	}
	return nil
}
