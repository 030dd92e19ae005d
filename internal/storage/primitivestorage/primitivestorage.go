// Package primitivestorage хранилище в памяти процесса. Данные теряются при рестарте.
package primitivestorage

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/SversusN/tinyapp/internal/access"
	"github.com/SversusN/tinyapp/internal/entity"
	"github.com/SversusN/tinyapp/internal/internalerrors"
	"github.com/SversusN/tinyapp/internal/pkg/utils"
)

// MaxCodeAttempts сколько раз перегенерировать ключ при коллизии
const MaxCodeAttempts = 10

// MapStorage справочник под одним RWMutex.
// order хранит порядок вставки ссылок, users и visits - обычные срезы с линейным поиском.
type MapStorage struct {
	mu     sync.RWMutex
	links  map[string]entity.Link
	order  []string
	users  []entity.User
	visits []entity.Visit

	generateKey func() string
	now         func() time.Time
}

// Option настройка хранилища
type Option func(*MapStorage)

// WithKeyGenerator подменяет генератор коротких ключей
func WithKeyGenerator(gen func() string) Option {
	return func(m *MapStorage) {
		m.generateKey = gen
	}
}

// WithClock подменяет источник времени
func WithClock(now func() time.Time) Option {
	return func(m *MapStorage) {
		m.now = now
	}
}

// NewStorage пустое хранилище
func NewStorage(opts ...Option) *MapStorage {
	m := &MapStorage{
		links:       make(map[string]entity.Link),
		generateKey: func() string { return utils.GenerateShortKey(utils.KeyLength) },
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateLink нормализует ссылку и сохраняет ее под новым ключом.
// Занятый ключ перегенерируется, старая запись не перезаписывается.
func (m *MapStorage) CreateLink(ctx context.Context, longURL string, ownerID string) (entity.Link, error) {
	if err := ctx.Err(); err != nil {
		return entity.Link{}, err
	}
	normalized := utils.NormalizeURL(longURL)
	if normalized == "" {
		return entity.Link{}, internalerrors.ErrEmptyURL
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := 0; i < MaxCodeAttempts; i++ {
		key := m.generateKey()
		if _, ok := m.links[key]; ok {
			continue
		}
		link := entity.Link{
			ShortCode: key,
			LongURL:   normalized,
			OwnerID:   ownerID,
			CreatedAt: m.now(),
		}
		m.insert(link)
		return link, nil
	}
	return entity.Link{}, internalerrors.ErrKeyAlreadyExists
}

// PutLink сохраняет запись как есть, существующий ключ перезаписывается
func (m *MapStorage) PutLink(ctx context.Context, link entity.Link) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if link.ShortCode == "" || link.LongURL == "" {
		return internalerrors.ErrEmptyURL
	}
	if link.CreatedAt.IsZero() {
		link.CreatedAt = m.now()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insert(link)
	return nil
}

// insert вызывается под блокировкой
func (m *MapStorage) insert(link entity.Link) {
	if _, ok := m.links[link.ShortCode]; !ok {
		m.order = append(m.order, link.ShortCode)
	}
	m.links[link.ShortCode] = link
}

func (m *MapStorage) GetLink(ctx context.Context, shortCode string) (entity.Link, error) {
	if err := ctx.Err(); err != nil {
		return entity.Link{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	link, ok := m.links[shortCode]
	if !ok {
		return entity.Link{}, internalerrors.ErrNotFound
	}
	return link, nil
}

func (m *MapStorage) GetLinkForOwner(ctx context.Context, shortCode string, ownerID string) (entity.Link, error) {
	link, err := m.GetLink(ctx, shortCode)
	if err != nil {
		return entity.Link{}, err
	}
	if !access.Owns(ownerID, link) {
		return entity.Link{}, internalerrors.ErrNotFound
	}
	return link, nil
}

// ListLinksForOwner снимок ссылок пользователя в порядке создания
func (m *MapStorage) ListLinksForOwner(ctx context.Context, ownerID string) ([]entity.Link, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	all := make([]entity.Link, 0, len(m.order))
	for _, code := range m.order {
		all = append(all, m.links[code])
	}
	m.mu.RUnlock()
	return access.OwnedBy(all, ownerID), nil
}

func (m *MapStorage) UpdateLink(ctx context.Context, shortCode string, ownerID string, newLongURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	normalized := utils.NormalizeURL(newLongURL)
	if normalized == "" {
		return internalerrors.ErrEmptyURL
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.links[shortCode]
	if !ok || !access.Owns(ownerID, link) {
		return internalerrors.ErrNotFound
	}
	link.LongURL = normalized
	m.links[shortCode] = link
	return nil
}

// DeleteLink удаляет ссылку владельца. Отсутствующая или чужая ссылка - не ошибка.
// Журнал переходов не трогаем.
func (m *MapStorage) DeleteLink(ctx context.Context, shortCode string, ownerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.links[shortCode]
	if !ok || !access.Owns(ownerID, link) {
		return nil
	}
	delete(m.links, shortCode)
	m.order = slices.DeleteFunc(m.order, func(code string) bool { return code == shortCode })
	return nil
}

func (m *MapStorage) Snapshot(ctx context.Context) (map[string]entity.Link, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]entity.Link, len(m.links))
	for k, v := range m.links {
		out[k] = v
	}
	return out, nil
}

// RecordVisit пишет переход в журнал и увеличивает счетчики.
// Уникальный посетитель считается по признаку firstVisit от клиента,
// собственного множества посетителей хранилище не ведет.
func (m *MapStorage) RecordVisit(ctx context.Context, shortCode string, visitorID string, firstVisit bool) (entity.Link, error) {
	if err := ctx.Err(); err != nil {
		return entity.Link{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.links[shortCode]
	if !ok {
		return entity.Link{}, internalerrors.ErrNotFound
	}
	m.visits = append(m.visits, entity.Visit{
		ShortCode: shortCode,
		VisitorID: visitorID,
		Timestamp: m.now(),
	})
	link.TotalVisits++
	if firstVisit {
		link.UniqueVisitors++
	}
	m.links[shortCode] = link
	return link, nil
}

func (m *MapStorage) ListVisits(ctx context.Context, shortCode string) ([]entity.Visit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]entity.Visit, 0)
	for _, v := range m.visits {
		if v.ShortCode == shortCode {
			out = append(out, v)
		}
	}
	return out, nil
}

// CreateUser регистрирует пользователя, email проверяется линейным поиском
func (m *MapStorage) CreateUser(ctx context.Context, email string, passwordHash string) (entity.User, error) {
	if err := ctx.Err(); err != nil {
		return entity.User{}, err
	}
	if email == "" || passwordHash == "" {
		return entity.User{}, internalerrors.ErrEmptyCredentials
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return entity.User{}, internalerrors.NewConflictError(email)
		}
	}
	u := entity.User{
		ID:           utils.GenerateUserID(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    m.now(),
	}
	m.users = append(m.users, u)
	return u, nil
}

func (m *MapStorage) FindUserByEmail(ctx context.Context, email string) (entity.User, error) {
	return m.findUser(ctx, func(u entity.User) bool { return u.Email == email })
}

func (m *MapStorage) FindUserByID(ctx context.Context, id string) (entity.User, error) {
	return m.findUser(ctx, func(u entity.User) bool { return u.ID == id })
}

func (m *MapStorage) findUser(ctx context.Context, match func(entity.User) bool) (entity.User, error) {
	if err := ctx.Err(); err != nil {
		return entity.User{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if match(u) {
			return u, nil
		}
	}
	return entity.User{}, internalerrors.ErrUserNotFound
}

func (m *MapStorage) Stats(ctx context.Context) (int, int, int, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.links), len(m.users), len(m.visits), nil
}

// Ping хранилище в памяти всегда доступно
func (m *MapStorage) Ping(ctx context.Context) error {
	return ctx.Err()
}
