package service

import (
	"context"
	"time"

	"github.com/brunomoyse/tsb-service/internal/model"

	"github.com/google/uuid"
)

// CatalogEngine определяет контракт движка запросов каталога (join + группировка)
// ошибка недоступности БД оборачивает postgres.ErrDataSourceUnavailable
type CatalogEngine interface {
	GetProductsGroupedByCategory(ctx context.Context, locale, search string) ([]model.CategoryWithProducts, error)
}

// CacheStore определяет контракт для внешнего key/value хранилища
// Get возвращает cache.ErrCacheMiss, если ключа нет; любая другая ошибка означает, что хранилище недоступно
// реализации должны быть безопасны для конкурентного использования
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// OrderRepository определяет контракт для хранилища заказов в БД
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *model.Order) error
	GetOrderByID(ctx context.Context, userID, orderID uuid.UUID) (model.Order, error)
}

// UserRepository определяет контракт для хранилища пользователей
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error)
}

// TokenIssuer выпускает и проверяет JWT
type TokenIssuer interface {
	Issue(userID uuid.UUID) (model.TokenPair, error)
	ParseRefresh(token string) (uuid.UUID, error)
}
