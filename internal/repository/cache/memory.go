package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore — потокобезопасное in-memory хранилище с TTL
// используется, когда Redis выключен в конфиге
type MemoryStore struct {
	// sync.Map выбрал для обеспечения потокобезопасности
	// ключ string, значение *memoryEntry (указатель нужен для CompareAndDelete)
	storage sync.Map
	now     func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // нулевое значение значит без срока
}

// NewMemoryStore создаёт новый экземпляр хранилища
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// Get извлекает значение по ключу
// просроченная запись удаляется и считается отсутствующей
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	value, ok := s.storage.Load(key)
	if !ok {
		return nil, ErrCacheMiss
	}

	// выполняем безопасное приведение типа
	entry, ok := value.(*memoryEntry)
	if !ok {
		return nil, ErrCacheMiss
	}

	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		// удаляем только ту запись, которую видели, а не свежую от параллельного Set
		s.storage.CompareAndDelete(key, value)
		return nil, ErrCacheMiss
	}

	return append([]byte(nil), entry.value...), nil
}

// Set добавляет или обновляет значение; ttl <= 0 означает запись без срока, как в Redis
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := &memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.storage.Store(key, entry)
	return nil
}
