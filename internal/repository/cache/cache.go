// Package cache содержит key/value хранилища для read-through кэша каталога:
// Redis для боевого окружения и in-memory для локального запуска и тестов.
//
// Оба хранилища безопасны для конкурентного использования и пишут значение
// одной операцией, так что читатель никогда не увидит половину payload'а.
package cache

import "errors"

// ErrCacheMiss возвращается, когда ключа нет или его TTL истёк
// любая другая ошибка означает, что хранилище недоступно
var ErrCacheMiss = errors.New("cache: miss")
