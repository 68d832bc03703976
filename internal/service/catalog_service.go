package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/brunomoyse/tsb-service/internal/lib/logger"
	"github.com/brunomoyse/tsb-service/internal/metrics"
	"github.com/brunomoyse/tsb-service/internal/model"
	"github.com/brunomoyse/tsb-service/internal/repository/cache"
)

const (
	DefaultCacheTTL       = 3600 * time.Second
	DefaultCacheOpTimeout = 200 * time.Millisecond
	DefaultCacheKeyPrefix = "products_grouped_by_category"
)

// CatalogOptions задаёт политику кэширования каталога; нулевые поля заменяются значениями по умолчанию
type CatalogOptions struct {
	TTL       time.Duration
	OpTimeout time.Duration
	KeyPrefix string
}

// CatalogService — read-through кэш поверх движка каталога
//
// запросы без поиска обслуживаются из кэша по ключу "<prefix>:<locale>",
// запросы с поиском идут мимо кэша и никогда его не читают и не пишут
// сбои кэша не видны вызывающему: наружу выходит только ошибка БД
type CatalogService struct {
	engine  CatalogEngine
	store   CacheStore
	metrics *metrics.Catalog
	log     *slog.Logger
	opts    CatalogOptions
}

// NewCatalogService создаёт новый экземпляр сервиса каталога
func NewCatalogService(engine CatalogEngine, store CacheStore, m *metrics.Catalog, log *slog.Logger, opts CatalogOptions) *CatalogService {
	if opts.TTL <= 0 {
		opts.TTL = DefaultCacheTTL
	}
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = DefaultCacheOpTimeout
	}
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = DefaultCacheKeyPrefix
	}
	return &CatalogService{
		engine:  engine,
		store:   store,
		metrics: m,
		log:     log,
		opts:    opts,
	}
}

// CacheKey возвращает ключ кэша для локали; поисковый текст в ключ не входит никогда
func (s *CatalogService) CacheKey(locale string) string {
	return s.opts.KeyPrefix + ":" + locale
}

// GetProductsGroupedByCategory возвращает категории с товарами для локали
func (s *CatalogService) GetProductsGroupedByCategory(ctx context.Context, locale, search string) ([]model.CategoryWithProducts, error) {
	const op = "service.CatalogService.GetProductsGroupedByCategory"
	log := s.log.With(slog.String("op", op), slog.String("locale", locale))

	// 1. Поиск: кэш полностью обходится
	if strings.TrimSpace(search) != "" {
		s.metrics.CacheRequests.WithLabelValues(metrics.OutcomeBypass).Inc()
		log.Debug("search request, bypassing cache")

		categories, err := s.fetch(ctx, locale, search)
		if err != nil {
			log.Error("failed to fetch catalog", logger.Err(err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return categories, nil
	}

	key := s.CacheKey(locale)

	// 2. Пытаемся получить из кэша
	if categories, ok := s.readCache(ctx, log, key); ok {
		return categories, nil
	}

	// 3. Промах или кэш недоступен, идём в БД
	categories, err := s.fetch(ctx, locale, "")
	if err != nil {
		log.Error("failed to fetch catalog", logger.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// 4. Запись в кэш best-effort, её результат не влияет на ответ
	s.writeCache(ctx, log, key, categories)

	return categories, nil
}

func (s *CatalogService) fetch(ctx context.Context, locale, search string) ([]model.CategoryWithProducts, error) {
	start := time.Now()
	defer func() { s.metrics.EngineDuration.Observe(time.Since(start).Seconds()) }()

	return s.engine.GetProductsGroupedByCategory(ctx, locale, search)
}

func (s *CatalogService) readCache(ctx context.Context, log *slog.Logger, key string) ([]model.CategoryWithProducts, bool) {
	// недоступный кэш не должен держать запрос дольше OpTimeout
	cacheCtx, cancel := context.WithTimeout(ctx, s.opts.OpTimeout)
	defer cancel()

	payload, err := s.store.Get(cacheCtx, key)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			s.metrics.CacheRequests.WithLabelValues(metrics.OutcomeMiss).Inc()
			log.Debug("catalog not found in cache")
		} else {
			s.metrics.CacheRequests.WithLabelValues(metrics.OutcomeError).Inc()
			log.Warn("cache unavailable, falling back to database", logger.Err(err))
		}
		return nil, false
	}

	var categories []model.CategoryWithProducts
	if err := json.Unmarshal(payload, &categories); err != nil {
		s.metrics.CacheRequests.WithLabelValues(metrics.OutcomeCorrupt).Inc()
		log.Warn("cached catalog is corrupt, recomputing", logger.Err(err))
		return nil, false
	}
	// "null" декодируется без ошибки, но такого значения мы никогда не пишем
	if categories == nil {
		s.metrics.CacheRequests.WithLabelValues(metrics.OutcomeCorrupt).Inc()
		log.Warn("cached catalog is null, recomputing")
		return nil, false
	}

	s.metrics.CacheRequests.WithLabelValues(metrics.OutcomeHit).Inc()
	log.Debug("catalog found in cache")
	return categories, true
}

func (s *CatalogService) writeCache(ctx context.Context, log *slog.Logger, key string, categories []model.CategoryWithProducts) {
	// сериализуем заранее: в хранилище уходит только целое значение
	payload, err := json.Marshal(categories)
	if err != nil {
		s.metrics.CacheWriteErrors.Inc()
		log.Warn("failed to serialize catalog for cache", logger.Err(err))
		return
	}

	cacheCtx, cancel := context.WithTimeout(ctx, s.opts.OpTimeout)
	defer cancel()

	if err := s.store.Set(cacheCtx, key, payload, s.opts.TTL); err != nil {
		s.metrics.CacheWriteErrors.Inc()
		log.Warn("failed to write catalog to cache", logger.Err(err))
		return
	}

	log.Debug("catalog cached", slog.Duration("ttl", s.opts.TTL))
}
