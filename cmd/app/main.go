package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brunomoyse/tsb-service/internal/config"
	"github.com/brunomoyse/tsb-service/internal/lib/locale"
	"github.com/brunomoyse/tsb-service/internal/lib/logger"
	"github.com/brunomoyse/tsb-service/internal/lib/token"
	"github.com/brunomoyse/tsb-service/internal/metrics"
	"github.com/brunomoyse/tsb-service/internal/repository/cache"
	"github.com/brunomoyse/tsb-service/internal/repository/postgres"
	"github.com/brunomoyse/tsb-service/internal/service"
	httptransport "github.com/brunomoyse/tsb-service/internal/transport/http"
	"github.com/brunomoyse/tsb-service/internal/transport/kafka"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// 1. Инициализация конфигурации
	cfg := config.MustLoad(config.Path())

	// 2. Инициализация логгера
	log := logger.New(cfg.Logger.Level, cfg.Logger.Format)
	log.Info("starting tsb-service", slog.String("log_level", cfg.Logger.Level))

	// 3. Инициализация репозитория (БД)
	initCtx, initCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer initCancel()

	dbpool, err := postgres.New(initCtx, cfg.Postgres)
	if err != nil {
		log.Error("failed to connect to postgres", logger.Err(err))
		os.Exit(1)
	}
	defer dbpool.Close()
	log.Info("successfully connected to postgres")

	catalogRepo := postgres.NewCatalogRepository(dbpool)
	orderRepo := postgres.NewOrderRepository(dbpool)
	userRepo := postgres.NewUserRepository(dbpool)

	// 4. Инициализация кэша: Redis, либо in-memory, если он выключен
	var store service.CacheStore
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(initCtx, cfg.Redis)
		if err != nil {
			// без кэша сервис работает, просто каждый запрос идёт в БД
			log.Error("failed to connect to redis, using in-memory cache", logger.Err(err))
			store = cache.NewMemoryStore()
		} else {
			defer client.Close()
			store = cache.NewRedisStore(client)
			log.Info("successfully connected to redis", slog.String("addr", cfg.Redis.Addr))
		}
	} else {
		store = cache.NewMemoryStore()
		log.Info("redis disabled, using in-memory cache")
	}

	// 5. Метрики
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	catalogMetrics := metrics.NewCatalog(registry)

	// 6. Инициализация сервисного слоя
	catalogSvc := service.NewCatalogService(catalogRepo, store, catalogMetrics, log, service.CatalogOptions{
		TTL:       cfg.Cache.TTL,
		OpTimeout: cfg.Cache.OpTimeout,
		KeyPrefix: cfg.Cache.KeyPrefix,
	})
	tokens := token.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	authSvc := service.NewAuthService(userRepo, tokens, log)
	orderSvc := service.NewOrderService(orderRepo, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 7. Инициализация и запуск Kafka-консьюмера
	var consumer *kafka.Consumer
	if cfg.Kafka.Enabled {
		consumer = kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, orderSvc, log)
		go consumer.Run(ctx)
	}

	// 8. Инициализация и запуск HTTP-сервера
	handler := httptransport.NewHandler(httptransport.Deps{
		Catalog: catalogSvc,
		Auth:    authSvc,
		Orders:  orderSvc,
		Tokens:  tokens,
		Locales: locale.NewResolver(cfg.Catalog.Locales, cfg.Catalog.DefaultLocale),
		Metrics: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}, log)
	httpServer := httptransport.NewServer(cfg.HTTPServer.Port, handler, cfg.HTTPServer.Timeout, cfg.HTTPServer.IdleTimeout)
	log.Info("starting http server", slog.String("port", cfg.HTTPServer.Port))

	go func() {
		if err := httpServer.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed to start", logger.Err(err))
			os.Exit(1)
		}
	}()

	// 9. Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down application")
	cancel() // сигнал для консьюмера на завершение

	// создаем контекст с таймаутом для шатдауна сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", logger.Err(err))
	}

	if consumer != nil {
		if err := consumer.Close(); err != nil {
			log.Error("error closing kafka consumer", logger.Err(err))
		}
	}

	log.Info("application stopped")
}
