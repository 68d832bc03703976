package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/brunomoyse/tsb-service/internal/lib/logger"
	"github.com/brunomoyse/tsb-service/internal/model"
	"github.com/brunomoyse/tsb-service/internal/repository/postgres"

	"github.com/google/uuid"
)

// OrderService инкапсулирует бизнес-логику работы с заказами
type OrderService struct {
	repo OrderRepository
	log  *slog.Logger
}

// NewOrderService создаёт новый экземпляр сервиса заказов
// он принимает интерфейсы, а не конкретные типы, для гибкости и тестируемости
func NewOrderService(repo OrderRepository, log *slog.Logger) *OrderService {
	return &OrderService{
		repo: repo,
		log:  log,
	}
}

// CreateOrder проверяет запрос и сохраняет новый заказ со статусом open
// заказы приходят и из HTTP, и из кафки, поэтому валидация живёт здесь
func (s *OrderService) CreateOrder(ctx context.Context, req model.OrderRequest) (model.Order, error) {
	const op = "service.OrderService.CreateOrder"
	log := s.log.With(slog.String("op", op), slog.String("user_id", req.UserID.String()))

	if err := req.Validate(); err != nil {
		return model.Order{}, fmt.Errorf("%s: %w: %w", op, ErrValidation, err)
	}

	order := model.Order{
		ID:     uuid.New(),
		UserID: req.UserID,
		Status: model.OrderStatusOpen,
		Items:  mergeItems(req.Items),
	}
	if req.PaymentMode != "" {
		mode := req.PaymentMode
		order.PaymentMode = &mode
	}

	log.Info("attempting to create order", slog.String("order_id", order.ID.String()))

	// БД — основной источник правды
	if err := s.repo.CreateOrder(ctx, &order); err != nil {
		log.Error("failed to save order to repository", logger.Err(err))
		// ошибку не маскируем, а оборачиваем для контекста
		return model.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("order created", slog.String("order_id", order.ID.String()), slog.Int("items", len(order.Items)))
	return order, nil
}

// GetOrder возвращает заказ пользователя; чужой заказ неотличим от несуществующего
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (model.Order, error) {
	const op = "service.OrderService.GetOrder"
	log := s.log.With(slog.String("op", op), slog.String("order_id", orderID.String()))

	order, err := s.repo.GetOrderByID(ctx, userID, orderID)
	if err != nil {
		// не логируем как ошибку, если просто не найдено
		if !errors.Is(err, postgres.ErrOrderNotFound) {
			log.Error("failed to get order from repository", logger.Err(err))
		}
		return model.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	return order, nil
}

// mergeItems складывает количества одинаковых товаров:
// в order_product пара (order_id, product_id) уникальна
func mergeItems(items []model.OrderItem) []model.OrderItem {
	merged := make([]model.OrderItem, 0, len(items))
	index := make(map[uuid.UUID]int, len(items))
	for _, item := range items {
		if i, ok := index[item.ProductID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged
}
